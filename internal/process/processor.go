package process

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"modelsagent/internal/core"
	"modelsagent/internal/tools"
	"modelsagent/internal/util"
)

// ModelListPlaceholder marks where the tool-selection prompt lists the catalog.
const ModelListPlaceholder = "<-- LIST OF MODELS -->"

// unknownToolLabel stands in for any function name the registry does not
// know, so model output cannot mint new metric series.
const unknownToolLabel = "unknown"

// ToolSelector asks the tool-calling provider which tool, if any, should run.
type ToolSelector interface {
	SelectTool(ctx context.Context, token, model string, messages []core.ChatMessage, defs []core.ToolDefinition) (*core.FunctionCall, error)
}

// ToolDispatcher is the tool registry as seen by the processor.
type ToolDispatcher interface {
	Definitions() []core.ToolDefinition
	Dispatch(ctx context.Context, name, rawArgs string, messages []core.ChatMessage, catalog core.ModelCatalog) (core.ToolInvocationResult, error)
}

// ProcessorConfig wires a RequestProcessor.
type ProcessorConfig struct {
	Selector         ToolSelector
	Tools            ToolDispatcher
	// NewCatalog returns a fresh catalog view; each Plan call gets its own.
	NewCatalog       func() core.ModelCatalog
	SelectionPrompt  []string
	ToolCallingModel string
	DefaultModel     string
	MarketplaceURL   string
	Metrics          core.MetricsCollector
}

// RequestProcessor turns a verified conversation into a completion plan.
type RequestProcessor struct {
	cfg ProcessorConfig
}

// Plan is what the completion stage needs: which model answers which
// messages, and the references emitted before the stream.
type Plan struct {
	TargetModel string
	Messages    []core.ChatMessage
	References  []core.Reference
	// Tool is the selected tool name, empty when the provider chose none.
	Tool string
}

// NewRequestProcessor creates a new request processor
func NewRequestProcessor(cfg ProcessorConfig) *RequestProcessor {
	if cfg.Metrics == nil {
		cfg.Metrics = &core.NopMetrics{}
	}
	return &RequestProcessor{cfg: cfg}
}

// Plan runs tool selection and, when a tool is chosen, dispatches it. The
// tool-calling provider sees the conversation with the model list prepended;
// the completion model never does.
func (p *RequestProcessor) Plan(ctx context.Context, token string, messages []core.ChatMessage, logger core.Logger) (Plan, error) {
	if logger == nil {
		logger = &core.NopLogger{}
	}

	catalog := p.cfg.NewCatalog()

	start := time.Now()
	augmented := p.augment(ctx, catalog, messages, logger)
	logger.Debug("augmentation took %v", time.Since(start))

	start = time.Now()
	call, err := p.cfg.Selector.SelectTool(ctx, token, p.cfg.ToolCallingModel, augmented, p.cfg.Tools.Definitions())
	logger.Debug("tool selection took %v", time.Since(start))
	if err != nil {
		return Plan{}, err
	}

	if call == nil {
		logger.Debug("no tool selected, answering with %s", p.cfg.DefaultModel)
		return Plan{TargetModel: p.cfg.DefaultModel, Messages: messages}, nil
	}

	logger.Info("tool selected: %q", call.Name)

	start = time.Now()
	result, err := p.cfg.Tools.Dispatch(ctx, call.Name, call.Arguments, messages, catalog)
	logger.Debug("tool %q took %v", call.Name, time.Since(start))
	if errors.Is(err, core.ErrUnknownTool) {
		p.cfg.Metrics.RecordToolSelected(unknownToolLabel)
	} else {
		p.cfg.Metrics.RecordToolSelected(call.Name)
	}
	if err != nil {
		return Plan{}, err
	}

	plan := Plan{TargetModel: result.TargetModel, Messages: result.Messages, Tool: call.Name}
	if call.Name == tools.ExecuteModelName {
		if ref, ok := p.modelReference(ctx, catalog, result.TargetModel, logger); ok {
			plan.References = []core.Reference{ref}
		}
	}
	return plan, nil
}

// augment prepends the tool-selection prompt with the model list in place of
// the placeholder. Without the catalog the conversation goes out unchanged.
func (p *RequestProcessor) augment(ctx context.Context, catalog core.ModelCatalog, messages []core.ChatMessage, logger core.Logger) []core.ChatMessage {
	models, err := catalog.ListModels(ctx)
	if err != nil {
		logger.Warn("model list unavailable for tool selection: %v", err)
		return messages
	}

	lines := make([]string, 0, len(p.cfg.SelectionPrompt)+len(models))
	for _, line := range p.cfg.SelectionPrompt {
		lines = append(lines, line)
		if strings.TrimSpace(line) != ModelListPlaceholder {
			continue
		}
		for _, m := range models {
			lines = append(lines, fmt.Sprintf("\t- %s (%s, %s)", m.Name, m.FriendlyName(), m.Publisher))
		}
	}

	out := make([]core.ChatMessage, 0, len(messages)+1)
	out = append(out, core.ChatMessage{Role: core.RoleSystem, Content: strings.Join(lines, "\n")})
	return append(out, messages...)
}

func (p *RequestProcessor) modelReference(ctx context.Context, catalog core.ModelCatalog, name string, logger core.Logger) (core.Reference, bool) {
	model, err := catalog.GetModel(ctx, name)
	if err != nil {
		logger.Warn("no catalog entry for %s, skipping reference: %v", name, err)
		return core.Reference{}, false
	}

	data, err := util.MarshalJSON(model)
	if err != nil {
		logger.Warn("encode model reference: %v", err)
		return core.Reference{}, false
	}
	meta, err := util.MarshalJSON(core.ReferenceMetadata{
		DisplayName: model.FriendlyName(),
		DisplayURL:  fmt.Sprintf("%s/%s/%s", strings.TrimRight(p.cfg.MarketplaceURL, "/"), model.Registry, model.Name),
	})
	if err != nil {
		logger.Warn("encode model reference metadata: %v", err)
		return core.Reference{}, false
	}

	return core.Reference{
		Type:     core.ReferenceTypeModel,
		ID:       model.Name,
		Data:     data,
		Metadata: meta,
	}, true
}
