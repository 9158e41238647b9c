package tools

import (
	"context"
	"fmt"

	"modelsagent/internal/core"
	"modelsagent/internal/validate"
)

type entry struct {
	tool      Tool
	def       core.ToolDefinition
	validator *validate.ArgumentValidator
}

// Registry holds the tool set in declaration order and dispatches function calls.
type Registry struct {
	entries []entry
	byName  map[string]int
	logger  core.Logger
}

// NewRegistry builds the tool set from prompts. Every tool declaration is
// reflected from its argument struct, checked and compiled once here.
func NewRegistry(prompts core.PromptSet, defaultModel string, logger core.Logger) (*Registry, error) {
	if logger == nil {
		logger = &core.NopLogger{}
	}
	p := func(name string) core.ToolPrompt { return prompts.Tools[name] }

	set := []Tool{
		&ListModels{prompt: p(ListModelsName), defaultModel: defaultModel, logger: logger},
		&DescribeModel{prompt: p(DescribeModelName), defaultModel: defaultModel, logger: logger},
		&ExecuteModel{prompt: p(ExecuteModelName), logger: logger},
		&RecommendModel{prompt: p(RecommendModelName), defaultModel: defaultModel, logger: logger},
		&GenerateCode{prompt: p(GenerateCodeName), samples: prompts.CodeSamples, defaultModel: defaultModel, logger: logger},
	}

	r := &Registry{byName: make(map[string]int, len(set)), logger: logger}
	for _, t := range set {
		if _, dup := r.byName[t.Name()]; dup {
			return nil, fmt.Errorf("duplicate tool %s", t.Name())
		}
		prompt := prompts.Tools[t.Name()]

		params, err := validate.SchemaFor(t.arguments(), prompt.Parameters)
		if err != nil {
			return nil, fmt.Errorf("tool %s: %w", t.Name(), err)
		}
		def := core.ToolDefinition{Name: t.Name(), Description: prompt.Description, Parameters: params}
		if err := validate.ToolDefinition(def); err != nil {
			return nil, err
		}
		v, err := validate.CompileArguments(t.Name(), params)
		if err != nil {
			return nil, err
		}

		r.byName[t.Name()] = len(r.entries)
		r.entries = append(r.entries, entry{tool: t, def: def, validator: v})
	}
	return r, nil
}

// Definitions returns the tool declarations in registry order.
func (r *Registry) Definitions() []core.ToolDefinition {
	defs := make([]core.ToolDefinition, len(r.entries))
	for i, e := range r.entries {
		defs[i] = e.def
	}
	return defs
}

// Lookup returns the tool registered under name.
func (r *Registry) Lookup(name string) (Tool, bool) {
	i, ok := r.byName[name]
	if !ok {
		return nil, false
	}
	return r.entries[i].tool, true
}

// Dispatch resolves a function call to its tool, validates the arguments and
// runs the tool exactly once.
func (r *Registry) Dispatch(ctx context.Context, name, rawArgs string, messages []core.ChatMessage, catalog core.ModelCatalog) (core.ToolInvocationResult, error) {
	i, ok := r.byName[name]
	if !ok {
		return core.ToolInvocationResult{}, core.NewUnknownTool(name)
	}
	e := r.entries[i]

	args, err := e.validator.Validate(rawArgs)
	if err != nil {
		return core.ToolInvocationResult{}, err
	}

	r.logger.Debug("dispatching tool %s", name)
	return e.tool.invoke(ctx, Request{Messages: messages, Catalog: catalog}, args)
}
