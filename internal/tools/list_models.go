package tools

import (
	"context"

	"modelsagent/internal/core"
)

// ListModels answers with the catalog's model list.
type ListModels struct {
	prompt       core.ToolPrompt
	defaultModel string
	logger       core.Logger
}

func (t *ListModels) Name() string   { return ListModelsName }
func (t *ListModels) arguments() any { return noArguments{} }

func (t *ListModels) invoke(ctx context.Context, req Request, _ []byte) (core.ToolInvocationResult, error) {
	return t.Execute(ctx, req), nil
}

// Execute prepends a system message carrying one line per catalog model.
func (t *ListModels) Execute(ctx context.Context, req Request) core.ToolInvocationResult {
	models, err := req.Catalog.ListModels(ctx)
	if err != nil {
		t.logger.Warn("list_models: %v", err)
		return core.ToolInvocationResult{
			TargetModel: t.defaultModel,
			Messages:    prepend(systemMessage(catalogUnavailable(err)), req.Messages),
		}
	}

	lines := append(append([]string{}, t.prompt.Instructions...), modelLines(models)...)
	return core.ToolInvocationResult{
		TargetModel: t.defaultModel,
		Messages:    prepend(systemMessage(lines...), req.Messages),
	}
}
