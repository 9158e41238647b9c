package tools

import (
	"context"

	"modelsagent/internal/core"
)

// RecommendModel asks the completion model to pick a catalog model for the user's use case.
type RecommendModel struct {
	prompt       core.ToolPrompt
	defaultModel string
	logger       core.Logger
}

func (t *RecommendModel) Name() string   { return RecommendModelName }
func (t *RecommendModel) arguments() any { return noArguments{} }

func (t *RecommendModel) invoke(ctx context.Context, req Request, _ []byte) (core.ToolInvocationResult, error) {
	return t.Execute(ctx, req), nil
}

// Execute prepends the reasoning instructions and the model list.
func (t *RecommendModel) Execute(ctx context.Context, req Request) core.ToolInvocationResult {
	models, err := req.Catalog.ListModels(ctx)
	if err != nil {
		t.logger.Warn("recommend_model: %v", err)
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
