package tools

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"modelsagent/internal/core"
	"modelsagent/internal/util"

	"golang.org/x/sync/errgroup"
)

// DescribeModel answers with the details of one catalog model.
type DescribeModel struct {
	prompt       core.ToolPrompt
	defaultModel string
	logger       core.Logger
}

func (t *DescribeModel) Name() string   { return DescribeModelName }
func (t *DescribeModel) arguments() any { return ModelArguments{} }

func (t *DescribeModel) invoke(ctx context.Context, req Request, raw []byte) (core.ToolInvocationResult, error) {
	args, err := decodeArgs[ModelArguments](DescribeModelName, raw)
	if err != nil {
		return core.ToolInvocationResult{}, err
	}
	return t.Execute(ctx, req, args), nil
}

// Execute fetches the descriptor and the schema concurrently. A missing
// schema only drops the schema block; a missing descriptor becomes an
// explanatory system message.
func (t *DescribeModel) Execute(ctx context.Context, req Request, args ModelArguments) core.ToolInvocationResult {
	var (
		model               core.ModelDescriptor
		schema              core.ModelSchema
		modelErr, schemaErr error
		g                   errgroup.Group
	)
	g.Go(func() error {
		model, modelErr = req.Catalog.GetModel(ctx, args.Model)
		return nil
	})
	g.Go(func() error {
		schema, schemaErr = req.Catalog.GetModelSchema(ctx, args.Model)
		return nil
	})
	_ = g.Wait()

	if modelErr != nil {
		t.logger.Warn("describe_model %q: %v", args.Model, modelErr)
		return core.ToolInvocationResult{
			TargetModel: t.defaultModel,
			Messages:    prepend(systemMessage(t.describeFailure(args.Model, modelErr)), req.Messages),
		}
	}

	lines := append(append([]string{}, t.prompt.Instructions...), descriptorLines(model)...)
	if schemaErr != nil {
		t.logger.Warn("describe_model %q schema: %v", args.Model, schemaErr)
	} else if block, err := util.MarshalIndentJSON(schema); err == nil {
		lines = append(lines, "", "API requests for this model use the following schema:", "```json", string(block), "```")
	}

	return core.ToolInvocationResult{
		TargetModel: t.defaultModel,
		Messages:    prepend(systemMessage(lines...), req.Messages),
	}
}

func (t *DescribeModel) describeFailure(name string, err error) string {
	if errors.Is(err, core.ErrNotFound) {
		return fmt.Sprintf("The user asked about a model named %q, but the model catalog has no model with that name. "+
			"Tell the user the model was not found and suggest asking for the list of available models.", name)
	}
	return catalogUnavailable(err)
}

func descriptorLines(m core.ModelDescriptor) []string {
	lines := []string{
		"\tModel Name: " + m.Name,
		"\tDisplay Name: " + m.FriendlyName(),
		"\tModel Version: " + m.Version,
		"\tPublisher: " + m.Publisher,
		"\tModel Registry: " + m.Registry,
		"\tLicense: " + m.License,
		"\tTasks: " + strings.Join(m.InferenceTasks, ", "),
		"\tSummary: " + m.Summary,
	}
	if m.Description != "" {
		lines = append(lines, "\tDescription: "+m.Description)
	}
	return lines
}
