package tools

import (
	"context"
	"fmt"
	"strings"

	"modelsagent/internal/convert"
	"modelsagent/internal/core"
	"modelsagent/internal/util"
)

// GenerateCode helps the user write code that calls a model, based on SDK samples.
type GenerateCode struct {
	prompt       core.ToolPrompt
	samples      []core.CodeSample
	defaultModel string
	logger       core.Logger
}

func (t *GenerateCode) Name() string   { return GenerateCodeName }
func (t *GenerateCode) arguments() any { return InstructionArguments{} }

func (t *GenerateCode) invoke(ctx context.Context, req Request, raw []byte) (core.ToolInvocationResult, error) {
	args, err := decodeArgs[InstructionArguments](GenerateCodeName, raw)
	if err != nil {
		return core.ToolInvocationResult{}, err
	}
	return t.Execute(ctx, req, args), nil
}

// Execute prepends the SDK samples, the user's code context and the model
// list. Without the catalog the samples are still offered.
func (t *GenerateCode) Execute(ctx context.Context, req Request, args InstructionArguments) core.ToolInvocationResult {
	lines := []string{instructionAt(t.prompt, 0), instructionAt(t.prompt, 1)}
	for _, s := range t.samples {
		lines = append(lines, fmt.Sprintf("%s using %s:", s.Language, s.SDK), "```"+s.Language, strings.TrimRight(s.Code, "\n"), "```")
	}
	lines = append(lines, instructionAt(t.prompt, 2), instructionAt(t.prompt, 3))

	lines = append(lines, strings.ReplaceAll(instructionAt(t.prompt, 5), "{model}", args.Model))
	if args.Instruction != "" {
		lines = append(lines, "The user wants: "+args.Instruction)
	}
	if refs := convert.ContextReferences(req.Messages); len(refs) > 0 {
		if data, err := util.MarshalJSON(refs); err == nil {
			lines = append(lines, instructionAt(t.prompt, 6), string(data))
		}
	}

	models, err := req.Catalog.ListModels(ctx)
	if err != nil {
		t.logger.Warn("generate_code: %v", err)
		lines = append(lines, "The list of available models could not be loaded. Use gpt-4o in the generated code.")
	} else {
		lines = append(lines, instructionAt(t.prompt, 4))
		lines = append(lines, modelLines(models)...)
	}

	return core.ToolInvocationResult{
		TargetModel: t.defaultModel,
		Messages:    prepend(systemMessage(lines...), req.Messages),
	}
}
