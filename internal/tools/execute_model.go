package tools

import (
	"context"
	"strings"

	"modelsagent/internal/convert"
	"modelsagent/internal/core"
	"modelsagent/internal/util"
)

// Models that reject system messages get the preamble as an assistant turn.
var noSystemRoleModels = map[string]bool{
	"o1-mini":    true,
	"o1-preview": true,
}

// ExecuteModel routes the user's instruction to the model they named.
type ExecuteModel struct {
	prompt core.ToolPrompt
	logger core.Logger
}

func (t *ExecuteModel) Name() string   { return ExecuteModelName }
func (t *ExecuteModel) arguments() any { return InstructionArguments{} }

func (t *ExecuteModel) invoke(ctx context.Context, req Request, raw []byte) (core.ToolInvocationResult, error) {
	args, err := decodeArgs[InstructionArguments](ExecuteModelName, raw)
	if err != nil {
		return core.ToolInvocationResult{}, err
	}
	return t.Execute(ctx, req, args), nil
}

// Execute returns a preamble naming the model followed by the instruction
// verbatim. The target model is passed through unvalidated; an unknown name
// surfaces as a completion error.
func (t *ExecuteModel) Execute(_ context.Context, req Request, args InstructionArguments) core.ToolInvocationResult {
	preamble := []string{strings.ReplaceAll(instructionAt(t.prompt, 0), "{model}", args.Model)}

	if refs := convert.ContextReferences(req.Messages); len(refs) > 0 {
		if data, err := util.MarshalJSON(refs); err != nil {
			t.logger.Warn("execute_model: could not encode references: %v", err)
		} else {
			preamble = append(preamble, instructionAt(t.prompt, 1), string(data))
		}
	}

	role := core.RoleSystem
	if noSystemRoleModels[args.Model] {
		role = core.RoleAssistant
	}

	return core.ToolInvocationResult{
		TargetModel: args.Model,
		Messages: []core.ChatMessage{
			{Role: role, Content: strings.Join(preamble, "\n")},
			{Role: core.RoleUser, Content: args.Instruction},
		},
	}
}
