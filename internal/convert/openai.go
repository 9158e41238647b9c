package convert

import (
	"modelsagent/internal/core"

	"github.com/openai/openai-go/v3"
)

// ToOpenAIMessages converts chat messages to the inference SDK's message
// params. References stay behind; providers never see them.
func ToOpenAIMessages(messages []core.ChatMessage) []openai.ChatCompletionMessageParamUnion {
	result := make([]openai.ChatCompletionMessageParamUnion, len(messages))
	for i, msg := range messages {
		switch msg.Role {
		case core.RoleSystem:
			result[i] = openai.SystemMessage(msg.Content)
		case core.RoleAssistant:
			result[i] = openai.AssistantMessage(msg.Content)
		default:
			result[i] = openai.UserMessage(msg.Content)
		}
	}
	return result
}

// ToOpenAITools converts tool definitions to function tool params, keeping registry order.
func ToOpenAITools(defs []core.ToolDefinition) []openai.ChatCompletionToolUnionParam {
	if len(defs) == 0 {
		return nil
	}
	result := make([]openai.ChatCompletionToolUnionParam, len(defs))
	for i, def := range defs {
		result[i] = openai.ChatCompletionFunctionTool(openai.FunctionDefinitionParam{
			Name:        def.Name,
			Description: openai.String(def.Description),
			Parameters:  openai.FunctionParameters(def.Parameters),
		})
	}
	return result
}
