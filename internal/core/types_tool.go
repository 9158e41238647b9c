package core

// ToolDefinition is the declaration presented to the tool-calling provider.
type ToolDefinition struct {
	Name        string         `json:"name"`
	Description string         `json:"description"`
	Parameters  map[string]any `json:"parameters"`
}

// ToolInvocationResult is what every tool produces: the model that answers
// and the messages it answers.
type ToolInvocationResult struct {
	TargetModel string        `json:"model"`
	Messages    []ChatMessage `json:"messages"`
}

// ToolPrompt is the static description and prompt text of one tool.
type ToolPrompt struct {
	Description  string            `yaml:"description"`
	Parameters   map[string]string `yaml:"parameters"`
	Instructions []string          `yaml:"instructions"`
}

// CodeSample is an SDK snippet offered to the code generation tool.
type CodeSample struct {
	Language string `yaml:"language"`
	SDK      string `yaml:"sdk"`
	Code     string `yaml:"code"`
}

// PromptSet is the static prompt configuration of the agent.
type PromptSet struct {
	ToolSelection []string              `yaml:"tool_selection"`
	Tools         map[string]ToolPrompt `yaml:"tools"`
	CodeSamples   []CodeSample          `yaml:"code_samples"`
}
