package config

import (
	_ "embed"
	"fmt"
	"os"

	"modelsagent/internal/core"

	"gopkg.in/yaml.v3"
)

//go:embed prompts.yaml
var defaultPrompts []byte

// RequiredTools are the tools every prompt set must describe.
var RequiredTools = []string{"list_models", "describe_model", "execute_model", "recommend_model", "generate_code"}

// minInstructions is how many instruction lines a tool reads by position.
var minInstructions = map[string]int{
	"execute_model": 2,
	"generate_code": 7,
}

// LoadPrompts parses the prompt set at path, or the embedded default when path is empty.
func LoadPrompts(path string) (core.PromptSet, error) {
	data := defaultPrompts
	if path != "" {
		var err error
		data, err = os.ReadFile(path) //nolint:gosec // G304: path from config, not user input
		if err != nil {
			return core.PromptSet{}, fmt.Errorf("failed to read %s: %w", path, err)
		}
	}
	return ParsePrompts(data)
}

// DefaultPrompts returns the embedded prompt set.
func DefaultPrompts() core.PromptSet {
	prompts, err := ParsePrompts(defaultPrompts)
	if err != nil {
		panic(fmt.Sprintf("embedded prompts.yaml is invalid: %v", err))
	}
	return prompts
}

// ParsePrompts decodes and checks a prompt set document.
func ParsePrompts(data []byte) (core.PromptSet, error) {
	var prompts core.PromptSet
	if err := yaml.Unmarshal(data, &prompts); err != nil {
		return core.PromptSet{}, fmt.Errorf("failed to parse prompt set: %w", err)
	}

	for _, name := range RequiredTools {
		tp, ok := prompts.Tools[name]
		if !ok {
			return core.PromptSet{}, fmt.Errorf("prompt set is missing tool %q", name)
		}
		if tp.Description == "" {
			return core.PromptSet{}, fmt.Errorf("tool %q has an empty description", name)
		}
		if want := minInstructions[name]; len(tp.Instructions) < want {
			return core.PromptSet{}, fmt.Errorf("tool %q needs %d instructions, got %d", name, want, len(tp.Instructions))
		}
	}
	return prompts, nil
}
