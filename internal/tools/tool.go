package tools

import (
	"context"
	"fmt"
	"strings"

	"modelsagent/internal/core"
	"modelsagent/internal/util"
)

// Tool names
const (
	ListModelsName     = "list_models"
	DescribeModelName  = "describe_model"
	ExecuteModelName   = "execute_model"
	RecommendModelName = "recommend_model"
	GenerateCodeName   = "generate_code"
)

// Request is what a tool sees of the current request.
type Request struct {
	Messages []core.ChatMessage
	Catalog  core.ModelCatalog
}

// Tool is a member of the closed tool set. The unexported methods keep
// implementations inside this package.
//
// Each concrete tool also has a typed Execute method that returns only a
// core.ToolInvocationResult. Failures inside a tool become user-facing text;
// the only error a tool can surface is an argument decoding error from invoke.
type Tool interface {
	Name() string
	arguments() any
	invoke(ctx context.Context, req Request, args []byte) (core.ToolInvocationResult, error)
}

type noArguments struct{}

// ModelArguments are the arguments of describe_model.
type ModelArguments struct {
	Model string `json:"model" jsonschema_description:"The model to describe."`
}

// InstructionArguments are the arguments of execute_model and generate_code.
type InstructionArguments struct {
	Model       string `json:"model" jsonschema_description:"The name of the model."`
	Instruction string `json:"instruction" jsonschema_description:"The instruction for the model."`
}

func decodeArgs[T any](tool string, raw []byte) (T, error) {
	var args T
	if err := util.UnmarshalJSON(raw, &args); err != nil {
		return args, core.NewBadArguments(tool, err)
	}
	return args, nil
}

func systemMessage(lines ...string) core.ChatMessage {
	return core.ChatMessage{Role: core.RoleSystem, Content: strings.Join(lines, "\n")}
}

// prepend returns msg followed by a copy of messages.
func prepend(msg core.ChatMessage, messages []core.ChatMessage) []core.ChatMessage {
	out := make([]core.ChatMessage, 0, len(messages)+1)
	out = append(out, msg)
	return append(out, messages...)
}

func instructionAt(p core.ToolPrompt, i int) string {
	if i < len(p.Instructions) {
		return p.Instructions[i]
	}
	return ""
}

// modelLine renders one catalog entry as a single markdown list line.
func modelLine(m core.ModelDescriptor) string {
	var b strings.Builder
	fmt.Fprintf(&b, "- **%s/%s**", m.Registry, m.Name)
	if m.DisplayName != "" && m.DisplayName != m.Name {
		fmt.Fprintf(&b, " (%s)", m.DisplayName)
	}
	fmt.Fprintf(&b, ": publisher %s, version %s, license %s", m.Publisher, m.Version, m.License)
	if len(m.InferenceTasks) > 0 {
		fmt.Fprintf(&b, ", tasks %s", strings.Join(m.InferenceTasks, ", "))
	}
	if m.Summary != "" {
		b.WriteString(". ")
		b.WriteString(strings.Join(strings.Fields(m.Summary), " "))
	}
	return b.String()
}

func modelLines(models []core.ModelDescriptor) []string {
	lines := make([]string, len(models))
	for i, m := range models {
		lines[i] = modelLine(m)
	}
	return lines
}

func catalogUnavailable(err error) string {
	return fmt.Sprintf("The model catalog could not be reached (%v). "+
		"Tell the user that model information is unavailable right now and that they can try again later.", err)
}
