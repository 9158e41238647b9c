package convert

import (
	"encoding/json"
	"testing"

	"modelsagent/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/tidwall/gjson"
)

func TestNormalize(t *testing.T) {
	body := []byte(`{
		"copilot_thread_id": "t1",
		"messages": [
			{"role": "system", "content": "be brief"},
			{"role": "assistant", "content": null},
			{"role": "user", "content": "explain this", "copilot_references": [
				{"type": "client.selection", "id": "sel-1", "data": {"content": "x := 1", "start": {"line": 3}}, "metadata": {"display_name": "main.go"}},
				{"type": "github.repository", "id": "repo", "data": {}, "is_implicit": true}
			]}
		]
	}`)

	messages, err := Normalize(body)
	require.NoError(t, err)
	require.Len(t, messages, 3)

	assert.Equal(t, core.RoleSystem, messages[0].Role)
	assert.Equal(t, "be brief", messages[0].Content)
	assert.Equal(t, "", messages[1].Content)
	assert.Nil(t, messages[1].Attachments)

	refs := messages[2].Attachments
	require.Len(t, refs, 2)
	assert.Equal(t, core.ReferenceTypeSelection, refs[0].Type)
	assert.Equal(t, "sel-1", refs[0].ID)
	assert.JSONEq(t, `{"content": "x := 1", "start": {"line": 3}}`, string(refs[0].Data))
	assert.JSONEq(t, `{"display_name": "main.go"}`, string(refs[0].Metadata))
	assert.True(t, refs[1].IsImplicit)
}

func TestNormalize_BadRequest(t *testing.T) {
	tests := []struct {
		name string
		body string
	}{
		{"not json", `messages`},
		{"no messages", `{}`},
		{"empty messages", `{"messages": []}`},
		{"unknown role", `{"messages": [{"role": "tool", "content": "x"}]}`},
		{"missing role", `{"messages": [{"content": "x"}]}`},
		{"content not text", `{"messages": [{"role": "user", "content": 42}]}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Normalize([]byte(tt.body))
			assert.ErrorIs(t, err, core.ErrBadRequest)
		})
	}
}

func TestContextReferences(t *testing.T) {
	messages := []core.ChatMessage{
		{Role: core.RoleUser, Content: "old", Attachments: []core.Reference{{Type: core.ReferenceTypeFile, ID: "stale"}}},
		{Role: core.RoleUser, Content: "new", Attachments: []core.Reference{
			{Type: "github.repository", ID: "repo"},
			{Type: core.ReferenceTypeFile, ID: "file"},
			{Type: core.ReferenceTypeSelection, ID: "sel"},
		}},
	}

	refs := ContextReferences(messages)
	require.Len(t, refs, 2)
	assert.Equal(t, "file", refs[0].ID)
	assert.Equal(t, "sel", refs[1].ID)

	assert.Nil(t, ContextReferences(nil))
	assert.Nil(t, ContextReferences([]core.ChatMessage{{Role: core.RoleUser, Content: "plain"}}))
}

func TestToOpenAIMessages(t *testing.T) {
	messages := []core.ChatMessage{
		{Role: core.RoleSystem, Content: "sys"},
		{Role: core.RoleUser, Content: "hi", Attachments: []core.Reference{{Type: core.ReferenceTypeFile, ID: "f"}}},
		{Role: core.RoleAssistant, Content: "hello"},
	}

	data, err := json.Marshal(ToOpenAIMessages(messages))
	require.NoError(t, err)
	out := gjson.ParseBytes(data)

	assert.Equal(t, int64(3), out.Get("#").Int())
	assert.Equal(t, "system", out.Get("0.role").String())
	assert.Equal(t, "sys", out.Get("0.content").String())
	assert.Equal(t, "user", out.Get("1.role").String())
	assert.Equal(t, "hi", out.Get("1.content").String())
	assert.False(t, out.Get("1.copilot_references").Exists(), "references must not reach providers")
	assert.Equal(t, "assistant", out.Get("2.role").String())
	assert.Equal(t, "hello", out.Get("2.content").String())
}

func TestToOpenAITools(t *testing.T) {
	assert.Nil(t, ToOpenAITools(nil))

	defs := []core.ToolDefinition{
		{Name: "list_models", Description: "Lists models.", Parameters: map[string]any{"type": "object", "properties": map[string]any{}}},
		{Name: "describe_model", Description: "Describes a model.", Parameters: map[string]any{
			"type":       "object",
			"properties": map[string]any{"model": map[string]any{"type": "string"}},
			"required":   []string{"model"},
		}},
	}

	data, err := json.Marshal(ToOpenAITools(defs))
	require.NoError(t, err)
	out := gjson.ParseBytes(data)

	assert.Equal(t, "function", out.Get("0.type").String())
	assert.Equal(t, "list_models", out.Get("0.function.name").String())
	assert.Equal(t, "describe_model", out.Get("1.function.name").String())
	assert.Equal(t, "Describes a model.", out.Get("1.function.description").String())
	assert.Equal(t, "model", out.Get("1.function.parameters.required.0").String())
}
