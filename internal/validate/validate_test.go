package validate

import (
	"testing"

	"modelsagent/internal/core"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type describeArgs struct {
	Model string `json:"model" jsonschema_description:"model to describe"`
}

type executeArgs struct {
	Model       string `json:"model"`
	Instruction string `json:"instruction"`
}

type noArgs struct{}

func TestSchemaFor(t *testing.T) {
	schema, err := SchemaFor(executeArgs{}, map[string]string{"instruction": "what to run"})
	require.NoError(t, err)

	assert.Equal(t, core.SchemaTypeObject, schema["type"])
	assert.NotContains(t, schema, "$schema")
	assert.NotContains(t, schema, "additionalProperties")

	props := schema["properties"].(map[string]any)
	assert.Equal(t, "string", props["model"].(map[string]any)["type"])
	assert.Equal(t, "what to run", props["instruction"].(map[string]any)["description"])
	assert.ElementsMatch(t, []any{"model", "instruction"}, schema["required"])
}

func TestSchemaFor_TagDescriptionAndEmptyStruct(t *testing.T) {
	schema, err := SchemaFor(describeArgs{}, nil)
	require.NoError(t, err)
	props := schema["properties"].(map[string]any)
	assert.Equal(t, "model to describe", props["model"].(map[string]any)["description"])

	empty, err := SchemaFor(noArgs{}, nil)
	require.NoError(t, err)
	assert.Equal(t, map[string]any{}, empty["properties"])
	require.NoError(t, ToolDefinition(core.ToolDefinition{Name: "list_models", Description: "x", Parameters: empty}))
}

func TestSchemaFor_UnknownDescription(t *testing.T) {
	_, err := SchemaFor(describeArgs{}, map[string]string{"modelName": "x"})
	assert.Error(t, err)
}

func TestToolDefinition(t *testing.T) {
	object := func(props map[string]any, required any) map[string]any {
		m := map[string]any{"type": "object", "properties": props}
		if required != nil {
			m["required"] = required
		}
		return m
	}
	str := map[string]any{"type": "string"}

	tests := []struct {
		name    string
		def     core.ToolDefinition
		wantErr bool
	}{
		{"valid", core.ToolDefinition{Name: "describe_model", Description: "d", Parameters: object(map[string]any{"model": str}, []any{"model"})}, false},
		{"string required list", core.ToolDefinition{Name: "t", Description: "d", Parameters: object(map[string]any{"a": str}, []string{"a"})}, false},
		{"bad name", core.ToolDefinition{Name: "describe model", Description: "d", Parameters: object(map[string]any{}, nil)}, true},
		{"name too long", core.ToolDefinition{Name: string(make([]byte, 65)), Description: "d", Parameters: object(map[string]any{}, nil)}, true},
		{"no description", core.ToolDefinition{Name: "t", Parameters: object(map[string]any{}, nil)}, true},
		{"not object", core.ToolDefinition{Name: "t", Description: "d", Parameters: map[string]any{"type": "string"}}, true},
		{"no properties", core.ToolDefinition{Name: "t", Description: "d", Parameters: map[string]any{"type": "object"}}, true},
		{"bad property name", core.ToolDefinition{Name: "t", Description: "d", Parameters: object(map[string]any{"model name": str}, nil)}, true},
		{"undeclared required", core.ToolDefinition{Name: "t", Description: "d", Parameters: object(map[string]any{"a": str}, []any{"b"})}, true},
		{"required not list", core.ToolDefinition{Name: "t", Description: "d", Parameters: object(map[string]any{"a": str}, "a")}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ToolDefinition(tt.def)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestArgumentValidator(t *testing.T) {
	schema, err := SchemaFor(executeArgs{}, nil)
	require.NoError(t, err)
	v, err := CompileArguments("execute_model", schema)
	require.NoError(t, err)

	tests := []struct {
		name    string
		raw     string
		wantErr bool
	}{
		{"valid", `{"model":"gpt-4o","instruction":"hi"}`, false},
		{"extra field", `{"model":"gpt-4o","instruction":"hi","temperature":1}`, false},
		{"missing field", `{"model":"gpt-4o"}`, true},
		{"wrong type", `{"model":4,"instruction":"hi"}`, true},
		{"malformed", `{"model":`, true},
		{"not object", `["gpt-4o"]`, true},
		{"empty means object", ``, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := v.Validate(tt.raw)
			if tt.wantErr {
				assert.ErrorIs(t, err, core.ErrBadArguments)
				assert.Contains(t, err.Error(), "execute_model")
				return
			}
			require.NoError(t, err)
			assert.JSONEq(t, tt.raw, string(out))
		})
	}
}

func TestArgumentValidator_EmptyArgumentsForParameterlessTool(t *testing.T) {
	schema, err := SchemaFor(noArgs{}, nil)
	require.NoError(t, err)
	v, err := CompileArguments("list_models", schema)
	require.NoError(t, err)

	for _, raw := range []string{"", "  ", "{}", `{"unexpected":true}`} {
		out, err := v.Validate(raw)
		require.NoError(t, err, raw)
		assert.NotEmpty(t, out)
	}
	_, err = v.Validate("null")
	assert.ErrorIs(t, err, core.ErrBadArguments)
}
