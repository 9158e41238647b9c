package validate

import (
	"bytes"
	"fmt"
	"strings"

	"modelsagent/internal/core"
	"modelsagent/internal/util"

	"github.com/santhosh-tekuri/jsonschema/v6"
)

// ArgumentValidator checks raw function-call arguments against a tool's parameter schema.
type ArgumentValidator struct {
	tool   string
	schema *jsonschema.Schema
}

// CompileArguments compiles the parameter schema of tool.
func CompileArguments(tool string, parameters map[string]any) (*ArgumentValidator, error) {
	data, err := util.MarshalJSON(parameters)
	if err != nil {
		return nil, err
	}
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(data))
	if err != nil {
		return nil, err
	}

	url := fmt.Sprintf("mem://tools/%s.json", tool)
	c := jsonschema.NewCompiler()
	if err := c.AddResource(url, doc); err != nil {
		return nil, err
	}
	schema, err := c.Compile(url)
	if err != nil {
		return nil, fmt.Errorf("compile parameters of %s: %w", tool, err)
	}
	return &ArgumentValidator{tool: tool, schema: schema}, nil
}

// Validate parses raw and checks it against the schema. Empty arguments are
// treated as an empty object. The returned bytes are ready to decode into
// the tool's argument struct.
func (v *ArgumentValidator) Validate(raw string) ([]byte, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		raw = "{}"
	}

	inst, err := jsonschema.UnmarshalJSON(strings.NewReader(raw))
	if err != nil {
		return nil, core.NewBadArguments(v.tool, err)
	}
	if err := v.schema.Validate(inst); err != nil {
		return nil, core.NewBadArguments(v.tool, err)
	}
	return []byte(raw), nil
}
