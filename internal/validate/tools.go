package validate

import (
	"fmt"
	"regexp"

	"modelsagent/internal/core"
	"modelsagent/internal/util"

	"github.com/invopop/jsonschema"
)

var toolNameRegex = regexp.MustCompile(core.ToolNamePattern)

var reflector = &jsonschema.Reflector{
	DoNotReference:            true,
	ExpandedStruct:            true,
	AllowAdditionalProperties: true,
}

// SchemaFor reflects the parameter schema of an argument struct. descriptions
// overrides property descriptions by JSON name. The result is a plain map so
// it can be sent to providers and compiled for validation.
func SchemaFor(args any, descriptions map[string]string) (map[string]any, error) {
	data, err := util.MarshalJSON(reflector.Reflect(args))
	if err != nil {
		return nil, fmt.Errorf("marshal reflected schema: %w", err)
	}

	var schema map[string]any
	if err := util.UnmarshalJSON(data, &schema); err != nil {
		return nil, fmt.Errorf("decode reflected schema: %w", err)
	}
	delete(schema, "$schema")
	delete(schema, "$id")

	props, ok := schema["properties"].(map[string]any)
	if !ok {
		props = map[string]any{}
		schema["properties"] = props
	}
	for name, desc := range descriptions {
		prop, ok := props[name].(map[string]any)
		if !ok {
			return nil, fmt.Errorf("description given for unknown parameter %q", name)
		}
		prop["description"] = desc
	}
	return schema, nil
}

// ToolDefinition checks a tool declaration before it is offered to the
// tool-calling provider.
func ToolDefinition(def core.ToolDefinition) error {
	if !toolNameRegex.MatchString(def.Name) {
		return fmt.Errorf("tool name %q must match %s", def.Name, core.ToolNamePattern)
	}
	if def.Description == "" {
		return fmt.Errorf("tool %s has no description", def.Name)
	}
	if def.Parameters["type"] != core.SchemaTypeObject {
		return fmt.Errorf("tool %s parameters must be an object schema", def.Name)
	}

	props, ok := def.Parameters["properties"].(map[string]any)
	if !ok {
		return fmt.Errorf("tool %s parameters have no properties map", def.Name)
	}
	for name := range props {
		if !toolNameRegex.MatchString(name) {
			return fmt.Errorf("tool %s has invalid parameter name %q", def.Name, name)
		}
	}

	required, err := requiredNames(def.Parameters["required"])
	if err != nil {
		return fmt.Errorf("tool %s: %w", def.Name, err)
	}
	for _, name := range required {
		if _, ok := props[name]; !ok {
			return fmt.Errorf("tool %s requires undeclared parameter %q", def.Name, name)
		}
	}
	return nil
}

func requiredNames(v any) ([]string, error) {
	switch r := v.(type) {
	case nil:
		return nil, nil
	case []string:
		return r, nil
	case []any:
		names := make([]string, 0, len(r))
		for _, item := range r {
			s, ok := item.(string)
			if !ok {
				return nil, fmt.Errorf("required entry %v is not a string", item)
			}
			names = append(names, s)
		}
		return names, nil
	default:
		return nil, fmt.Errorf("required must be a list, got %T", v)
	}
}
