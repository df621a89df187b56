package tools

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v6"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// ValidateAndCoerce validates input against the JSON Schema in the tool
// definition's InputSchema field. It returns the (possibly coerced) input or
// a descriptive error.
//
// Coercion rules (matching what LLMs commonly get wrong):
//   - A JSON string containing a valid number is coerced to a number when
//     the schema expects "number" or "integer".
//   - A JSON number is coerced to string when the schema expects "string".
//   - A string "true"/"false" is coerced to bool when the schema expects "boolean".
//
// If the schema cannot be compiled, the input is returned unchanged (fail
// open, so callers don't break on bad schemas).
func ValidateAndCoerce(def ai.ToolDefinition, input json.RawMessage) (json.RawMessage, error) {
	if len(def.InputSchema) == 0 {
		return input, nil
	}

	schema, err := compileSchema(def.InputSchema)
	if err != nil {
		return input, nil
	}

	// First attempt: validate as-is.
	if err := validateJSON(schema, input); err == nil {
		return input, nil
	}

	// Second attempt: coerce obvious type mismatches and retry.
	coerced := coerceInput(input, def.InputSchema)
	if err := validateJSON(schema, coerced); err == nil {
		return coerced, nil
	} else {
		return nil, formatValidationError(def.Name, input, err)
	}
}

// compileSchema unmarshals the schema bytes and compiles them.
// A fresh compiler is used each time to avoid resource-collision errors.
func compileSchema(schemaBytes []byte) (*jsonschema.Schema, error) {
	// jsonschema/v6 requires an already-unmarshaled value for AddResource.
	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schemaBytes))
	if err != nil {
		return nil, fmt.Errorf("unmarshal schema: %w", err)
	}

	c := jsonschema.NewCompiler()
	const url = "mem://tool/schema"
	if err := c.AddResource(url, doc); err != nil {
		return nil, fmt.Errorf("add schema resource: %w", err)
	}
	return c.Compile(url)
}

// validateJSON validates a raw JSON document against the schema.
func validateJSON(schema *jsonschema.Schema, input json.RawMessage) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(input))
	if err != nil {
		return err
	}
	return schema.Validate(inst)
}

// coerceInput attempts simple type coercions on top-level properties.
// Non-object inputs are returned unchanged.
func coerceInput(input json.RawMessage, schemaBytes []byte) json.RawMessage {
	var schemaDef struct {
		Properties map[string]struct {
			Type string `json:"type"`
		} `json:"properties"`
	}
	_ = json.Unmarshal(schemaBytes, &schemaDef)

	var args map[string]any
	if err := json.Unmarshal(input, &args); err != nil {
		return input
	}

	out := make(map[string]any, len(args))
	for k, v := range args {
		prop, ok := schemaDef.Properties[k]
		if !ok {
			out[k] = v
			continue
		}
		out[k] = coerceValue(v, prop.Type)
	}

	b, err := json.Marshal(out)
	if err != nil {
		return input
	}
	return b
}

func coerceValue(v any, targetType string) any {
	switch targetType {
	case "number", "integer":
		// String → number (LLMs sometimes quote numeric values)
		if s, ok := v.(string); ok {
			var n float64
			if err := json.Unmarshal([]byte(s), &n); err == nil {
				if targetType == "integer" {
					return int64(n)
				}
				return n
			}
		}
	case "string":
		// Number → string
		switch n := v.(type) {
		case float64:
			return fmt.Sprintf("%g", n)
		case int64:
			return fmt.Sprintf("%d", n)
		case json.Number:
			return n.String()
		}
	case "boolean":
		// String → bool
		if s, ok := v.(string); ok {
			switch strings.ToLower(s) {
			case "true":
				return true
			case "false":
				return false
			}
		}
	}
	return v
}

func formatValidationError(toolName string, input json.RawMessage, err error) error {
	return fmt.Errorf("tool %q input validation failed: %v\n\nReceived:\n%s",
		toolName, err, string(input))
}
