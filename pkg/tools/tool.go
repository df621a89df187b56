// Package tools defines tool declarations, the registry handed to a call as
// its tool set, and JSON Schema validation of model-produced tool inputs.
package tools

import (
	"context"
	"encoding/json"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// Tool is anything that can be declared to the model. A Tool that also
// implements Executable is run locally by the generation loop when the
// model calls it; declaration-only tools end the loop so the caller can
// handle the call itself.
type Tool interface {
	// Definition returns the schema handed to the model.
	Definition() ai.ToolDefinition
}

// Executable is a Tool the generation loop can run.
type Executable interface {
	Tool

	// Execute runs the tool. The returned value is JSON-marshaled and sent
	// back to the model as the tool result. ctx carries the call's cancel
	// signal.
	Execute(ctx context.Context, callID string, input json.RawMessage) (any, error)
}

// ---------------------------------------------------------------------------
// Function-backed tools
// ---------------------------------------------------------------------------

// FuncTool wraps a plain function as an Executable.
type FuncTool struct {
	Def ai.ToolDefinition
	Fn  func(ctx context.Context, callID string, input json.RawMessage) (any, error)
}

func (t FuncTool) Definition() ai.ToolDefinition { return t.Def }

func (t FuncTool) Execute(ctx context.Context, callID string, input json.RawMessage) (any, error) {
	return t.Fn(ctx, callID, input)
}

// New builds an Executable from a definition and a function.
func New(def ai.ToolDefinition, fn func(ctx context.Context, callID string, input json.RawMessage) (any, error)) FuncTool {
	return FuncTool{Def: def, Fn: fn}
}

// Declaration builds a declaration-only tool with no local execution.
func Declaration(def ai.ToolDefinition) Tool {
	return declarationTool{def: def}
}

type declarationTool struct {
	def ai.ToolDefinition
}

func (t declarationTool) Definition() ai.ToolDefinition { return t.def }

// ---------------------------------------------------------------------------
// SimpleSchema is a helper for building JSON Schema objects inline.
// ---------------------------------------------------------------------------

type SimpleSchema struct {
	Properties map[string]Property `json:"properties"`
	Required   []string            `json:"required,omitempty"`
}

type Property struct {
	Type        string `json:"type"`
	Description string `json:"description,omitempty"`
	Enum        []any  `json:"enum,omitempty"`
}

// MustSchema returns a JSON Schema for the given SimpleSchema.
func MustSchema(s SimpleSchema) json.RawMessage {
	s2 := map[string]any{
		"type":       "object",
		"properties": s.Properties,
	}
	if len(s.Required) > 0 {
		s2["required"] = s.Required
	}
	b, err := json.Marshal(s2)
	if err != nil {
		panic("tools.MustSchema: " + err.Error())
	}
	return b
}
