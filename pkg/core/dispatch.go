package core

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/saribmah/ai-sdk/pkg/ai"
	"github.com/saribmah/ai-sdk/pkg/tools"
)

// parseToolCall turns a raw provider tool call into a typed one.
//
// A call naming a registered tool is static: its input is parsed and
// validated against the tool's schema. A call naming an unknown tool is
// classified as dynamic and passed through without validation, so
// provider-side tools the caller never registered still surface.
func parseToolCall(part ai.ToolCallPart, registry *tools.Registry) (TypedToolCall, error) {
	raw := part.Input
	if raw == "" {
		// Models omit the input entirely for zero-argument tools.
		raw = "{}"
	}

	tool, ok := lookupTool(registry, part.ToolName)
	if !ok {
		if !json.Valid([]byte(raw)) {
			return TypedToolCall{}, &InvalidToolInputError{
				ToolName: part.ToolName,
				Input:    raw,
				Cause:    fmt.Errorf("input is not valid JSON"),
			}
		}
		return TypedToolCall{
			ToolCallID:       part.ToolCallID,
			ToolName:         part.ToolName,
			Input:            json.RawMessage(raw),
			Dynamic:          true,
			ProviderExecuted: part.ProviderExecuted,
		}, nil
	}

	if !json.Valid([]byte(raw)) {
		return TypedToolCall{}, &InvalidToolInputError{
			ToolName: part.ToolName,
			Input:    raw,
			Cause:    fmt.Errorf("input is not valid JSON"),
		}
	}

	input, err := tools.ValidateAndCoerce(tool.Definition(), json.RawMessage(raw))
	if err != nil {
		return TypedToolCall{}, &InvalidToolInputError{
			ToolName: part.ToolName,
			Input:    raw,
			Cause:    err,
		}
	}

	return TypedToolCall{
		ToolCallID:       part.ToolCallID,
		ToolName:         part.ToolName,
		Input:            input,
		ProviderExecuted: part.ProviderExecuted,
	}, nil
}

func lookupTool(registry *tools.Registry, name string) (tools.Tool, bool) {
	t := registry.Get(name)
	if t == nil {
		return nil, false
	}
	return t, true
}

// executeToolCall runs one client tool call and returns the result or
// error event content. Declaration-only tools produce a tool error: the
// loop cannot continue without a result for the call.
func executeToolCall(ctx context.Context, registry *tools.Registry, call TypedToolCall) (TypedToolResult, *TypedToolError) {
	tool := registry.Get(call.ToolName)
	if tool == nil {
		return TypedToolResult{}, &TypedToolError{
			ToolCallID: call.ToolCallID,
			ToolName:   call.ToolName,
			Input:      call.Input,
			Dynamic:    call.Dynamic,
			Err: &NoSuchToolError{
				ToolName:       call.ToolName,
				AvailableTools: registry.Names(),
			},
		}
	}

	exec, ok := tool.(tools.Executable)
	if !ok {
		return TypedToolResult{}, &TypedToolError{
			ToolCallID: call.ToolCallID,
			ToolName:   call.ToolName,
			Input:      call.Input,
			Dynamic:    call.Dynamic,
			Err:        fmt.Errorf("tool %q has no execute function", call.ToolName),
		}
	}

	out, err := exec.Execute(ctx, call.ToolCallID, call.Input)
	if err != nil {
		return TypedToolResult{}, &TypedToolError{
			ToolCallID: call.ToolCallID,
			ToolName:   call.ToolName,
			Input:      call.Input,
			Dynamic:    call.Dynamic,
			Err:        err,
		}
	}

	output, err := json.Marshal(out)
	if err != nil {
		return TypedToolResult{}, &TypedToolError{
			ToolCallID: call.ToolCallID,
			ToolName:   call.ToolName,
			Input:      call.Input,
			Dynamic:    call.Dynamic,
			Err:        fmt.Errorf("marshal tool output: %w", err),
		}
	}

	return TypedToolResult{
		ToolCallID: call.ToolCallID,
		ToolName:   call.ToolName,
		Input:      call.Input,
		Output:     output,
		Dynamic:    call.Dynamic,
	}, nil
}
