package ai

import "encoding/json"

// ---------------------------------------------------------------------------
// Stream parts (the wire vocabulary producers emit)
// ---------------------------------------------------------------------------

// StreamPartType enumerates all events a language model can emit while
// streaming.
type StreamPartType string

const (
	// Lifecycle
	StreamPartStreamStart StreamPartType = "stream-start"
	StreamPartFinish      StreamPartType = "finish"
	StreamPartError       StreamPartType = "error"

	// Text spans
	StreamPartTextStart StreamPartType = "text-start"
	StreamPartTextDelta StreamPartType = "text-delta"
	StreamPartTextEnd   StreamPartType = "text-end"

	// Reasoning spans
	StreamPartReasoningStart StreamPartType = "reasoning-start"
	StreamPartReasoningDelta StreamPartType = "reasoning-delta"
	StreamPartReasoningEnd   StreamPartType = "reasoning-end"

	// Tool input spans (argument streaming)
	StreamPartToolInputStart StreamPartType = "tool-input-start"
	StreamPartToolInputDelta StreamPartType = "tool-input-delta"
	StreamPartToolInputEnd   StreamPartType = "tool-input-end"

	// Complete tool call / result
	StreamPartToolCall   StreamPartType = "tool-call"
	StreamPartToolResult StreamPartType = "tool-result"

	// Content attachments
	StreamPartSource StreamPartType = "source"
	StreamPartFile   StreamPartType = "file"

	// Metadata
	StreamPartResponseMetadata StreamPartType = "response-metadata"
	StreamPartRaw              StreamPartType = "raw"
)

// ToolCallPart is a complete tool call on the wire. Input is the raw JSON
// argument text as streamed by the model (possibly empty for no-arg calls).
type ToolCallPart struct {
	ToolCallID       string `json:"tool_call_id"`
	ToolName         string `json:"tool_name"`
	Input            string `json:"input"`
	ProviderExecuted bool   `json:"provider_executed,omitempty"`
}

// ToolResultPart is a provider-supplied tool result on the wire. It appears
// only for provider-executed tools; locally executed tools never round-trip
// through the provider stream.
type ToolResultPart struct {
	ToolCallID       string          `json:"tool_call_id"`
	ToolName         string          `json:"tool_name"`
	Result           json.RawMessage `json:"result"`
	IsError          bool            `json:"is_error,omitempty"`
	ProviderExecuted bool            `json:"provider_executed,omitempty"`
}

// StreamPart is one event on a provider stream. Type selects which fields
// are meaningful; unused fields are zero.
//
// Span events (text, reasoning, tool input) share an ID that groups the
// start/delta/end sequence of one span. IDs are provider-assigned, opaque,
// and unique only within one stream.
type StreamPart struct {
	Type StreamPartType

	// Span events
	ID    string
	Delta string

	// tool-input-start
	ToolName         string
	ProviderExecuted bool

	// tool-call / tool-result
	ToolCall   *ToolCallPart
	ToolResult *ToolResultPart

	// source / file
	Source *Source
	File   *File

	// stream-start
	Warnings []CallWarning

	// response-metadata
	Response *ResponseMetadata

	// finish
	Usage            Usage
	FinishReason     FinishReason
	ProviderMetadata ProviderMetadata

	// raw
	Raw json.RawMessage

	// error
	Err error
}
