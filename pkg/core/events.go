// Package core implements streaming and non-streaming text generation on
// top of an ai.LanguageModel: settings validation, the multi-step tool
// loop, stream translation from provider parts to rich events, tool
// dispatch, and the callback surface.
package core

import (
	"encoding/base64"
	"encoding/json"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// StreamEventType identifies an event emitted on a text stream.
type StreamEventType string

const (
	EventStart          StreamEventType = "start"
	EventStartStep      StreamEventType = "start-step"
	EventTextStart      StreamEventType = "text-start"
	EventTextDelta      StreamEventType = "text-delta"
	EventTextEnd        StreamEventType = "text-end"
	EventReasoningStart StreamEventType = "reasoning-start"
	EventReasoningDelta StreamEventType = "reasoning-delta"
	EventReasoningEnd   StreamEventType = "reasoning-end"
	EventToolInputStart StreamEventType = "tool-input-start"
	EventToolInputDelta StreamEventType = "tool-input-delta"
	EventToolInputEnd   StreamEventType = "tool-input-end"
	EventToolCall       StreamEventType = "tool-call"
	EventToolResult     StreamEventType = "tool-result"
	EventToolError      StreamEventType = "tool-error"
	EventSource         StreamEventType = "source"
	EventFile           StreamEventType = "file"
	EventFinishStep     StreamEventType = "finish-step"
	EventFinish         StreamEventType = "finish"
	EventError          StreamEventType = "error"
	EventRaw            StreamEventType = "raw"
)

// TypedToolCall is a fully assembled tool call: complete input, classified
// as static (matching a registered tool) or dynamic.
type TypedToolCall struct {
	ToolCallID       string          `json:"toolCallId"`
	ToolName         string          `json:"toolName"`
	Input            json.RawMessage `json:"input"`
	Dynamic          bool            `json:"dynamic,omitempty"`
	ProviderExecuted bool            `json:"providerExecuted,omitempty"`
}

// TypedToolResult carries the output of an executed tool call together
// with the call it answers.
type TypedToolResult struct {
	ToolCallID       string          `json:"toolCallId"`
	ToolName         string          `json:"toolName"`
	Input            json.RawMessage `json:"input"`
	Output           json.RawMessage `json:"output"`
	Dynamic          bool            `json:"dynamic,omitempty"`
	ProviderExecuted bool            `json:"providerExecuted,omitempty"`
}

// TypedToolError reports a tool execution that returned an error. The
// step continues; the error is recorded as content.
type TypedToolError struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Input      json.RawMessage `json:"input"`
	Err        error           `json:"-"`
	Dynamic    bool            `json:"dynamic,omitempty"`
}

// GeneratedFile is a file emitted by the model. Data is always available
// base64-encoded; Bytes decodes on demand.
type GeneratedFile struct {
	Base64    string `json:"base64"`
	MediaType string `json:"mediaType"`
}

// Bytes decodes the base64 payload.
func (f GeneratedFile) Bytes() ([]byte, error) {
	return base64.StdEncoding.DecodeString(f.Base64)
}

// StreamEvent is one event on the output channel of a streaming call.
// Type discriminates which fields are set.
type StreamEvent struct {
	Type StreamEventType `json:"type"`

	// ID correlates start/delta/end spans for text, reasoning and tool input.
	ID    string `json:"id,omitempty"`
	Delta string `json:"delta,omitempty"`

	// Tool input span metadata and assembled calls.
	ToolName         string           `json:"toolName,omitempty"`
	ProviderExecuted bool             `json:"providerExecuted,omitempty"`
	ToolCall         *TypedToolCall   `json:"toolCall,omitempty"`
	ToolResult       *TypedToolResult `json:"toolResult,omitempty"`
	ToolError        *TypedToolError  `json:"toolError,omitempty"`

	Source *ai.Source     `json:"source,omitempty"`
	File   *GeneratedFile `json:"file,omitempty"`

	// start-step
	Warnings []ai.CallWarning     `json:"warnings,omitempty"`
	Request  *ai.RequestMetadata  `json:"request,omitempty"`
	Response *ai.ResponseMetadata `json:"response,omitempty"`

	// finish-step and finish
	Usage            *ai.Usage           `json:"usage,omitempty"`
	FinishReason     ai.FinishReason     `json:"finishReason,omitempty"`
	TotalUsage       *ai.Usage           `json:"totalUsage,omitempty"`
	ProviderMetadata ai.ProviderMetadata `json:"providerMetadata,omitempty"`

	// raw (only when raw passthrough is enabled)
	Raw json.RawMessage `json:"raw,omitempty"`

	// error
	Err error `json:"-"`
}

// isChunk reports whether an event is forwarded to the on-chunk callback.
func isChunk(ev StreamEvent) bool {
	switch ev.Type {
	case EventTextDelta, EventReasoningDelta, EventSource, EventFile,
		EventToolCall, EventToolInputStart, EventToolInputDelta,
		EventToolResult, EventRaw:
		return true
	}
	return false
}
