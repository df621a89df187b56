// Package ai defines the provider-facing types for LLM calls: messages,
// content blocks, tool definitions, usage accounting, and the stream part
// vocabulary emitted by language model implementations.
package ai

import "encoding/json"

// ---------------------------------------------------------------------------
// Content blocks
// ---------------------------------------------------------------------------

type TextContent struct {
	Type string `json:"type"` // "text"
	Text string `json:"text"`
}

// FileContent carries binary data (images, audio, documents) as base64.
type FileContent struct {
	Type      string `json:"type"`       // "file"
	Data      string `json:"data"`       // base64
	MediaType string `json:"media_type"` // e.g. "image/png"
}

type ReasoningContent struct {
	Type string `json:"type"` // "reasoning"
	Text string `json:"text"`
}

// ToolCallContent is a tool invocation requested by the assistant.
// Input is the raw JSON argument payload as produced by the model.
type ToolCallContent struct {
	Type             string          `json:"type"` // "tool_call"
	ToolCallID       string          `json:"tool_call_id"`
	ToolName         string          `json:"tool_name"`
	Input            json.RawMessage `json:"input"`
	ProviderExecuted bool            `json:"provider_executed,omitempty"`
}

// ToolResultContent carries a tool's output back to the model.
type ToolResultContent struct {
	Type       string          `json:"type"` // "tool_result"
	ToolCallID string          `json:"tool_call_id"`
	ToolName   string          `json:"tool_name"`
	Output     json.RawMessage `json:"output"`
	IsError    bool            `json:"is_error,omitempty"`
}

// ContentBlock is the union of block types carried by messages.
type ContentBlock interface {
	contentBlock()
}

func (TextContent) contentBlock()       {}
func (FileContent) contentBlock()       {}
func (ReasoningContent) contentBlock()  {}
func (ToolCallContent) contentBlock()   {}
func (ToolResultContent) contentBlock() {}

// ---------------------------------------------------------------------------
// Messages
// ---------------------------------------------------------------------------

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleTool      Role = "tool"
)

// UserMessage is a message from the user (human turn).
type UserMessage struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

func (m UserMessage) GetRole() Role { return m.Role }

// AssistantMessage is a response turn from the model. It may mix text,
// reasoning, and tool call blocks.
type AssistantMessage struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

func (m AssistantMessage) GetRole() Role { return m.Role }

// ToolMessage carries one or more tool results back to the model.
type ToolMessage struct {
	Role    Role           `json:"role"`
	Content []ContentBlock `json:"content"`
}

func (m ToolMessage) GetRole() Role { return m.Role }

// Message is the union type; all three message kinds implement this.
type Message interface {
	GetRole() Role
}

// NewUserTextMessage builds a user message with a single text block.
func NewUserTextMessage(text string) UserMessage {
	return UserMessage{
		Role:    RoleUser,
		Content: []ContentBlock{TextContent{Type: "text", Text: text}},
	}
}

// ---------------------------------------------------------------------------
// Usage
// ---------------------------------------------------------------------------

// Usage is the token accounting reported by a provider for one call.
type Usage struct {
	InputTokens       int `json:"input_tokens"`
	OutputTokens      int `json:"output_tokens"`
	TotalTokens       int `json:"total_tokens"`
	ReasoningTokens   int `json:"reasoning_tokens,omitempty"`
	CachedInputTokens int `json:"cached_input_tokens,omitempty"`
}

// Add returns the field-wise sum of u and other.
func (u Usage) Add(other Usage) Usage {
	return Usage{
		InputTokens:       u.InputTokens + other.InputTokens,
		OutputTokens:      u.OutputTokens + other.OutputTokens,
		TotalTokens:       u.TotalTokens + other.TotalTokens,
		ReasoningTokens:   u.ReasoningTokens + other.ReasoningTokens,
		CachedInputTokens: u.CachedInputTokens + other.CachedInputTokens,
	}
}

// ---------------------------------------------------------------------------
// Finish reasons
// ---------------------------------------------------------------------------

type FinishReason string

const (
	FinishReasonStop          FinishReason = "stop"
	FinishReasonLength        FinishReason = "length"
	FinishReasonContentFilter FinishReason = "content-filter"
	FinishReasonToolCalls     FinishReason = "tool-calls"
	FinishReasonError         FinishReason = "error"
	FinishReasonOther         FinishReason = "other"
	FinishReasonUnknown       FinishReason = "unknown"
)

// ---------------------------------------------------------------------------
// Warnings and metadata
// ---------------------------------------------------------------------------

// CallWarning reports a non-fatal problem with a call, e.g. an unsupported
// setting the provider silently ignored.
type CallWarning struct {
	Type    string `json:"type"` // "unsupported-setting" | "unsupported-tool" | "other"
	Setting string `json:"setting,omitempty"`
	Details string `json:"details,omitempty"`
	Message string `json:"message,omitempty"`
}

// ProviderMetadata is an opaque bag of provider-specific data, keyed by
// provider name.
type ProviderMetadata map[string]json.RawMessage

// ResponseMetadata identifies the provider response a stream or result
// came from.
type ResponseMetadata struct {
	ID        string `json:"id,omitempty"`
	ModelID   string `json:"model_id,omitempty"`
	Timestamp int64  `json:"timestamp,omitempty"` // unix ms
}

// RequestMetadata captures the raw request body sent to the provider,
// for debugging.
type RequestMetadata struct {
	Body json.RawMessage `json:"body,omitempty"`
}

// ---------------------------------------------------------------------------
// Sources and files
// ---------------------------------------------------------------------------

// Source is a citation or reference surfaced by the provider during
// generation (web search results, retrieved documents).
type Source struct {
	SourceType string `json:"source_type"` // "url" | "document"
	ID         string `json:"id"`
	URL        string `json:"url,omitempty"`
	Title      string `json:"title,omitempty"`
	MediaType  string `json:"media_type,omitempty"`
	Filename   string `json:"filename,omitempty"`
}

// File is a generated file emitted on the wire. Exactly one of Data and
// Base64 is set: providers that already hold base64 pass it through,
// providers with raw bytes set Data.
type File struct {
	MediaType string `json:"media_type"`
	Data      []byte `json:"data,omitempty"`
	Base64    string `json:"base64,omitempty"`
}

// ---------------------------------------------------------------------------
// Tool definition (schema handed to the model)
// ---------------------------------------------------------------------------

// ToolDefinition describes a tool to the model.
type ToolDefinition struct {
	Name        string          `json:"name"`
	Description string          `json:"description"`
	InputSchema json.RawMessage `json:"input_schema"` // JSON Schema object
}

// ToolChoice constrains how the model may use tools.
type ToolChoice struct {
	// Mode is "auto", "required", "none", or "tool".
	Mode string `json:"mode"`
	// ToolName is set when Mode is "tool".
	ToolName string `json:"tool_name,omitempty"`
}
