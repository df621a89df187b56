package core

import (
	"encoding/json"
	"strings"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// ContentPart is one piece of step content. Parts are appended in stream
// order: a text or reasoning part is materialized when its span ends, not
// per delta.
type ContentPart interface {
	contentPart()
}

// TextPart is a completed text span.
type TextPart struct {
	Text             string              `json:"text"`
	ProviderMetadata ai.ProviderMetadata `json:"providerMetadata,omitempty"`
}

// ReasoningPart is a completed reasoning span.
type ReasoningPart struct {
	Text             string              `json:"text"`
	ProviderMetadata ai.ProviderMetadata `json:"providerMetadata,omitempty"`
}

// SourcePart records a citation surfaced by the provider.
type SourcePart struct {
	Source ai.Source `json:"source"`
}

// FilePart records a file generated by the model.
type FilePart struct {
	File GeneratedFile `json:"file"`
}

// ToolCallPart records an assembled tool call.
type ToolCallPart struct {
	Call TypedToolCall `json:"call"`
}

// ToolResultPart records a tool result, whether executed locally or by
// the provider.
type ToolResultPart struct {
	Result TypedToolResult `json:"result"`
}

// ToolErrorPart records a failed tool execution.
type ToolErrorPart struct {
	ToolCallID string          `json:"toolCallId"`
	ToolName   string          `json:"toolName"`
	Input      json.RawMessage `json:"input"`
	Err        error           `json:"-"`
	Dynamic    bool            `json:"dynamic,omitempty"`
}

func (TextPart) contentPart()      {}
func (ReasoningPart) contentPart() {}
func (SourcePart) contentPart()    {}
func (FilePart) contentPart()      {}
func (ToolCallPart) contentPart()  {}
func (ToolResultPart) contentPart() {}
func (ToolErrorPart) contentPart() {}

// StepResult is the frozen outcome of one model step. Once constructed it
// is never mutated.
type StepResult struct {
	Content          []ContentPart        `json:"content"`
	FinishReason     ai.FinishReason      `json:"finishReason"`
	Usage            ai.Usage             `json:"usage"`
	Warnings         []ai.CallWarning     `json:"warnings,omitempty"`
	Request          ai.RequestMetadata   `json:"request,omitempty"`
	Response         *ai.ResponseMetadata `json:"response,omitempty"`
	ProviderMetadata ai.ProviderMetadata  `json:"providerMetadata,omitempty"`
}

// Text concatenates all text parts of the step in order.
func (s StepResult) Text() string {
	var b strings.Builder
	for _, p := range s.Content {
		if t, ok := p.(TextPart); ok {
			b.WriteString(t.Text)
		}
	}
	return b.String()
}

// ReasoningText concatenates all reasoning parts of the step in order.
func (s StepResult) ReasoningText() string {
	var b strings.Builder
	for _, p := range s.Content {
		if r, ok := p.(ReasoningPart); ok {
			b.WriteString(r.Text)
		}
	}
	return b.String()
}

// ToolCalls returns the assembled tool calls of the step.
func (s StepResult) ToolCalls() []TypedToolCall {
	var out []TypedToolCall
	for _, p := range s.Content {
		if c, ok := p.(ToolCallPart); ok {
			out = append(out, c.Call)
		}
	}
	return out
}

// ToolResults returns the tool results of the step.
func (s StepResult) ToolResults() []TypedToolResult {
	var out []TypedToolResult
	for _, p := range s.Content {
		if r, ok := p.(ToolResultPart); ok {
			out = append(out, r.Result)
		}
	}
	return out
}

// Sources returns the citations of the step.
func (s StepResult) Sources() []ai.Source {
	var out []ai.Source
	for _, p := range s.Content {
		if sp, ok := p.(SourcePart); ok {
			out = append(out, sp.Source)
		}
	}
	return out
}

// Files returns the files generated in the step.
func (s StepResult) Files() []GeneratedFile {
	var out []GeneratedFile
	for _, p := range s.Content {
		if f, ok := p.(FilePart); ok {
			out = append(out, f.File)
		}
	}
	return out
}

// clientToolCalls returns the non-provider-executed tool calls, the ones
// this process is responsible for executing.
func (s StepResult) clientToolCalls() []TypedToolCall {
	var out []TypedToolCall
	for _, c := range s.ToolCalls() {
		if !c.ProviderExecuted {
			out = append(out, c)
		}
	}
	return out
}
