package core

import (
	"encoding/json"
	"errors"
	"testing"

	"github.com/saribmah/ai-sdk/pkg/ai"
	"github.com/saribmah/ai-sdk/pkg/tools"
)

func newTestTranslator(includeRaw bool) *translator {
	return newTranslator(tools.NewRegistry(), includeRaw, map[string]json.RawMessage{}, ai.RequestMetadata{})
}

func TestTranslator_ResponseMetadataAbsorbed(t *testing.T) {
	tr := newTestTranslator(false)

	evs := tr.translate(ai.StreamPart{
		Type:     ai.StreamPartResponseMetadata,
		Response: &ai.ResponseMetadata{ID: "resp_1", ModelID: "m1"},
	})
	if len(evs) != 0 {
		t.Fatalf("response metadata produced %d events, want 0", len(evs))
	}

	tr.translate(ai.StreamPart{Type: ai.StreamPartFinish, FinishReason: ai.FinishReasonStop})
	step := tr.stepResult()
	if step.Response == nil || step.Response.ID != "resp_1" {
		t.Fatalf("step response = %+v", step.Response)
	}
}

func TestTranslator_InterleavedSpans(t *testing.T) {
	// Two concurrent spans; content parts appear in span-close order.
	tr := newTestTranslator(false)

	tr.translate(ai.StreamPart{Type: ai.StreamPartTextStart, ID: "a"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartReasoningStart, ID: "b"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartReasoningDelta, ID: "b", Delta: "thinking"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartTextDelta, ID: "a", Delta: "answer"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartReasoningEnd, ID: "b"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartTextEnd, ID: "a"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartFinish, FinishReason: ai.FinishReasonStop})

	step := tr.stepResult()
	if len(step.Content) != 2 {
		t.Fatalf("content parts = %d, want 2", len(step.Content))
	}
	if r, ok := step.Content[0].(ReasoningPart); !ok || r.Text != "thinking" {
		t.Fatalf("content[0] = %+v", step.Content[0])
	}
	if txt, ok := step.Content[1].(TextPart); !ok || txt.Text != "answer" {
		t.Fatalf("content[1] = %+v", step.Content[1])
	}
}

func TestTranslator_DeltaWithoutStart(t *testing.T) {
	tr := newTestTranslator(false)

	tr.translate(ai.StreamPart{Type: ai.StreamPartTextDelta, ID: "a", Delta: "or"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartTextDelta, ID: "a", Delta: "phan"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartFinish, FinishReason: ai.FinishReasonStop})

	if got := tr.stepResult().Text(); got != "orphan" {
		t.Fatalf("text = %q", got)
	}
}

func TestTranslator_EmptySpanProducesNoPart(t *testing.T) {
	// A span that closes before any delta arrived must not leave an empty
	// content part behind. Same for spans the finish-time flush closes.
	tr := newTestTranslator(false)

	tr.translate(ai.StreamPart{Type: ai.StreamPartTextStart, ID: "a"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartTextEnd, ID: "a"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartReasoningStart, ID: "b"})
	tr.translate(ai.StreamPart{Type: ai.StreamPartFinish, FinishReason: ai.FinishReasonStop})

	step := tr.stepResult()
	if len(step.Content) != 0 {
		t.Fatalf("content parts = %+v, want none", step.Content)
	}
}

func TestTranslator_ProviderToolResultCorrelation(t *testing.T) {
	tr := newTestTranslator(false)

	tr.translate(ai.StreamPart{Type: ai.StreamPartToolCall, ToolCall: &ai.ToolCallPart{
		ToolCallID: "c1", ToolName: "search", Input: `{"q":"go"}`, ProviderExecuted: true,
	}})
	evs := tr.translate(ai.StreamPart{Type: ai.StreamPartToolResult, ToolResult: &ai.ToolResultPart{
		ToolCallID: "c1", ToolName: "search", Result: json.RawMessage(`{"hits":3}`), ProviderExecuted: true,
	}})

	if len(evs) != 1 || evs[0].Type != EventToolResult {
		t.Fatalf("events = %+v", evs)
	}
	res := evs[0].ToolResult
	if string(res.Input) != `{"q":"go"}` {
		t.Fatalf("correlated input = %s", res.Input)
	}
	if !res.Dynamic {
		t.Fatal("unregistered provider tool result not dynamic")
	}
}

func TestTranslator_ProviderToolErrorResult(t *testing.T) {
	tr := newTestTranslator(false)

	tr.translate(ai.StreamPart{Type: ai.StreamPartToolCall, ToolCall: &ai.ToolCallPart{
		ToolCallID: "c1", ToolName: "search", Input: `{}`, ProviderExecuted: true,
	}})
	evs := tr.translate(ai.StreamPart{Type: ai.StreamPartToolResult, ToolResult: &ai.ToolResultPart{
		ToolCallID: "c1", ToolName: "search", Result: json.RawMessage(`"quota exceeded"`),
		IsError: true, ProviderExecuted: true,
	}})

	if len(evs) != 1 || evs[0].Type != EventToolError {
		t.Fatalf("events = %+v", evs)
	}
	tr.translate(ai.StreamPart{Type: ai.StreamPartFinish, FinishReason: ai.FinishReasonStop})
	step := tr.stepResult()
	found := false
	for _, p := range step.Content {
		if _, ok := p.(ToolErrorPart); ok {
			found = true
		}
	}
	if !found {
		t.Fatal("tool error missing from step content")
	}
}

func TestTranslator_FileNormalization(t *testing.T) {
	tr := newTestTranslator(false)

	evs := tr.translate(ai.StreamPart{Type: ai.StreamPartFile, File: &ai.File{
		MediaType: "image/png",
		Data:      []byte{1, 2, 3},
	}})
	if len(evs) != 1 || evs[0].File == nil {
		t.Fatalf("events = %+v", evs)
	}
	if evs[0].File.Base64 != "AQID" {
		t.Fatalf("base64 = %q", evs[0].File.Base64)
	}

	evs = tr.translate(ai.StreamPart{Type: ai.StreamPartFile, File: &ai.File{
		MediaType: "image/png",
		Base64:    "AQID",
	}})
	if evs[0].File.Base64 != "AQID" {
		t.Fatalf("base64 passthrough = %q", evs[0].File.Base64)
	}
}

func TestTranslator_RawSuppressedByDefault(t *testing.T) {
	tr := newTestTranslator(false)
	if evs := tr.translate(ai.StreamPart{Type: ai.StreamPartRaw, Raw: json.RawMessage(`{}`)}); len(evs) != 0 {
		t.Fatalf("raw events = %d, want 0", len(evs))
	}

	tr = newTestTranslator(true)
	if evs := tr.translate(ai.StreamPart{Type: ai.StreamPartRaw, Raw: json.RawMessage(`{}`)}); len(evs) != 1 {
		t.Fatalf("raw events = %d, want 1", len(evs))
	}
}

func TestParseToolCall_InvalidJSON(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(tools.Declaration(ai.ToolDefinition{
		Name:        "echo",
		InputSchema: json.RawMessage(`{"type":"object"}`),
	}))

	_, err := parseToolCall(ai.ToolCallPart{
		ToolCallID: "c1", ToolName: "echo", Input: `{"text":`,
	}, reg)
	var inputErr *InvalidToolInputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("err = %v, want InvalidToolInputError", err)
	}
}

func TestParseToolCall_SchemaRejection(t *testing.T) {
	reg := tools.NewRegistry()
	reg.Register(tools.Declaration(ai.ToolDefinition{
		Name: "add",
		InputSchema: json.RawMessage(`{
			"type": "object",
			"properties": {"n": {"type": "number"}},
			"required": ["n"]
		}`),
	}))

	// Coercible: string that parses as a number passes.
	call, err := parseToolCall(ai.ToolCallPart{
		ToolCallID: "c1", ToolName: "add", Input: `{"n":"5"}`,
	}, reg)
	if err != nil {
		t.Fatalf("coercible input rejected: %v", err)
	}
	var args struct {
		N float64 `json:"n"`
	}
	if err := json.Unmarshal(call.Input, &args); err != nil || args.N != 5 {
		t.Fatalf("coerced input = %s", call.Input)
	}

	// Missing required field fails.
	_, err = parseToolCall(ai.ToolCallPart{
		ToolCallID: "c2", ToolName: "add", Input: `{}`,
	}, reg)
	var inputErr *InvalidToolInputError
	if !errors.As(err, &inputErr) {
		t.Fatalf("err = %v, want InvalidToolInputError", err)
	}
}
