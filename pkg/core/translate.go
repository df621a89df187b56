package core

import (
	"encoding/base64"
	"encoding/json"
	"strings"

	"github.com/saribmah/ai-sdk/pkg/ai"
	"github.com/saribmah/ai-sdk/pkg/tools"
)

// ─────────────────────────────────────────────────────────────────────────────
// Stream translation
// ─────────────────────────────────────────────────────────────────────────────

// span accumulates the deltas of one text, reasoning or tool-input block.
type span struct {
	id               string
	kind             StreamEventType
	toolName         string
	providerExecuted bool
	buf              strings.Builder
	metadata         ai.ProviderMetadata
}

// translator turns raw provider stream parts into stream events while
// accumulating step content. Deltas are buffered per span; content parts
// are appended only when a span ends or the step finishes, so joining all
// deltas of a span always equals the corresponding content part.
type translator struct {
	registry   *tools.Registry
	includeRaw bool

	// callInputs correlates tool results with the inputs of earlier tool
	// calls. Shared across steps within one run.
	callInputs map[string]json.RawMessage

	request ai.RequestMetadata

	spans     map[string]*span
	spanOrder []string

	content      []ContentPart
	warnings     []ai.CallWarning
	response     *ai.ResponseMetadata
	finishReason ai.FinishReason
	usage        ai.Usage
	metadata     ai.ProviderMetadata
	finished     bool
}

func newTranslator(registry *tools.Registry, includeRaw bool, callInputs map[string]json.RawMessage, request ai.RequestMetadata) *translator {
	return &translator{
		registry:     registry,
		includeRaw:   includeRaw,
		callInputs:   callInputs,
		request:      request,
		spans:        map[string]*span{},
		finishReason: ai.FinishReasonUnknown,
	}
}

// translate maps one provider part to zero or more stream events.
func (t *translator) translate(part ai.StreamPart) []StreamEvent {
	switch part.Type {
	case ai.StreamPartStreamStart:
		t.warnings = part.Warnings
		req := t.request
		return []StreamEvent{{Type: EventStartStep, Warnings: part.Warnings, Request: &req}}

	case ai.StreamPartTextStart:
		t.openSpan(part.ID, EventTextStart, "", false)
		return []StreamEvent{{Type: EventTextStart, ID: part.ID}}

	case ai.StreamPartTextDelta:
		t.appendDelta(part.ID, EventTextStart, part.Delta, part.ProviderMetadata)
		return []StreamEvent{{Type: EventTextDelta, ID: part.ID, Delta: part.Delta}}

	case ai.StreamPartTextEnd:
		t.closeSpan(part.ID, part.ProviderMetadata)
		return []StreamEvent{{Type: EventTextEnd, ID: part.ID}}

	case ai.StreamPartReasoningStart:
		t.openSpan(part.ID, EventReasoningStart, "", false)
		return []StreamEvent{{Type: EventReasoningStart, ID: part.ID}}

	case ai.StreamPartReasoningDelta:
		t.appendDelta(part.ID, EventReasoningStart, part.Delta, part.ProviderMetadata)
		return []StreamEvent{{Type: EventReasoningDelta, ID: part.ID, Delta: part.Delta}}

	case ai.StreamPartReasoningEnd:
		t.closeSpan(part.ID, part.ProviderMetadata)
		return []StreamEvent{{Type: EventReasoningEnd, ID: part.ID}}

	case ai.StreamPartToolInputStart:
		t.openSpan(part.ID, EventToolInputStart, part.ToolName, part.ProviderExecuted)
		return []StreamEvent{{
			Type:             EventToolInputStart,
			ID:               part.ID,
			ToolName:         part.ToolName,
			ProviderExecuted: part.ProviderExecuted,
		}}

	case ai.StreamPartToolInputDelta:
		t.appendDelta(part.ID, EventToolInputStart, part.Delta, nil)
		return []StreamEvent{{Type: EventToolInputDelta, ID: part.ID, Delta: part.Delta}}

	case ai.StreamPartToolInputEnd:
		// The assembled call arrives as a separate tool-call part; the
		// input span just closes here.
		delete(t.spans, part.ID)
		t.dropFromOrder(part.ID)
		return []StreamEvent{{Type: EventToolInputEnd, ID: part.ID}}

	case ai.StreamPartToolCall:
		return t.translateToolCall(part)

	case ai.StreamPartToolResult:
		return t.translateToolResult(part)

	case ai.StreamPartSource:
		if part.Source == nil {
			return nil
		}
		t.content = append(t.content, SourcePart{Source: *part.Source})
		return []StreamEvent{{Type: EventSource, Source: part.Source}}

	case ai.StreamPartFile:
		if part.File == nil {
			return nil
		}
		file := normalizeFile(*part.File)
		t.content = append(t.content, FilePart{File: file})
		return []StreamEvent{{Type: EventFile, File: &file}}

	case ai.StreamPartResponseMetadata:
		// Absorbed into the step result; no event.
		if part.Response != nil {
			t.response = part.Response
		}
		return nil

	case ai.StreamPartRaw:
		if !t.includeRaw {
			return nil
		}
		return []StreamEvent{{Type: EventRaw, Raw: part.Raw}}

	case ai.StreamPartError:
		// Provider-reported errors surface as events without ending the
		// stream; the provider decides whether to keep going.
		return []StreamEvent{{Type: EventError, Err: part.Err}}

	case ai.StreamPartFinish:
		t.finished = true
		t.flushOpenSpans()
		t.finishReason = part.FinishReason
		t.usage = part.Usage
		t.metadata = part.ProviderMetadata
		if part.Response != nil {
			t.response = part.Response
		}
		usage := t.usage
		return []StreamEvent{{
			Type:             EventFinishStep,
			FinishReason:     t.finishReason,
			Usage:            &usage,
			Response:         t.response,
			ProviderMetadata: t.metadata,
		}}

	default:
		return nil
	}
}

func (t *translator) translateToolCall(part ai.StreamPart) []StreamEvent {
	if part.ToolCall == nil {
		return nil
	}
	call, err := parseToolCall(*part.ToolCall, t.registry)
	if err != nil {
		return []StreamEvent{{Type: EventError, Err: err}}
	}
	t.callInputs[call.ToolCallID] = call.Input
	t.content = append(t.content, ToolCallPart{Call: call})
	return []StreamEvent{{Type: EventToolCall, ToolCall: &call}}
}

func (t *translator) translateToolResult(part ai.StreamPart) []StreamEvent {
	if part.ToolResult == nil {
		return nil
	}
	res := TypedToolResult{
		ToolCallID:       part.ToolResult.ToolCallID,
		ToolName:         part.ToolResult.ToolName,
		Input:            t.callInputs[part.ToolResult.ToolCallID],
		Output:           part.ToolResult.Result,
		ProviderExecuted: part.ToolResult.ProviderExecuted,
	}
	if t.registry.Get(res.ToolName) == nil {
		res.Dynamic = true
	}
	if part.ToolResult.IsError {
		te := TypedToolError{
			ToolCallID: res.ToolCallID,
			ToolName:   res.ToolName,
			Input:      res.Input,
			Dynamic:    res.Dynamic,
			Err:        &toolExecutionError{output: part.ToolResult.Result},
		}
		t.content = append(t.content, ToolErrorPart{
			ToolCallID: te.ToolCallID,
			ToolName:   te.ToolName,
			Input:      te.Input,
			Err:        te.Err,
			Dynamic:    te.Dynamic,
		})
		return []StreamEvent{{Type: EventToolError, ToolError: &te}}
	}
	t.content = append(t.content, ToolResultPart{Result: res})
	return []StreamEvent{{Type: EventToolResult, ToolResult: &res}}
}

type toolExecutionError struct {
	output json.RawMessage
}

func (e *toolExecutionError) Error() string {
	return "tool execution failed: " + string(e.output)
}

// ─────────────────────────────────────────────────────────────────────────────
// Span bookkeeping
// ─────────────────────────────────────────────────────────────────────────────

func (t *translator) openSpan(id string, kind StreamEventType, toolName string, providerExecuted bool) {
	t.spans[id] = &span{
		id:               id,
		kind:             kind,
		toolName:         toolName,
		providerExecuted: providerExecuted,
	}
	t.spanOrder = append(t.spanOrder, id)
}

func (t *translator) appendDelta(id string, kind StreamEventType, delta string, md ai.ProviderMetadata) {
	sp, ok := t.spans[id]
	if !ok {
		// Tolerate deltas without a preceding start.
		t.openSpan(id, kind, "", false)
		sp = t.spans[id]
	}
	sp.buf.WriteString(delta)
	if md != nil {
		sp.metadata = md
	}
}

func (t *translator) closeSpan(id string, md ai.ProviderMetadata) {
	sp, ok := t.spans[id]
	if !ok {
		return
	}
	if md != nil {
		sp.metadata = md
	}
	t.materialize(sp)
	delete(t.spans, id)
	t.dropFromOrder(id)
}

// flushOpenSpans materializes spans the provider never closed so their
// buffered deltas are not lost when the step finishes.
func (t *translator) flushOpenSpans() {
	for _, id := range t.spanOrder {
		if sp, ok := t.spans[id]; ok {
			t.materialize(sp)
			delete(t.spans, id)
		}
	}
	t.spanOrder = t.spanOrder[:0]
}

func (t *translator) materialize(sp *span) {
	switch sp.kind {
	case EventTextStart:
		if sp.buf.Len() > 0 {
			t.content = append(t.content, TextPart{Text: sp.buf.String(), ProviderMetadata: sp.metadata})
		}
	case EventReasoningStart:
		if sp.buf.Len() > 0 {
			t.content = append(t.content, ReasoningPart{Text: sp.buf.String(), ProviderMetadata: sp.metadata})
		}
	case EventToolInputStart:
		// Tool input spans produce no content part; the assembled call
		// carries the full input.
	}
}

func (t *translator) dropFromOrder(id string) {
	for i, v := range t.spanOrder {
		if v == id {
			t.spanOrder = append(t.spanOrder[:i], t.spanOrder[i+1:]...)
			return
		}
	}
}

// ─────────────────────────────────────────────────────────────────────────────
// Step freezing
// ─────────────────────────────────────────────────────────────────────────────

// stepResult freezes the accumulated state into an immutable StepResult.
func (t *translator) stepResult() StepResult {
	content := make([]ContentPart, len(t.content))
	copy(content, t.content)
	return StepResult{
		Content:          content,
		FinishReason:     t.finishReason,
		Usage:            t.usage,
		Warnings:         t.warnings,
		Request:          t.request,
		Response:         t.response,
		ProviderMetadata: t.metadata,
	}
}

// appendContent records content produced outside the provider stream,
// such as client tool results.
func (t *translator) appendContent(p ContentPart) {
	t.content = append(t.content, p)
}

func normalizeFile(f ai.File) GeneratedFile {
	out := GeneratedFile{MediaType: f.MediaType}
	switch {
	case f.Base64 != "":
		out.Base64 = f.Base64
	case len(f.Data) > 0:
		out.Base64 = base64.StdEncoding.EncodeToString(f.Data)
	}
	return out
}
