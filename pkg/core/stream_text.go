package core

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/saribmah/ai-sdk/pkg/ai"
	"github.com/saribmah/ai-sdk/pkg/tools"
)

// ─────────────────────────────────────────────────────────────────────────────
// StreamText
// ─────────────────────────────────────────────────────────────────────────────

// StreamTextRequest configures a streaming generation run.
type StreamTextRequest struct {
	Model  ai.LanguageModel
	Prompt Prompt

	Settings        CallSettings
	Tools           []tools.Tool
	ToolChoice      *ai.ToolChoice
	ProviderOptions ai.ProviderMetadata

	// StopWhen stops the tool loop once any condition holds. Defaults to
	// StepCountIs(1): tool calls are surfaced but not looped on unless
	// the caller opts in.
	StopWhen    []StopCondition
	PrepareStep PrepareStepFunc

	// IncludeRawChunks forwards untranslated provider payloads as raw
	// events.
	IncludeRawChunks bool

	OnChunk      OnChunkFunc
	OnError      OnErrorFunc
	OnStepFinish OnStepFinishFunc
	OnFinish     OnFinishFunc

	Logger *slog.Logger
}

// StreamText starts a streaming generation run. Invalid settings and
// prompts fail here, synchronously; everything after that surfaces on the
// result's event stream.
//
// The returned result owns a single event stream: read it with Events(),
// or call one of the draining accessors (Text, Steps, TotalUsage) to
// consume it to completion.
func StreamText(ctx context.Context, req StreamTextRequest) (*StreamTextResult, error) {
	if req.Model == nil {
		return nil, &InvalidArgumentError{Parameter: "model", Message: "model is required"}
	}
	settings, err := prepareCallSettings(req.Settings)
	if err != nil {
		return nil, err
	}
	system, messages, err := standardizePrompt(req.Prompt)
	if err != nil {
		return nil, err
	}
	registry, err := buildRegistry(req.Tools)
	if err != nil {
		return nil, err
	}

	logger := req.Logger
	if logger == nil {
		logger = slog.Default()
	}
	stopWhen := req.StopWhen
	if len(stopWhen) == 0 {
		stopWhen = []StopCondition{StepCountIs(1)}
	}

	runCtx, cancel := context.WithCancel(ctx)
	r := &StreamTextResult{
		events: make(chan StreamEvent, eventBufferSize),
		cancel: cancel,
	}

	go r.run(runCtx, runParams{
		req:      req,
		settings: settings,
		system:   system,
		messages: messages,
		registry: registry,
		stopWhen: stopWhen,
		logger:   logger,
	})
	return r, nil
}

const eventBufferSize = 64

type runParams struct {
	req      StreamTextRequest
	settings CallSettings
	system   string
	messages []ai.Message
	registry *tools.Registry
	stopWhen []StopCondition
	logger   *slog.Logger
}

func buildRegistry(ts []tools.Tool) (*tools.Registry, error) {
	reg := tools.NewRegistry()
	for _, t := range ts {
		name := t.Definition().Name
		if reg.Has(name) {
			return nil, &InvalidArgumentError{
				Parameter: "tools",
				Value:     name,
				Message:   "duplicate tool name",
			}
		}
		reg.Register(t)
	}
	return reg, nil
}

// ─────────────────────────────────────────────────────────────────────────────
// Run loop
// ─────────────────────────────────────────────────────────────────────────────

func (r *StreamTextResult) run(ctx context.Context, p runParams) {
	defer close(r.events)

	if !r.dispatch(ctx, p, StreamEvent{Type: EventStart}) {
		r.finish(nil, ai.Usage{}, ai.FinishReasonUnknown, ctx.Err())
		return
	}

	var steps []StepResult
	callInputs := map[string]json.RawMessage{}
	messages := p.messages

	for {
		overrides := r.prepareStep(ctx, p, len(steps), steps, messages)
		model := p.req.Model
		system := p.system
		toolChoice := p.req.ToolChoice
		activeTools := []string(nil)
		if overrides != nil {
			if overrides.Model != nil {
				model = overrides.Model
			}
			if overrides.System != nil {
				system = *overrides.System
			}
			if overrides.Messages != nil {
				messages = overrides.Messages
			}
			if overrides.ToolChoice != nil {
				toolChoice = overrides.ToolChoice
			}
			activeTools = overrides.ActiveTools
		}

		opts := ai.CallOptions{
			System:           system,
			Messages:         messages,
			Tools:            toolDefinitions(p.registry, activeTools),
			ToolChoice:       toolChoice,
			ProviderOptions:  p.req.ProviderOptions,
			IncludeRawChunks: p.req.IncludeRawChunks,
		}
		applySettings(&opts, p.settings)

		resp, err := model.Stream(ctx, opts)
		if err != nil {
			r.reportError(ctx, p, err)
			r.dispatch(ctx, p, StreamEvent{Type: EventError, Err: err})
			r.finish(steps, totalUsage(steps), ai.FinishReasonError, err)
			return
		}

		tr := newTranslator(p.registry, p.req.IncludeRawChunks, callInputs, resp.Request)
		sawParts := false
		for part := range resp.Parts {
			sawParts = true
			for _, ev := range tr.translate(part) {
				if ev.Type == EventError {
					r.reportError(ctx, p, ev.Err)
				}
				if !r.dispatch(ctx, p, ev) {
					r.finish(steps, totalUsage(steps), ai.FinishReasonUnknown, ctx.Err())
					return
				}
			}
		}
		if ctx.Err() != nil {
			r.finish(steps, totalUsage(steps), ai.FinishReasonUnknown, ctx.Err())
			return
		}

		// A stream that ends without a finish part still yields a step;
		// buffered spans must not be lost. A stream that produced nothing
		// at all yields no step and no finish callbacks.
		if !tr.finished {
			if !sawParts {
				r.finish(steps, totalUsage(steps), ai.FinishReasonUnknown, nil)
				return
			}
			tr.flushOpenSpans()
			usage := ai.Usage{}
			if !r.dispatch(ctx, p, StreamEvent{
				Type:         EventFinishStep,
				FinishReason: ai.FinishReasonUnknown,
				Usage:        &usage,
			}) {
				r.finish(steps, totalUsage(steps), ai.FinishReasonUnknown, ctx.Err())
				return
			}
		}

		if !r.runClientTools(ctx, p, tr) {
			r.finish(steps, totalUsage(steps), ai.FinishReasonUnknown, ctx.Err())
			return
		}

		step := tr.stepResult()
		steps = append(steps, step)
		r.safeCallback(ctx, p, "on_step_finish", func() {
			if p.req.OnStepFinish != nil {
				p.req.OnStepFinish(ctx, step)
			}
		})

		if len(step.clientToolCalls()) == 0 || stopConditionsMet(p.stopWhen, steps) {
			break
		}
		messages = append(messages, StepMessages(step)...)
	}

	last := steps[len(steps)-1]
	total := totalUsage(steps)
	finishEv := StreamEvent{
		Type:             EventFinish,
		FinishReason:     last.FinishReason,
		TotalUsage:       &total,
		ProviderMetadata: last.ProviderMetadata,
	}
	if !r.dispatch(ctx, p, finishEv) {
		r.finish(steps, total, ai.FinishReasonUnknown, ctx.Err())
		return
	}

	r.safeCallback(ctx, p, "on_finish", func() {
		if p.req.OnFinish != nil {
			p.req.OnFinish(ctx, FinishEvent{
				Step:         last,
				Steps:        steps,
				TotalUsage:   total,
				FinishReason: last.FinishReason,
			})
		}
	})

	r.finish(steps, total, last.FinishReason, nil)
}

// runClientTools executes the step's client tool calls in order, emitting
// a tool-result or tool-error event for each and recording it as step
// content. Returns false when the run context ends mid-way.
func (r *StreamTextResult) runClientTools(ctx context.Context, p runParams, tr *translator) bool {
	for _, part := range tr.content {
		call, ok := part.(ToolCallPart)
		if !ok || call.Call.ProviderExecuted {
			continue
		}
		res, terr := executeToolCall(ctx, p.registry, call.Call)
		if terr != nil {
			tr.appendContent(ToolErrorPart{
				ToolCallID: terr.ToolCallID,
				ToolName:   terr.ToolName,
				Input:      terr.Input,
				Err:        terr.Err,
				Dynamic:    terr.Dynamic,
			})
			if !r.dispatch(ctx, p, StreamEvent{Type: EventToolError, ToolError: terr}) {
				return false
			}
			continue
		}
		tr.appendContent(ToolResultPart{Result: res})
		if !r.dispatch(ctx, p, StreamEvent{Type: EventToolResult, ToolResult: &res}) {
			return false
		}
	}
	return true
}

func (r *StreamTextResult) prepareStep(ctx context.Context, p runParams, n int, steps []StepResult, messages []ai.Message) *StepOverrides {
	if p.req.PrepareStep == nil {
		return nil
	}
	var out *StepOverrides
	r.safeCallback(ctx, p, "prepare_step", func() {
		out = p.req.PrepareStep(ctx, StepRequest{
			StepNumber: n,
			Steps:      steps,
			Messages:   messages,
			Model:      p.req.Model,
		})
	})
	return out
}

// dispatch fires callbacks for the event and sends it on the output
// channel. It returns false once the run context is done; the send never
// blocks past cancellation.
func (r *StreamTextResult) dispatch(ctx context.Context, p runParams, ev StreamEvent) bool {
	if isChunk(ev) {
		r.safeCallback(ctx, p, "on_chunk", func() {
			if p.req.OnChunk != nil {
				p.req.OnChunk(ctx, ev)
			}
		})
	}
	select {
	case r.events <- ev:
		return true
	case <-ctx.Done():
		return false
	}
}

func (r *StreamTextResult) reportError(ctx context.Context, p runParams, err error) {
	r.safeCallback(ctx, p, "on_error", func() {
		if p.req.OnError != nil {
			p.req.OnError(ctx, err)
		}
	})
}

// safeCallback runs a user callback in-line, converting a panic into an
// error event instead of tearing down the stream.
func (r *StreamTextResult) safeCallback(ctx context.Context, p runParams, name string, fn func()) {
	if err := safeCall(p.logger, name, fn); err != nil {
		select {
		case r.events <- StreamEvent{Type: EventError, Err: err}:
		case <-ctx.Done():
		}
	}
}

func toolDefinitions(reg *tools.Registry, active []string) []ai.ToolDefinition {
	defs := reg.Definitions()
	if active == nil {
		return defs
	}
	allowed := map[string]bool{}
	for _, n := range active {
		allowed[n] = true
	}
	var out []ai.ToolDefinition
	for _, d := range defs {
		if allowed[d.Name] {
			out = append(out, d)
		}
	}
	return out
}

func totalUsage(steps []StepResult) ai.Usage {
	var total ai.Usage
	for _, s := range steps {
		total = total.Add(s.Usage)
	}
	return total
}
