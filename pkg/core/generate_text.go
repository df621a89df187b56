package core

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/saribmah/ai-sdk/pkg/ai"
	"github.com/saribmah/ai-sdk/pkg/tools"
)

// ─────────────────────────────────────────────────────────────────────────────
// GenerateText
// ─────────────────────────────────────────────────────────────────────────────

// GenerateTextRequest configures a non-streaming generation run. It runs
// the same tool loop as StreamText, one blocking model call per step.
type GenerateTextRequest struct {
	Model  ai.LanguageModel
	Prompt Prompt

	Settings        CallSettings
	Tools           []tools.Tool
	ToolChoice      *ai.ToolChoice
	ProviderOptions ai.ProviderMetadata

	StopWhen    []StopCondition
	PrepareStep PrepareStepFunc

	OnStepFinish OnStepFinishFunc

	Logger *slog.Logger
}

// GenerateTextResult is the outcome of a completed generation run.
type GenerateTextResult struct {
	Steps      []StepResult
	TotalUsage ai.Usage
}

// FinalStep returns the last step of the run.
func (r *GenerateTextResult) FinalStep() StepResult {
	return r.Steps[len(r.Steps)-1]
}

// Text returns the generated text of the final step.
func (r *GenerateTextResult) Text() string { return r.FinalStep().Text() }

// FinishReason returns the final step's finish reason.
func (r *GenerateTextResult) FinishReason() ai.FinishReason {
	return r.FinalStep().FinishReason
}

// GenerateText performs a blocking generation run and returns once the
// tool loop completes.
func GenerateText(ctx context.Context, req GenerateTextRequest) (*GenerateTextResult, error) {
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

	var steps []StepResult
	callInputs := map[string]json.RawMessage{}

	for {
		model := req.Model
		toolChoice := req.ToolChoice
		stepSystem := system
		activeTools := []string(nil)
		if req.PrepareStep != nil {
			if o := req.PrepareStep(ctx, StepRequest{
				StepNumber: len(steps),
				Steps:      steps,
				Messages:   messages,
				Model:      model,
			}); o != nil {
				if o.Model != nil {
					model = o.Model
				}
				if o.System != nil {
					stepSystem = *o.System
				}
				if o.Messages != nil {
					messages = o.Messages
				}
				if o.ToolChoice != nil {
					toolChoice = o.ToolChoice
				}
				activeTools = o.ActiveTools
			}
		}

		opts := ai.CallOptions{
			System:          stepSystem,
			Messages:        messages,
			Tools:           toolDefinitions(registry, activeTools),
			ToolChoice:      toolChoice,
			ProviderOptions: req.ProviderOptions,
		}
		applySettings(&opts, settings)

		resp, err := model.Generate(ctx, opts)
		if err != nil {
			return nil, err
		}

		step, err := buildStep(ctx, registry, callInputs, resp)
		if err != nil {
			return nil, err
		}
		steps = append(steps, step)

		if req.OnStepFinish != nil {
			if cbErr := safeCall(logger, "on_step_finish", func() {
				req.OnStepFinish(ctx, step)
			}); cbErr != nil {
				logger.Warn("on_step_finish failed", "error", cbErr)
			}
		}

		if len(step.clientToolCalls()) == 0 || stopConditionsMet(stopWhen, steps) {
			break
		}
		messages = append(messages, StepMessages(step)...)
	}

	return &GenerateTextResult{
		Steps:      steps,
		TotalUsage: totalUsage(steps),
	}, nil
}

// buildStep converts a blocking response into a frozen step, executing
// client tool calls along the way.
func buildStep(ctx context.Context, registry *tools.Registry, callInputs map[string]json.RawMessage, resp *ai.Response) (StepResult, error) {
	var content []ContentPart

	for _, block := range resp.Content {
		switch b := block.(type) {
		case ai.TextContent:
			content = append(content, TextPart{Text: b.Text})
		case ai.ReasoningContent:
			content = append(content, ReasoningPart{Text: b.Text})
		case ai.FileContent:
			content = append(content, FilePart{File: GeneratedFile{Base64: b.Data, MediaType: b.MediaType}})
		case ai.ToolCallContent:
			call, err := parseToolCall(ai.ToolCallPart{
				ToolCallID:       b.ToolCallID,
				ToolName:         b.ToolName,
				Input:            string(b.Input),
				ProviderExecuted: b.ProviderExecuted,
			}, registry)
			if err != nil {
				return StepResult{}, err
			}
			callInputs[call.ToolCallID] = call.Input
			content = append(content, ToolCallPart{Call: call})
		case ai.ToolResultContent:
			content = append(content, ToolResultPart{Result: TypedToolResult{
				ToolCallID:       b.ToolCallID,
				ToolName:         b.ToolName,
				Input:            callInputs[b.ToolCallID],
				Output:           b.Output,
				ProviderExecuted: true,
			}})
		}
	}

	// Execute client tool calls in order.
	for _, part := range content {
		call, ok := part.(ToolCallPart)
		if !ok || call.Call.ProviderExecuted {
			continue
		}
		res, terr := executeToolCall(ctx, registry, call.Call)
		if terr != nil {
			content = append(content, ToolErrorPart{
				ToolCallID: terr.ToolCallID,
				ToolName:   terr.ToolName,
				Input:      terr.Input,
				Err:        terr.Err,
				Dynamic:    terr.Dynamic,
			})
			continue
		}
		content = append(content, ToolResultPart{Result: res})
	}

	return StepResult{
		Content:          content,
		FinishReason:     resp.FinishReason,
		Usage:            resp.Usage,
		Warnings:         resp.Warnings,
		Request:          resp.Request,
		Response:         &resp.Response,
		ProviderMetadata: resp.ProviderMetadata,
	}, nil
}
