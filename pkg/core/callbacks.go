package core

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// Callbacks run in-line on the producing goroutine: a slow callback slows
// the stream. Each callback invocation is protected against panics; a
// panicking callback is logged and reported as an error event, and the
// run continues.

// OnChunkFunc observes content-bearing events: text and reasoning deltas,
// sources, tool calls, tool input spans, tool results, and raw chunks.
type OnChunkFunc func(ctx context.Context, ev StreamEvent)

// OnErrorFunc observes stream errors without consuming them; the error
// event is still emitted on the output channel.
type OnErrorFunc func(ctx context.Context, err error)

// OnStepFinishFunc observes each frozen step result, after its finish-step
// event and before the next step starts.
type OnStepFinishFunc func(ctx context.Context, step StepResult)

// FinishEvent is the terminal summary passed to the on-finish callback.
type FinishEvent struct {
	// Step is the final step.
	Step StepResult
	// Steps holds every step in order.
	Steps []StepResult
	// TotalUsage is the sum of usage across all steps.
	TotalUsage ai.Usage
	// FinishReason is the final step's finish reason.
	FinishReason ai.FinishReason
}

// OnFinishFunc runs exactly once after the final finish event, and never
// when the stream is cancelled or fails before producing a step.
type OnFinishFunc func(ctx context.Context, fin FinishEvent)

// safeCall invokes fn, recovering a panic into an error.
func safeCall(logger *slog.Logger, name string, fn func()) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("%s callback panicked: %v", name, r)
			logger.Error("callback panic", "callback", name, "panic", r)
		}
	}()
	fn()
	return nil
}
