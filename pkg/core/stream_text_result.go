package core

import (
	"context"
	"sync"

	"github.com/saribmah/ai-sdk/pkg/ai"
)

// StreamTextResult is the handle to a running streaming generation.
//
// The event stream can be consumed exactly once: either range over
// Events(), or call a draining accessor (Text, Steps, TotalUsage,
// FinishReason, Err), which reads the stream to completion first. After
// the stream is drained the accessors return the frozen aggregates.
type StreamTextResult struct {
	events chan StreamEvent
	cancel context.CancelFunc

	mu           sync.Mutex
	steps        []StepResult
	totalUsage   ai.Usage
	finishReason ai.FinishReason
	err          error
}

// Events returns the output channel. The producer closes it when the run
// ends. Multiple calls return the same channel; each event is delivered
// once.
func (r *StreamTextResult) Events() <-chan StreamEvent {
	return r.events
}

// Close cancels the run. The producer stops promptly, the event channel
// closes, and no finish event or on-finish callback fires. Close is safe
// to call multiple times and after the stream has ended.
func (r *StreamTextResult) Close() {
	r.cancel()
	// Unblock the producer if it is parked on a full channel, and drain
	// whatever was already buffered.
	for range r.events {
	}
}

// drain consumes the remaining events, discarding them.
func (r *StreamTextResult) drain() {
	for range r.events {
	}
}

// finish records the run outcome. Called by the producer before the
// event channel closes, so drained readers observe the final values.
func (r *StreamTextResult) finish(steps []StepResult, total ai.Usage, reason ai.FinishReason, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.steps = steps
	r.totalUsage = total
	r.finishReason = reason
	r.err = err
}

// Steps drains the stream and returns every completed step in order.
func (r *StreamTextResult) Steps() []StepResult {
	r.drain()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.steps
}

// FinalStep drains the stream and returns the last step.
func (r *StreamTextResult) FinalStep() (StepResult, error) {
	steps := r.Steps()
	if len(steps) == 0 {
		return StepResult{}, r.runError()
	}
	return steps[len(steps)-1], nil
}

// Text drains the stream and returns the generated text of the final
// step.
func (r *StreamTextResult) Text() string {
	step, err := r.FinalStep()
	if err != nil {
		return ""
	}
	return step.Text()
}

// TotalUsage drains the stream and returns token usage summed across all
// steps.
func (r *StreamTextResult) TotalUsage() ai.Usage {
	r.drain()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.totalUsage
}

// FinishReason drains the stream and returns the final step's finish
// reason.
func (r *StreamTextResult) FinishReason() ai.FinishReason {
	r.drain()
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.finishReason
}

// Err drains the stream and reports how the run failed, if it did. A run
// that produced no steps reports NoOutputError even when no other error
// occurred.
func (r *StreamTextResult) Err() error {
	r.drain()
	return r.runError()
}

func (r *StreamTextResult) runError() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.err != nil {
		return r.err
	}
	if len(r.steps) == 0 {
		return &NoOutputError{}
	}
	return nil
}
