// Package agent provides a stateful conversation wrapper over the core
// generation loop: it keeps message history across turns, carries a fixed
// tool set and system prompt, and exposes streaming and blocking entry
// points.
package agent

import (
	"context"
	"log/slog"
	"sync"

	"github.com/saribmah/ai-sdk/pkg/ai"
	"github.com/saribmah/ai-sdk/pkg/core"
	"github.com/saribmah/ai-sdk/pkg/tools"
)

// Agent holds a model, a system prompt, a tool set and the running
// conversation history. Methods are safe for sequential use; an Agent is
// not meant to serve concurrent conversations.
type Agent struct {
	model    ai.LanguageModel
	system   string
	settings core.CallSettings
	stopWhen []core.StopCondition
	logger   *slog.Logger

	mu      sync.Mutex
	tools   []tools.Tool
	history []ai.Message
}

// Option configures an Agent.
type Option func(*Agent)

// WithSystem sets the system prompt sent with every call.
func WithSystem(system string) Option {
	return func(a *Agent) { a.system = system }
}

// WithSettings sets the model call settings.
func WithSettings(s core.CallSettings) Option {
	return func(a *Agent) { a.settings = s }
}

// WithTools registers the agent's tools.
func WithTools(ts ...tools.Tool) Option {
	return func(a *Agent) { a.tools = append(a.tools, ts...) }
}

// WithStopWhen sets the tool loop stop conditions. The default allows up
// to 10 steps per turn.
func WithStopWhen(conds ...core.StopCondition) Option {
	return func(a *Agent) { a.stopWhen = conds }
}

// WithLogger sets the structured logger.
func WithLogger(l *slog.Logger) Option {
	return func(a *Agent) { a.logger = l }
}

// New creates an Agent for the given model.
func New(model ai.LanguageModel, opts ...Option) *Agent {
	a := &Agent{
		model:    model,
		stopWhen: []core.StopCondition{core.StepCountIs(10)},
		logger:   slog.Default(),
	}
	for _, o := range opts {
		o(a)
	}
	return a
}

// Model returns the underlying language model.
func (a *Agent) Model() ai.LanguageModel { return a.model }

// History returns a copy of the conversation so far.
func (a *Agent) History() []ai.Message {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := make([]ai.Message, len(a.history))
	copy(out, a.history)
	return out
}

// Reset clears the conversation history.
func (a *Agent) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = nil
}

// Generate runs one blocking turn: the user text is appended to history,
// the tool loop runs to completion, and the resulting messages are
// recorded.
func (a *Agent) Generate(ctx context.Context, text string) (*core.GenerateTextResult, error) {
	a.mu.Lock()
	messages := append(a.snapshotLocked(), ai.NewUserTextMessage(text))
	a.mu.Unlock()

	res, err := core.GenerateText(ctx, core.GenerateTextRequest{
		Model:    a.model,
		Prompt:   core.Prompt{System: a.system, Messages: messages},
		Settings: a.settings,
		Tools:    a.tools,
		StopWhen: a.stopWhen,
		Logger:   a.logger,
	})
	if err != nil {
		return nil, err
	}

	a.recordTurn(messages[len(messages)-1], res.Steps)
	return res, nil
}

// Stream runs one streaming turn. History is recorded when the stream
// finishes; a cancelled stream records nothing.
func (a *Agent) Stream(ctx context.Context, text string) (*core.StreamTextResult, error) {
	a.mu.Lock()
	messages := append(a.snapshotLocked(), ai.NewUserTextMessage(text))
	a.mu.Unlock()
	userMsg := messages[len(messages)-1]

	return core.StreamText(ctx, core.StreamTextRequest{
		Model:    a.model,
		Prompt:   core.Prompt{System: a.system, Messages: messages},
		Settings: a.settings,
		Tools:    a.tools,
		StopWhen: a.stopWhen,
		Logger:   a.logger,
		OnFinish: func(ctx context.Context, fin core.FinishEvent) {
			a.recordTurn(userMsg, fin.Steps)
		},
	})
}

func (a *Agent) snapshotLocked() []ai.Message {
	out := make([]ai.Message, len(a.history))
	copy(out, a.history)
	return out
}

// recordTurn appends the user message and the per-step response messages
// to history.
func (a *Agent) recordTurn(user ai.Message, steps []core.StepResult) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.history = append(a.history, user)
	for _, step := range steps {
		a.history = append(a.history, core.StepMessages(step)...)
	}
}
