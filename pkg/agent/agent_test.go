package agent_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/saribmah/ai-sdk/pkg/agent"
	"github.com/saribmah/ai-sdk/pkg/ai")

// replyModel answers every call with a fixed text.
type replyModel struct {
	mu    sync.Mutex
	reply string
	calls []ai.CallOptions
}

func (m *replyModel) Provider() string { return "reply" }
func (m *replyModel) ModelID() string  { return "reply-model" }

func (m *replyModel) Generate(_ context.Context, opts ai.CallOptions) (*ai.Response, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	m.mu.Unlock()
	return &ai.Response{
		Content:      []ai.ContentBlock{ai.TextContent{Type: "text", Text: m.reply}},
		FinishReason: ai.FinishReasonStop,
	}, nil
}

func (m *replyModel) Stream(_ context.Context, opts ai.CallOptions) (*ai.StreamResponse, error) {
	m.mu.Lock()
	m.calls = append(m.calls, opts)
	m.mu.Unlock()
	ch := make(chan ai.StreamPart, 8)
	ch <- ai.StreamPart{Type: ai.StreamPartStreamStart}
	ch <- ai.StreamPart{Type: ai.StreamPartTextStart, ID: "1"}
	ch <- ai.StreamPart{Type: ai.StreamPartTextDelta, ID: "1", Delta: m.reply}
	ch <- ai.StreamPart{Type: ai.StreamPartTextEnd, ID: "1"}
	ch <- ai.StreamPart{Type: ai.StreamPartFinish, FinishReason: ai.FinishReasonStop}
	close(ch)
	return &ai.StreamResponse{Parts: ch}, nil
}

func TestAgent_GenerateRecordsHistory(t *testing.T) {
	model := &replyModel{reply: "hi there"}
	a := agent.New(model, agent.WithSystem("be brief"))

	res, err := a.Generate(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if res.Text() != "hi there" {
		t.Fatalf("text = %q", res.Text())
	}

	hist := a.History()
	if len(hist) != 2 {
		t.Fatalf("history = %d messages, want 2", len(hist))
	}
	if hist[0].GetRole() != ai.RoleUser || hist[1].GetRole() != ai.RoleAssistant {
		t.Fatalf("history roles = %q, %q", hist[0].GetRole(), hist[1].GetRole())
	}

	// Second turn sends prior history plus the new user message.
	if _, err := a.Generate(context.Background(), "again"); err != nil {
		t.Fatal(err)
	}
	model.mu.Lock()
	second := model.calls[1]
	model.mu.Unlock()
	if len(second.Messages) != 3 {
		t.Fatalf("second call messages = %d, want 3", len(second.Messages))
	}
	if second.System != "be brief" {
		t.Fatalf("system = %q", second.System)
	}
}

func TestAgent_StreamRecordsHistoryOnFinish(t *testing.T) {
	model := &replyModel{reply: "streamed"}
	a := agent.New(model)

	r, err := a.Stream(context.Background(), "hello")
	if err != nil {
		t.Fatal(err)
	}
	if got := r.Text(); got != "streamed" {
		t.Fatalf("text = %q", got)
	}

	if hist := a.History(); len(hist) != 2 {
		t.Fatalf("history = %d messages, want 2", len(hist))
	}
}

func TestAgent_Reset(t *testing.T) {
	model := &replyModel{reply: "x"}
	a := agent.New(model)
	if _, err := a.Generate(context.Background(), "one"); err != nil {
		t.Fatal(err)
	}
	a.Reset()
	if len(a.History()) != 0 {
		t.Fatal("history not cleared")
	}
}

func TestAgent_GenerateErrorLeavesHistoryUntouched(t *testing.T) {
	a := agent.New(&brokenModel{})
	if _, err := a.Generate(context.Background(), "hello"); err == nil {
		t.Fatal("expected error")
	}
	if len(a.History()) != 0 {
		t.Fatal("failed turn recorded in history")
	}
}

type brokenModel struct{}

func (m *brokenModel) Provider() string { return "broken" }
func (m *brokenModel) ModelID() string  { return "broken" }
func (m *brokenModel) Generate(context.Context, ai.CallOptions) (*ai.Response, error) {
	return nil, errors.New("no backend")
}
func (m *brokenModel) Stream(context.Context, ai.CallOptions) (*ai.StreamResponse, error) {
	return nil, errors.New("no backend")
}
