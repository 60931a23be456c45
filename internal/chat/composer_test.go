package chat

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/oalvarez/petfolio/internal/chat/index"
	"github.com/oalvarez/petfolio/internal/chat/memory"
	"github.com/oalvarez/petfolio/provider"
)

type scriptLLM struct {
	mu      sync.Mutex
	replies []string
	calls   [][]provider.Message
	err     error
}

func (l *scriptLLM) ChatCompletion(_ context.Context, msgs []provider.Message) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.calls = append(l.calls, msgs)
	if l.err != nil {
		return "", l.err
	}
	if len(l.replies) == 0 {
		return "ok", nil
	}
	r := l.replies[0]
	if len(l.replies) > 1 {
		l.replies = l.replies[1:]
	}
	return r, nil
}

func (l *scriptLLM) lastCall() []provider.Message {
	l.mu.Lock()
	defer l.mu.Unlock()
	if len(l.calls) == 0 {
		return nil
	}
	return l.calls[len(l.calls)-1]
}

type stubSearcher struct {
	frags []index.Fragment
	err   error
	empty bool
}

func (s *stubSearcher) Search(context.Context, string) ([]index.Fragment, error) {
	return s.frags, s.err
}
func (s *stubSearcher) Empty() bool { return s.empty }

func TestComposerGeneralMode(t *testing.T) {
	llm := &scriptLLM{replies: []string{"hello"}}
	c := NewComposer(llm, time.Minute, nil)

	ans, err := c.Answer(context.Background(), "hi", nil, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if ans.Text != "hello" || len(ans.Fragments) != 0 {
		t.Fatalf("unexpected answer: %+v", ans)
	}
	msgs := llm.lastCall()
	if msgs[0].Role != "system" || !strings.Contains(msgs[0].Content, "veterinary") {
		t.Fatalf("expected persona system message first, got %+v", msgs[0])
	}
	if msgs[len(msgs)-1].Role != memory.RoleUser || msgs[len(msgs)-1].Content != "hi" {
		t.Fatalf("expected question as final message, got %+v", msgs[len(msgs)-1])
	}
}

func TestComposerRetrievalMode(t *testing.T) {
	llm := &scriptLLM{}
	c := NewComposer(llm, time.Minute, nil)
	idx := &stubSearcher{frags: []index.Fragment{
		{Content: "rabies booster given 2024-03-01", Source: "https://x/doc.pdf", Page: 2},
	}}

	ans, err := c.Answer(context.Background(), "vaccines?", idx, []memory.Turn{
		{Role: memory.RoleUser, Content: "earlier question"},
		{Role: memory.RoleAssistant, Content: "earlier answer"},
	})
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(ans.Fragments) != 1 {
		t.Fatalf("expected cited fragment, got %+v", ans.Fragments)
	}

	msgs := llm.lastCall()
	var grounded, history bool
	for _, m := range msgs {
		if strings.Contains(m.Content, "rabies booster") {
			grounded = true
		}
		if m.Content == "earlier answer" {
			history = true
		}
	}
	if !grounded || !history {
		t.Fatalf("prompt missing grounding or history: grounded=%v history=%v", grounded, history)
	}
}

func TestComposerEmptyIndexFallsBackToGeneral(t *testing.T) {
	llm := &scriptLLM{}
	c := NewComposer(llm, time.Minute, nil)
	idx := &stubSearcher{empty: true, frags: []index.Fragment{{Content: "should not appear"}}}

	ans, err := c.Answer(context.Background(), "q", idx, nil)
	if err != nil {
		t.Fatalf("Answer: %v", err)
	}
	if len(ans.Fragments) != 0 {
		t.Fatalf("empty index must yield no fragments, got %+v", ans.Fragments)
	}
}

func TestComposerSearchErrorPropagates(t *testing.T) {
	boom := errors.New("search down")
	c := NewComposer(&scriptLLM{}, time.Minute, nil)
	_, err := c.Answer(context.Background(), "q", &stubSearcher{err: boom}, nil)
	if !errors.Is(err, boom) {
		t.Fatalf("expected search error, got %v", err)
	}
}
