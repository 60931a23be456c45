package memory

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"
)

func TestTrimKeepsWholeInteractions(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory(12, 0)
	defer m.Close()

	// 7 question/answer cycles against a 6-interaction bound
	for i := 1; i <= 7; i++ {
		if err := m.AppendInteraction(ctx, "s", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i)); err != nil {
			t.Fatalf("append %d: %v", i, err)
		}
		if err := m.Trim(ctx, "s"); err != nil {
			t.Fatalf("trim %d: %v", i, err)
		}
	}

	hist, err := m.History(ctx, "s")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 12 {
		t.Fatalf("expected 12 turns after trim, got %d", len(hist))
	}
	if len(hist)%2 != 0 {
		t.Fatalf("turn count must stay even, got %d", len(hist))
	}
	// oldest interaction gone, turns still alternate starting with the user
	if hist[0].Role != RoleUser || hist[0].Content != "q2" {
		t.Fatalf("expected oldest surviving turn q2/user, got %+v", hist[0])
	}
	for i, turn := range hist {
		want := RoleUser
		if i%2 == 1 {
			want = RoleAssistant
		}
		if turn.Role != want {
			t.Fatalf("turn %d: expected role %s, got %s", i, want, turn.Role)
		}
	}
	if hist[len(hist)-1].Content != "a7" {
		t.Fatalf("expected newest turn a7, got %+v", hist[len(hist)-1])
	}
}

func TestClearIdempotence(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory(12, 0)
	defer m.Close()

	if err := m.AppendInteraction(ctx, "s", "q", "a"); err != nil {
		t.Fatalf("append: %v", err)
	}
	existed, err := m.Clear(ctx, "s")
	if err != nil || !existed {
		t.Fatalf("first clear: existed=%v err=%v", existed, err)
	}
	existed, err = m.Clear(ctx, "s")
	if err != nil || existed {
		t.Fatalf("second clear: existed=%v err=%v", existed, err)
	}
}

func TestStatsUnknownKey(t *testing.T) {
	m := NewInMemory(12, 0)
	defer m.Close()

	_, ok, err := m.Stats(context.Background(), "nope")
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if ok {
		t.Fatal("expected ok=false for unknown key")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory(12, 0)
	defer m.Close()

	_ = m.AppendInteraction(ctx, "s", "q1", "a1")
	_ = m.AppendInteraction(ctx, "s", "q2", "a2")

	st, ok, err := m.Stats(ctx, "s")
	if err != nil || !ok {
		t.Fatalf("stats: ok=%v err=%v", ok, err)
	}
	if st.TurnCount != 4 || st.InteractionCount != 2 || st.MaxTurns != 12 || st.MaxInteractions != 6 {
		t.Fatalf("unexpected stats: %+v", st)
	}
}

func TestGetOrCreateVisibleInKeys(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory(12, 0)
	defer m.Close()

	if err := m.GetOrCreate(ctx, "fresh"); err != nil {
		t.Fatalf("get-or-create: %v", err)
	}
	keys, err := m.Keys(ctx)
	if err != nil {
		t.Fatalf("keys: %v", err)
	}
	if len(keys) != 1 || keys[0] != "fresh" {
		t.Fatalf("expected [fresh], got %v", keys)
	}
}

func TestTTLExpiry(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory(12, 30*time.Millisecond)
	defer m.Close()

	_ = m.AppendInteraction(ctx, "s", "q", "a")
	time.Sleep(80 * time.Millisecond)

	if _, ok, _ := m.Stats(ctx, "s"); ok {
		t.Fatal("expected session to expire")
	}
	hist, err := m.History(ctx, "s")
	if err != nil || len(hist) != 0 {
		t.Fatalf("expected empty history after expiry, got %v err=%v", hist, err)
	}
}

func TestConcurrentAppendsBothSurvive(t *testing.T) {
	ctx := context.Background()
	m := NewInMemory(12, 0)
	defer m.Close()

	var wg sync.WaitGroup
	for i := 0; i < 2; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = m.AppendInteraction(ctx, "race", fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
		}(i)
	}
	wg.Wait()

	hist, err := m.History(ctx, "race")
	if err != nil {
		t.Fatalf("history: %v", err)
	}
	if len(hist) != 4 {
		t.Fatalf("expected both interactions to survive, got %d turns", len(hist))
	}
}
