// Package memory owns conversational session state: a keyed registry of
// bounded, ordered dialogue turns. Turns are appended in question/answer
// pairs and trimmed from the oldest end in whole pairs, so a session never
// holds an orphan half of an interaction.
package memory

import (
	"context"
	"sync"
	"time"
)

const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Turn is one message in a conversation.
type Turn struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// SessionStats describes the size of one session against its configured bounds.
type SessionStats struct {
	TurnCount        int
	MaxTurns         int
	InteractionCount int
	MaxInteractions  int
}

// Store is the session registry contract. Implementations must serialize
// operations on the same key so concurrent interactions are never lost.
type Store interface {
	// GetOrCreate ensures a session exists for the key.
	GetOrCreate(ctx context.Context, key string) error
	// AppendInteraction appends one question/answer pair atomically.
	AppendInteraction(ctx context.Context, key, question, answer string) error
	// History returns the session's turns, oldest first. Unknown keys yield nil.
	History(ctx context.Context, key string) ([]Turn, error)
	// Trim drops oldest whole interactions until the turn count fits the bound.
	Trim(ctx context.Context, key string) error
	// Clear removes the session and reports whether it existed.
	Clear(ctx context.Context, key string) (bool, error)
	// Stats reports session size; ok is false for unknown keys.
	Stats(ctx context.Context, key string) (stats SessionStats, ok bool, err error)
	// Keys lists active session keys, for monitoring.
	Keys(ctx context.Context) ([]string, error)
}

type session struct {
	mu        sync.Mutex
	turns     []Turn
	lastTouch time.Time
}

// InMemory is the process-local Store. A RWMutex guards the registry and a
// per-session mutex serializes read-modify-write sequences on one key.
// Sessions older than the TTL are dropped lazily on access and by a
// background sweep; TTL 0 disables expiry.
type InMemory struct {
	mu       sync.RWMutex
	sessions map[string]*session

	maxTurns int
	ttl      time.Duration

	stop     chan struct{}
	stopOnce sync.Once
}

// NewInMemory builds an in-memory store bounded at maxTurns per session.
func NewInMemory(maxTurns int, ttl time.Duration) *InMemory {
	m := &InMemory{
		sessions: make(map[string]*session),
		maxTurns: maxTurns,
		ttl:      ttl,
		stop:     make(chan struct{}),
	}
	if ttl > 0 {
		go m.sweep()
	}
	return m
}

// Close stops the background sweep.
func (m *InMemory) Close() {
	m.stopOnce.Do(func() { close(m.stop) })
}

func (m *InMemory) sweep() {
	interval := m.ttl / 2
	if interval < time.Second {
		interval = time.Second
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-m.stop:
			return
		case now := <-t.C:
			m.mu.Lock()
			for k, s := range m.sessions {
				if now.Sub(s.lastTouch) > m.ttl {
					delete(m.sessions, k)
				}
			}
			m.mu.Unlock()
		}
	}
}

func (m *InMemory) expired(s *session) bool {
	return m.ttl > 0 && time.Since(s.lastTouch) > m.ttl
}

// lookup returns the live session for key, expiring stale ones. When create
// is true a missing or expired entry is replaced with a fresh empty session.
func (m *InMemory) lookup(key string, create bool) *session {
	m.mu.RLock()
	s, ok := m.sessions[key]
	m.mu.RUnlock()
	if ok && !m.expired(s) {
		return s
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok = m.sessions[key]
	if ok && m.expired(s) {
		delete(m.sessions, key)
		ok = false
	}
	if !ok {
		if !create {
			return nil
		}
		s = &session{lastTouch: time.Now()}
		m.sessions[key] = s
	}
	return s
}

func (m *InMemory) GetOrCreate(_ context.Context, key string) error {
	m.lookup(key, true)
	return nil
}

func (m *InMemory) AppendInteraction(_ context.Context, key, question, answer string) error {
	s := m.lookup(key, true)
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = append(s.turns,
		Turn{Role: RoleUser, Content: question},
		Turn{Role: RoleAssistant, Content: answer})
	s.lastTouch = time.Now()
	return nil
}

func (m *InMemory) History(_ context.Context, key string) ([]Turn, error) {
	s := m.lookup(key, false)
	if s == nil {
		return nil, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Turn, len(s.turns))
	copy(out, s.turns)
	return out, nil
}

func (m *InMemory) Trim(_ context.Context, key string) error {
	s := m.lookup(key, false)
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.turns = trimPairs(s.turns, m.maxTurns)
	return nil
}

// trimPairs drops turns from the oldest end two at a time until the length
// fits the bound. The result length is always even when the input pairing is.
func trimPairs(turns []Turn, maxTurns int) []Turn {
	for len(turns) > maxTurns {
		if len(turns) < 2 {
			return turns[:0]
		}
		turns = turns[2:]
	}
	return turns
}

func (m *InMemory) Clear(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	s, ok := m.sessions[key]
	if !ok {
		return false, nil
	}
	delete(m.sessions, key)
	if m.expired(s) {
		return false, nil
	}
	return true, nil
}

func (m *InMemory) Stats(_ context.Context, key string) (SessionStats, bool, error) {
	s := m.lookup(key, false)
	if s == nil {
		return SessionStats{}, false, nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return SessionStats{
		TurnCount:        len(s.turns),
		MaxTurns:         m.maxTurns,
		InteractionCount: len(s.turns) / 2,
		MaxInteractions:  m.maxTurns / 2,
	}, true, nil
}

func (m *InMemory) Keys(_ context.Context) ([]string, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]string, 0, len(m.sessions))
	for k, s := range m.sessions {
		if m.expired(s) {
			continue
		}
		out = append(out, k)
	}
	return out, nil
}
