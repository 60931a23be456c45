// Package chat binds the document locator, retrieval index, session memory
// and answer composer into the request-level conversation flow.
package chat

import (
	"context"
	"log"
	"time"

	"github.com/oalvarez/petfolio/internal/chat/index"
	"github.com/oalvarez/petfolio/internal/chat/memory"
	"github.com/oalvarez/petfolio/internal/telemetry"
	"github.com/oalvarez/petfolio/provider"
)

// apologyText is the user-facing reply when the answer could not be produced.
const apologyText = "I'm sorry, I couldn't process your question right now. Please try again in a moment."

// Records is the slice of the record store the chat flow needs.
type Records interface {
	VerifyPetOwnership(ctx context.Context, petID, ownerID string) error
	ListPetDocumentURLs(ctx context.Context, petID string) ([]string, error)
}

// BuildFunc constructs a retrieval handle for a pet's documents.
type BuildFunc func(ctx context.Context, petID string, urls []string) (Searcher, error)

// Response is the structured chat answer returned to the HTTP layer.
type Response struct {
	Answer          string           `json:"answer"`
	SourceDocuments []index.Fragment `json:"source_documents"`
	ChatHistory     []memory.Turn    `json:"chat_history"`
	HasDocuments    bool             `json:"has_documents"`
	SessionID       string           `json:"session_id"`
	Error           *string          `json:"error"`
}

// Service is the chat facade.
type Service struct {
	records  Records
	sessions memory.Store
	composer *Composer
	build    BuildFunc
	logger   *log.Logger
}

func NewService(records Records, sessions memory.Store, composer *Composer, build BuildFunc, logger *log.Logger) *Service {
	if logger == nil {
		logger = log.New(log.Writer(), "[CHAT] ", log.LstdFlags)
	}
	return &Service{records: records, sessions: sessions, composer: composer, build: build, logger: logger}
}

// Ask answers one question about a pet. Ownership failures propagate
// unchanged (store.ErrNotFound maps to 404 at the HTTP layer); everything
// downstream of validation degrades into a structured response instead of
// an error, with the cause in the Error field.
func (s *Service) Ask(ctx context.Context, ownerID, petID, question, sessionID string) (Response, error) {
	if err := s.records.VerifyPetOwnership(ctx, petID, ownerID); err != nil {
		return Response{}, err
	}
	if sessionID == "" {
		sessionID = ownerID + "_" + petID
	}

	urls, err := s.records.ListPetDocumentURLs(ctx, petID)
	if err != nil {
		return Response{}, err
	}

	// Index build failure is non-fatal: fall back to general mode and
	// surface the reason in the response.
	var idx Searcher
	var buildErr error
	if len(urls) > 0 {
		idx, buildErr = s.build(ctx, petID, urls)
		if buildErr != nil {
			s.logger.Printf("index build failed for pet %s: %v", petID, buildErr)
			telemetry.ChatFailures.WithLabelValues("index").Inc()
			idx = nil
		}
	}
	hasDocs := idx != nil && !idx.Empty()

	if err := s.sessions.GetOrCreate(ctx, sessionID); err != nil {
		return s.degraded(sessionID, nil, hasDocs, err), nil
	}
	if err := s.sessions.Trim(ctx, sessionID); err != nil {
		return s.degraded(sessionID, nil, hasDocs, err), nil
	}
	history, err := s.sessions.History(ctx, sessionID)
	if err != nil {
		return s.degraded(sessionID, nil, hasDocs, err), nil
	}

	start := time.Now()
	ans, err := s.composer.Answer(ctx, question, idx, history)
	telemetry.ModelLatency.Observe(time.Since(start).Seconds())
	if err != nil {
		// Memory is untouched by the failed attempt.
		s.logger.Printf("answer failed for session %s: %v", sessionID, err)
		telemetry.ChatFailures.WithLabelValues("model").Inc()
		return s.degraded(sessionID, history, hasDocs, err), nil
	}

	if err := s.sessions.AppendInteraction(ctx, sessionID, question, ans.Text); err != nil {
		s.logger.Printf("memory append failed for session %s: %v", sessionID, err)
		telemetry.ChatFailures.WithLabelValues("memory").Inc()
		return s.degraded(sessionID, history, hasDocs, err), nil
	}
	if err := s.sessions.Trim(ctx, sessionID); err != nil {
		s.logger.Printf("post-trim failed for session %s: %v", sessionID, err)
	}
	history, err = s.sessions.History(ctx, sessionID)
	if err != nil {
		history = nil
	}

	mode := "general"
	if hasDocs {
		mode = "rag"
	}
	telemetry.ChatRequests.WithLabelValues(mode).Inc()

	resp := Response{
		Answer:          ans.Text,
		SourceDocuments: ans.Fragments,
		ChatHistory:     history,
		HasDocuments:    hasDocs,
		SessionID:       sessionID,
	}
	if resp.SourceDocuments == nil {
		resp.SourceDocuments = []index.Fragment{}
	}
	if resp.ChatHistory == nil {
		resp.ChatHistory = []memory.Turn{}
	}
	if buildErr != nil {
		msg := buildErr.Error()
		resp.Error = &msg
	}
	return resp, nil
}

func (s *Service) degraded(sessionID string, history []memory.Turn, hasDocs bool, cause error) Response {
	if history == nil {
		history = []memory.Turn{}
	}
	msg := cause.Error()
	return Response{
		Answer:          apologyText,
		SourceDocuments: []index.Fragment{},
		ChatHistory:     history,
		HasDocuments:    hasDocs,
		SessionID:       sessionID,
		Error:           &msg,
	}
}

// Probe answers a one-shot general-mode question with no session memory.
func (s *Service) Probe(ctx context.Context, question string) (string, error) {
	ans, err := s.composer.Answer(ctx, question, nil, nil)
	if err != nil {
		return "", err
	}
	return ans.Text, nil
}

// ClearSession removes a session and reports whether it existed.
func (s *Service) ClearSession(ctx context.Context, sessionID string) (bool, error) {
	return s.sessions.Clear(ctx, sessionID)
}

// History returns a session's turns, oldest first.
func (s *Service) History(ctx context.Context, sessionID string) ([]memory.Turn, error) {
	return s.sessions.History(ctx, sessionID)
}

// SessionStats reports a session's size against its bounds.
func (s *Service) SessionStats(ctx context.Context, sessionID string) (memory.SessionStats, bool, error) {
	return s.sessions.Stats(ctx, sessionID)
}

// ActiveSessions lists session keys, for monitoring.
func (s *Service) ActiveSessions(ctx context.Context) ([]string, error) {
	return s.sessions.Keys(ctx)
}

var _ LLM = (provider.Provider)(nil)
