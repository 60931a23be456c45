package server

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/oalvarez/petfolio/internal/chat"
	"github.com/oalvarez/petfolio/internal/chat/memory"
	"github.com/oalvarez/petfolio/internal/runtime"
	"github.com/oalvarez/petfolio/internal/store"
)

const maxQuestionLen = 2000

// chatService is the facade contract consumed by the HTTP layer.
type chatService interface {
	Ask(ctx context.Context, ownerID, petID, question, sessionID string) (chat.Response, error)
	Probe(ctx context.Context, question string) (string, error)
	ClearSession(ctx context.Context, sessionID string) (bool, error)
	History(ctx context.Context, sessionID string) ([]memory.Turn, error)
	SessionStats(ctx context.Context, sessionID string) (memory.SessionStats, bool, error)
	ActiveSessions(ctx context.Context) ([]string, error)
}

type ChatHandler struct {
	Svc chatService
}

func (h *ChatHandler) Register(g *echo.Group, secret []byte) {
	g.Use(runtime.EchoAuthMiddleware(secret))
	g.POST("/pets/:pet_id/ask", h.ask)
	g.POST("/test", h.probe)
	g.GET("/sessions", h.sessions)
	g.DELETE("/sessions/:session_id", h.clearSession)
	g.GET("/sessions/:session_id/history", h.history)
	g.GET("/sessions/:session_id/stats", h.stats)
}

func (h *ChatHandler) ask(c echo.Context) error {
	var req AskRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, err.Error())
	}
	question := strings.TrimSpace(req.Question)
	if question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}
	if len(question) > maxQuestionLen {
		return echo.NewHTTPError(http.StatusBadRequest, fmt.Sprintf("question exceeds %d characters", maxQuestionLen))
	}
	resp, err := h.Svc.Ask(c.Request().Context(), ownerID(c), c.Param("pet_id"), question, req.SessionID)
	if errors.Is(err, store.ErrNotFound) {
		return echo.NewHTTPError(http.StatusNotFound, "pet not found")
	}
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, resp)
}

// probe is a stateless general-mode check of the model wiring.
func (h *ChatHandler) probe(c echo.Context) error {
	question := strings.TrimSpace(c.QueryParam("question"))
	if question == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "question is required")
	}
	answer, err := h.Svc.Probe(c.Request().Context(), question)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, map[string]string{
		"question": question,
		"answer":   answer,
	})
}

func (h *ChatHandler) sessions(c echo.Context) error {
	keys, err := h.Svc.ActiveSessions(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if keys == nil {
		keys = []string{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"active_sessions": keys,
		"total_count":     len(keys),
	})
}

func (h *ChatHandler) clearSession(c echo.Context) error {
	id := c.Param("session_id")
	existed, err := h.Svc.ClearSession(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !existed {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, map[string]string{
		"message":    "session cleared",
		"session_id": id,
	})
}

func (h *ChatHandler) history(c echo.Context) error {
	id := c.Param("session_id")
	hist, err := h.Svc.History(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if hist == nil {
		hist = []memory.Turn{}
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":    id,
		"history":       hist,
		"message_count": len(hist),
	})
}

func (h *ChatHandler) stats(c echo.Context) error {
	id := c.Param("session_id")
	st, ok, err := h.Svc.SessionStats(c.Request().Context(), id)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	if !ok {
		return echo.NewHTTPError(http.StatusNotFound, "session not found")
	}
	return c.JSON(http.StatusOK, map[string]interface{}{
		"session_id":        id,
		"message_count":     st.TurnCount,
		"max_messages":      st.MaxTurns,
		"interaction_count": st.InteractionCount,
		"max_interactions":  st.MaxInteractions,
		"memory_usage":      fmt.Sprintf("%d/%d", st.TurnCount, st.MaxTurns),
	})
}
