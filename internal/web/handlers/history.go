package handlers

import (
	"net/http"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sentry/internal/history"
	"github.com/kozaktomas/face-sentry/internal/session"
)

// defaultHistoryLimit caps unbounded history queries.
const defaultHistoryLimit = 100

// HistoryHandler exposes the bounded detection history.
type HistoryHandler struct {
	engine *session.Engine
	log    *logrus.Logger
}

// NewHistoryHandler creates a new HistoryHandler.
func NewHistoryHandler(engine *session.Engine, log *logrus.Logger) *HistoryHandler {
	return &HistoryHandler{engine: engine, log: log}
}

// Query returns recent detection events, newest first. Supports
// ?limit= and ?identity= filters.
func (h *HistoryHandler) Query(w http.ResponseWriter, r *http.Request) {
	limit := defaultHistoryLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			respondError(w, http.StatusBadRequest, "limit must be a positive integer")
			return
		}
		limit = parsed
	}

	events := h.engine.History(limit, r.URL.Query().Get("identity"))
	if events == nil {
		events = []history.Event{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"events": events,
		"total":  len(events),
	})
}

// Stats returns aggregates over the retained history window.
func (h *HistoryHandler) Stats(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, h.engine.Stats())
}
