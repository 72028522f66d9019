package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sentry/internal/history"
	"github.com/kozaktomas/face-sentry/internal/session"
)

// ProcessHandler feeds camera frames through the session engine.
type ProcessHandler struct {
	engine *session.Engine
	log    *logrus.Logger
}

// NewProcessHandler creates a new ProcessHandler.
func NewProcessHandler(engine *session.Engine, log *logrus.Logger) *ProcessHandler {
	return &ProcessHandler{engine: engine, log: log}
}

type detectRequest struct {
	Image string `json:"image"` // base64, optionally a data URL
}

// Detect runs face detection on one frame and returns the detection
// events it produced. A frame without faces is a valid, empty result.
func (h *ProcessHandler) Detect(w http.ResponseWriter, r *http.Request) {
	var req detectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}

	frame, err := decodeImage(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	events, err := h.engine.ProcessImage(r.Context(), frame)
	if err != nil {
		h.log.WithError(err).Error("frame processing failed")
		respondError(w, http.StatusBadGateway, "face detection unavailable")
		return
	}

	if events == nil {
		events = []history.Event{}
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"events":      events,
		"total_faces": len(events),
	})
}
