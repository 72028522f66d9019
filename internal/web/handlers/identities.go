package handlers

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sentry/internal/session"
)

// IdentitiesHandler manages registered identities.
type IdentitiesHandler struct {
	engine *session.Engine
	log    *logrus.Logger
}

// NewIdentitiesHandler creates a new IdentitiesHandler.
func NewIdentitiesHandler(engine *session.Engine, log *logrus.Logger) *IdentitiesHandler {
	return &IdentitiesHandler{engine: engine, log: log}
}

type registerRequest struct {
	Name  string `json:"name"`
	Image string `json:"image"` // base64, optionally a data URL
}

type identityResponse struct {
	Name         string    `json:"name"`
	RegisteredAt time.Time `json:"registered_at"`
}

// Register adds a new identity from a single-face image.
func (h *IdentitiesHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, errInvalidRequestBody)
		return
	}
	if req.Name == "" {
		respondError(w, http.StatusBadRequest, "name is required")
		return
	}

	frame, err := decodeImage(req.Image)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := h.engine.Register(r.Context(), req.Name, frame); err != nil {
		h.log.WithError(err).WithField("name", sanitizeForLog(req.Name)).Warn("identity registration failed")
		respondError(w, statusForError(err), err.Error())
		return
	}

	h.log.WithField("name", sanitizeForLog(req.Name)).Info("identity registered")
	respondJSON(w, http.StatusCreated, map[string]string{"name": req.Name})
}

// List returns registered identities in registration order.
func (h *IdentitiesHandler) List(w http.ResponseWriter, r *http.Request) {
	identities := h.engine.Identities()

	out := make([]identityResponse, 0, len(identities))
	for _, id := range identities {
		out = append(out, identityResponse{
			Name:         id.Name,
			RegisteredAt: id.RegisteredAt,
		})
	}
	respondJSON(w, http.StatusOK, map[string]any{
		"identities": out,
		"total":      len(out),
	})
}

// Delete removes an identity and all of its state.
func (h *IdentitiesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	if err := h.engine.Delete(r.Context(), name); err != nil {
		respondError(w, statusForError(err), err.Error())
		return
	}

	h.log.WithField("name", sanitizeForLog(name)).Info("identity deleted")
	respondJSON(w, http.StatusOK, map[string]string{"name": name})
}
