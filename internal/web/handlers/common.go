// Package handlers implements the HTTP API on top of the session
// engine.
package handlers

import (
	"encoding/base64"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/kozaktomas/face-sentry/internal/detect"
	"github.com/kozaktomas/face-sentry/internal/gallery"
)

// errInvalidRequestBody is a shared error message for invalid JSON request bodies.
const errInvalidRequestBody = "invalid request body"

// sanitizeForLog removes newlines and carriage returns to prevent log injection.
func sanitizeForLog(s string) string {
	return strings.NewReplacer("\n", "", "\r", "").Replace(s)
}

// respondJSON sends a JSON response.
func respondJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		json.NewEncoder(w).Encode(data)
	}
}

// respondError sends an error response.
func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

// decodeImage turns a base64 payload, with or without a data URL
// prefix, into raw image bytes.
func decodeImage(payload string) ([]byte, error) {
	if payload == "" {
		return nil, errors.New("image is required")
	}
	if _, rest, ok := strings.Cut(payload, "base64,"); ok {
		payload = rest
	}
	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return nil, errors.New("image is not valid base64")
	}
	return data, nil
}

// statusForError maps engine errors to HTTP status codes. Detection
// and validation problems are the caller's fault; everything else is
// a server-side failure.
func statusForError(err error) int {
	switch {
	case errors.Is(err, detect.ErrNoFace),
		errors.Is(err, detect.ErrMultipleFaces),
		errors.Is(err, detect.ErrExtraction),
		errors.Is(err, gallery.ErrInvalidName):
		return http.StatusBadRequest
	case errors.Is(err, gallery.ErrNotFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// HealthCheck handles the health check endpoint.
func HealthCheck(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{
		"status": "ok",
	})
}
