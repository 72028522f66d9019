package handlers

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/sirupsen/logrus"

	"github.com/kozaktomas/face-sentry/internal/config"
	"github.com/kozaktomas/face-sentry/internal/detect"
	"github.com/kozaktomas/face-sentry/internal/emotion"
	"github.com/kozaktomas/face-sentry/internal/gallery"
	"github.com/kozaktomas/face-sentry/internal/report"
	"github.com/kozaktomas/face-sentry/internal/session"
)

// stubDetector returns a fixed detection for any frame.
type stubDetector struct {
	faces []detect.Face
	err   error
}

func (d *stubDetector) Detect(ctx context.Context, frame []byte) ([]detect.Face, error) {
	return d.faces, d.err
}

type stubClassifier struct{}

func (stubClassifier) Name() string { return "stub" }

func (stubClassifier) Classify(ctx context.Context, faceJPEG []byte) (emotion.Label, error) {
	return emotion.Neutral, nil
}

func testLogger() *logrus.Logger {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return log
}

// testEngine builds an engine over a throwaway data root.
func testEngine(t *testing.T, detector detect.Detector) *session.Engine {
	t.Helper()

	root := t.TempDir()
	cfg := &config.Config{
		Data: config.DataConfig{Path: root},
		Match: config.MatchConfig{
			KnownThreshold:   70,
			UnknownThreshold: 60,
			HNSWCutover:      1000,
		},
		Session: config.SessionConfig{ActivationSeconds: 3},
		History: config.HistoryConfig{Capacity: 1000},
	}
	sink := report.NewFileSink(root, testLogger())
	return session.NewEngine(cfg, gallery.New(), detector, stubClassifier{}, sink, testLogger())
}

// vectorAt returns a unit vector whose cosine similarity against
// (1, 0) maps to the given 0-100 score.
func vectorAt(similarity float64) []float32 {
	c := similarity / 100
	return []float32{float32(c), float32(math.Sqrt(1 - c*c))}
}

// testFace is a face whose match against a vectorAt(100) identity
// scores the given similarity.
func testFace(similarity float64) detect.Face {
	return detect.Face{
		Box:    detect.Box{Top: 10, Right: 90, Bottom: 90, Left: 10},
		Vector: vectorAt(similarity),
		Crop:   []byte("crop"),
	}
}

func frameImage() string {
	return "data:image/jpeg;base64," + base64.StdEncoding.EncodeToString([]byte("frame"))
}

// postJSON performs a request with a JSON body against a handler func.
func postJSON(t *testing.T, handler http.HandlerFunc, path string, body any) *httptest.ResponseRecorder {
	t.Helper()

	payload, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshaling request body: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	handler(rec, req)
	return rec
}

// requestWithChiParams creates a request with chi URL parameters.
func requestWithChiParams(r *http.Request, params map[string]string) *http.Request {
	rctx := chi.NewRouteContext()
	for key, value := range params {
		rctx.URLParams.Add(key, value)
	}
	return r.WithContext(context.WithValue(r.Context(), chi.RouteCtxKey, rctx))
}

// decodeBody unmarshals a JSON response body.
func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), out); err != nil {
		t.Fatalf("decoding response %q: %v", rec.Body.String(), err)
	}
}
