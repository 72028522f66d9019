// Package emotion classifies cropped face images into a fixed label
// set. Real classification is an external model capability; providers
// here adapt OpenAI and Gemini vision models to that contract, with a
// random stand-in when no model is configured.
package emotion

import (
	"context"
	"fmt"
	"strings"

	"github.com/kozaktomas/face-sentry/internal/config"
)

// Label is one of the seven supported emotion labels.
type Label string

const (
	Angry     Label = "angry"
	Disgusted Label = "disgusted"
	Sad       Label = "sad"
	Fearful   Label = "fearful"
	Happy     Label = "happy"
	Surprised Label = "surprised"
	Neutral   Label = "neutral"
)

// Labels returns the full label set in a fixed order. Aggregations
// zero-fill over this set.
func Labels() []Label {
	return []Label{Angry, Disgusted, Sad, Fearful, Happy, Surprised, Neutral}
}

// Parse maps a free-form model answer onto a label. Returns false when
// the answer matches nothing in the set.
func Parse(s string) (Label, bool) {
	s = strings.ToLower(strings.TrimSpace(strings.Trim(strings.TrimSpace(s), `."'`)))
	for _, l := range Labels() {
		if s == string(l) {
			return l, true
		}
	}
	return "", false
}

// Classifier assigns an emotion label to a cropped face image.
type Classifier interface {
	Name() string
	Classify(ctx context.Context, faceJPEG []byte) (Label, error)
}

// FromConfig builds the classifier selected by EMOTION_PROVIDER.
func FromConfig(cfg config.EmotionConfig) (Classifier, error) {
	switch cfg.Provider {
	case "", "random":
		return NewRandom(), nil
	case "openai":
		if cfg.OpenAIToken == "" {
			return nil, fmt.Errorf("emotion provider openai requires OPENAI_TOKEN")
		}
		return NewOpenAI(cfg.OpenAIToken), nil
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			return nil, fmt.Errorf("emotion provider gemini requires GEMINI_API_KEY")
		}
		return NewGemini(cfg.GeminiAPIKey)
	default:
		return nil, fmt.Errorf("unknown emotion provider %q", cfg.Provider)
	}
}
