package config

import (
	_ "embed"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

//go:embed thresholds.yaml
var thresholdsYAML []byte

type Config struct {
	Data     DataConfig
	Detector DetectorConfig
	Emotion  EmotionConfig
	Database DatabaseConfig
	Match    MatchConfig
	Session  SessionConfig
	History  HistoryConfig
}

type DataConfig struct {
	Path string // root directory for identity folders and the unknown-face archive
}

type DetectorConfig struct {
	URL string // face detection sidecar, defaults to http://localhost:8000
}

type EmotionConfig struct {
	Provider     string // "random" (default), "openai" or "gemini"
	OpenAIToken  string
	GeminiAPIKey string
}

type DatabaseConfig struct {
	URL          string // PostgreSQL connection URL (optional, archive disabled when empty)
	MaxOpenConns int    // Maximum open connections (default 25)
	MaxIdleConns int    // Maximum idle connections (default 5)
}

type MatchConfig struct {
	KnownThreshold   float64 `yaml:"known_threshold"`   // similarity >= this is a known candidate
	UnknownThreshold float64 `yaml:"unknown_threshold"` // similarity < this is an unknown incident
	HNSWCutover      int     `yaml:"hnsw_cutover"`      // gallery size at which the HNSW index takes over
}

type SessionConfig struct {
	ActivationSeconds int `yaml:"activation_seconds"`
}

// ActivationWindow returns the continuous-sighting duration required
// before a Pending session is confirmed.
func (c SessionConfig) ActivationWindow() time.Duration {
	return time.Duration(c.ActivationSeconds) * time.Second
}

type HistoryConfig struct {
	Capacity int `yaml:"capacity"`
}

// thresholdsFile mirrors the structure of the embedded thresholds.yaml.
type thresholdsFile struct {
	Match   MatchConfig   `yaml:"match"`
	Session SessionConfig `yaml:"session"`
	History HistoryConfig `yaml:"history"`
}

// envInt reads an environment variable and parses it as a positive integer.
// Returns the default value if the env var is unset, empty, or invalid.
func envInt(key string, defaultVal int) int {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if n, err := strconv.Atoi(s); err == nil && n > 0 {
		return n
	}
	return defaultVal
}

// envFloat reads an environment variable and parses it as a positive float.
// Returns the default value if the env var is unset, empty, or invalid.
func envFloat(key string, defaultVal float64) float64 {
	s := os.Getenv(key)
	if s == "" {
		return defaultVal
	}
	if f, err := strconv.ParseFloat(s, 64); err == nil && f > 0 {
		return f
	}
	return defaultVal
}

// envString reads an environment variable with a default.
func envString(key, defaultVal string) string {
	if s := os.Getenv(key); s != "" {
		return s
	}
	return defaultVal
}

func Load() *Config {
	var thresholds thresholdsFile
	if err := yaml.Unmarshal(thresholdsYAML, &thresholds); err != nil {
		// This is an embedded file so this error should never happen in practice
		panic("failed to unmarshal embedded thresholds.yaml: " + err.Error())
	}

	return &Config{
		Data: DataConfig{
			Path: envString("DATA_PATH", "./data"),
		},
		Detector: DetectorConfig{
			URL: os.Getenv("DETECTOR_URL"),
		},
		Emotion: EmotionConfig{
			Provider:     envString("EMOTION_PROVIDER", "random"),
			OpenAIToken:  os.Getenv("OPENAI_TOKEN"),
			GeminiAPIKey: os.Getenv("GEMINI_API_KEY"),
		},
		Database: DatabaseConfig{
			URL:          os.Getenv("DATABASE_URL"),
			MaxOpenConns: envInt("DATABASE_MAX_OPEN_CONNS", 25),
			MaxIdleConns: envInt("DATABASE_MAX_IDLE_CONNS", 5),
		},
		Match: MatchConfig{
			KnownThreshold:   envFloat("MATCH_KNOWN_THRESHOLD", thresholds.Match.KnownThreshold),
			UnknownThreshold: envFloat("MATCH_UNKNOWN_THRESHOLD", thresholds.Match.UnknownThreshold),
			HNSWCutover:      envInt("MATCH_HNSW_CUTOVER", thresholds.Match.HNSWCutover),
		},
		Session: SessionConfig{
			ActivationSeconds: envInt("SESSION_ACTIVATION_SECONDS", thresholds.Session.ActivationSeconds),
		},
		History: HistoryConfig{
			Capacity: envInt("HISTORY_CAPACITY", thresholds.History.Capacity),
		},
	}
}
