package config

import (
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg := Load()

	if cfg.Match.KnownThreshold != 70.0 {
		t.Errorf("expected known threshold 70.0, got %v", cfg.Match.KnownThreshold)
	}
	if cfg.Match.UnknownThreshold != 60.0 {
		t.Errorf("expected unknown threshold 60.0, got %v", cfg.Match.UnknownThreshold)
	}
	if cfg.Session.ActivationWindow() != 3*time.Second {
		t.Errorf("expected activation window 3s, got %v", cfg.Session.ActivationWindow())
	}
	if cfg.History.Capacity != 1000 {
		t.Errorf("expected history capacity 1000, got %d", cfg.History.Capacity)
	}
	if cfg.Data.Path != "./data" {
		t.Errorf("expected default data path ./data, got %s", cfg.Data.Path)
	}
	if cfg.Emotion.Provider != "random" {
		t.Errorf("expected default emotion provider random, got %s", cfg.Emotion.Provider)
	}
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("MATCH_KNOWN_THRESHOLD", "80")
	t.Setenv("SESSION_ACTIVATION_SECONDS", "5")
	t.Setenv("HISTORY_CAPACITY", "10")
	t.Setenv("DATA_PATH", "/tmp/faces")

	cfg := Load()

	if cfg.Match.KnownThreshold != 80.0 {
		t.Errorf("expected known threshold 80.0, got %v", cfg.Match.KnownThreshold)
	}
	if cfg.Session.ActivationWindow() != 5*time.Second {
		t.Errorf("expected activation window 5s, got %v", cfg.Session.ActivationWindow())
	}
	if cfg.History.Capacity != 10 {
		t.Errorf("expected history capacity 10, got %d", cfg.History.Capacity)
	}
	if cfg.Data.Path != "/tmp/faces" {
		t.Errorf("expected data path /tmp/faces, got %s", cfg.Data.Path)
	}
}

func TestLoad_InvalidEnvFallsBack(t *testing.T) {
	t.Setenv("MATCH_KNOWN_THRESHOLD", "not-a-number")
	t.Setenv("HISTORY_CAPACITY", "-5")

	cfg := Load()

	if cfg.Match.KnownThreshold != 70.0 {
		t.Errorf("invalid env value should fall back to 70.0, got %v", cfg.Match.KnownThreshold)
	}
	if cfg.History.Capacity != 1000 {
		t.Errorf("negative capacity should fall back to 1000, got %d", cfg.History.Capacity)
	}
}
