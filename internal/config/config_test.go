package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.ListenAddr == "" {
		t.Error("default listen addr should not be empty")
	}
	if cfg.HeartbeatInterval() != 30*time.Second {
		t.Errorf("expected 30s heartbeat interval, got %v", cfg.HeartbeatInterval())
	}
	if cfg.HeartbeatTimeout() != 60*time.Second {
		t.Errorf("expected 60s heartbeat timeout, got %v", cfg.HeartbeatTimeout())
	}
	if cfg.AuthToken != "" {
		t.Error("default config should not carry an auth token")
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load with missing file should not fail: %v", err)
	}
	if cfg.ListenAddr != Default().ListenAddr {
		t.Errorf("expected default listen addr, got %s", cfg.ListenAddr)
	}
}

func TestSaveAndLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")

	cfg := Default()
	cfg.ListenAddr = "0.0.0.0:9000"
	cfg.AuthToken = "hub-secret"
	cfg.HeartbeatTimeoutSeconds = 120

	if err := cfg.Save(path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	loaded, err := Load(path)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if loaded.ListenAddr != "0.0.0.0:9000" {
		t.Errorf("listen addr not round-tripped: %s", loaded.ListenAddr)
	}
	if loaded.AuthToken != "hub-secret" {
		t.Errorf("auth token not round-tripped: %s", loaded.AuthToken)
	}
	if loaded.HeartbeatTimeout() != 120*time.Second {
		t.Errorf("heartbeat timeout not round-tripped: %v", loaded.HeartbeatTimeout())
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(path, []byte("{not json"), 0600); err != nil {
		t.Fatal(err)
	}

	if _, err := Load(path); err == nil {
		t.Error("expected error for invalid config JSON")
	}
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("WORKHUB_ADDR", "127.0.0.1:7777")
	t.Setenv("WORKHUB_AUTH_TOKEN", "env-secret")
	t.Setenv("WORKHUB_LOG_LEVEL", "debug")

	cfg, err := Load(filepath.Join(t.TempDir(), "nope.json"))
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}

	if cfg.ListenAddr != "127.0.0.1:7777" {
		t.Errorf("env addr override not applied: %s", cfg.ListenAddr)
	}
	if cfg.AuthToken != "env-secret" {
		t.Errorf("env token override not applied: %s", cfg.AuthToken)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("env log level override not applied: %s", cfg.LogLevel)
	}
}
