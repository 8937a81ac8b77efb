package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.TimeoutMs != 30000 {
		t.Errorf("expected TimeoutMs=30000, got=%d", cfg.TimeoutMs)
	}
	if cfg.ChunkSize != 8000 {
		t.Errorf("expected ChunkSize=8000, got=%d", cfg.ChunkSize)
	}
	if cfg.BaudRate != 115200 {
		t.Errorf("expected BaudRate=115200, got=%d", cfg.BaudRate)
	}
	if cfg.SaveFormat != "PNG" {
		t.Errorf("expected SaveFormat=PNG, got=%s", cfg.SaveFormat)
	}
}

func TestLoadMerge(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	os.WriteFile(path, []byte(`
timeout_ms: 5000
tcp_endpoints:
  - "10.0.0.5:5555"
  - "scope.lan:5025"
`), 0o644)

	cfg := Load(path)

	if cfg.TimeoutMs != 5000 {
		t.Errorf("expected timeout_ms from file, got=%d", cfg.TimeoutMs)
	}
	if len(cfg.TCPEndpoints) != 2 || cfg.TCPEndpoints[0] != "10.0.0.5:5555" {
		t.Errorf("expected tcp endpoints from file, got=%v", cfg.TCPEndpoints)
	}
	// ChunkSize should still be default since not overridden.
	if cfg.ChunkSize != DefaultChunkSize {
		t.Errorf("expected default ChunkSize, got=%d", cfg.ChunkSize)
	}
}

func TestSaveAndLoad(t *testing.T) {
	tmp := t.TempDir()
	path := filepath.Join(tmp, "config.yaml")
	cfg := Defaults()
	cfg.SaveDir = "captures"
	cfg.RefreshIntervalMs = 2500
	cfg.BaudRate = 9600

	if err := Save(cfg, path); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("config file not created: %v", err)
	}

	loaded := Load(path)
	if loaded.SaveDir != "captures" {
		t.Errorf("expected SaveDir=captures, got=%s", loaded.SaveDir)
	}
	if loaded.RefreshIntervalMs != 2500 {
		t.Errorf("expected RefreshIntervalMs=2500, got=%d", loaded.RefreshIntervalMs)
	}
	if loaded.BaudRate != 9600 {
		t.Errorf("expected BaudRate=9600, got=%d", loaded.BaudRate)
	}
}

func TestRefreshIntervalClamped(t *testing.T) {
	cfg := Defaults()

	cfg.RefreshIntervalMs = 50
	if got := cfg.RefreshInterval(); got != 200*time.Millisecond {
		t.Errorf("expected clamp to 200ms, got %v", got)
	}

	cfg.RefreshIntervalMs = 60000
	if got := cfg.RefreshInterval(); got != 10*time.Second {
		t.Errorf("expected clamp to 10s, got %v", got)
	}

	cfg.RefreshIntervalMs = 1000
	if got := cfg.RefreshInterval(); got != time.Second {
		t.Errorf("expected 1s, got %v", got)
	}
}

func TestTimeout(t *testing.T) {
	cfg := Defaults()
	if cfg.Timeout() != 30*time.Second {
		t.Errorf("expected 30s timeout, got %v", cfg.Timeout())
	}
}
