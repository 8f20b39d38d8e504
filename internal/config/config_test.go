package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaultsAndOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	if err := os.WriteFile(path, []byte("max_frame_size: 4096\nws_enabled: false\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.MaxFrameSize != 4096 {
		t.Fatalf("expected override to apply, got %d", cfg.MaxFrameSize)
	}
	if cfg.WSEnabled {
		t.Fatal("expected ws_enabled override to apply")
	}
	if cfg.RequestTimeoutMs != Default().RequestTimeoutMs {
		t.Fatal("expected unset fields to keep their default")
	}
}

func TestValidateRejectsNonPositiveFrameSize(t *testing.T) {
	cfg := Default()
	cfg.MaxFrameSize = 0
	if err := cfg.Validate(); err == nil {
		t.Fatal("expected validation error")
	}
}
