package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg != Default() {
		t.Fatalf("cfg = %+v, want defaults", cfg)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dnp3snoop.toml")

	body := []byte("ctx_max = 4\nport = 19999\nquiet = true\n")
	if err := os.WriteFile(path, body, 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}

	if cfg.CtxMax != 4 || cfg.Port != 19999 || !cfg.Quiet {
		t.Fatalf("cfg = %+v", cfg)
	}

	// unset keys keep their defaults
	if cfg.BufLen != Default().BufLen {
		t.Fatalf("buf_len = %d, want default", cfg.BufLen)
	}
}

func TestLoadRejectsBadSizing(t *testing.T) {
	path := filepath.Join(t.TempDir(), "dnp3snoop.toml")

	if err := os.WriteFile(path, []byte("ctx_max = 0\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}

	if _, err := Load(path); err == nil {
		t.Fatalf("load accepted ctx_max = 0")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "nope.toml")); err == nil {
		t.Fatalf("load accepted a missing file")
	}
}
