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
	if cfg.Port != DefaultPort || cfg.Seed != DefaultSeed || cfg.SessionID != DefaultSessionID {
		t.Fatalf("unexpected defaults: %+v", cfg)
	}
	if cfg.WorldFile != "./configs/world.yaml" {
		t.Fatalf("unexpected world file default: %s", cfg.WorldFile)
	}
}

func TestLoadFileAndEnvOverride(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	doc := "port: 9000\nseed: 42\nsession_id: from-file\n"
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}

	t.Setenv("TOWNSIM_SEED", "77")
	t.Setenv("TOWNSIM_DB_DSN", "postgres://env")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if cfg.Port != 9000 {
		t.Fatalf("expected port from file, got %d", cfg.Port)
	}
	if cfg.Seed != 77 {
		t.Fatalf("expected env seed to win, got %d", cfg.Seed)
	}
	if cfg.SessionID != "from-file" {
		t.Fatalf("expected session id from file, got %s", cfg.SessionID)
	}
	if cfg.DatabaseDSN != "postgres://env" {
		t.Fatalf("expected dsn from env, got %s", cfg.DatabaseDSN)
	}
}

func TestLoadRejectsBadEnv(t *testing.T) {
	t.Setenv("TOWNSIM_PORT", "not-a-port")
	if _, err := Load(""); err == nil {
		t.Fatal("expected error for bad TOWNSIM_PORT")
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}
