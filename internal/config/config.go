// Package config loads server configuration. Values come from an optional
// YAML file merged with environment overrides; env always wins so deployments
// can keep secrets out of the file.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

type Config struct {
	Port         int    `koanf:"port"`
	ObserverPort int    `koanf:"observer_port"`
	SessionID    string `koanf:"session_id"`
	Seed         int64  `koanf:"seed"`
	Timezone     string `koanf:"timezone"`
	StartAt      string `koanf:"start_at"`

	DatabaseDSN   string `koanf:"database_dsn"`
	MigrationsDir string `koanf:"migrations_dir"`

	WorldFile  string `koanf:"world_file"`
	NPCsFile   string `koanf:"npcs_file"`
	ScenesFile string `koanf:"scenes_file"`
}

const (
	DefaultPort         = 8080
	DefaultObserverPort = 9090
	DefaultSessionID    = "default"
	DefaultSeed         = 1337
	DefaultTimezone     = "UTC"
)

// Load reads the optional config file, then applies environment overrides.
func Load(path string) (*Config, error) {
	k := koanf.New(".")
	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("load config file %s: %w", path, err)
		}
	}

	cfg := &Config{
		Port:          intOr(k.Int("port"), DefaultPort),
		ObserverPort:  intOr(k.Int("observer_port"), DefaultObserverPort),
		SessionID:     stringOr(k.String("session_id"), DefaultSessionID),
		Seed:          int64Or(k.Int64("seed"), DefaultSeed),
		Timezone:      stringOr(k.String("timezone"), DefaultTimezone),
		StartAt:       k.String("start_at"),
		DatabaseDSN:   k.String("database_dsn"),
		MigrationsDir: stringOr(k.String("migrations_dir"), "./migrations"),
		WorldFile:     stringOr(k.String("world_file"), "./configs/world.yaml"),
		NPCsFile:      stringOr(k.String("npcs_file"), "./configs/npcs.yaml"),
		ScenesFile:    stringOr(k.String("scenes_file"), "./configs/scenes.yaml"),
	}

	if v := strings.TrimSpace(os.Getenv("TOWNSIM_PORT")); v != "" {
		port, err := strconv.Atoi(v)
		if err != nil {
			return nil, fmt.Errorf("TOWNSIM_PORT: %w", err)
		}
		cfg.Port = port
	}
	if v := strings.TrimSpace(os.Getenv("TOWNSIM_SEED")); v != "" {
		seed, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return nil, fmt.Errorf("TOWNSIM_SEED: %w", err)
		}
		cfg.Seed = seed
	}
	if v := strings.TrimSpace(os.Getenv("TOWNSIM_DB_DSN")); v != "" {
		cfg.DatabaseDSN = v
	}
	if v := strings.TrimSpace(os.Getenv("TOWNSIM_SESSION_ID")); v != "" {
		cfg.SessionID = v
	}
	return cfg, nil
}

func intOr(v, fallback int) int {
	if v == 0 {
		return fallback
	}
	return v
}

func int64Or(v, fallback int64) int64 {
	if v == 0 {
		return fallback
	}
	return v
}

func stringOr(v, fallback string) string {
	if v == "" {
		return fallback
	}
	return v
}
