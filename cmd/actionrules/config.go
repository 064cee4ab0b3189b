package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
)

// Config holds the actionrules configuration.
// Priority: flags > env vars > settings.json > defaults.
type Config struct {
	RulesetPath  string `json:"ruleset" env:"ACTIONRULES_RULESET"`
	ScenarioPath string `json:"scenario" env:"ACTIONRULES_SCENARIO"`
	LogLevel     string `json:"log_level" env:"ACTIONRULES_LOG_LEVEL"`
	// MetricsAddr enables the Prometheus endpoint when set, e.g. ":9464".
	MetricsAddr string `json:"metrics_addr" env:"ACTIONRULES_METRICS_ADDR"`
}

func defaultConfig() Config {
	return Config{
		RulesetPath:  filepath.Join(actionrulesDir(), "ruleset.yaml"),
		ScenarioPath: filepath.Join(actionrulesDir(), "scenario.yaml"),
		LogLevel:     "info",
	}
}

func actionrulesDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".actionrules"
	}
	return filepath.Join(home, ".actionrules")
}

func settingsPath() string {
	return filepath.Join(actionrulesDir(), "settings.json")
}

func loadConfig() (Config, error) {
	return loadConfigFrom(settingsPath())
}

// loadConfigFrom layers the settings file at path (ignored if missing) and
// the environment over the defaults.
func loadConfigFrom(path string) (Config, error) {
	cfg := defaultConfig()

	if data, err := os.ReadFile(path); err == nil {
		if err := json.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse %s: %w", path, err)
		}
	}

	if err := env.Parse(&cfg); err != nil {
		return cfg, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}

// logLevel parses cfg.LogLevel, falling back to info.
func (cfg Config) logLevel() slog.Level {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(cfg.LogLevel)); err != nil {
		return slog.LevelInfo
	}
	return lvl
}
