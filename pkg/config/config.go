// Package config loads engine configuration from an optional YAML file
// with environment overrides.
package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/saishankar404/tidy/pkg/model"
)

// Config is the full engine configuration.
type Config struct {
	Provider string `yaml:"provider"`
	Model    string `yaml:"model"`

	Addr           string   `yaml:"addr"`
	DataDir        string   `yaml:"data_dir"`
	AllowedOrigins []string `yaml:"allowed_origins"`

	Analysis AnalysisSettings `yaml:"analysis"`
}

// AnalysisSettings mirrors the orchestrator configuration in file form.
type AnalysisSettings struct {
	Analyzers          []string      `yaml:"analyzers"`
	Timeout            time.Duration `yaml:"timeout"`
	MaxConcurrency     int           `yaml:"max_concurrency"`
	IncludeSuggestions bool          `yaml:"include_suggestions"`
}

// Default returns the stock configuration.
func Default() Config {
	return Config{
		Provider: "gemini",
		Addr:     ":8790",
		DataDir:  ".tidy",
		Analysis: AnalysisSettings{
			Timeout:            45 * time.Second,
			MaxConcurrency:     1,
			IncludeSuggestions: true,
		},
	}
}

// AnalysisConfig converts the file form into the orchestrator form.
// Unknown analyzer names are skipped; an empty list enables everything.
func (s AnalysisSettings) AnalysisConfig() model.AnalysisConfig {
	cfg := model.DefaultAnalysisConfig()
	if s.Timeout > 0 {
		cfg.Timeout = s.Timeout
	}
	if s.MaxConcurrency > 0 {
		cfg.MaxConcurrency = s.MaxConcurrency
	}
	cfg.IncludeSuggestions = s.IncludeSuggestions
	if len(s.Analyzers) > 0 {
		kinds := make([]model.AnalyzerKind, 0, len(s.Analyzers))
		for _, name := range s.Analyzers {
			if kind, ok := model.ParseKind(name); ok {
				kinds = append(kinds, kind)
			}
		}
		if len(kinds) > 0 {
			cfg.EnabledAnalyzers = kinds
		}
	}
	return cfg
}

// Load reads the config file at path (if it exists) over the defaults,
// then applies environment overrides. An empty path checks the
// conventional location.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		if home, err := os.UserHomeDir(); err == nil {
			candidate := home + "/.tidy.yaml"
			if _, err := os.Stat(candidate); err == nil {
				path = candidate
			}
		}
	}

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("read config %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parse config %s: %w", path, err)
		}
	}

	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.Provider = v
	}
	if v := os.Getenv("TIDY_ADDR"); v != "" {
		cfg.Addr = v
	}
	if v := os.Getenv("TIDY_DATA_DIR"); v != "" {
		cfg.DataDir = v
	}
	return cfg, nil
}
