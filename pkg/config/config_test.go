package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/saishankar404/tidy/pkg/model"
)

func TestDefault(t *testing.T) {
	cfg := Default()
	if cfg.Provider != "gemini" {
		t.Errorf("provider = %q, want gemini", cfg.Provider)
	}
	if cfg.Addr != ":8790" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.Analysis.Timeout != 45*time.Second {
		t.Errorf("timeout = %v", cfg.Analysis.Timeout)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "tidy.yaml")
	body := `provider: openai
addr: ":9000"
analysis:
  analyzers: [security, performance]
  timeout: 30s
  max_concurrency: 2
  include_suggestions: true
`
	if err := os.WriteFile(path, []byte(body), 0o644); err != nil {
		t.Fatal(err)
	}

	t.Setenv("LLM_PROVIDER", "")
	t.Setenv("TIDY_ADDR", "")
	t.Setenv("TIDY_DATA_DIR", "")

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("provider = %q", cfg.Provider)
	}
	if cfg.Addr != ":9000" {
		t.Errorf("addr = %q", cfg.Addr)
	}
	if cfg.Analysis.Timeout != 30*time.Second {
		t.Errorf("timeout = %v", cfg.Analysis.Timeout)
	}

	ac := cfg.Analysis.AnalysisConfig()
	if len(ac.EnabledAnalyzers) != 2 {
		t.Fatalf("enabled analyzers = %v", ac.EnabledAnalyzers)
	}
	if ac.EnabledAnalyzers[0] != model.KindSecurity || ac.EnabledAnalyzers[1] != model.KindPerformance {
		t.Errorf("enabled analyzers = %v", ac.EnabledAnalyzers)
	}
	if ac.MaxConcurrency != 2 {
		t.Errorf("max concurrency = %d", ac.MaxConcurrency)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("LLM_PROVIDER", "openai")
	t.Setenv("TIDY_ADDR", ":7000")
	t.Setenv("TIDY_DATA_DIR", "/tmp/tidy-test")

	path := filepath.Join(t.TempDir(), "tidy.yaml")
	if err := os.WriteFile(path, []byte("provider: gemini\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Provider != "openai" {
		t.Errorf("env override lost: provider = %q", cfg.Provider)
	}
	if cfg.Addr != ":7000" {
		t.Errorf("env override lost: addr = %q", cfg.Addr)
	}
	if cfg.DataDir != "/tmp/tidy-test" {
		t.Errorf("env override lost: data dir = %q", cfg.DataDir)
	}
}

func TestLoadMissingFile(t *testing.T) {
	if _, err := Load(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Error("explicit missing config path did not error")
	}
}

func TestAnalysisConfigSkipsUnknownAnalyzers(t *testing.T) {
	settings := AnalysisSettings{
		Analyzers:          []string{"security", "made-up", "quality"},
		IncludeSuggestions: true,
	}
	ac := settings.AnalysisConfig()
	if len(ac.EnabledAnalyzers) != 2 {
		t.Errorf("enabled analyzers = %v, want the two known kinds", ac.EnabledAnalyzers)
	}
	// Zero timeout falls back to the default.
	if ac.Timeout != model.DefaultAnalysisConfig().Timeout {
		t.Errorf("timeout = %v", ac.Timeout)
	}
}
