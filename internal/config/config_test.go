package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestDefaults(t *testing.T) {
	cfg := Defaults()
	if cfg.Coords.Steps != 1000 {
		t.Errorf("expected coords.steps 1000, got %d", cfg.Coords.Steps)
	}
	if cfg.Coords.ForceField != "MMFF94" {
		t.Errorf("expected force field 'MMFF94', got %q", cfg.Coords.ForceField)
	}
	if cfg.Workflow != "xtb" {
		t.Errorf("expected workflow 'xtb', got %q", cfg.Workflow)
	}
	if !cfg.SingleThreadTools {
		t.Error("expected single_thread_tools on by default")
	}
}

func TestValidate(t *testing.T) {
	cfg := Defaults()
	if err := cfg.Validate(); err != nil {
		t.Errorf("defaults should be valid: %v", err)
	}

	cases := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown force field", func(c *Config) { c.Coords.ForceField = "AMBER" }},
		{"zero steps", func(c *Config) { c.Coords.Steps = 0 }},
		{"negative workers", func(c *Config) { c.MaxWorkers = -2 }},
		{"empty output dir", func(c *Config) { c.OutputDir = "" }},
		{"empty pipeline file", func(c *Config) { c.PipelineFile = "" }},
		{"empty coords command", func(c *Config) { c.Coords.Command = "" }},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Defaults()
			tc.mutate(cfg)
			if err := cfg.Validate(); err == nil {
				t.Error("expected validation error")
			}
		})
	}

	cfg.Coords.ForceField = "uff"
	if err := cfg.Validate(); err != nil {
		t.Errorf("force field match should be case-insensitive: %v", err)
	}
}

func TestWorkers(t *testing.T) {
	cfg := Defaults()
	if got := cfg.Workers(); got != runtime.NumCPU() {
		t.Errorf("expected %d workers, got %d", runtime.NumCPU(), got)
	}
	cfg.MaxWorkers = 3
	if got := cfg.Workers(); got != 3 {
		t.Errorf("expected 3 workers, got %d", got)
	}
}

func TestMergeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := []byte("log_level: debug\ncoords:\n  force_field: UFF\n")
	if err := os.WriteFile(path, content, 0644); err != nil {
		t.Fatal(err)
	}

	cfg := Defaults()
	if err := mergeFile(cfg, path); err != nil {
		t.Fatal(err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("expected 'debug', got %q", cfg.LogLevel)
	}
	if cfg.Coords.ForceField != "UFF" {
		t.Errorf("expected 'UFF', got %q", cfg.Coords.ForceField)
	}
	if cfg.Coords.Steps != 1000 {
		t.Errorf("unset fields should keep defaults, got steps %d", cfg.Coords.Steps)
	}
}

func TestMergeFileNotExist(t *testing.T) {
	cfg := Defaults()
	err := mergeFile(cfg, "/nonexistent/path/config.yaml")
	if err == nil || !os.IsNotExist(err) {
		t.Errorf("expected os.IsNotExist error, got %v", err)
	}
}

func TestMergeFileMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("max_workers: [1, 2\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := mergeFile(Defaults(), path); err == nil {
		t.Error("expected parse error")
	}
}
