package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"gopkg.in/yaml.v3"
)

// Dir is the settings directory name under the home and project roots.
const Dir = ".qcflow"

// Config is the top-level settings structure.
type Config struct {
	OutputDir         string       `yaml:"output_dir"`
	InputDir          string       `yaml:"input_dir"`
	PipelineFile      string       `yaml:"pipeline_file"`
	Workflow          string       `yaml:"workflow"`
	MaxWorkers        int          `yaml:"max_workers"`
	SingleThreadTools bool         `yaml:"single_thread_tools"`
	LogLevel          string       `yaml:"log_level"`
	Coords            CoordsConfig `yaml:"coords"`
}

// CoordsConfig drives the built-in SMILES to XYZ step.
type CoordsConfig struct {
	Command    string `yaml:"command"`
	ForceField string `yaml:"force_field"`
	Steps      int    `yaml:"steps"`
	Optimize   bool   `yaml:"optimize"`
}

// ForceFields lists the force fields accepted for optimization.
var ForceFields = []string{"MMFF94", "UFF", "GAFF"}

// Validate checks that required fields are present and in range.
func (c *Config) Validate() error {
	if c.OutputDir == "" {
		return fmt.Errorf("output_dir is required")
	}
	if c.PipelineFile == "" {
		return fmt.Errorf("pipeline_file is required")
	}
	if c.MaxWorkers < 0 {
		return fmt.Errorf("max_workers must be >= 0, got %d", c.MaxWorkers)
	}
	if c.Coords.Command == "" {
		return fmt.Errorf("coords.command is required")
	}
	if c.Coords.Steps <= 0 {
		return fmt.Errorf("coords.steps must be positive, got %d", c.Coords.Steps)
	}
	if !validForceField(c.Coords.ForceField) {
		return fmt.Errorf("coords.force_field %q is not one of %s", c.Coords.ForceField, strings.Join(ForceFields, ", "))
	}
	return nil
}

func validForceField(ff string) bool {
	for _, f := range ForceFields {
		if strings.EqualFold(f, ff) {
			return true
		}
	}
	return false
}

// Workers resolves max_workers, where 0 means one worker per CPU.
func (c *Config) Workers() int {
	if c.MaxWorkers > 0 {
		return c.MaxWorkers
	}
	return runtime.NumCPU()
}

// UserPath is the user-level settings file.
func UserPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, Dir, "config.yaml"), nil
}

// Load resolves config from project → user → defaults.
func Load() (*Config, error) {
	cfg := Defaults()

	if userPath, err := UserPath(); err == nil {
		if err := mergeFile(cfg, userPath); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("loading user config: %w", err)
		}
	}

	// project-level config (highest priority)
	projectPath := filepath.Join(Dir, "config.yaml")
	if err := mergeFile(cfg, projectPath); err != nil && !os.IsNotExist(err) {
		return nil, fmt.Errorf("loading project config: %w", err)
	}

	return cfg, nil
}

func mergeFile(dst *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	if err := yaml.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("parsing %s: %w", path, err)
	}
	return nil
}

// Defaults returns the built-in settings.
func Defaults() *Config {
	return &Config{
		OutputDir:         "output_files",
		InputDir:          "input_files",
		PipelineFile:      "pipelines.yaml",
		Workflow:          "xtb",
		MaxWorkers:        0,
		SingleThreadTools: true,
		LogLevel:          "info",
		Coords: CoordsConfig{
			Command:    "obabel",
			ForceField: "MMFF94",
			Steps:      1000,
			Optimize:   true,
		},
	}
}
