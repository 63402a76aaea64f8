package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

// DefaultPath is the configuration file looked up in the working directory.
const DefaultPath = "clausegen.yaml"

// Config holds all clausegen configuration.
type Config struct {
	Name string `yaml:"name"`

	// Program source selection
	Program ProgramConfig `yaml:"program"`

	// Clause synthesis
	Synthesis SynthesisConfig `yaml:"synthesis"`

	// Datalog export
	Export ExportConfig `yaml:"export"`

	// File watching
	Watch WatchConfig `yaml:"watch"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// ProgramConfig says where programs are read from.
type ProgramConfig struct {
	Path      string `yaml:"path"`       // YAML program file
	StorePath string `yaml:"store_path"` // sqlite program store
}

// SynthesisConfig configures the synthesizer.
type SynthesisConfig struct {
	Workers int    `yaml:"workers"` // concurrent goals in batch mode
	Timeout string `yaml:"timeout"` // whole batch
}

// ExportConfig configures Datalog rendering.
type ExportConfig struct {
	Dir string `yaml:"dir"`
}

// WatchConfig configures the watch command.
type WatchConfig struct {
	Debounce string `yaml:"debounce"`
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name: "clausegen",

		Program: ProgramConfig{
			Path:      "program.yaml",
			StorePath: ".clausegen/programs.db",
		},

		Synthesis: SynthesisConfig{
			Workers: 4,
			Timeout: "30s",
		},

		Export: ExportConfig{
			Dir: ".clausegen/export",
		},

		Watch: WatchConfig{
			Debounce: "300ms",
		},

		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults. Environment overrides apply in both cases.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
	case err != nil:
		return nil, fmt.Errorf("failed to read config: %w", err)
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config: %w", err)
		}
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Save saves configuration to a YAML file.
func (c *Config) Save(path string) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}

// applyEnvOverrides applies CLAUSEGEN_* environment overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("CLAUSEGEN_PROGRAM"); path != "" {
		c.Program.Path = path
	}
	if path := os.Getenv("CLAUSEGEN_STORE"); path != "" {
		c.Program.StorePath = path
	}
	if v := os.Getenv("CLAUSEGEN_WORKERS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			c.Synthesis.Workers = n
		}
	}
	if dir := os.Getenv("CLAUSEGEN_EXPORT_DIR"); dir != "" {
		c.Export.Dir = dir
	}
	if level := os.Getenv("CLAUSEGEN_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if v := os.Getenv("CLAUSEGEN_DEBUG"); v != "" {
		if on, err := strconv.ParseBool(v); err == nil {
			c.Logging.DebugMode = on
		}
	}
}

// GetTimeout returns the batch timeout as a duration.
func (c *Config) GetTimeout() time.Duration {
	d, err := time.ParseDuration(c.Synthesis.Timeout)
	if err != nil {
		return 30 * time.Second
	}
	return d
}

// GetDebounce returns the watch debounce window as a duration.
func (c *Config) GetDebounce() time.Duration {
	d, err := time.ParseDuration(c.Watch.Debounce)
	if err != nil {
		return 300 * time.Millisecond
	}
	return d
}

// ValidLevels lists the accepted log levels.
var ValidLevels = []string{"debug", "info", "warn", "error"}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Synthesis.Workers < 1 {
		return fmt.Errorf("synthesis.workers must be positive, got %d", c.Synthesis.Workers)
	}

	validLevel := false
	for _, l := range ValidLevels {
		if c.Logging.Level == l {
			validLevel = true
			break
		}
	}
	if !validLevel {
		return fmt.Errorf("invalid log level: %s (valid: %v)", c.Logging.Level, ValidLevels)
	}

	if c.Logging.Format != "json" && c.Logging.Format != "console" {
		return fmt.Errorf("invalid log format: %s (valid: json, console)", c.Logging.Format)
	}
	return nil
}
