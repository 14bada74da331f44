// Package config defines the typed configuration for the prompt composition
// engine. Every section has a Default* constructor with sensible values;
// callers override individual fields as needed.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all promptforge configuration.
type Config struct {
	// Core settings
	Name    string `yaml:"name"`
	Version string `yaml:"version"`

	// Corpus ingestion
	Corpus CorpusConfig `yaml:"corpus"`

	// Component database
	Library LibraryConfig `yaml:"library"`

	// Composition and diversity
	Composer ComposerConfig `yaml:"composer"`

	// Logging
	Logging LoggingConfig `yaml:"logging"`
}

// CorpusConfig configures where components are ingested from.
type CorpusConfig struct {
	// Path is a YAML file, a directory of YAML files, or a SQLite
	// database emitted by the extraction pipeline.
	Path string `yaml:"path"`
}

// LoggingConfig configures the categorized file logger.
type LoggingConfig struct {
	Level      string          `yaml:"level" json:"level,omitempty"`           // debug, info, warn, error
	DebugMode  bool            `yaml:"debug_mode" json:"debug_mode,omitempty"` // Master toggle - false = no logging (production)
	JSONFormat bool            `yaml:"json_format" json:"json_format,omitempty"`
	Categories map[string]bool `yaml:"categories" json:"categories,omitempty"` // Per-category toggles
}

// DefaultConfig returns the default configuration.
func DefaultConfig() *Config {
	return &Config{
		Name:    "promptforge",
		Version: "1.0.0",

		Corpus: CorpusConfig{
			Path: "corpus",
		},

		Library:  DefaultLibraryConfig(),
		Composer: DefaultComposerConfig(),

		Logging: LoggingConfig{
			Level: "info",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults; environment overrides apply either way.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
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

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("PROMPTFORGE_CORPUS"); path != "" {
		c.Corpus.Path = path
	}

	if level := os.Getenv("PROMPTFORGE_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if debug := os.Getenv("PROMPTFORGE_DEBUG"); debug != "" {
		if v, err := strconv.ParseBool(debug); err == nil {
			c.Logging.DebugMode = v
		}
	}

	if sim := os.Getenv("PROMPTFORGE_MAX_SIMILARITY"); sim != "" {
		if v, err := strconv.ParseFloat(sim, 64); err == nil && v >= 0 && v <= 1 {
			c.Composer.Diversity.MaxSimilarity = v
		}
	}
	if frac := os.Getenv("PROMPTFORGE_LOW_USAGE_FRACTION"); frac != "" {
		if v, err := strconv.ParseFloat(frac, 64); err == nil && v > 0 && v <= 1 {
			c.Library.LowUsageFraction = v
		}
	}
}
