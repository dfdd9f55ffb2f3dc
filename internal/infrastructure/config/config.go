// Package config provides configuration loading and management.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"github.com/dmoren/circuitelo/internal/domain/records"
)

const (
	// DefaultConfigDir is the directory name for circuitelo configuration.
	DefaultConfigDir = ".circuitelo"
	// DefaultConfigFile is the default config file name.
	DefaultConfigFile = "config.yaml"
	// DefaultDBFile is the default SQLite database file name.
	DefaultDBFile = "circuitelo.db"
)

// Config holds static infrastructure configuration (read-only after init).
type Config struct {
	SQLite   SQLiteConfig   `yaml:"sqlite,omitempty"`
	Engine   EngineConfig   `yaml:"engine,omitempty"`
	Resolver ResolverConfig `yaml:"resolver,omitempty"`
}

// SQLiteConfig holds configuration for the SQLite database.
type SQLiteConfig struct {
	// Path is the file path to the SQLite database. Empty means the
	// default path under the config directory.
	Path string `yaml:"path,omitempty"`
}

// EngineConfig holds configuration for the rating engine.
type EngineConfig struct {
	// K is the Elo K-factor applied to every update.
	K float64 `yaml:"k,omitempty"`
	// DefaultRating is the rating assigned to never-rated competitors.
	DefaultRating float64 `yaml:"default_rating,omitempty"`
}

// ResolverConfig holds configuration for identity resolution.
type ResolverConfig struct {
	// Thresholds maps a source name to the minimum fuzzy match score
	// (0-100) accepted for that source's names.
	Thresholds map[string]float64 `yaml:"thresholds,omitempty"`
}

// Default returns a Config with default values.
func Default() *Config {
	return &Config{
		Engine: EngineConfig{
			K:             30,
			DefaultRating: records.DefaultRating,
		},
		Resolver: ResolverConfig{
			Thresholds: map[string]float64{
				string(records.SourceStartGG):    97,
				string(records.SourceLiquipedia): 93,
			},
		},
	}
}

// Load loads configuration from the .circuitelo directory in the given path.
func Load(basePath string) (*Config, error) {
	configFile := ConfigFilePath(basePath)

	data, err := os.ReadFile(configFile)
	if os.IsNotExist(err) {
		return nil, fmt.Errorf("config file not found: %s (run 'circuitelo init' first)", configFile)
	}
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	// Start with defaults
	cfg := Default()

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvOverrides()

	return cfg, nil
}

// applyEnvOverrides applies environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if path := os.Getenv("CIRCUITELO_DB"); path != "" {
		c.SQLite.Path = path
	}
}

// SourceThresholds converts the configured thresholds to typed source keys.
func (c *Config) SourceThresholds() map[records.Source]float64 {
	thresholds := make(map[records.Source]float64, len(c.Resolver.Thresholds))
	for source, score := range c.Resolver.Thresholds {
		thresholds[records.Source(source)] = score
	}
	return thresholds
}

// DBPath returns the configured SQLite path, falling back to the default
// location under the config directory.
func (c *Config) DBPath(basePath string) string {
	if c.SQLite.Path != "" {
		return c.SQLite.Path
	}
	return filepath.Join(basePath, DefaultConfigDir, DefaultDBFile)
}

// ConfigDir returns the path to the .circuitelo config directory.
func ConfigDir(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir)
}

// ConfigFilePath returns the path to the config file.
func ConfigFilePath(basePath string) string {
	return filepath.Join(basePath, DefaultConfigDir, DefaultConfigFile)
}

// Exists checks if a circuitelo config exists in the given path.
func Exists(basePath string) bool {
	_, err := os.Stat(ConfigFilePath(basePath))
	return err == nil
}
