/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"

	"github.com/ssargent/fsbx/pkg/logging"
)

// Config represents the fsbx configuration
type Config struct {
	Extract Extract `yaml:"extract"`
	Logging Logging `yaml:"logging"`
	Metrics Metrics `yaml:"metrics"`
}

// Extract contains the defaults for the extract command
type Extract struct {
	OutputDir       string `yaml:"output_dir"`
	Workers         int    `yaml:"workers"`
	Overwrite       bool   `yaml:"overwrite"`
	DryRun          bool   `yaml:"dry_run"`
	RestoreMetadata bool   `yaml:"restore_metadata"`
	StrictPaths     bool   `yaml:"strict_paths"`
}

// Logging contains logging configuration
type Logging struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Metrics contains metrics export configuration
type Metrics struct {
	// TextfilePath receives a Prometheus text exposition after each run when set.
	TextfilePath string `yaml:"textfile_path"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		Extract: Extract{
			OutputDir:       ".",
			Workers:         runtime.NumCPU(),
			RestoreMetadata: true,
		},
		Logging: Logging{
			Level:  "info",
			Format: logging.FormatPlain,
		},
	}
}

// Validate checks values that cannot be corrected silently
func (c *Config) Validate() error {
	if c.Extract.Workers < 1 {
		return fmt.Errorf("extract.workers must be at least 1, got %d", c.Extract.Workers)
	}
	if c.Extract.OutputDir == "" {
		return fmt.Errorf("extract.output_dir must not be empty")
	}
	if err := logging.Validate(c.Logging.Format, c.Logging.Level); err != nil {
		return fmt.Errorf("invalid logging config: %w", err)
	}
	return nil
}

// LoadConfig loads configuration from the specified path. Keys missing from
// the file keep their default values.
func LoadConfig(configPath string) (*Config, error) {
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return nil, fmt.Errorf("config file does not exist: %s", configPath)
	}

	if !filepath.IsAbs(configPath) {
		absPath, err := filepath.Abs(configPath)
		if err != nil {
			return nil, fmt.Errorf("invalid config path: %w", err)
		}
		configPath = absPath
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := DefaultConfig()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return config, nil
}

// SaveConfig writes the configuration to the specified path
func SaveConfig(config *Config, configPath string) error {
	configDir := filepath.Dir(configPath)
	if err := os.MkdirAll(configDir, 0750); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := yaml.Marshal(config)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// BootstrapConfig writes a default configuration to configPath unless a file
// already exists there and force is false.
func BootstrapConfig(configPath string, force bool) (*Config, error) {
	if ConfigExists(configPath) && !force {
		return nil, fmt.Errorf("config file already exists: %s", configPath)
	}

	config := DefaultConfig()
	if err := SaveConfig(config, configPath); err != nil {
		return nil, fmt.Errorf("failed to save bootstrap config: %w", err)
	}

	return config, nil
}

// GetDefaultConfigPath returns the default configuration path for the current platform
func GetDefaultConfigPath() string {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "./fsbx.yaml"
	}

	// For Linux/macOS, use ~/.config/fsbx/config.yaml
	configDir := filepath.Join(homeDir, ".config", "fsbx")
	return filepath.Join(configDir, "config.yaml")
}

// ConfigExists checks if a configuration file exists
func ConfigExists(configPath string) bool {
	_, err := os.Stat(configPath)
	return !os.IsNotExist(err)
}
