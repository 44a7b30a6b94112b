// Package config provides configuration loading and management for astrocube.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"gopkg.in/yaml.v3"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// Noise estimation parameters
	Noise struct {
		// Iterations is the number of MAD passes per spectrum
		Iterations int `yaml:"iterations"`

		// SignalThreshold is the sigma-clipping level applied between passes
		SignalThreshold float64 `yaml:"signalThreshold"`

		// Workers specifies how many goroutines share the spatial positions
		Workers int `yaml:"workers"`
	} `yaml:"noise"`

	// Coordinate formatting parameters
	Coords struct {
		// RAFormat renders right ascension as "deg", "hms" or "dms"
		RAFormat string `yaml:"raFormat"`

		// DecFormat renders declination as "deg", "hms" or "dms"
		DecFormat string `yaml:"decFormat"`

		// Decimals is the number of digits after the decimal point
		Decimals int `yaml:"decimals"`
	} `yaml:"coords"`

	// Output parameters
	Output struct {
		// NoiseMapFile is where the CLI writes the noise map as CSV;
		// empty disables the export
		NoiseMapFile string `yaml:"noiseMapFile"`

		// Verbose controls the level of logging output
		Verbose bool `yaml:"verbose"`
	} `yaml:"output"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default noise estimation parameters
	cfg.Noise.Iterations = 3
	cfg.Noise.SignalThreshold = 4
	cfg.Noise.Workers = runtime.NumCPU() // Use all available cores by default

	// Set default coordinate formatting
	cfg.Coords.RAFormat = "hms"
	cfg.Coords.DecFormat = "dms"
	cfg.Coords.Decimals = 2

	// Set default output parameters
	cfg.Output.NoiseMapFile = ""
	cfg.Output.Verbose = true

	return cfg
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	// Read config file
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	// Parse YAML
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	// Marshal config to YAML
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

	// Write to file
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("error writing config file: %w", err)
	}

	return nil
}

// CreateDefaultConfigFile creates a default configuration file at the specified path
func CreateDefaultConfigFile(configPath string) error {
	cfg := DefaultConfig()
	return SaveConfig(cfg, configPath)
}
