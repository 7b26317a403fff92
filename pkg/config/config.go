// Package config provides configuration loading and management for the
// bend quantification pipeline. It handles loading per-case configuration
// from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config represents the per-case analysis configuration loaded from YAML
type Config struct {
	// Grid parameters for the (alpha, beta) sweep
	Grid struct {
		// N is the number of samples per axis of the sweep grid
		N int `yaml:"n"`

		// AlphaMin, AlphaMax bound the vertical deformation factor
		AlphaMin float64 `yaml:"alphaMin"`
		AlphaMax float64 `yaml:"alphaMax"`

		// BetaMin, BetaMax bound the horizontal deformation factor
		BetaMin float64 `yaml:"betaMin"`
		BetaMax float64 `yaml:"betaMax"`
	} `yaml:"grid"`

	// Methods selects the estimation strategies
	Methods struct {
		// Curvature is one of disc | knotfree | vmtkfactor | vmtkit | spline
		Curvature string `yaml:"curvature"`

		// Angle is one of plane | itplane | itplane_clip | maxcurv | smooth |
		// discrete | frac | odrline | MISR | maxdist
		Angle string `yaml:"angle"`

		// ODRLimit is the odrline stopping rule: cumulative | sd
		ODRLimit string `yaml:"odrLimit"`

		// Projected computes 2D angles by zeroing the first coordinate axis
		Projected bool `yaml:"projected"`
	} `yaml:"methods"`

	// Deformation parameters
	Deformation struct {
		// Eye marks cases with an ophthalmic artery branch near the first
		// landmark
		Eye bool `yaml:"eye"`

		// EyeClipOffset is the inward clip of the displaced region for eye
		// cases, in points
		EyeClipOffset int `yaml:"eyeClipOffset"`
	} `yaml:"deformation"`

	// Smoothing parameters
	Smoothing struct {
		// Sigma is the Gaussian post-filter width applied to curvature
		// arrays before peak extraction
		Sigma float64 `yaml:"sigma"`

		// Margin is the boundary exclusion margin of the curvature peak, in
		// points
		Margin int `yaml:"margin"`
	} `yaml:"smoothing"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Set default grid parameters
	cfg.Grid.N = 50
	cfg.Grid.AlphaMin = -1.0
	cfg.Grid.AlphaMax = 1.0
	cfg.Grid.BetaMin = -1.0
	cfg.Grid.BetaMax = 1.0

	// Set default method selectors
	cfg.Methods.Curvature = "disc"
	cfg.Methods.Angle = "plane"
	cfg.Methods.ODRLimit = "cumulative"
	cfg.Methods.Projected = false

	// Set default deformation parameters
	cfg.Deformation.Eye = false
	cfg.Deformation.EyeClipOffset = 10

	// Set default smoothing parameters
	cfg.Smoothing.Sigma = 5.0
	cfg.Smoothing.Margin = 10

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
