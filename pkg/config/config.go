// Package config provides configuration loading and management for cubeinspector.
// It handles loading configuration from YAML files and provides default values.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"cubeinspector/internal/models"
)

// Config represents the application configuration loaded from YAML
type Config struct {
	// False color band choices
	FalseColor struct {
		Blue  int `yaml:"blue"`
		Green int `yaml:"green"`
		Red   int `yaml:"red"`
	} `yaml:"falseColor"`

	// Spectral filter used by spectral angle mapping
	SpectralFilter struct {
		// Min and Max bound the initial filter [Min, Max); Max <= 0 means all bands
		Min int `yaml:"min"`
		Max int `yaml:"max"`

		// Step is how many bands one shift moves the filter
		Step int `yaml:"step"`
	} `yaml:"spectralFilter"`

	// Initial spectral angle toggles
	Inspector struct {
		UseRadians  bool `yaml:"useRadians"`
		UseCentered bool `yaml:"useCentered"`
	} `yaml:"inspector"`

	// Display output parameters
	Display struct {
		// OutputDir receives one image file per panel
		OutputDir string `yaml:"outputDir"`

		// Format is "png" or "jpeg"
		Format string `yaml:"format"`

		// Quality is the JPEG quality
		Quality int `yaml:"quality"`

		// Scale enlarges cube panels by an integer factor
		Scale int `yaml:"scale"`

		PlotWidth  int `yaml:"plotWidth"`
		PlotHeight int `yaml:"plotHeight"`
	} `yaml:"display"`

	// Synthetic cube parameters used when no band directories are given
	Synthetic struct {
		Rows  int     `yaml:"rows"`
		Cols  int     `yaml:"cols"`
		Bands int     `yaml:"bands"`
		Smile float64 `yaml:"smile"`
		Noise float64 `yaml:"noise"`
		Seed  uint64  `yaml:"seed"`
	} `yaml:"synthetic"`

	Logging struct {
		// Level is one of debug, info, error
		Level string `yaml:"level"`
	} `yaml:"logging"`
}

// DefaultConfig returns a configuration with default values
func DefaultConfig() *Config {
	cfg := &Config{}

	// Bands commonly used for the Indian Pines scene
	cfg.FalseColor.Blue = 38
	cfg.FalseColor.Green = 29
	cfg.FalseColor.Red = 89

	cfg.SpectralFilter.Min = 0
	cfg.SpectralFilter.Max = 0
	cfg.SpectralFilter.Step = 5

	cfg.Display.OutputDir = "panels"
	cfg.Display.Format = "png"
	cfg.Display.Quality = 90
	cfg.Display.Scale = 4
	cfg.Display.PlotWidth = 640
	cfg.Display.PlotHeight = 400

	cfg.Synthetic.Rows = 64
	cfg.Synthetic.Cols = 96
	cfg.Synthetic.Bands = 120
	cfg.Synthetic.Smile = 2.5
	cfg.Synthetic.Noise = 0.01
	cfg.Synthetic.Seed = 1

	cfg.Logging.Level = "info"

	return cfg
}

// Settings extracts the reloadable inspector settings
func (c *Config) Settings() models.Settings {
	return models.Settings{
		BlueBand:   c.FalseColor.Blue,
		GreenBand:  c.FalseColor.Green,
		RedBand:    c.FalseColor.Red,
		FilterMin:  c.SpectralFilter.Min,
		FilterMax:  c.SpectralFilter.Max,
		FilterStep: c.SpectralFilter.Step,
	}
}

// LoadConfig loads configuration from a YAML file
// If the file doesn't exist, it returns the default configuration
func LoadConfig(configPath string) (*Config, error) {
	cfg := DefaultConfig()

	// Check if config file exists
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("error reading config file: %w", err)
	}

	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("error parsing config file: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves the configuration to a YAML file
func SaveConfig(cfg *Config, configPath string) error {
	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("error creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("error marshaling config: %w", err)
	}

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

// Source re-reads a configuration file every time settings are requested, so edits
// made while the inspector runs take effect on reset
type Source struct {
	Path string
}

// NewSource creates a settings source backed by the YAML file at path
func NewSource(path string) *Source {
	return &Source{Path: path}
}

// Settings loads the file and returns its inspector settings
func (s *Source) Settings() (models.Settings, error) {
	cfg, err := LoadConfig(s.Path)
	if err != nil {
		return models.Settings{}, err
	}
	return cfg.Settings(), nil
}
