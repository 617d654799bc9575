package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/menta2k/image-redactor/pkg/effects"
	"github.com/menta2k/image-redactor/pkg/processing"
	"github.com/menta2k/image-redactor/pkg/targets"
)

// Detection backends
const (
	BackendCompute  = "compute"
	BackendOllama   = "ollama"
	BackendLlamaCpp = "llamacpp"
	BackendNone     = "none"
)

// Config holds the application configuration
type Config struct {
	Effect    effects.Settings `json:"effect"`
	Detection DetectionConfig  `json:"detection"`
	Targets   TargetsConfig    `json:"targets"`
	Output    OutputConfig     `json:"output"`
}

// DetectionConfig selects and tunes the detection backend
type DetectionConfig struct {
	Backend     string  `json:"backend"`
	URL         string  `json:"url"`
	Model       string  `json:"model,omitempty"`
	Threshold   float64 `json:"threshold"`
	APIKey      string  `json:"api_key,omitempty"`
	SendFormat  string  `json:"send_format"`
	SendSize    int     `json:"send_size"`
	SendQuality int     `json:"send_quality"`
}

// TargetsConfig holds the initial target policy
type TargetsConfig struct {
	BlurMode      targets.BlurMode `json:"blur_mode"`
	EnabledGroups []string         `json:"enabled_groups"`
}

// OutputConfig holds configuration for output generation
type OutputConfig struct {
	Format    string `json:"format"`
	Quality   int    `json:"quality"`
	Lossless  bool   `json:"lossless"`
	OutputDir string `json:"output_dir"`
	Suffix    string `json:"suffix"`
}

// Default returns a configuration with default values
func Default() *Config {
	var enabled []string
	for _, g := range targets.DefaultGroups() {
		if g.Enabled {
			enabled = append(enabled, g.ID)
		}
	}
	return &Config{
		Effect: effects.DefaultSettings(),
		Detection: DetectionConfig{
			Backend:     BackendCompute,
			URL:         "http://localhost:8001",
			Threshold:   0.25,
			SendFormat:  "jpeg",
			SendSize:    1280,
			SendQuality: 90,
		},
		Targets: TargetsConfig{
			BlurMode:      targets.ModeAll,
			EnabledGroups: enabled,
		},
		Output: OutputConfig{
			Format:    "png",
			Quality:   95,
			OutputDir: "./output",
			Suffix:    "_redacted",
		},
	}
}

// LoadFromFile loads configuration from a JSON file. Fields missing from the
// file keep their default values.
func LoadFromFile(filename string) (*Config, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	config := Default()
	if err := json.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	return config, nil
}

// SaveToFile saves configuration to a JSON file
func (c *Config) SaveToFile(filename string) error {
	// Create directory if it doesn't exist
	dir := filepath.Dir(filename)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(filename, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if err := c.Effect.Validate(); err != nil {
		return fmt.Errorf("effect: %w", err)
	}

	switch c.Detection.Backend {
	case BackendCompute, BackendOllama, BackendLlamaCpp, BackendNone:
	default:
		return fmt.Errorf("detection.backend must be one of compute, ollama, llamacpp, none")
	}

	if c.Detection.Threshold < 0 || c.Detection.Threshold > 1 {
		return fmt.Errorf("detection.threshold must be between 0 and 1")
	}

	if c.Detection.SendFormat != "jpeg" && c.Detection.SendFormat != "png" {
		return fmt.Errorf("detection.send_format must be jpeg or png")
	}

	if c.Detection.SendSize < 0 {
		return fmt.Errorf("detection.send_size cannot be negative")
	}

	if c.Detection.SendQuality < 1 || c.Detection.SendQuality > 100 {
		return fmt.Errorf("detection.send_quality must be between 1 and 100")
	}

	if _, err := targets.ParseBlurMode(string(c.Targets.BlurMode)); err != nil {
		return fmt.Errorf("targets.blur_mode: %w", err)
	}

	if unknown := targets.EnableOnly(targets.DefaultGroups(), c.Targets.EnabledGroups); len(unknown) > 0 {
		return fmt.Errorf("targets.enabled_groups: unknown groups %v", unknown)
	}

	if _, err := processing.NormalizeFormat(c.Output.Format); err != nil {
		return fmt.Errorf("output.format: %w", err)
	}

	if c.Output.Quality < 1 || c.Output.Quality > 100 {
		return fmt.Errorf("output.quality must be between 1 and 100")
	}

	return nil
}

// Groups returns the default body part groups with EnabledGroups applied
func (c *Config) Groups() []targets.BodyPartGroup {
	groups := targets.DefaultGroups()
	targets.EnableOnly(groups, c.Targets.EnabledGroups)
	return groups
}

// GetConfigPath returns the default configuration file path
func GetConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "./config.json"
	}
	return filepath.Join(home, ".config", "image-redactor", "config.json")
}
