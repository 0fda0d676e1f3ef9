// Package config handles layered YAML configuration with environment overrides.
package config

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all uservet configuration.
type Config struct {
	Target Target `yaml:"target"`
	Run    Run    `yaml:"run"`
}

// Target describes the endpoint under test.
type Target struct {
	BaseURL    string        `yaml:"base_url"`
	RollNumber string        `yaml:"roll_number"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Run holds check execution settings.
type Run struct {
	FailureMode string `yaml:"failure_mode"` // "abort" | "continue"
}

// DefaultConfig returns a Config with sensible defaults.
func DefaultConfig() Config {
	return Config{
		Target: Target{
			BaseURL:    "https://automation.goview.me/create/user",
			RollNumber: "2",
			Timeout:    15 * time.Second,
		},
		Run: Run{
			FailureMode: "abort",
		},
	}
}

// Load reads a single YAML config file at path and returns a Config.
// For merging multiple config sources, use LoadLayered instead.
// If the file does not exist, defaults are returned without error.
// If the file contains invalid YAML or unknown fields, an error is returned.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return &cfg, nil
	}

	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		// Comment-only YAML files produce EOF with no decoded content.
		if errors.Is(err, io.EOF) {
			return &cfg, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &cfg, nil
}

// LoadLayered loads config from multiple paths with increasing priority.
// Later paths override earlier ones. Missing files are skipped.
func LoadLayered(paths ...string) (*Config, error) {
	cfg := DefaultConfig()

	for _, path := range paths {
		layer, err := loadLayer(path)
		if err != nil {
			return nil, err
		}
		if layer == nil {
			continue
		}
		cfg.merge(layer)
	}

	return &cfg, nil
}

// Validate checks that config values are usable.
func (c *Config) Validate() error {
	if c.Target.BaseURL == "" {
		return errors.New("config: target.base_url cannot be empty")
	}
	u, err := url.Parse(c.Target.BaseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("config: target.base_url %q is not an absolute URL", c.Target.BaseURL)
	}
	if c.Target.RollNumber == "" {
		return errors.New("config: target.roll_number cannot be empty")
	}
	if c.Target.Timeout <= 0 {
		return fmt.Errorf("config: target.timeout must be positive, got %v", c.Target.Timeout)
	}
	switch c.Run.FailureMode {
	case "", "abort", "continue":
		// valid
	default:
		return fmt.Errorf("config: run.failure_mode must be \"abort\" or \"continue\", got %q", c.Run.FailureMode)
	}
	return nil
}

// ApplyEnv applies environment variable overrides to the config.
// Supported variables: USERVET_BASE_URL, USERVET_ROLL_NUMBER, USERVET_TIMEOUT,
// USERVET_FAILURE_MODE.
func (c *Config) ApplyEnv() error {
	if v := os.Getenv("USERVET_BASE_URL"); v != "" {
		c.Target.BaseURL = v
	}
	if v := os.Getenv("USERVET_ROLL_NUMBER"); v != "" {
		c.Target.RollNumber = v
	}
	if v := os.Getenv("USERVET_TIMEOUT"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("config: invalid USERVET_TIMEOUT %q: %w", v, err)
		}
		c.Target.Timeout = d
	}
	if v := os.Getenv("USERVET_FAILURE_MODE"); v != "" {
		c.Run.FailureMode = v
	}
	return nil
}

// rawConfig mirrors Config but uses pointers to distinguish set vs unset fields.
type rawConfig struct {
	Target *rawTarget `yaml:"target"`
	Run    *rawRun    `yaml:"run"`
}

type rawTarget struct {
	BaseURL    *string        `yaml:"base_url"`
	RollNumber *string        `yaml:"roll_number"`
	Timeout    *time.Duration `yaml:"timeout"`
}

type rawRun struct {
	FailureMode *string `yaml:"failure_mode"`
}

// loadLayer reads a single config file into a rawConfig for selective merging.
// Returns nil if the file does not exist. Rejects unknown fields.
func loadLayer(path string) (*rawConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: reading %s: %w", path, err)
	}

	if len(data) == 0 {
		return nil, nil
	}

	var raw rawConfig
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&raw); err != nil {
		if errors.Is(err, io.EOF) {
			return nil, nil
		}
		return nil, fmt.Errorf("config: parsing %s: %w", path, err)
	}

	return &raw, nil
}

// merge applies non-nil fields from a rawConfig layer onto this Config.
func (c *Config) merge(layer *rawConfig) {
	if layer.Target != nil {
		if layer.Target.BaseURL != nil {
			c.Target.BaseURL = *layer.Target.BaseURL
		}
		if layer.Target.RollNumber != nil {
			c.Target.RollNumber = *layer.Target.RollNumber
		}
		if layer.Target.Timeout != nil {
			c.Target.Timeout = *layer.Target.Timeout
		}
	}
	if layer.Run != nil {
		if layer.Run.FailureMode != nil {
			c.Run.FailureMode = *layer.Run.FailureMode
		}
	}
}
