// Package config loads the simulation parameters that drive a cascadesim
// run: tick budget, health threshold, propagation rate, RNG seed, and
// recovery behavior.
package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config represents the simulation configuration.
type Config struct {
	Ticks     int     `yaml:"ticks"`
	Threshold float64 `yaml:"threshold"`
	Alpha     float64 `yaml:"alpha"`
	Seed      int64   `yaml:"seed"`
	// Cooldown is a pointer so an absent key in YAML is distinguishable
	// from an explicit "cooldown: 0" (instant recovery).
	Cooldown *int    `yaml:"cooldown"`
	HealTo   float64 `yaml:"heal_to"`

	Logging LoggingConfig `yaml:"logging"`
}

// LoggingConfig contains structured-logger settings.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// DefaultConfig returns the simulation defaults from spec.md's parameter table.
func DefaultConfig() *Config {
	return &Config{
		Ticks:     100,
		Threshold: 0.7,
		Alpha:     0.3,
		Seed:      42,
		HealTo:    1.0,
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Load reads configuration from a YAML file, falling back to defaults for
// any field the file omits. A missing path returns DefaultConfig() as-is.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()

	if path == "" {
		return cfg, nil
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		return cfg, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file: %w", err)
	}

	expanded := []byte(os.ExpandEnv(string(data)))
	if err := yaml.Unmarshal(expanded, cfg); err != nil {
		return nil, fmt.Errorf("config: parse file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Save writes configuration to a YAML file.
func (c *Config) Save(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("config: marshal: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("config: write file: %w", err)
	}
	return nil
}

// Validate checks that the configuration describes a runnable simulation.
func (c *Config) Validate() error {
	if c.Ticks < 1 {
		return fmt.Errorf("ticks must be at least 1")
	}
	if c.Threshold < 0 || c.Threshold > 1 {
		return fmt.Errorf("threshold must be in [0, 1]")
	}
	if c.Alpha < 0 {
		return fmt.Errorf("alpha must be non-negative")
	}
	if c.Cooldown != nil && *c.Cooldown < 0 {
		return fmt.Errorf("cooldown must be non-negative")
	}
	if c.HealTo < 0 || c.HealTo > 1 {
		return fmt.Errorf("heal_to must be in [0, 1]")
	}
	return nil
}

// CooldownTicks returns the configured cooldown length. It returns 0 when
// the config omitted the key, but that 0 is not meaningful on its own:
// the simulator only arms a recovery timer when Cooldown is non-nil
// (see Cooldown's doc comment), so an omitted cooldown disables recovery
// rather than healing instantly.
func (c *Config) CooldownTicks() int {
	if c.Cooldown == nil {
		return 0
	}
	return *c.Cooldown
}
