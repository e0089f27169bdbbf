// Package config loads and validates the raceday configuration file.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"

	"raceday/internal/race"
)

// DefaultDelay is used when a participant's delay is missing or unparsable.
const DefaultDelay = 500 * time.Millisecond

// Config holds all raceday configuration.
type Config struct {
	Race    RaceConfig    `yaml:"race"`
	UI      UIConfig      `yaml:"ui"`
	Logging LoggingConfig `yaml:"logging"`
}

// RaceConfig configures the participants of the race.
type RaceConfig struct {
	Participants []ParticipantConfig `yaml:"participants"`
}

// ParticipantConfig configures a single participant.
type ParticipantConfig struct {
	Name            string `yaml:"name"`
	MaxProgress     int    `yaml:"max_progress"`
	Increment       int    `yaml:"increment"`
	Delay           string `yaml:"delay"`
	InitialProgress int    `yaml:"initial_progress"`
}

// UIConfig configures the terminal UI.
type UIConfig struct {
	Theme string `yaml:"theme"` // auto, dark, light
}

// LoggingConfig configures logging.
type LoggingConfig struct {
	Level  string `yaml:"level"`  // debug, info, warn, error
	Format string `yaml:"format"` // json, text
	File   string `yaml:"file"`
}

// DefaultConfig returns the default configuration: two participants racing
// to 100 with unequal increments.
func DefaultConfig() *Config {
	return &Config{
		Race: RaceConfig{
			Participants: []ParticipantConfig{
				{Name: "Player 1", MaxProgress: 100, Increment: 1, Delay: "500ms"},
				{Name: "Player 2", MaxProgress: 100, Increment: 2, Delay: "500ms"},
			},
		},
		UI: UIConfig{
			Theme: "auto",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			File:   "raceday.log",
		},
	}
}

// Load loads configuration from a YAML file. A missing file yields the
// defaults.
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

// Save saves configuration to a YAML file, creating parent directories.
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
	if level := os.Getenv("RACEDAY_LOG_LEVEL"); level != "" {
		c.Logging.Level = level
	}
	if file := os.Getenv("RACEDAY_LOG_FILE"); file != "" {
		c.Logging.File = file
	}
	if theme := os.Getenv("RACEDAY_THEME"); theme != "" {
		c.UI.Theme = theme
	}
}

// GetDelay returns the participant's delay as a duration, falling back to
// DefaultDelay when unset or unparsable.
func (p ParticipantConfig) GetDelay() time.Duration {
	d, err := time.ParseDuration(p.Delay)
	if err != nil || d <= 0 {
		return DefaultDelay
	}
	return d
}

// Validate checks the configuration before the UI starts, so bad values are
// reported on stderr instead of inside the race screen.
func (c *Config) Validate() error {
	if len(c.Race.Participants) == 0 {
		return errors.New("config: at least one participant required")
	}
	if _, err := c.Participants(); err != nil {
		return err
	}
	switch c.UI.Theme {
	case "", "auto", "dark", "light":
	default:
		return fmt.Errorf("config: unknown theme %q (want auto, dark, or light)", c.UI.Theme)
	}
	return nil
}

// Participants builds the domain participants from the configuration.
func (c *Config) Participants() ([]*race.Participant, error) {
	participants := make([]*race.Participant, 0, len(c.Race.Participants))
	for i, pc := range c.Race.Participants {
		name := pc.Name
		if name == "" {
			name = fmt.Sprintf("Player %d", i+1)
		}
		p, err := race.NewParticipant(name, pc.MaxProgress, pc.Increment, pc.GetDelay(), pc.InitialProgress)
		if err != nil {
			return nil, fmt.Errorf("config: %w", err)
		}
		participants = append(participants, p)
	}
	return participants, nil
}
