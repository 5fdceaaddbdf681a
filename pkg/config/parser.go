package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/caarlos0/env/v11"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"
)

// EnvPrefix is prepended to every environment override
const EnvPrefix = "PICKUPS_"

var strategies = []string{"first-fit", "least-recent", "least-loaded"}

// LoadConfig loads and parses the configuration file.
// An empty filename yields the defaults with environment overrides applied.
func LoadConfig(filename string) (*Config, error) {
	config := Default()

	if filename != "" {
		data, err := os.ReadFile(filename)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}

		if err := yaml.Unmarshal(data, config); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}

	if err := applyEnv(config); err != nil {
		return nil, fmt.Errorf("failed to apply environment overrides: %w", err)
	}

	// Validate configuration
	if err := validateConfig(config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

// LoadOptional behaves like LoadConfig but falls back to the defaults
// when filename does not exist.
func LoadOptional(filename string) (*Config, error) {
	if filename != "" {
		if _, err := os.Stat(filename); errors.Is(err, os.ErrNotExist) {
			filename = ""
		}
	}
	return LoadConfig(filename)
}

// applyEnv overrides fields with PICKUPS_* variables that are set
func applyEnv(config *Config) error {
	err := env.ParseWithOptions(config, env.Options{Prefix: EnvPrefix})
	if err == nil {
		return nil
	}
	var aggErr env.AggregateError
	if errors.As(err, &aggErr) && len(aggErr.Errors) > 0 {
		// the first error is enough to point at the bad variable
		return aggErr.Errors[0]
	}
	return err
}

// Validate checks a configuration assembled outside LoadConfig
func Validate(config *Config) error {
	return validateConfig(config)
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.PoolSize < 0 {
		return fmt.Errorf("poolSize must not be negative")
	}

	if config.Cooldown < 0 {
		return fmt.Errorf("cooldown must not be negative")
	}

	if config.Baseline != BaselineUnconstrained && config.Baseline != BaselineRunStart {
		return fmt.Errorf("baseline must be either '%s' or '%s'", BaselineUnconstrained, BaselineRunStart)
	}

	if !isKnownStrategy(config.Strategy) {
		return fmt.Errorf("strategy must be one of %s", strings.Join(strategies, ", "))
	}

	if strings.TrimSpace(config.Columns.Date) == "" || strings.TrimSpace(config.Columns.Time) == "" || strings.TrimSpace(config.Columns.Location) == "" {
		return fmt.Errorf("columns.date, columns.time and columns.location are required")
	}

	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	for i, pickup := range config.Recurring {
		if strings.TrimSpace(pickup.Location) == "" {
			return fmt.Errorf("recurring pickup %d: location is required", i)
		}

		if pickup.Schedule == "" {
			return fmt.Errorf("recurring pickup %s: schedule is required", pickup.Location)
		}

		if _, err := parser.Parse(pickup.Schedule); err != nil {
			return fmt.Errorf("recurring pickup %s: invalid schedule %q: %w", pickup.Location, pickup.Schedule, err)
		}
	}

	if config.Server.MaxUploadBytes <= 0 {
		return fmt.Errorf("server.maxUploadBytes must be greater than 0")
	}

	if config.Server.ReadTimeout <= 0 || config.Server.WriteTimeout <= 0 || config.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("server timeouts must be greater than 0")
	}

	if _, err := zerolog.ParseLevel(config.Logging.Level); err != nil {
		return fmt.Errorf("logging.level: %w", err)
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("logging.format must be either 'json' or 'console'")
	}

	return nil
}

func isKnownStrategy(name string) bool {
	for _, s := range strategies {
		if s == name {
			return true
		}
	}
	return false
}
