package config

import (
	"time"
)

// Config represents the entire configuration for the pickup assignment tool
type Config struct {
	PoolSize  int               `yaml:"poolSize" env:"POOL_SIZE"`
	Cooldown  time.Duration     `yaml:"cooldown" env:"COOLDOWN"`
	Baseline  Baseline          `yaml:"baseline" env:"BASELINE"`
	Strategy  string            `yaml:"strategy" env:"STRATEGY"`
	Sheet     string            `yaml:"sheet" env:"SHEET"`
	Columns   Columns           `yaml:"columns" envPrefix:"COLUMN_"`
	Recurring []RecurringPickup `yaml:"recurring" envPrefix:"RECURRING_"`
	Server    Server            `yaml:"server" envPrefix:"SERVER_"`
	Logging   Logging           `yaml:"logging" envPrefix:"LOG_"`
}

// Columns names the header cells holding each job field
type Columns struct {
	Date     string `yaml:"date" env:"DATE"`
	Time     string `yaml:"time" env:"TIME"`
	Location string `yaml:"location" env:"LOCATION"`
}

// RecurringPickup is a standing pickup expanded onto every matching target date
type RecurringPickup struct {
	Location string `yaml:"location" env:"LOCATION"`
	Schedule string `yaml:"schedule" env:"SCHEDULE"`
}

// Server holds the settings of the HTTP service
type Server struct {
	Addr            string        `yaml:"addr" env:"ADDR"`
	MaxUploadBytes  int64         `yaml:"maxUploadBytes" env:"MAX_UPLOAD_BYTES"`
	ReadTimeout     time.Duration `yaml:"readTimeout" env:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"writeTimeout" env:"WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `yaml:"shutdownTimeout" env:"SHUTDOWN_TIMEOUT"`
}

// Logging controls the diagnostic log output
type Logging struct {
	Level  string `yaml:"level" env:"LEVEL"`
	Format string `yaml:"format" env:"FORMAT"`
}

// Baseline defines what a driver's availability looks like before the first assignment
type Baseline string

const (
	// BaselineUnconstrained treats a never-assigned driver as always available
	BaselineUnconstrained Baseline = "unconstrained"
	// BaselineRunStart pretends every driver was assigned at the instant the run started
	BaselineRunStart Baseline = "run-start"
)

const (
	DefaultPoolSize = 35
	DefaultCooldown = 3 * time.Hour
	DefaultStrategy = "first-fit"

	DefaultDateColumn     = "Pick-up Date"
	DefaultTimeColumn     = "PU Time"
	DefaultLocationColumn = "PU Airport"

	DefaultAddr = ":8080"
)

// Default returns the configuration used when no file is given
func Default() *Config {
	return &Config{
		PoolSize: DefaultPoolSize,
		Cooldown: DefaultCooldown,
		Baseline: BaselineUnconstrained,
		Strategy: DefaultStrategy,
		Columns: Columns{
			Date:     DefaultDateColumn,
			Time:     DefaultTimeColumn,
			Location: DefaultLocationColumn,
		},
		Server: Server{
			Addr:            DefaultAddr,
			MaxUploadBytes:  10 << 20,
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    15 * time.Second,
			ShutdownTimeout: 10 * time.Second,
		},
		Logging: Logging{
			Level:  "info",
			Format: "json",
		},
	}
}
