// Package config loads revisit settings from defaults, an optional config
// file, a .env file, and REVISIT_* environment variables.
package config

import "time"

// Config holds all application configuration.
type Config struct {
	Backend      string       `mapstructure:"backend" validate:"required,oneof=sqlite json"`
	Path         string       `mapstructure:"path" validate:"required"`
	LogLevel     string       `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	UpcomingDays int          `mapstructure:"upcoming_days" validate:"gte=1,lte=365"`
	Remind       RemindConfig `mapstructure:"remind"`
}

// RemindConfig controls the periodic due-topic poller.
type RemindConfig struct {
	Every       time.Duration `mapstructure:"every" validate:"gte=1s"`
	WindowStart int           `mapstructure:"window_start" validate:"gte=0,lte=23"`
	WindowEnd   int           `mapstructure:"window_end" validate:"gte=0,lte=23,gtefield=WindowStart"`
}
