// Package config handles loading and validating application configuration.
package config

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database" validate:"required"`
	Scheduler SchedulerConfig `mapstructure:"scheduler" validate:"required"`
	Cache     CacheConfig     `mapstructure:"cache"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port     int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL string `mapstructure:"url" validate:"required"`
}

// SchedulerConfig contains the recurrence scheduler settings.
// TickIntervalSeconds is how often the scheduler polls for due templates.
// MaxCatchUp bounds how many missed occurrences one template may synthesize
// in a single tick; a template still behind after that many resumes on the
// next tick.
type SchedulerConfig struct {
	TickIntervalSeconds int `mapstructure:"tick_interval_seconds" validate:"required,gt=0"`
	MaxCatchUp          int `mapstructure:"max_catchup"           validate:"required,gt=0"`
}

// CacheConfig contains the Redis cache invalidation settings. When Enabled is
// false the application runs with a no-op invalidator.
type CacheConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr" validate:"required_if=Enabled true"`
}
