package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// Load configuration from environment variables and optionally a config file.
// Environment variables take precedence over values from config files.
// Returns a populated Config struct or an error if loading/validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Defaults keep the binary runnable with nothing but a database URL set.
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.log_level", "info")
	// Registering the key with an empty default lets AutomaticEnv bind
	// KANBAN_DATABASE_URL during Unmarshal; validation rejects the empty value.
	v.SetDefault("database.url", "")
	v.SetDefault("scheduler.tick_interval_seconds", 60)
	v.SetDefault("scheduler.max_catchup", 30)
	v.SetDefault("cache.enabled", false)
	v.SetDefault("cache.addr", "")

	// Optional config file in the working directory: config.yaml
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// No config file is fine; environment variables carry the settings.
	}

	// Environment variables use the KANBAN_ prefix with underscores,
	// e.g. KANBAN_DATABASE_URL, KANBAN_SCHEDULER_MAX_CATCHUP.
	v.SetEnvPrefix("KANBAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}
