package config

import (
	"errors"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config stores all configuration for the application.
// The values are read by viper from a config file or environment variables.
type Config struct {
	Server   ServerConfig
	Sweeper  SweeperConfig
	Database DatabaseConfig
	Auth     AuthConfig
}

// ServerConfig defines the HTTP server settings.
type ServerConfig struct {
	Port int
}

// SweeperConfig defines the expiration sweeper settings. The interval is a
// tunable, not a correctness parameter.
type SweeperConfig struct {
	IntervalSeconds int `mapstructure:"interval_seconds"`
}

// Interval returns the sweep interval as a duration.
func (c SweeperConfig) Interval() time.Duration {
	return time.Duration(c.IntervalSeconds) * time.Second
}

// DatabaseConfig defines the listing/bid store settings. Driver selects
// between the in-memory store ("memory") and postgres.
type DatabaseConfig struct {
	Driver   string
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// AuthConfig defines identity seeding for the static resolver.
type AuthConfig struct {
	AdminToken string `mapstructure:"admin_token"`
}

// LoadConfig reads configuration from file or environment variables.
// A missing config file is not an error: defaults and env apply.
func LoadConfig(path string) (config Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")

	viper.SetDefault("server.port", 8080)
	viper.SetDefault("sweeper.interval_seconds", 5)
	viper.SetDefault("database.driver", "memory")
	viper.SetDefault("auth.admin_token", "admin-token")

	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	err = viper.ReadInConfig()
	if err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return
		}
		err = nil
	}

	err = viper.Unmarshal(&config)
	return
}
