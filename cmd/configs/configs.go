package configs

import (
	"errors"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	ServerPort             string        `mapstructure:"SERVER_PORT"`
	LogLevel               string        `mapstructure:"LOG_LEVEL"`
	LockoutMaxAttempts     int           `mapstructure:"LOCKOUT_MAX_ATTEMPTS"`
	LockoutDuration        time.Duration `mapstructure:"LOCKOUT_DURATION"`
	LockoutCleanupInterval time.Duration `mapstructure:"LOCKOUT_CLEANUP_INTERVAL"`
	LockoutTTL             time.Duration `mapstructure:"LOCKOUT_TTL"`
	LockoutStore           string        `mapstructure:"LOCKOUT_STORE"`
	LockoutRedisAddr       string        `mapstructure:"LOCKOUT_REDIS_ADDR"`
}

var defaults = map[string]any{
	"SERVER_PORT":              "8080",
	"LOG_LEVEL":                "info",
	"LOCKOUT_MAX_ATTEMPTS":     5,
	"LOCKOUT_DURATION":         "15m",
	"LOCKOUT_CLEANUP_INTERVAL": "1m",
	"LOCKOUT_TTL":              "0s",
	"LOCKOUT_STORE":            "memory",
	"LOCKOUT_REDIS_ADDR":       "localhost:6379",
}

// LoadConfig reads path/.env when present; environment variables win over it.
func LoadConfig(path string) (*Config, error) {
	var config *Config

	v := viper.New()
	v.SetConfigType("env")
	v.SetConfigFile(filepath.Join(path, ".env"))
	v.AutomaticEnv()

	for key, value := range defaults {
		v.SetDefault(key, value)
		v.BindEnv(key)
	}

	if err := v.ReadInConfig(); err != nil {
		var pathErr *fs.PathError
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &pathErr) && !errors.As(err, &notFound) {
			return nil, err
		}
	}

	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return config, nil
}
