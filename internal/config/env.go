// Package config reads runtime settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

const (
	DefaultAPIBase    = "http://localhost:5000/api"
	DefaultAPITimeout = 30 * time.Second
)

// Settings holds the backend client settings used by the desktop app
type Settings struct {
	APIBase       string
	APIToken      string
	APITimeout    time.Duration
	APIRetryCount int
}

// Load reads Settings from the environment with defaults applied
func Load() Settings {
	return Settings{
		APIBase:       GetEnv("JOBPROMPTER_API_BASE", DefaultAPIBase),
		APIToken:      os.Getenv("JOBPROMPTER_API_TOKEN"),
		APITimeout:    GetEnvDuration("API_TIMEOUT", DefaultAPITimeout),
		APIRetryCount: GetEnvInt("API_RETRY_COUNT", 0),
	}
}

// GetEnv retrieves a string from environment variable with default fallback
func GetEnv(key, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultValue
}

// GetEnvInt retrieves an integer from environment variable with default fallback
func GetEnvInt(key string, defaultValue int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultValue
}

// GetEnvDuration retrieves a duration from environment variable with default fallback
func GetEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if duration, err := time.ParseDuration(val); err == nil {
			return duration
		}
	}
	return defaultValue
}
