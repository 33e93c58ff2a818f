// Package config reads the server settings from the environment.
package config

import (
	"os"
	"strconv"
	"time"
)

// Config holds all configuration for the bookshelf server.
type Config struct {
	// Server settings
	Port            string
	ShutdownTimeout time.Duration

	// Logging
	LogLevel string

	// GraphQL
	PersistedQueryTTL time.Duration
	LoaderWait        time.Duration
	SubscriberBuffer  int

	// Event export; KafkaBroker empty disables it.
	KafkaBroker string
	KafkaTopic  string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "4000"),
		ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),

		LogLevel: getEnv("LOG_LEVEL", "info"),

		PersistedQueryTTL: getEnvDuration("APQ_CACHE_TTL", 24*time.Hour),
		LoaderWait:        getEnvDuration("LOADER_WAIT", 2*time.Millisecond),
		SubscriberBuffer:  getEnvInt("SUBSCRIBER_BUFFER", 16),

		KafkaBroker: getEnv("KAFKA_BROKER", ""),
		KafkaTopic:  getEnv("KAFKA_TOPIC", "books.added"),
	}
}

// Addr is the listen address for the HTTP server.
func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if parsed, err := time.ParseDuration(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
