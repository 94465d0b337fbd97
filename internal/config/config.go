// Package config provides configuration for the orchestrator.
package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the orchestrator configuration.
type Config struct {
	// Server settings
	HTTPPort int

	// Database
	DatabaseURL string

	// Agent registry
	AgentsConfigPath string

	// Gateway override; empty means use the value from the agents config.
	GatewayBaseURL string

	// Invocation settings
	InvokeTimeout time.Duration
	InvokeRetries int
	MaxConcurrent int

	// Policy
	PolicyPath string

	// Logging
	LogLevel string
}

// Load loads configuration from the environment. A .env file in the working
// directory is applied first when present.
func Load() *Config {
	if err := godotenv.Load(".env"); err != nil {
		if !os.IsNotExist(err) {
			log.Printf("WARN: could not load .env: %v", err)
		}
	}

	cfg := &Config{
		HTTPPort:         getEnvInt("HTTP_PORT", 8080),
		DatabaseURL:      getEnv("DATABASE_URL", "file:orchestrator.db?cache=shared&mode=rwc"),
		AgentsConfigPath: getEnv("AGENTS_CONFIG", "agents.yaml"),
		GatewayBaseURL:   getEnv("GATEWAY_BASE_URL", ""),
		InvokeTimeout:    time.Duration(getEnvInt("INVOKE_TIMEOUT_MS", 90000)) * time.Millisecond,
		InvokeRetries:    getEnvInt("INVOKE_RETRIES", 1),
		MaxConcurrent:    getEnvInt("MAX_CONCURRENT_INVOCATIONS", 4),
		PolicyPath:       getEnv("POLICY_PATH", ""),
		LogLevel:         getEnv("LOG_LEVEL", "info"),
	}
	return cfg
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if intVal, err := strconv.Atoi(val); err == nil {
			return intVal
		}
	}
	return defaultVal
}
