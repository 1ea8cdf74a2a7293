package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv  string
	Port     string
	Database DatabaseConfig
	Rest     RestConfig
	Retry    RetryConfig
}

// DatabaseConfig holds the direct (native protocol) path configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Schema   string
	Alter    bool
}

// RestConfig holds the REST fallback path configuration.
// ForceRest pins every call to the REST path unconditionally; it is the
// operator escape hatch for deployments where the database port is known to
// be firewalled.
type RestConfig struct {
	BaseURL   string
	APIKey    string
	ForceRest bool
}

// RetryConfig bounds the transient-backend retry loop
type RetryConfig struct {
	MaxAttempts int
	BaseDelay   time.Duration
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	restURL := os.Getenv("REST_URL")
	forceRest := getEnv("FORCE_REST", "false") == "true"
	if forceRest && restURL == "" {
		return nil, fmt.Errorf("FORCE_REST is set but REST_URL is empty")
	}

	return &Config{
		NodeEnv: getEnv("NODE_ENV", "development"),
		Port:    getEnv("PORT", "3210"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "importdesk"),
			Schema:   getEnv("DB_SCHEMA", "public"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Rest: RestConfig{
			BaseURL:   restURL,
			APIKey:    os.Getenv("REST_API_KEY"),
			ForceRest: forceRest,
		},
		Retry: RetryConfig{
			MaxAttempts: getEnvInt("RETRY_MAX_ATTEMPTS", 3),
			BaseDelay:   time.Duration(getEnvInt("RETRY_BASE_DELAY_MS", 500)) * time.Millisecond,
		},
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt gets an integer environment variable with default value
func getEnvInt(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 0 {
		return defaultValue
	}
	return n
}
