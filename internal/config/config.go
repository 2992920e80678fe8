package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

// Defaults
const (
	DefaultBaseURL  = "http://localhost:8080/v1"
	DefaultPageSize = 10
)

// Config holds the client configuration, sourced from a .env file when one
// exists and the environment otherwise.
type Config struct {
	APIBaseURL string // TRAK_API_URL
	LogFile    string // TRAK_LOG_FILE; empty disables request logging
	PageSize   int    // TRAK_PAGE_SIZE; list page size
}

// Load reads the configuration. A missing .env file is not an error.
func Load() Config {
	_ = godotenv.Load()

	return Config{
		APIBaseURL: envOrDefault("TRAK_API_URL", DefaultBaseURL),
		LogFile:    os.Getenv("TRAK_LOG_FILE"),
		PageSize:   envIntOrDefault("TRAK_PAGE_SIZE", DefaultPageSize),
	}
}

// envOrDefault returns the environment variable value or fallback when it is empty.
func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

// envIntOrDefault returns the variable parsed as a positive int, or fallback.
func envIntOrDefault(key string, fallback int) int {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	n, err := strconv.Atoi(value)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
