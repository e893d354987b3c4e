package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the process configuration, loaded once at startup and passed
// down explicitly. There is no package-level singleton.
type Config struct {
	ListenAddr     string
	DatabaseURL    string
	RedisURL       string // optional; empty disables the redirect miss cache
	BaseURL        string // public base used to compose short URLs in responses
	RequestTimeout time.Duration
	LogLevel       string
}

// Load reads configuration from environment variables. A .env file in the
// working directory is loaded first for development convenience; missing .env
// is not an error.
func Load() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		ListenAddr:  getEnv("LISTEN_ADDR", ":8080"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		BaseURL:     strings.TrimRight(getEnv("BASE_URL", "http://localhost:8080"), "/"),
		LogLevel:    getEnv("LOG_LEVEL", "info"),
	}

	if cfg.DatabaseURL == "" {
		return nil, errors.New("DATABASE_URL environment variable is required")
	}

	timeout := getEnv("REQUEST_TIMEOUT", "5s")
	d, err := time.ParseDuration(timeout)
	if err != nil {
		return nil, fmt.Errorf("invalid REQUEST_TIMEOUT %q: %w", timeout, err)
	}
	cfg.RequestTimeout = d

	return cfg, nil
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}
