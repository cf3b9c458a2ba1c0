package main

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config carries the server's environment-driven settings. A .env file is
// honored when present; real environment variables win.
type Config struct {
	Port           string
	DatabaseURL    string
	RedisAddr      string
	CacheTTL       time.Duration
	LogLevel       string
	RequestsPerMin int
	AllowedOrigins []string
}

func LoadConfig() Config {
	// Best effort; production deployments set real environment variables.
	_ = godotenv.Load()

	return Config{
		Port:           getenv("PORT", "8080"),
		DatabaseURL:    os.Getenv("DATABASE_URL"),
		RedisAddr:      os.Getenv("REDIS_ADDR"),
		CacheTTL:       getenvDuration("RULES_CACHE_TTL", 0),
		LogLevel:       getenv("LOG_LEVEL", "INFO"),
		RequestsPerMin: getenvInt("RATE_LIMIT_PER_MIN", 300),
		AllowedOrigins: strings.Split(getenv("ALLOWED_ORIGINS", "*"), ","),
	}
}

func getenv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getenvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}

func getenvDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
