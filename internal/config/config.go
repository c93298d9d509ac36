package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

type Config struct {
	Addr              string
	DBPath            string
	LogLevel          string
	SweepInterval     int // seconds between timeout sweeps
	NotifyWorkerCount int
	NotifyQueueSize   int
	SMTPHost          string
	SMTPPort          int
	SMTPUsername      string
	SMTPPassword      string
	SMTPFrom          string
}

// Load reads configuration from a .env file (if present) and environment variables,
// applying sensible defaults when values are missing or invalid.
func Load() Config {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	return Config{
		Addr:              envOr("ADDR", ":8080"),
		DBPath:            envOr("DB_PATH", "chesspost.db"),
		LogLevel:          envOr("LOG_LEVEL", "INFO"),
		SweepInterval:     envIntOr("SWEEP_INTERVAL_SECONDS", 30),
		NotifyWorkerCount: envIntOr("NOTIFY_WORKER_COUNT", 2),
		NotifyQueueSize:   envIntOr("NOTIFY_QUEUE_SIZE", 64),
		SMTPHost:          envOr("SMTP_HOST", ""),
		SMTPPort:          envIntOr("SMTP_PORT", 587),
		SMTPUsername:      envOr("SMTP_USERNAME", ""),
		SMTPPassword:      envOr("SMTP_PASSWORD", ""),
		SMTPFrom:          envOr("SMTP_FROM", ""),
	}
}

// Validate checks the configuration for values that cannot work at runtime.
// All problems are reported at once.
func (c Config) Validate() error {
	var problems []string

	if c.Addr == "" {
		problems = append(problems, "ADDR cannot be empty")
	}
	if c.DBPath == "" {
		problems = append(problems, "DB_PATH cannot be empty")
	}
	switch strings.ToUpper(c.LogLevel) {
	case "DEBUG", "INFO", "WARN", "WARNING", "ERROR":
	default:
		problems = append(problems, fmt.Sprintf("LOG_LEVEL %q is not one of DEBUG, INFO, WARN, ERROR", c.LogLevel))
	}
	if c.SweepInterval < 1 {
		problems = append(problems, "SWEEP_INTERVAL_SECONDS must be at least 1")
	}
	if c.NotifyWorkerCount < 1 {
		problems = append(problems, "NOTIFY_WORKER_COUNT must be at least 1")
	}
	if c.NotifyQueueSize < 1 {
		problems = append(problems, "NOTIFY_QUEUE_SIZE must be at least 1")
	}
	if c.SMTPHost != "" && (c.SMTPPort < 1 || c.SMTPPort > 65535) {
		problems = append(problems, "SMTP_PORT must be a valid port number")
	}
	if c.SMTPHost != "" && c.SMTPFrom == "" {
		problems = append(problems, "SMTP_FROM is required when SMTP_HOST is set")
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}
