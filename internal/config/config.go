// Package config handles application configuration from environment variables
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
	// Server settings
	Port     string
	Env      string // "development", "staging", "production"
	LogLevel string

	// Database
	DatabaseURL string // PostgreSQL connection string (optional, uses in-memory if not set)

	// Model artifacts
	ModelPath  string // Classifier coefficients (JSON)
	ScalerPath string // Fitted scaler parameters (JSON)

	// Sessions
	SessionLifetime time.Duration
	SessionSecure   bool // Secure cookie flag; forced on in production

	// API behavior
	PageSize             int
	DailyStatsWindow     int
	MinTransactionAmount float64
	MaxTransactionAmount float64

	// Security
	RateLimitRPM int

	// Observability
	OTLPEndpoint string // OTLP gRPC endpoint (optional, tracing off if not set)
}

// Defaults
const (
	DefaultPort             = "8080"
	DefaultEnv              = "development"
	DefaultLogLevel         = "info"
	DefaultModelPath        = "artifacts/classifier.json"
	DefaultScalerPath       = "artifacts/scaler.json"
	DefaultSessionLifetime  = 24 * time.Hour
	DefaultPageSize         = 20
	DefaultDailyStatsWindow = 30
	DefaultRateLimitRPM     = 300
)

// Load reads configuration from environment variables
// It loads .env file if present (for local development)
func Load() (*Config, error) {
	// Load .env file if it exists (ignore error if not present)
	_ = godotenv.Load()

	cfg := &Config{
		Port:                 getEnv("PORT", DefaultPort),
		Env:                  getEnv("ENV", DefaultEnv),
		LogLevel:             getEnv("LOG_LEVEL", DefaultLogLevel),
		DatabaseURL:          os.Getenv("DATABASE_URL"), // Optional, uses in-memory if not set
		ModelPath:            getEnv("MODEL_PATH", DefaultModelPath),
		ScalerPath:           getEnv("SCALER_PATH", DefaultScalerPath),
		SessionLifetime:      time.Duration(getEnvInt64("SESSION_LIFETIME_HOURS", 24)) * time.Hour,
		SessionSecure:        getEnvBool("SESSION_SECURE", false),
		PageSize:             int(getEnvInt64("PAGE_SIZE", DefaultPageSize)),
		DailyStatsWindow:     int(getEnvInt64("DAILY_STATS_WINDOW", DefaultDailyStatsWindow)),
		MinTransactionAmount: getEnvFloat("MIN_TRANSACTION_AMOUNT", 0),
		MaxTransactionAmount: getEnvFloat("MAX_TRANSACTION_AMOUNT", 0),
		RateLimitRPM:         int(getEnvInt64("RATE_LIMIT_RPM", DefaultRateLimitRPM)),
		OTLPEndpoint:         os.Getenv("OTEL_EXPORTER_OTLP_ENDPOINT"),
	}

	// Session cookies are never plain HTTP in production.
	if cfg.IsProduction() {
		cfg.SessionSecure = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks that the configuration is coherent
func (c *Config) Validate() error {
	if c.ModelPath == "" {
		return fmt.Errorf("MODEL_PATH is required")
	}
	if c.ScalerPath == "" {
		return fmt.Errorf("SCALER_PATH is required")
	}
	if c.SessionLifetime <= 0 {
		return fmt.Errorf("SESSION_LIFETIME_HOURS must be positive")
	}
	if c.PageSize < 1 || c.PageSize > 200 {
		return fmt.Errorf("PAGE_SIZE must be between 1 and 200")
	}
	if c.MaxTransactionAmount > 0 && c.MinTransactionAmount > c.MaxTransactionAmount {
		return fmt.Errorf("MIN_TRANSACTION_AMOUNT exceeds MAX_TRANSACTION_AMOUNT")
	}
	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.ParseInt(value, 10, 64); err == nil {
			return i
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if f, err := strconv.ParseFloat(value, 64); err == nil {
			return f
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
