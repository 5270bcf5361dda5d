// Package config provides application configuration through environment variables.
package config

import (
	"os"
	"path/filepath"
	"time"

	"github.com/allisson/go-env"
	validation "github.com/jellydator/validation"
	"github.com/joho/godotenv"
)

// Store drivers.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreMySQL    = "mysql"
)

// Config holds all application configuration.
type Config struct {
	// ServerHost is the host address the server will bind to.
	ServerHost string
	// ServerPort is the port number the server will listen on.
	ServerPort int

	// StoreDriver selects the validator store: "memory", "postgres" or "mysql".
	StoreDriver string
	// DBConnectionString is the connection string for the SQL stores.
	DBConnectionString string
	// DBMaxOpenConnections is the maximum number of open connections to the database.
	DBMaxOpenConnections int
	// DBMaxIdleConnections is the maximum number of idle connections in the database pool.
	DBMaxIdleConnections int
	// DBConnMaxLifetime is the maximum amount of time a connection may be reused.
	DBConnMaxLifetime time.Duration

	// LogLevel is the logging level (e.g., "debug", "info", "warn", "error").
	LogLevel string

	// SealingAlgorithm is the AEAD protecting printer keys at rest.
	SealingAlgorithm string
	// SealingKey is the base64 sealing key, or its KMS ciphertext when KMSKeyURI is set.
	SealingKey string
	// KMSKeyURI is the gocloud secrets URL used to unwrap SealingKey.
	KMSKeyURI string

	// TimestampMode makes issuers encode the clock into redemption codes ('Z' codes).
	TimestampMode bool

	// RateLimitEnabled indicates whether per-IP rate limiting of the scan endpoints is enabled.
	RateLimitEnabled bool
	// RateLimitRequestsPerSec is the number of scans allowed per second per client IP.
	RateLimitRequestsPerSec float64
	// RateLimitBurst is the burst size for scan rate limiting.
	RateLimitBurst int

	// CORSEnabled indicates whether CORS is enabled.
	CORSEnabled bool
	// CORSAllowOrigins is a comma-separated list of allowed origins for CORS.
	CORSAllowOrigins string

	// MetricsEnabled indicates whether metrics collection is enabled.
	MetricsEnabled bool
	// MetricsNamespace is the namespace for the application metrics.
	MetricsNamespace string
	// MetricsPort is the port number for the metrics server.
	MetricsPort int
}

// Load loads configuration from environment variables and .env file.
func Load() *Config {
	// Try to load .env file recursively
	loadDotEnv()

	return &Config{
		// Server configuration
		ServerHost: env.GetString("SERVER_HOST", "0.0.0.0"),
		ServerPort: env.GetInt("SERVER_PORT", 8080),

		// Store configuration
		StoreDriver:          env.GetString("STORE_DRIVER", StoreMemory),
		DBConnectionString:   env.GetString("DB_CONNECTION_STRING", ""),
		DBMaxOpenConnections: env.GetInt("DB_MAX_OPEN_CONNECTIONS", 25),
		DBMaxIdleConnections: env.GetInt("DB_MAX_IDLE_CONNECTIONS", 5),
		DBConnMaxLifetime:    env.GetDuration("DB_CONN_MAX_LIFETIME", 5, time.Minute),

		// Logging
		LogLevel: env.GetString("LOG_LEVEL", "info"),

		// Key sealing
		SealingAlgorithm: env.GetString("SEALING_ALGORITHM", "aes-gcm"),
		SealingKey:       env.GetString("SEALING_KEY", ""),
		KMSKeyURI:        env.GetString("KMS_KEY_URI", ""),

		// Protocol
		TimestampMode: env.GetBool("TIMESTAMP_MODE", true),

		// Rate limiting (scan endpoints, per client IP)
		RateLimitEnabled:        env.GetBool("RATE_LIMIT_ENABLED", true),
		RateLimitRequestsPerSec: env.GetFloat64("RATE_LIMIT_REQUESTS_PER_SEC", 50.0),
		RateLimitBurst:          env.GetInt("RATE_LIMIT_BURST", 100),

		// CORS
		CORSEnabled:      env.GetBool("CORS_ENABLED", false),
		CORSAllowOrigins: env.GetString("CORS_ALLOW_ORIGINS", ""),

		// Metrics
		MetricsEnabled:   env.GetBool("METRICS_ENABLED", true),
		MetricsNamespace: env.GetString("METRICS_NAMESPACE", "ticketsentry"),
		MetricsPort:      env.GetInt("METRICS_PORT", 8081),
	}
}

// Validate checks settings that would otherwise fail late, at first use.
func (c *Config) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.StoreDriver, validation.Required, validation.In(StoreMemory, StorePostgres, StoreMySQL)),
		validation.Field(&c.DBConnectionString,
			validation.When(c.UsesSQL(), validation.Required.Error("is required for SQL stores")),
		),
		validation.Field(&c.SealingAlgorithm, validation.In("aes-gcm", "chacha20-poly1305")),
		validation.Field(&c.SealingKey,
			validation.When(c.UsesSQL(), validation.Required.Error("is required for SQL stores")),
		),
		validation.Field(&c.LogLevel, validation.In("debug", "info", "warn", "error")),
		validation.Field(&c.ServerPort, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.MetricsPort, validation.Min(1), validation.Max(65535)),
		validation.Field(&c.RateLimitRequestsPerSec, validation.When(c.RateLimitEnabled, validation.Min(0.001))),
		validation.Field(&c.RateLimitBurst, validation.When(c.RateLimitEnabled, validation.Min(1))),
	)
}

// UsesSQL reports whether the configured store needs a database connection.
func (c *Config) UsesSQL() bool {
	return c.StoreDriver == StorePostgres || c.StoreDriver == StoreMySQL
}

// GetGinMode returns the appropriate Gin mode based on log level.
func (c *Config) GetGinMode() string {
	if c.LogLevel == "debug" {
		return "debug"
	}
	return "release"
}

// loadDotEnv searches for a .env file recursively from the current directory
// up to the root directory and loads it if found.
func loadDotEnv() {
	cwd, err := os.Getwd()
	if err != nil {
		return
	}

	dir := cwd
	for {
		envPath := filepath.Join(dir, ".env")
		if _, err := os.Stat(envPath); err == nil {
			_ = godotenv.Load(envPath)
			return
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			break
		}
		dir = parent
	}
}
