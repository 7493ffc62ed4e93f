// Package config provides application configuration management.
// Configuration is loaded from environment variables following 12-factor principles.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v10"
)

// Session store backends.
const (
	SessionStoreDatabase = "database"
	SessionStoreRedis    = "redis"
)

// Config holds all application configuration.
// All fields are populated from environment variables.
type Config struct {
	// Application settings
	AppEnv  string `env:"APP_ENV" envDefault:"development"`
	AppPort int    `env:"PORT" envDefault:"8080"`

	// Database: postgres://... or sqlite://path (file:... also accepted)
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`

	// Redis, only needed when SESSION_STORE=redis
	RedisURL       string `env:"REDIS_URL"`
	RedisPoolSize  int    `env:"REDIS_POOL_SIZE" envDefault:"10"`
	RedisKeyPrefix string `env:"REDIS_KEY_PREFIX" envDefault:"mywallet:"`

	// Sessions
	SessionStore string        `env:"SESSION_STORE" envDefault:"database"`
	SessionTTL   time.Duration `env:"SESSION_TTL" envDefault:"720h"`

	// Expired-session cleanup for the SQL stores; Redis expires keys itself
	SessionSweepInterval time.Duration `env:"SESSION_SWEEP_INTERVAL" envDefault:"1h"`

	// Password hashing
	PasswordHasher string `env:"PASSWORD_HASHER" envDefault:"argon2id"`
	BcryptCost     int    `env:"BCRYPT_COST" envDefault:"10"`

	// Logging
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Server timeouts
	ReadTimeout     time.Duration `env:"READ_TIMEOUT" envDefault:"5s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" envDefault:"10s"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" envDefault:"60s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// CORS configuration
	// Comma-separated list of allowed origins (e.g., "https://example.com,https://app.example.com")
	CORSAllowedOrigins string `env:"CORS_ALLOWED_ORIGINS" envDefault:""`

	// Request body size limit in bytes (default 1MB)
	MaxRequestBodySize int64 `env:"MAX_REQUEST_BODY_SIZE" envDefault:"1048576"`
}

// IsDevelopment returns true if running in development mode.
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}

// IsProduction returns true if running in production mode.
func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

// GetCORSAllowedOrigins parses the comma-separated origins string into a slice.
func (c *Config) GetCORSAllowedOrigins() []string {
	if c.CORSAllowedOrigins == "" {
		return nil
	}

	origins := strings.Split(c.CORSAllowedOrigins, ",")
	result := make([]string, 0, len(origins))

	for _, origin := range origins {
		trimmed := strings.TrimSpace(origin)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}

// Validate checks combinations env tags cannot express.
// Every problem is reported, not just the first.
func (c *Config) Validate() error {
	var errs []error

	switch c.SessionStore {
	case SessionStoreDatabase:
	case SessionStoreRedis:
		if c.RedisURL == "" {
			errs = append(errs, fmt.Errorf("REDIS_URL is required when SESSION_STORE=%s", SessionStoreRedis))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown SESSION_STORE %q", c.SessionStore))
	}
	if c.SessionTTL < 0 {
		errs = append(errs, errors.New("SESSION_TTL must not be negative"))
	}
	if c.SessionSweepInterval <= 0 {
		errs = append(errs, errors.New("SESSION_SWEEP_INTERVAL must be positive"))
	}
	switch c.PasswordHasher {
	case "argon2id", "bcrypt":
	default:
		errs = append(errs, fmt.Errorf("unknown PASSWORD_HASHER %q", c.PasswordHasher))
	}
	switch strings.ToLower(c.LogFormat) {
	case "json", "text":
	default:
		errs = append(errs, fmt.Errorf("unknown LOG_FORMAT %q", c.LogFormat))
	}
	if c.AppPort < 1 || c.AppPort > 65535 {
		errs = append(errs, fmt.Errorf("PORT %d out of range", c.AppPort))
	}
	if c.MaxRequestBodySize <= 0 {
		errs = append(errs, errors.New("MAX_REQUEST_BODY_SIZE must be positive"))
	}

	return errors.Join(errs...)
}

// Load parses environment variables and returns a Config.
// Returns an error if required variables are missing.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
