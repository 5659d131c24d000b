package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config contains application-wide settings sourced from the environment.
type Config struct {
	Database DatabaseConfig
	Server   ServerConfig
	Security SecurityConfig
	CORS     CORSConfig
	Logging  LoggingConfig
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	URL         string
	PingTimeout time.Duration // per-attempt ping timeout
	ConnectWait time.Duration // total time to wait for the instance at startup
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr string
}

// SecurityConfig holds token signing settings.
type SecurityConfig struct {
	JWTSecret string
}

// CORSConfig holds allowed browser origins.
type CORSConfig struct {
	AllowedOrigins []string
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, text
}

// Load reads configuration from the environment, with config/local.env as an
// optional overlay for development.
func Load() (Config, error) {
	_ = godotenv.Load("config/local.env")

	pingTimeout, err := time.ParseDuration(envOrDefault("DB_PING_TIMEOUT", "5s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_PING_TIMEOUT: %w", err)
	}
	connectWait, err := time.ParseDuration(envOrDefault("DB_CONNECT_WAIT", "30s"))
	if err != nil {
		return Config{}, fmt.Errorf("invalid DB_CONNECT_WAIT: %w", err)
	}

	cfg := Config{
		Database: DatabaseConfig{
			URL:         os.Getenv("DATABASE_URL"),
			PingTimeout: pingTimeout,
			ConnectWait: connectWait,
		},
		Server:   ServerConfig{Addr: fmt.Sprintf(":%s", envOrDefault("PORT", "8080"))},
		Security: SecurityConfig{JWTSecret: os.Getenv("JWT_SECRET")},
		CORS:     CORSConfig{AllowedOrigins: parseAllowedOrigins(envOrDefault("CORS_ALLOWED_ORIGINS", "http://localhost:5173"))},
		Logging: LoggingConfig{
			Level:  envOrDefault("LOG_LEVEL", "info"),
			Format: envOrDefault("LOG_FORMAT", "json"),
		},
	}

	if err := cfg.validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) validate() error {
	if c.Database.URL == "" {
		return errors.New("DATABASE_URL env var is required")
	}
	if c.Database.PingTimeout <= 0 || c.Database.ConnectWait <= 0 {
		return errors.New("DB_PING_TIMEOUT and DB_CONNECT_WAIT must be positive durations")
	}
	if len(c.Security.JWTSecret) < 16 {
		return errors.New("JWT_SECRET must be at least 16 characters")
	}
	if port, err := strconv.Atoi(strings.TrimPrefix(c.Server.Addr, ":")); err != nil || port < 1 || port > 65535 {
		return errors.New("PORT must be between 1 and 65535")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid LOG_LEVEL %q", c.Logging.Level)
	}
	return nil
}

func envOrDefault(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func parseAllowedOrigins(raw string) []string {
	parts := strings.Split(raw, ",")
	var origins []string
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			origins = append(origins, trimmed)
		}
	}
	return origins
}
