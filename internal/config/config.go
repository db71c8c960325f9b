// Package config provides environment-driven configuration for the graph
// handler engine.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Secret wraps a sensitive string to prevent accidental logging or marshalling.
type Secret string

// String implements fmt.Stringer, returning a redacted placeholder.
func (s Secret) String() string { return "[REDACTED]" }

// GoString implements fmt.GoStringer, returning a redacted placeholder.
func (s Secret) GoString() string { return "[REDACTED]" }

// MarshalText implements encoding.TextMarshaler, returning a redacted placeholder.
func (s Secret) MarshalText() ([]byte, error) { return []byte("[REDACTED]"), nil }

// Value returns the underlying secret string.
func (s Secret) Value() string { return string(s) }

// Config holds all application configuration values.
type Config struct {
	DatabaseURL Secret
	Port        string
	ListenHost  string
	MetricsPort string
	CORSOrigins []string
	LogLevel    string

	// DefaultMaxNodes and DefaultQueryTimeoutSeconds override the engine's
	// process-wide safety defaults (engine.MaxNodes / engine.QueryTimeout)
	// without requiring a rebuild.
	DefaultMaxNodes         int
	DefaultQueryTimeoutSecs int
	DBMaxConns              int

	// AutoMigrateDemoSchema applies the demo_nodes/demo_edges migrations on
	// startup. Off by default: the engine is schema-agnostic and most
	// deployments point it at an existing table pair.
	AutoMigrateDemoSchema bool
}

// Load reads configuration from environment variables with sensible defaults.
func Load() (*Config, error) {
	cfg := &Config{
		DatabaseURL: Secret(envOrDefault("DATABASE_URL", "")),
		Port:        envOrDefault("PORT", "3030"),
		ListenHost:  envOrDefault("LISTEN_HOST", "127.0.0.1"),
		MetricsPort: envOrDefault("METRICS_PORT", "9090"),
		LogLevel:    envOrDefault("LOG_LEVEL", "info"),
	}

	maxNodes, err := strconv.Atoi(envOrDefault("DEFAULT_MAX_NODES", "10000"))
	if err != nil || maxNodes < 1 {
		return nil, fmt.Errorf("DEFAULT_MAX_NODES must be a positive integer")
	}

	cfg.DefaultMaxNodes = maxNodes

	queryTimeout, err := strconv.Atoi(envOrDefault("QUERY_TIMEOUT_SECONDS", "30"))
	if err != nil || queryTimeout < 1 || queryTimeout > 300 {
		return nil, fmt.Errorf("QUERY_TIMEOUT_SECONDS must be an integer between 1 and 300")
	}

	cfg.DefaultQueryTimeoutSecs = queryTimeout

	dbMaxConns, err := strconv.Atoi(envOrDefault("DB_MAX_CONNS", "20"))
	if err != nil || dbMaxConns < 1 || dbMaxConns > 200 {
		return nil, fmt.Errorf("DB_MAX_CONNS must be an integer between 1 and 200")
	}

	cfg.DBMaxConns = dbMaxConns

	cfg.AutoMigrateDemoSchema = envOrDefault("AUTO_MIGRATE_DEMO_SCHEMA", "false") == "true"

	origins := envOrDefault("CORS_ORIGINS", "http://localhost:3002")
	cfg.CORSOrigins = strings.Split(origins, ",")

	for i, o := range cfg.CORSOrigins {
		cfg.CORSOrigins[i] = strings.TrimSpace(o)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation: %w", err)
	}

	return cfg, nil
}

// Addr returns the listen address in host:port format.
func (c *Config) Addr() string {
	return c.ListenHost + ":" + c.Port
}

// MetricsAddr returns the metrics listen address in host:port format.
func (c *Config) MetricsAddr() string {
	return c.ListenHost + ":" + c.MetricsPort
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return fallback
}
