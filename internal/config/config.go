// Package config loads tabkit's settings from environment variables with
// defaults, and validates them on startup so misconfiguration fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Limits   LimitsConfig
	Combine  CombineConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds PostgreSQL settings. An empty URL disables the
// table source.
type DatabaseConfig struct {
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"10"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"0"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// Enabled reports whether a database is configured.
func (c *DatabaseConfig) Enabled() bool { return c.URL != "" }

// LimitsConfig caps the size of a single request.
type LimitsConfig struct {
	// MaxRequestBytes limits request bodies (default: 32MB)
	MaxRequestBytes int64 `env:"LIMIT_MAX_REQUEST_BYTES" default:"33554432"`

	// MaxRows limits the rows of any input or loaded table (default: 1000000)
	MaxRows int `env:"LIMIT_MAX_ROWS" default:"1000000"`

	// MaxTables limits the number of inputs to one combine (default: 16)
	MaxTables int `env:"LIMIT_MAX_TABLES" default:"16"`

	// MaxConcurrent is the number of operations run at once (default: 4)
	MaxConcurrent int `env:"LIMIT_MAX_CONCURRENT" default:"4"`

	// MaxWaitTime is how long an operation waits for a slot (default: 10s)
	MaxWaitTime time.Duration `env:"LIMIT_MAX_WAIT_TIME" default:"10s"`
}

// CombineConfig holds defaults for the table operations.
type CombineConfig struct {
	// MaxShown caps the entries listed in duplicate reports (default: 10)
	MaxShown int `env:"COMBINE_MAX_SHOWN" default:"10"`

	// DefaultName labels unnamed sequences when coerced (default: unnamed)
	DefaultName string `env:"COMBINE_DEFAULT_NAME" default:"unnamed"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`

	// RequireAPIKey enables key checks on /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
