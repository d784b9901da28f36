// Package config provides centralized configuration management for the
// service. It loads settings from environment variables with defaults and
// validates everything on startup to fail fast on misconfiguration.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Lyra     LyraConfig
	Export   ExportConfig
	Upload   UploadConfig
	Database DatabaseConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request body (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response.
	// Zero disables it, which the streaming CSV export requires (default: 0s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"0s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`
}

// LyraConfig holds settings for the upstream Lyra fulfilment API.
type LyraConfig struct {
	// URL is the base URL of the Lyra API (required)
	URL string `env:"LYRA_API_URL" required:"true"`

	// Token is the bearer token for the Lyra API (required)
	Token string `env:"LYRA_API_TOKEN" required:"true"`

	// Timeout applies to each individual upstream call (default: 30s)
	Timeout time.Duration `env:"LYRA_API_TIMEOUT" default:"30s"`

	// FulfilmentClientID is the client id stamped on every submitted
	// order line (default: 105)
	FulfilmentClientID int64 `env:"LYRA_FULFILMENT_CLIENT_ID" default:"105"`

	// CatalogPageSize is the page size used for the full product
	// catalog fetch (default: 10000)
	CatalogPageSize int `env:"LYRA_CATALOG_PAGE_SIZE" default:"10000"`
}

// ExportConfig holds CSV export settings.
type ExportConfig struct {
	// MaxPages caps upstream page fetches per export so an export
	// terminates even when pagination signals are inconsistent
	// (default: 2000)
	MaxPages int `env:"EXPORT_MAX_PAGES" default:"2000"`
}

// UploadConfig holds CSV upload settings.
type UploadConfig struct {
	// MaxFileSize is the maximum allowed upload size in bytes (default: 50MB)
	MaxFileSize int64 `env:"UPLOAD_MAX_FILE_SIZE" default:"52428800"`

	// TmpDir is where uploaded files are spooled before processing.
	// Empty means the OS temp dir.
	TmpDir string `env:"UPLOAD_TMP_DIR"`

	// MappingProfile is an optional path to a YAML column-alias
	// profile overriding the built-in one.
	MappingProfile string `env:"MAPPING_PROFILE_PATH"`
}

// DatabaseConfig holds the optional import-history database settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. When empty the import
	// history ledger is disabled.
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of pooled connections (default: 8)
	MaxConns int `env:"DB_MAX_CONNS" default:"8"`

	// MinConns is the minimum number of pooled connections (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`
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
