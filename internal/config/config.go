// Package config provides centralized configuration management for the
// service. It loads settings from environment variables with sensible
// defaults, parses the column mapping file, and validates everything on
// startup to fail fast on misconfiguration.
package config

import (
	"fmt"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Notion   NotionConfig
	Sync     SyncConfig
	Security SecurityConfig
	Logging  LoggingConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request (default: 15s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`

	// WriteTimeout is the maximum duration for writing a response (default: 30s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"30s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`
}

// DatabaseConfig holds row store connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	// MaxConns is the maximum number of connections in the pool (default: 10)
	MaxConns int `env:"DB_MAX_CONNS" default:"10"`

	// MinConns is the minimum number of connections to keep open (default: 2)
	MinConns int `env:"DB_MIN_CONNS" default:"2"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`

	// MaxConnIdleTime is the maximum idle time before a connection is closed (default: 30m)
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`
}

// NotionConfig holds Notion API settings.
type NotionConfig struct {
	// Token is the integration token used for all API calls (required)
	Token string `env:"NOTION_TOKEN" required:"true"`

	// DatabaseID is the Notion database pages are created in (required)
	DatabaseID string `env:"NOTION_DATABASE_ID" required:"true"`

	// BaseURL overrides the API endpoint, mainly for testing
	BaseURL string `env:"NOTION_BASE_URL"`

	// APIVersion is the Notion-Version header value
	APIVersion string `env:"NOTION_API_VERSION" default:"2022-06-28"`

	// MinRequestInterval spaces outbound requests (default: 334ms, ~3 req/s)
	MinRequestInterval time.Duration `env:"NOTION_MIN_REQUEST_INTERVAL" default:"334ms"`

	// MaxRetries is the retry budget after the first attempt (default: 3)
	MaxRetries int `env:"NOTION_MAX_RETRIES" default:"3"`

	// RequestTimeout is the per-request HTTP timeout (default: 20s)
	RequestTimeout time.Duration `env:"NOTION_REQUEST_TIMEOUT" default:"20s"`
}

// SyncConfig holds sync engine settings.
type SyncConfig struct {
	// MappingsFile is the path of the column mapping file (default: mappings.json)
	MappingsFile string `env:"SYNC_MAPPINGS_FILE" default:"mappings.json"`

	// PageIDColumn is the column reference of the reserved page-id cell,
	// as a letter code or zero-based index (required)
	PageIDColumn string `env:"SYNC_PAGE_ID_COLUMN" required:"true"`

	// HistorySize bounds the in-memory outcome history (default: 100)
	HistorySize int `env:"SYNC_HISTORY_SIZE" default:"100"`

	// RowTable is the table rows are read from (default: sheet_rows)
	RowTable string `env:"SYNC_ROW_TABLE" default:"sheet_rows"`

	// NotifyWebhookURL receives outcome notifications when set
	NotifyWebhookURL string `env:"SYNC_NOTIFY_WEBHOOK_URL"`
}

// SecurityConfig holds API authentication settings.
type SecurityConfig struct {
	// RequireAPIKey enables X-API-Key auth on the API routes (default: true)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"true"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text, json, or pretty (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}
