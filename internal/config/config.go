// Package config loads tabkit settings from environment variables.
// Defaults are applied for unset values and everything is validated on
// startup so a bad setting stops the process before it serves a request.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Engine    EngineConfig
	Rate      RateLimitConfig
	Security  SecurityConfig
	Logging   LoggingConfig
	Contracts ContractsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading a request body.
	// Uploads can be large, so this is generous (default: 2m)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"2m"`

	// WriteTimeout is the maximum duration for writing a response (default: 5m)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"5m"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 5m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"5m"`
}

// EngineConfig holds chunk and combine job limits.
type EngineConfig struct {
	// MaxFileSize is the largest accepted source file (default: 500MiB).
	// Accepts plain bytes or sizes such as "20MB" and "1.5GiB".
	MaxFileSize int64 `env:"ENGINE_MAX_FILE_SIZE" default:"500MiB" unit:"bytes"`

	// MaxConcurrentJobs is the number of jobs allowed to run at once (default: 4)
	MaxConcurrentJobs int `env:"ENGINE_MAX_CONCURRENT_JOBS" default:"4"`

	// MaxWaitTime is how long a job waits for a free slot (default: 30s)
	MaxWaitTime time.Duration `env:"ENGINE_MAX_WAIT_TIME" default:"30s"`

	// DecodeParallelism bounds concurrent source decodes in one combine job (default: 5)
	DecodeParallelism int `env:"ENGINE_DECODE_PARALLELISM" default:"5"`

	// DefaultChunkSize is the rows per chunk when a request gives none (default: 1000)
	DefaultChunkSize int `env:"ENGINE_DEFAULT_CHUNK_SIZE" default:"1000"`
}

// RateLimitConfig holds rate limiting settings per time window.
type RateLimitConfig struct {
	// Enabled controls whether rate limiting is active (default: true)
	Enabled bool `env:"RATE_LIMIT_ENABLED" default:"true"`

	// RequestsPerMinute is the default rate limit per IP (default: 100)
	RequestsPerMinute int `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`

	// JobLimit is requests per minute for chunk and combine endpoints (default: 10)
	JobLimit int `env:"RATE_LIMIT_JOBS" default:"10"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`

	// EnableCSP enables Content-Security-Policy headers (default: true)
	EnableCSP bool `env:"SECURITY_ENABLE_CSP" default:"true"`

	// RequireAPIKey turns on X-API-Key authentication for /api routes (default: false)
	RequireAPIKey bool `env:"REQUIRE_API_KEY" default:"false"`

	// APIKeys is a comma-separated list of accepted keys
	APIKeys []string `env:"API_KEYS"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// ContractsConfig holds header contract settings.
type ContractsConfig struct {
	// File is an optional YAML file of extra contracts
	File string `env:"CONTRACTS_FILE"`

	// Default is the contract checked when a request validates without
	// naming one (default: inventory_tracking)
	Default string `env:"CONTRACTS_DEFAULT" default:"inventory_tracking"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
