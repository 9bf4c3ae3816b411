package config

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/hashicorp/go-multierror"
)

// SecurityConfig defines transport security settings for the demonstration
// binary's dial (not used by the session itself).
type SecurityConfig struct {
	TLSEnabled bool   `json:"tls_enabled"`
	TLSCert    string `json:"tls_cert"`
	TLSKey     string `json:"tls_key"`
}

// RateLimitConfig defines an optional outgoing-request throttle, keyed by
// command method.
type RateLimitConfig struct {
	Enabled        bool    `json:"enabled"`
	RequestsPerSec float64 `json:"requests_per_sec"`
	Burst          int     `json:"burst"`
}

// CircuitBreakerConfig defines circuit breaker settings guarding the initial
// dial to the Loco endpoint.
type CircuitBreakerConfig struct {
	Enabled         bool  `json:"enabled"`
	MaxFailures     int32 `json:"max_failures"`
	ResetTimeoutSec int   `json:"reset_timeout_sec"`
	SuccessThresh   int32 `json:"success_threshold"`
}

// RetryConfig defines retry settings for the initial dial.
type RetryConfig struct {
	Enabled         bool    `json:"enabled"`
	MaxAttempts     int     `json:"max_attempts"`
	InitialDelaySec int     `json:"initial_delay_sec"`
	MaxDelaySec     int     `json:"max_delay_sec"`
	Multiplier      float64 `json:"multiplier"`
	JitterFraction  float64 `json:"jitter_fraction"`
}

// Config defines the demonstration binary's settings: where to dial, and how
// the codec/session should be tuned.
type Config struct {
	DialAddr       string   `json:"dial_addr"`
	HTTPAddr       string   `json:"http_addr"`
	DialTimeout    Duration `json:"dial_timeout"`
	MaxBodySize    int      `json:"max_body_size"`
	ChunkWriteSize int      `json:"chunk_write_size"`
	ReadBuffer     int      `json:"read_buffer"`

	Security       SecurityConfig       `json:"security,omitempty"`
	RateLimit      RateLimitConfig      `json:"rate_limit,omitempty"`
	CircuitBreaker CircuitBreakerConfig `json:"circuit_breaker,omitempty"`
	Retry          RetryConfig          `json:"retry,omitempty"`
}

// Default returns the out-of-the-box configuration.
func Default() Config {
	return Config{
		DialAddr:       "",
		HTTPAddr:       ":8080",
		DialTimeout:    Duration(10 * time.Second),
		MaxBodySize:    16 * 1024 * 1024,
		ChunkWriteSize: 2048,
		ReadBuffer:     64 * 1024,
	}
}

// LoadFile reads and decodes a JSON config file.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}
	var cfg Config
	if err := json.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	return cfg, nil
}

const (
	MinBufferSize = 4 * 1024
	MaxBufferSize = 1024 * 1024
)

// Validate checks the configuration, aggregating every failure found instead
// of stopping at the first one.
func (c Config) Validate() error {
	var result *multierror.Error

	if c.DialAddr == "" {
		result = multierror.Append(result, fmt.Errorf("dial_addr is required"))
	}
	if c.DialTimeout.AsDuration() <= 0 {
		result = multierror.Append(result, fmt.Errorf("dial_timeout must be positive"))
	}
	if c.MaxBodySize <= 0 {
		result = multierror.Append(result, fmt.Errorf("max_body_size must be positive"))
	}
	if c.ChunkWriteSize <= 0 {
		result = multierror.Append(result, fmt.Errorf("chunk_write_size must be positive"))
	}
	if c.ReadBuffer < MinBufferSize || c.ReadBuffer > MaxBufferSize {
		result = multierror.Append(result, fmt.Errorf("read_buffer must be between %d and %d bytes", MinBufferSize, MaxBufferSize))
	}
	if c.Security.TLSEnabled {
		if strings.TrimSpace(c.Security.TLSCert) == "" || strings.TrimSpace(c.Security.TLSKey) == "" {
			result = multierror.Append(result, fmt.Errorf("tls_enabled requires tls_cert and tls_key"))
		}
	}
	if c.RateLimit.Enabled && c.RateLimit.RequestsPerSec <= 0 {
		result = multierror.Append(result, fmt.Errorf("rate_limit.requests_per_sec must be positive when enabled"))
	}
	if c.CircuitBreaker.Enabled && c.CircuitBreaker.MaxFailures <= 0 {
		result = multierror.Append(result, fmt.Errorf("circuit_breaker.max_failures must be positive when enabled"))
	}
	if c.Retry.Enabled && c.Retry.MaxAttempts <= 0 {
		result = multierror.Append(result, fmt.Errorf("retry.max_attempts must be positive when enabled"))
	}

	return result.ErrorOrNil()
}
