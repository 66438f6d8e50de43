package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

// DefaultAdvisorEndpoint is the generateContent endpoint used when none is
// configured. {model} is replaced with the configured model.
const DefaultAdvisorEndpoint = "https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent"

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Origin    OriginConfig
	Advisor   AdvisorConfig
	Cache     CacheConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
	Admin     AdminConfig
	Rules     RulesConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            string        `envconfig:"PORT" default:"8000"`
	Host            string        `envconfig:"HOST" default:"0.0.0.0"`
	ShutdownTimeout time.Duration `envconfig:"SHUTDOWN_TIMEOUT" default:"10s"`
}

// OriginConfig holds origin resolution and fetch settings.
type OriginConfig struct {
	Domain       string        `envconfig:"ORIGIN_DOMAIN"`
	Fallback     string        `envconfig:"ORIGIN_FALLBACK" default:"https://example.com"`
	Timeout      time.Duration `envconfig:"ORIGIN_TIMEOUT" default:"15s"`
	MaxBodyBytes int64         `envconfig:"ORIGIN_MAX_BODY_BYTES" default:"5242880"`
	BypassPaths  []string      `envconfig:"ORIGIN_BYPASS_PATHS"`
}

// AdvisorConfig holds generative advisor settings. An empty APIKey disables the advisor.
type AdvisorConfig struct {
	APIKey          string        `envconfig:"ADVISOR_API_KEY"`
	Endpoint        string        `envconfig:"ADVISOR_ENDPOINT" default:"https://generativelanguage.googleapis.com/v1beta/models/{model}:generateContent"`
	Model           string        `envconfig:"ADVISOR_MODEL" default:"gemini-2.0-flash"`
	Timeout         time.Duration `envconfig:"ADVISOR_TIMEOUT" default:"8s"`
	RequestsPerSec  float64       `envconfig:"ADVISOR_RPS" default:"20"`
	BreakerFailures uint32        `envconfig:"ADVISOR_BREAKER_FAILURES" default:"5"`
}

// Enabled reports whether a credential is configured.
func (a AdvisorConfig) Enabled() bool {
	return a.APIKey != ""
}

// CacheConfig holds the cache directives attached to optimized responses.
type CacheConfig struct {
	BrowserMaxAge int `envconfig:"CACHE_BROWSER_MAX_AGE" default:"300"`
	EdgeMaxAge    int `envconfig:"CACHE_EDGE_MAX_AGE" default:"86400"`
}

// Header renders the Cache-Control value.
func (c CacheConfig) Header() string {
	return fmt.Sprintf("public, max-age=%d, s-maxage=%d", c.BrowserMaxAge, c.EdgeMaxAge)
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info"`
	Development bool   `envconfig:"LOG_DEV" default:"false"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true"`
}

// AdminConfig protects the /_edge inspection endpoints.
type AdminConfig struct {
	TokenHash string `envconfig:"ADMIN_TOKEN_HASH"`
}

// RulesConfig points at an optional rewrite rule tuning file.
type RulesConfig struct {
	File string `envconfig:"RULES_FILE"`
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load()
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            "8000",
			Host:            "0.0.0.0",
			ShutdownTimeout: 10 * time.Second,
		},
		Origin: OriginConfig{
			Fallback:     "https://example.com",
			Timeout:      15 * time.Second,
			MaxBodyBytes: 5 << 20,
		},
		Advisor: AdvisorConfig{
			Endpoint:        DefaultAdvisorEndpoint,
			Model:           "gemini-2.0-flash",
			Timeout:         8 * time.Second,
			RequestsPerSec:  20,
			BreakerFailures: 5,
		},
		Cache: CacheConfig{
			BrowserMaxAge: 300,
			EdgeMaxAge:    86400,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
