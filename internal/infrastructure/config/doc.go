// Package config provides 12-factor configuration management for the edge optimizer.
//
// Configuration is loaded from environment variables with sensible defaults.
// CLI flags can override environment variables for development flexibility.
//
// Configuration Sections:
//   - Server: HTTP server settings (port, host, shutdown grace)
//   - Origin: default origin, fallback, fetch timeout, body cap, bypass globs
//   - Advisor: generative advisor credential, endpoint, timeout, breaker
//   - Cache: client and edge max-age on optimized responses
//   - Logging: Log level and output format
//   - RateLimit: Per-IP rate limiting configuration
//   - Admin: bcrypt hash guarding /_edge/inspect
//   - Rules: optional YAML/TOML rewrite rule tuning file
//
// Example Usage:
//
//	cfg := config.LoadOrDefault()
//	rules, err := config.LoadRules(cfg.Rules.File)
//
// Environment Variables:
//   - PORT, HOST, SHUTDOWN_TIMEOUT
//   - ORIGIN_DOMAIN, ORIGIN_FALLBACK, ORIGIN_TIMEOUT, ORIGIN_MAX_BODY_BYTES, ORIGIN_BYPASS_PATHS
//   - ADVISOR_API_KEY, ADVISOR_ENDPOINT, ADVISOR_MODEL, ADVISOR_TIMEOUT, ADVISOR_RPS, ADVISOR_BREAKER_FAILURES
//   - CACHE_BROWSER_MAX_AGE, CACHE_EDGE_MAX_AGE
//   - LOG_LEVEL, LOG_DEV
//   - RATE_LIMIT_RPS, RATE_LIMIT_BURST, RATE_LIMIT_ENABLED
//   - ADMIN_TOKEN_HASH, RULES_FILE
package config
