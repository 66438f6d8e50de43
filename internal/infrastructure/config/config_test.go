package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	// Server config
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)

	// Origin config
	assert.Empty(t, cfg.Origin.Domain)
	assert.Equal(t, "https://example.com", cfg.Origin.Fallback)
	assert.Equal(t, int64(5<<20), cfg.Origin.MaxBodyBytes)
	assert.Equal(t, 15*time.Second, cfg.Origin.Timeout)

	// Advisor config
	assert.False(t, cfg.Advisor.Enabled())
	assert.Equal(t, DefaultAdvisorEndpoint, cfg.Advisor.Endpoint)
	assert.Equal(t, 8*time.Second, cfg.Advisor.Timeout)

	// Cache config
	assert.Equal(t, "public, max-age=300, s-maxage=86400", cfg.Cache.Header())

	// Logging config
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Logging.Development)

	// Rate limit config
	assert.Equal(t, 100, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 200, cfg.RateLimit.Burst)
	assert.True(t, cfg.RateLimit.Enabled)
}

func TestLoadMatchesDefault(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	if os.Getenv("ORIGIN_DOMAIN") == "" && os.Getenv("ADVISOR_API_KEY") == "" {
		assert.Equal(t, Default().Origin, cfg.Origin)
		assert.Equal(t, Default().Advisor, cfg.Advisor)
	}
}

func TestLoadOrDefault(t *testing.T) {
	// Should return default when no env vars set
	cfg := LoadOrDefault()

	assert.NotNil(t, cfg)
	assert.Equal(t, "8000", cfg.Server.Port)
	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoadWithEnvironmentVariables(t *testing.T) {
	envVars := map[string]string{
		"PORT":                  "9000",
		"HOST":                  "127.0.0.1",
		"ORIGIN_DOMAIN":         "shop.example.org",
		"ORIGIN_TIMEOUT":        "3s",
		"ORIGIN_MAX_BODY_BYTES": "1024",
		"ORIGIN_BYPASS_PATHS":   "/wp-admin/**,**/*.xml",
		"ADVISOR_API_KEY":       "secret",
		"ADVISOR_TIMEOUT":       "2s",
		"CACHE_BROWSER_MAX_AGE": "60",
		"CACHE_EDGE_MAX_AGE":    "600",
		"LOG_LEVEL":             "debug",
		"LOG_DEV":               "true",
		"RATE_LIMIT_RPS":        "500",
		"RATE_LIMIT_BURST":      "1000",
		"RATE_LIMIT_ENABLED":    "false",
		"RULES_FILE":            "/etc/edge/rules.yaml",
	}
	for key, value := range envVars {
		t.Setenv(key, value)
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.Server.Port)
	assert.Equal(t, "127.0.0.1", cfg.Server.Host)

	assert.Equal(t, "shop.example.org", cfg.Origin.Domain)
	assert.Equal(t, 3*time.Second, cfg.Origin.Timeout)
	assert.Equal(t, int64(1024), cfg.Origin.MaxBodyBytes)
	assert.Equal(t, []string{"/wp-admin/**", "**/*.xml"}, cfg.Origin.BypassPaths)

	assert.True(t, cfg.Advisor.Enabled())
	assert.Equal(t, 2*time.Second, cfg.Advisor.Timeout)

	assert.Equal(t, "public, max-age=60, s-maxage=600", cfg.Cache.Header())

	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.True(t, cfg.Logging.Development)

	assert.Equal(t, 500, cfg.RateLimit.RequestsPerSecond)
	assert.Equal(t, 1000, cfg.RateLimit.Burst)
	assert.False(t, cfg.RateLimit.Enabled)

	assert.Equal(t, "/etc/edge/rules.yaml", cfg.Rules.File)
}

func TestLoadInvalidDuration(t *testing.T) {
	t.Setenv("ADVISOR_TIMEOUT", "soon")

	_, err := Load()
	assert.Error(t, err)

	// LoadOrDefault falls back instead of failing
	cfg := LoadOrDefault()
	assert.Equal(t, 8*time.Second, cfg.Advisor.Timeout)
}

func TestLoadRulesEmptyPath(t *testing.T) {
	rules, err := LoadRules("")
	require.NoError(t, err)
	assert.Equal(t, 5, rules.PreconnectLimit)
	assert.Equal(t, 10, rules.DNSPrefetchLimit)
	assert.Equal(t, 2, rules.AboveFoldImages)
	assert.Contains(t, rules.TrackingMarkers, "gtag")
}

func TestParseRules(t *testing.T) {
	tests := []struct {
		name string
		ext  string
		data string
	}{
		{
			name: "yaml",
			ext:  ".yaml",
			data: "above_fold_images: 3\ntracking_markers:\n  - plausible\n",
		},
		{
			name: "yml upper",
			ext:  ".YML",
			data: "above_fold_images: 3\ntracking_markers: [plausible]\n",
		},
		{
			name: "toml",
			ext:  ".toml",
			data: "above_fold_images = 3\ntracking_markers = [\"plausible\"]\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rules, err := ParseRules([]byte(tt.data), tt.ext)
			require.NoError(t, err)

			assert.Equal(t, 3, rules.AboveFoldImages)
			assert.Equal(t, []string{"plausible"}, rules.TrackingMarkers)
			// unset fields keep defaults
			assert.Equal(t, 5, rules.PreconnectLimit)
			assert.NotEmpty(t, rules.DeferredStyleMarkers)
			assert.Equal(t, "Optimized by Edge Optimizer", rules.Attribution)
		})
	}
}

func TestParseRulesErrors(t *testing.T) {
	_, err := ParseRules([]byte("{}"), ".json")
	assert.Error(t, err)

	_, err = ParseRules([]byte("above_fold_images = ["), ".toml")
	assert.Error(t, err)
}

func TestLoadRulesFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.toml")
	require.NoError(t, os.WriteFile(path, []byte("preconnect_limit = 3\ndns_prefetch_limit = 6\n"), 0o644))

	rules, err := LoadRules(path)
	require.NoError(t, err)
	assert.Equal(t, 3, rules.PreconnectLimit)
	assert.Equal(t, 6, rules.DNSPrefetchLimit)

	_, err = LoadRules(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
