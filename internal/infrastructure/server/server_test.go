package server

import (
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/GriffinCanCode/edgeoptimizer/internal/domain/pipeline"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/config"
	"github.com/GriffinCanCode/edgeoptimizer/internal/infrastructure/logging"
)

func testConfig(t *testing.T, originURL string) *config.Config {
	t.Helper()
	cfg := config.Default()
	cfg.Server.Port = "0"
	cfg.Origin.Domain = originURL
	cfg.Logging.Level = "error"
	return cfg
}

func TestNewServerServesProxyAndAdmin(t *testing.T) {
	origin := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		_, _ = io.WriteString(w, "<html><head><title>T</title></head><body></body></html>")
	}))
	defer origin.Close()

	srv, err := NewServer(testConfig(t, origin.URL))
	require.NoError(t, err)
	defer srv.Close()

	w := httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/page/", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "true", w.Header().Get(pipeline.HeaderOptimized))
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
	assert.NotEmpty(t, w.Header().Get("X-Trace-ID"))
	assert.Contains(t, w.Body.String(), `<base href="`+origin.URL+`">`)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/_edge/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	srv.Handler().ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/_edge/metrics", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "go_goroutines")
}

func TestBuildLoadsRules(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rules.yaml")
	require.NoError(t, os.WriteFile(path, []byte("above_fold_images: 4\npreconnect_limit: 3\n"), 0o644))

	cfg := testConfig(t, "")
	cfg.Rules.File = path
	parts, err := Build(cfg, logging.NewNop(), nil, nil)
	require.NoError(t, err)

	rules := parts.Engine.Rules()
	assert.Equal(t, 4, rules.AboveFoldImages)
	assert.Equal(t, 3, rules.PreconnectLimit)
	assert.Equal(t, 10, rules.DNSPrefetchLimit)
	assert.False(t, parts.Advisor.Enabled())
}

func TestBuildRejectsMissingRules(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Rules.File = filepath.Join(t.TempDir(), "missing.toml")

	_, err := Build(cfg, logging.NewNop(), nil, nil)
	assert.Error(t, err)
}

func TestNewServerRejectsBadLogLevel(t *testing.T) {
	cfg := testConfig(t, "")
	cfg.Logging.Level = "loud"

	_, err := NewServer(cfg)
	assert.Error(t, err)
}
