package app

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"marksight/internal/config"
	"marksight/internal/infrastructure"
)

func TestGenerateBuildID(t *testing.T) {
	id := generateBuildID()
	assert.Len(t, id, 12)
	assert.Regexp(t, regexp.MustCompile(`^[0-9a-f]{12}$`), id)
}

// NewApplication registers the prometheus exporter on the default
// registry, so this is the single test that constructs a full app.
func TestNewApplicationWiresDependencies(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	app, err := NewApplication()
	require.NoError(t, err)
	require.NotNil(t, app.Config)
	require.NotNil(t, app.Router)
	require.NotNil(t, app.Server)
	require.NotNil(t, app.ResultsService)
	require.NotNil(t, app.HealthService)
	require.NotNil(t, app.OTelProviders)

	assert.Equal(t, ":8080", app.Server.Addr)
	assert.Equal(t, app.Config.Server.ReadTimeout, app.Server.ReadTimeout)

	// Liveness probe through the full middleware stack.
	rec := httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.NotEmpty(t, rec.Header().Get("X-Request-ID"))

	// Reads before any upload surface the no-dataset problem.
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/dataset", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Contains(t, rec.Body.String(), "NO_DATASET")

	// Metrics endpoint is mounted when the prometheus exporter is on.
	rec = httptest.NewRecorder()
	app.Router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, app.Stop(context.Background()))
}

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func configWithDev(dev bool) *config.Config {
	cfg := config.Default()
	cfg.Logging.Development = dev
	return cfg
}

func TestGetCORSConfigDevelopmentOrigins(t *testing.T) {
	t.Cleanup(infrastructure.ResetLoggerForTesting)

	app := &Application{
		Config: configWithDev(true),
		Logger: testLogger(),
	}
	cfg := app.getCORSConfig()
	assert.Contains(t, cfg.AllowedOrigins, "http://localhost:3000")
	assert.Contains(t, cfg.ExposedHeaders, "Content-Disposition")
}

func TestGetCORSConfigProductionOrigins(t *testing.T) {
	app := &Application{
		Config: configWithDev(false),
		Logger: testLogger(),
	}
	cfg := app.getCORSConfig()
	assert.NotContains(t, cfg.AllowedOrigins, "http://localhost:3000")
	assert.Equal(t, []string{"http://localhost:8080"}, cfg.AllowedOrigins)
}
