package di

import (
	"context"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/samber/do/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/erazemk/omara/internal/auth"
	"github.com/erazemk/omara/internal/config"
	"github.com/erazemk/omara/internal/di/providers"
	"github.com/erazemk/omara/internal/imagestore"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	return &config.Config{
		Environment: "development",
		Server: config.ServerConfig{
			Addr:           "127.0.0.1:0",
			RequestTimeout: 5 * time.Second,
			RateLimit:      100,
			RateBurst:      100,
		},
		Database: config.DatabaseConfig{
			Driver: "sqlite",
			DSN:    filepath.Join(t.TempDir(), "omara.sqlite3"),
		},
		Logger: config.LoggerConfig{Level: "info", Format: "text"},
		Auth:   config.AuthConfig{AdminUser: "admin"},
		Images: config.ImageConfig{
			Driver:    string(imagestore.DriverMemory),
			PublicURL: "http://localhost:8080",
		},
		Jobs: config.JobsConfig{SweepSchedule: "@every 1h"},
	}
}

func TestContainerWiring(t *testing.T) {
	injector := NewContainer(testConfig(t))
	require.NoError(t, Bootstrap(injector))

	server := do.MustInvoke[*providers.HTTPServerHandle](injector)
	rec := httptest.NewRecorder()
	server.Handler.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/health", nil))
	assert.Equal(t, http.StatusOK, rec.Code)

	// A fresh database file gets the full schema.
	database := do.MustInvoke[*providers.DatabaseHandle](injector)
	for _, table := range []string{"users", "bags", "clothes", "moves", "settings", "revoked_tokens", "pending_image_deletions"} {
		var n int
		assert.NoError(t, database.QueryRowContext(context.Background(), "SELECT COUNT(*) FROM "+table).Scan(&n), table)
	}

	// The JWT secret is created once and reused.
	verifier := do.MustInvoke[*auth.Verifier](injector)
	assert.NotEmpty(t, verifier.Secret)

	report := injector.ShutdownWithContext(context.Background())
	assert.True(t, report.Succeed, report.Error())
}

func TestBootstrapFailsOnBadDatabase(t *testing.T) {
	cfg := testConfig(t)
	cfg.Database.DSN = filepath.Join(t.TempDir(), "missing-dir", "omara.sqlite3")

	injector := NewContainer(cfg)
	defer injector.Shutdown()
	assert.Error(t, Bootstrap(injector))
}
