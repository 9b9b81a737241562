package entrypoint

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/librarium/bookshelf/internal/config"
	"github.com/librarium/bookshelf/internal/tasks"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg := config.NewConfig()
	cfg.Database.Path = filepath.Join(t.TempDir(), "app.db")
	cfg.Database.LogLevel = "silent"
	cfg.Auth.BcryptCost = bcrypt.MinCost
	cfg.RateLimit.Enabled = false
	return cfg
}

func TestNewApp_WithTaskQueue(t *testing.T) {
	cfg := testConfig(t)

	app, err := NewApp(cfg, "test")
	require.NoError(t, err)
	defer app.Close(context.Background())

	require.NotNil(t, app.Tasks)
	require.NotNil(t, app.Scheduler)
	assert.True(t, app.Scheduler.IsRunning())

	_, err = os.Stat(tasks.DBPathFor(cfg.Database.Path))
	assert.NoError(t, err, "task queue database should exist next to the main database")

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	// Seeded data is reachable through the API
	w = httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/books/test", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "Test Book")
}

func TestNewApp_WithoutTaskQueue(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tasks.Enabled = false
	cfg.Ratings.ReconcileEnabled = false
	cfg.Global.SeedOnStart = false

	app, err := NewApp(cfg, "test")
	require.NoError(t, err)
	defer app.Close(context.Background())

	assert.Nil(t, app.Tasks)
	assert.Nil(t, app.Scheduler)

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"count":0}`, w.Body.String())
}

func TestNewApp_InvalidSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tasks.Enabled = false
	cfg.Ratings.ReconcileSchedule = "not a schedule"

	_, err := NewApp(cfg, "test")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "invalid cron schedule"))
}

func TestNewApp_CustomPrefix(t *testing.T) {
	cfg := testConfig(t)
	cfg.Tasks.Enabled = false
	cfg.API.Prefix = "/v2/"

	app, err := NewApp(cfg, "test")
	require.NoError(t, err)
	defer app.Close(context.Background())

	w := httptest.NewRecorder()
	app.Router.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/v2/books", nil))
	assert.Equal(t, http.StatusOK, w.Code)
}
