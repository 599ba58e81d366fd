package web

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/glebarez/sqlite"
	"github.com/gofiber/fiber/v3"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/confstore/confstore/internal/config"
	"github.com/confstore/confstore/internal/configstore"
	"github.com/confstore/confstore/internal/db/models"
	"github.com/confstore/confstore/internal/web/handler"
)

func testConfig() *config.Config {
	return &config.Config{
		Title: "confstore-test",
		Webserver: config.Webserver{
			Port:          8080,
			URL:           "http://localhost:8080",
			FastShutDown:  true,
			CheckAliveURI: "/checkalive",
			MetricsURI:    "/metrics",
		},
		Store: config.Store{OwnerHeader: "X-Config-Owner", DefaultLimit: 10},
	}
}

func setupTestService(t *testing.T) *Service {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, db.AutoMigrate(&models.ConfigRecord{}))

	svc, err := New(testConfig(), configstore.New(db, configstore.Options{}))
	require.NoError(t, err)

	return svc
}

func TestNewNil(t *testing.T) {
	_, err := New(nil, nil)
	require.Error(t, err)

	_, err = New(testConfig(), nil)
	require.Error(t, err)
}

func TestCheckAlive(t *testing.T) {
	svc := setupTestService(t)

	resp, err := svc.App.Test(httptest.NewRequest(fiber.MethodGet, "/checkalive", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.True(t, svc.Alive())

	svc.alive.Store(false)

	resp, err = svc.App.Test(httptest.NewRequest(fiber.MethodGet, "/checkalive", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusServiceUnavailable, resp.StatusCode)
}

func TestMetrics(t *testing.T) {
	svc := setupTestService(t)

	resp, err := svc.App.Test(httptest.NewRequest(fiber.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "go_goroutines")
}

func TestUnknownRoute(t *testing.T) {
	svc := setupTestService(t)

	resp, err := svc.App.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/nothing", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	var env handler.Response
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&env))
	assert.Equal(t, handler.I18nRouteNotFound, env.I18n)
}

func TestOwnerHeaderScopesRequests(t *testing.T) {
	svc := setupTestService(t)

	req := httptest.NewRequest(fiber.MethodPost, "/api/v1/config/set", strings.NewReader(`{"key":"theme","value":"dark"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	req.Header.Set("X-Config-Owner", "Alice")

	resp, err := svc.App.Test(req)
	require.NoError(t, err)
	require.Equal(t, fiber.StatusOK, resp.StatusCode)
	assert.NotEmpty(t, resp.Header.Get(fiber.HeaderXRequestID))

	req = httptest.NewRequest(fiber.MethodGet, "/api/v1/config/get/theme", nil)
	req.Header.Set("X-Config-Owner", "bob")

	resp, err = svc.App.Test(req)
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusNotFound, resp.StatusCode)

	// no owner reads across owners
	resp, err = svc.App.Test(httptest.NewRequest(fiber.MethodGet, "/api/v1/config/get/theme", nil))
	require.NoError(t, err)
	assert.Equal(t, fiber.StatusOK, resp.StatusCode)
}

func TestShutdown(t *testing.T) {
	svc := setupTestService(t)

	svc.Shutdown()
	assert.True(t, svc.Alive(), "fast shutdown skips the 503 phase")
}
