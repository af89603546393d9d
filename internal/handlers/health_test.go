package handlers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

type downStore struct {
	*storage.MemoryStore
}

func (downStore) Ping(ctx context.Context) error { return errors.New("connection refused") }

func TestHealthCheck(t *testing.T) {
	provider := catalog.NewStaticProvider(catalog.Defaults())

	app := fiber.New()
	app.Get("/health", NewHealthHandler("1.0.0", storage.NewMemoryStore(), provider, "log").Check)
	resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	body := readBody(t, resp)
	assert.Contains(t, body, `"status":"healthy"`)
	assert.Contains(t, body, `"kind":"memory"`)

	app = fiber.New()
	app.Get("/health", NewHealthHandler("1.0.0", downStore{storage.NewMemoryStore()}, provider, "log").Check)
	resp, err = app.Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "connection refused")
}
