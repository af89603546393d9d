package handlers

import (
	"context"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
)

// HealthStore is the storage view needed by the health check.
type HealthStore interface {
	Ping(ctx context.Context) error
	Kind() string
	CountSessions(ctx context.Context) (int64, error)
}

// HealthHandler handles health check requests
type HealthHandler struct {
	Version  string
	store    HealthStore
	catalog  *catalog.Provider
	provider string
}

// NewHealthHandler creates a new health handler
func NewHealthHandler(version string, store HealthStore, provider *catalog.Provider, gateway string) *HealthHandler {
	return &HealthHandler{
		Version:  version,
		store:    store,
		catalog:  provider,
		provider: gateway,
	}
}

// Check returns the health status of the service
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 3*time.Second)
	defer cancel()

	status := "healthy"
	code := fiber.StatusOK
	storeStatus := "connected"
	if err := h.store.Ping(ctx); err != nil {
		status = "unhealthy"
		code = fiber.StatusServiceUnavailable
		storeStatus = "error: " + err.Error()
	}
	sessions, _ := h.store.CountSessions(ctx)

	snap := h.catalog.Current()
	return c.Status(code).JSON(fiber.Map{
		"status":  status,
		"service": "Daaqui Joyas Sales Bot",
		"version": h.Version,
		"storage": fiber.Map{
			"kind":     h.store.Kind(),
			"status":   storeStatus,
			"sessions": sessions,
		},
		"whatsapp": fiber.Map{
			"provider": h.provider,
		},
		"config": fiber.Map{
			"source":    snap.Source,
			"loaded_at": snap.LoadedAt,
			"missing":   snap.Missing,
			"products":  len(snap.Products),
		},
	})
}
