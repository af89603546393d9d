package handlers

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/services"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

// AdminAlerter forwards free-form alerts to the business owner.
type AdminAlerter interface {
	NotifyAdmin(ctx context.Context, message string) error
}

// ConfigRefresher reloads the business configuration.
type ConfigRefresher interface {
	Refresh(ctx context.Context) (*catalog.Snapshot, error)
}

// AdminHandler handles admin operations
type AdminHandler struct {
	alerter AdminAlerter
	config  ConfigRefresher
	ledger  storage.LedgerStore
	loc     *time.Location
}

// NewAdminHandler creates a new admin handler
func NewAdminHandler(alerter AdminAlerter, config ConfigRefresher, ledger storage.LedgerStore, loc *time.Location) *AdminHandler {
	return &AdminHandler{
		alerter: alerter,
		config:  config,
		ledger:  ledger,
		loc:     loc,
	}
}

// NotifyAdmin forwards a message to the admin channels.
func (h *AdminHandler) NotifyAdmin(c *fiber.Ctx) error {
	var req struct {
		Message string `json:"message"`
	}
	if err := c.BodyParser(&req); err != nil || strings.TrimSpace(req.Message) == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Falta el mensaje",
		})
	}

	if err := h.alerter.NotifyAdmin(c.UserContext(), req.Message); err != nil {
		logger.HTTP.Error("admin notification failed", slog.String("event", "http.notify_admin_failed"), slog.Any("error", err))
		if errors.Is(err, services.ErrNoAdmin) {
			return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
				"error": "Administrador no configurado",
			})
		}
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{
			"error": "No se pudo notificar al administrador",
		})
	}
	return c.JSON(fiber.Map{"status": "notificación enviada"})
}

// RefreshConfig reloads products, rules, FAQ and campaign settings.
func (h *AdminHandler) RefreshConfig(c *fiber.Ctx) error {
	snap, err := h.config.Refresh(c.UserContext())
	if err != nil {
		logger.HTTP.Error("config refresh failed", slog.String("event", "http.config_refresh_failed"), slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo recargar la configuración",
		})
	}
	return c.JSON(fiber.Map{
		"status":    "configuración recargada",
		"source":    snap.Source,
		"missing":   snap.Missing,
		"products":  len(snap.Products),
		"loaded_at": snap.LoadedAt,
	})
}

// ExportLedger streams the ledger as CSV in spreadsheet column order.
func (h *AdminHandler) ExportLedger(c *fiber.Ctx) error {
	rows, err := h.ledger.ListLedgerRows(c.UserContext())
	if err != nil {
		logger.HTTP.Error("ledger export failed", slog.String("event", "http.ledger_export_failed"), slog.Any("error", err))
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "No se pudo leer el registro de ventas",
		})
	}

	c.Set(fiber.HeaderContentType, "text/csv; charset=utf-8")
	c.Set(fiber.HeaderContentDisposition, fmt.Sprintf(`attachment; filename="ventas-%s.csv"`, time.Now().In(h.loc).Format("20060102")))

	w := csv.NewWriter(c)
	if err := w.Write(models.LedgerHeader); err != nil {
		return err
	}
	for _, row := range rows {
		if err := w.Write(row.Cells(h.loc)); err != nil {
			return err
		}
	}
	w.Flush()
	return w.Error()
}
