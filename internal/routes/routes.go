package routes

import (
	"log/slog"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/adaptor"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/daaqui-joyas/salesbot/internal/config"
	"github.com/daaqui-joyas/salesbot/internal/handlers"
	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/middleware"
)

// Handlers groups every HTTP handler the routes need.
type Handlers struct {
	WhatsApp *handlers.WhatsAppHandler
	Tracking *handlers.TrackingHandler
	Admin    *handlers.AdminHandler
	Health   *handlers.HealthHandler
}

// SetupRoutes configures all API routes
func SetupRoutes(app *fiber.App, cfg *config.Config, h Handlers) {
	app.Get("/", func(c *fiber.Ctx) error {
		return c.JSON(fiber.Map{
			"message": "Daaqui Joyas Sales Bot",
			"endpoints": fiber.Map{
				"health":   "/health",
				"metrics":  "/metrics",
				"webhook":  "/api/webhook",
				"twilio":   "/webhook/twilio",
				"tracking": "/api/send-tracking",
			},
		})
	})

	app.Get("/health", h.Health.Check)
	app.Get("/metrics", adaptor.HTTPHandler(promhttp.Handler()))

	api := app.Group("/api")

	// ========== WEBHOOK ROUTES ==========
	api.Get("/webhook", h.WhatsApp.VerifyWebhook)
	if cfg.WebhookValidation() && cfg.WhatsApp.AppSecret != "" {
		api.Post("/webhook", middleware.ValidateMetaSignature(cfg.WhatsApp.AppSecret), h.WhatsApp.ReceiveCloud)
	} else {
		api.Post("/webhook", h.WhatsApp.ReceiveCloud)
		logger.HTTP.Warn("meta webhook signature validation disabled", slog.String("event", "http.validation_disabled"))
	}

	webhooks := app.Group("/webhook")
	if cfg.WebhookValidation() && cfg.Twilio.AuthToken != "" {
		webhooks.Post("/twilio", middleware.ValidateTwilioSignature(cfg.Twilio.AuthToken), h.WhatsApp.ReceiveTwilio)
	} else {
		webhooks.Post("/twilio", h.WhatsApp.ReceiveTwilio)
	}

	// ========== AUTOMATION ROUTES ==========
	secured := middleware.RequireBearer(cfg.MakeSecretToken)
	api.Post("/send-tracking", secured, h.Tracking.SendTracking)
	api.Post("/notify-admin", secured, h.Admin.NotifyAdmin)
	api.Post("/config/refresh", secured, h.Admin.RefreshConfig)
	api.Get("/ledger.csv", secured, h.Admin.ExportLedger)

	// ========== TEST ROUTES (Development Only) ==========
	if cfg.IsDevelopment() {
		app.Post("/test/whatsapp", h.WhatsApp.HandleTestWebhook)
	}
}
