package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"log/slog"

	"github.com/gofiber/fiber/v2"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/services"
)

// TrackingSender sends shipment tracking messages.
type TrackingSender interface {
	SendTracking(ctx context.Context, req services.TrackingRequest) error
}

// TrackingHandler serves the automation endpoint that ships tracking codes.
type TrackingHandler struct {
	sender TrackingSender
}

// NewTrackingHandler creates a tracking handler
func NewTrackingHandler(sender TrackingSender) *TrackingHandler {
	return &TrackingHandler{sender: sender}
}

// flexString accepts both JSON strings and numbers. Automations often send
// phone numbers as numbers.
type flexString string

func (f *flexString) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		*f = ""
		return nil
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*f = flexString(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*f = flexString(n.String())
	return nil
}

type trackingRequest struct {
	ToNumber   flexString `json:"to_number"`
	OrderNo    flexString `json:"nro_orden"`
	PickupCode flexString `json:"codigo_recojo"`
}

// SendTracking sends the Shalom tracking messages to a customer.
func (h *TrackingHandler) SendTracking(c *fiber.Ctx) error {
	var req trackingRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid request body"})
	}

	err := h.sender.SendTracking(c.UserContext(), services.TrackingRequest{
		ToNumber:   string(req.ToNumber),
		OrderNo:    string(req.OrderNo),
		PickupCode: string(req.PickupCode),
	})
	switch {
	case errors.Is(err, services.ErrInvalidRequest):
		logger.HTTP.Warn("tracking request missing fields", slog.String("event", "http.tracking_invalid"))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Faltan parámetros"})
	case err != nil:
		logger.HTTP.Error("tracking delivery failed", slog.String("event", "http.tracking_failed"), slog.Any("error", err))
		return c.Status(fiber.StatusBadGateway).JSON(fiber.Map{"error": "No se pudieron enviar los mensajes"})
	}
	return c.JSON(fiber.Map{"status": "mensajes enviados"})
}
