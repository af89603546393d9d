package handlers

import (
	"context"
	"encoding/json"
	"log/slog"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
)

// InboundHandler processes one normalized inbound message.
type InboundHandler interface {
	HandleInbound(ctx context.Context, in models.Inbound) error
}

// WhatsAppHandler handles WhatsApp webhook requests
type WhatsAppHandler struct {
	conversation InboundHandler
	verifyToken  string
}

// NewWhatsAppHandler creates a new WhatsApp handler
func NewWhatsAppHandler(conversation InboundHandler, verifyToken string) *WhatsAppHandler {
	return &WhatsAppHandler{conversation: conversation, verifyToken: verifyToken}
}

// VerifyWebhook answers the Meta subscription handshake.
func (h *WhatsAppHandler) VerifyWebhook(c *fiber.Ctx) error {
	mode := c.Query("hub.mode")
	token := c.Query("hub.verify_token")
	challenge := c.Query("hub.challenge")

	if mode == "subscribe" && h.verifyToken != "" && token == h.verifyToken {
		logger.HTTP.Info("webhook verified", slog.String("event", "http.webhook_verified"))
		return c.Status(fiber.StatusOK).SendString(challenge)
	}
	logger.HTTP.Warn("webhook verification failed", slog.String("event", "http.webhook_verify_failed"), slog.String("mode", mode))
	return c.SendStatus(fiber.StatusForbidden)
}

// CloudWebhookPayload is the part of the Meta webhook body the bot reads.
type CloudWebhookPayload struct {
	Object string `json:"object"`
	Entry  []struct {
		Changes []struct {
			Value struct {
				Contacts []struct {
					WaID    string `json:"wa_id"`
					Profile struct {
						Name string `json:"name"`
					} `json:"profile"`
				} `json:"contacts"`
				Messages []CloudInboundMessage `json:"messages"`
			} `json:"value"`
		} `json:"changes"`
	} `json:"entry"`
}

// CloudInboundMessage is one message inside a Meta webhook.
type CloudInboundMessage struct {
	From string `json:"from"`
	ID   string `json:"id"`
	Type string `json:"type"`
	Text *struct {
		Body string `json:"body"`
	} `json:"text,omitempty"`
	Interactive *struct {
		Type        string `json:"type"`
		ButtonReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"button_reply,omitempty"`
		ListReply *struct {
			ID    string `json:"id"`
			Title string `json:"title"`
		} `json:"list_reply,omitempty"`
	} `json:"interactive,omitempty"`
	Button *struct {
		Payload string `json:"payload"`
		Text    string `json:"text"`
	} `json:"button,omitempty"`
}

// ParseCloudWebhook extracts the inbound messages of a Meta webhook body.
// Status updates carry no messages and yield an empty slice.
func ParseCloudWebhook(body []byte) ([]models.Inbound, error) {
	var payload CloudWebhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, err
	}

	var out []models.Inbound
	for _, entry := range payload.Entry {
		for _, change := range entry.Changes {
			names := make(map[string]string)
			for _, contact := range change.Value.Contacts {
				names[contact.WaID] = contact.Profile.Name
			}
			for _, msg := range change.Value.Messages {
				in := models.Inbound{UserID: msg.From, DisplayName: names[msg.From]}
				switch msg.Type {
				case "text":
					in.Kind = models.KindText
					if msg.Text != nil {
						in.Payload = msg.Text.Body
					}
				case "interactive":
					in.Kind = models.KindButton
					if msg.Interactive != nil && msg.Interactive.ButtonReply != nil {
						in.Payload = msg.Interactive.ButtonReply.ID
					} else if msg.Interactive != nil && msg.Interactive.ListReply != nil {
						in.Payload = msg.Interactive.ListReply.ID
					}
				case "button":
					in.Kind = models.KindButton
					if msg.Button != nil {
						in.Payload = msg.Button.Payload
						if in.Payload == "" {
							in.Payload = msg.Button.Text
						}
					}
				case "image":
					in.Kind = models.KindImage
				default:
					in.Kind = models.KindOther
				}
				out = append(out, in)
			}
		}
	}
	return out, nil
}

// ReceiveCloud processes a Meta Cloud API webhook. Once the body parses the
// answer is always 200 so Meta does not retry.
func (h *WhatsAppHandler) ReceiveCloud(c *fiber.Ctx) error {
	messages, err := ParseCloudWebhook(c.Body())
	if err != nil {
		logger.HTTP.Warn("invalid webhook payload", slog.String("event", "http.webhook_invalid"), slog.Any("error", err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}
	h.process(c.UserContext(), messages)
	return c.SendStatus(fiber.StatusOK)
}

// TwilioWebhookPayload represents incoming WhatsApp message from Twilio
type TwilioWebhookPayload struct {
	MessageSid        string `form:"MessageSid"`
	AccountSid        string `form:"AccountSid"`
	From              string `form:"From"` // whatsapp:+51987654321
	To                string `form:"To"`
	Body              string `form:"Body"`
	ProfileName       string `form:"ProfileName"`
	ButtonPayload     string `form:"ButtonPayload"`
	NumMedia          string `form:"NumMedia"`
	MediaUrl0         string `form:"MediaUrl0"`
	MediaContentType0 string `form:"MediaContentType0"`
}

// Inbound converts the Twilio form into a normalized message. ok is false
// for callbacks that carry no message.
func (p TwilioWebhookPayload) Inbound() (models.Inbound, bool) {
	in := models.Inbound{
		UserID:      strings.TrimPrefix(p.From, "whatsapp:"),
		DisplayName: p.ProfileName,
	}
	if in.UserID == "" {
		return in, false
	}
	media, _ := strconv.Atoi(p.NumMedia)
	switch {
	case media > 0 && strings.HasPrefix(p.MediaContentType0, "image/"):
		in.Kind = models.KindImage
	case media > 0:
		in.Kind = models.KindOther
	case p.ButtonPayload != "":
		in.Kind = models.KindButton
		in.Payload = p.ButtonPayload
	case p.Body != "":
		in.Kind = models.KindText
		in.Payload = p.Body
	default:
		return in, false
	}
	return in, true
}

// ReceiveTwilio processes a Twilio WhatsApp webhook.
func (h *WhatsAppHandler) ReceiveTwilio(c *fiber.Ctx) error {
	var payload TwilioWebhookPayload
	if err := c.BodyParser(&payload); err != nil {
		logger.HTTP.Warn("invalid twilio payload", slog.String("event", "http.webhook_invalid"), slog.Any("error", err))
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid webhook payload",
		})
	}
	if in, ok := payload.Inbound(); ok {
		h.process(c.UserContext(), []models.Inbound{in})
	}
	return c.SendStatus(fiber.StatusOK)
}

// TestWebhookPayload feeds the funnel without a provider, for development.
type TestWebhookPayload struct {
	From    string `json:"from"`
	Name    string `json:"name"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// HandleTestWebhook processes test WhatsApp messages (for development)
func (h *WhatsAppHandler) HandleTestWebhook(c *fiber.Ctx) error {
	var payload TestWebhookPayload
	if err := c.BodyParser(&payload); err != nil || payload.From == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid test payload",
		})
	}
	kind := models.MessageKind(payload.Kind)
	if kind == "" {
		kind = models.KindText
	}
	in := models.Inbound{UserID: payload.From, DisplayName: payload.Name, Kind: kind, Payload: payload.Message}
	if err := h.conversation.HandleInbound(c.UserContext(), in); err != nil {
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{"error": err.Error()})
	}
	return c.JSON(fiber.Map{"success": true})
}

func (h *WhatsAppHandler) process(ctx context.Context, messages []models.Inbound) {
	for _, in := range messages {
		if err := h.conversation.HandleInbound(ctx, in); err != nil {
			logger.HTTP.Error("failed to process message",
				slog.String("event", "http.process_failed"),
				slog.String("user_id", in.UserID),
				slog.Any("error", err),
			)
		}
	}
}
