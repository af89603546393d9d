package services

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/twilio/twilio-go"
	twilioApi "github.com/twilio/twilio-go/rest/api/v2010"

	"github.com/daaqui-joyas/salesbot/internal/config"
	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/utils"
)

// TwilioSender sends WhatsApp messages through the Twilio Messages API.
// Reply buttons are rendered as text because free-form Twilio messages have none.
type TwilioSender struct {
	client *twilio.RestClient
	from   string // Format: "whatsapp:+14155238886"
}

// NewTwilioSender creates a new Twilio sender
func NewTwilioSender(cfg config.TwilioConfig) (*TwilioSender, error) {
	if cfg.AccountSID == "" || cfg.AuthToken == "" || cfg.WhatsAppFrom == "" {
		return nil, fmt.Errorf("missing Twilio credentials")
	}

	client := twilio.NewRestClientWithParams(twilio.ClientParams{
		Username: cfg.AccountSID,
		Password: cfg.AuthToken,
	})

	return &TwilioSender{client: client, from: cfg.WhatsAppFrom}, nil
}

func (t *TwilioSender) Name() string { return config.ProviderTwilio }

// Send sends a WhatsApp message via Twilio
func (t *TwilioSender) Send(ctx context.Context, to string, msg models.OutboundMessage) error {
	params := &twilioApi.CreateMessageParams{}
	params.SetFrom(t.from)
	params.SetTo(utils.WhatsAppAddress(to))
	if msg.Kind == models.OutImage {
		params.SetMediaUrl([]string{msg.ImageURL})
	} else {
		params.SetBody(plainText(msg))
	}

	resp, err := t.client.Api.CreateMessage(params)
	if err != nil {
		return fmt.Errorf("failed to send whatsapp message: %w", err)
	}
	if resp.ErrorCode != nil && *resp.ErrorCode != 0 {
		detail := ""
		if resp.ErrorMessage != nil {
			detail = *resp.ErrorMessage
		}
		return fmt.Errorf("twilio error %d: %s", *resp.ErrorCode, detail)
	}

	if resp.Sid != nil {
		logger.Msg.Debug("twilio message accepted", slog.String("sid", *resp.Sid), slog.String("to", to))
	}
	return nil
}
