package services

import (
	"context"
	"errors"
	"fmt"

	"gopkg.in/gomail.v2"

	"github.com/daaqui-joyas/salesbot/internal/config"
	"github.com/daaqui-joyas/salesbot/internal/models"
)

// ErrNoAdmin is returned when no admin channel is configured.
var ErrNoAdmin = errors.New("no admin channel configured")

// WhatsAppNotifier sends admin alerts as WhatsApp messages.
type WhatsAppNotifier struct {
	sender MessageSender
	number string
}

// NewWhatsAppNotifier returns nil when number is empty.
func NewWhatsAppNotifier(sender MessageSender, number string) *WhatsAppNotifier {
	if number == "" {
		return nil
	}
	return &WhatsAppNotifier{sender: sender, number: number}
}

func (n *WhatsAppNotifier) NotifyAdmin(ctx context.Context, subject, body string) error {
	if err := n.sender.Send(ctx, n.number, models.Text(body)); err != nil {
		return flowError(ErrDelivery, "notify_admin", err)
	}
	return nil
}

// EmailNotifier mails a copy of admin alerts over SMTP.
type EmailNotifier struct {
	dialer *gomail.Dialer
	from   string
	to     string
}

// NewEmailNotifier returns nil unless both SMTP and the admin address are set.
func NewEmailNotifier(cfg config.SMTPConfig, to string) *EmailNotifier {
	if cfg.Host == "" || to == "" {
		return nil
	}
	return &EmailNotifier{
		dialer: gomail.NewDialer(cfg.Host, cfg.Port, cfg.User, cfg.Password),
		from:   cfg.From,
		to:     to,
	}
}

func (n *EmailNotifier) NotifyAdmin(ctx context.Context, subject, body string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", n.from)
	m.SetHeader("To", n.to)
	m.SetHeader("Subject", "[Daaqui] "+subject)
	m.SetBody("text/plain", body)

	if err := n.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// MultiNotifier fans an alert out to every channel. It fails only when all
// channels fail.
type MultiNotifier struct {
	channels []AdminNotifier
}

// NewMultiNotifier drops nil channels. It returns nil when none remain.
func NewMultiNotifier(channels ...AdminNotifier) *MultiNotifier {
	m := &MultiNotifier{}
	for _, c := range channels {
		if c == nil || isNilNotifier(c) {
			continue
		}
		m.channels = append(m.channels, c)
	}
	if len(m.channels) == 0 {
		return nil
	}
	return m
}

func isNilNotifier(n AdminNotifier) bool {
	switch v := n.(type) {
	case *WhatsAppNotifier:
		return v == nil
	case *EmailNotifier:
		return v == nil
	}
	return false
}

func (m *MultiNotifier) NotifyAdmin(ctx context.Context, subject, body string) error {
	if m == nil || len(m.channels) == 0 {
		return ErrNoAdmin
	}
	var errs []error
	for _, c := range m.channels {
		if err := c.NotifyAdmin(ctx, subject, body); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) == len(m.channels) {
		return errors.Join(errs...)
	}
	return nil
}
