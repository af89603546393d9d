package services

import (
	"context"
	"log/slog"
	"strings"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
)

// MessageSender delivers one outbound message to a WhatsApp number.
type MessageSender interface {
	Send(ctx context.Context, to string, msg models.OutboundMessage) error
	Name() string
}

// LogSender only logs messages. It is used in development when no WhatsApp
// provider is configured.
type LogSender struct{}

// NewLogSender creates a LogSender.
func NewLogSender() *LogSender { return &LogSender{} }

func (s *LogSender) Name() string { return "log" }

func (s *LogSender) Send(ctx context.Context, to string, msg models.OutboundMessage) error {
	logger.Msg.Info("outbound message",
		slog.String("event", "msg.logged"),
		slog.String("to", to),
		slog.String("kind", string(msg.Kind)),
		slog.String("text", msg.Text),
		slog.String("image", msg.ImageURL),
		slog.Int("options", len(msg.Options)),
	)
	return nil
}

// plainText renders a choice as text for channels without reply buttons.
// The option titles are listed so the customer can type one back.
func plainText(msg models.OutboundMessage) string {
	if msg.Kind != models.OutChoice || len(msg.Options) == 0 {
		return msg.Text
	}
	var b strings.Builder
	b.WriteString(msg.Text)
	b.WriteString("\n")
	for _, opt := range msg.Options {
		b.WriteString("\n👉🏽 *")
		b.WriteString(opt.Title)
		b.WriteString("*")
	}
	return b.String()
}
