package logger

import (
	"io"
	"log/slog"
	"os"
	"strings"
)

var (
	// L is the base logger.
	L *slog.Logger

	// Flow logs conversation state machine events.
	Flow *slog.Logger
	// Store logs persistence events.
	Store *slog.Logger
	// HTTP logs webhook and API handler events.
	HTTP *slog.Logger
	// Msg logs outbound WhatsApp delivery.
	Msg *slog.Logger
	// Sale logs checkout and ledger events.
	Sale *slog.Logger
	// Config logs catalog and rules loading.
	Config *slog.Logger
)

func init() {
	wire(slog.Default())
}

// Init configures the global structured logger.
func Init(level, format string) {
	InitWriter(os.Stdout, level, format)
}

// InitWriter is Init with an explicit destination.
func InitWriter(w io.Writer, level, format string) {
	opts := &slog.HandlerOptions{Level: parseLevel(level)}
	var handler slog.Handler
	if strings.EqualFold(format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}
	l := slog.New(handler)
	slog.SetDefault(l)
	wire(l)
}

// Discard silences every component logger. Tests call it to keep output clean.
func Discard() {
	wire(slog.New(slog.NewTextHandler(io.Discard, nil)))
}

func wire(l *slog.Logger) {
	L = l
	Flow = l.With("component", "flow")
	Store = l.With("component", "store")
	HTTP = l.With("component", "http")
	Msg = l.With("component", "whatsapp")
	Sale = l.With("component", "sale")
	Config = l.With("component", "config")
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}
