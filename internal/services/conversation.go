package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime/debug"
	"sync"
	"time"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/metrics"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/storage"
	"github.com/daaqui-joyas/salesbot/internal/utils"
)

const defaultDisplayName = "Usuario"

// ConversationConfig tunes the dispatcher.
type ConversationConfig struct {
	SessionTTL  time.Duration
	PauseMax    time.Duration
	AdminNumber string
}

// Conversation routes every inbound WhatsApp message: admin commands,
// pending-sale follow-ups, cancellation, session expiry and finally the
// sales funnel. Messages from the same user are handled one at a time.
type Conversation struct {
	store   storage.Store
	catalog *catalog.Provider
	machine *Machine
	sender  MessageSender
	admin   AdminNotifier
	cfg     ConversationConfig
	locks   *keyedMutex
	now     func() time.Time
	sleep   func(ctx context.Context, d time.Duration)
}

// NewConversation wires the dispatcher. admin may be nil.
func NewConversation(store storage.Store, provider *catalog.Provider, machine *Machine, sender MessageSender, admin AdminNotifier, cfg ConversationConfig) *Conversation {
	if cfg.SessionTTL <= 0 {
		cfg.SessionTTL = 2 * time.Hour
	}
	cfg.AdminNumber = utils.NormalizePhone(cfg.AdminNumber)
	return &Conversation{
		store:   store,
		catalog: provider,
		machine: machine,
		sender:  sender,
		admin:   admin,
		cfg:     cfg,
		locks:   newKeyedMutex(),
		now:     time.Now,
		sleep:   sleepContext,
	}
}

// Sender returns the outbound gateway.
func (c *Conversation) Sender() MessageSender { return c.sender }

// Admin returns the admin notifier, nil when none is configured.
func (c *Conversation) Admin() AdminNotifier { return c.admin }

// HandleInbound processes one inbound message end to end. Failures are
// logged and answered to the user where possible; the returned error is
// only for the caller's logs.
func (c *Conversation) HandleInbound(ctx context.Context, in models.Inbound) (err error) {
	in.UserID = utils.NormalizePhone(in.UserID)
	if in.UserID == "" {
		return fmt.Errorf("inbound message without sender")
	}
	unlock := c.locks.Lock(in.UserID)
	defer unlock()
	defer func() {
		if r := recover(); r != nil {
			metrics.RecordError("panic")
			logger.Flow.Error("panic while handling message",
				slog.String("event", "flow.panic"),
				slog.String("user_id", in.UserID),
				slog.Any("panic", r),
				slog.String("stack", string(debug.Stack())),
			)
			err = fmt.Errorf("panic: %v", r)
		}
	}()

	metrics.RecordMessageReceived(string(in.Kind))
	if in.DisplayName == "" {
		in.DisplayName = defaultDisplayName
	}
	snap := c.catalog.Current()
	now := c.now()

	session, gerr := c.store.GetSession(ctx, in.UserID)
	if gerr != nil {
		if !errors.Is(gerr, storage.ErrNotFound) {
			metrics.RecordError(KindName(ErrPersistence))
			logger.Flow.Warn("failed to read session, continuing without one",
				slog.String("event", "flow.session_read_failed"),
				slog.String("user_id", in.UserID),
				slog.Any("error", gerr),
			)
		}
		session = nil
	}
	expired := session != nil && session.Stale(now, c.cfg.SessionTTL)

	active := session
	if expired {
		active = nil
	}
	text, ok := canonicalInput(in, active)
	if !ok {
		c.deliver(ctx, in.UserID, []models.OutboundMessage{models.Text(msgUnsupportedKind)})
		return nil
	}
	in.Payload = text
	logger.Flow.Debug("inbound message",
		slog.String("event", "flow.inbound"),
		slog.String("user_id", in.UserID),
		slog.String("kind", string(in.Kind)),
		slog.String("text", text),
	)

	if c.isAdmin(in.UserID) && isPickupKeyCommand(text) {
		c.handlePickupKeyCommand(ctx, in.UserID, text)
		return nil
	}

	cancel := c.machine.Matcher().IsCancellation(text)

	var pending *models.Sale
	if active == nil || !active.State.AwaitsPaymentProof() {
		pending = c.pendingSale(ctx, in.UserID)
		if pending != nil && !cancel && c.followUpPendingSale(ctx, snap, in, pending) {
			return nil
		}
	}

	if cancel {
		switch {
		case session != nil:
			if err := c.store.DeleteSession(ctx, in.UserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
				c.persistFailed(ctx, in.UserID, "delete_session", err)
				return nil
			}
			metrics.RecordTransition(string(session.State), "")
			c.deliver(ctx, in.UserID, []models.OutboundMessage{models.Text(msgCancelled)})
		case pending != nil:
			c.deliver(ctx, in.UserID, []models.OutboundMessage{models.Text(msgCancelPending)})
		}
		return nil
	}

	var prefix []models.OutboundMessage
	if expired {
		if err := c.store.DeleteSession(ctx, in.UserID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			logger.Flow.Warn("failed to delete expired session", slog.String("user_id", in.UserID), slog.Any("error", err))
		}
		metrics.RecordSessionExpired()
		logger.Flow.Info("session expired",
			slog.String("event", "flow.session_expired"),
			slog.String("user_id", in.UserID),
			slog.String("state", string(session.State)),
			slog.Duration("idle", now.Sub(session.LastUpdated)),
		)
		prefix = append(prefix, models.Text(msgSessionExpired))
		session = nil
	}

	var res Result
	if session == nil {
		res = c.machine.Enter(ctx, snap, in, text)
	} else {
		res = c.machine.Advance(ctx, snap, in, text, session)
	}
	if res.Err != nil {
		logger.Flow.Warn("turn finished with error",
			slog.String("event", "flow.turn_error"),
			slog.String("user_id", in.UserID),
			slog.String("kind", KindName(res.Err)),
			slog.Any("error", res.Err),
		)
	}

	msgs := append(prefix, res.Messages...)
	if err := c.apply(ctx, in.UserID, res); err != nil {
		metrics.RecordError(KindName(ErrPersistence))
		logger.Flow.Error("failed to persist session",
			slog.String("event", "flow.persist_failed"),
			slog.String("user_id", in.UserID),
			slog.String("action", res.Action.String()),
			slog.Any("error", err),
		)
		if !res.Committed {
			msgs = append(prefix, models.Text(msgStoreUnavailable))
		}
	}
	c.deliver(ctx, in.UserID, msgs)
	return nil
}

// apply stores the outcome of a turn before any reply is sent.
func (c *Conversation) apply(ctx context.Context, userID string, res Result) error {
	switch res.Action {
	case ActionSave:
		if res.Session == nil {
			return nil
		}
		res.Session.WhatsAppID = userID
		res.Session.LastUpdated = c.now()
		return c.store.SaveSession(ctx, res.Session)
	case ActionDelete:
		if err := c.store.DeleteSession(ctx, userID); err != nil && !errors.Is(err, storage.ErrNotFound) {
			return err
		}
	}
	return nil
}

func (c *Conversation) persistFailed(ctx context.Context, userID, op string, err error) {
	metrics.RecordError(KindName(ErrPersistence))
	logger.Flow.Error("store operation failed",
		slog.String("event", "flow.persist_failed"),
		slog.String("op", op),
		slog.String("user_id", userID),
		slog.Any("error", err),
	)
	c.deliver(ctx, userID, []models.OutboundMessage{models.Text(msgStoreUnavailable)})
}

func (c *Conversation) isAdmin(userID string) bool {
	return c.cfg.AdminNumber != "" && userID == c.cfg.AdminNumber
}

// canonicalInput turns an inbound message into the text the funnel reads.
// ok is false for kinds the bot cannot process.
func canonicalInput(in models.Inbound, session *models.Session) (string, bool) {
	switch in.Kind {
	case models.KindText, models.KindButton:
		return in.Payload, true
	case models.KindImage:
		if session != nil && session.State.AwaitsPaymentProof() {
			return models.TokenPaymentProof, true
		}
		return models.TokenImageReceived, true
	}
	return "", false
}

// deliver sends messages in order. Pauses are capped by PauseMax and failed
// sends are logged without stopping the rest.
func (c *Conversation) deliver(ctx context.Context, defaultTo string, msgs []models.OutboundMessage) int {
	failed := 0
	for i, msg := range msgs {
		if i > 0 && msg.Pause > 0 {
			pause := msg.Pause
			if pause > c.cfg.PauseMax {
				pause = c.cfg.PauseMax
			}
			if pause > 0 {
				c.sleep(ctx, pause)
			}
		}
		to := defaultTo
		if msg.To != "" {
			to = msg.To
		}
		err := c.sender.Send(ctx, to, msg)
		metrics.RecordMessageSent(string(msg.Kind), err == nil)
		if err != nil {
			failed++
			logger.Msg.Error("failed to send message",
				slog.String("event", "msg.send_failed"),
				slog.String("to", to),
				slog.String("kind", string(msg.Kind)),
				slog.String("provider", c.sender.Name()),
				slog.Any("error", flowError(ErrDelivery, "send", err)),
			)
		}
	}
	return failed
}

func sleepContext(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

// keyedMutex serializes work per key and forgets keys nobody holds.
type keyedMutex struct {
	mu    sync.Mutex
	locks map[string]*keyedEntry
}

type keyedEntry struct {
	mu   sync.Mutex
	refs int
}

func newKeyedMutex() *keyedMutex {
	return &keyedMutex{locks: make(map[string]*keyedEntry)}
}

// Lock blocks until key is free and returns the matching unlock.
func (k *keyedMutex) Lock(key string) func() {
	k.mu.Lock()
	e, ok := k.locks[key]
	if !ok {
		e = &keyedEntry{}
		k.locks[key] = e
	}
	e.refs++
	k.mu.Unlock()

	e.mu.Lock()
	return func() {
		e.mu.Unlock()
		k.mu.Lock()
		e.refs--
		if e.refs == 0 {
			delete(k.locks, key)
		}
		k.mu.Unlock()
	}
}

func (k *keyedMutex) size() int {
	k.mu.Lock()
	defer k.mu.Unlock()
	return len(k.locks)
}
