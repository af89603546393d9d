package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

const (
	customerID  = "51987654321"
	adminNumber = "51999000111"
)

var lima = time.FixedZone("PET", -5*60*60)

// tuesday is a weekday morning, so Lima deliveries go out "mañana".
var tuesday = time.Date(2025, 9, 16, 10, 0, 0, 0, lima)

type sentMessage struct {
	To  string
	Msg models.OutboundMessage
}

// recordingSender keeps every message it is asked to send.
type recordingSender struct {
	mu     sync.Mutex
	sent   []sentMessage
	failTo map[string]bool
}

func (s *recordingSender) Name() string { return "test" }

func (s *recordingSender) Send(ctx context.Context, to string, msg models.OutboundMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.failTo[to] {
		return errors.New("gateway down")
	}
	s.sent = append(s.sent, sentMessage{To: to, Msg: msg})
	return nil
}

// drain returns and forgets what was sent so far.
func (s *recordingSender) drain() []sentMessage {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := s.sent
	s.sent = nil
	return out
}

type adminAlert struct {
	Subject string
	Body    string
}

type recordingNotifier struct {
	mu     sync.Mutex
	alerts []adminAlert
	err    error
}

func (n *recordingNotifier) NotifyAdmin(ctx context.Context, subject, body string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.err != nil {
		return n.err
	}
	n.alerts = append(n.alerts, adminAlert{Subject: subject, Body: body})
	return nil
}

func (n *recordingNotifier) all() []adminAlert {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]adminAlert(nil), n.alerts...)
}

func testProduct() models.Product {
	return models.Product{
		ID:               catalog.CampaignProductID,
		Name:             "Collar Mágico Girasol Radiant",
		BasePrice:        69,
		ShortDescription: "es un amuleto que cambia de color con tu energía.",
		Details: models.ProductDetails{
			Material:  "Acero inoxidable quirúrgico.",
			Magic:     "Cambia de color con tu temperatura.",
			Packaging: "Cajita de regalo premium.",
		},
		Images: models.ProductImages{
			Principal: "https://cdn.daaqui.pe/girasol.jpg",
			Packaging: "https://cdn.daaqui.pe/caja.jpg",
			Upsell:    "https://cdn.daaqui.pe/oferta.jpg",
		},
		Active: true,
	}
}

func testSnapshot() *catalog.Snapshot {
	snap := catalog.Defaults()
	snap.Business = models.BusinessData{
		Brand:      "Daaqui Joyas",
		RUC:        "20612345678",
		YapeHolder: "Ana Daaqui",
		YapeNumber: "987654321",
	}
	snap.Products = []models.Product{testProduct()}
	return snap
}

type fixture struct {
	conv   *Conversation
	store  *storage.MemoryStore
	sender *recordingSender
	admin  *recordingNotifier
	snap   *catalog.Snapshot
	now    time.Time
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	logger.Discard()

	ctx := context.Background()
	snap := testSnapshot()
	store := storage.NewMemoryStore()
	require.NoError(t, catalog.SeedProducts(ctx, store, snap))

	f := &fixture{store: store, sender: &recordingSender{}, admin: &recordingNotifier{}, snap: snap, now: tuesday}
	clock := func() time.Time { return f.now }

	fin := NewFinalizer(store, store, nil, f.admin)
	fin.now = clock
	ids := 0
	fin.newID = func() string {
		ids++
		return fmt.Sprintf("sale-%d", ids)
	}

	machine := NewMachine(store, fin, lima)
	machine.now = clock

	f.conv = NewConversation(store, catalog.NewStaticProvider(snap), machine, f.sender, f.admin, ConversationConfig{
		SessionTTL:  2 * time.Hour,
		PauseMax:    time.Second,
		AdminNumber: adminNumber,
	})
	f.conv.now = clock
	f.conv.sleep = func(context.Context, time.Duration) {}
	return f
}

func (f *fixture) handle(t *testing.T, in models.Inbound) []sentMessage {
	t.Helper()
	if in.UserID == "" {
		in.UserID = customerID
	}
	if in.DisplayName == "" {
		in.DisplayName = "Ana"
	}
	require.NoError(t, f.conv.HandleInbound(context.Background(), in))
	return f.sender.drain()
}

func (f *fixture) say(t *testing.T, text string) []sentMessage {
	t.Helper()
	return f.handle(t, models.Inbound{Kind: models.KindText, Payload: text})
}

func (f *fixture) press(t *testing.T, id string) []sentMessage {
	t.Helper()
	return f.handle(t, models.Inbound{Kind: models.KindButton, Payload: id})
}

func (f *fixture) sendImage(t *testing.T) []sentMessage {
	t.Helper()
	return f.handle(t, models.Inbound{Kind: models.KindImage})
}

func (f *fixture) session(t *testing.T) *models.Session {
	t.Helper()
	s, err := f.store.GetSession(context.Background(), customerID)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	require.NoError(t, err)
	return s
}

func (f *fixture) putSession(t *testing.T, s *models.Session) {
	t.Helper()
	if s.WhatsAppID == "" {
		s.WhatsAppID = customerID
	}
	if s.LastUpdated.IsZero() {
		s.LastUpdated = f.now
	}
	require.NoError(t, f.store.SaveSession(context.Background(), s))
}

func texts(msgs []sentMessage) []string {
	out := make([]string, 0, len(msgs))
	for _, m := range msgs {
		out = append(out, m.Msg.Text)
	}
	return out
}

func lastText(t *testing.T, msgs []sentMessage) string {
	t.Helper()
	require.NotEmpty(t, msgs)
	return msgs[len(msgs)-1].Msg.Text
}
