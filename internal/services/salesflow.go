package services

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/metrics"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

// Action tells the caller what to do with the session after a turn.
type Action int

const (
	// ActionNone leaves the stored session untouched.
	ActionNone Action = iota
	// ActionSave stores Result.Session.
	ActionSave
	// ActionDelete removes the stored session.
	ActionDelete
)

func (a Action) String() string {
	switch a {
	case ActionSave:
		return "save"
	case ActionDelete:
		return "delete"
	default:
		return "none"
	}
}

// Result is everything one inbound message produced. Messages are only
// delivered after the session action has been applied.
type Result struct {
	Messages []models.OutboundMessage
	Session  *models.Session
	Action   Action
	// Committed is set once a sale is recorded, so replies go out even if
	// the session write fails afterwards.
	Committed bool
	// Err is a failure already answered to the user, kept for logs.
	Err error
}

// SaleFinalizer records a paid order.
type SaleFinalizer interface {
	Finalize(ctx context.Context, session *models.Session) (*models.Sale, error)
}

type turn struct {
	ctx     context.Context
	snap    *catalog.Snapshot
	in      models.Inbound
	text    string
	session *models.Session
	product *models.Product
	res     Result
}

func (t *turn) send(msgs ...models.OutboundMessage) {
	t.res.Messages = append(t.res.Messages, msgs...)
}

// moveTo changes state and marks the session for saving.
func (t *turn) moveTo(state models.State) {
	metrics.RecordTransition(string(t.session.State), string(state))
	t.session.State = state
	t.res.Action = ActionSave
}

func (t *turn) save() { t.res.Action = ActionSave }

// end closes the conversation and drops the session.
func (t *turn) end() {
	if t.session != nil {
		metrics.RecordTransition(string(t.session.State), "")
	}
	t.res.Action = ActionDelete
}

func (t *turn) fail(err error) {
	t.res.Err = err
	metrics.RecordError(KindName(err))
}

// stateHandler consumes the input of a session in a given state.
type stateHandler func(t *turn)

// choiceHandler returns false when the input is not one of the state's tokens.
type choiceHandler func(t *turn) bool

// Machine is the sales funnel. It never performs I/O toward WhatsApp; it
// returns the messages to send and what to do with the session.
type Machine struct {
	products  storage.ProductStore
	finalizer SaleFinalizer
	matcher   *Matcher
	loc       *time.Location
	now       func() time.Time
}

// NewMachine wires the funnel to its product store and sale finalizer.
func NewMachine(products storage.ProductStore, finalizer SaleFinalizer, loc *time.Location) *Machine {
	if loc == nil {
		loc = time.UTC
	}
	return &Machine{
		products:  products,
		finalizer: finalizer,
		matcher:   NewMatcher(),
		loc:       loc,
		now:       time.Now,
	}
}

// Matcher exposes the lexical matcher shared with the dispatcher.
func (m *Machine) Matcher() *Matcher { return m.matcher }

func (m *Machine) newTurn(ctx context.Context, snap *catalog.Snapshot, in models.Inbound, text string, session *models.Session) *turn {
	return &turn{ctx: ctx, snap: snap, in: in, text: text, session: session}
}

// Enter handles a message from a user without a session.
func (m *Machine) Enter(ctx context.Context, snap *catalog.Snapshot, in models.Inbound, text string) Result {
	t := m.newTurn(ctx, snap, in, text, nil)
	m.enter(t)
	t.res.Session = t.session
	return t.res
}

func (m *Machine) enter(t *turn) {
	if p := m.campaignProduct(t); p != nil {
		m.startProduct(t, p)
		return
	}
	if id := strings.TrimSpace(t.in.Payload); id != "" {
		if p, err := m.products.GetProduct(t.ctx, id); err == nil && p.Active {
			m.startProduct(t, p)
			return
		}
	}
	if topic, answer, ok := m.matcher.Answer(t.snap, t.text, nil); ok {
		metrics.RecordFAQAnswer(topic)
		t.send(models.Text(answer))
		return
	}

	t.session = &models.Session{
		WhatsAppID: t.in.UserID,
		UserName:   t.in.DisplayName,
	}
	metrics.RecordTransition("", string(models.StateMenuChoice))
	t.session.State = models.StateMenuChoice
	t.save()
	t.send(models.Text("¡Hola " + t.in.DisplayName + "! 👋🏽✨ Bienvenida a *" + t.snap.Business.Brand + "*."))
	t.send(m.prompt(t, models.StateMenuChoice)...)
}

// campaignProduct resolves the campaign product when the text is one of the
// campaign phrases or mentions a campaign keyword.
func (m *Machine) campaignProduct(t *turn) *models.Product {
	c := t.snap.Campaign
	if c.ProductID == "" {
		return nil
	}
	n := normalize(t.text)
	matched := false
	for _, phrase := range c.Phrases {
		if normalize(phrase) == n {
			matched = true
			break
		}
	}
	if !matched && !containsAny(t.text, c.Keywords) {
		return nil
	}
	p, err := m.products.GetProduct(t.ctx, c.ProductID)
	if err != nil || !p.Active {
		logger.Flow.Warn("campaign product unavailable",
			slog.String("event", "flow.campaign_product_missing"),
			slog.String("product_id", c.ProductID),
			slog.Any("error", err),
		)
		metrics.RecordError(KindName(ErrProductNotFound))
		return nil
	}
	return p
}

// startProduct opens (or restarts) a session for a product and presents it.
func (m *Machine) startProduct(t *turn, p *models.Product) {
	if t.session == nil {
		t.session = &models.Session{WhatsAppID: t.in.UserID, UserName: t.in.DisplayName}
	}
	s := t.session
	s.ProductID = p.ID
	s.ProductName = p.Name
	s.ProductPrice = p.BasePrice
	s.IsUpsell = false
	t.product = p
	t.moveTo(models.StateOccasionResponse)

	if p.Images.Principal != "" {
		t.send(models.Image(p.Images.Principal))
	}
	t.send(models.Text("¡Hola " + s.UserName + "! 🌞 El *" + p.Name + "* " + p.ShortDescription +
		"\n\nPor campaña, llévatelo a *" + formatSoles(p.BasePrice) + "* (¡incluye envío gratis a todo el Perú! 🚚).").After(pauseShort))
	t.send(m.prompt(t, models.StateOccasionResponse)...)
}

// Advance handles a message from a user with a live session.
func (m *Machine) Advance(ctx context.Context, snap *catalog.Snapshot, in models.Inbound, text string, session *models.Session) Result {
	t := m.newTurn(ctx, snap, in, text, session.Clone())
	t.res.Session = t.session

	h := m.handlerFor(session.State)
	if h == nil {
		logger.Flow.Warn("session in unknown state",
			slog.String("event", "flow.unknown_state"),
			slog.String("user_id", in.UserID),
			slog.String("state", string(session.State)),
		)
		t.fail(flowError(ErrUnknownState, "advance", errors.New(string(session.State))))
		t.send(models.Text(msgConfused))
		return t.res
	}

	if session.State.NeedsProduct() {
		p, err := m.products.GetProduct(ctx, session.ProductID)
		switch {
		case errors.Is(err, storage.ErrNotFound), err == nil && !p.Active:
			t.fail(flowError(ErrProductNotFound, "advance", nil))
			t.send(models.Text(msgProductGone))
			t.end()
			return t.res
		case err != nil:
			t.fail(flowError(ErrPersistence, "get_product", err))
			t.send(models.Text(msgStoreUnavailable))
			return t.res
		}
		t.product = p
	}

	h(t)
	t.res.Session = t.session
	return t.res
}

// handlerFor maps every declared state to its handler. A nil result means
// the state is unknown.
func (m *Machine) handlerFor(state models.State) stateHandler {
	switch state {
	case models.StateMenuChoice:
		return m.interruptible(state, m.onMenuChoice)
	case models.StateProductChoice:
		return m.interruptible(state, m.onProductChoice)
	case models.StateFAQChoice:
		return m.interruptible(state, m.onFAQChoice)
	case models.StateOccasionResponse:
		return m.interruptible(state, m.onOccasion)
	case models.StatePurchaseDecision:
		return m.interruptible(state, m.onPurchaseDecision)
	case models.StateUpsellDecision:
		return m.interruptible(state, m.onUpsellDecision)
	case models.StateLocation:
		return m.interruptible(state, m.onLocation)
	case models.StateLimaDistrict:
		return m.onLimaDistrict
	case models.StateProvinceDistrict:
		return m.onProvinceDistrict
	case models.StateDeliveryDetails, models.StateShalomDetails:
		return m.onDetails
	case models.StateShalomAgreement:
		return m.interruptible(state, m.onShalomAgreement)
	case models.StateShalomExperience:
		return m.interruptible(state, m.onShalomExperience)
	case models.StateShalomAgencyKnowledge:
		return m.interruptible(state, m.onAgencyKnowledge)
	case models.StateFinalConfirmation:
		return m.interruptible(state, m.onFinalConfirmation)
	case models.StateLimaPaymentAgreement:
		return m.interruptible(state, m.onLimaPaymentAgreement)
	case models.StateLimaPayment, models.StateShalomPayment:
		return m.interruptible(state, m.onPaymentProof)
	case models.StateDeliveryConfirmationLima:
		return m.interruptible(state, m.onDeliveryConfirmation)
	}
	return nil
}

// interruptible answers FAQ questions asked in the middle of a choice and
// then repeats the pending question. Anything else gets the question again.
// The state never changes.
func (m *Machine) interruptible(state models.State, h choiceHandler) stateHandler {
	return func(t *turn) {
		if h(t) {
			return
		}
		if topic, answer, ok := m.matcher.Answer(t.snap, t.text, t.session); ok {
			metrics.RecordFAQAnswer(topic)
			t.send(models.Text(answer))
			t.send(models.Text(faqBridge).After(pauseShort))
		}
		t.send(m.prompt(t, state)...)
		t.save()
	}
}

// chooseProduct resolves a product from a button id, a list number or part
// of its name.
func (m *Machine) chooseProduct(t *turn) *models.Product {
	products, err := m.products.ListActiveProducts(t.ctx)
	if err != nil {
		logger.Flow.Warn("failed to list products", slog.String("event", "flow.products_unavailable"), slog.Any("error", err))
		return nil
	}
	payload := strings.TrimSpace(t.in.Payload)
	for _, p := range products {
		if strings.EqualFold(p.ID, payload) {
			return p
		}
	}
	if n, err := strconv.Atoi(payload); err == nil && n >= 1 && n <= len(products) {
		return products[n-1]
	}
	input := normalize(t.text)
	if len([]rune(input)) < 3 {
		return nil
	}
	for _, p := range products {
		if strings.Contains(normalize(p.Name), input) {
			return p
		}
	}
	return nil
}

func (m *Machine) today() time.Time {
	return m.now().In(m.loc)
}
