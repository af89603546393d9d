package services

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/models"
)

func TestPendingSaleFollowUps(t *testing.T) {
	f := newFixture(t)
	pendingShalomSale(f, t)

	msgs := f.say(t, "¿Cuánto me falta pagar?")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Msg.Text, "*S/ 49.00*")

	msgs = f.say(t, "me pasas el número de yape?")
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Msg.Text, "*987654321*")
	assert.Contains(t, msgs[0].Msg.Text, "*Ana Daaqui*")

	assert.Nil(t, f.session(t))
	assert.Empty(t, f.admin.all())
}

func TestBalanceImageAlertsAdmin(t *testing.T) {
	f := newFixture(t)
	pendingShalomSale(f, t)

	msgs := f.sendImage(t)
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Msg.Text, "Recibí tu comprobante")

	alerts := f.admin.all()
	require.Len(t, alerts, 1)
	assert.Contains(t, alerts[0].Body, "No encontrada")
	assert.Contains(t, alerts[0].Body, "clave 51987654321 LA_CLAVE_SECRETA")
	assert.Nil(t, f.session(t))
}

func TestBalanceImageWithKnownPickupKey(t *testing.T) {
	f := newFixture(t)
	pendingShalomSale(f, t)
	require.NoError(t, f.store.SetPickupKey(context.Background(), customerID, "4821"))

	f.sendImage(t)

	alerts := f.admin.all()
	require.Len(t, alerts, 2)
	assert.Contains(t, alerts[0].Body, "`4821`")
	assert.Equal(t, "clave 51987654321 4821", alerts[1].Body)
}

func TestOtherMessagesWithPendingSaleEnterFunnel(t *testing.T) {
	f := newFixture(t)
	pendingShalomSale(f, t)

	f.say(t, "quiero otro girasol")
	s := f.session(t)
	require.NotNil(t, s)
	assert.Equal(t, models.StateOccasionResponse, s.State)
}

func TestPickupKeyCommand(t *testing.T) {
	f := newFixture(t)
	pendingShalomSale(f, t)

	msgs := f.handle(t, models.Inbound{UserID: adminNumber, Kind: models.KindText, Payload: "clave 51987654321 7788"})
	require.Len(t, msgs, 2)
	assert.Equal(t, customerID, msgs[0].To)
	assert.Contains(t, msgs[0].Msg.Text, "🔑 *CLAVE:* 7788")
	assert.Equal(t, adminNumber, msgs[1].To)
	assert.Contains(t, msgs[1].Msg.Text, "✅ Clave '7788' enviada a 51987654321.")

	key, err := f.store.FindPickupKey(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, "7788", key)
}

func TestPickupKeyCommandValidation(t *testing.T) {
	f := newFixture(t)

	msgs := f.handle(t, models.Inbound{UserID: adminNumber, Kind: models.KindText, Payload: "clave 51987654321"})
	assert.Equal(t, []string{"❌ Error: Usa: clave <numero> <clave>"}, texts(msgs))

	msgs = f.handle(t, models.Inbound{UserID: adminNumber, Kind: models.KindText, Payload: "clave 9876-abc 1234"})
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Msg.Text, "no parece válido")

	f.sender.failTo = map[string]bool{customerID: true}
	msgs = f.handle(t, models.Inbound{UserID: adminNumber, Kind: models.KindText, Payload: "clave 51987654321 1234"})
	require.Len(t, msgs, 1)
	assert.Contains(t, msgs[0].Msg.Text, "No se pudo enviar la clave")
}

func TestPickupKeyCommandFromCustomerIsIgnored(t *testing.T) {
	f := newFixture(t)

	msgs := f.say(t, "clave 51911222333 1234")
	for _, m := range msgs {
		assert.Equal(t, customerID, m.To)
	}
	assert.NotNil(t, f.session(t))
}

func TestSendTracking(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.store.UpsertCustomer(context.Background(), &models.Customer{WhatsAppID: customerID, ProfileName: "Rosa"}))

	err := f.conv.SendTracking(context.Background(), TrackingRequest{ToNumber: "+51 987 654 321", OrderNo: "SH-001", PickupCode: "889"})
	require.NoError(t, err)

	msgs := f.sender.drain()
	require.Len(t, msgs, 3)
	for _, m := range msgs {
		assert.Equal(t, customerID, m.To)
	}
	assert.Contains(t, msgs[0].Msg.Text, "¡Hola Rosa!")
	assert.Contains(t, msgs[0].Msg.Text, "*Nro. de Orden:* SH-001")
	assert.Contains(t, msgs[0].Msg.Text, "*Código de Recojo:* 889")
	assert.Equal(t, trackingPause, msgs[1].Msg.Pause)
}

func TestSendTrackingDefaults(t *testing.T) {
	f := newFixture(t)

	require.NoError(t, f.conv.SendTracking(context.Background(), TrackingRequest{ToNumber: customerID, OrderNo: "SH-002"}))
	msgs := f.sender.drain()
	require.Len(t, msgs, 3)
	assert.Contains(t, msgs[0].Msg.Text, "¡Hola cliente!")
	assert.NotContains(t, msgs[0].Msg.Text, "Código de Recojo")
}

func TestSendTrackingErrors(t *testing.T) {
	f := newFixture(t)

	err := f.conv.SendTracking(context.Background(), TrackingRequest{ToNumber: customerID})
	assert.ErrorIs(t, err, ErrInvalidRequest)
	err = f.conv.SendTracking(context.Background(), TrackingRequest{OrderNo: "SH-003"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	f.sender.failTo = map[string]bool{customerID: true}
	err = f.conv.SendTracking(context.Background(), TrackingRequest{ToNumber: customerID, OrderNo: "SH-003"})
	assert.ErrorIs(t, err, ErrDelivery)
}

func TestConversationNotifyAdmin(t *testing.T) {
	f := newFixture(t)
	require.NoError(t, f.conv.NotifyAdmin(context.Background(), "Revisar pedido SH-001"))
	require.Len(t, f.admin.all(), 1)
	assert.Equal(t, "Revisar pedido SH-001", f.admin.all()[0].Body)

	f.conv.admin = nil
	assert.ErrorIs(t, f.conv.NotifyAdmin(context.Background(), "hola"), ErrNoAdmin)
}
