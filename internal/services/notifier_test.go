package services

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/config"
)

func TestWhatsAppNotifier(t *testing.T) {
	assert.Nil(t, NewWhatsAppNotifier(&recordingSender{}, ""))

	sender := &recordingSender{}
	n := NewWhatsAppNotifier(sender, adminNumber)
	require.NoError(t, n.NotifyAdmin(context.Background(), "Nueva venta", "detalle"))
	sent := sender.drain()
	require.Len(t, sent, 1)
	assert.Equal(t, adminNumber, sent[0].To)
	assert.Equal(t, "detalle", sent[0].Msg.Text)

	sender.failTo = map[string]bool{adminNumber: true}
	assert.ErrorIs(t, n.NotifyAdmin(context.Background(), "Nueva venta", "detalle"), ErrDelivery)
}

func TestEmailNotifierNeedsHostAndAddress(t *testing.T) {
	assert.Nil(t, NewEmailNotifier(config.SMTPConfig{}, "dueña@daaqui.pe"))
	assert.Nil(t, NewEmailNotifier(config.SMTPConfig{Host: "smtp.daaqui.pe", Port: 587}, ""))
	assert.NotNil(t, NewEmailNotifier(config.SMTPConfig{Host: "smtp.daaqui.pe", Port: 587}, "dueña@daaqui.pe"))
}

func TestMultiNotifier(t *testing.T) {
	assert.Nil(t, NewMultiNotifier(NewWhatsAppNotifier(nil, ""), NewEmailNotifier(config.SMTPConfig{}, "")))

	var none *MultiNotifier
	assert.ErrorIs(t, none.NotifyAdmin(context.Background(), "s", "b"), ErrNoAdmin)

	ok := &recordingNotifier{}
	broken := &recordingNotifier{err: errors.New("smtp down")}

	m := NewMultiNotifier(broken, ok)
	require.NotNil(t, m)
	require.NoError(t, m.NotifyAdmin(context.Background(), "Alerta", "cuerpo"))
	assert.Len(t, ok.all(), 1)

	m = NewMultiNotifier(broken, &recordingNotifier{err: errors.New("gateway down")})
	err := m.NotifyAdmin(context.Background(), "Alerta", "cuerpo")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "smtp down")
	assert.Contains(t, err.Error(), "gateway down")
}
