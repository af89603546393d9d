package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/daaqui-joyas/salesbot/internal/catalog"
	"github.com/daaqui-joyas/salesbot/internal/models"
)

func TestNormalize(t *testing.T) {
	assert.Equal(t, "jesus maria", normalize("  Jesús   MARÍA "))
	assert.Equal(t, "cumpleanos", normalize("cumpleaños"))
	assert.Equal(t, []string{"es", "para", "mi"}, words("¿Es para mí?"))
	assert.Equal(t, "S/ 69.00", formatSoles(69))
}

func TestIsCancellation(t *testing.T) {
	m := NewMatcher()
	for _, text := range []string{"cancelar", "Ya no quiero", "mejor no, gracias", "DETENER", "no gracias"} {
		assert.True(t, m.IsCancellation(text), text)
	}
	for _, text := range []string{"no", "sí", "quiero el collar", "Ana Pérez, Av. Playa Norte 123, Chorrillos", "Jr. Cancelarios 45"} {
		assert.False(t, m.IsCancellation(text), text)
	}
}

func TestYesNo(t *testing.T) {
	m := NewMatcher()
	tests := []struct {
		text string
		yes  bool
		no   bool
	}{
		{"sí", true, false},
		{"siii", true, false},
		{"Claro que sí", true, false},
		{"de acuerdo", true, false},
		{ButtonYes, true, false},
		{"no", false, true},
		{"nop", false, true},
		{ButtonNo, false, true},
		{"si, no se", false, false},
		{"tal vez", false, false},
		{"sino", false, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.yes, m.IsYes(tt.text))
			assert.Equal(t, tt.no, m.IsNo(tt.text))
		})
	}
}

func TestHasWord(t *testing.T) {
	m := NewMatcher()
	assert.True(t, m.HasWord("es para mi tía", "tia"))
	assert.False(t, m.HasWord("me gusta la tienda", "tia"))
	assert.True(t, m.HasWord("PROVINCIA", "provincia"))
}

func TestFAQTopicsInOrder(t *testing.T) {
	m := NewMatcher()
	snap := catalog.Defaults()

	assert.Equal(t, []string{"precio", "envio"}, m.Topics(snap.FAQ, "precio y envío"))

	topic, answer, ok := m.Answer(snap, "¿se puede mojar?", nil)
	assert.True(t, ok)
	assert.Equal(t, "cuidados", topic)
	assert.Equal(t, snap.FAQ.Responses["cuidados"], answer)

	_, _, ok = m.Answer(snap, "buenas tardes", nil)
	assert.False(t, ok)
}

func TestAnswerSkipsTopicsWithoutResponse(t *testing.T) {
	m := NewMatcher()
	snap := catalog.Defaults()
	snap.FAQ.Responses = map[string]string{"envio": "Enviamos a todo el Perú."}

	topic, answer, ok := m.Answer(snap, "precio con envío", nil)
	assert.True(t, ok)
	assert.Equal(t, "envio", topic)
	assert.Equal(t, "Enviamos a todo el Perú.", answer)
}

func TestSessionAwareAnswers(t *testing.T) {
	m := NewMatcher()
	snap := catalog.Defaults()
	s := &models.Session{ProductName: "Oferta 2x Collares", ProductPrice: 99}

	answer, ok := m.TopicAnswer(snap, "stock", s)
	assert.True(t, ok)
	assert.Contains(t, answer, "*Oferta 2x Collares*")

	answer, ok = m.TopicAnswer(snap, "precio", s)
	assert.True(t, ok)
	assert.Contains(t, answer, "*S/ 99.00*")
}

func TestKindName(t *testing.T) {
	assert.Equal(t, "persistence", KindName(flowError(ErrPersistence, "save", errors.New("x"))))
	assert.Equal(t, "product_not_found", KindName(flowError(ErrProductNotFound, "advance", nil)))
	assert.Equal(t, "internal", KindName(errors.New("boom")))

	err := flowError(ErrDelivery, "send", errors.New("timeout"))
	assert.Equal(t, "send: delivery failure: timeout", err.Error())
	assert.ErrorIs(t, err, ErrDelivery)
}
