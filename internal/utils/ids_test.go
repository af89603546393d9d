package utils

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSaleID(t *testing.T) {
	a, b := NewSaleID(), NewSaleID()
	assert.NotEqual(t, a, b)
	_, err := uuid.Parse(a)
	require.NoError(t, err)
}

func TestNormalizePhone(t *testing.T) {
	tests := map[string]string{
		"51987654321":           "51987654321",
		"+51 987 654 321":       "51987654321",
		"whatsapp:+51987654321": "51987654321",
		"  +51-987-654-321 ":    "51987654321",
		"":                      "",
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizePhone(in), in)
	}
}

func TestValidPhone(t *testing.T) {
	assert.True(t, ValidPhone("51987654321"))
	assert.True(t, ValidPhone("+51 987654321"))
	assert.False(t, ValidPhone("1234"))
	assert.False(t, ValidPhone("abc"))
	assert.False(t, ValidPhone("1234567890123456"))
}

func TestWhatsAppAddress(t *testing.T) {
	assert.Equal(t, "whatsapp:+51987654321", WhatsAppAddress("+51 987654321"))
}
