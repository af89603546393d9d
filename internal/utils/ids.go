package utils

import (
	"regexp"
	"strings"

	"github.com/google/uuid"
)

var phonePattern = regexp.MustCompile(`^[0-9]{8,15}$`)

// NewSaleID generates a random sale id.
func NewSaleID() string {
	return uuid.NewString()
}

// NormalizePhone strips the "whatsapp:" prefix, the plus sign and any
// separators, leaving only digits in international format.
func NormalizePhone(raw string) string {
	s := strings.TrimSpace(raw)
	s = strings.TrimPrefix(s, "whatsapp:")
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		return -1
	}, s)
}

// ValidPhone reports whether raw looks like a WhatsApp number with country code.
func ValidPhone(raw string) bool {
	return phonePattern.MatchString(NormalizePhone(raw))
}

// WhatsAppAddress formats a number the way Twilio expects it.
func WhatsAppAddress(raw string) string {
	return "whatsapp:+" + NormalizePhone(raw)
}
