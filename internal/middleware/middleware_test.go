package middleware

import (
	"crypto/hmac"
	"crypto/sha1"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sort"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/logger"
)

func ok(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

func TestRequireBearer(t *testing.T) {
	logger.Discard()
	app := fiber.New()
	app.Post("/api/send-tracking", RequireBearer("make-secret"), ok)

	tests := []struct {
		name   string
		header string
		code   int
	}{
		{"valid", "Bearer make-secret", http.StatusOK},
		{"wrong token", "Bearer other", http.StatusUnauthorized},
		{"missing scheme", "make-secret", http.StatusUnauthorized},
		{"no header", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/send-tracking", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestRequireBearerWithoutToken(t *testing.T) {
	logger.Discard()
	app := fiber.New()
	app.Post("/x", RequireBearer(""), ok)

	req := httptest.NewRequest(http.MethodPost, "/x", nil)
	req.Header.Set("Authorization", "Bearer ")
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
}

func metaSign(secret, body string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(body))
	return "sha256=" + hex.EncodeToString(mac.Sum(nil))
}

func TestValidateMetaSignature(t *testing.T) {
	logger.Discard()
	app := fiber.New()
	app.Post("/api/webhook", ValidateMetaSignature("app-secret"), ok)

	body := `{"object":"whatsapp_business_account"}`
	tests := []struct {
		name      string
		signature string
		code      int
	}{
		{"valid", metaSign("app-secret", body), http.StatusOK},
		{"other secret", metaSign("nope", body), http.StatusUnauthorized},
		{"not hex", "sha256=zz", http.StatusUnauthorized},
		{"missing", "", http.StatusUnauthorized},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodPost, "/api/webhook", strings.NewReader(body))
			req.Header.Set("Content-Type", "application/json")
			if tt.signature != "" {
				req.Header.Set("X-Hub-Signature-256", tt.signature)
			}
			resp, err := app.Test(req)
			require.NoError(t, err)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

// twilioSign reproduces Twilio's scheme: HMAC-SHA1 over the URL followed by
// the sorted form parameters.
func twilioSign(token, fullURL string, form url.Values) string {
	keys := make([]string, 0, len(form))
	for k := range form {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	var b strings.Builder
	b.WriteString(fullURL)
	for _, k := range keys {
		b.WriteString(k)
		b.WriteString(form.Get(k))
	}
	mac := hmac.New(sha1.New, []byte(token))
	mac.Write([]byte(b.String()))
	return base64.StdEncoding.EncodeToString(mac.Sum(nil))
}

func TestValidateTwilioSignature(t *testing.T) {
	logger.Discard()
	app := fiber.New()
	app.Post("/webhook/twilio", ValidateTwilioSignature("twilio-token"), ok)

	form := url.Values{"From": {"whatsapp:+51987654321"}, "Body": {"hola"}}
	send := func(signature string) int {
		req := httptest.NewRequest(http.MethodPost, "https://bot.daaqui.pe/webhook/twilio", strings.NewReader(form.Encode()))
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		req.Header.Set("X-Forwarded-Proto", "https")
		if signature != "" {
			req.Header.Set("X-Twilio-Signature", signature)
		}
		resp, err := app.Test(req)
		require.NoError(t, err)
		return resp.StatusCode
	}

	assert.Equal(t, http.StatusOK, send(twilioSign("twilio-token", "https://bot.daaqui.pe/webhook/twilio", form)))
	assert.Equal(t, http.StatusUnauthorized, send(twilioSign("other", "https://bot.daaqui.pe/webhook/twilio", form)))
	assert.Equal(t, http.StatusUnauthorized, send(""))
}
