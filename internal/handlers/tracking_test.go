package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/services"
)

// MockTrackingSender - Mock para el envío de seguimiento
type MockTrackingSender struct {
	mock.Mock
}

func (m *MockTrackingSender) SendTracking(ctx context.Context, req services.TrackingRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func postTracking(t *testing.T, sender TrackingSender, body string) *http.Response {
	t.Helper()
	logger.Discard()
	app := fiber.New()
	app.Post("/api/send-tracking", NewTrackingHandler(sender).SendTracking)

	req := httptest.NewRequest(http.MethodPost, "/api/send-tracking", strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	resp, err := app.Test(req)
	require.NoError(t, err)
	return resp
}

func TestSendTrackingAcceptsNumbers(t *testing.T) {
	sender := new(MockTrackingSender)
	sender.On("SendTracking", mock.Anything, services.TrackingRequest{
		ToNumber:   "51987654321",
		OrderNo:    "4455",
		PickupCode: "A1B2",
	}).Return(nil).Once()

	resp := postTracking(t, sender, `{"to_number":51987654321,"nro_orden":4455,"codigo_recojo":"A1B2"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Contains(t, readBody(t, resp), "mensajes enviados")
	sender.AssertExpectations(t)
}

func TestSendTrackingErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code int
	}{
		{"missing fields", fmt.Errorf("%w: to_number and nro_orden are required", services.ErrInvalidRequest), http.StatusBadRequest},
		{"gateway down", errors.New("gateway down"), http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sender := new(MockTrackingSender)
			sender.On("SendTracking", mock.Anything, mock.Anything).Return(tt.err)

			resp := postTracking(t, sender, `{"to_number":"51987654321"}`)
			assert.Equal(t, tt.code, resp.StatusCode)
		})
	}
}

func TestSendTrackingRejectsBadJSON(t *testing.T) {
	sender := new(MockTrackingSender)
	resp := postTracking(t, sender, `{"to_number":`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	sender.AssertNotCalled(t, "SendTracking", mock.Anything, mock.Anything)
}
