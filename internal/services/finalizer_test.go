package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/storage"
)

type MockSaleEvents struct {
	mock.Mock
}

func (m *MockSaleEvents) PublishSaleRecorded(ctx context.Context, sale *models.Sale) error {
	args := m.Called(ctx, sale)
	return args.Error(0)
}

type brokenSaleStore struct {
	*storage.MemoryStore
}

func (brokenSaleStore) RecordSale(ctx context.Context, sale *models.Sale) error {
	return errors.New("duplicate key")
}

type brokenLedger struct {
	*storage.MemoryStore
}

func (brokenLedger) AppendLedgerRow(ctx context.Context, row *models.LedgerRow) error {
	return errors.New("sheet unavailable")
}

func paidSession() *models.Session {
	return &models.Session{
		WhatsAppID:      customerID,
		UserName:        "Ana",
		State:           models.StateShalomPayment,
		ProductID:       "collar-girasol-radiant-01",
		ProductName:     "Collar Mágico Girasol Radiant",
		ProductPrice:    69,
		Province:        "Cusco",
		District:        "Wanchaq",
		ShippingType:    models.ShippingProvinceShalom,
		PaymentMethod:   models.PaymentDepositBalance,
		CustomerDetails: "Rosa Huamán, 40123456, Av. La Cultura 300",
		Deposit:         20,
	}
}

func newTestFinalizer(sales storage.SaleStore, ledger storage.LedgerStore, events SaleEvents, admin AdminNotifier) *Finalizer {
	f := NewFinalizer(sales, ledger, events, admin)
	f.now = func() time.Time { return tuesday }
	f.newID = func() string { return "sale-fixed" }
	return f
}

func TestFinalizeRecordsEverything(t *testing.T) {
	logger.Discard()
	store := storage.NewMemoryStore()
	events := new(MockSaleEvents)
	events.On("PublishSaleRecorded", mock.Anything, mock.MatchedBy(func(s *models.Sale) bool {
		return s.ID == "sale-fixed"
	})).Return(nil)
	admin := &recordingNotifier{}

	sale, err := newTestFinalizer(store, store, events, admin).Finalize(context.Background(), paidSession())
	require.NoError(t, err)

	assert.Equal(t, "sale-fixed", sale.ID)
	assert.Equal(t, models.SaleStatusDepositPaid, sale.Status)
	assert.Equal(t, 49.0, sale.Balance)
	assert.Equal(t, customerID, sale.CustomerID)
	assert.Equal(t, tuesday, sale.CreatedAt)

	pending, err := store.FindPendingSale(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, "sale-fixed", pending.ID)

	customer, err := store.GetCustomer(context.Background(), customerID)
	require.NoError(t, err)
	assert.Equal(t, "Wanchaq", customer.LastDistrict)
	assert.Equal(t, 1, customer.TotalPurchases)

	rows, err := store.ListLedgerRows(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "sale-fixed", rows[0].SaleID)
	assert.Empty(t, rows[0].PickupKey)

	events.AssertExpectations(t)
	require.Len(t, admin.all(), 1)
	assert.Contains(t, admin.all()[0].Body, "Rosa Huamán")
}

func TestFinalizeFailsOnlyWhenSaleIsNotRecorded(t *testing.T) {
	logger.Discard()
	store := storage.NewMemoryStore()

	_, err := newTestFinalizer(brokenSaleStore{store}, store, nil, nil).Finalize(context.Background(), paidSession())
	assert.ErrorIs(t, err, ErrPersistence)

	events := new(MockSaleEvents)
	events.On("PublishSaleRecorded", mock.Anything, mock.Anything).Return(errors.New("broker down"))
	admin := &recordingNotifier{err: errors.New("smtp down")}

	sale, err := newTestFinalizer(store, brokenLedger{store}, events, admin).Finalize(context.Background(), paidSession())
	require.NoError(t, err)
	assert.NotNil(t, sale)
	assert.Len(t, store.ListSales(), 1)
	events.AssertExpectations(t)
}

func TestFinalizeClampsBalance(t *testing.T) {
	logger.Discard()
	store := storage.NewMemoryStore()
	s := paidSession()
	s.Deposit = 100

	sale, err := newTestFinalizer(store, store, nil, nil).Finalize(context.Background(), s)
	require.NoError(t, err)
	assert.Zero(t, sale.Balance)
}

func TestSaleAlert(t *testing.T) {
	alert := SaleAlert(&models.Sale{
		ProductName:     "Collar Mágico Girasol Radiant",
		ShippingType:    models.ShippingLimaDelivery,
		CustomerID:      customerID,
		CustomerDetails: "Ana Pérez, Av. Larco 123",
	})
	assert.Contains(t, alert, "Nueva Venta Confirmada")
	assert.Contains(t, alert, "Tipo: Lima Contra Entrega")
	assert.Contains(t, alert, "Cliente WA ID: 51987654321")
}
