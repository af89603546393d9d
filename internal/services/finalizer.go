package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/daaqui-joyas/salesbot/internal/logger"
	"github.com/daaqui-joyas/salesbot/internal/metrics"
	"github.com/daaqui-joyas/salesbot/internal/models"
	"github.com/daaqui-joyas/salesbot/internal/storage"
	"github.com/daaqui-joyas/salesbot/internal/utils"
)

// SaleEvents publishes sale notifications to downstream consumers.
type SaleEvents interface {
	PublishSaleRecorded(ctx context.Context, sale *models.Sale) error
}

// AdminNotifier tells the business owner about events that need a human.
type AdminNotifier interface {
	NotifyAdmin(ctx context.Context, subject, body string) error
}

// Finalizer turns a paid session into a sale. Only RecordSale is fatal;
// the customer profile, ledger row, event and admin alert are best effort.
type Finalizer struct {
	sales  storage.SaleStore
	ledger storage.LedgerStore
	events SaleEvents
	admin  AdminNotifier
	newID  func() string
	now    func() time.Time
}

// NewFinalizer builds a finalizer. events and admin may be nil.
func NewFinalizer(sales storage.SaleStore, ledger storage.LedgerStore, events SaleEvents, admin AdminNotifier) *Finalizer {
	return &Finalizer{
		sales:  sales,
		ledger: ledger,
		events: events,
		admin:  admin,
		newID:  utils.NewSaleID,
		now:    time.Now,
	}
}

// Finalize records the sale for a session in a payment state.
func (f *Finalizer) Finalize(ctx context.Context, s *models.Session) (*models.Sale, error) {
	now := f.now()
	balance := s.ProductPrice - s.Deposit
	if balance < 0 {
		balance = 0
	}
	sale := &models.Sale{
		ID:              f.newID(),
		CreatedAt:       now,
		ProductID:       s.ProductID,
		ProductName:     s.ProductName,
		Price:           s.ProductPrice,
		ShippingType:    s.ShippingType,
		PaymentMethod:   s.PaymentMethod,
		Province:        s.Province,
		District:        s.District,
		CustomerDetails: s.CustomerDetails,
		CustomerID:      s.WhatsAppID,
		Status:          models.SaleStatusDepositPaid,
		Deposit:         s.Deposit,
		Balance:         balance,
		IsUpsell:        s.IsUpsell,
	}

	log := logger.Sale.With(slog.String("sale_id", sale.ID), slog.String("customer_id", sale.CustomerID))
	if err := f.sales.RecordSale(ctx, sale); err != nil {
		log.Error("failed to record sale", slog.String("event", "sale.record_failed"), slog.Any("error", err))
		return nil, flowError(ErrPersistence, "record_sale", err)
	}
	metrics.RecordSale(sale.ShippingType)
	log.Info("sale recorded",
		slog.String("event", "sale.recorded"),
		slog.String("shipping_type", sale.ShippingType),
		slog.Float64("price", sale.Price),
		slog.Bool("upsell", sale.IsUpsell),
	)

	customer := &models.Customer{
		WhatsAppID:     s.WhatsAppID,
		ProfileName:    s.UserName,
		LastProvince:   s.Province,
		LastDistrict:   s.District,
		LastDetails:    s.CustomerDetails,
		TotalPurchases: 1,
		LastPurchaseAt: now,
	}
	if err := f.sales.UpsertCustomer(ctx, customer); err != nil {
		metrics.RecordError(KindName(ErrPersistence))
		log.Warn("failed to update customer profile", slog.String("event", "sale.customer_failed"), slog.Any("error", err))
	}

	if f.ledger != nil {
		if err := f.ledger.AppendLedgerRow(ctx, models.NewLedgerRow(sale, now)); err != nil {
			metrics.RecordError(KindName(ErrPersistence))
			log.Warn("failed to append ledger row", slog.String("event", "sale.ledger_failed"), slog.Any("error", err))
		}
	}

	if f.events != nil {
		if err := f.events.PublishSaleRecorded(ctx, sale); err != nil {
			log.Warn("failed to publish sale event", slog.String("event", "sale.publish_failed"), slog.Any("error", err))
		}
	}

	if f.admin != nil {
		if err := f.admin.NotifyAdmin(ctx, "Nueva venta confirmada", SaleAlert(sale)); err != nil {
			log.Warn("failed to notify admin", slog.String("event", "sale.admin_failed"), slog.Any("error", err))
		}
	}
	return sale, nil
}

// SaleAlert is the admin message for a new sale.
func SaleAlert(sale *models.Sale) string {
	return fmt.Sprintf("🎉 ¡Nueva Venta Confirmada! 🎉\n\n"+
		"Producto: %s\n"+
		"Tipo: %s\n"+
		"Cliente WA ID: %s\n"+
		"Detalles:\n%s", sale.ProductName, sale.ShippingType, sale.CustomerID, sale.CustomerDetails)
}
