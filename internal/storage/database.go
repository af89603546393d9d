package storage

import (
	"context"
	"errors"
	"fmt"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/daaqui-joyas/salesbot/internal/models"
)

// DatabaseStore persists everything in PostgreSQL through gorm
type DatabaseStore struct {
	db *gorm.DB
}

// NewDatabaseStore creates a store over an open gorm connection
func NewDatabaseStore(db *gorm.DB) *DatabaseStore {
	return &DatabaseStore{db: db}
}

// Migrate creates or updates the tables used by the store.
func (d *DatabaseStore) Migrate() error {
	return d.db.AutoMigrate(
		&models.Session{},
		&models.Product{},
		&models.Sale{},
		&models.Customer{},
		&models.LedgerRow{},
		&models.ConfigDocument{},
	)
}

func (d *DatabaseStore) Kind() string { return "postgres" }

func (d *DatabaseStore) Ping(ctx context.Context) error {
	sqlDB, err := d.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func notFound(err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrNotFound
	}
	return err
}

// Session operations
func (d *DatabaseStore) GetSession(ctx context.Context, whatsappID string) (*models.Session, error) {
	var session models.Session
	if err := d.db.WithContext(ctx).First(&session, "whatsapp_id = ?", whatsappID).Error; err != nil {
		return nil, notFound(err)
	}
	return &session, nil
}

func (d *DatabaseStore) SaveSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.WhatsAppID == "" {
		return fmt.Errorf("session without whatsapp id")
	}
	return d.db.WithContext(ctx).Save(session).Error
}

func (d *DatabaseStore) DeleteSession(ctx context.Context, whatsappID string) error {
	return d.db.WithContext(ctx).Delete(&models.Session{}, "whatsapp_id = ?", whatsappID).Error
}

func (d *DatabaseStore) CountSessions(ctx context.Context) (int64, error) {
	var n int64
	err := d.db.WithContext(ctx).Model(&models.Session{}).Count(&n).Error
	return n, err
}

// Product operations
func (d *DatabaseStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	var product models.Product
	if err := d.db.WithContext(ctx).First(&product, "id = ?", id).Error; err != nil {
		return nil, notFound(err)
	}
	return &product, nil
}

func (d *DatabaseStore) ListActiveProducts(ctx context.Context) ([]*models.Product, error) {
	var products []*models.Product
	err := d.db.WithContext(ctx).Where("active = ?", true).Order("id").Find(&products).Error
	return products, err
}

func (d *DatabaseStore) UpsertProduct(ctx context.Context, product *models.Product) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "id"}},
		UpdateAll: true,
	}).Create(product).Error
}

// Sale operations
func (d *DatabaseStore) RecordSale(ctx context.Context, sale *models.Sale) error {
	return d.db.WithContext(ctx).Create(sale).Error
}

func (d *DatabaseStore) FindPendingSale(ctx context.Context, customerID string) (*models.Sale, error) {
	var sale models.Sale
	err := d.db.WithContext(ctx).
		Where("customer_id = ? AND status = ?", customerID, models.SaleStatusDepositPaid).
		Order("created_at DESC").
		First(&sale).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

// UpsertCustomer overwrites the profile fields and adds customer.TotalPurchases
// to the stored counter.
func (d *DatabaseStore) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	return d.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "whatsapp_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"profile_name":     customer.ProfileName,
			"last_province":    customer.LastProvince,
			"last_district":    customer.LastDistrict,
			"last_details":     customer.LastDetails,
			"last_purchase_at": customer.LastPurchaseAt,
			"total_purchases":  gorm.Expr("customers.total_purchases + ?", customer.TotalPurchases),
			"updated_at":       gorm.Expr("NOW()"),
		}),
	}).Create(customer).Error
}

func (d *DatabaseStore) GetCustomer(ctx context.Context, whatsappID string) (*models.Customer, error) {
	var customer models.Customer
	if err := d.db.WithContext(ctx).First(&customer, "whatsapp_id = ?", whatsappID).Error; err != nil {
		return nil, notFound(err)
	}
	return &customer, nil
}

// Ledger operations
func (d *DatabaseStore) AppendLedgerRow(ctx context.Context, row *models.LedgerRow) error {
	return d.db.WithContext(ctx).Create(row).Error
}

func (d *DatabaseStore) latestRow(ctx context.Context, customerID string) (*models.LedgerRow, error) {
	var row models.LedgerRow
	err := d.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("id DESC").
		First(&row).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &row, nil
}

func (d *DatabaseStore) FindPickupKey(ctx context.Context, customerID string) (string, error) {
	row, err := d.latestRow(ctx, customerID)
	if err != nil {
		return "", err
	}
	return row.PickupKey, nil
}

func (d *DatabaseStore) SetPickupKey(ctx context.Context, customerID, key string) error {
	row, err := d.latestRow(ctx, customerID)
	if err != nil {
		return err
	}
	return d.db.WithContext(ctx).Model(row).Update("pickup_key", key).Error
}

func (d *DatabaseStore) ListLedgerRows(ctx context.Context) ([]*models.LedgerRow, error) {
	var rows []*models.LedgerRow
	err := d.db.WithContext(ctx).Order("id").Find(&rows).Error
	return rows, err
}

// Document operations
func (d *DatabaseStore) GetDocument(ctx context.Context, key string) (*models.ConfigDocument, error) {
	var doc models.ConfigDocument
	if err := d.db.WithContext(ctx).First(&doc, "key = ?", key).Error; err != nil {
		return nil, notFound(err)
	}
	return &doc, nil
}

func (d *DatabaseStore) PutDocument(ctx context.Context, doc *models.ConfigDocument) error {
	return d.db.WithContext(ctx).Save(doc).Error
}
