package storage

import (
	"context"
	"errors"

	"github.com/daaqui-joyas/salesbot/internal/models"
)

// ErrNotFound is returned when a lookup matches no record.
var ErrNotFound = errors.New("not found")

// SessionStore keeps one conversation session per WhatsApp user.
type SessionStore interface {
	GetSession(ctx context.Context, whatsappID string) (*models.Session, error)
	// SaveSession upserts the session as given. Callers stamp LastUpdated.
	SaveSession(ctx context.Context, session *models.Session) error
	DeleteSession(ctx context.Context, whatsappID string) error
	CountSessions(ctx context.Context) (int64, error)
}

// ProductStore is the product catalog.
type ProductStore interface {
	GetProduct(ctx context.Context, id string) (*models.Product, error)
	ListActiveProducts(ctx context.Context) ([]*models.Product, error)
	UpsertProduct(ctx context.Context, product *models.Product) error
}

// SaleStore records completed sales and customer profiles.
type SaleStore interface {
	RecordSale(ctx context.Context, sale *models.Sale) error
	FindPendingSale(ctx context.Context, customerID string) (*models.Sale, error)
	UpsertCustomer(ctx context.Context, customer *models.Customer) error
	GetCustomer(ctx context.Context, whatsappID string) (*models.Customer, error)
}

// LedgerStore is the append-only bookkeeping table.
type LedgerStore interface {
	AppendLedgerRow(ctx context.Context, row *models.LedgerRow) error
	// FindPickupKey returns the key on the customer's latest row, or "".
	FindPickupKey(ctx context.Context, customerID string) (string, error)
	SetPickupKey(ctx context.Context, customerID, key string) error
	ListLedgerRows(ctx context.Context) ([]*models.LedgerRow, error)
}

// DocumentStore holds JSON configuration documents.
type DocumentStore interface {
	GetDocument(ctx context.Context, key string) (*models.ConfigDocument, error)
	PutDocument(ctx context.Context, doc *models.ConfigDocument) error
}

// Store defines the interface for storage operations
type Store interface {
	SessionStore
	ProductStore
	SaleStore
	LedgerStore
	DocumentStore

	Ping(ctx context.Context) error
	Kind() string
}
