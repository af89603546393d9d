package storage

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/daaqui-joyas/salesbot/internal/models"
)

// MemoryStore holds all data in memory for local runs and tests
type MemoryStore struct {
	sessions  map[string]*models.Session
	products  map[string]*models.Product
	sales     map[string]*models.Sale
	customers map[string]*models.Customer
	ledger    []*models.LedgerRow
	documents map[string]*models.ConfigDocument

	// Mutexes for thread safety
	sessionMu  sync.RWMutex
	productMu  sync.RWMutex
	saleMu     sync.RWMutex
	ledgerMu   sync.RWMutex
	documentMu sync.RWMutex

	ledgerCounter uint
}

// NewMemoryStore creates a new in-memory storage
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:  make(map[string]*models.Session),
		products:  make(map[string]*models.Product),
		sales:     make(map[string]*models.Sale),
		customers: make(map[string]*models.Customer),
		documents: make(map[string]*models.ConfigDocument),
	}
}

func (m *MemoryStore) Kind() string { return "memory" }

func (m *MemoryStore) Ping(ctx context.Context) error { return nil }

// Session operations
func (m *MemoryStore) GetSession(ctx context.Context, whatsappID string) (*models.Session, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()

	session, exists := m.sessions[whatsappID]
	if !exists {
		return nil, ErrNotFound
	}
	return session.Clone(), nil
}

func (m *MemoryStore) SaveSession(ctx context.Context, session *models.Session) error {
	if session == nil || session.WhatsAppID == "" {
		return fmt.Errorf("session without whatsapp id")
	}
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	m.sessions[session.WhatsAppID] = session.Clone()
	return nil
}

func (m *MemoryStore) DeleteSession(ctx context.Context, whatsappID string) error {
	m.sessionMu.Lock()
	defer m.sessionMu.Unlock()

	delete(m.sessions, whatsappID)
	return nil
}

func (m *MemoryStore) CountSessions(ctx context.Context) (int64, error) {
	m.sessionMu.RLock()
	defer m.sessionMu.RUnlock()
	return int64(len(m.sessions)), nil
}

// Product operations
func (m *MemoryStore) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	product, exists := m.products[id]
	if !exists {
		return nil, ErrNotFound
	}
	p := *product
	return &p, nil
}

func (m *MemoryStore) ListActiveProducts(ctx context.Context) ([]*models.Product, error) {
	m.productMu.RLock()
	defer m.productMu.RUnlock()

	var active []*models.Product
	for _, product := range m.products {
		if product.Active {
			p := *product
			active = append(active, &p)
		}
	}
	sort.Slice(active, func(i, j int) bool { return active[i].ID < active[j].ID })
	return active, nil
}

func (m *MemoryStore) UpsertProduct(ctx context.Context, product *models.Product) error {
	m.productMu.Lock()
	defer m.productMu.Unlock()

	p := *product
	now := time.Now()
	if existing, ok := m.products[p.ID]; ok {
		p.CreatedAt = existing.CreatedAt
	} else {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	m.products[p.ID] = &p
	return nil
}

// Sale operations
func (m *MemoryStore) RecordSale(ctx context.Context, sale *models.Sale) error {
	m.saleMu.Lock()
	defer m.saleMu.Unlock()

	if _, exists := m.sales[sale.ID]; exists {
		return fmt.Errorf("sale %s already recorded", sale.ID)
	}
	s := *sale
	m.sales[s.ID] = &s
	return nil
}

func (m *MemoryStore) FindPendingSale(ctx context.Context, customerID string) (*models.Sale, error) {
	m.saleMu.RLock()
	defer m.saleMu.RUnlock()

	var latest *models.Sale
	for _, sale := range m.sales {
		if sale.CustomerID != customerID || sale.Status != models.SaleStatusDepositPaid {
			continue
		}
		if latest == nil || sale.CreatedAt.After(latest.CreatedAt) {
			latest = sale
		}
	}
	if latest == nil {
		return nil, ErrNotFound
	}
	s := *latest
	return &s, nil
}

// ListSales returns every recorded sale. Used by tests.
func (m *MemoryStore) ListSales() []*models.Sale {
	m.saleMu.RLock()
	defer m.saleMu.RUnlock()

	sales := make([]*models.Sale, 0, len(m.sales))
	for _, sale := range m.sales {
		s := *sale
		sales = append(sales, &s)
	}
	sort.Slice(sales, func(i, j int) bool { return sales[i].CreatedAt.Before(sales[j].CreatedAt) })
	return sales
}

// UpsertCustomer overwrites the profile fields and adds customer.TotalPurchases
// to the stored counter.
func (m *MemoryStore) UpsertCustomer(ctx context.Context, customer *models.Customer) error {
	m.saleMu.Lock()
	defer m.saleMu.Unlock()

	now := time.Now()
	existing, ok := m.customers[customer.WhatsAppID]
	if !ok {
		c := *customer
		c.CreatedAt = now
		c.UpdatedAt = now
		m.customers[c.WhatsAppID] = &c
		return nil
	}
	existing.ProfileName = customer.ProfileName
	existing.LastProvince = customer.LastProvince
	existing.LastDistrict = customer.LastDistrict
	existing.LastDetails = customer.LastDetails
	existing.LastPurchaseAt = customer.LastPurchaseAt
	existing.TotalPurchases += customer.TotalPurchases
	existing.UpdatedAt = now
	return nil
}

func (m *MemoryStore) GetCustomer(ctx context.Context, whatsappID string) (*models.Customer, error) {
	m.saleMu.RLock()
	defer m.saleMu.RUnlock()

	customer, ok := m.customers[whatsappID]
	if !ok {
		return nil, ErrNotFound
	}
	c := *customer
	return &c, nil
}

// Ledger operations
func (m *MemoryStore) AppendLedgerRow(ctx context.Context, row *models.LedgerRow) error {
	m.ledgerMu.Lock()
	defer m.ledgerMu.Unlock()

	for _, r := range m.ledger {
		if r.SaleID == row.SaleID {
			return fmt.Errorf("ledger row for sale %s already exists", row.SaleID)
		}
	}
	m.ledgerCounter++
	r := *row
	r.ID = m.ledgerCounter
	row.ID = r.ID
	m.ledger = append(m.ledger, &r)
	return nil
}

func (m *MemoryStore) latestRow(customerID string) *models.LedgerRow {
	for i := len(m.ledger) - 1; i >= 0; i-- {
		if m.ledger[i].CustomerID == customerID {
			return m.ledger[i]
		}
	}
	return nil
}

func (m *MemoryStore) FindPickupKey(ctx context.Context, customerID string) (string, error) {
	m.ledgerMu.RLock()
	defer m.ledgerMu.RUnlock()

	row := m.latestRow(customerID)
	if row == nil {
		return "", ErrNotFound
	}
	return row.PickupKey, nil
}

func (m *MemoryStore) SetPickupKey(ctx context.Context, customerID, key string) error {
	m.ledgerMu.Lock()
	defer m.ledgerMu.Unlock()

	row := m.latestRow(customerID)
	if row == nil {
		return ErrNotFound
	}
	row.PickupKey = key
	return nil
}

func (m *MemoryStore) ListLedgerRows(ctx context.Context) ([]*models.LedgerRow, error) {
	m.ledgerMu.RLock()
	defer m.ledgerMu.RUnlock()

	rows := make([]*models.LedgerRow, 0, len(m.ledger))
	for _, r := range m.ledger {
		row := *r
		rows = append(rows, &row)
	}
	return rows, nil
}

// Document operations
func (m *MemoryStore) GetDocument(ctx context.Context, key string) (*models.ConfigDocument, error) {
	m.documentMu.RLock()
	defer m.documentMu.RUnlock()

	doc, ok := m.documents[key]
	if !ok {
		return nil, ErrNotFound
	}
	d := *doc
	return &d, nil
}

func (m *MemoryStore) PutDocument(ctx context.Context, doc *models.ConfigDocument) error {
	m.documentMu.Lock()
	defer m.documentMu.Unlock()

	d := *doc
	d.UpdatedAt = time.Now()
	m.documents[d.Key] = &d
	return nil
}
