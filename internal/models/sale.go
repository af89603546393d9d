package models

import (
	"strconv"
	"time"
)

// SaleStatusDepositPaid is the status of a sale right after checkout.
const SaleStatusDepositPaid = "Adelanto Pagado"

// Sale is a completed checkout. It is written once and never updated by the bot.
type Sale struct {
	ID              string    `json:"id_venta" gorm:"primaryKey"`
	CreatedAt       time.Time `json:"fecha"`
	ProductID       string    `json:"producto_id"`
	ProductName     string    `json:"producto_nombre"`
	Price           float64   `json:"precio_venta"`
	ShippingType    string    `json:"tipo_envio"`
	PaymentMethod   string    `json:"metodo_pago"`
	Province        string    `json:"provincia"`
	District        string    `json:"distrito"`
	CustomerDetails string    `json:"detalles_cliente"`
	CustomerID      string    `json:"cliente_id" gorm:"index"`
	Status          string    `json:"estado_pedido" gorm:"index"`
	Deposit         float64   `json:"adelanto_recibido"`
	Balance         float64   `json:"saldo_restante"`
	IsUpsell        bool      `json:"is_upsell"`
}

// IsShalom reports whether the sale ships through the agency channel.
func (s *Sale) IsShalom() bool {
	return s.ShippingType == ShippingLimaShalom || s.ShippingType == ShippingProvinceShalom
}

// Customer is the profile kept per WhatsApp user across purchases.
type Customer struct {
	WhatsAppID     string    `json:"whatsapp_id" gorm:"primaryKey;column:whatsapp_id"`
	ProfileName    string    `json:"nombre_perfil_wa"`
	LastProvince   string    `json:"provincia_ultimo_envio"`
	LastDistrict   string    `json:"distrito_ultimo_envio"`
	LastDetails    string    `json:"detalles_ultimo_envio"`
	TotalPurchases int       `json:"total_compras"`
	LastPurchaseAt time.Time `json:"fecha_ultima_compra"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// LedgerRow is the bookkeeping line appended for every sale. PickupKey is
// filled in later by the admin when the agency hands out the pickup code.
type LedgerRow struct {
	ID              uint      `json:"id" gorm:"primaryKey"`
	RecordedAt      time.Time `json:"fecha"`
	SaleID          string    `json:"id_venta" gorm:"uniqueIndex"`
	ProductName     string    `json:"producto_nombre"`
	Price           float64   `json:"precio_venta"`
	ShippingType    string    `json:"tipo_envio"`
	PaymentMethod   string    `json:"metodo_pago"`
	Deposit         float64   `json:"adelanto_recibido"`
	Balance         float64   `json:"saldo_restante"`
	Province        string    `json:"provincia"`
	District        string    `json:"distrito"`
	CustomerDetails string    `json:"detalles_cliente"`
	CustomerID      string    `json:"cliente_id" gorm:"index"`
	PickupKey       string    `json:"clave"`
}

// NewLedgerRow copies the ledger columns out of a sale.
func NewLedgerRow(s *Sale, at time.Time) *LedgerRow {
	return &LedgerRow{
		RecordedAt:      at,
		SaleID:          s.ID,
		ProductName:     s.ProductName,
		Price:           s.Price,
		ShippingType:    s.ShippingType,
		PaymentMethod:   s.PaymentMethod,
		Deposit:         s.Deposit,
		Balance:         s.Balance,
		Province:        s.Province,
		District:        s.District,
		CustomerDetails: s.CustomerDetails,
		CustomerID:      s.CustomerID,
	}
}

// Cells renders the row in spreadsheet column order.
func (r *LedgerRow) Cells(loc *time.Location) []string {
	at := r.RecordedAt
	if loc != nil {
		at = at.In(loc)
	}
	return []string{
		at.Format("02/01/2006 15:04:05"),
		r.SaleID,
		r.ProductName,
		strconv.FormatFloat(r.Price, 'f', 2, 64),
		r.ShippingType,
		r.PaymentMethod,
		strconv.FormatFloat(r.Deposit, 'f', 2, 64),
		strconv.FormatFloat(r.Balance, 'f', 2, 64),
		r.Province,
		r.District,
		r.CustomerDetails,
		r.CustomerID,
		r.PickupKey,
	}
}

// LedgerHeader names the columns produced by Cells.
var LedgerHeader = []string{
	"fecha", "id_venta", "producto_nombre", "precio_venta", "tipo_envio", "metodo_pago",
	"adelanto_recibido", "saldo_restante", "provincia", "distrito", "detalles_cliente",
	"cliente_id", "clave",
}
