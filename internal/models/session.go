package models

import (
	"time"
)

// Shipping channels. The value is shown to customers and stored on sales.
const (
	ShippingLimaDelivery   = "Lima Contra Entrega"
	ShippingLimaShalom     = "Lima Shalom"
	ShippingProvinceShalom = "Provincia Shalom"
)

// Payment method descriptions stored on the session and the sale.
const (
	PaymentCashOnDelivery = "Contra Entrega (Efectivo/Yape/Plin)"
	PaymentDepositBalance = "Adelanto y Saldo (Yape/Plin)"
)

// Occasion answers captured in awaiting_occasion_response.
const (
	OccasionSelf = "para_mi"
	OccasionGift = "regalo"
)

// Session stores the conversation state of one WhatsApp user.
// Fields are filled progressively as the funnel advances.
type Session struct {
	WhatsAppID      string    `json:"whatsapp_id" gorm:"primaryKey;column:whatsapp_id"`
	State           State     `json:"state" gorm:"index"`
	ProductID       string    `json:"product_id"`
	ProductName     string    `json:"product_name"`
	ProductPrice    float64   `json:"product_price"`
	UserName        string    `json:"user_name"`
	IsUpsell        bool      `json:"is_upsell"`
	Occasion        string    `json:"ocasion"`
	Province        string    `json:"provincia"`
	District        string    `json:"distrito"`
	ShippingType    string    `json:"tipo_envio"`
	PaymentMethod   string    `json:"metodo_pago"`
	CustomerDetails string    `json:"detalles_cliente"`
	Deposit         float64   `json:"adelanto"`
	LastUpdated     time.Time `json:"last_updated" gorm:"index"`
}

// TableName pins the gorm table name.
func (Session) TableName() string {
	return "sessions"
}

// Clone returns a copy that can be mutated without touching the original.
func (s *Session) Clone() *Session {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

// IsShalom reports whether the session ships through the agency channel.
func (s *Session) IsShalom() bool {
	return s.ShippingType == ShippingLimaShalom || s.ShippingType == ShippingProvinceShalom
}

// ShippingLabel is the location shown in order summaries.
func (s *Session) ShippingLabel() string {
	if s.District != "" {
		return s.District
	}
	return s.Province
}

// Stale reports whether the session has been idle longer than ttl.
func (s *Session) Stale(now time.Time, ttl time.Duration) bool {
	if s.LastUpdated.IsZero() {
		return false
	}
	return now.Sub(s.LastUpdated) > ttl
}
