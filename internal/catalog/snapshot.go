package catalog

import (
	"time"

	"github.com/daaqui-joyas/salesbot/internal/models"
)

// Snapshot is an immutable view of the business configuration. A new
// snapshot replaces the old one on refresh; nobody mutates a published one.
type Snapshot struct {
	Rules    models.BusinessRules
	Business models.BusinessData
	FAQ      models.FAQ
	Campaign models.Campaign
	Products []models.Product

	// Missing lists the documents that fell back to defaults.
	Missing  []string
	Source   string
	LoadedAt time.Time
}

// Defaults builds a snapshot made only of built-in defaults.
func Defaults() *Snapshot {
	return &Snapshot{
		Rules:    DefaultRules(),
		Business: DefaultBusinessData(),
		FAQ:      DefaultFAQ(),
		Campaign: DefaultCampaign(),
		Source:   "defaults",
		LoadedAt: time.Now(),
	}
}

// Deposit returns the deposit owed for a shipping channel, never above price.
func (s *Snapshot) Deposit(shippingType string, price float64) float64 {
	deposit := s.Rules.DepositShalom
	if shippingType == models.ShippingLimaDelivery {
		deposit = s.Rules.DepositLimaDelivery
	}
	if deposit > price {
		deposit = price
	}
	if deposit < 0 {
		deposit = 0
	}
	return deposit
}

// DeliveryDay tells Lima customers when the courier comes. Orders confirmed
// Monday to Thursday ship the next day; the rest wait for the weekend message.
func (s *Snapshot) DeliveryDay(now time.Time) string {
	switch now.Weekday() {
	case time.Monday, time.Tuesday, time.Wednesday, time.Thursday:
		return s.Rules.WeekdayDeliveryDay
	default:
		return s.Rules.WeekendDeliveryDay
	}
}

// FAQResponse returns the canned answer for a topic.
func (s *Snapshot) FAQResponse(topic string) (string, bool) {
	answer, ok := s.FAQ.Responses[topic]
	return answer, ok && answer != ""
}
