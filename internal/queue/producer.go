package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/daaqui-joyas/salesbot/internal/models"
)

// EventSaleRecorded is the type of the event published after checkout.
const EventSaleRecorded = "sale.recorded"

// SaleRecordedEvent is the JSON body published for every new sale.
type SaleRecordedEvent struct {
	Event         string    `json:"event"`
	OccurredAt    time.Time `json:"occurred_at"`
	SaleID        string    `json:"id_venta"`
	CustomerID    string    `json:"cliente_id"`
	ProductID     string    `json:"producto_id"`
	ProductName   string    `json:"producto_nombre"`
	Price         float64   `json:"precio_venta"`
	ShippingType  string    `json:"tipo_envio"`
	PaymentMethod string    `json:"metodo_pago"`
	Province      string    `json:"provincia"`
	District      string    `json:"distrito"`
	Deposit       float64   `json:"adelanto_recibido"`
	Balance       float64   `json:"saldo_restante"`
	Status        string    `json:"estado_pedido"`
	IsUpsell      bool      `json:"is_upsell"`
}

// NewSaleRecordedEvent builds the event body for a sale.
func NewSaleRecordedEvent(s *models.Sale) SaleRecordedEvent {
	return SaleRecordedEvent{
		Event:         EventSaleRecorded,
		OccurredAt:    s.CreatedAt,
		SaleID:        s.ID,
		CustomerID:    s.CustomerID,
		ProductID:     s.ProductID,
		ProductName:   s.ProductName,
		Price:         s.Price,
		ShippingType:  s.ShippingType,
		PaymentMethod: s.PaymentMethod,
		Province:      s.Province,
		District:      s.District,
		Deposit:       s.Deposit,
		Balance:       s.Balance,
		Status:        s.Status,
		IsUpsell:      s.IsUpsell,
	}
}

// Publisher is the part of *amqp.Channel used to publish.
type Publisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// SaleProducer publishes sale events.
type SaleProducer struct {
	Ch Publisher
}

// NewProducer creates a producer on an open channel.
func NewProducer(ch Publisher) *SaleProducer {
	return &SaleProducer{Ch: ch}
}

// PublishSaleRecorded publishes a persistent sale.recorded message.
func (p *SaleProducer) PublishSaleRecorded(ctx context.Context, sale *models.Sale) error {
	body, err := json.Marshal(NewSaleRecordedEvent(sale))
	if err != nil {
		return fmt.Errorf("failed to encode sale event: %w", err)
	}

	err = p.Ch.PublishWithContext(ctx,
		ExchangeName,
		RoutingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Type:         EventSaleRecorded,
			MessageId:    sale.ID,
			Timestamp:    sale.CreatedAt,
			Body:         body,
			DeliveryMode: amqp.Persistent,
		},
	)
	if err != nil {
		return fmt.Errorf("failed to publish to RabbitMQ: %w", err)
	}
	return nil
}
