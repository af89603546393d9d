package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/daaqui-joyas/salesbot/internal/models"
)

type recordingDeclarer struct {
	calls     []string
	queueArgs map[string]amqp.Table
	failOn    string
}

func (d *recordingDeclarer) ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error {
	d.calls = append(d.calls, "exchange:"+name)
	if d.failOn == name {
		return errors.New("access refused")
	}
	return nil
}

func (d *recordingDeclarer) QueueDeclare(name string, durable, autoDelete, exclusive, noWait bool, args amqp.Table) (amqp.Queue, error) {
	d.calls = append(d.calls, "queue:"+name)
	if d.queueArgs == nil {
		d.queueArgs = map[string]amqp.Table{}
	}
	d.queueArgs[name] = args
	return amqp.Queue{Name: name}, nil
}

func (d *recordingDeclarer) QueueBind(name, key, exchange string, noWait bool, args amqp.Table) error {
	d.calls = append(d.calls, "bind:"+name+"->"+exchange)
	return nil
}

func TestSetupTopology(t *testing.T) {
	d := &recordingDeclarer{}
	require.NoError(t, setupTopology(d))

	assert.Equal(t, []string{
		"exchange:" + DLXName,
		"queue:" + DLQName,
		"bind:" + DLQName + "->" + DLXName,
		"exchange:" + ExchangeName,
		"queue:" + QueueName,
		"bind:" + QueueName + "->" + ExchangeName,
	}, d.calls)
	assert.Equal(t, DLXName, d.queueArgs[QueueName]["x-dead-letter-exchange"])
	assert.Nil(t, d.queueArgs[DLQName])
}

func TestSetupTopologyStopsOnError(t *testing.T) {
	d := &recordingDeclarer{failOn: ExchangeName}
	require.Error(t, setupTopology(d))
	assert.NotContains(t, d.calls, "queue:"+QueueName)
}

// MockPublisher - Mock para el canal AMQP
type MockPublisher struct {
	mock.Mock
}

func (m *MockPublisher) PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error {
	args := m.Called(ctx, exchange, key, mandatory, immediate, msg)
	return args.Error(0)
}

func TestPublishSaleRecorded(t *testing.T) {
	sale := &models.Sale{
		ID:           "sale-1",
		CreatedAt:    time.Date(2025, 9, 16, 15, 0, 0, 0, time.UTC),
		ProductID:    "collar-girasol-radiant-01",
		ProductName:  "Collar Girasol",
		Price:        69,
		ShippingType: models.ShippingLimaDelivery,
		CustomerID:   "51987654321",
		Status:       models.SaleStatusDepositPaid,
		Deposit:      10,
		Balance:      59,
	}

	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, ExchangeName, RoutingKey, false, false,
		mock.MatchedBy(func(msg amqp.Publishing) bool {
			var event SaleRecordedEvent
			if err := json.Unmarshal(msg.Body, &event); err != nil {
				return false
			}
			return msg.DeliveryMode == amqp.Persistent &&
				msg.ContentType == "application/json" &&
				msg.MessageId == "sale-1" &&
				event.Event == EventSaleRecorded &&
				event.Balance == 59
		}),
	).Return(nil).Once()

	require.NoError(t, NewProducer(pub).PublishSaleRecorded(context.Background(), sale))
	pub.AssertExpectations(t)
}

func TestPublishSaleRecordedWrapsErrors(t *testing.T) {
	pub := new(MockPublisher)
	pub.On("PublishWithContext", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
		Return(amqp.ErrClosed)

	err := NewProducer(pub).PublishSaleRecorded(context.Background(), &models.Sale{ID: "sale-2"})
	assert.ErrorIs(t, err, amqp.ErrClosed)
}

func TestCloseNil(t *testing.T) {
	var r *RabbitMQ
	assert.NoError(t, r.Close())
}
