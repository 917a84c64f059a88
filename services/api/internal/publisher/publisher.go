package publisher

import (
	"context"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog"

	"order-events-playground/services/api/internal/metrics"
	"order-events-playground/shared/pkg/models"
	"order-events-playground/shared/pkg/rabbit"
)

type sender interface {
	Send(ctx context.Context, m rabbit.Message) error
}

// Publisher emits one OrderCreatedEvent as two independent deliveries: one
// to the orders queue, one to the order-events topic.
type Publisher struct {
	Log   zerolog.Logger
	Queue sender
	Topic sender
}

func New(conn *rabbit.Conn, log zerolog.Logger) *Publisher {
	return &Publisher{
		Log:   log,
		Queue: rabbit.NewQueueSender(conn.Ch, rabbit.QueueOrders),
		Topic: rabbit.NewTopicSender(conn.Ch, rabbit.ExchangeOrderEvents),
	}
}

// PublishOrderCreated serializes the event once and sends the same message
// to both destinations as two separate sends. If the second leg fails after
// the first succeeded the publish is partial; the caller sees a single
// error and nothing reconciles the legs.
func (p *Publisher) PublishOrderCreated(ctx context.Context, evt models.OrderCreatedEvent) error {
	body, err := models.EncodeOrderCreated(evt)
	if err != nil {
		return fmt.Errorf("encode order event: %w", err)
	}

	msg := rabbit.Message{
		Body:        body,
		ContentType: "application/json",
		Subject:     models.EventTypeOrderCreated,
		MessageID:   evt.OrderID,
		ApplicationProperties: amqp.Table{
			"customer_id":  evt.CustomerID,
			"created_date": evt.CreatedDate.Format(time.RFC3339Nano),
			"total_amount": evt.TotalAmount,
		},
	}

	if err := p.Queue.Send(ctx, msg); err != nil {
		metrics.PublishErrorsTotal.WithLabelValues("queue").Inc()
		return fmt.Errorf("send to queue %s: %w", rabbit.QueueOrders, err)
	}
	if err := p.Topic.Send(ctx, msg); err != nil {
		metrics.PublishErrorsTotal.WithLabelValues("topic").Inc()
		return fmt.Errorf("send to topic %s: %w", rabbit.ExchangeOrderEvents, err)
	}

	metrics.EventsPublishedTotal.Inc()
	p.Log.Debug().Str("order_id", evt.OrderID).Msg("order event published to queue and topic")
	return nil
}
