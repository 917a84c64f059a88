package rabbit

import (
	"context"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Message is the transport message shape shared by all destinations.
// MessageID carries the event's unique identifier so the broker can detect
// duplicates; ApplicationProperties let downstream filter without
// deserializing the body.
type Message struct {
	Body                  []byte
	ContentType           string
	Subject               string
	MessageID             string
	ApplicationProperties amqp.Table
}

type basicPublisher interface {
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Sender publishes messages to one destination. Build one per destination
// with NewQueueSender or NewTopicSender.
type Sender struct {
	ch       basicPublisher
	exchange string
	key      string
}

// NewQueueSender sends to a point-to-point queue via the default exchange.
func NewQueueSender(ch basicPublisher, queue string) *Sender {
	return &Sender{ch: ch, exchange: "", key: queue}
}

// NewTopicSender sends to a fan-out exchange; every bound subscription
// queue gets a copy.
func NewTopicSender(ch basicPublisher, topic string) *Sender {
	return &Sender{ch: ch, exchange: topic, key: ""}
}

func (s *Sender) Send(ctx context.Context, m Message) error {
	return s.ch.PublishWithContext(ctx, s.exchange, s.key, false, false, amqp.Publishing{
		ContentType:  m.ContentType,
		Type:         m.Subject,
		MessageId:    m.MessageID,
		Headers:      m.ApplicationProperties,
		Body:         m.Body,
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
	})
}

func WithTimeout(parent context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(parent, 5*time.Second)
}
