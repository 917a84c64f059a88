// Package rabbit wraps the broker client: connection handling, the order
// topology, destination-bound senders and the message processors used by the
// notification service.
package rabbit

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	// QueueOrders is the point-to-point destination for order events.
	QueueOrders = "orders"
	// ExchangeOrderEvents is the fan-out destination; every subscription
	// queue bound to it receives an independent copy of each message.
	ExchangeOrderEvents = "order-events"
	// SubscriptionNotifications is the one subscription on the topic.
	SubscriptionNotifications = "notifications"

	ExchangeDLX = "order-events.dlx"

	// MaxDeliveryCount is broker-side policy: after this many deliveries a
	// message is dead-lettered instead of redelivered. The consumers never
	// count deliveries themselves.
	MaxDeliveryCount = 5
)

type Conn struct {
	Conn *amqp.Connection
	Ch   *amqp.Channel
}

func Connect(url string) (*Conn, error) {
	c, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := c.Channel()
	if err != nil {
		_ = c.Close()
		return nil, err
	}
	return &Conn{Conn: c, Ch: ch}, nil
}

func (c *Conn) Close() error {
	if c.Ch != nil {
		_ = c.Ch.Close()
	}
	if c.Conn != nil {
		return c.Conn.Close()
	}
	return nil
}

// SubscriptionQueue is the backing queue for a topic subscription.
func SubscriptionQueue(topic, subscription string) string {
	return topic + "." + subscription
}

// DeclareTopology declares the orders queue, the order-events exchange with
// its notifications subscription, and the dead-letter path. Safe to call
// from every service at startup; declarations are idempotent.
func DeclareTopology(ch *amqp.Channel) error {
	if err := ch.ExchangeDeclare(ExchangeOrderEvents, "fanout", true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.ExchangeDeclare(ExchangeDLX, "topic", true, false, false, false, nil); err != nil {
		return err
	}
	if err := declareQueueWithDLQ(ch, QueueOrders); err != nil {
		return err
	}
	sub := SubscriptionQueue(ExchangeOrderEvents, SubscriptionNotifications)
	if err := declareQueueWithDLQ(ch, sub); err != nil {
		return err
	}
	return ch.QueueBind(sub, "", ExchangeOrderEvents, false, nil)
}

// declareQueueWithDLQ declares a quorum queue capped at MaxDeliveryCount
// deliveries, plus its dead-letter queue.
func declareQueueWithDLQ(ch *amqp.Channel, name string) error {
	dlqKey := name + ".dlq"
	if _, err := ch.QueueDeclare(dlqKey, true, false, false, false, nil); err != nil {
		return err
	}
	if err := ch.QueueBind(dlqKey, dlqKey, ExchangeDLX, false, nil); err != nil {
		return err
	}

	args := amqp.Table{
		"x-queue-type":              "quorum",
		"x-delivery-limit":          int32(MaxDeliveryCount),
		"x-dead-letter-exchange":    ExchangeDLX,
		"x-dead-letter-routing-key": dlqKey,
	}
	_, err := ch.QueueDeclare(name, true, false, false, false, args)
	return err
}
