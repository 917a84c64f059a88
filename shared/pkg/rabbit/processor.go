package rabbit

import (
	"fmt"
	"sync"

	amqp "github.com/rabbitmq/amqp091-go"
)

// MessageHandler decides the fate of one message: nil commits it (removed
// from the source), an error abandons it (returned to the source for
// redelivery, delivery counter bumped by the broker).
type MessageHandler func(body []byte, source string) error

// ErrorHandler receives transport-level faults (connectivity, channel
// close). These are not message-processing errors and do not stop the
// processor; reconnecting is the transport layer's business.
type ErrorHandler func(err error)

type ProcessorOptions struct {
	// MaxConcurrentCalls caps in-flight handler invocations; at most this
	// many messages are pulled from the source at a time. Zero means 1.
	MaxConcurrentCalls int
	// AutoComplete commits every message regardless of handler outcome.
	AutoComplete bool
}

type State int

const (
	StateCreated State = iota
	StateStarting
	StateRunning
	StateStopping
	StateStopped
)

func (s State) String() string {
	switch s {
	case StateCreated:
		return "created"
	case StateStarting:
		return "starting"
	case StateRunning:
		return "running"
	case StateStopping:
		return "stopping"
	case StateStopped:
		return "stopped"
	}
	return "unknown"
}

// consumeChannel is the slice of *amqp.Channel the processor needs; tests
// substitute a fake.
type consumeChannel interface {
	Qos(prefetchCount, prefetchSize int, global bool) error
	Consume(queue, consumer string, autoAck, exclusive, noLocal, noWait bool, args amqp.Table) (<-chan amqp.Delivery, error)
	Cancel(consumer string, noWait bool) error
	NotifyClose(c chan *amqp.Error) chan *amqp.Error
	Close() error
}

// Processor drains one source (a queue, or a topic subscription's backing
// queue) with a bounded number of in-flight handler calls, committing or
// abandoning each message by handler outcome. The two processors of the
// notification service run independently of each other.
type Processor struct {
	ch     consumeChannel
	queue  string
	source string
	tag    string
	opts   ProcessorOptions

	mu    sync.Mutex
	state State
	wg    sync.WaitGroup
}

// NewQueueProcessor builds a processor over the point-to-point queue. Each
// processor owns its own broker channel so the two channels fail and stop
// independently.
func (c *Conn) NewQueueProcessor(queue string, opts ProcessorOptions) (*Processor, error) {
	ch, err := c.Conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel for %s: %w", queue, err)
	}
	return newProcessor(ch, queue, "queue", opts), nil
}

// NewTopicProcessor builds a processor over one subscription of a fan-out
// topic.
func (c *Conn) NewTopicProcessor(topic, subscription string, opts ProcessorOptions) (*Processor, error) {
	queue := SubscriptionQueue(topic, subscription)
	ch, err := c.Conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel for %s: %w", queue, err)
	}
	return newProcessor(ch, queue, "topic", opts), nil
}

func newProcessor(ch consumeChannel, queue, source string, opts ProcessorOptions) *Processor {
	if opts.MaxConcurrentCalls < 1 {
		opts.MaxConcurrentCalls = 1
	}
	return &Processor{
		ch:     ch,
		queue:  queue,
		source: source,
		tag:    queue + ".processor",
		opts:   opts,
		state:  StateCreated,
	}
}

// Source reports the processor's observability tag ("queue" or "topic").
func (p *Processor) Source() string { return p.source }

func (p *Processor) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start begins pulling messages. A failure to begin receiving is a startup
// error surfaced to the caller; the processor ends up Stopped.
func (p *Processor) Start(onMessage MessageHandler, onError ErrorHandler) error {
	p.mu.Lock()
	if p.state != StateCreated {
		state := p.state
		p.mu.Unlock()
		return fmt.Errorf("processor %s: start in state %s", p.source, state)
	}
	p.state = StateStarting
	p.mu.Unlock()

	if err := p.ch.Qos(p.opts.MaxConcurrentCalls, 0, false); err != nil {
		p.setState(StateStopped)
		return fmt.Errorf("qos %s: %w", p.queue, err)
	}
	deliveries, err := p.ch.Consume(p.queue, p.tag, false, false, false, false, nil)
	if err != nil {
		p.setState(StateStopped)
		return fmt.Errorf("consume %s: %w", p.queue, err)
	}

	// Channel-close faults go to the error callback. A graceful Stop closes
	// the notify channel without an error and reports nothing.
	closed := p.ch.NotifyClose(make(chan *amqp.Error, 1))
	go func() {
		if amqpErr, ok := <-closed; ok && amqpErr != nil && onError != nil {
			onError(amqpErr)
		}
	}()

	for i := 0; i < p.opts.MaxConcurrentCalls; i++ {
		p.wg.Add(1)
		go p.work(deliveries, onMessage)
	}

	p.setState(StateRunning)
	return nil
}

func (p *Processor) work(deliveries <-chan amqp.Delivery, onMessage MessageHandler) {
	defer p.wg.Done()
	for d := range deliveries {
		err := onMessage(d.Body, p.source)
		if err == nil || p.opts.AutoComplete {
			_ = d.Ack(false)
			continue
		}
		// back to the source, immediately eligible for redelivery
		_ = d.Nack(false, true)
	}
}

// Stop cancels the consumer, waits for in-flight handler calls to finish,
// then releases the channel. It imposes no timeout of its own; bounding the
// drain is the caller's job. Stopping an already stopped processor is a
// no-op.
func (p *Processor) Stop() error {
	p.mu.Lock()
	switch p.state {
	case StateRunning:
		p.state = StateStopping
		p.mu.Unlock()
	case StateStopped:
		p.mu.Unlock()
		return nil
	default:
		state := p.state
		p.mu.Unlock()
		return fmt.Errorf("processor %s: stop in state %s", p.source, state)
	}

	cancelErr := p.ch.Cancel(p.tag, false)
	if cancelErr != nil {
		// channel is unusable; closing it unblocks the workers
		_ = p.ch.Close()
	}
	p.wg.Wait()
	var closeErr error
	if cancelErr == nil {
		closeErr = p.ch.Close()
	}

	p.setState(StateStopped)
	if cancelErr != nil {
		return fmt.Errorf("cancel %s: %w", p.queue, cancelErr)
	}
	return closeErr
}

func (p *Processor) setState(s State) {
	p.mu.Lock()
	p.state = s
	p.mu.Unlock()
}
