package worker

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/rs/zerolog"

	"order-events-playground/services/notification-service/internal/metrics"
	"order-events-playground/shared/pkg/rabbit"
)

type messageProcessor interface {
	Start(onMessage rabbit.MessageHandler, onError rabbit.ErrorHandler) error
	Stop() error
	Source() string
}

// Service supervises the two consumption channels: the orders queue and the
// notifications subscription of the order-events topic. Both run
// concurrently and stop independently.
type Service struct {
	Log     zerolog.Logger
	Handler *Handler
	Queue   messageProcessor
	Topic   messageProcessor
}

func NewService(conn *rabbit.Conn, log zerolog.Logger, maxConcurrent int) (*Service, error) {
	opts := rabbit.ProcessorOptions{MaxConcurrentCalls: maxConcurrent}

	qp, err := conn.NewQueueProcessor(rabbit.QueueOrders, opts)
	if err != nil {
		return nil, err
	}
	tp, err := conn.NewTopicProcessor(rabbit.ExchangeOrderEvents, rabbit.SubscriptionNotifications, opts)
	if err != nil {
		return nil, err
	}

	return &Service{
		Log:     log,
		Handler: &Handler{Log: log},
		Queue:   qp,
		Topic:   tp,
	}, nil
}

// Run starts both channels, parks until ctx is cancelled, then drains and
// stops both in parallel. It returns early only on a startup failure; a
// half-running dual-channel consumer is worse than failing fast, so the
// channel that did start is stopped before the error is returned.
func (s *Service) Run(ctx context.Context) error {
	if err := s.Queue.Start(s.Handler.Handle, s.onTransportError(s.Queue.Source())); err != nil {
		return fmt.Errorf("start queue consumer: %w", err)
	}
	if err := s.Topic.Start(s.Handler.Handle, s.onTransportError(s.Topic.Source())); err != nil {
		_ = s.Queue.Stop()
		return fmt.Errorf("start topic consumer: %w", err)
	}

	s.Log.Info().Msg("notification consumers started")
	<-ctx.Done()
	s.Log.Info().Msg("draining consumers")

	return s.stopBoth()
}

// stopBoth stops the channels concurrently; a failure on one never keeps
// the other from draining.
func (s *Service) stopBoth() error {
	procs := []messageProcessor{s.Queue, s.Topic}
	errs := make([]error, len(procs))

	var wg sync.WaitGroup
	for i, p := range procs {
		wg.Add(1)
		go func(i int, p messageProcessor) {
			defer wg.Done()
			if err := p.Stop(); err != nil {
				s.Log.Error().Err(err).Str("source", p.Source()).Msg("consumer stop failed")
				errs[i] = err
				return
			}
			s.Log.Info().Str("source", p.Source()).Msg("consumer stopped")
		}(i, p)
	}
	wg.Wait()

	return errors.Join(errs...)
}

// onTransportError only logs; redelivery and reconnects are the broker
// client's responsibility and the consumer keeps running.
func (s *Service) onTransportError(source string) rabbit.ErrorHandler {
	return func(err error) {
		metrics.TransportErrorsTotal.WithLabelValues(source).Inc()
		s.Log.Error().Err(err).Str("source", source).Msg("transport error")
	}
}
