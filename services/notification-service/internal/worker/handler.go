package worker

import (
	"github.com/rs/zerolog"

	"order-events-playground/services/notification-service/internal/metrics"
	"order-events-playground/shared/pkg/models"
)

// NotifyFunc is the side-effecting action taken for a decoded event.
type NotifyFunc func(evt *models.OrderCreatedEvent, source string) error

// Handler is the per-message callback bound to both channels. It always
// yields a definite decision: nil commits, an error abandons; no fault
// escapes to the consumer.
type Handler struct {
	Log zerolog.Logger

	// Notify overrides the default action (a structured log line).
	Notify NotifyFunc
}

func (h *Handler) Handle(body []byte, source string) error {
	evt, err := models.DecodeOrderCreated(body)
	if err != nil {
		metrics.MessagesProcessedTotal.WithLabelValues(source, "retry").Inc()
		h.Log.Error().Err(err).Str("source", source).Msg("bad payload -> abandon")
		return err
	}
	if evt == nil {
		// empty payload: committed without action
		metrics.MessagesProcessedTotal.WithLabelValues(source, "commit").Inc()
		return nil
	}

	if err := h.notify(evt, source); err != nil {
		metrics.MessagesProcessedTotal.WithLabelValues(source, "retry").Inc()
		h.Log.Error().Err(err).Str("source", source).Str("order_id", evt.OrderID).Msg("notify failed -> abandon")
		return err
	}

	metrics.MessagesProcessedTotal.WithLabelValues(source, "commit").Inc()
	return nil
}

func (h *Handler) notify(evt *models.OrderCreatedEvent, source string) error {
	if h.Notify != nil {
		return h.Notify(evt, source)
	}
	h.Log.Info().
		Str("source", source).
		Str("order_id", evt.OrderID).
		Str("customer", evt.CustomerName).
		Float64("total_amount", evt.TotalAmount).
		Msg("processing order notification")
	return nil
}
