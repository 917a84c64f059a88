package worker

import (
	"errors"
	"testing"

	"github.com/rs/zerolog"

	"order-events-playground/shared/pkg/models"
)

func encodedEvent(t *testing.T) []byte {
	t.Helper()
	evt := models.NewOrderCreatedEvent("c1", "Ada", "ada@example.com", nil, 42)
	body, err := models.EncodeOrderCreated(evt)
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	return body
}

func TestHandler_Handle(t *testing.T) {
	t.Run("decode failure abandons", func(t *testing.T) {
		var notified int
		h := &Handler{Log: zerolog.Nop(), Notify: func(*models.OrderCreatedEvent, string) error {
			notified++
			return nil
		}}
		if err := h.Handle([]byte("garbage"), "queue"); err == nil {
			t.Error("expected retry decision for malformed payload")
		}
		if notified != 0 {
			t.Error("no action may run for an undecodable payload")
		}
	})

	t.Run("decoded event commits after the action", func(t *testing.T) {
		var gotSource string
		var gotOrder string
		h := &Handler{Log: zerolog.Nop(), Notify: func(evt *models.OrderCreatedEvent, source string) error {
			gotSource = source
			gotOrder = evt.OrderID
			return nil
		}}
		if err := h.Handle(encodedEvent(t), "topic"); err != nil {
			t.Fatalf("expected commit, got %v", err)
		}
		if gotSource != "topic" || gotOrder == "" {
			t.Errorf("action saw source=%q order=%q", gotSource, gotOrder)
		}
	})

	t.Run("null payload commits without action", func(t *testing.T) {
		var notified int
		h := &Handler{Log: zerolog.Nop(), Notify: func(*models.OrderCreatedEvent, string) error {
			notified++
			return nil
		}}
		if err := h.Handle([]byte("null"), "queue"); err != nil {
			t.Errorf("expected commit for null payload, got %v", err)
		}
		if notified != 0 {
			t.Error("null payload must not trigger the action")
		}
	})

	t.Run("action failure abandons", func(t *testing.T) {
		h := &Handler{Log: zerolog.Nop(), Notify: func(*models.OrderCreatedEvent, string) error {
			return errors.New("smtp down")
		}}
		if err := h.Handle(encodedEvent(t), "queue"); err == nil {
			t.Error("expected retry decision when the action fails")
		}
	})

	t.Run("default action logs and commits", func(t *testing.T) {
		h := &Handler{Log: zerolog.Nop()}
		if err := h.Handle(encodedEvent(t), "queue"); err != nil {
			t.Errorf("expected commit, got %v", err)
		}
	})
}
