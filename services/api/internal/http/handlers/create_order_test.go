package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/rs/zerolog"

	"order-events-playground/shared/pkg/models"
)

type fakePublisher struct {
	published []models.OrderCreatedEvent
	err       error
}

func (f *fakePublisher) PublishOrderCreated(_ context.Context, evt models.OrderCreatedEvent) error {
	if f.err != nil {
		return f.err
	}
	f.published = append(f.published, evt)
	return nil
}

func TestCreateOrderHandler(t *testing.T) {
	t.Run("creates and publishes the event", func(t *testing.T) {
		pub := &fakePublisher{}
		h := &CreateOrderHandler{Publisher: pub, Log: zerolog.Nop()}

		body := `{"customer_id":"c1","customer_name":"Ada","customer_email":"ada@example.com",` +
			`"items":[{"product_id":"p1","product_name":"Widget","quantity":2,"price":9.99}],"total_amount":19.98}`
		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(body))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
		}
		var resp struct {
			OrderID string `json:"order_id"`
		}
		if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
			t.Fatalf("decode response: %v", err)
		}
		if resp.OrderID == "" {
			t.Error("expected generated order id in response")
		}
		if loc := rec.Header().Get("Location"); loc != "/api/v1/orders/"+resp.OrderID {
			t.Errorf("unexpected location %q", loc)
		}

		if len(pub.published) != 1 {
			t.Fatalf("expected 1 published event, got %d", len(pub.published))
		}
		evt := pub.published[0]
		if evt.OrderID != resp.OrderID {
			t.Errorf("response id %q != event id %q", resp.OrderID, evt.OrderID)
		}
		if evt.CustomerName != "Ada" || evt.TotalAmount != 19.98 {
			t.Errorf("event fields not carried: %+v", evt)
		}
		if evt.CreatedDate.IsZero() {
			t.Error("expected created date assigned at event creation")
		}
	})

	t.Run("missing items become an empty list", func(t *testing.T) {
		pub := &fakePublisher{}
		h := &CreateOrderHandler{Publisher: pub, Log: zerolog.Nop()}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders",
			strings.NewReader(`{"customer_id":"c1","customer_name":"Ada","total_amount":0}`))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusCreated {
			t.Fatalf("expected 201, got %d", rec.Code)
		}
		if pub.published[0].Items == nil || len(pub.published[0].Items) != 0 {
			t.Errorf("expected empty items slice, got %+v", pub.published[0].Items)
		}
	})

	t.Run("bad json", func(t *testing.T) {
		h := &CreateOrderHandler{Publisher: &fakePublisher{}, Log: zerolog.Nop()}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader("{"))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusBadRequest {
			t.Errorf("expected 400, got %d", rec.Code)
		}
	})

	t.Run("publish failure is a generic 500", func(t *testing.T) {
		h := &CreateOrderHandler{Publisher: &fakePublisher{err: errors.New("broker down")}, Log: zerolog.Nop()}

		req := httptest.NewRequest(http.MethodPost, "/api/v1/orders", strings.NewReader(`{"customer_id":"c1"}`))
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		if rec.Code != http.StatusInternalServerError {
			t.Errorf("expected 500, got %d", rec.Code)
		}
		if strings.Contains(rec.Body.String(), "broker down") {
			t.Error("broker error must not leak to the client")
		}
	})
}
