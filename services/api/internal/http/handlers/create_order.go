package handlers

import (
	"context"
	"encoding/json"
	"net/http"

	"github.com/rs/zerolog"

	"order-events-playground/shared/pkg/models"
)

type OrderPublisher interface {
	PublishOrderCreated(ctx context.Context, evt models.OrderCreatedEvent) error
}

type CreateOrderHandler struct {
	Publisher OrderPublisher
	Log       zerolog.Logger
}

type createOrderReq struct {
	CustomerID    string  `json:"customer_id"`
	CustomerName  string  `json:"customer_name"`
	CustomerEmail string  `json:"customer_email"`
	Items         []item  `json:"items"`
	TotalAmount   float64 `json:"total_amount"`
}

type item struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

type createOrderResp struct {
	OrderID string `json:"order_id"`
}

func Health(w http.ResponseWriter, r *http.Request) {
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}

func (h *CreateOrderHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	var req createOrderReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad json", http.StatusBadRequest)
		return
	}

	items := make([]models.OrderItem, 0, len(req.Items))
	for _, it := range req.Items {
		items = append(items, models.OrderItem{
			ProductID:   it.ProductID,
			ProductName: it.ProductName,
			Quantity:    it.Quantity,
			Price:       it.Price,
		})
	}

	// TotalAmount is taken as given, not recomputed from the items.
	evt := models.NewOrderCreatedEvent(req.CustomerID, req.CustomerName, req.CustomerEmail, items, req.TotalAmount)

	if err := h.Publisher.PublishOrderCreated(r.Context(), evt); err != nil {
		h.Log.Error().Err(err).Str("order_id", evt.OrderID).Msg("publish order event failed")
		http.Error(w, "failed to create order", http.StatusInternalServerError)
		return
	}

	h.Log.Info().Str("order_id", evt.OrderID).Msg("order event published")
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Location", "/api/v1/orders/"+evt.OrderID)
	w.WriteHeader(http.StatusCreated)
	_ = json.NewEncoder(w).Encode(createOrderResp{OrderID: evt.OrderID})
}
