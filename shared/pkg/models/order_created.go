package models

import (
	"time"

	"github.com/google/uuid"
)

// EventTypeOrderCreated is the transport subject for OrderCreatedEvent
// messages.
const EventTypeOrderCreated = "OrderCreatedEvent"

type OrderItem struct {
	ProductID   string  `json:"product_id"`
	ProductName string  `json:"product_name"`
	Quantity    int     `json:"quantity"`
	Price       float64 `json:"price"`
}

// OrderCreatedEvent is the only event crossing the boundary. It is created
// once when an order request is accepted and never updated; OrderID doubles
// as the transport message id.
type OrderCreatedEvent struct {
	OrderID       string      `json:"order_id"`
	CustomerID    string      `json:"customer_id"`
	CustomerName  string      `json:"customer_name"`
	CustomerEmail string      `json:"customer_email"`
	Items         []OrderItem `json:"items"`
	TotalAmount   float64     `json:"total_amount"`
	CreatedDate   time.Time   `json:"created_date"`
}

// NewOrderCreatedEvent assigns the order id and creation time; everything
// else is taken from the caller as provided. TotalAmount is not recomputed
// from the items.
func NewOrderCreatedEvent(customerID, customerName, customerEmail string, items []OrderItem, totalAmount float64) OrderCreatedEvent {
	if items == nil {
		items = []OrderItem{}
	}
	return OrderCreatedEvent{
		OrderID:       uuid.NewString(),
		CustomerID:    customerID,
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		Items:         items,
		TotalAmount:   totalAmount,
		CreatedDate:   time.Now().UTC(),
	}
}
