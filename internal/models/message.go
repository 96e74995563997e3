package models

import (
	"time"
)

// OrderEventType names an order event; it doubles as the routing key
type OrderEventType string

const (
	EventOrderPlaced    OrderEventType = "order.placed"
	EventOrderRejected  OrderEventType = "order.rejected"
	EventOrderDelivered OrderEventType = "order.delivered"
)

// OrderEvent is published to the orders exchange after each checkout
// outcome and delivery confirmation
type OrderEvent struct {
	Event     OrderEventType `json:"event"`
	OrderID   OrderID        `json:"order_id,omitempty"`
	AccountID AccountID      `json:"account_id"`
	Name      string         `json:"name,omitempty"`
	Location  string         `json:"location,omitempty"`
	Total     int64          `json:"total,omitempty"`
	Status    OrderStatus    `json:"status"`
	Timestamp time.Time      `json:"timestamp"`
}

// NewOrderEvent creates an OrderEvent stamped with the current time
func NewOrderEvent(event OrderEventType, account AccountID, orderID OrderID, snapshot *OrderSnapshot, status OrderStatus) *OrderEvent {
	msg := &OrderEvent{
		Event:     event,
		OrderID:   orderID,
		AccountID: account,
		Status:    status,
		Timestamp: time.Now().UTC(),
	}
	if snapshot != nil {
		msg.Name = snapshot.Name
		msg.Location = snapshot.Location
		msg.Total = snapshot.Total
	}
	return msg
}

// RoutingKey returns the routing key for the event
func (e *OrderEvent) RoutingKey() string {
	return string(e.Event)
}
