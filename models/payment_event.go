package models

import "time"

const (
	PaymentEventSucceeded = "payment_succeeded"
	PaymentEventFailed    = "payment_failed"
)

// PaymentEvent is published to Kafka after a verified Stripe webhook updated
// the order status. The notification consumer turns succeeded events into
// confirmation emails.
type PaymentEvent struct {
	Type      string    `json:"type"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Currency  string    `json:"currency"`
	Timestamp time.Time `json:"timestamp"`
}

// OrderCreatedEvent is published to SNS best-effort after order creation.
type OrderCreatedEvent struct {
	Event     string    `json:"event"`
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	Amount    int64     `json:"amount"`
	Timestamp time.Time `json:"timestamp"`
}
