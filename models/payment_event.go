package models

import "time"

// PaymentEvent is published to Kafka after an order reaches a terminal state.
type PaymentEvent struct {
	Type      string    `json:"type"` // "payment_succeeded" or "payment_failed"
	OrderID   string    `json:"order_id"`
	UserID    string    `json:"user_id"`
	ItemType  string    `json:"item_type"`
	ItemID    string    `json:"item_id"`
	Amount    int64     `json:"amount"`   // smallest currency unit
	Currency  string    `json:"currency"` // "INR", "USD"
	Timestamp time.Time `json:"timestamp"`
}
