package models

import (
	"time"
)

type OrderStatus string

const (
	StatusPending OrderStatus = "PENDING"
	StatusPaid    OrderStatus = "PAID"
	StatusFailed  OrderStatus = "FAILED"
	StatusExpired OrderStatus = "EXPIRED"
)

// Forward-only lifecycle. Nothing leaves PAID.
var allowedTransitions = map[OrderStatus]map[OrderStatus]bool{
	StatusPending: {
		StatusPaid:    true,
		StatusFailed:  true,
		StatusExpired: true,
	},
	StatusPaid:    {},
	StatusFailed:  {},
	StatusExpired: {},
}

// CanTransition reports whether a status change is a legal forward move.
func (s OrderStatus) CanTransition(to OrderStatus) bool {
	return allowedTransitions[s][to]
}

// IsTerminal reports whether no further transitions are allowed.
func (s OrderStatus) IsTerminal() bool {
	return len(allowedTransitions[s]) == 0
}

func (s OrderStatus) String() string { return string(s) }

// Purchasable item kinds.
const (
	ItemTypeCoinBundle   = "coin_bundle"
	ItemTypeSubscription = "subscription"
	ItemTypeProduct      = "product"
)

// Order is a single purchase attempt correlating local state with a
// gateway transaction. Rows are never deleted; they are kept for audit.
type Order struct {
	OrderID            string      `gorm:"type:varchar(64);primaryKey" json:"order_id"`
	UserID             string      `gorm:"type:varchar(64);index;not null" json:"user_id"`
	ItemType           string      `gorm:"type:varchar(20);not null" json:"item_type"`
	ItemID             string      `gorm:"type:varchar(64);not null" json:"item_id"`
	Amount             int64       `gorm:"not null" json:"amount"` // smallest currency unit
	Currency           string      `gorm:"type:varchar(10);not null" json:"currency"`
	Status             OrderStatus `gorm:"type:varchar(20);not null" json:"status"`
	BenefitsApplied    bool        `gorm:"not null;default:false" json:"benefits_applied"`
	PaymentSessionID   *string     `gorm:"type:varchar(256)" json:"payment_session_id,omitempty"`
	LastWebhookPayload *string     `gorm:"type:jsonb" json:"-"` // last raw gateway payload, for audit
	CreatedAt          time.Time   `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt          time.Time   `gorm:"autoUpdateTime" json:"updated_at"`
}
