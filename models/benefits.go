package models

import "time"

// CoinWallet holds a user's Knowledge Coin balance.
type CoinWallet struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey" json:"user_id"`
	Balance   int64     `gorm:"not null;default:0" json:"balance"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// UserSubscription tracks a user's active plan. Activation extends the
// expiry from max(now, current expiry).
type UserSubscription struct {
	UserID    string    `gorm:"type:varchar(64);primaryKey" json:"user_id"`
	Plan      string    `gorm:"type:varchar(64);not null" json:"plan"`
	ExpiresAt time.Time `gorm:"not null" json:"expires_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

// ProductUnlock records a one-time product purchase. The unique index makes
// re-application a no-op.
type ProductUnlock struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	UserID    string    `gorm:"type:varchar(64);uniqueIndex:idx_user_product;not null" json:"user_id"`
	ProductID string    `gorm:"type:varchar(64);uniqueIndex:idx_user_product;not null" json:"product_id"`
	OrderID   string    `gorm:"type:varchar(64);not null" json:"order_id"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}
