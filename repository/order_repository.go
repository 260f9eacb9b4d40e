package repository

import (
	"context"
	"errors"
	"time"

	"eduverse-payments/models"

	"gorm.io/gorm"
)

var ErrOrderNotFound = errors.New("order not found")

// OrderRepository owns all reads and writes of order rows. Terminal
// transitions to PAID go through FinalizePaid only.
type OrderRepository interface {
	CreateOrder(ctx context.Context, order *models.Order) error
	GetOrderByID(ctx context.Context, orderID string) (*models.Order, error)
	// MergeWebhookStatus records a non-paid gateway status plus the raw
	// payload. The status is only written when it is a legal forward move,
	// and the whole write is conditioned on the status observed at read
	// time, so a concurrently finalized order is never regressed.
	MergeWebhookStatus(ctx context.Context, orderID string, status models.OrderStatus, rawPayload string) error
	// FinalizePaid flips benefits_applied false->true and status->PAID in
	// one transaction, running apply on the same transaction handle in the
	// branch that wins the flip. claimed is false when a concurrent caller
	// already won; no writes happen in that case.
	FinalizePaid(ctx context.Context, orderID string, rawPayload *string, apply func(tx *gorm.DB) error) (claimed bool, err error)
}

type gormOrderRepo struct {
	db *gorm.DB
}

func NewGormOrderRepo(db *gorm.DB) OrderRepository {
	return &gormOrderRepo{db: db}
}

func (r *gormOrderRepo) CreateOrder(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Create(order).Error
}

func (r *gormOrderRepo) GetOrderByID(ctx context.Context, orderID string) (*models.Order, error) {
	var order models.Order
	if err := r.db.WithContext(ctx).Where("order_id = ?", orderID).First(&order).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *gormOrderRepo) MergeWebhookStatus(ctx context.Context, orderID string, status models.OrderStatus, rawPayload string) error {
	order, err := r.GetOrderByID(ctx, orderID)
	if err != nil {
		return err
	}

	updates := map[string]interface{}{
		"last_webhook_payload": rawPayload,
		"updated_at":           time.Now(),
	}
	if order.Status.CanTransition(status) {
		updates["status"] = status
	}

	// Guarded by the status seen at read time: a row a concurrent
	// finalize moved since the read is left untouched.
	return r.db.WithContext(ctx).Model(&models.Order{}).
		Where("order_id = ? AND status = ?", orderID, order.Status).
		Updates(updates).Error
}

func (r *gormOrderRepo) FinalizePaid(ctx context.Context, orderID string, rawPayload *string, apply func(tx *gorm.DB) error) (bool, error) {
	claimed := false

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		updates := map[string]interface{}{
			"status":           models.StatusPaid,
			"benefits_applied": true,
			"updated_at":       time.Now(),
		}
		if rawPayload != nil {
			updates["last_webhook_payload"] = *rawPayload
		}

		// The conditional write is the idempotency guard: only one caller
		// can observe benefits_applied = false.
		res := tx.Model(&models.Order{}).
			Where("order_id = ? AND benefits_applied = ?", orderID, false).
			Updates(updates)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return nil
		}

		claimed = true
		return apply(tx)
	})
	if err != nil {
		return false, err
	}
	return claimed, nil
}
