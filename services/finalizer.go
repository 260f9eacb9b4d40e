package services

import (
	"context"
	"errors"
	"fmt"

	"eduverse-payments/gateway"
	"eduverse-payments/models"
	"eduverse-payments/repository"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var ErrUnknownItem = errors.New("purchased item is not in the catalog")

// PaymentNotCompleteError reports that the gateway's authoritative view is
// not PAID when completion was expected. Carries the remote status so the
// caller can surface it.
type PaymentNotCompleteError struct {
	Status string
}

func (e *PaymentNotCompleteError) Error() string {
	return fmt.Sprintf("payment not complete, gateway status %s", e.Status)
}

// FinalizeSource identifies which entry point invoked the finalizer.
type FinalizeSource string

const (
	SourceConfirm FinalizeSource = "confirm"
	SourceWebhook FinalizeSource = "webhook"
	SourceVerify  FinalizeSource = "verify"
)

type FinalizeResult struct {
	AlreadyProcessed bool   `json:"already_processed"`
	ItemType         string `json:"item_type"`
	ApplyResult      string `json:"apply_result,omitempty"`
}

// Finalizer reconciles the gateway's authoritative order status into local
// state and applies purchase benefits exactly once. It is the only writer of
// PAID and benefits_applied; Confirm, Verify and the webhook all converge on
// Finalize rather than applying side effects themselves.
type Finalizer struct {
	orders   repository.OrderRepository
	benefits repository.BenefitRepository
	catalog  BenefitCatalog
	logger   *zap.Logger
}

func NewFinalizer(orders repository.OrderRepository, benefits repository.BenefitRepository, catalog BenefitCatalog, logger *zap.Logger) *Finalizer {
	return &Finalizer{
		orders:   orders,
		benefits: benefits,
		catalog:  catalog,
		logger:   logger,
	}
}

// Finalize reconciles one order. rawPayload, when non-nil, is stored as the
// order's last webhook payload in the same transaction (webhook deliveries
// pass it; Confirm and Verify pass nil). Safe to call any number of times
// from any source: only the call that wins the benefits_applied flip runs
// benefit application.
func (f *Finalizer) Finalize(ctx context.Context, orderID string, remote *gateway.OrderView, source FinalizeSource, rawPayload *string) (*FinalizeResult, error) {
	order, err := f.orders.GetOrderByID(ctx, orderID)
	if err != nil {
		return nil, err
	}

	if order.Status == models.StatusPaid && order.BenefitsApplied {
		f.logger.Info("Order already finalized",
			zap.String("order_id", orderID),
			zap.String("source", string(source)),
		)
		return &FinalizeResult{AlreadyProcessed: true, ItemType: order.ItemType}, nil
	}

	if remote.Status != gateway.RemoteStatusPaid {
		return nil, &PaymentNotCompleteError{Status: remote.Status}
	}

	var applyResult string
	claimed, err := f.orders.FinalizePaid(ctx, orderID, rawPayload, func(tx *gorm.DB) error {
		res, applyErr := f.applyBenefits(tx, order)
		applyResult = res
		return applyErr
	})
	if err != nil {
		f.logger.Error("Failed to finalize order",
			zap.String("order_id", orderID),
			zap.String("source", string(source)),
			zap.Error(err),
		)
		return nil, fmt.Errorf("finalize order %s: %w", orderID, err)
	}

	if !claimed {
		// A concurrent Confirm/Webhook/Verify won the flip.
		return &FinalizeResult{AlreadyProcessed: true, ItemType: order.ItemType}, nil
	}

	f.logger.Info("Order finalized",
		zap.String("order_id", orderID),
		zap.String("source", string(source)),
		zap.String("item_type", order.ItemType),
		zap.String("apply_result", applyResult),
	)
	return &FinalizeResult{ItemType: order.ItemType, ApplyResult: applyResult}, nil
}

func (f *Finalizer) applyBenefits(tx *gorm.DB, order *models.Order) (string, error) {
	switch order.ItemType {
	case models.ItemTypeCoinBundle:
		bundle, ok := f.catalog.CoinBundle(order.ItemID)
		if !ok {
			return "", fmt.Errorf("%w: %s/%s", ErrUnknownItem, order.ItemType, order.ItemID)
		}
		if err := f.benefits.CreditCoins(tx, order.UserID, bundle.Coins); err != nil {
			return "", fmt.Errorf("credit coins: %w", err)
		}
		return fmt.Sprintf("credited_%d_coins", bundle.Coins), nil

	case models.ItemTypeSubscription:
		plan, ok := f.catalog.SubscriptionPlan(order.ItemID)
		if !ok {
			return "", fmt.Errorf("%w: %s/%s", ErrUnknownItem, order.ItemType, order.ItemID)
		}
		if err := f.benefits.ExtendSubscription(tx, order.UserID, plan.Plan, plan.Duration); err != nil {
			return "", fmt.Errorf("extend subscription: %w", err)
		}
		return "subscription_" + plan.Plan + "_extended", nil

	case models.ItemTypeProduct:
		if err := f.benefits.UnlockProduct(tx, order.UserID, order.ItemID, order.OrderID); err != nil {
			return "", fmt.Errorf("unlock product: %w", err)
		}
		return "product_unlocked", nil

	default:
		return "", fmt.Errorf("%w: %s", ErrUnknownItem, order.ItemType)
	}
}
