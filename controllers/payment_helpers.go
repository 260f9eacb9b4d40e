package controllers

import (
	"context"
	"time"

	"eduverse-payments/gateway"
	"eduverse-payments/models"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// respondError logs a warning and writes a JSON error response.
// The status argument should be an http.Status* constant from the caller.
func (pc *PaymentController) respondError(c *gin.Context, status int, msg string, err error) {
	if err != nil {
		pc.Logger.Warn(msg, zap.Error(err))
	}
	c.JSON(status, gin.H{"error": msg})
}

// mapRemoteStatus translates a gateway order status into the local
// lifecycle. PAID never goes through here; the finalizer owns it.
func mapRemoteStatus(remoteStatus string) models.OrderStatus {
	switch remoteStatus {
	case gateway.RemoteStatusActive:
		return models.StatusPending
	case gateway.RemoteStatusExpired:
		return models.StatusExpired
	default:
		return models.StatusFailed
	}
}

// publishPaymentEvent sends a lifecycle event to Kafka. Best effort: a
// broker failure never fails the request that triggered it.
func (pc *PaymentController) publishPaymentEvent(order *models.Order, eventType string) {
	if pc.Events == nil {
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	event := models.PaymentEvent{
		Type:      eventType,
		OrderID:   order.OrderID,
		UserID:    order.UserID,
		ItemType:  order.ItemType,
		ItemID:    order.ItemID,
		Amount:    order.Amount,
		Currency:  order.Currency,
		Timestamp: time.Now().UTC(),
	}

	if err := pc.Events.SendPaymentEvent(ctx, event); err != nil {
		pc.Logger.Error("Failed to publish payment event",
			zap.String("event_type", eventType),
			zap.String("order_id", order.OrderID),
			zap.Error(err),
		)
	}
}
