package controllers

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"eduverse-payments/gateway"
	"eduverse-payments/middleware"
	"eduverse-payments/models"
	"eduverse-payments/repository"
	"eduverse-payments/services"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// OrderFinalizer is the single idempotent reconciliation entry point shared
// by Confirm, Verify and the webhook.
type OrderFinalizer interface {
	Finalize(ctx context.Context, orderID string, remote *gateway.OrderView, source services.FinalizeSource, rawPayload *string) (*services.FinalizeResult, error)
}

// EventPublisher publishes payment lifecycle events.
type EventPublisher interface {
	SendPaymentEvent(ctx context.Context, event models.PaymentEvent) error
}

type PaymentController struct {
	Gateway       gateway.API
	Orders        repository.OrderRepository
	Finalizer     OrderFinalizer
	Catalog       services.BenefitCatalog
	Sessions      *services.SessionCache
	Events        EventPublisher
	Logger        *zap.Logger
	WebhookSecret string
	ReturnURL     string
}

// CreateOrder opens a gateway order and persists the local record in PENDING.
func (pc *PaymentController) CreateOrder(c *gin.Context) {
	var req struct {
		ItemType string `json:"item_type" binding:"required,oneof=coin_bundle subscription product"`
		ItemID   string `json:"item_id" binding:"required"`
		Amount   int64  `json:"amount" binding:"required,min=1"`
		Currency string `json:"currency"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID := middleware.GetUserID(c)

	if !pc.Catalog.HasItem(req.ItemType, req.ItemID) {
		c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		return
	}

	currency := strings.ToUpper(req.Currency)
	if currency == "" {
		currency = "INR"
	}

	orderID := "ord_" + uuid.NewString()

	remote, err := pc.Gateway.CreateOrder(c.Request.Context(), gateway.CreateOrderRequest{
		OrderID:   orderID,
		UserID:    userID,
		Amount:    req.Amount,
		Currency:  currency,
		ReturnURL: pc.ReturnURL,
	})
	if err != nil {
		pc.respondError(c, http.StatusBadGateway, "payment gateway rejected order creation", err)
		return
	}

	order := models.Order{
		OrderID:          orderID,
		UserID:           userID,
		ItemType:         req.ItemType,
		ItemID:           req.ItemID,
		Amount:           req.Amount,
		Currency:         currency,
		Status:           models.StatusPending,
		PaymentSessionID: &remote.PaymentSessionID,
	}
	if err := pc.Orders.CreateOrder(c.Request.Context(), &order); err != nil {
		pc.respondError(c, http.StatusInternalServerError, "failed to save order", err)
		return
	}

	pc.Sessions.Put(c.Request.Context(), orderID, remote.PaymentSessionID)

	pc.Logger.Info("Order created",
		zap.String("order_id", orderID),
		zap.String("user_id", userID),
		zap.String("item_type", req.ItemType),
		zap.Int64("amount", req.Amount),
	)

	c.JSON(http.StatusOK, gin.H{
		"order_id":           orderID,
		"payment_session_id": remote.PaymentSessionID,
	})
}

// Confirm is the user-initiated completion path: fetch the authoritative
// gateway view and finalize. A non-paid gateway status is a 409.
func (pc *PaymentController) Confirm(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, ok := pc.loadOwnedOrder(c, req.OrderID)
	if !ok {
		return
	}

	remote, err := pc.Gateway.GetOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		pc.respondError(c, http.StatusBadGateway, "failed to fetch order from gateway", err)
		return
	}

	result, err := pc.Finalizer.Finalize(c.Request.Context(), req.OrderID, remote, services.SourceConfirm, nil)
	if err != nil {
		var notComplete *services.PaymentNotCompleteError
		if errors.As(err, &notComplete) {
			c.JSON(http.StatusConflict, gin.H{
				"error":  "payment not complete",
				"status": notComplete.Status,
			})
			return
		}
		pc.respondError(c, http.StatusInternalServerError, "failed to finalize order", err)
		return
	}

	if !result.AlreadyProcessed {
		pc.publishPaymentEvent(order, "payment_succeeded")
	}

	c.JSON(http.StatusOK, gin.H{
		"success":           true,
		"already_processed": result.AlreadyProcessed,
		"item_type":         result.ItemType,
		"apply_result":      result.ApplyResult,
	})
}

// Verify is the caller's retry path: query the gateway, reconcile if paid,
// and report the local state either way.
func (pc *PaymentController) Verify(c *gin.Context) {
	var req struct {
		OrderID string `json:"order_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	order, ok := pc.loadOwnedOrder(c, req.OrderID)
	if !ok {
		return
	}

	remote, err := pc.Gateway.GetOrder(c.Request.Context(), req.OrderID)
	if err != nil {
		pc.respondError(c, http.StatusBadGateway, "failed to fetch order from gateway", err)
		return
	}

	if remote.Status == gateway.RemoteStatusPaid {
		result, err := pc.Finalizer.Finalize(c.Request.Context(), req.OrderID, remote, services.SourceVerify, nil)
		if err != nil {
			pc.respondError(c, http.StatusInternalServerError, "failed to finalize order", err)
			return
		}
		if !result.AlreadyProcessed {
			pc.publishPaymentEvent(order, "payment_succeeded")
		}
	}

	// Re-read so the snapshot reflects any reconciliation above.
	current, err := pc.Orders.GetOrderByID(c.Request.Context(), req.OrderID)
	if err != nil {
		pc.respondError(c, http.StatusInternalServerError, "failed to load order", err)
		return
	}

	if current.PaymentSessionID == nil {
		if sessionID, found := pc.Sessions.Get(c.Request.Context(), req.OrderID); found {
			current.PaymentSessionID = &sessionID
		}
	}

	c.JSON(http.StatusOK, gin.H{
		"success":  true,
		"status":   current.Status,
		"checkout": gateway.OutcomeForStatus(remote.Status),
		"data":     current,
	})
}

// loadOwnedOrder fetches an order and enforces caller ownership, writing the
// error response itself when either check fails.
func (pc *PaymentController) loadOwnedOrder(c *gin.Context, orderID string) (*models.Order, bool) {
	order, err := pc.Orders.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "order not found"})
			return nil, false
		}
		pc.respondError(c, http.StatusInternalServerError, "failed to load order", err)
		return nil, false
	}

	if order.UserID != middleware.GetUserID(c) {
		c.JSON(http.StatusForbidden, gin.H{"error": "Forbidden"})
		return nil, false
	}

	return order, true
}
