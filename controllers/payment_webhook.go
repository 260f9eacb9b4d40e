package controllers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"eduverse-payments/gateway"
	"eduverse-payments/models"
	"eduverse-payments/repository"
	"eduverse-payments/services"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

type webhookPayload struct {
	Type string `json:"type"`
	Data struct {
		Order struct {
			OrderID     string `json:"order_id"`
			OrderStatus string `json:"order_status"`
		} `json:"order"`
	} `json:"data"`
}

// GatewayWebhook receives gateway push notifications. The signature is the
// only authentication on this route; verification failure means no state is
// touched.
func (pc *PaymentController) GatewayWebhook(c *gin.Context) {
	body, err := io.ReadAll(c.Request.Body)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "unreadable body"})
		return
	}

	signature := c.GetHeader("x-webhook-signature")
	timestamp := c.GetHeader("x-webhook-timestamp")
	if !gateway.VerifyWebhookSignature(timestamp, body, signature, pc.WebhookSecret) {
		pc.Logger.Warn("Webhook signature verification failed",
			zap.String("ip", c.ClientIP()),
		)
		c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid signature"})
		return
	}

	var payload webhookPayload
	if err := json.Unmarshal(body, &payload); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed payload"})
		return
	}

	orderID := payload.Data.Order.OrderID
	remoteStatus := payload.Data.Order.OrderStatus
	if orderID == "" || remoteStatus == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing order id or status"})
		return
	}

	pc.Logger.Info("Processing gateway webhook",
		zap.String("order_id", orderID),
		zap.String("order_status", remoteStatus),
		zap.String("event_type", payload.Type),
	)

	if remoteStatus == gateway.RemoteStatusPaid {
		pc.handlePaidWebhook(c, orderID, body)
		return
	}

	pc.handleStatusWebhook(c, orderID, remoteStatus, body)
}

func (pc *PaymentController) handlePaidWebhook(c *gin.Context, orderID string, body []byte) {
	raw := string(body)
	remote := &gateway.OrderView{OrderID: orderID, Status: gateway.RemoteStatusPaid}

	result, err := pc.Finalizer.Finalize(c.Request.Context(), orderID, remote, services.SourceWebhook, &raw)
	if err != nil {
		pc.respondError(c, http.StatusInternalServerError, "failed to finalize order", err)
		return
	}

	if !result.AlreadyProcessed {
		if order, err := pc.Orders.GetOrderByID(c.Request.Context(), orderID); err == nil {
			pc.publishPaymentEvent(order, "payment_succeeded")
		}
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}

func (pc *PaymentController) handleStatusWebhook(c *gin.Context, orderID, remoteStatus string, body []byte) {
	mapped := mapRemoteStatus(remoteStatus)

	order, err := pc.Orders.GetOrderByID(c.Request.Context(), orderID)
	if err != nil {
		if errors.Is(err, repository.ErrOrderNotFound) {
			// Deliveries for orders this service never created are skipped.
			pc.Logger.Warn("Webhook for unknown order, skipping",
				zap.String("order_id", orderID),
			)
			c.JSON(http.StatusOK, gin.H{"success": true})
			return
		}
		pc.respondError(c, http.StatusInternalServerError, "failed to load order", err)
		return
	}

	if err := pc.Orders.MergeWebhookStatus(c.Request.Context(), orderID, mapped, string(body)); err != nil {
		pc.respondError(c, http.StatusInternalServerError, "failed to record webhook status", err)
		return
	}

	// Announce the terminal failure once, on the transition.
	if !order.Status.IsTerminal() && (mapped == models.StatusFailed || mapped == models.StatusExpired) {
		pc.publishPaymentEvent(order, "payment_failed")
	}

	c.JSON(http.StatusOK, gin.H{"success": true})
}
