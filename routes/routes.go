package routes

import (
	"eduverse-payments/controllers"
	"eduverse-payments/middleware"

	"github.com/gin-gonic/gin"
)

func RegisterPaymentRoutes(r *gin.Engine, pc *controllers.PaymentController, jwtSecret []byte, rateLimitRPM, rateLimitBurst int) {
	payments := r.Group("/payments")
	payments.Use(middleware.AuthMiddleware(jwtSecret))
	payments.Use(middleware.RateLimitMiddleware(rateLimitRPM, rateLimitBurst))
	payments.POST("/orders", pc.CreateOrder)
	payments.POST("/confirm", pc.Confirm)
	payments.POST("/verify", pc.Verify)

	// Gateway webhook (no auth; authenticated by signature)
	r.POST("/payments/webhook", pc.GatewayWebhook)
}
