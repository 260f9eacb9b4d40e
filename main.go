package main

import (
	"log"
	"os"
	"strings"

	"eduverse-payments/config"
	"eduverse-payments/controllers"
	"eduverse-payments/database"
	"eduverse-payments/gateway"
	"eduverse-payments/kafka"
	"eduverse-payments/logger"
	"eduverse-payments/repository"
	"eduverse-payments/routes"
	"eduverse-payments/services"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("[Payments] Failed to load config: ", err)
	}

	logger.Initialize(os.Getenv("APP_ENV"))
	defer logger.Log.Sync()

	if err := database.Connect(cfg, logger.Log); err != nil {
		logger.Log.Fatal("Failed to connect to DB", zap.Error(err))
	}
	defer database.Close()

	redisClient := database.NewRedisClient(cfg.RedisAddr, cfg.RedisPassword, logger.Log)
	sessions := services.NewSessionCache(redisClient)

	loader := gateway.NewLoader(cfg.CashfreeAppID, cfg.CashfreeSecretKey)
	gatewayClient := loader.ForMode(gateway.Mode(cfg.CashfreeMode))

	producer := kafka.NewPaymentEventProducer(
		strings.Split(cfg.KafkaBrokers, ","),
		cfg.KafkaTopic,
		logger.Log,
	)
	defer producer.Close()

	orderRepo := repository.NewGormOrderRepo(database.DB)
	benefitRepo := repository.NewGormBenefitRepo()
	catalog := services.DefaultCatalog()
	finalizer := services.NewFinalizer(orderRepo, benefitRepo, catalog, logger.Log)

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(logger.RequestLogger())

	pc := &controllers.PaymentController{
		Gateway:       gatewayClient,
		Orders:        orderRepo,
		Finalizer:     finalizer,
		Catalog:       catalog,
		Sessions:      sessions,
		Events:        producer,
		Logger:        logger.Log,
		WebhookSecret: cfg.CashfreeWebhookSecret,
		ReturnURL:     cfg.ReturnURL,
	}
	routes.RegisterPaymentRoutes(r, pc, []byte(cfg.JWTSecret), cfg.RateLimitRPM, cfg.RateLimitBurst)

	logger.Log.Info("Payment service running", zap.String("port", cfg.Port))
	if err := r.Run(":" + cfg.Port); err != nil {
		logger.Log.Fatal("Server failed", zap.Error(err))
	}
}
