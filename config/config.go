package config

import (
	"fmt"
	"os"
	"strconv"
)

type Config struct {
	Port             string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string
	PostgresHost     string
	PostgresPort     string
	PostgresSSLMode  string
	PostgresTimeZone string

	CashfreeAppID         string
	CashfreeSecretKey     string
	CashfreeWebhookSecret string
	CashfreeMode          string // "sandbox" or "production"

	JWTSecret string

	KafkaBrokers string
	KafkaTopic   string

	RedisAddr     string // optional; session cache disabled when empty
	RedisPassword string

	ReturnURL string // where the hosted checkout sends the user back

	RateLimitRPM   int // per-user requests per minute on payment endpoints
	RateLimitBurst int
}

func LoadConfig() (*Config, error) {
	cfg := &Config{
		Port:             getEnv("PORT", "8087"),
		PostgresUser:     os.Getenv("POSTGRES_USER"),
		PostgresPassword: os.Getenv("POSTGRES_PASSWORD"),
		PostgresDB:       os.Getenv("POSTGRES_DB"),
		PostgresHost:     os.Getenv("POSTGRES_HOST"),
		PostgresPort:     getEnv("POSTGRES_PORT", "5432"),
		PostgresSSLMode:  getEnv("POSTGRES_SSLMODE", "disable"),
		PostgresTimeZone: getEnv("POSTGRES_TIMEZONE", "Asia/Kolkata"),

		CashfreeAppID:         os.Getenv("CASHFREE_APP_ID"),
		CashfreeSecretKey:     os.Getenv("CASHFREE_SECRET_KEY"),
		CashfreeWebhookSecret: os.Getenv("CASHFREE_WEBHOOK_SECRET"),
		CashfreeMode:          getEnv("CASHFREE_MODE", "sandbox"),

		JWTSecret: os.Getenv("JWT_SECRET"),

		KafkaBrokers: getEnv("KAFKA_BROKERS", "localhost:9092"),
		KafkaTopic:   getEnv("KAFKA_PAYMENT_TOPIC", "payment-events"),

		RedisAddr:     os.Getenv("REDIS_ADDR"),
		RedisPassword: os.Getenv("REDIS_PASSWORD"),

		ReturnURL: getEnv("CHECKOUT_RETURN_URL", "http://localhost:3000/payments/return"),

		RateLimitRPM:   getEnvInt("PAYMENT_RATE_LIMIT_RPM", 120),
		RateLimitBurst: getEnvInt("PAYMENT_RATE_LIMIT_BURST", 25),
	}

	if cfg.PostgresUser == "" || cfg.PostgresPassword == "" || cfg.PostgresDB == "" || cfg.PostgresHost == "" ||
		cfg.CashfreeAppID == "" || cfg.CashfreeSecretKey == "" || cfg.CashfreeWebhookSecret == "" ||
		cfg.JWTSecret == "" {
		return nil, fmt.Errorf("missing required environment variables")
	}

	if cfg.CashfreeMode != "sandbox" && cfg.CashfreeMode != "production" {
		return nil, fmt.Errorf("CASHFREE_MODE must be sandbox or production, got %q", cfg.CashfreeMode)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if n, err := strconv.Atoi(val); err == nil && n > 0 {
			return n
		}
	}
	return fallback
}
