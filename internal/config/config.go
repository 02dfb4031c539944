package config

import (
	"os"
	"strings"

	"toolhub-service/internal/pkg/identity"
)

type AppConfig struct {
	// Server
	HTTPAddr  string
	RedisAddr string
	RedisPass string

	// Identity provider
	Identity identity.Config

	// Operator key (bcrypt hash) guarding internal cleanup endpoints
	OperatorKeyHash string

	// Payment gateway
	GatewayURL       string
	GatewayKeyID     string
	GatewayKeySecret string
}

// Load loads environment variables into AppConfig.
func Load() AppConfig {
	return AppConfig{
		HTTPAddr:  getEnv("HTTP_ADDR", ":8000"),
		RedisAddr: getEnv("REDIS_ADDR", "redis-toolhub:6379"),
		RedisPass: getEnv("REDIS_PASS", ""),

		Identity: identity.Config{
			PubPath:  getEnv("IDP_PUBLIC_KEY_PATH", "/app/secrets/idp_public.pem"),
			Issuer:   getEnv("IDP_ISSUER", "toolhub-identity"),
			Audience: getEnv("IDP_AUDIENCE", "toolhub-users"),
		},

		OperatorKeyHash: getEnv("OPERATOR_KEY_HASH", ""),

		GatewayURL:       getEnv("PAYMENT_GATEWAY_URL", "https://api.razorpay.com/v1"),
		GatewayKeyID:     getEnv("PAYMENT_GATEWAY_KEY_ID", ""),
		GatewayKeySecret: getEnv("PAYMENT_GATEWAY_KEY_SECRET", ""),
	}
}

// --- Helper functions ---

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvSlice(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		return strings.Split(value, ",")
	}
	return defaultValue
}
