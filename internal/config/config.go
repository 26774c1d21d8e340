package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

var AppEnv Config

type Config struct {
	MongoURI       string
	DBName         string
	JWTSecret      string
	AccessTokenTTL time.Duration

	KnetBaseURL       string
	KnetClientID      string
	KnetClientSecret  string
	KnetEncryptionKey string
	PaymentReturnURL  string
	PaymentSuccessURL string
	PaymentErrorURL   string

	SMTPHost string
	SMTPPort int
	SMTPUser string
	SMTPPass string
	SMTPFrom string

	KafkaBrokers string
}

func Load() {
	if err := godotenv.Load(); err != nil {
		log.Println(".env not loaded:", err)
	}
	AppEnv = Config{
		MongoURI:       getEnvOrDefault("MONGO_URI", ""),
		DBName:         getEnvOrDefault("DB_NAME", "storefront"),
		JWTSecret:      getEnvOrDefault("JWT_SECRET", ""),
		AccessTokenTTL: getDurationEnv("ACCESS_TOKEN_TTL", 20, time.Minute),

		KnetBaseURL:       getEnvOrDefault("KNET_BASE_URL", ""),
		KnetClientID:      getEnvOrDefault("KNET_CLIENT_ID", ""),
		KnetClientSecret:  getEnvOrDefault("KNET_CLIENT_SECRET", ""),
		KnetEncryptionKey: getEnvOrDefault("KNET_ENCRYPTION_KEY", ""),
		PaymentReturnURL:  getEnvOrDefault("PAYMENT_RETURN_URL", "/payment-result"),
		PaymentSuccessURL: getEnvOrDefault("PAYMENT_SUCCESS_URL", "/payment/success"),
		// No default: an empty value selects the 404 response for failed
		// transactions instead of a redirect.
		PaymentErrorURL: getEnvOrDefault("PAYMENT_ERROR_URL", ""),

		SMTPHost: getEnvOrDefault("SMTP_HOST", ""),
		SMTPPort: getIntEnv("SMTP_PORT", 587),
		SMTPUser: getEnvOrDefault("SMTP_USER", ""),
		SMTPPass: getEnvOrDefault("SMTP_PASS", ""),
		SMTPFrom: getEnvOrDefault("SMTP_FROM", ""),

		KafkaBrokers: getEnvOrDefault("KAFKA_BROKERS", ""),
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return parsed
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue int, unit time.Duration) time.Duration {
	if value := strings.TrimSpace(os.Getenv(key)); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil && parsed > 0 {
			return time.Duration(parsed) * unit
		}
	}
	return time.Duration(defaultValue) * unit
}
