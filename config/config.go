package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// Config holds everything the POS service reads from the environment.
type Config struct {
	Port string

	MongoURI string
	MongoDB  string

	RedisAddr     string
	RedisPassword string
	RedisDB       int

	StorefrontURL   string
	UpstreamTimeout time.Duration
	JWTSigningKey   string

	CORSOrigins []string
	Timezone    string

	SessionIdleTTL   time.Duration
	CustomerCacheTTL time.Duration
	AdvancePerUnit   decimal.Decimal

	SMTPHost     string
	SMTPPort     int
	SMTPUser     string
	SMTPPassword string
	ReceiptFrom  string
	ReceiptTo    string
}

// MailEnabled reports whether receipts can be sent.
func (c Config) MailEnabled() bool {
	return c.SMTPHost != "" && c.ReceiptTo != ""
}

// Load reads .env (when present) and the process environment.
func Load(logger *zap.Logger) Config {
	if err := godotenv.Load(); err != nil {
		// Файл .env не обязателен, переменные могут прийти из окружения
		logger.Info("no .env file loaded", zap.Error(err))
	}

	return Config{
		Port: getEnv("PORT", "1414"),

		MongoURI: getEnv("MONGO_URI", ""),
		MongoDB:  getEnv("MONGO_DB", "storepos"),

		RedisAddr:     getEnv("REDIS_ADDR", ""),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		RedisDB:       getEnvInt(logger, "REDIS_DB", 0),

		StorefrontURL:   strings.TrimRight(getEnv("STOREFRONT_API_URL", "http://localhost:8000/api"), "/"),
		UpstreamTimeout: getEnvDuration(logger, "UPSTREAM_TIMEOUT", 10*time.Second),
		JWTSigningKey:   getEnv("JWT_SIGNING_KEY", ""),

		CORSOrigins: splitList(getEnv("CORS_ORIGINS", "http://localhost:5173")),
		Timezone:    getEnv("TIMEZONE", "Asia/Kolkata"),

		SessionIdleTTL:   getEnvDuration(logger, "SESSION_IDLE_TTL", 2*time.Hour),
		CustomerCacheTTL: getEnvDuration(logger, "CUSTOMER_CACHE_TTL", 5*time.Minute),
		AdvancePerUnit:   getEnvDecimal(logger, "RESERVATION_ADVANCE_PER_UNIT", decimal.NewFromInt(150)),

		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnvInt(logger, "SMTP_PORT", 465),
		SMTPUser:     getEnv("SMTP_USER", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		ReceiptFrom:  getEnv("RECEIPT_FROM", ""),
		ReceiptTo:    getEnv("RECEIPT_TO", ""),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(logger *zap.Logger, key string, defaultValue int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		logger.Warn("invalid integer, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvDuration(logger *zap.Logger, key string, defaultValue time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil || v <= 0 {
		logger.Warn("invalid duration, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func getEnvDecimal(logger *zap.Logger, key string, defaultValue decimal.Decimal) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := decimal.NewFromString(raw)
	if err != nil || v.IsNegative() {
		logger.Warn("invalid amount, using default", zap.String("key", key), zap.String("value", raw))
		return defaultValue
	}
	return v
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
