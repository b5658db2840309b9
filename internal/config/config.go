package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"

	"github.com/fjod/freshbuy/internal/domain"
	"github.com/fjod/freshbuy/internal/paystack"
)

type Database struct {
	Host           string
	Port           int
	User           string
	Password       string
	Name           string
	MigrationsPath string
}

type Config struct {
	HTTPPort string
	DB       Database

	RedisAddr     string
	RedisPassword string
	MongoURI      string
	MongoDBName   string
	KafkaBrokers  []string

	PaystackBaseURL   string
	PaystackSecretKey string
	PaystackTimeout   time.Duration
	FrontendURL       string

	JWTSecret    string
	GeminiAPIKey string
	Pricing      domain.Pricing

	RequestTimeout  time.Duration
	ShutdownTimeout time.Duration
	LogLevel        string
	OTLPEndpoint    string
}

// PaymentCallbackURL is where the provider sends the buyer after payment.
func (c *Config) PaymentCallbackURL() string {
	return strings.TrimRight(c.FrontendURL, "/") + "/payment-status"
}

// Load reads the configuration from the environment. Malformed numbers, decimals and
// durations are reported together.
func Load() (*Config, error) {
	var errs []error

	cfg := &Config{
		HTTPPort: getEnv("HTTP_PORT", "8000"),
		DB: Database{
			Host:           getEnv("DB_HOST", "localhost"),
			Port:           getInt("DB_PORT", 5432, &errs),
			User:           getEnv("DB_USER", "postgres"),
			Password:       getEnv("DB_PASSWORD", "postgres"),
			Name:           getEnv("DB_NAME", "freshbuy"),
			MigrationsPath: getEnv("MIGRATIONS_PATH", "./internal/repository/migrations"),
		},
		RedisAddr:     getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword: getEnv("REDIS_PASSWORD", ""),
		MongoURI:      getEnv("MONGO_URI", "mongodb://localhost:27017"),
		MongoDBName:   getEnv("MONGO_DB_NAME", "freshbuy"),
		KafkaBrokers:  splitList(getEnv("KAFKA_BROKERS", "localhost:9092")),

		PaystackBaseURL:   getEnv("PAYSTACK_BASE_URL", paystack.DefaultBaseURL),
		PaystackSecretKey: getEnv("PAYSTACK_SECRET_KEY", ""),
		PaystackTimeout:   getDuration("PAYSTACK_TIMEOUT", paystack.DefaultTimeout, &errs),
		FrontendURL:       getEnv("FRONTEND_URL", "http://localhost:5173"),

		JWTSecret:    getEnv("JWT_SECRET", ""),
		GeminiAPIKey: getEnv("GEMINI_API_KEY", ""),

		RequestTimeout:  getDuration("REQUEST_TIMEOUT", 30*time.Second, &errs),
		ShutdownTimeout: getDuration("SHUTDOWN_TIMEOUT", 10*time.Second, &errs),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		OTLPEndpoint:    getEnv("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
	}

	pricing := domain.DefaultPricing()
	cfg.Pricing = domain.Pricing{
		TaxRate:               getDecimal("TAX_RATE", pricing.TaxRate, &errs),
		ShippingFee:           getDecimal("SHIPPING_FEE", pricing.ShippingFee, &errs),
		FreeShippingThreshold: getDecimal("FREE_SHIPPING_THRESHOLD", pricing.FreeShippingThreshold, &errs),
	}

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return cfg, nil
}

// RequireServing reports the settings the HTTP server cannot start without.
func (c *Config) RequireServing() error {
	var missing []string
	if c.JWTSecret == "" {
		missing = append(missing, "JWT_SECRET")
	}
	if c.PaystackSecretKey == "" {
		missing = append(missing, "PAYSTACK_SECRET_KEY")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required settings: %s", strings.Join(missing, ", "))
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int, errs *[]error) int {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration, errs *[]error) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
		return defaultValue
	}
	return v
}

func getDecimal(key string, defaultValue decimal.Decimal, errs *[]error) decimal.Decimal {
	raw := os.Getenv(key)
	if raw == "" {
		return defaultValue
	}
	v, err := decimal.NewFromString(raw)
	if err != nil {
		*errs = append(*errs, fmt.Errorf("invalid %s: %w", key, err))
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
