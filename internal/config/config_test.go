package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fjod/freshbuy/internal/paystack"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"HTTP_PORT", "DB_PORT", "PAYSTACK_BASE_URL", "PAYSTACK_TIMEOUT", "TAX_RATE", "SHIPPING_FEE", "KAFKA_BROKERS", "FRONTEND_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8000", cfg.HTTPPort)
	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, paystack.DefaultBaseURL, cfg.PaystackBaseURL)
	assert.Equal(t, paystack.DefaultTimeout, cfg.PaystackTimeout)
	assert.Equal(t, "0.08", cfg.Pricing.TaxRate.String())
	assert.Equal(t, "9.99", cfg.Pricing.ShippingFee.String())
	assert.Equal(t, []string{"localhost:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, "http://localhost:5173/payment-status", cfg.PaymentCallbackURL())
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("DB_PORT", "6543")
	t.Setenv("KAFKA_BROKERS", "k1:9092, k2:9092,")
	t.Setenv("PAYSTACK_TIMEOUT", "3s")
	t.Setenv("FRONTEND_URL", "https://shop.example.com/")
	t.Setenv("TAX_RATE", "0.075")
	t.Setenv("FREE_SHIPPING_THRESHOLD", "100")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 6543, cfg.DB.Port)
	assert.Equal(t, []string{"k1:9092", "k2:9092"}, cfg.KafkaBrokers)
	assert.Equal(t, 3*time.Second, cfg.PaystackTimeout)
	assert.Equal(t, "0.075", cfg.Pricing.TaxRate.String())
	assert.Equal(t, "100", cfg.Pricing.FreeShippingThreshold.String())
	assert.Equal(t, "https://shop.example.com/payment-status", cfg.PaymentCallbackURL())
}

func TestLoad_InvalidValues(t *testing.T) {
	t.Setenv("DB_PORT", "postgres")
	t.Setenv("REQUEST_TIMEOUT", "soon")
	t.Setenv("SHIPPING_FEE", "free")

	_, err := Load()
	require.Error(t, err)
	assert.ErrorContains(t, err, "DB_PORT")
	assert.ErrorContains(t, err, "REQUEST_TIMEOUT")
	assert.ErrorContains(t, err, "SHIPPING_FEE")
}

func TestRequireServing(t *testing.T) {
	cfg := &Config{}
	err := cfg.RequireServing()
	require.Error(t, err)
	assert.ErrorContains(t, err, "JWT_SECRET")
	assert.ErrorContains(t, err, "PAYSTACK_SECRET_KEY")

	cfg.JWTSecret = "s"
	cfg.PaystackSecretKey = "sk_test"
	assert.NoError(t, cfg.RequireServing())
}
