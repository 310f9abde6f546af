package api

import (
	"os"
	"strings"

	"github.com/joho/godotenv"
	"go.temporal.io/sdk/client"

	"github.com/olamileke/vendora/internal/domains/payments/adapters/providers/monnify"
	"github.com/olamileke/vendora/internal/domains/payments/adapters/providers/opay"
	"github.com/olamileke/vendora/internal/domains/payments/adapters/providers/paystack"
)

// PaystackConfig carries Paystack credentials. The secret key doubles as
// the webhook HMAC secret.
type PaystackConfig struct {
	BaseURL   string
	SecretKey string
}

// MonnifyConfig carries Monnify credentials.
type MonnifyConfig struct {
	BaseURL      string
	APIKey       string
	SecretKey    string
	ContractCode string
}

// OPayConfig carries OPay credentials. The public key authenticates API
// calls; the private key verifies webhook signatures.
type OPayConfig struct {
	BaseURL    string
	PublicKey  string
	PrivateKey string
	MerchantID string
}

// Config carries environment-driven settings for the API process.
type Config struct {
	Port               string
	PostgresDSN        string
	RedisAddr          string
	KafkaBrokers       []string
	TemporalAddress    string
	TemporalNamespace  string
	TemporalDisabled   bool
	NotifyBaseURL      string
	OrderNumberPrefix  string
	PaymentCallbackURL string
	Paystack           PaystackConfig
	Monnify            MonnifyConfig
	OPay               OPayConfig
}

// LoadConfig reads environment variables and applies defaults. A .env file
// in the working directory is loaded first when present.
func LoadConfig() (Config, error) {
	_ = godotenv.Load()
	cfg := Config{
		Port:               envDefault("PORT", "8080"),
		PostgresDSN:        strings.TrimSpace(os.Getenv("POSTGRES_DSN")),
		RedisAddr:          strings.TrimSpace(os.Getenv("REDIS_ADDR")),
		TemporalAddress:    envDefault("TEMPORAL_ADDRESS", client.DefaultHostPort),
		TemporalNamespace:  envDefault("TEMPORAL_NAMESPACE", client.DefaultNamespace),
		TemporalDisabled:   isTruthy(os.Getenv("TEMPORAL_DISABLED")),
		NotifyBaseURL:      strings.TrimSpace(os.Getenv("NOTIFY_BASE_URL")),
		OrderNumberPrefix:  envDefault("ORDER_NUMBER_PREFIX", "VDR"),
		PaymentCallbackURL: strings.TrimSpace(os.Getenv("PAYMENT_CALLBACK_URL")),
		Paystack: PaystackConfig{
			BaseURL:   envDefault("PAYSTACK_BASE_URL", paystack.DefaultBaseURL),
			SecretKey: strings.TrimSpace(os.Getenv("PAYSTACK_SECRET_KEY")),
		},
		Monnify: MonnifyConfig{
			BaseURL:      envDefault("MONNIFY_BASE_URL", monnify.DefaultBaseURL),
			APIKey:       strings.TrimSpace(os.Getenv("MONNIFY_API_KEY")),
			SecretKey:    strings.TrimSpace(os.Getenv("MONNIFY_SECRET_KEY")),
			ContractCode: strings.TrimSpace(os.Getenv("MONNIFY_CONTRACT_CODE")),
		},
		OPay: OPayConfig{
			BaseURL:    envDefault("OPAY_BASE_URL", opay.DefaultBaseURL),
			PublicKey:  strings.TrimSpace(os.Getenv("OPAY_PUBLIC_KEY")),
			PrivateKey: strings.TrimSpace(os.Getenv("OPAY_PRIVATE_KEY")),
			MerchantID: strings.TrimSpace(os.Getenv("OPAY_MERCHANT_ID")),
		},
	}
	if raw := strings.TrimSpace(os.Getenv("KAFKA_BROKERS")); raw != "" {
		for _, broker := range strings.Split(raw, ",") {
			if broker = strings.TrimSpace(broker); broker != "" {
				cfg.KafkaBrokers = append(cfg.KafkaBrokers, broker)
			}
		}
	}
	return cfg, nil
}

func envDefault(key, fallback string) string {
	if val := strings.TrimSpace(os.Getenv(key)); val != "" {
		return val
	}
	return fallback
}

func isTruthy(value string) bool {
	value = strings.TrimSpace(strings.ToLower(value))
	return value == "1" || value == "true" || value == "yes"
}
