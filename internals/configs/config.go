package configs

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

/* =======================
   ENV LOADER
======================= */

// Config is built once at bootstrap and handed to the components that
// need it. Provider secrets are never read from package globals.
type Config struct {
	AppPort string

	JWTSecret        string
	JWTRefreshSecret string
	GoogleClientID   string

	DB DBConfig

	Payment PaymentConfig
}

type DBConfig struct {
	User     string
	Password string
	Host     string
	Port     string
	Name     string
	SSLMode  string
}

// PaymentConfig carries both gateway integrations: paystack is the
// current provider, midtrans is still live while the migration runs.
type PaymentConfig struct {
	DefaultProvider string

	PaystackSecretKey string
	PaystackBaseURL   string

	MidtransServerKey string
	MidtransUseProd   bool

	GatewayTimeout time.Duration
}

func Load() Config {
	if os.Getenv("RAILWAY_ENVIRONMENT") == "" {
		if err := godotenv.Load(); err != nil {
			log.Println("[WARN] no .env file found, using system ENV")
		}
	}

	cfg := Config{
		AppPort:          GetEnv("PORT", "3000"),
		JWTSecret:        GetEnv("JWT_SECRET"),
		JWTRefreshSecret: GetEnv("JWT_REFRESH_SECRET"),
		GoogleClientID:   GetEnv("GOOGLE_CLIENT_ID"),
		DB: DBConfig{
			User:     GetEnv("DB_USER"),
			Password: GetEnv("DB_PASSWORD"),
			Host:     GetEnv("DB_HOST"),
			Port:     GetEnv("DB_PORT", "5432"),
			Name:     GetEnv("DB_NAME"),
			SSLMode:  GetEnv("DB_SSLMODE", "require"),
		},
		Payment: PaymentConfig{
			DefaultProvider:   GetEnv("PAYMENT_DEFAULT_PROVIDER", "paystack"),
			PaystackSecretKey: GetEnv("PAYSTACK_SECRET_KEY"),
			PaystackBaseURL:   GetEnv("PAYSTACK_BASE_URL", "https://api.paystack.co"),
			MidtransServerKey: GetEnv("MIDTRANS_SERVER_KEY"),
			MidtransUseProd:   getEnvBool("MIDTRANS_USE_PROD", false),
			GatewayTimeout:    getEnvDuration("PAYMENT_GATEWAY_TIMEOUT", 10*time.Second),
		},
	}

	if cfg.JWTSecret == "" {
		log.Println("[ERROR] JWT_SECRET is not set")
	}
	if cfg.Payment.PaystackSecretKey == "" && cfg.Payment.MidtransServerKey == "" {
		log.Println("[WARN] no payment gateway key configured, payment routes will reject")
	}

	return cfg
}

func GetEnv(key string, defaultValue ...string) string {
	value, exists := os.LookupEnv(key)
	if !exists && len(defaultValue) > 0 {
		return defaultValue[0]
	}
	return value
}

func getEnvBool(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return def
}

func getEnvDuration(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil && d > 0 {
			return d
		}
	}
	return def
}
