package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Port        string
	DatabaseURL string
	JWTSecret   string
	AutoMigrate bool

	// AppURL is the SPA origin used for checkout return URLs.
	AppURL string
	// PublicAPIURL is where the gateways reach this service (notification URL).
	PublicAPIURL string
	Currency     string

	CredentialsTTL      time.Duration
	DefaultPlanDuration time.Duration

	MercadoPagoBaseURL string

	WebhookArchiveBucket string
	AWSRegion            string

	// GatewaySettings holds gateway credentials taken from the environment,
	// keyed the same way as the app_settings table.
	GatewaySettings map[string]string
}

// gateway credential env vars -> app_settings keys
var gatewayEnv = map[string]string{
	"MERCADOPAGO_ACCESS_TOKEN":   "mercadopago_access_token",
	"MERCADOPAGO_PUBLIC_KEY":     "mercadopago_public_key",
	"MERCADOPAGO_WEBHOOK_SECRET": "mercadopago_webhook_secret",
	"STRIPE_SECRET_KEY":          "stripe_access_token",
	"STRIPE_PUBLISHABLE_KEY":     "stripe_public_key",
	"STRIPE_WEBHOOK_SECRET":      "stripe_webhook_secret",
}

func LoadEnv() *Config {
	err := godotenv.Load()
	if err != nil {
		log.Println("No .env file found. Using system environment variables.")
	}

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		DatabaseURL: mustEnv("DB_URL"),
		JWTSecret:   mustEnv("JWT_SECRET"),
		AutoMigrate: getBool("AUTO_MIGRATE", false),

		AppURL:       strings.TrimRight(getEnv("APP_URL", "http://localhost:5173"), "/"),
		PublicAPIURL: strings.TrimRight(mustEnv("PUBLIC_API_URL"), "/"),
		Currency:     strings.ToUpper(getEnv("PAYMENT_CURRENCY", "BRL")),

		CredentialsTTL:      getDuration("CREDENTIALS_TTL", 5*time.Minute),
		DefaultPlanDuration: time.Duration(getInt("PLAN_DEFAULT_DURATION_DAYS", 30)) * 24 * time.Hour,

		MercadoPagoBaseURL: getEnv("MERCADOPAGO_BASE_URL", "https://api.mercadopago.com"),

		WebhookArchiveBucket: getEnv("WEBHOOK_ARCHIVE_BUCKET", ""),
		AWSRegion:            getEnv("AWS_REGION", "us-east-1"),

		GatewaySettings: map[string]string{},
	}

	for env, key := range gatewayEnv {
		if v := getEnv(env, ""); v != "" {
			cfg.GatewaySettings[key] = v
		}
	}

	return cfg
}

func mustEnv(key string) string {
	v, ok := os.LookupEnv(key)
	if !ok || v == "" {
		log.Fatalf("Missing required environment variable: %s", key)
	}
	return v
}

func getEnv(key string, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func getBool(key string, fallback bool) bool {
	v, err := strconv.ParseBool(getEnv(key, ""))
	if err != nil {
		return fallback
	}
	return v
}

func getInt(key string, fallback int) int {
	v, err := strconv.Atoi(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	v, err := time.ParseDuration(getEnv(key, ""))
	if err != nil || v <= 0 {
		return fallback
	}
	return v
}
