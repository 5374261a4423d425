package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Server      ServerConfig
	API         APIConfig
	Session     SessionConfig
	Store       StoreConfig
	Bank        BankConfig
	MercadoPago MercadoPagoConfig
	Upload      UploadConfig
}

type ServerConfig struct {
	Port string
	Host string
	Env  string
}

// APIConfig points at the external REST backend that owns all business data.
type APIConfig struct {
	BaseURL string
	Timeout time.Duration
}

type SessionConfig struct {
	Secret string
}

// StoreConfig selects the per-browser state store. With an empty RedisAddr
// the server keeps browser state in process memory.
type StoreConfig struct {
	RedisAddr string
	TTL       time.Duration
}

// BankConfig holds the static transfer details shown in the payment flow.
type BankConfig struct {
	BankName      string
	AccountType   string
	AccountNumber string
	HolderName    string
	HolderRUT     string
	ContactEmail  string
}

type MercadoPagoConfig struct {
	PaymentLink string
}

type UploadConfig struct {
	MaxReceiptBytes int64
	MaxImageDim     int
}

func Load() (*Config, error) {
	// Load .env files if they exist (try .env.local first, then .env)
	_ = godotenv.Load(".env.local")
	_ = godotenv.Load(".env")

	config := &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "8080"),
			Host: getEnv("HOST", "localhost"),
			Env:  getEnv("ENV", "development"),
		},
		API: APIConfig{
			BaseURL: getEnv("API_BASE_URL", "http://localhost:8000/api"),
			Timeout: time.Duration(getEnvAsInt("API_TIMEOUT_SECONDS", 30)) * time.Second,
		},
		Session: SessionConfig{
			Secret: getEnv("SESSION_SECRET", "your-secret-key-change-in-production"),
		},
		Store: StoreConfig{
			RedisAddr: getEnv("REDIS_ADDR", ""),
			TTL:       time.Duration(getEnvAsInt("STORE_TTL_DAYS", 30)) * 24 * time.Hour,
		},
		Bank: BankConfig{
			BankName:      getEnv("BANK_NAME", "Banco de Chile"),
			AccountType:   getEnv("BANK_ACCOUNT_TYPE", "Cuenta Corriente"),
			AccountNumber: getEnv("BANK_ACCOUNT_NUMBER", ""),
			HolderName:    getEnv("BANK_HOLDER_NAME", "TMM Bienestar SpA"),
			HolderRUT:     getEnv("BANK_HOLDER_RUT", ""),
			ContactEmail:  getEnv("BANK_CONTACT_EMAIL", "contacto@tmmbienestar.cl"),
		},
		MercadoPago: MercadoPagoConfig{
			PaymentLink: getEnv("MERCADOPAGO_PAYMENT_LINK", ""),
		},
		Upload: UploadConfig{
			MaxReceiptBytes: int64(getEnvAsInt("MAX_RECEIPT_BYTES", 5*1024*1024)),
			MaxImageDim:     getEnvAsInt("MAX_RECEIPT_IMAGE_DIM", 2000),
		},
	}

	return config, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
