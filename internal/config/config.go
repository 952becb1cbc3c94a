package config

import (
	"os"
	"strconv"
	"strings"
	"time"
)

// Config holds all configuration for the application.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Redis      RedisConfig
	NewRelic   NewRelicConfig
	Settlement SettlementConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds PostgreSQL configuration.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
}

// RedisConfig holds Redis configuration.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// NewRelicConfig holds New Relic configuration.
type NewRelicConfig struct {
	AppName    string
	LicenseKey string
	Enabled    bool
}

// SettlementConfig holds the settlement engine's initial pricing
// parameters and the company account owner. All pricing values are only
// the boot snapshot; operators tune them at runtime through the settings
// endpoint.
type SettlementConfig struct {
	CommissionRate      float64
	FixedFee            float64
	PercentageFee       float64
	MinPaymentAmount    float64
	MaxPaymentAmount    float64
	SupportedCurrencies []string
	CacheTTL            time.Duration

	// AdminOwnerID identifies the company-owned settlement account. It is
	// injected here so the engine never has to look up "the admin" at
	// settle time.
	AdminOwnerID string

	ReconcileInterval time.Duration
	ReconcileGrace    time.Duration
}

// Load loads configuration from environment variables.
func Load() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         getEnv("SERVER_PORT", "8080"),
			ReadTimeout:  getDurationEnv("SERVER_READ_TIMEOUT", 10*time.Second),
			WriteTimeout: getDurationEnv("SERVER_WRITE_TIMEOUT", 10*time.Second),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "postgres"),
			Password: getEnv("DB_PASSWORD", "postgres"),
			DBName:   getEnv("DB_NAME", "settlement"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASSWORD", ""),
			DB:       getIntEnv("REDIS_DB", 0),
		},
		NewRelic: NewRelicConfig{
			AppName:    getEnv("NEW_RELIC_APP_NAME", "payment-settlement"),
			LicenseKey: getEnv("NEW_RELIC_LICENSE_KEY", ""),
			Enabled:    getBoolEnv("NEW_RELIC_ENABLED", false),
		},
		Settlement: SettlementConfig{
			CommissionRate:      getFloatEnv("SETTLEMENT_COMMISSION_RATE", 0.15),
			FixedFee:            getFloatEnv("SETTLEMENT_FIXED_FEE", 0),
			PercentageFee:       getFloatEnv("SETTLEMENT_PERCENTAGE_FEE", 0),
			MinPaymentAmount:    getFloatEnv("SETTLEMENT_MIN_AMOUNT", 0),
			MaxPaymentAmount:    getFloatEnv("SETTLEMENT_MAX_AMOUNT", 1_000_000),
			SupportedCurrencies: getListEnv("SETTLEMENT_CURRENCIES", []string{"IQD", "USD"}),
			CacheTTL:            getDurationEnv("SETTLEMENT_CACHE_TTL", 10*time.Minute),
			AdminOwnerID:        getEnv("SETTLEMENT_ADMIN_OWNER_ID", "company"),
			ReconcileInterval:   getDurationEnv("SETTLEMENT_RECONCILE_INTERVAL", 5*time.Minute),
			ReconcileGrace:      getDurationEnv("SETTLEMENT_RECONCILE_GRACE", time.Minute),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intVal, err := strconv.Atoi(value); err == nil {
			return intVal
		}
	}
	return defaultValue
}

func getFloatEnv(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatVal, err := strconv.ParseFloat(value, 64); err == nil {
			return floatVal
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolVal, err := strconv.ParseBool(value); err == nil {
			return boolVal
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
