package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
)

type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	JWT      JWTConfig
	Sweep    SweepConfig
	Wallet   WalletConfig
}

type ServerConfig struct {
	Port string
}

type DatabaseConfig struct {
	URL          string
	MaxIdleConns int
	MaxOpenConns int
	TxMaxRetries int
	TxBackoff    time.Duration
	SeedPackages bool
}

type JWTConfig struct {
	Secret string
	TTL    time.Duration
}

type SweepConfig struct {
	Interval      time.Duration
	Workers       int
	EntityTimeout time.Duration
}

type WalletConfig struct {
	// ExchangeRate is how many coins one unit of balance buys.
	ExchangeRate decimal.Decimal
}

func Load() *Config {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	return &Config{
		Server: ServerConfig{
			Port: getEnv("PORT", "3000"),
		},
		Database: DatabaseConfig{
			URL:          getEnv("DATABASE_URL", "postgres://postgres@localhost:5432/clipfeed?sslmode=disable"),
			MaxIdleConns: getInt("DB_MAX_IDLE_CONNS", 10),
			MaxOpenConns: getInt("DB_MAX_OPEN_CONNS", 100),
			TxMaxRetries: getInt("TX_MAX_RETRIES", 5),
			TxBackoff:    getDuration("TX_BACKOFF", 20*time.Millisecond),
			SeedPackages: getBool("SEED_PACKAGES", false),
		},
		JWT: JWTConfig{
			Secret: getEnv("JWT_SECRET", "change-me"),
			TTL:    getDuration("JWT_TTL", 24*time.Hour),
		},
		Sweep: SweepConfig{
			Interval:      getDuration("SWEEP_INTERVAL", time.Minute),
			Workers:       getInt("SWEEP_WORKERS", 8),
			EntityTimeout: getDuration("SWEEP_ENTITY_TIMEOUT", 5*time.Second),
		},
		Wallet: WalletConfig{
			ExchangeRate: getDecimal("COIN_EXCHANGE_RATE", decimal.NewFromInt(10)),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getInt(key string, defaultValue int) int {
	v, err := strconv.Atoi(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getBool(key string, defaultValue bool) bool {
	v, err := strconv.ParseBool(os.Getenv(key))
	if err != nil {
		return defaultValue
	}
	return v
}

func getDuration(key string, defaultValue time.Duration) time.Duration {
	v, err := time.ParseDuration(os.Getenv(key))
	if err != nil || v <= 0 {
		return defaultValue
	}
	return v
}

func getDecimal(key string, defaultValue decimal.Decimal) decimal.Decimal {
	v, err := decimal.NewFromString(os.Getenv(key))
	if err != nil || !v.IsPositive() {
		return defaultValue
	}
	return v
}
