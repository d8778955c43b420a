package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestLoadDefaults(t *testing.T) {
	for _, k := range []string{"PORT", "SWEEP_INTERVAL", "TX_MAX_RETRIES", "COIN_EXCHANGE_RATE"} {
		t.Setenv(k, "")
	}

	cfg := Load()
	assert.Equal(t, "3000", cfg.Server.Port)
	assert.Equal(t, time.Minute, cfg.Sweep.Interval)
	assert.Equal(t, 5, cfg.Database.TxMaxRetries)
	assert.True(t, cfg.Wallet.ExchangeRate.Equal(decimal.NewFromInt(10)))
}

func TestLoadOverrides(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
		check func(t *testing.T, cfg *Config)
	}{
		{"port", "PORT", "8080", func(t *testing.T, cfg *Config) {
			assert.Equal(t, "8080", cfg.Server.Port)
		}},
		{"sweep interval", "SWEEP_INTERVAL", "30s", func(t *testing.T, cfg *Config) {
			assert.Equal(t, 30*time.Second, cfg.Sweep.Interval)
		}},
		{"bad interval keeps default", "SWEEP_INTERVAL", "soon", func(t *testing.T, cfg *Config) {
			assert.Equal(t, time.Minute, cfg.Sweep.Interval)
		}},
		{"fractional exchange rate", "COIN_EXCHANGE_RATE", "2.5", func(t *testing.T, cfg *Config) {
			assert.True(t, cfg.Wallet.ExchangeRate.Equal(decimal.RequireFromString("2.5")))
		}},
		{"negative exchange rate keeps default", "COIN_EXCHANGE_RATE", "-1", func(t *testing.T, cfg *Config) {
			assert.True(t, cfg.Wallet.ExchangeRate.Equal(decimal.NewFromInt(10)))
		}},
		{"seed flag", "SEED_PACKAGES", "true", func(t *testing.T, cfg *Config) {
			assert.True(t, cfg.Database.SeedPackages)
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			tt.check(t, Load())
		})
	}
}
