package config

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ferdianp/subtrack/internal/domain"
)

func validConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Port:         "8080",
			Host:         "0.0.0.0",
			Env:          "development",
			ReadTimeout:  "10s",
			WriteTimeout: "10s",
		},
		Database: DatabaseConfig{URL: "postgres://localhost/subtrack?sslmode=disable"},
		Redis:    RedisConfig{StatsTTL: "5m"},
		Billing: BillingConfig{
			DefaultCurrency: "USD",
			TrendMonths:     12,
			UpcomingDays:    30,
			RateCNY:         "1",
			RateUSD:         "0.14",
			RateEUR:         "0.13",
			RateGBP:         "0.11",
		},
		Health: HealthConfig{Timeout: "5s"},
	}
}

func TestValidate(t *testing.T) {
	assert.NoError(t, validConfig().Validate())
}

func TestValidate_Failures(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"missing database url", func(c *Config) { c.Database.URL = "" }},
		{"missing server port", func(c *Config) { c.Server.Port = "" }},
		{"unsupported default currency", func(c *Config) { c.Billing.DefaultCurrency = "JPY" }},
		{"non-positive trend months", func(c *Config) { c.Billing.TrendMonths = 0 }},
		{"negative upcoming window", func(c *Config) { c.Billing.UpcomingDays = -1 }},
		{"malformed exchange rate", func(c *Config) { c.Billing.RateUSD = "lots" }},
		{"non-positive exchange rate", func(c *Config) { c.Billing.RateEUR = "0" }},
		{"malformed read timeout", func(c *Config) { c.Server.ReadTimeout = "soon" }},
		{"malformed stats ttl", func(c *Config) { c.Redis.StatsTTL = "whenever" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}

func TestRateTable(t *testing.T) {
	table := validConfig().RateTable()

	require.Contains(t, table, domain.CurrencyUSD)
	assert.True(t, table[domain.CurrencyUSD].Equal(decimal.RequireFromString("0.14")))
	assert.True(t, table[domain.CurrencyCNY].Equal(decimal.NewFromInt(1)))
}

func TestRateTable_SkipsMalformedEntries(t *testing.T) {
	cfg := validConfig()
	cfg.Billing.RateGBP = "not-a-rate"

	table := cfg.RateTable()
	assert.NotContains(t, table, domain.CurrencyGBP)
}

func TestEnvironmentHelpers(t *testing.T) {
	cfg := validConfig()
	assert.True(t, cfg.IsDevelopment())
	assert.False(t, cfg.IsProduction())

	cfg.Server.Env = "prod"
	assert.True(t, cfg.IsProduction())
}
