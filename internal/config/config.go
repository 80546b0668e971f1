package config

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/ferdianp/subtrack/internal/billing"
	"github.com/ferdianp/subtrack/internal/domain"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:",squash"`
	Database  DatabaseConfig  `mapstructure:",squash"`
	Redis     RedisConfig     `mapstructure:",squash"`
	Scheduler SchedulerConfig `mapstructure:",squash"`
	Billing   BillingConfig   `mapstructure:",squash"`
	Health    HealthConfig    `mapstructure:",squash"`
}

type ServerConfig struct {
	Port         string `mapstructure:"SERVER_PORT"`
	Host         string `mapstructure:"SERVER_HOST"`
	Env          string `mapstructure:"ENV"`
	ReadTimeout  string `mapstructure:"SERVER_READ_TIMEOUT"`
	WriteTimeout string `mapstructure:"SERVER_WRITE_TIMEOUT"`
}

type DatabaseConfig struct {
	URL          string `mapstructure:"DATABASE_URL"`
	MaxOpenConns int    `mapstructure:"DATABASE_MAX_OPEN_CONNS"`
	MaxIdleConns int    `mapstructure:"DATABASE_MAX_IDLE_CONNS"`
}

type RedisConfig struct {
	Host     string `mapstructure:"REDIS_HOST"`
	Port     string `mapstructure:"REDIS_PORT"`
	Password string `mapstructure:"REDIS_PASSWORD"`
	DB       int    `mapstructure:"REDIS_DB"`
	StatsTTL string `mapstructure:"REDIS_STATS_TTL"`
}

type SchedulerConfig struct {
	Timezone     string `mapstructure:"SCHEDULER_TIMEZONE"`
	RefreshSpec  string `mapstructure:"SCHEDULER_REFRESH_SPEC"`
	ReminderSpec string `mapstructure:"SCHEDULER_REMINDER_SPEC"`
}

// BillingConfig carries the business settings: the reporting defaults and
// the exchange-rate table, expressed relative to CNY.
type BillingConfig struct {
	DefaultCurrency string `mapstructure:"DEFAULT_CURRENCY"`
	TrendMonths     int    `mapstructure:"TREND_MONTHS"`
	UpcomingDays    int    `mapstructure:"UPCOMING_WINDOW_DAYS"`
	RateCNY         string `mapstructure:"EXCHANGE_RATE_CNY"`
	RateUSD         string `mapstructure:"EXCHANGE_RATE_USD"`
	RateEUR         string `mapstructure:"EXCHANGE_RATE_EUR"`
	RateGBP         string `mapstructure:"EXCHANGE_RATE_GBP"`
}

type HealthConfig struct {
	Timeout string `mapstructure:"HEALTH_CHECK_TIMEOUT"`
}

// Load reads configuration from environment variables and files
func Load() (*Config, error) {
	// Set defaults
	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("SERVER_HOST", "0.0.0.0")
	viper.SetDefault("ENV", "development")
	viper.SetDefault("SERVER_READ_TIMEOUT", "10s")
	viper.SetDefault("SERVER_WRITE_TIMEOUT", "10s")
	viper.SetDefault("DATABASE_MAX_OPEN_CONNS", 25)
	viper.SetDefault("DATABASE_MAX_IDLE_CONNS", 5)
	viper.SetDefault("REDIS_HOST", "localhost")
	viper.SetDefault("REDIS_PORT", "6379")
	viper.SetDefault("REDIS_DB", 0)
	viper.SetDefault("REDIS_STATS_TTL", "5m")
	viper.SetDefault("SCHEDULER_TIMEZONE", "UTC")
	viper.SetDefault("SCHEDULER_REFRESH_SPEC", "0 0 0 * * *")
	viper.SetDefault("SCHEDULER_REMINDER_SPEC", "0 0 9 * * *")
	viper.SetDefault("DEFAULT_CURRENCY", "USD")
	viper.SetDefault("TREND_MONTHS", 12)
	viper.SetDefault("UPCOMING_WINDOW_DAYS", 30)
	viper.SetDefault("EXCHANGE_RATE_CNY", "1")
	viper.SetDefault("EXCHANGE_RATE_USD", "0.14")
	viper.SetDefault("EXCHANGE_RATE_EUR", "0.13")
	viper.SetDefault("EXCHANGE_RATE_GBP", "0.11")
	viper.SetDefault("HEALTH_CHECK_TIMEOUT", "5s")

	// Read from environment variables
	viper.AutomaticEnv()

	// Try to read from .env file (optional)
	viper.SetConfigName(".env")
	viper.SetConfigType("env")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./deployments")

	// Don't fail if .env file doesn't exist
	_ = viper.ReadInConfig()

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Server.Port == "" {
		return fmt.Errorf("SERVER_PORT is required")
	}

	if c.Database.URL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	validCurrency := false
	for _, cur := range domain.Currencies() {
		if domain.Currency(c.Billing.DefaultCurrency) == cur {
			validCurrency = true
			break
		}
	}
	if !validCurrency {
		return fmt.Errorf("DEFAULT_CURRENCY must be one of %v", domain.Currencies())
	}

	if c.Billing.TrendMonths <= 0 {
		return fmt.Errorf("TREND_MONTHS must be greater than 0")
	}

	if c.Billing.UpcomingDays < 0 {
		return fmt.Errorf("UPCOMING_WINDOW_DAYS must not be negative")
	}

	for key, raw := range c.rateStrings() {
		rate, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", key, err)
		}
		if !rate.IsPositive() {
			return fmt.Errorf("%s must be positive", key)
		}
	}

	if _, err := time.ParseDuration(c.Server.ReadTimeout); err != nil {
		return fmt.Errorf("SERVER_READ_TIMEOUT must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Server.WriteTimeout); err != nil {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Redis.StatsTTL); err != nil {
		return fmt.Errorf("REDIS_STATS_TTL must be a valid duration: %w", err)
	}

	if _, err := time.ParseDuration(c.Health.Timeout); err != nil {
		return fmt.Errorf("HEALTH_CHECK_TIMEOUT must be a valid duration: %w", err)
	}

	return nil
}

func (c *Config) rateStrings() map[string]string {
	return map[string]string{
		"EXCHANGE_RATE_CNY": c.Billing.RateCNY,
		"EXCHANGE_RATE_USD": c.Billing.RateUSD,
		"EXCHANGE_RATE_EUR": c.Billing.RateEUR,
		"EXCHANGE_RATE_GBP": c.Billing.RateGBP,
	}
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

// RateTable builds the immutable exchange-rate table from the configured
// values. Call after Validate; malformed entries fall back to rate 1.
func (c *Config) RateTable() billing.RateTable {
	table := billing.RateTable{}
	for cur, raw := range map[domain.Currency]string{
		domain.CurrencyCNY: c.Billing.RateCNY,
		domain.CurrencyUSD: c.Billing.RateUSD,
		domain.CurrencyEUR: c.Billing.RateEUR,
		domain.CurrencyGBP: c.Billing.RateGBP,
	} {
		if rate, err := decimal.NewFromString(raw); err == nil && rate.IsPositive() {
			table[cur] = rate
		}
	}
	return table
}

// DefaultCurrency returns the configured reporting currency.
func (c *Config) DefaultCurrency() domain.Currency {
	return domain.Currency(c.Billing.DefaultCurrency)
}

// GetReadTimeout returns the server read timeout as duration
func (c *Config) GetReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.ReadTimeout)
	return d
}

// GetWriteTimeout returns the server write timeout as duration
func (c *Config) GetWriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Server.WriteTimeout)
	return d
}

// GetStatsTTL returns the stats cache TTL as duration
func (c *Config) GetStatsTTL() time.Duration {
	d, _ := time.ParseDuration(c.Redis.StatsTTL)
	return d
}

// GetHealthTimeout returns the health check timeout as duration
func (c *Config) GetHealthTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Health.Timeout)
	return d
}
