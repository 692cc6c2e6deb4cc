package config

import (
	"fmt"
	"strings"
	"time"
	_ "time/tzdata"

	"github.com/segyhp/rental-engine/internal/calculator"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Scheduler SchedulerConfig `mapstructure:"scheduler"`
	Logging   LoggingConfig   `mapstructure:"log"`
	Business  BusinessConfig  `mapstructure:"business"`
	Gateway   GatewayConfig   `mapstructure:"gateway"`
	Notify    NotifyConfig    `mapstructure:"notify"`
	Health    HealthConfig    `mapstructure:"health"`
}

type ServerConfig struct {
	Port         string        `mapstructure:"port"`
	Host         string        `mapstructure:"host"`
	Env          string        `mapstructure:"env"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	URL             string        `mapstructure:"url"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type SchedulerConfig struct {
	OverdueSweep string `mapstructure:"overdue_sweep"`
}

type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type BusinessConfig struct {
	DriverSurchargePerDay string `mapstructure:"driver_surcharge_per_day"`
	InsuranceRate         string `mapstructure:"insurance_rate"`
	LateFeeRate           string `mapstructure:"late_fee_rate"`
	ReturnCutoffHour      int    `mapstructure:"return_cutoff_hour"`
	Currency              string `mapstructure:"currency"`
	Timezone              string `mapstructure:"timezone"`
}

type GatewayConfig struct {
	StripeSecretKey     string        `mapstructure:"stripe_secret_key"`
	StripeWebhookSecret string        `mapstructure:"stripe_webhook_secret"`
	SuccessURL          string        `mapstructure:"success_url"`
	CancelURL           string        `mapstructure:"cancel_url"`
	AwaitTimeout        time.Duration `mapstructure:"await_timeout"`
}

type NotifyConfig struct {
	SendGridAPIKey    string `mapstructure:"sendgrid_api_key"`
	SendGridFromEmail string `mapstructure:"sendgrid_from_email"`
	SendGridFromName  string `mapstructure:"sendgrid_from_name"`
	TwilioAccountSID  string `mapstructure:"twilio_account_sid"`
	TwilioAuthToken   string `mapstructure:"twilio_auth_token"`
	TwilioFromNumber  string `mapstructure:"twilio_from_number"`
}

type HealthConfig struct {
	Timeout time.Duration `mapstructure:"timeout"`
}

var defaults = map[string]interface{}{
	"server.port":                       "8080",
	"server.host":                       "0.0.0.0",
	"server.env":                        "development",
	"server.read_timeout":               "15s",
	"server.write_timeout":              "6m",
	"database.url":                      "",
	"database.max_open_conns":           25,
	"database.max_idle_conns":           5,
	"database.conn_max_lifetime":        "30m",
	"redis.host":                        "localhost",
	"redis.port":                        "6379",
	"redis.password":                    "",
	"redis.db":                          0,
	"scheduler.overdue_sweep":           "0 0 10 * * *",
	"log.level":                         "info",
	"log.format":                        "json",
	"business.driver_surcharge_per_day": "50",
	"business.insurance_rate":           "0.15",
	"business.late_fee_rate":            "0.10",
	"business.return_cutoff_hour":       9,
	"business.currency":                 "GHS",
	"business.timezone":                 "Africa/Accra",
	"gateway.stripe_secret_key":         "",
	"gateway.stripe_webhook_secret":     "",
	"gateway.success_url":               "http://localhost:3000/bookings/payment/success?session_id={CHECKOUT_SESSION_ID}",
	"gateway.cancel_url":                "http://localhost:3000/bookings/payment/cancelled",
	"gateway.await_timeout":             "5m",
	"notify.sendgrid_api_key":           "",
	"notify.sendgrid_from_email":        "",
	"notify.sendgrid_from_name":         "Fleet Desk",
	"notify.twilio_account_sid":         "",
	"notify.twilio_auth_token":          "",
	"notify.twilio_from_number":         "",
	"health.timeout":                    "5s",
}

// Load reads configuration from environment variables and an optional .env file.
// Keys map to upper-case env names, e.g. business.late_fee_rate -> BUSINESS_LATE_FEE_RATE.
func Load() (*Config, error) {
	// Don't fail if .env file doesn't exist
	_ = godotenv.Load()

	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var config Config
	if err := v.Unmarshal(&config); err != nil {
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

	for name, raw := range map[string]string{
		"BUSINESS_DRIVER_SURCHARGE_PER_DAY": c.Business.DriverSurchargePerDay,
		"BUSINESS_INSURANCE_RATE":           c.Business.InsuranceRate,
		"BUSINESS_LATE_FEE_RATE":            c.Business.LateFeeRate,
	} {
		d, err := decimal.NewFromString(raw)
		if err != nil {
			return fmt.Errorf("%s must be a valid decimal: %w", name, err)
		}
		if d.IsNegative() {
			return fmt.Errorf("%s must not be negative", name)
		}
	}

	if c.Business.ReturnCutoffHour < 0 || c.Business.ReturnCutoffHour > 23 {
		return fmt.Errorf("BUSINESS_RETURN_CUTOFF_HOUR must be between 0 and 23")
	}

	if len(c.Business.Currency) != 3 {
		return fmt.Errorf("BUSINESS_CURRENCY must be a 3-letter ISO code")
	}

	if _, err := time.LoadLocation(c.Business.Timezone); err != nil {
		return fmt.Errorf("BUSINESS_TIMEZONE must be a valid IANA zone: %w", err)
	}

	if c.Gateway.AwaitTimeout <= 0 {
		return fmt.Errorf("GATEWAY_AWAIT_TIMEOUT must be greater than 0")
	}

	// Mobile-money creation blocks inside the request for up to AwaitTimeout.
	if c.Server.WriteTimeout <= c.Gateway.AwaitTimeout {
		return fmt.Errorf("SERVER_WRITE_TIMEOUT (%s) must exceed GATEWAY_AWAIT_TIMEOUT (%s)",
			c.Server.WriteTimeout, c.Gateway.AwaitTimeout)
	}

	return nil
}

// IsDevelopment returns true if running in development environment
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development" || c.Server.Env == "dev"
}

// IsProduction returns true if running in production environment
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production" || c.Server.Env == "prod"
}

func (c *Config) DriverSurchargePerDay() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Business.DriverSurchargePerDay)
	return d
}

func (c *Config) InsuranceRate() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Business.InsuranceRate)
	return d
}

func (c *Config) LateFeeRate() decimal.Decimal {
	d, _ := decimal.NewFromString(c.Business.LateFeeRate)
	return d
}

// Policy assembles the pricing, refund and penalty constants.
func (c *Config) Policy() calculator.Policy {
	return calculator.Policy{
		DriverSurchargePerDay: c.DriverSurchargePerDay(),
		InsuranceRate:         c.InsuranceRate(),
		LateFeeRate:           c.LateFeeRate(),
		ReturnCutoffHour:      c.Business.ReturnCutoffHour,
	}
}

// Location returns the business timezone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Business.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// RedisAddr returns host:port for the redis client
func (c *Config) RedisAddr() string {
	return c.Redis.Host + ":" + c.Redis.Port
}
