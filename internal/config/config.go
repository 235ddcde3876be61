package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported values for DB_DRIVER.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

// Config is the typed view over environment and config-file settings.
type Config struct {
	AppPort     string
	Env         string
	JWTSecret   string
	TokenTTL    time.Duration
	CORSOrigin  string
	DBDriver    string
	DatabaseDSN string
	MongoURI    string
	MongoDB     string
	RabbitMQURL string
	Pricing     PricingConfig
}

// PricingConfig carries the checkout pricing policy.
type PricingConfig struct {
	FreeShippingThreshold float64
	FlatShippingFee       float64
	TaxRate               float64
}

// IsDevelopment reports whether the server runs in development mode.
func (c Config) IsDevelopment() bool {
	return c.Env == EnvDevelopment
}

// IsProduction reports whether error stacks must be hidden.
func (c Config) IsProduction() bool {
	return c.Env == EnvProduction
}

// SetDefaults registers every default on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("APP_PORT", ":8080")
	v.SetDefault("APP_ENV", EnvDevelopment)
	v.SetDefault("JWT_SECRET", "")
	v.SetDefault("TOKEN_TTL", "720h")
	v.SetDefault("CORS_ORIGIN", "http://localhost:5173")
	v.SetDefault("DB_DRIVER", DriverSQLite)
	v.SetDefault("DATABASE_DSN", "storefront.db")
	v.SetDefault("MONGO_URI", "mongodb://localhost:27017")
	v.SetDefault("MONGO_DATABASE", "storefront")
	v.SetDefault("RABBITMQ_URL", "")
	v.SetDefault("PRICING_FREE_SHIPPING_THRESHOLD", 100.0)
	v.SetDefault("PRICING_FLAT_SHIPPING_FEE", 10.0)
	v.SetDefault("PRICING_TAX_RATE", 0.15)
}

// Load reads config.yaml (if present) and the environment.
func Load() (Config, error) {
	v := viper.New()
	SetDefaults(v)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
	}
	return FromViper(v)
}

// FromViper builds a Config from an already-populated viper instance.
func FromViper(v *viper.Viper) (Config, error) {
	cfg := Config{
		AppPort:     v.GetString("APP_PORT"),
		Env:         strings.ToLower(v.GetString("APP_ENV")),
		JWTSecret:   v.GetString("JWT_SECRET"),
		TokenTTL:    v.GetDuration("TOKEN_TTL"),
		CORSOrigin:  v.GetString("CORS_ORIGIN"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DatabaseDSN: v.GetString("DATABASE_DSN"),
		MongoURI:    v.GetString("MONGO_URI"),
		MongoDB:     v.GetString("MONGO_DATABASE"),
		RabbitMQURL: v.GetString("RABBITMQ_URL"),
		Pricing: PricingConfig{
			FreeShippingThreshold: v.GetFloat64("PRICING_FREE_SHIPPING_THRESHOLD"),
			FlatShippingFee:       v.GetFloat64("PRICING_FLAT_SHIPPING_FEE"),
			TaxRate:               v.GetFloat64("PRICING_TAX_RATE"),
		},
	}

	if cfg.JWTSecret == "" {
		if !cfg.IsDevelopment() {
			return Config{}, errors.New("JWT_SECRET must be set outside development")
		}
		cfg.JWTSecret = "dev_jwt_secret"
	}
	if cfg.TokenTTL <= 0 {
		return Config{}, fmt.Errorf("invalid TOKEN_TTL %q", v.GetString("TOKEN_TTL"))
	}
	switch cfg.DBDriver {
	case DriverSQLite, DriverPostgres, DriverMongo:
	default:
		return Config{}, fmt.Errorf("unsupported DB_DRIVER %q", cfg.DBDriver)
	}
	return cfg, nil
}
