package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = "FOOD_ORDER"

const (
	StorageRedis    = "redis"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

const (
	CatalogPostgres = "postgres"
	CatalogStatic   = "static"
)

type Config struct {
	AppEnv    string `envconfig:"APP_ENV" default:"development"`
	Port      string `envconfig:"APP_PORT" default:"8082"`
	LogLevel  string `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat string `envconfig:"LOG_FORMAT" default:"json"`
	OriginURL string `envconfig:"ORIGIN_URL"`

	DatabaseURL   string `envconfig:"DATABASE_URL"`
	DBHost        string `envconfig:"DB_HOST" default:"localhost"`
	DBPort        string `envconfig:"DB_PORT" default:"5432"`
	DBUser        string `envconfig:"DB_USER" default:"postgres"`
	DBPassword    string `envconfig:"DB_PASSWORD" default:"postgres"`
	DBName        string `envconfig:"DB_NAME" default:"food_order"`
	DBSSLMode     string `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxConns    int32  `envconfig:"DB_MAX_CONNS" default:"10"`
	MigrationsDir string `envconfig:"MIGRATIONS_DIR" default:"database/migration"`

	RedisURL      string `envconfig:"REDIS_URL"`
	RedisAddr     string `envconfig:"REDIS_ADDR" default:"localhost:6379"`
	RedisPassword string `envconfig:"REDIS_PASSWORD"`
	StorageDriver string `envconfig:"STORAGE_DRIVER" default:"redis"`
	StorageNS     string `envconfig:"STORAGE_NAMESPACE" default:"food-order"`
	CatalogSource string `envconfig:"CATALOG_SOURCE" default:"postgres"`

	JWTSecret     string        `envconfig:"JWT_SECRET" default:"secret"`
	JWTExpiry     time.Duration `envconfig:"JWT_EXPIRY" default:"24h"`
	MaxUploadSize int64         `envconfig:"MAX_UPLOAD_SIZE" default:"5242880"`

	CloudinaryURL       string `envconfig:"CLOUDINARY_URL"`
	CloudinaryCloudName string `envconfig:"CLOUDINARY_CLOUD_NAME"`
	CloudinaryAPIKey    string `envconfig:"CLOUDINARY_API_KEY"`
	CloudinaryAPISecret string `envconfig:"CLOUDINARY_API_SECRET"`

	SMTPHost string `envconfig:"SMTP_HOST"`
	SMTPPort int    `envconfig:"SMTP_PORT" default:"587"`
	SMTPUser string `envconfig:"SMTP_USER"`
	SMTPPass string `envconfig:"SMTP_PASS"`
	SMTPFrom string `envconfig:"SMTP_FROM" default:"orders@food-order.local"`

	GoogleAPIKey     string `envconfig:"GOOGLE_API_KEY"`
	GeocodingBaseURL string `envconfig:"GEOCODING_BASE_URL" default:"https://maps.googleapis.com/maps/api/geocode/json"`

	TaxRate            string        `envconfig:"TAX_RATE" default:"0.15"`
	DeliveryFee        string        `envconfig:"DELIVERY_FEE" default:"4.99"`
	PaymentSuccessRate float64       `envconfig:"PAYMENT_SUCCESS_RATE" default:"0.9"`
	PaymentLatency     time.Duration `envconfig:"PAYMENT_LATENCY" default:"2s"`

	taxRate     decimal.Decimal
	deliveryFee decimal.Decimal
}

// LoadConfig reads .env (if present) and the FOOD_ORDER_* environment.
func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) validate() error {
	var err error
	if c.taxRate, err = decimal.NewFromString(c.TaxRate); err != nil {
		return fmt.Errorf("invalid tax rate %q: %w", c.TaxRate, err)
	}
	if c.taxRate.IsNegative() {
		return fmt.Errorf("tax rate must not be negative")
	}
	if c.deliveryFee, err = decimal.NewFromString(c.DeliveryFee); err != nil {
		return fmt.Errorf("invalid delivery fee %q: %w", c.DeliveryFee, err)
	}
	if c.deliveryFee.IsNegative() {
		return fmt.Errorf("delivery fee must not be negative")
	}
	if c.PaymentSuccessRate < 0 || c.PaymentSuccessRate > 1 {
		return fmt.Errorf("payment success rate must be within [0,1], got %v", c.PaymentSuccessRate)
	}

	c.StorageDriver = strings.ToLower(strings.TrimSpace(c.StorageDriver))
	switch c.StorageDriver {
	case StorageRedis, StoragePostgres, StorageMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.StorageDriver)
	}

	c.CatalogSource = strings.ToLower(strings.TrimSpace(c.CatalogSource))
	switch c.CatalogSource {
	case CatalogPostgres, CatalogStatic:
	default:
		return fmt.Errorf("unknown catalog source %q", c.CatalogSource)
	}
	return nil
}

func (c *Config) IsProduction() bool {
	return strings.EqualFold(c.AppEnv, "production")
}

func (c *Config) TaxRateDecimal() decimal.Decimal {
	return c.taxRate
}

func (c *Config) DeliveryFeeDecimal() decimal.Decimal {
	return c.deliveryFee
}

// DSN prefers DATABASE_URL and falls back to the individual DB_* settings.
func (c *Config) DSN() string {
	if c.DatabaseURL != "" {
		return c.DatabaseURL
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName, c.DBSSLMode,
	)
}

func (c *Config) MailerEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func (c *Config) CloudinaryEnabled() bool {
	return c.CloudinaryURL != "" ||
		(c.CloudinaryCloudName != "" && c.CloudinaryAPIKey != "" && c.CloudinaryAPISecret != "")
}
