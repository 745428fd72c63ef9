package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"github.com/shopspring/decimal"
)

const EnvPrefix = "FLASHIT"

const (
	AppEnvDev  = "dev"
	AppEnvProd = "prod"
)

const (
	DriverMemory   = "memory"
	DriverRedis    = "redis"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

const minSessionSecret = 32

// devSessionSecret is the built-in secret; it must match the Secret default
// tag and is refused outside dev.
const devSessionSecret = "dev-session-secret-change-me-please"

type Config struct {
	App      AppConfig
	Storage  StorageConfig
	Redis    RedisConfig
	DB       DBConfig
	SQLite   SQLiteConfig
	Cart     CartConfig
	Session  SessionConfig
	Metrics  MetricsConfig
	Upstream UpstreamConfig
}

// Load reads an optional .env file and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env      string `envconfig:"FLASHIT_APP_ENV" default:"dev"`
	Port     string `envconfig:"FLASHIT_APP_PORT"`
	LogLevel string `envconfig:"FLASHIT_LOG_LEVEL" default:"info"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

// PortOr returns the configured port or def when none was set.
func (a AppConfig) PortOr(def string) string {
	if a.Port != "" {
		return a.Port
	}
	return def
}

type StorageConfig struct {
	Driver    string `envconfig:"FLASHIT_STORAGE_DRIVER" default:"memory"`
	KeyPrefix string `envconfig:"FLASHIT_STORAGE_KEY" default:"flashit_cart"`
}

type RedisConfig struct {
	URL          string        `envconfig:"FLASHIT_REDIS_URL"`
	Address      string        `envconfig:"FLASHIT_REDIS_ADDR"`
	Password     string        `envconfig:"FLASHIT_REDIS_PASSWORD"`
	DB           int           `envconfig:"FLASHIT_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"FLASHIT_REDIS_POOL_SIZE" default:"10"`
	DialTimeout  time.Duration `envconfig:"FLASHIT_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"FLASHIT_REDIS_READ_TIMEOUT" default:"3s"`
	WriteTimeout time.Duration `envconfig:"FLASHIT_REDIS_WRITE_TIMEOUT" default:"3s"`
}

type DBConfig struct {
	DSN             string        `envconfig:"FLASHIT_DB_DSN"`
	MaxOpenConns    int           `envconfig:"FLASHIT_DB_MAX_OPEN_CONNS" default:"10"`
	MaxIdleConns    int           `envconfig:"FLASHIT_DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"FLASHIT_DB_CONN_MAX_LIFETIME" default:"1h"`
	AutoMigrate     bool          `envconfig:"FLASHIT_DB_AUTO_MIGRATE" default:"false"`
}

type SQLiteConfig struct {
	Path string `envconfig:"FLASHIT_SQLITE_PATH" default:"flashit.db"`
}

type CartConfig struct {
	TaxRate               decimal.Decimal `envconfig:"FLASHIT_CART_TAX_RATE" default:"0.08"`
	FreeShippingThreshold decimal.Decimal `envconfig:"FLASHIT_CART_FREE_SHIPPING_THRESHOLD" default:"500"`
	ShippingCost          decimal.Decimal `envconfig:"FLASHIT_CART_SHIPPING_COST" default:"99.99"`
	MaxLineQuantity       int             `envconfig:"FLASHIT_CART_MAX_LINE_QUANTITY" default:"99"`
	MutationsPerMinute    int             `envconfig:"FLASHIT_CART_MUTATIONS_PER_MINUTE" default:"120"`
	IdleTimeout           time.Duration   `envconfig:"FLASHIT_CART_IDLE_TIMEOUT" default:"30m"`
}

type SessionConfig struct {
	Secret     string        `envconfig:"FLASHIT_SESSION_SECRET" default:"dev-session-secret-change-me-please"`
	TTL        time.Duration `envconfig:"FLASHIT_SESSION_TTL" default:"720h"`
	CookieName string        `envconfig:"FLASHIT_SESSION_COOKIE" default:"flashit_session"`
}

type MetricsConfig struct {
	Enabled bool   `envconfig:"FLASHIT_METRICS_ENABLED" default:"true"`
	Token   string `envconfig:"FLASHIT_METRICS_TOKEN"`
}

type UpstreamConfig struct {
	CatalogURL string `envconfig:"FLASHIT_CATALOG_URL" default:"http://catalog:8082"`
	CartURL    string `envconfig:"FLASHIT_CART_URL" default:"http://cart:8084"`
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case DriverMemory, DriverRedis, DriverPostgres, DriverSQLite:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}

	if c.Storage.Driver == DriverRedis && c.Redis.URL == "" && c.Redis.Address == "" {
		return errors.New("redis storage requires FLASHIT_REDIS_URL or FLASHIT_REDIS_ADDR")
	}
	if c.Storage.Driver == DriverPostgres && c.DB.DSN == "" {
		return errors.New("postgres storage requires FLASHIT_DB_DSN")
	}
	if strings.TrimSpace(c.Storage.KeyPrefix) == "" {
		return errors.New("storage key must not be empty")
	}

	if c.Cart.TaxRate.IsNegative() || c.Cart.FreeShippingThreshold.IsNegative() || c.Cart.ShippingCost.IsNegative() {
		return errors.New("cart pricing values must not be negative")
	}
	if c.Cart.MaxLineQuantity < 1 {
		return errors.New("cart max line quantity must be at least 1")
	}

	if !c.App.IsDev() && c.Session.Secret == devSessionSecret {
		return errors.New("FLASHIT_SESSION_SECRET must be set outside dev")
	}
	if !c.App.IsDev() && len(c.Session.Secret) < minSessionSecret {
		return fmt.Errorf("session secret must be at least %d chars outside dev", minSessionSecret)
	}
	return nil
}
