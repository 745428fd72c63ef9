package config

import (
	"os"
	"reflect"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("FLASHIT_APP_ENV", "dev")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.Equal(t, "flashit_cart", cfg.Storage.KeyPrefix)
	assert.True(t, cfg.Cart.TaxRate.Equal(decimal.RequireFromString("0.08")))
	assert.True(t, cfg.Cart.FreeShippingThreshold.Equal(decimal.NewFromInt(500)))
	assert.True(t, cfg.Cart.ShippingCost.Equal(decimal.RequireFromString("99.99")))
	assert.Equal(t, 99, cfg.Cart.MaxLineQuantity)
	assert.Equal(t, 30*time.Minute, cfg.Cart.IdleTimeout)
	assert.Equal(t, "8084", cfg.App.PortOr("8084"))
}

func TestLoadOverrides(t *testing.T) {
	t.Setenv("FLASHIT_APP_ENV", "dev")
	t.Setenv("FLASHIT_APP_PORT", "9000")
	t.Setenv("FLASHIT_CART_TAX_RATE", "0.2")
	t.Setenv("FLASHIT_STORAGE_DRIVER", "sqlite")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9000", cfg.App.PortOr("8084"))
	assert.True(t, cfg.Cart.TaxRate.Equal(decimal.RequireFromString("0.2")))
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
}

func TestValidate(t *testing.T) {
	base := func() Config {
		return Config{
			App:     AppConfig{Env: AppEnvDev},
			Storage: StorageConfig{Driver: DriverMemory, KeyPrefix: "flashit_cart"},
			Cart: CartConfig{
				TaxRate:               decimal.RequireFromString("0.08"),
				FreeShippingThreshold: decimal.NewFromInt(500),
				ShippingCost:          decimal.RequireFromString("99.99"),
				MaxLineQuantity:       99,
			},
		}
	}

	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr bool
	}{
		{name: "ok", mutate: func(c *Config) {}},
		{name: "unknown driver", mutate: func(c *Config) { c.Storage.Driver = "etcd" }, wantErr: true},
		{name: "redis without address", mutate: func(c *Config) { c.Storage.Driver = DriverRedis }, wantErr: true},
		{name: "redis with url", mutate: func(c *Config) {
			c.Storage.Driver = DriverRedis
			c.Redis.URL = "redis://localhost:6379/0"
		}},
		{name: "postgres without dsn", mutate: func(c *Config) { c.Storage.Driver = DriverPostgres }, wantErr: true},
		{name: "negative tax", mutate: func(c *Config) { c.Cart.TaxRate = decimal.NewFromInt(-1) }, wantErr: true},
		{name: "zero max quantity", mutate: func(c *Config) { c.Cart.MaxLineQuantity = 0 }, wantErr: true},
		{name: "short secret in prod", mutate: func(c *Config) {
			c.App.Env = AppEnvProd
			c.Session.Secret = "short"
		}, wantErr: true},
		{name: "built-in secret in prod", mutate: func(c *Config) {
			c.App.Env = AppEnvProd
			c.Session.Secret = devSessionSecret
		}, wantErr: true},
		{name: "own secret in prod", mutate: func(c *Config) {
			c.App.Env = AppEnvProd
			c.Session.Secret = "a-real-secret-of-at-least-32-chars!!"
		}},
		{name: "built-in secret in dev", mutate: func(c *Config) { c.Session.Secret = devSessionSecret }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			c := base()
			tc.mutate(&c)
			err := c.Validate()
			if tc.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestLoadRejectsBuiltInSecretInProd(t *testing.T) {
	t.Setenv("FLASHIT_APP_ENV", "prod")
	// Setenv restores the variable after the test; unset it so the default tag applies.
	t.Setenv("FLASHIT_SESSION_SECRET", "")
	require.NoError(t, os.Unsetenv("FLASHIT_SESSION_SECRET"))

	_, err := Load()
	require.ErrorContains(t, err, "FLASHIT_SESSION_SECRET")
}

func TestDevSecretMatchesDefaultTag(t *testing.T) {
	f, ok := reflect.TypeOf(SessionConfig{}).FieldByName("Secret")
	require.True(t, ok)
	assert.Equal(t, devSessionSecret, f.Tag.Get("default"))
}
