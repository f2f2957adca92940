package config

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("loads default values when env vars not set", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "orderentry", cfg.App.Name)
		assert.Equal(t, "development", cfg.App.Env)
		assert.Equal(t, "8080", cfg.App.Port)
		assert.Equal(t, "localhost", cfg.Database.Host)
		assert.Equal(t, 5432, cfg.Database.Port)
		assert.Equal(t, "orderentry", cfg.Database.DBName)
		assert.Equal(t, 25, cfg.Database.MaxOpenConns)
		assert.False(t, cfg.Redis.Enabled)
		assert.Equal(t, "orderentry:stock:", cfg.Redis.KeyPrefix)
		assert.True(t, cfg.Pricing.VATRate.Equal(decimal.NewFromInt(5)))
		assert.Equal(t, "inclusive", cfg.Pricing.DefaultTaxMode)
		assert.True(t, cfg.Pricing.DefaultVATApplies)
		assert.Equal(t, "retail", cfg.Pricing.DefaultRateType)
		assert.Equal(t, 30*time.Second, cfg.Stock.CacheTTL)
		assert.Equal(t, 300*time.Millisecond, cfg.Stock.Debounce)
		assert.Equal(t, 3*time.Second, cfg.Stock.LookupTimeout)
		assert.Equal(t, "orderentry", cfg.Telemetry.ServiceName)
		assert.False(t, cfg.Telemetry.Profiling.Enabled)
		assert.Equal(t, "orderentry", cfg.Telemetry.Profiling.ApplicationName)
	})

	t.Run("loads the nested profiling section", func(t *testing.T) {
		t.Setenv("ORDERENTRY_TELEMETRY_PROFILING_ENABLED", "true")
		t.Setenv("ORDERENTRY_TELEMETRY_PROFILING_SERVER_ADDRESS", "http://pyroscope:4040")
		t.Setenv("ORDERENTRY_TELEMETRY_PROFILING_SPAN_PROFILES", "true")
		t.Setenv("ORDERENTRY_TELEMETRY_PROFILING_PROFILE_MUTEX", "true")

		cfg, err := Load()
		require.NoError(t, err)

		p := cfg.Telemetry.Profiling
		assert.True(t, p.Enabled)
		assert.Equal(t, "http://pyroscope:4040", p.ServerAddress)
		assert.Equal(t, "orderentry", p.ApplicationName)
		assert.True(t, p.SpanProfiles)
		assert.True(t, p.ProfileMutex)
		assert.False(t, p.ProfileBlock)
	})

	t.Run("loads values from environment variables with ORDERENTRY prefix", func(t *testing.T) {
		t.Setenv("ORDERENTRY_APP_PORT", "9000")
		t.Setenv("ORDERENTRY_DATABASE_HOST", "testdb.local")
		t.Setenv("ORDERENTRY_DATABASE_PORT", "5433")
		t.Setenv("ORDERENTRY_REDIS_ENABLED", "true")
		t.Setenv("ORDERENTRY_PRICING_VAT_RATE", "12.5")
		t.Setenv("ORDERENTRY_PRICING_DEFAULT_TAX_MODE", "Exclusive")
		t.Setenv("ORDERENTRY_PRICING_DEFAULT_VAT_APPLIES", "false")
		t.Setenv("ORDERENTRY_PRICING_DEFAULT_RATE_TYPE", "wholesale")
		t.Setenv("ORDERENTRY_STOCK_CACHE_TTL", "1m")
		t.Setenv("ORDERENTRY_STOCK_DEBOUNCE", "150ms")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9000", cfg.App.Port)
		assert.Equal(t, "testdb.local", cfg.Database.Host)
		assert.Equal(t, 5433, cfg.Database.Port)
		assert.True(t, cfg.Redis.Enabled)
		assert.Equal(t, "localhost:6379", cfg.Redis.Addr())
		assert.True(t, cfg.Pricing.VATRate.Equal(decimal.RequireFromString("12.5")))
		assert.Equal(t, "exclusive", cfg.Pricing.DefaultTaxMode)
		assert.False(t, cfg.Pricing.DefaultVATApplies)
		assert.Equal(t, "wholesale", cfg.Pricing.DefaultRateType)
		assert.Equal(t, time.Minute, cfg.Stock.CacheTTL)
		assert.Equal(t, 150*time.Millisecond, cfg.Stock.Debounce)
	})

	t.Run("rejects unknown tax mode", func(t *testing.T) {
		t.Setenv("ORDERENTRY_PRICING_DEFAULT_TAX_MODE", "gross")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "default_tax_mode")
	})

	t.Run("rejects malformed vat rate", func(t *testing.T) {
		t.Setenv("ORDERENTRY_PRICING_VAT_RATE", "five")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "vat_rate")
	})

	t.Run("production requires database password", func(t *testing.T) {
		t.Setenv("ORDERENTRY_APP_ENV", "production")
		t.Setenv("ORDERENTRY_DATABASE_SSLMODE", "require")

		_, err := Load()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "database.password")
	})
}

func TestConfig_Validate(t *testing.T) {
	valid := func() *Config {
		cfg := &Config{}
		applyDefaults(cfg)
		return cfg
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"defaults are valid", func(*Config) {}, ""},
		{"idle exceeds open", func(c *Config) { c.Database.MaxIdleConns = 30 }, "max_idle_conns"},
		{"negative vat", func(c *Config) { c.Pricing.VATRate = decimal.NewFromInt(-1) }, "vat_rate"},
		{"unknown rate type", func(c *Config) { c.Pricing.DefaultRateType = "vip" }, "default_rate_type"},
		{"negative debounce", func(c *Config) { c.Stock.Debounce = -time.Second }, "stock durations"},
		{"sampling out of range", func(c *Config) { c.Telemetry.SamplingRatio = 1.5 }, "sampling_ratio"},
		{"profiling without server", func(c *Config) { c.Telemetry.Profiling.Enabled = true }, "profiling.server_address"},
		{"profiling with server", func(c *Config) {
			c.Telemetry.Profiling.Enabled = true
			c.Telemetry.Profiling.ServerAddress = "http://localhost:4040"
		}, ""},
		{"full sql in production", func(c *Config) {
			c.App.Env = "production"
			c.Database.Password = "secret"
			c.Database.SSLMode = "require"
			c.Telemetry.DBLogFullSQL = true
		}, "db_log_full_sql"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)
			err := cfg.validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestDatabaseConfig_DSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db",
		Port:     5432,
		User:     "entry",
		Password: "s3cret",
		DBName:   "orderentry",
		SSLMode:  "disable",
	}
	assert.Equal(t, "postgres://entry:s3cret@db:5432/orderentry?sslmode=disable", d.DSN())
}
