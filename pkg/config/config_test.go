package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "5000", cfg.AppPort)
	assert.Equal(t, "file", cfg.CatalogSource)
	assert.Equal(t, "products.json", cfg.CatalogPath)
	assert.Equal(t, 20, cfg.DefaultPageLimit)
	assert.Equal(t, 100, cfg.MaxPageLimit)
	assert.True(t, cfg.MetricsEnabled)
	assert.Equal(t, "http://localhost:5000/api", cfg.APIURL)
	assert.Equal(t, "storefront:cart", cfg.CartKey)
	assert.NotEmpty(t, cfg.CartPath)
	assert.Equal(t, 5*time.Minute, cfg.RateLimitTTL)
}

func TestLoadConfigFromEnv(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("APP_PORT", "9000")
	t.Setenv("CATALOG_SOURCE", "mysql")
	t.Setenv("DEFAULT_PAGE_LIMIT", "12")
	t.Setenv("MAX_PAGE_LIMIT", "-4")
	t.Setenv("RATE_LIMIT_RPS", "2.5")
	t.Setenv("RATE_LIMIT_TTL", "90s")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("CART_STORE", "redis")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.GetAppPortInt())
	assert.Equal(t, "mysql", cfg.CatalogSource)
	assert.Equal(t, 12, cfg.DefaultPageLimit)
	assert.Equal(t, 100, cfg.MaxPageLimit)
	assert.Equal(t, 2.5, cfg.RateLimitRPS)
	assert.Equal(t, 90*time.Second, cfg.RateLimitTTL)
	assert.False(t, cfg.MetricsEnabled)
	assert.Equal(t, "redis", cfg.CartStore)
}

func TestGetDSN(t *testing.T) {
	cfg := &Config{DBUser: "shop", DBPassword: "secret", DBHost: "db", DBPort: "3307", DBName: "catalog"}
	assert.Equal(t, "shop:secret@tcp(db:3307)/catalog?parseTime=true&charset=utf8mb4", cfg.GetDSN())
}

func TestGetAppPortIntFallback(t *testing.T) {
	cfg := &Config{AppPort: "http"}
	assert.Equal(t, 5000, cfg.GetAppPortInt())
}
