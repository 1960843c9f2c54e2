package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	// Create a temporary config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
server:
  port: 9090
  host: "0.0.0.0"
  allowed_origins:
    - "https://shop.example.com"

database:
  url: "postgres://localhost/storefront?sslmode=disable"
  max_open_conns: 10

redis:
  enabled: true
  addr: "redis.internal:6379"

polling:
  interval_seconds: 2
  intent_limit: 50

pricing:
  fallback_ratio: 0.8
  net_prices:
    "pubg monthly": 25.5

storage:
  s3_bucket: "shop-images"
  aws_region: "eu-west-1"
  public_base_url: "https://cdn.example.com"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Test server config
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, []string{"https://shop.example.com"}, cfg.Server.AllowedOrigins)

	// Test database config
	assert.Equal(t, "postgres://localhost/storefront?sslmode=disable", cfg.Database.URL)
	assert.Equal(t, 10, cfg.Database.MaxOpenConns)

	// Test redis config
	assert.True(t, cfg.Redis.Enabled)
	assert.Equal(t, "redis.internal:6379", cfg.Redis.Addr)

	// Test polling config
	assert.Equal(t, 2, cfg.Polling.IntervalSeconds)
	assert.Equal(t, 50, cfg.Polling.IntentLimit)

	// Test pricing config
	assert.Equal(t, 0.8, cfg.Pricing.FallbackRatio)
	assert.Equal(t, 25.5, cfg.Pricing.NetPrices["pubg monthly"])

	// Test storage config
	assert.Equal(t, "shop-images", cfg.Storage.S3Bucket)
	assert.Equal(t, "eu-west-1", cfg.Storage.AWSRegion)
	assert.Equal(t, "https://cdn.example.com", cfg.Storage.PublicBaseURL)
}

func TestLoadDefaults(t *testing.T) {
	// Create a minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
database:
  url: "postgres://localhost/storefront"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	cfg, err := Load(configPath)
	require.NoError(t, err)

	// Verify defaults are applied
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Polling.IntervalSeconds)
	assert.Equal(t, 20, cfg.Polling.IntentLimit)
	assert.Equal(t, 60, cfg.Expiry.CheckIntervalMinutes)
	assert.Equal(t, 0.85, cfg.Pricing.FallbackRatio)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestLoadFromEnv(t *testing.T) {
	// Create a minimal config file
	tmpDir := t.TempDir()
	configPath := filepath.Join(tmpDir, "config.yaml")

	configContent := `
database:
  url: "postgres://file-host/storefront"
`
	err := os.WriteFile(configPath, []byte(configContent), 0644)
	require.NoError(t, err)

	os.Setenv("DATABASE_URL", "postgres://env-host/storefront")
	os.Setenv("REDIS_ADDR", "env-redis:6379")
	defer func() {
		os.Unsetenv("DATABASE_URL")
		os.Unsetenv("REDIS_ADDR")
	}()

	cfg, err := LoadFromEnv(configPath)
	require.NoError(t, err)

	// Environment variables should override file values
	assert.Equal(t, "postgres://env-host/storefront", cfg.Database.URL)
	assert.Equal(t, "env-redis:6379", cfg.Redis.Addr)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadFileNotFound(t *testing.T) {
	_, err := Load("/nonexistent/path/config.yaml")
	assert.Error(t, err)
}

func TestLoadFromEnvMissingFileUsesDefaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://env-host/storefront")

	// No config file committed: the server must still come up on
	// defaults plus environment overrides.
	cfg, err := LoadFromEnv(filepath.Join(t.TempDir(), "config.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "localhost", cfg.Server.Host)
	assert.Equal(t, "postgres://env-host/storefront", cfg.Database.URL)
	assert.Equal(t, 0.85, cfg.Pricing.FallbackRatio)
	assert.Equal(t, "INFO", cfg.Log.Level)
}

func TestInterval(t *testing.T) {
	cfg := PollingConfig{IntervalSeconds: 120}
	assert.Equal(t, 120*1000000000, int(cfg.Interval().Nanoseconds()))
}

func TestCheckInterval(t *testing.T) {
	cfg := ExpiryConfig{CheckIntervalMinutes: 30}
	assert.Equal(t, 30*60*1000000000, int(cfg.CheckInterval().Nanoseconds()))
}
