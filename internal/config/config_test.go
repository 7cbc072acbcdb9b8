package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, StorePostgres, cfg.StoreDriver)
	require.Equal(t, uint16(8080), cfg.HTTP.Port)
	require.Equal(t, 5, cfg.Psql.TxMaxRetries)
	require.Equal(t, 20*time.Millisecond, cfg.Psql.TxRetryBackoff)
	require.False(t, cfg.Redis.Enabled)
	require.Equal(t, "viral_reward", cfg.Metrics.Namespace)
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("STORE_DRIVER", "memory")
	t.Setenv("HTTP_ALLOWED_ORIGINS", "https://a.example,https://b.example")
	t.Setenv("MARKET_ADVERTISER_BONUS", "50000")
	t.Setenv("LOG_FORMAT", "json")

	cfg, err := Load()
	require.NoError(t, err)

	require.Equal(t, StoreMemory, cfg.StoreDriver)
	require.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.AllowedOrigins)
	require.Equal(t, int64(50000), cfg.Market.AdvertiserBonus)
	require.Equal(t, "json", cfg.Log.SlogFormat())
}

func TestLoadRejectsUnknownDriver(t *testing.T) {
	t.Setenv("STORE_DRIVER", "firestore")

	_, err := Load()
	require.Error(t, err)
}

func TestLoadRejectsNegativeBonus(t *testing.T) {
	t.Setenv("MARKET_CLIPPER_BONUS", "-1")

	_, err := Load()
	require.Error(t, err)
}
