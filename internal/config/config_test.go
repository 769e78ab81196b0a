package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestLoad tests environment-driven configuration.
//
// WHY: Feed timeouts and cache TTLs bound every external call; a silently
// ignored typo would leave the server either hammering the feed or hanging.
func TestLoad(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "localhost:5001", cfg.Server.Addr)
		assert.Equal(t, 10*time.Second, cfg.Feed.Timeout)
		assert.Equal(t, 15*time.Minute, cfg.Feed.PriceCacheTTL)
		assert.Equal(t, 24*time.Hour, cfg.Feed.DividendCacheTTL)
		assert.Equal(t, 4, cfg.Feed.Concurrency)
		assert.Equal(t, "@every 15m", cfg.Scheduler.AlertSchedule)
		assert.Equal(t, []string{"http://localhost:3000", "http://localhost"}, cfg.CORS.AllowedOrigins)
	})

	t.Run("overrides", func(t *testing.T) {
		t.Setenv("SERVER_HOST", "0.0.0.0")
		t.Setenv("SERVER_PORT", "8080")
		t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
		t.Setenv("LOG_PRETTY", "true")
		t.Setenv("FEED_TIMEOUT", "3s")
		t.Setenv("FEED_CONCURRENCY", "8")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "0.0.0.0:8080", cfg.Server.Addr)
		assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
		assert.True(t, cfg.Log.Pretty)
		assert.Equal(t, 3*time.Second, cfg.Feed.Timeout)
		assert.Equal(t, 8, cfg.Feed.Concurrency)
	})

	t.Run("invalid values are rejected", func(t *testing.T) {
		cases := map[string]string{
			"FEED_TIMEOUT":     "soon",
			"PRICE_CACHE_TTL":  "-1m",
			"FEED_CONCURRENCY": "0",
			"LOG_PRETTY":       "maybe",
		}
		for key, value := range cases {
			t.Run(key, func(t *testing.T) {
				t.Setenv(key, value)
				_, err := Load()
				assert.Error(t, err)
			})
		}
	})
}
