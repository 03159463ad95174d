package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/framecart/backend/internal/domain"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "8080", cfg.Server.Port)
		assert.Equal(t, "development", cfg.Server.Environment)
		assert.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
		assert.Equal(t, domain.DefaultAPIVersion, cfg.Store.APIVersion)
		assert.Equal(t, 20, cfg.Store.TimeoutSeconds)
		assert.Equal(t, "gemini-2.5-flash", cfg.Gemini.Model)
		assert.Equal(t, 1, cfg.Video.TargetFPS)
		assert.Equal(t, 10, cfg.Video.MaxFrames)
		assert.Equal(t, 5, cfg.Match.LimitPerItem)
		assert.Equal(t, 6, cfg.Match.MaxItems)
		assert.Equal(t, 1, cfg.Match.Workers)
	})

	t.Run("environment variables override defaults", func(t *testing.T) {
		t.Setenv("FRAMECART_SERVER_PORT", "9090")
		t.Setenv("FRAMECART_STORE_DOMAIN", "demo.myshopify.com")
		t.Setenv("FRAMECART_STORE_ACCESS_TOKEN", "token-from-env")

		cfg, err := Load()
		require.NoError(t, err)

		assert.Equal(t, "9090", cfg.Server.Port)
		assert.Equal(t, "demo.myshopify.com", cfg.Store.Domain)
		assert.Equal(t, "token-from-env", cfg.Store.AccessToken)
	})

	t.Run("rejects a non-positive store timeout", func(t *testing.T) {
		t.Setenv("FRAMECART_STORE_TIMEOUT_SECONDS", "0")

		_, err := Load()
		assert.Error(t, err)
	})

	t.Run("rejects zero match workers", func(t *testing.T) {
		t.Setenv("FRAMECART_MATCH_WORKERS", "0")

		_, err := Load()
		assert.Error(t, err)
	})
}

func TestStoreConfig(t *testing.T) {
	t.Run("normalizes the domain and converts the timeout", func(t *testing.T) {
		cfg := &Config{Store: Store{
			Domain:         "https://demo.myshopify.com/",
			AccessToken:    "token",
			TimeoutSeconds: 30,
		}}

		store := cfg.StoreConfig()
		assert.Equal(t, "demo.myshopify.com", store.Domain)
		assert.Equal(t, domain.DefaultAPIVersion, store.APIVersion)
		assert.Equal(t, 30*time.Second, store.Timeout)
	})

	t.Run("empty credentials survive until first use", func(t *testing.T) {
		cfg := &Config{Store: Store{TimeoutSeconds: 20}}

		store := cfg.StoreConfig()
		assert.Empty(t, store.Domain)
		assert.Error(t, store.Validate())
	})
}
