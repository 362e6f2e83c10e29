package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := FromViper(newViper())

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 10*time.Minute, cfg.SearchCacheTTL)
	assert.Equal(t, 500, cfg.SearchCacheSize)
	assert.Equal(t, 1000, cfg.CounterQueueSize)
	assert.True(t, cfg.Development())
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("APP_ENV", "prod")
	t.Setenv("SITE_URL", "https://topmeup.app/")
	t.Setenv("SEARCH_CACHE_TTL", "30s")

	cfg := FromViper(newViper())

	assert.Equal(t, "9090", cfg.Port)
	assert.False(t, cfg.Development())
	assert.Equal(t, "https://topmeup.app", cfg.SiteURL)
	assert.Equal(t, 30*time.Second, cfg.SearchCacheTTL)
}

func TestValidateSessionSecret(t *testing.T) {
	t.Setenv("APP_ENV", "dev")
	t.Setenv("SESSION_SECRET", "")
	cfg := FromViper(newViper())
	require.NoError(t, cfg.Validate())

	t.Setenv("APP_ENV", "prod")
	cfg = FromViper(newViper())
	assert.EqualError(t, cfg.Validate(), "SESSION_SECRET must be set in production")

	t.Setenv("SESSION_SECRET", "a-real-secret-from-the-vault")
	cfg = FromViper(newViper())
	assert.NoError(t, cfg.Validate())
}
