package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseDefaults(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, "agrimarket", cfg.DBName)
	assert.Equal(t, VersionIncrement, cfg.ApplicationVersionPolicy)
	assert.Equal(t, uint(5), cfg.RateLimit)
	assert.Equal(t, time.Second, cfg.RateLimitWindow)
	assert.Equal(t, 24*time.Hour, cfg.IdempotencyTTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
}

func TestParseRequiresSecret(t *testing.T) {
	t.Setenv("SECRET", "")

	_, err := Parse()
	assert.Error(t, err)
}

func TestParseVersionPolicy(t *testing.T) {
	t.Setenv("SECRET", "test-secret")

	t.Run("fixed is case insensitive", func(t *testing.T) {
		t.Setenv("APPLICATION_VERSION_POLICY", "FIXED")
		cfg, err := Parse()
		require.NoError(t, err)
		assert.Equal(t, VersionFixed, cfg.ApplicationVersionPolicy)
	})

	t.Run("unknown policy rejected", func(t *testing.T) {
		t.Setenv("APPLICATION_VERSION_POLICY", "semver")
		_, err := Parse()
		assert.ErrorContains(t, err, "APPLICATION_VERSION_POLICY")
	})
}

func TestParseOverrides(t *testing.T) {
	t.Setenv("SECRET", "test-secret")
	t.Setenv("RATE_LIMIT", "20")
	t.Setenv("RATE_LIMIT_WINDOW", "1m")
	t.Setenv("CORS_ORIGINS", "https://a.example,https://b.example")

	cfg, err := Parse()
	require.NoError(t, err)

	assert.Equal(t, uint(20), cfg.RateLimit)
	assert.Equal(t, time.Minute, cfg.RateLimitWindow)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
}

func TestParseRejectsZeroRateLimit(t *testing.T) {
	t.Setenv("SECRET", "test-secret")
	t.Setenv("RATE_LIMIT", "0")

	_, err := Parse()
	assert.Error(t, err)
}
