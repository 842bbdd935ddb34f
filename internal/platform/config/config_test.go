package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	for _, key := range []string{"MENU_API_ADDR", "APP_ENV", "AUTH_MODE", "IDENTITY_AUTHORITY", "IDENTITY_ISSUER", "IDENTITY_AUDIENCE", "INTROSPECTION_TIMEOUT", "JWT_CLOCK_SKEW", "CORS_ALLOWED_ORIGINS", "REDIS_URL"} {
		t.Setenv(key, "")
	}

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, AuthModeJWT, cfg.Server.AuthMode)
	assert.Equal(t, "http://localhost:8081", cfg.Identity.Authority)
	assert.Equal(t, "DrOcupacional.Identity", cfg.Identity.Issuer)
	assert.Equal(t, "ui-app", cfg.Identity.Audience)
	assert.Equal(t, 10*time.Second, cfg.Identity.IntrospectionTimeout)
	assert.Equal(t, 5*time.Minute, cfg.Identity.ClockSkew)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, []string{"http://localhost:3000"}, cfg.CORS.AllowedOrigins)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.IsDevelopment())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "development")
	t.Setenv("AUTH_MODE", "introspect")
	t.Setenv("IDENTITY_AUTHORITY", "https://id.example.com/")
	t.Setenv("INTROSPECTION_TIMEOUT", "2s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example.com, https://b.example.com")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, AuthModeIntrospect, cfg.Server.AuthMode)
	assert.Equal(t, "https://id.example.com/oauth/introspect", cfg.Identity.IntrospectionURL())
	assert.Equal(t, 2*time.Second, cfg.Identity.IntrospectionTimeout)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORS.AllowedOrigins)
}

func TestFromEnvRejectsInvalidValues(t *testing.T) {
	t.Run("unknown auth mode", func(t *testing.T) {
		t.Setenv("AUTH_MODE", "basic")
		_, err := FromEnv()
		require.ErrorContains(t, err, "AUTH_MODE")
	})

	t.Run("bad duration", func(t *testing.T) {
		t.Setenv("AUTH_MODE", "")
		t.Setenv("INTROSPECTION_TIMEOUT", "soon")
		_, err := FromEnv()
		require.ErrorContains(t, err, "INTROSPECTION_TIMEOUT")
	})
}
