package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnvDefaults(t *testing.T) {
	t.Setenv("APP_ENV", "")
	t.Setenv("ENV", "")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.AppEnv)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, 24*time.Hour, cfg.JWTTTL)
	assert.Equal(t, 5*time.Minute, cfg.FavoritesCacheTTL)
	assert.Equal(t, int64(50), cfg.CVUnlockPrice)
	assert.False(t, cfg.IsProduction())
}

func TestFromEnvOverrides(t *testing.T) {
	t.Setenv("APP_ENV", "Staging")
	t.Setenv("HTTP_ADDR", ":9090")
	t.Setenv("JWT_TTL", "2h")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, ,https://b.example")
	t.Setenv("CV_UNLOCK_PRICE", "120")

	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.Equal(t, "staging", cfg.AppEnv)
	assert.Equal(t, ":9090", cfg.HTTPAddr)
	assert.Equal(t, 2*time.Hour, cfg.JWTTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.Equal(t, int64(120), cfg.CVUnlockPrice)
}

func TestFromEnvRejectsBadValues(t *testing.T) {
	cases := map[string]string{
		"JWT_TTL":             "soon",
		"FAVORITES_CACHE_TTL": "0s",
		"CV_UNLOCK_PRICE":     "-1",
	}
	for name, value := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv(name, value)
			_, err := FromEnv()
			assert.Error(t, err)
		})
	}
}

func TestFromEnvProductionRequiresSecrets(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	t.Setenv("DATABASE_URL", "postgres://db/maids")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "JWT_SECRET")

	t.Setenv("JWT_SECRET", "a-real-secret")
	cfg, err := FromEnv()
	require.NoError(t, err)
	assert.True(t, cfg.IsProduction())

	t.Setenv("DATABASE_URL", "local.db")
	_, err = FromEnv()
	assert.Error(t, err)
}
