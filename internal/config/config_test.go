package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://localhost/clubledger")
	t.Setenv("APP_ENV", "development")
	t.Setenv("JWT_SECRET", "")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.App.Port)
	assert.Equal(t, "America/Mexico_City", cfg.Business.Timezone)
	assert.Equal(t, 1, cfg.Business.ExpenseDayShift)
	assert.Equal(t, devJWTSecret, cfg.JWT.Secret)
	assert.False(t, cfg.Redis.Enabled())
	assert.Equal(t, []string{"*"}, cfg.HTTP.CORSAllowedOrigins)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/clubledger")
	t.Setenv("JWT_SECRET", "s3cret")
	t.Setenv("EXPENSE_DAY_SHIFT", "0")
	t.Setenv("REDIS_ADDRESS", "redis:6379")
	t.Setenv("REPORT_CACHE_TTL", "90s")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example,")
	t.Setenv("DB_MAX_CONNS", "not-a-number")

	cfg, err := FromEnv()
	require.NoError(t, err)

	assert.Equal(t, 0, cfg.Business.ExpenseDayShift)
	assert.True(t, cfg.Redis.Enabled())
	assert.Equal(t, 90*time.Second, cfg.Redis.ReportCacheTTL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.HTTP.CORSAllowedOrigins)
	assert.Equal(t, int32(20), cfg.Database.MaxConns)
}

func TestFromEnv_Required(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	t.Setenv("APP_ENV", "production")
	t.Setenv("JWT_SECRET", "")

	_, err := FromEnv()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "DATABASE_URL")
	assert.Contains(t, err.Error(), "JWT_SECRET")
}

func TestFromEnv_NegativeShift(t *testing.T) {
	t.Setenv("DATABASE_URL", "postgres://db/clubledger")
	t.Setenv("JWT_SECRET", "x")
	t.Setenv("EXPENSE_DAY_SHIFT", "-1")

	_, err := FromEnv()
	assert.Error(t, err)
}
