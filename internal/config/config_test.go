package config

import (
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("DB_PASSWORD", "secret")
	t.Setenv("JWT_SECRET_KEY", "jwt-secret")
	t.Setenv("APP_TIMEZONE", "UTC")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "", cfg.Redis.Addr)
	assert.Equal(t, 5*time.Minute, cfg.Redis.TTL)
	assert.False(t, cfg.Ledger.EnforceLeaveAllotment)
	assert.False(t, cfg.Cron.MaterializeAbsent)
	assert.Equal(t, "5 0 * * *", cfg.Cron.AbsentSpec)
	assert.Equal(t, "0 0 * * *", cfg.Cron.AutoCloseSpec)
	assert.Equal(t, 8, cfg.Ledger.PayrollBulkConcurrency)
	assert.Equal(t, time.UTC, cfg.Location())
}

func TestLoad_Overrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SUPERUSER_EMAIL", "  Boss@Example.com ")
	t.Setenv("LEAVE_ENFORCE_ALLOTMENT", "true")
	t.Setenv("ATTENDANCE_MATERIALIZE_ABSENT", "1")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example, https://b.example")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "boss@example.com", cfg.Ledger.SuperuserEmail)
	assert.True(t, cfg.Ledger.EnforceLeaveAllotment)
	assert.True(t, cfg.Cron.MaterializeAbsent)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.App.CORSOrigins)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_MissingSecrets(t *testing.T) {
	t.Setenv("DB_PASSWORD", "")
	t.Setenv("JWT_SECRET_KEY", "")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoad_InvalidBool(t *testing.T) {
	setRequired(t)
	t.Setenv("LEAVE_ENFORCE_ALLOTMENT", "maybe")

	_, err := Load()
	assert.ErrorContains(t, err, "LEAVE_ENFORCE_ALLOTMENT")
}

func TestSlogLevel(t *testing.T) {
	c := &Config{App: AppConfig{LogLevel: "DEBUG"}}
	assert.Equal(t, slog.LevelDebug, c.SlogLevel())
	c.App.LogLevel = "nonsense"
	assert.Equal(t, slog.LevelInfo, c.SlogLevel())
}
