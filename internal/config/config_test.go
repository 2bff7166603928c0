package config_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MrJamesThe3rd/frontdesk/internal/config"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.App.Port)
	assert.Equal(t, "America/Guatemala", cfg.Clinic.Timezone)
	assert.Equal(t, "first_item", cfg.Commission.Attribution)
	assert.Equal(t, "0.01", cfg.Reconciliation.Tolerance)
	assert.Equal(t, 30*time.Second, cfg.Server.Timeout)
	assert.Equal(t, 25, cfg.DB.MaxOpenConns)
	assert.Equal(t, 5*time.Minute, cfg.DB.ConnMaxLifetime)
	assert.Equal(t, "postgres://postgres:@localhost:5432/frontdesk?sslmode=disable", cfg.ConnectionString())
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("CLINIC_TIMEZONE", "UTC")
	t.Setenv("CORS_ALLOWED_ORIGINS", "https://a.example,https://b.example")

	cfg, err := config.Load()
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.App.Port)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Server.AllowedOrigins)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, time.UTC, loc)
}

func TestLocation_Invalid(t *testing.T) {
	t.Setenv("CLINIC_TIMEZONE", "Mars/Olympus")

	cfg, err := config.Load()
	require.NoError(t, err)

	_, err = cfg.Location()
	assert.Error(t, err)
}
