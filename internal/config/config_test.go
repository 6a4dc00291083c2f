package config

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Setenv("POSTGRES_USER", "studyhall")
	t.Setenv("POSTGRES_PASSWORD", "secret")
	t.Setenv("POSTGRES_DB", "studyhall")
}

func TestNewDefaults(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_HOST", "")
	t.Setenv("SERVER_PORT", "")
	t.Setenv("POSTGRES_HOST", "")
	t.Setenv("POSTGRES_PORT", "")
	t.Setenv("POSTGRES_SSLMODE", "")
	t.Setenv("REDIS_ADDR", "")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, "localhost", cfg.Server.Host)
	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "localhost", cfg.Postgres.Host)
	require.Equal(t, 5432, cfg.Postgres.Port)
	require.Equal(t, "disable", cfg.Postgres.SSLMode)
	require.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestNewMissingRequired(t *testing.T) {
	setRequired(t)
	t.Setenv("POSTGRES_USER", "")

	_, err := New()
	require.Error(t, err)
	require.Contains(t, err.Error(), "POSTGRES_USER")
}

func TestNewInvalidPort(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "not-a-port")

	_, err := New()
	require.Error(t, err)
}

func TestNewOverrides(t *testing.T) {
	setRequired(t)
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("POSTGRES_PORT", "5433")
	t.Setenv("REDIS_ADDR", "redis.internal:6380")

	cfg, err := New()
	require.NoError(t, err)
	require.Equal(t, 9090, cfg.Server.Port)
	require.Equal(t, 5433, cfg.Postgres.Port)
	require.Equal(t, "redis.internal:6380", cfg.Redis.Addr)
}
