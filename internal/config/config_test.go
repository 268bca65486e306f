package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "dev", cfg.Env)
	assert.Equal(t, "8080", cfg.HTTPPort)
	assert.Equal(t, time.Hour, cfg.JWTAccessTTL)
	assert.Equal(t, 15*time.Minute, cfg.JWTResetTTL)
	assert.Equal(t, "postgres", cfg.StoreDriver)
	assert.Equal(t, 4, cfg.Workers)
	assert.False(t, cfg.HideForeignContent)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("HTTP_PORT", "9090")
	t.Setenv("JWT_ACCESS_TTL", "30m")
	t.Setenv("STORE_DRIVER", "MEMORY")
	t.Setenv("HIDE_FOREIGN_CONTENT", "true")
	t.Setenv("FRONTEND_URL", "https://forum.example.com/")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "9090", cfg.HTTPPort)
	assert.Equal(t, 30*time.Minute, cfg.JWTAccessTTL)
	assert.Equal(t, "memory", cfg.StoreDriver)
	assert.True(t, cfg.HideForeignContent)
	assert.Equal(t, "https://forum.example.com", cfg.FrontendURL)
}

func TestLoadDotEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("RATE_RPS=7\n"), 0o600))
	t.Cleanup(func() { os.Unsetenv("RATE_RPS") })

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7, cfg.RateRPS)
}

func TestValidateRejectsDefaultSecretInProd(t *testing.T) {
	t.Setenv("APP_ENV", "prod")
	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "JWT_SECRET")
}
