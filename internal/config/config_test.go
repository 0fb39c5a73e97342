package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{"PORT", "DATABASE_URL", "SECRET_KEY", "ALGORITHM", "ACCESS_TOKEN_EXPIRE_MINUTES", "REDIS_URL", "SMTP_HOST", "SMTP_FROM", "SMTP_TO", "LOG_LEVEL"} {
		t.Setenv(k, "")
	}
}

func TestLoad_RequiresSecretKey(t *testing.T) {
	clearEnv(t)
	_, err := Load(t.TempDir())
	assert.EqualError(t, err, "SECRET_KEY is required")
}

func TestLoad_DefaultsAndEnv(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")
	t.Setenv("PORT", "9000")
	t.Setenv("ACCESS_TOKEN_EXPIRE_MINUTES", "60")

	cfg, err := Load(t.TempDir())
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, "HS256", cfg.JWT.Algorithm)
	assert.Equal(t, 50, cfg.Outbox.BatchSize)
	assert.Equal(t, time.Hour, cfg.Outbox.CleanupInterval)
	assert.True(t, cfg.Server.Bootstrap)
	assert.Empty(t, cfg.Redis.URL)
	assert.False(t, cfg.SMTP.Enabled())

	authCfg := cfg.ToAuthConfig()
	assert.Equal(t, "s3cret", authCfg.SecretKey)
	assert.Equal(t, time.Hour, authCfg.TokenExpiry)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	t.Setenv("SECRET_KEY", "s3cret")

	dir := t.TempDir()
	yaml := []byte("server:\n  port: 7000\nlog:\n  level: debug\nsmtp:\n  host: smtp.example.com\n  from: noreply@example.com\n  to: clinic@example.com\n")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), yaml, 0o600))

	cfg, err := Load(dir)
	require.NoError(t, err)
	assert.Equal(t, 7000, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.SMTP.Enabled())
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		c := &Config{}
		c.JWT.SecretKey = "s"
		c.JWT.Algorithm = "HS256"
		c.JWT.AccessTokenExpireMinutes = 30
		c.Database.URL = "postgres://localhost/dental"
		c.Server.Port = 8000
		return c
	}
	require.NoError(t, valid().Validate())

	c := valid()
	c.JWT.Algorithm = "RS256"
	assert.Error(t, c.Validate())

	c = valid()
	c.JWT.AccessTokenExpireMinutes = 0
	assert.Error(t, c.Validate())

	c = valid()
	c.Database.URL = ""
	assert.Error(t, c.Validate())
}
