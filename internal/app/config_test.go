package app

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("PORTAL_AUTH_JWT_SECRET", "test-secret")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 5000, cfg.Server.Port)
	require.Equal(t, "info", cfg.Server.LogLevel)
	require.True(t, cfg.Server.RateLimit.Enabled)
	require.Equal(t, 20, cfg.Server.RateLimit.MaxRequests)
	require.Equal(t, time.Minute, cfg.Server.RateLimit.Window)

	require.Equal(t, "sqlite", cfg.Database.Driver)
	require.Equal(t, "./data/portal.sqlite", cfg.Database.Path)

	require.Equal(t, "test-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "placement-portal", cfg.Auth.JWT.Issuer)
	require.Equal(t, time.Hour, cfg.Auth.JWT.TTL)

	require.Equal(t, 10*time.Minute, cfg.Registration.OTPExpiry)
	require.Equal(t, "@every 10m", cfg.Registration.SweepSchedule)

	require.False(t, cfg.Email.SMTP.Enabled)
	require.Equal(t, 587, cfg.Email.SMTP.Port)

	require.True(t, cfg.Monitoring.Prometheus.Enabled)
	require.Equal(t, "/metrics", cfg.Monitoring.Prometheus.Endpoint)
}

func TestLoadConfigRequiresJWTSecret(t *testing.T) {
	t.Setenv("PORTAL_AUTH_JWT_SECRET", "")

	_, err := LoadConfig(t.TempDir())
	require.Error(t, err)
	require.Contains(t, err.Error(), "auth.jwt.secret")
}

func TestLoadConfigReadsFile(t *testing.T) {
	t.Setenv("PORTAL_AUTH_JWT_SECRET", "")

	dir := t.TempDir()
	payload := []byte(`
server:
  port: 9001
  allowed_origins:
    - http://localhost:5173
auth:
  jwt:
    secret: from-file
    access_token_ttl: 30m
registration:
  otp_expiry: 5m
seed:
  admin_email: admin@campus.edu
  admin_password: changeme
`)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), payload, 0o600))

	cfg, err := LoadConfig(dir)
	require.NoError(t, err)

	require.Equal(t, 9001, cfg.Server.Port)
	require.Equal(t, []string{"http://localhost:5173"}, cfg.Server.AllowedOrigins)
	require.Equal(t, "from-file", cfg.Auth.JWT.Secret)
	require.Equal(t, 30*time.Minute, cfg.Auth.JWT.TTL)
	require.Equal(t, 5*time.Minute, cfg.Registration.OTPExpiry)
	require.Equal(t, "admin@campus.edu", cfg.Seed.AdminEmail)
	require.Equal(t, "changeme", cfg.Seed.AdminPassword)
}

func TestLoadConfigEnvOverrides(t *testing.T) {
	t.Setenv("PORTAL_AUTH_JWT_SECRET", "env-secret")
	t.Setenv("PORTAL_SERVER_PORT", "8080")
	t.Setenv("PORTAL_DATABASE_DRIVER", "postgres")
	t.Setenv("PORTAL_SEED_ADMIN_EMAIL", "ops@campus.edu")

	cfg, err := LoadConfig(t.TempDir())
	require.NoError(t, err)

	require.Equal(t, 8080, cfg.Server.Port)
	require.Equal(t, "postgres", cfg.Database.Driver)
	require.Equal(t, "env-secret", cfg.Auth.JWT.Secret)
	require.Equal(t, "ops@campus.edu", cfg.Seed.AdminEmail)
}
