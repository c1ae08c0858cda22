package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	t.Setenv("SESSION_SECRET", "")
	t.Setenv("ADMIN_PASSWORD", "")

	cfg, err := Load(writeConfig(t, "server:\n  port: 9090\n"))
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, "property_management.db", cfg.Database.DSN)
	assert.Equal(t, time.Hour, cfg.Auth.SessionTTL)
	assert.Equal(t, "admin123", cfg.Auth.AdminPassword)
	assert.True(t, cfg.Import.IsAtomic())
	assert.False(t, cfg.Push.Enabled())
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, "json", cfg.Log.Format)
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv("SESSION_SECRET", "from-env")
	t.Setenv("ADMIN_PASSWORD", "s3cret")

	cfg, err := Load(writeConfig(t, `
database:
  driver: postgres
  dsn: "host=db user=app"
auth:
  session_ttl_minutes: 15
  secret: from-file
import:
  atomic: false
push:
  vapid_public_key: pub
  vapid_private_key: priv
`))
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "host=db user=app", cfg.Database.DSN)
	assert.Equal(t, 15*time.Minute, cfg.Auth.SessionTTL)
	assert.Equal(t, "from-env", cfg.Auth.Secret)
	assert.Equal(t, "s3cret", cfg.Auth.AdminPassword)
	assert.False(t, cfg.Import.IsAtomic())
	assert.True(t, cfg.Push.Enabled())
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)

	_, err = Load(writeConfig(t, "server: [not, a, map]\n"))
	assert.Error(t, err)
}
