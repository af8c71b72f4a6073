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
	t.Chdir(t.TempDir())
	t.Setenv("CLUBHOUSE_AUTH_JWT_SECRET", "")
	t.Setenv("JWT_SECRET", "")

	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 5*time.Second, cfg.Database.QueryTimeout)
	assert.Equal(t, 2*time.Second, cfg.RSVP.RedirectDelay)
	assert.True(t, cfg.Ledger.BaseInitialBalance.IsZero())
	assert.False(t, cfg.Redis.Enabled)
	assert.False(t, cfg.Server.TrustProxy)
	assert.Equal(t, "http://localhost:8080/files", cfg.BlobBaseURL())

	assert.Error(t, cfg.ValidateServe(), "jwt secret is required to serve")
}

func TestLoadFileAndEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)

	path := filepath.Join(dir, "clubhouse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9000"
  public_base_url: "https://club.example.com/"
database:
  driver: postgres
  dsn: "postgres://club@localhost/club?sslmode=disable"
ledger:
  base_initial_balance: "100.50"
rsvp:
  redirect_delay: 3s
`), 0644))

	t.Setenv("CLUBHOUSE_AUTH_JWT_SECRET", "s3cret")
	t.Setenv("CLUBHOUSE_SERVER_ADDR", ":9100")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CLUBHOUSE_SERVER_TRUST_PROXY", "true")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":9100", cfg.Server.Addr, "env overrides file")
	assert.Equal(t, "https://club.example.com", cfg.Server.PublicBaseURL)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "100.5", cfg.Ledger.BaseInitialBalance.String())
	assert.Equal(t, 3*time.Second, cfg.RSVP.RedirectDelay)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.True(t, cfg.Server.TrustProxy)
	assert.NoError(t, cfg.ValidateServe())
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env"), []byte("CLUBHOUSE_REDIS_ENABLED=true\n"), 0644))
	t.Cleanup(func() { os.Unsetenv("CLUBHOUSE_REDIS_ENABLED") })

	cfg, err := Load("")
	require.NoError(t, err)
	assert.True(t, cfg.Redis.Enabled)
}

func TestLoadRejectsBadValues(t *testing.T) {
	t.Chdir(t.TempDir())

	t.Run("driver", func(t *testing.T) {
		t.Setenv("CLUBHOUSE_DATABASE_DRIVER", "mysql")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("balance", func(t *testing.T) {
		t.Setenv("CLUBHOUSE_LEDGER_BASE_INITIAL_BALANCE", "ten")
		_, err := Load("")
		assert.Error(t, err)
	})

	t.Run("negative fee", func(t *testing.T) {
		t.Setenv("CLUBHOUSE_LEDGER_MONTHLY_FEE", "-1")
		_, err := Load("")
		assert.Error(t, err)
	})
}
