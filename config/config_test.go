package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_YAML(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ridebook.yaml")
	data := `server:
  port: 9090
  cors_origins: ["https://ridebook.example"]
database:
  path: "/var/lib/ridebook/data.db"
logging:
  level: debug
  format: console
validation:
  reject_negative: false
metrics:
  enabled: true
backup:
  enabled: true
  dir: "/tmp/rb"
  interval_minutes: 60
`
	require.NoError(t, os.WriteFile(path, []byte(data), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, []string{"https://ridebook.example"}, cfg.Server.CORSOrigins)
	assert.Equal(t, 15, cfg.Server.ReadTimeoutSeconds)
	assert.Equal(t, "/var/lib/ridebook/data.db", cfg.Database.Path)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.False(t, cfg.Validation.RejectsNegative())
	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, "/metrics", cfg.Metrics.Path)
	assert.True(t, cfg.Backup.Enabled)
	assert.Equal(t, 60, cfg.Backup.IntervalMinutes)
	assert.Equal(t, 7, cfg.Backup.Keep)
}

func TestLoad_JSONWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "ridebook.json")
	require.NoError(t, os.WriteFile(path, []byte(`{"server":{"port":7000},"database":{"path":"a.db"}}`), 0o644))

	t.Setenv("RIDEBOOK_SERVER__PORT", "7100")
	t.Setenv("RIDEBOOK_DATABASE__PATH", ":memory:")
	t.Setenv("RIDEBOOK_DATABASE__DRIVER", "memory")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, 7100, cfg.Server.Port)
	assert.Equal(t, ":memory:", cfg.Database.Path)
	assert.Equal(t, DriverMemory, cfg.Database.Driver)
}

func TestLoad_NoFileUsesDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "ridebook.db", cfg.Database.Path)
	assert.Equal(t, DriverSQLite, cfg.Database.Driver)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "json", cfg.Logging.Format)
	assert.True(t, cfg.Validation.RejectsNegative())
	assert.False(t, cfg.Backup.Enabled)
	assert.Equal(t, 24*60, cfg.Backup.IntervalMinutes)
}

func TestLoad_Invalid(t *testing.T) {
	dir := t.TempDir()

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte("logging:\n  level: loud\n"), 0o644))
	_, err := Load(bad)
	assert.Error(t, err)

	driver := filepath.Join(dir, "driver.yaml")
	require.NoError(t, os.WriteFile(driver, []byte("database:\n  driver: postgres\n"), 0o644))
	_, err = Load(driver)
	assert.ErrorContains(t, err, "unknown driver postgres")

	_, err = Load(filepath.Join(dir, "config.toml"))
	assert.Error(t, err)

	_, err = Load(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)
}
