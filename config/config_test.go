package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	c := Default()
	require.Equal(t, ":6789", c.HTTP.Addr)
	require.Equal(t, "mysql", c.DB.Driver)
	require.True(t, c.DB.AutoMigrate)
	require.Equal(t, "dashboard:published", c.Notify.Channel)
	require.Empty(t, c.Redis.Addr)
	require.Equal(t, 20, c.RateLimit.Burst)
}

func TestReadConfMissingFileUsesDefaults(t *testing.T) {
	t.Setenv(EnvConfigPath, "")
	c, err := ReadConf(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, Default(), c)
}

func TestReadConfFileOverridesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
db:
  driver: sqlite
  dsn: "file:dash.db"
redis:
  addr: "127.0.0.1:6379"
log:
  format: console
`), 0o644))

	c, err := ReadConf(path)
	require.NoError(t, err)
	require.Equal(t, "sqlite", c.DB.Driver)
	require.Equal(t, "file:dash.db", c.DB.DSN)
	require.Equal(t, "127.0.0.1:6379", c.Redis.Addr)
	require.Equal(t, "console", c.Log.Format)
	// 文件里没写的保持默认
	require.Equal(t, ":6789", c.HTTP.Addr)
	require.True(t, c.DB.AutoMigrate)
}

func TestReadConfEnvOverrides(t *testing.T) {
	t.Setenv("DASHBOARD_HTTP_ADDR", ":9000")
	t.Setenv("DASHBOARD_DB_DRIVER", "sqlite")
	t.Setenv("DASHBOARD_DB_DSN", ":memory:")
	t.Setenv("DASHBOARD_DB_AUTO_MIGRATE", "false")
	t.Setenv("DASHBOARD_REDIS_DB", "3")
	t.Setenv("DASHBOARD_DEBUG", "true")
	t.Setenv("DASHBOARD_RATE_LIMIT_PER_SECOND", "2.5")

	c, err := ReadConf(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	require.Equal(t, ":9000", c.HTTP.Addr)
	require.Equal(t, "sqlite", c.DB.Driver)
	require.Equal(t, ":memory:", c.DB.DSN)
	require.False(t, c.DB.AutoMigrate)
	require.Equal(t, 3, c.Redis.DB)
	require.True(t, c.HTTP.Debug)
	require.Equal(t, 2.5, c.RateLimit.PerSecond)
}

func TestReadConfBadEnv(t *testing.T) {
	t.Setenv("DASHBOARD_REDIS_DB", "three")
	_, err := ReadConf(filepath.Join(t.TempDir(), "nope.yaml"))
	require.ErrorContains(t, err, "DASHBOARD_REDIS_DB")
}

func TestValidate(t *testing.T) {
	c := Default()
	c.DB.Driver = "postgres"
	require.ErrorContains(t, c.Validate(), "unsupported db driver")

	c = Default()
	c.DB.DSN = ""
	require.Error(t, c.Validate())

	c = Default()
	c.RateLimit.Burst = 0
	require.NoError(t, c.Validate())
	require.Equal(t, 1, c.RateLimit.Burst)
}

func TestReadConfInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("db: [unclosed"), 0o644))
	_, err := ReadConf(path)
	require.ErrorContains(t, err, "in config file")
}
