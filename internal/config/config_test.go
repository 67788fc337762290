package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	assert.Equal(t, 5555, cfg.Port)
	assert.Equal(t, ":5555", cfg.Addr())
	assert.Equal(t, "public", cfg.StaticDir)
	assert.Equal(t, "data", cfg.DataDir)
	assert.Equal(t, 30, cfg.Push.TTL)
	assert.Equal(t, 10*time.Second, cfg.Push.Timeout)
	assert.Equal(t, time.Second, cfg.Schedule.Tick)
	assert.True(t, cfg.Schedule.CatchUp)
	assert.Empty(t, cfg.Schedule.Broadcasts)
	assert.Equal(t, "admin", cfg.Admin.Username)
	assert.Empty(t, cfg.Redis.Addr)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "8088")
	t.Setenv("VAPID_PUBLIC_KEY", "pub")
	t.Setenv("VAPID_PRIVATE_KEY", "priv")
	t.Setenv("PUSH_PRUNE_EXPIRED", "true")
	t.Setenv("SCHEDULE_TICK", "250ms")
	t.Setenv("REDIS_ADDR", "localhost:6379")

	cfg, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, 8088, cfg.Port)
	assert.Equal(t, "pub", cfg.VAPID.PublicKey)
	assert.Equal(t, "priv", cfg.VAPID.PrivateKey)
	assert.True(t, cfg.Push.PruneExpired)
	assert.Equal(t, 250*time.Millisecond, cfg.Schedule.Tick)
	assert.Equal(t, "localhost:6379", cfg.Redis.Addr)
}

func TestLoad_ScheduleFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schedule:
  catch_up: false
  broadcasts:
    - at: "2024-05-06T10:30:00+02:00"
      title: Coffee break
      body: Fresh coffee in the lobby
      category: coffee
    - at: "2024-05-06T12:00:00Z"
      title: Lunch
      body: Served on level 2
      category: lunch
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.False(t, cfg.Schedule.CatchUp)
	require.Len(t, cfg.Schedule.Broadcasts, 2)

	first := cfg.Schedule.Broadcasts[0]
	assert.Equal(t, "Coffee break", first.Title)
	assert.Equal(t, "coffee", first.Category)
	at, err := first.FireAt()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 5, 6, 8, 30, 0, 0, time.UTC), at)
}

func TestLoad_RejectsBadBroadcast(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
schedule:
  broadcasts:
    - at: "tomorrow morning"
      title: Coffee
`), 0o644))

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "tomorrow morning")
}

func TestValidate(t *testing.T) {
	cfg := Config{Port: 0, Schedule: ScheduleCfg{Tick: 0}}
	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "port 0 out of range")
	assert.Contains(t, err.Error(), "schedule.tick must be positive")
	assert.Contains(t, err.Error(), "admin.username is required")
}

func TestLoadDotEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("SUMMIT_PUSH_TEST_VALUE=from-dotenv\n"), 0o644))
	t.Setenv("SUMMIT_PUSH_TEST_VALUE", "")
	os.Unsetenv("SUMMIT_PUSH_TEST_VALUE")

	require.NoError(t, LoadDotEnv(path))
	assert.Equal(t, "from-dotenv", os.Getenv("SUMMIT_PUSH_TEST_VALUE"))

	assert.Error(t, LoadDotEnv(filepath.Join(t.TempDir(), "nope.env")))
}
