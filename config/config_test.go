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
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestLoad_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
database:
  driver: sqlite
  dsn: "file::memory:"
timezone: UTC
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 1, cfg.WorkerPool.Size)
	assert.Equal(t, 3600, cfg.Push.TTL)
	assert.Equal(t, 30*time.Second, cfg.Reminder.PollInterval)
	assert.Equal(t, "0 0 8 * * *", cfg.Reminder.DailyCheckCron)
	assert.Equal(t, 15, cfg.Reminder.SnoozeMinutes)
	assert.Equal(t, time.UTC, cfg.Location)
}

func TestLoad_KeepsExplicitValues(t *testing.T) {
	path := writeConfig(t, `
server:
  port: 9000
worker_pool:
  size: 4
reminder:
  enabled: true
  poll_seconds: 5
  daily_check_cron: "0 30 7 * * *"
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 4, cfg.WorkerPool.Size)
	assert.True(t, cfg.Reminder.Enabled)
	assert.Equal(t, 5*time.Second, cfg.Reminder.PollInterval)
	assert.Equal(t, "0 30 7 * * *", cfg.Reminder.DailyCheckCron)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, time.Local, cfg.Location)
}

func TestLoad_RejectsUnknownTimezone(t *testing.T) {
	path := writeConfig(t, "timezone: Not/AZone\n")

	_, err := Load(path)
	assert.ErrorContains(t, err, "Not/AZone")
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
