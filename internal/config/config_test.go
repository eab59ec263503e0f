package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "conf", "config.yaml")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, DefaultConfig(), cfg)

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	again, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, again)
}

func TestLoadReturnsDefaultsWhenSaveFails(t *testing.T) {
	tmp := t.TempDir()
	// The config dir is a dangling symlink: reading reports "not exist" but
	// the directory cannot be created.
	dir := filepath.Join(tmp, "conf")
	require.NoError(t, os.Symlink(filepath.Join(tmp, "missing", "deeper"), dir))

	cfg, err := Load(filepath.Join(dir, "config.yaml"))
	assert.Error(t, err)
	require.NotNil(t, cfg)
	assert.Equal(t, DefaultConfig(), cfg)
}

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	body := "listen: \":9090\"\n" +
		"timezone: Mars/Olympus\n" +
		"log_level: WARNING\n" +
		"notify_schedule: \"not a cron\"\n" +
		"holidays:\n" +
		"  \"2025-07-07\": 창립기념일\n"
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9090", cfg.Listen)
	assert.Equal(t, defaultTimezone, cfg.Timezone)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, defaultNotifySchedule, cfg.NotifySchedule)
	assert.Equal(t, defaultOverlapHorizon, cfg.OverlapHorizonDays)
	assert.Equal(t, map[string]string{"2025-07-07": "창립기념일"}, cfg.Holidays)
	assert.Empty(t, cfg.DataPath, "an explicit empty data_path is kept")
}

func TestLoadRejectsBadYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: [unclosed"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestSaveRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	cfg := DefaultConfig()
	cfg.Listen = ":1234"
	cfg.NotifySchedule = "0 * * * * *"
	require.NoError(t, cfg.Save(path))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, cfg, got)

	assert.Error(t, Save("", cfg))
	assert.Error(t, Save(path, nil))
}

func TestLocation(t *testing.T) {
	cfg := DefaultConfig()
	assert.Equal(t, "Asia/Seoul", cfg.Location().String())

	cfg.Timezone = "bogus/zone"
	assert.Equal(t, "Local", cfg.Location().String())
}
