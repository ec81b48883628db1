package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "config"))
	t.Setenv("XDG_STATE_HOME", filepath.Join(dir, "state"))
	return dir
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg := Load()
	assert.Equal(t, DefaultMprisService, cfg.MprisService)
	assert.Equal(t, DefaultLrclibSearchURL, cfg.LrclibURL)
	assert.Equal(t, DefaultThemeColor, cfg.ThemeColor)
	assert.Equal(t, 10*time.Second, cfg.HTTPTimeout)
	assert.False(t, cfg.QueryArtist)
	assert.False(t, cfg.StrictPersistence)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, filepath.Join(dir, "state", "ticktock", "ticktock.log"), cfg.LogPath)
}

func TestLoadEnvOverrides(t *testing.T) {
	isolate(t)
	t.Setenv("TICKTOCK_LRCLIB_SEARCH_URL", "http://localhost:9999/api/search")
	t.Setenv("TICKTOCK_QUERY_ARTIST", "true")
	t.Setenv("TICKTOCK_HTTP_TIMEOUT", "3s")
	t.Setenv("TICKTOCK_SYNC_OFFSET", "-0.5")

	cfg := Load()
	assert.Equal(t, "http://localhost:9999/api/search", cfg.LrclibURL)
	assert.True(t, cfg.QueryArtist)
	assert.Equal(t, 3*time.Second, cfg.HTTPTimeout)
	assert.InDelta(t, -0.5, cfg.SyncOffset, 1e-9)
}

func TestLoadConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "config", "ticktock")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte(
		"mpris_service: org.mpris.MediaPlayer2.vlc\nstrict_persistence: true\nlyrics_dir: /tmp/lrc\n",
	), 0644))

	cfg := Load()
	assert.Equal(t, "org.mpris.MediaPlayer2.vlc", cfg.MprisService)
	assert.True(t, cfg.StrictPersistence)
	assert.Equal(t, "/tmp/lrc", cfg.LyricsDir)
}

func TestLoadEnvBeatsConfigFile(t *testing.T) {
	dir := isolate(t)
	cfgDir := filepath.Join(dir, "config", "ticktock")
	require.NoError(t, os.MkdirAll(cfgDir, 0755))
	require.NoError(t, os.WriteFile(filepath.Join(cfgDir, "config.yaml"), []byte("log_level: warn\n"), 0644))
	t.Setenv("TICKTOCK_LOG_LEVEL", "debug")

	cfg := Load()
	assert.Equal(t, "debug", cfg.LogLevel)
}
