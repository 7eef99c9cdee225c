package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadCreatesDefault(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

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

func TestLoadNormalizesPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("listen: 0.0.0.0:9000\nchime: false\n"), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "0.0.0.0:9000", cfg.Listen)
	assert.Equal(t, DefaultTimezone, cfg.Timezone)
	assert.Equal(t, DefaultTick, cfg.Tick)
	assert.False(t, cfg.ChimeEnabled())
}

func TestLoadRejectsInvalid(t *testing.T) {
	tests := map[string]string{
		"bad-yaml":     "listen: [",
		"bad-listen":   "listen: nowhere\n",
		"bad-timezone": "timezone: Mars/Olympus\n",
		"bad-tick":     "tick: every second\n",
		"bad-level":    "log_level: loud\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
			_, err := Load(path)
			assert.Error(t, err)
		})
	}
}

func TestLoadEmptyPath(t *testing.T) {
	_, err := Load("")
	assert.Error(t, err)
	assert.Error(t, Save("", DefaultConfig()))
	assert.Error(t, Save("x.yaml", nil))
}

func TestValidateTickSpecs(t *testing.T) {
	cfg := DefaultConfig()
	for _, spec := range []string{"@every 1s", "* * * * * *", "*/2 * * * * *"} {
		cfg.Tick = spec
		assert.NoError(t, cfg.Validate(), spec)
	}
}

func TestResolve(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Theme = "/abs/theme.json"
	cfg.Resolve("/srv/board")
	assert.Equal(t, filepath.Join("/srv/board", "config/timetable.json"), cfg.Timetable)
	assert.Equal(t, "/abs/theme.json", cfg.Theme)
	assert.Equal(t, filepath.Join("/srv/board", "sound/bell.mp3"), cfg.Bell)
	assert.Equal(t, filepath.Join("/srv/board", "cache/ics"), cfg.CacheDir)

	feed := DefaultConfig()
	feed.Timetable = "https://school.example/timetable.ics"
	feed.Resolve("/srv/board")
	assert.Equal(t, "https://school.example/timetable.ics", feed.Timetable)
}

func TestLocation(t *testing.T) {
	loc, err := DefaultConfig().Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", loc.String())
}
