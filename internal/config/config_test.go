package config

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/provide-io/flavor/go/launcher/pkg/settings"
)

// isolate points the launcher root at a fresh directory and clears LAUNCHER_* variables.
func isolate(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(EnvHome, dir)
	for _, key := range []string{EnvMagic, EnvRAM, EnvAutoEnter, EnvFullScreen, EnvFileMode, EnvPublicKey, EnvHideDelay, EnvLogLevel} {
		t.Setenv(key, "")
		os.Unsetenv(key)
	}
	return dir
}

func writeFile(t *testing.T, path, content string) string {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	dir := isolate(t)

	cfg, err := Load("", filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, dir, cfg.Dir)
	assert.Equal(t, uint32(0xC0DE5), cfg.Magic)
	assert.Equal(t, 1024, cfg.RAMDefault)
	assert.False(t, cfg.AutoEnter)
	assert.False(t, cfg.FullScreen)
	assert.Equal(t, os.FileMode(0o600), cfg.FileMode)
	assert.Equal(t, 2500*time.Millisecond, cfg.HideDelay)
	assert.Empty(t, cfg.Source)

	assert.Equal(t, filepath.Join(dir, "settings.bin"), cfg.SettingsPath())
	assert.Equal(t, settings.Defaults{
		RAMMB:        1024,
		DownloadsDir: filepath.Join(dir, "updates"),
	}, cfg.StoreDefaults())
}

func TestLoadYAMLFile(t *testing.T) {
	dir := isolate(t)
	t.Setenv("TEST_KEY_DIR", "/etc/launcher")

	path := writeFile(t, filepath.Join(dir, FileName), `
magic: 0xC0DE6
ram_default: 2048
auto_enter_default: true
full_screen_default: true
file_mode: "0640"
public_key: ${TEST_KEY_DIR}/auth.pem
hide_delay: 1s
log_level: debug
`)

	cfg, err := Load("", filepath.Join(dir, "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, path, cfg.Source)
	assert.Equal(t, uint32(0xC0DE6), cfg.Magic)
	assert.Equal(t, 2048, cfg.RAMDefault)
	assert.True(t, cfg.AutoEnter)
	assert.True(t, cfg.FullScreen)
	assert.Equal(t, os.FileMode(0o640), cfg.FileMode)
	assert.Equal(t, "/etc/launcher/auth.pem", cfg.PublicKeyPath)
	assert.Equal(t, time.Second, cfg.HideDelay)
	assert.Equal(t, "debug", cfg.LogLevel)
}

func TestLoadExplicitMissingFileFails(t *testing.T) {
	dir := isolate(t)
	_, err := Load(filepath.Join(dir, "nope.yaml"))
	require.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "bad.yaml"), "ram_default: [not, a, number]\n")

	_, err := Load(path, filepath.Join(dir, "missing.env"))
	assert.ErrorIs(t, err, ErrInvalidConfig)
}

func TestLoadPrecedence(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, filepath.Join(dir, "launcher.yaml"), "ram_default: 2048\nauto_enter_default: false\nfile_mode: \"0600\"\n")
	envFile := writeFile(t, filepath.Join(dir, "test.env"), "LAUNCHER_RAM=3072\nLAUNCHER_AUTO_ENTER=true\nLAUNCHER_FILE_MODE=0640\n")

	// The process environment beats the .env file, which beats the YAML file.
	t.Setenv(EnvRAM, "512")

	cfg, err := Load(path, envFile)
	require.NoError(t, err)
	assert.Equal(t, 512, cfg.RAMDefault)
	assert.True(t, cfg.AutoEnter)
	assert.Equal(t, os.FileMode(0o640), cfg.FileMode)
}

func TestLoadEarlierEnvFileWins(t *testing.T) {
	dir := isolate(t)
	first := writeFile(t, filepath.Join(dir, "first.env"), "LAUNCHER_RAM=2048\n")
	second := writeFile(t, filepath.Join(dir, "second.env"), "LAUNCHER_RAM=4096\nLAUNCHER_FULL_SCREEN=1\n")

	cfg, err := Load("", first, second)
	require.NoError(t, err)
	assert.Equal(t, 2048, cfg.RAMDefault)
	assert.True(t, cfg.FullScreen)
}

func TestLoadInvalidEnvValues(t *testing.T) {
	tests := []struct {
		key   string
		value string
	}{
		{EnvMagic, "magic"},
		{EnvRAM, "lots"},
		{EnvAutoEnter, "maybe"},
		{EnvFullScreen, "sometimes"},
		{EnvHideDelay, "soon"},
		{EnvFileMode, "rwx"},
	}

	for _, tt := range tests {
		t.Run(tt.key, func(t *testing.T) {
			dir := isolate(t)
			t.Setenv(tt.key, tt.value)
			_, err := Load("", filepath.Join(dir, "missing.env"))
			assert.ErrorIs(t, err, ErrInvalidConfig)
		})
	}
}

func TestRoot(t *testing.T) {
	t.Setenv(EnvHome, "/opt/launcher")
	assert.Equal(t, "/opt/launcher", Root())

	t.Setenv(EnvHome, "")
	switch runtime.GOOS {
	case "linux":
		t.Setenv("XDG_CONFIG_HOME", "/xdg")
		assert.Equal(t, filepath.Join("/xdg", "launcher"), Root())

		t.Setenv("XDG_CONFIG_HOME", "")
		t.Setenv("HOME", "/home/player")
		assert.Equal(t, filepath.Join("/home/player", ".config", "launcher"), Root())
	case "darwin":
		t.Setenv("HOME", "/Users/player")
		assert.Equal(t, filepath.Join("/Users/player", "Library", "Application Support", "launcher"), Root())
	}
}
