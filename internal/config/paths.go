package config

import (
	"os"
	"path/filepath"
	"runtime"
)

// EnvHome overrides the launcher directory.
const EnvHome = "LAUNCHER_HOME"

const appName = "launcher"

// Root returns the launcher directory holding the settings file, the config
// file and the downloads directory.
func Root() string {
	if dir := os.Getenv(EnvHome); dir != "" {
		return dir
	}

	switch runtime.GOOS {
	case "darwin":
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, "Library", "Application Support", appName)
		}
	case "linux", "freebsd", "openbsd", "netbsd":
		if xdgConfig := os.Getenv("XDG_CONFIG_HOME"); xdgConfig != "" {
			return filepath.Join(xdgConfig, appName)
		}
		if home := os.Getenv("HOME"); home != "" {
			return filepath.Join(home, ".config", appName)
		}
	case "windows":
		if appData := os.Getenv("APPDATA"); appData != "" {
			return filepath.Join(appData, appName)
		}
	}

	return filepath.Join(os.TempDir(), appName)
}
