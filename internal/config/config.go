// Package config loads launcher configuration from defaults, an optional
// YAML file, .env files and LAUNCHER_* environment variables, in that order.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/provide-io/flavor/go/launcher/pkg/settings"
	"github.com/provide-io/flavor/go/launcher/pkg/utils/permissions"
)

// FileName is the config file looked up in Root when no path is given.
const FileName = "launcher.yaml"

// Built-in defaults.
const (
	DefaultRAMMB      = 1024
	DefaultAutoEnter  = false
	DefaultFullScreen = false
	DefaultHideDelay  = 2500 * time.Millisecond
	downloadsSubdir   = "updates"
)

// Environment variables read by Load.
const (
	EnvMagic      = "LAUNCHER_MAGIC"
	EnvRAM        = "LAUNCHER_RAM"
	EnvAutoEnter  = "LAUNCHER_AUTO_ENTER"
	EnvFullScreen = "LAUNCHER_FULL_SCREEN"
	EnvFileMode   = "LAUNCHER_FILE_MODE"
	EnvPublicKey  = "LAUNCHER_PUBLIC_KEY"
	EnvHideDelay  = "LAUNCHER_HIDE_DELAY"
	EnvLogLevel   = "LAUNCHER_LOG_LEVEL"
)

// ErrInvalidConfig marks a config value that could not be parsed.
var ErrInvalidConfig = errors.New("❌ invalid launcher configuration")

// Config is the launcher configuration.
type Config struct {
	Dir           string        `yaml:"dir"`
	Magic         uint32        `yaml:"magic"`
	RAMDefault    int           `yaml:"ram_default"`
	AutoEnter     bool          `yaml:"auto_enter_default"`
	FullScreen    bool          `yaml:"full_screen_default"`
	FileModeText  string        `yaml:"file_mode"`
	PublicKeyPath string        `yaml:"public_key"`
	HideDelay     time.Duration `yaml:"hide_delay"`
	LogLevel      string        `yaml:"log_level"`

	// FileMode is FileModeText parsed.
	FileMode os.FileMode `yaml:"-"`
	// Source is the config file that was read, empty when none.
	Source string `yaml:"-"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		Dir:          Root(),
		Magic:        settings.DefaultMagic,
		RAMDefault:   DefaultRAMMB,
		AutoEnter:    DefaultAutoEnter,
		FullScreen:   DefaultFullScreen,
		FileModeText: permissions.FormatOctal(permissions.DefaultFilePerms),
		HideDelay:    DefaultHideDelay,
		FileMode:     permissions.DefaultFilePerms,
	}
}

// Load builds the configuration. path names the YAML file; when empty the
// file in Root is used if it exists. envFiles lists .env files to read; when
// none are given ".env" in the working directory and in Root are tried.
// Variables already set in the process environment win over .env values.
func Load(path string, envFiles ...string) (*Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		path = filepath.Join(cfg.Dir, FileName)
	}
	if err := cfg.loadFile(path, explicit); err != nil {
		return nil, err
	}

	if len(envFiles) == 0 {
		envFiles = []string{".env", filepath.Join(cfg.Dir, ".env")}
	}
	dotenv, err := readEnvFiles(envFiles)
	if err != nil {
		return nil, err
	}
	lookup := func(key string) (string, bool) {
		if v, ok := os.LookupEnv(key); ok {
			return v, true
		}
		v, ok := dotenv[key]
		return v, ok
	}

	if err := cfg.applyEnv(lookup); err != nil {
		return nil, err
	}

	mode, err := permissions.ParseFileMode(cfg.FileModeText)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidConfig, err)
	}
	cfg.FileMode = mode
	if cfg.HideDelay <= 0 {
		cfg.HideDelay = DefaultHideDelay
	}
	return cfg, nil
}

func (c *Config) loadFile(path string, required bool) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if !required && errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}

	expanded := os.ExpandEnv(string(data))
	if err := yaml.Unmarshal([]byte(expanded), c); err != nil {
		return fmt.Errorf("%w: %s: %w", ErrInvalidConfig, path, err)
	}
	c.Source = path
	return nil
}

func readEnvFiles(files []string) (map[string]string, error) {
	merged := make(map[string]string)
	// Earlier files win, matching godotenv.Load.
	for i := len(files) - 1; i >= 0; i-- {
		values, err := godotenv.Read(files[i])
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return nil, fmt.Errorf("failed to read %s: %w", files[i], err)
		}
		for k, v := range values {
			merged[k] = v
		}
	}
	return merged, nil
}

func (c *Config) applyEnv(lookup func(string) (string, bool)) error {
	if v, ok := lookup(EnvHome); ok && v != "" {
		c.Dir = v
	}
	if v, ok := lookup(EnvMagic); ok {
		magic, err := strconv.ParseUint(v, 0, 32)
		if err != nil {
			return envErr(EnvMagic, v, err)
		}
		c.Magic = uint32(magic)
	}
	if v, ok := lookup(EnvRAM); ok {
		ram, err := strconv.Atoi(v)
		if err != nil {
			return envErr(EnvRAM, v, err)
		}
		c.RAMDefault = ram
	}
	if v, ok := lookup(EnvAutoEnter); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envErr(EnvAutoEnter, v, err)
		}
		c.AutoEnter = b
	}
	if v, ok := lookup(EnvFullScreen); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			return envErr(EnvFullScreen, v, err)
		}
		c.FullScreen = b
	}
	if v, ok := lookup(EnvFileMode); ok {
		c.FileModeText = v
	}
	if v, ok := lookup(EnvPublicKey); ok {
		c.PublicKeyPath = v
	}
	if v, ok := lookup(EnvHideDelay); ok {
		d, err := time.ParseDuration(v)
		if err != nil {
			return envErr(EnvHideDelay, v, err)
		}
		c.HideDelay = d
	}
	if v, ok := lookup(EnvLogLevel); ok {
		c.LogLevel = v
	}
	return nil
}

func envErr(key, value string, err error) error {
	return fmt.Errorf("%w: %s=%q: %w", ErrInvalidConfig, key, value, err)
}

// SettingsPath is the settings file inside Dir.
func (c *Config) SettingsPath() string {
	return filepath.Join(c.Dir, settings.FileName)
}

// DownloadsDir is the default downloads directory inside Dir.
func (c *Config) DownloadsDir() string {
	return filepath.Join(c.Dir, downloadsSubdir)
}

// StoreDefaults returns the baseline record values for the settings store.
func (c *Config) StoreDefaults() settings.Defaults {
	return settings.Defaults{
		AutoEnter:    c.AutoEnter,
		FullScreen:   c.FullScreen,
		RAMMB:        c.RAMDefault,
		DownloadsDir: c.DownloadsDir(),
	}
}
