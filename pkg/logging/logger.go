// Package logging builds the hclog loggers shared by the launcher packages.
package logging

import (
	"io"
	"os"
	"runtime"
	"strings"
	"time"

	"github.com/hashicorp/go-hclog"
)

const (
	// EnvLogLevel selects the log level when no CLI flag is given.
	EnvLogLevel = "LAUNCHER_LOG_LEVEL"
	// EnvJSONLog switches output to JSON when set to "1".
	EnvJSONLog = "LAUNCHER_JSON_LOG"
	// EnvLogPath appends log output to a file instead of stderr.
	EnvLogPath = "LAUNCHER_LOG_PATH"

	defaultLevel = "warn"
)

// Options describes how a logger should be built.
type Options struct {
	Name   string
	Level  string
	JSON   bool
	Output io.Writer
}

// ResolveLevel picks the log level from the CLI value, then the environment, then the default.
// A "json:" prefix (e.g. "json:debug") requests JSON output.
func ResolveLevel(cliLevel string) (level string, source string, jsonFormat bool) {
	switch {
	case cliLevel != "":
		level, source = cliLevel, "flag"
	case os.Getenv(EnvLogLevel) != "":
		level, source = os.Getenv(EnvLogLevel), EnvLogLevel
	default:
		level, source = defaultLevel, "default"
	}

	jsonFormat = os.Getenv(EnvJSONLog) == "1"
	if strings.HasPrefix(level, "json") {
		jsonFormat = true
		if _, rest, ok := strings.Cut(level, ":"); ok && rest != "" {
			level = rest
		} else {
			level = "info"
		}
	}
	return level, source, jsonFormat
}

// NewLogger creates a new hclog logger with standard settings
func NewLogger(opts Options) hclog.Logger {
	output := opts.Output
	if output == nil {
		output = os.Stderr
		if logPath := os.Getenv(EnvLogPath); logPath != "" {
			if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644); err == nil {
				output = file
			}
		}
	}

	if !opts.JSON {
		prefix := "[launcher] "
		if runtime.GOOS != "windows" {
			prefix = "🎮 "
		}
		output = NewPrefixWriter(prefix, output)
	}

	level := opts.Level
	if level == "" {
		level = defaultLevel
	}

	return hclog.New(&hclog.LoggerOptions{
		Name:       opts.Name,
		Level:      hclog.LevelFromString(level),
		JSONFormat: opts.JSON,
		Output:     output,
		TimeFormat: "2006-01-02T15:04:05Z", // UTC ISO format
		TimeFn: func() time.Time {
			return time.Now().UTC()
		},
	})
}

// OrNull returns logger, or a null logger when logger is nil.
func OrNull(logger hclog.Logger) hclog.Logger {
	if logger == nil {
		return hclog.NewNullLogger()
	}
	return logger
}
