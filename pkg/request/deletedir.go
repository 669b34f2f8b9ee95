package request

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/flavor/go/launcher/pkg/logging"
)

// ErrUnsafeDir is returned when asked to clean a path that must never be emptied.
var ErrUnsafeDir = errors.New("❌ refusing to clean directory")

// DeleteDir empties a directory and keeps the directory itself. A missing
// directory counts as already clean.
type DeleteDir struct {
	Dir    string
	Logger hclog.Logger
}

// NewDeleteDir creates a request that empties dir.
func NewDeleteDir(dir string, logger hclog.Logger) *DeleteDir {
	return &DeleteDir{Dir: dir, Logger: logging.OrNull(logger).Named("clean")}
}

// Execute removes every entry in the directory and returns how many were removed.
func (d *DeleteDir) Execute() (int, error) {
	logger := logging.OrNull(d.Logger)

	dir, err := filepath.Abs(d.Dir)
	if err != nil {
		return 0, fmt.Errorf("resolve %q: %w", d.Dir, err)
	}
	if d.Dir == "" || dir == filepath.VolumeName(dir)+string(filepath.Separator) {
		return 0, fmt.Errorf("%w: %q", ErrUnsafeDir, d.Dir)
	}
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) == dir {
		return 0, fmt.Errorf("%w: %q is the home directory", ErrUnsafeDir, d.Dir)
	}

	entries, err := os.ReadDir(dir)
	if errors.Is(err, os.ErrNotExist) {
		logger.Debug("📂 Nothing to clean", "dir", dir)
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("read %s: %w", dir, err)
	}

	removed := 0
	var errs []error
	for _, entry := range entries {
		path := filepath.Join(dir, entry.Name())
		if err := os.RemoveAll(path); err != nil {
			logger.Warn("⚠️ Failed to remove entry", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		removed++
	}
	logger.Info("🧹 Cleaned directory", "dir", dir, "removed", removed)

	if len(errs) > 0 {
		return removed, fmt.Errorf("clean %s: %w", dir, errors.Join(errs...))
	}
	return removed, nil
}
