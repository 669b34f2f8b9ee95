// Package permissions parses the file modes used for launcher state files.
package permissions

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

// Default permissions keep launcher state private to the owner.
const (
	DefaultFilePerms os.FileMode = 0o600
	DefaultDirPerms  os.FileMode = 0o700
)

// ParseFileMode parses an octal mode string such as "600", "0600" or "0o600".
// An empty string yields DefaultFilePerms.
func ParseFileMode(s string) (os.FileMode, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return DefaultFilePerms, nil
	}

	digits := strings.TrimPrefix(strings.TrimPrefix(s, "0o"), "0O")
	val, err := strconv.ParseUint(digits, 8, 32)
	if err != nil {
		return DefaultFilePerms, fmt.Errorf("invalid permission string %q: %w", s, err)
	}
	if val > 0o777 {
		return DefaultFilePerms, fmt.Errorf("invalid permission string %q: only permission bits are allowed", s)
	}
	return os.FileMode(val), nil
}

// FormatOctal formats a mode as a zero-prefixed octal string.
func FormatOctal(mode os.FileMode) string {
	return fmt.Sprintf("0%o", mode.Perm())
}

// OwnerOnly reports whether group and other have no access.
func OwnerOnly(mode os.FileMode) bool {
	return mode.Perm()&0o077 == 0
}
