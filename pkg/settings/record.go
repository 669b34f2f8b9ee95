// Package settings persists the launcher's user settings in the compact binary
// settings file and merges them with command-line overrides.
package settings

import (
	"bytes"
	"fmt"
	"math"
	"unicode/utf8"
)

const (
	// DefaultMagic is the format marker written at the start of settings.bin.
	DefaultMagic uint32 = 0xC0DE5

	// MaxLoginBytes bounds the encoded login.
	MaxLoginBytes = 255
	// MaxCredentialBytes bounds the encrypted password blob.
	MaxCredentialBytes = 4096
	// MaxPathBytes bounds the encoded downloads directory.
	MaxPathBytes = 4096

	// MaxProfileIndex is the largest profile index the varint encoding carries.
	MaxProfileIndex = math.MaxInt32

	// RAMStep is the granularity of the RAM setting in MiB.
	RAMStep = 256
)

// Record is the persisted user/session configuration.
type Record struct {
	DebugEnabled bool
	Login        *string
	Credential   []byte // encrypted password, nil when not saved
	ProfileIndex uint32
	DownloadsDir string
	AutoEnter    bool
	FullScreen   bool
	RAMMB        uint32 // 0 means auto-detect at launch
}

// Clone returns a deep copy of r.
func (r Record) Clone() Record {
	out := r
	if r.Login != nil {
		login := *r.Login
		out.Login = &login
	}
	if r.Credential != nil {
		out.Credential = bytes.Clone(r.Credential)
	}
	return out
}

// Equal reports whether two records hold the same values.
func (r Record) Equal(o Record) bool {
	if (r.Login == nil) != (o.Login == nil) {
		return false
	}
	if r.Login != nil && *r.Login != *o.Login {
		return false
	}
	if (r.Credential == nil) != (o.Credential == nil) || !bytes.Equal(r.Credential, o.Credential) {
		return false
	}
	return r.DebugEnabled == o.DebugEnabled &&
		r.ProfileIndex == o.ProfileIndex &&
		r.DownloadsDir == o.DownloadsDir &&
		r.AutoEnter == o.AutoEnter &&
		r.FullScreen == o.FullScreen &&
		r.RAMMB == o.RAMMB
}

// PasswordSaved reports whether the login can be used without asking for a password.
func (r Record) PasswordSaved() bool {
	return r.Login == nil || r.Credential != nil
}

// ClampRAM rounds requested down to a multiple of RAMStep and caps it at maxMB.
func ClampRAM(requested int64, maxMB uint32) uint32 {
	if requested <= 0 {
		return 0
	}
	ram := requested / RAMStep * RAMStep
	if limit := int64(maxMB) / RAMStep * RAMStep; ram > limit {
		ram = limit
	}
	return uint32(ram)
}

// StringPtr is a small helper for optional string fields.
func StringPtr(s string) *string {
	return &s
}

// checkString rejects values the codec would refuse to write.
func checkString(field, s string, limit int) error {
	if len(s) > limit {
		return fmt.Errorf("%w: %s longer than %d bytes", ErrInvalid, field, limit)
	}
	if !utf8.ValidString(s) {
		return fmt.Errorf("%w: %s is not valid UTF-8", ErrInvalid, field)
	}
	return nil
}

func checkProfile(index uint32) error {
	if index > MaxProfileIndex {
		return fmt.Errorf("%w: profile index %d exceeds %d", ErrInvalid, index, MaxProfileIndex)
	}
	return nil
}
