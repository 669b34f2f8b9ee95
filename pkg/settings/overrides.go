package settings

import (
	"fmt"

	"github.com/provide-io/flavor/go/launcher/pkg/security"
	"github.com/spf13/pflag"
)

// Override flag names, as accepted on the launcher command line.
const (
	FlagLogin        = "login"
	FlagPassword     = "password"
	FlagProfile      = "profile"
	FlagAutoLogin    = "autoLogin"
	FlagUpdatesDir   = "updatesDir"
	FlagDownloadsDir = "downloadsDir"
	FlagAutoEnter    = "autoEnter"
	FlagFullScreen   = "fullScreen"
	FlagRAM          = "ram"
)

// Optional is a value that is either present or absent.
type Optional[T any] struct {
	Value   T
	Present bool
}

// Some returns a present Optional.
func Some[T any](v T) Optional[T] {
	return Optional[T]{Value: v, Present: true}
}

// Or returns the value if present, otherwise fallback.
func (o Optional[T]) Or(fallback T) T {
	if o.Present {
		return o.Value
	}
	return fallback
}

// OverrideSet holds the fields supplied on the command line for this process.
type OverrideSet struct {
	Login        Optional[string]
	Password     Optional[string] // plaintext, encrypted before merging
	Profile      Optional[uint32]
	DownloadsDir Optional[string]
	AutoEnter    Optional[bool]
	FullScreen   Optional[bool]
	RAM          Optional[uint32]

	// AutoLogin is a transient intent and is never persisted.
	AutoLogin bool
}

// RegisterOverrideFlags adds the override flags to fs.
func RegisterOverrideFlags(fs *pflag.FlagSet) {
	fs.String(FlagLogin, "", "Override the saved login")
	fs.String(FlagPassword, "", "Override the saved password (stored encrypted)")
	fs.Uint32(FlagProfile, 0, "Override the selected profile index")
	fs.Bool(FlagAutoLogin, false, "Log in automatically with the saved credentials")
	fs.String(FlagDownloadsDir, "", "Override the downloads directory")
	fs.String(FlagUpdatesDir, "", "Alias of --downloadsDir")
	fs.Bool(FlagAutoEnter, false, "Override auto-enter (connect to the server on launch)")
	fs.Bool(FlagFullScreen, false, "Override full screen mode")
	fs.Uint32(FlagRAM, 0, "Override the RAM amount in MiB (0 = auto)")
}

// OverridesFromFlags builds an OverrideSet from flags registered with
// RegisterOverrideFlags. Only flags explicitly set become present.
func OverridesFromFlags(fs *pflag.FlagSet) (OverrideSet, error) {
	var o OverrideSet
	var err error

	if fs.Changed(FlagLogin) {
		if o.Login.Value, err = fs.GetString(FlagLogin); err != nil {
			return o, err
		}
		o.Login.Present = true
	}
	if fs.Changed(FlagPassword) {
		if o.Password.Value, err = fs.GetString(FlagPassword); err != nil {
			return o, err
		}
		o.Password.Present = true
	}
	if fs.Changed(FlagProfile) {
		if o.Profile.Value, err = fs.GetUint32(FlagProfile); err != nil {
			return o, err
		}
		o.Profile.Present = true
	}
	if fs.Changed(FlagAutoLogin) {
		if o.AutoLogin, err = fs.GetBool(FlagAutoLogin); err != nil {
			return o, err
		}
	}
	// downloadsDir wins over its updatesDir alias when both are given
	for _, name := range []string{FlagUpdatesDir, FlagDownloadsDir} {
		if fs.Changed(name) {
			if o.DownloadsDir.Value, err = fs.GetString(name); err != nil {
				return o, err
			}
			o.DownloadsDir.Present = true
		}
	}
	if fs.Changed(FlagAutoEnter) {
		if o.AutoEnter.Value, err = fs.GetBool(FlagAutoEnter); err != nil {
			return o, err
		}
		o.AutoEnter.Present = true
	}
	if fs.Changed(FlagFullScreen) {
		if o.FullScreen.Value, err = fs.GetBool(FlagFullScreen); err != nil {
			return o, err
		}
		o.FullScreen.Present = true
	}
	if fs.Changed(FlagRAM) {
		if o.RAM.Value, err = fs.GetUint32(FlagRAM); err != nil {
			return o, err
		}
		o.RAM.Present = true
	}
	return o, nil
}

// Validate rejects present values the settings file cannot hold.
func (o OverrideSet) Validate() error {
	if o.Login.Present {
		if err := checkString(FlagLogin, o.Login.Value, MaxLoginBytes); err != nil {
			return err
		}
	}
	if o.DownloadsDir.Present {
		if err := checkString(FlagDownloadsDir, o.DownloadsDir.Value, MaxPathBytes); err != nil {
			return err
		}
	}
	if o.Profile.Present {
		return checkProfile(o.Profile.Value)
	}
	return nil
}

// Resolve merges o over base: present fields win, absent fields keep the base value.
// A present password is encrypted with enc first. If validation or encryption
// fails, base is returned unchanged together with an error wrapping ErrInvalid
// or ErrEncryptionFailure.
func Resolve(base Record, o OverrideSet, enc security.Encrypter, maxRAMMB uint32) (Record, error) {
	if err := o.Validate(); err != nil {
		return base, err
	}
	out := base.Clone()

	if o.Password.Present {
		if enc == nil {
			return base, fmt.Errorf("%w: no encrypter configured", ErrEncryptionFailure)
		}
		credential, err := enc.Encrypt([]byte(o.Password.Value))
		if err != nil {
			return base, fmt.Errorf("%w: %w", ErrEncryptionFailure, err)
		}
		out.Credential = credential
	}

	if o.Login.Present {
		out.Login = StringPtr(o.Login.Value)
	}
	out.ProfileIndex = o.Profile.Or(base.ProfileIndex)
	out.DownloadsDir = o.DownloadsDir.Or(base.DownloadsDir)
	out.AutoEnter = o.AutoEnter.Or(base.AutoEnter)
	out.FullScreen = o.FullScreen.Or(base.FullScreen)
	if o.RAM.Present {
		out.RAMMB = ClampRAM(int64(o.RAM.Value), maxRAMMB)
	}
	return out, nil
}
