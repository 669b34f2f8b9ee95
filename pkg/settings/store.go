package settings

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
	"github.com/hashicorp/go-hclog"

	"github.com/provide-io/flavor/go/launcher/pkg/logging"
	"github.com/provide-io/flavor/go/launcher/pkg/security"
	"github.com/provide-io/flavor/go/launcher/pkg/utils/permissions"
)

// FileName is the settings file inside the launcher directory.
const FileName = "settings.bin"

// Defaults is the baseline record used when no settings file can be loaded.
type Defaults struct {
	AutoEnter    bool
	FullScreen   bool
	RAMMB        int
	DownloadsDir string
}

// StoreOptions configures a Store.
type StoreOptions struct {
	Path      string
	Magic     uint32
	MaxRAMMB  uint32 // 0 selects SystemMaxRAMMB()
	FileMode  os.FileMode
	Defaults  Defaults
	Overrides OverrideSet
	Encrypter security.Encrypter
	Logger    hclog.Logger
}

// Store owns the active settings record. It is not safe for concurrent use;
// callers keep it on the presentation loop.
type Store struct {
	path      string
	codec     Codec
	mode      os.FileMode
	defaults  Defaults
	overrides OverrideSet
	enc       security.Encrypter
	logger    hclog.Logger
	lock      *flock.Flock

	rec Record
}

// NewStore creates a store holding the default record; call Load to read the file.
func NewStore(opts StoreOptions) *Store {
	maxRAM := opts.MaxRAMMB
	if maxRAM == 0 {
		maxRAM = SystemMaxRAMMB()
	}
	magic := opts.Magic
	if magic == 0 {
		magic = DefaultMagic
	}
	mode := opts.FileMode
	if mode == 0 {
		mode = permissions.DefaultFilePerms
	}

	s := &Store{
		path:      opts.Path,
		codec:     NewCodec(magic, maxRAM),
		mode:      mode,
		defaults:  opts.Defaults,
		overrides: opts.Overrides,
		enc:       opts.Encrypter,
		logger:    logging.OrNull(opts.Logger).Named("settings"),
		lock:      flock.New(opts.Path + ".lock"),
	}
	s.rec = s.defaultRecord()
	return s
}

// Path returns the settings file path.
func (s *Store) Path() string { return s.path }

// MaxRAMMB returns the RAM cap used for clamping.
func (s *Store) MaxRAMMB() uint32 { return s.codec.MaxRAMMB }

// Overrides returns the command-line overrides applied by this store.
func (s *Store) Overrides() OverrideSet { return s.overrides }

// Record returns a copy of the active record.
func (s *Store) Record() Record { return s.rec.Clone() }

// Load reads the settings file. Any read or decode failure is logged and the
// defaults are used instead. Overrides are applied afterwards in both cases;
// only an override failure is returned, with the un-overridden record active.
func (s *Store) Load() error {
	s.logger.Debug("📖 Loading settings file", "path", s.path)

	rec, err := s.read()
	if errors.Is(err, os.ErrNotExist) {
		s.logger.Info("📄 No settings file yet, using defaults", "path", s.path)
		return s.SetDefault()
	}
	if err != nil {
		s.logger.Error("❌ Failed to load settings, using defaults", "path", s.path, "error", err)
		return s.SetDefault()
	}

	if rec.DebugEnabled && !s.logger.IsDebug() {
		s.logger.SetLevel(hclog.Debug)
		s.logger.Debug("🐛 Debug logging enabled by settings")
	}
	return s.apply(*rec)
}

// Save writes the active record. Failures are logged and otherwise ignored.
func (s *Store) Save() {
	s.logger.Debug("💾 Saving settings file", "path", s.path)
	if err := s.write(); err != nil {
		s.logger.Error("❌ Failed to save settings", "path", s.path, "error", err)
	}
}

// SetDefault resets every field to the built-in defaults and re-applies the overrides.
func (s *Store) SetDefault() error {
	return s.apply(s.defaultRecord())
}

// SetRAM stores requested rounded down to a multiple of 256 MiB and capped at MaxRAMMB.
func (s *Store) SetRAM(requested int) {
	s.rec.RAMMB = ClampRAM(int64(requested), s.codec.MaxRAMMB)
}

// SetLogin sets the saved login.
func (s *Store) SetLogin(login string) error {
	if err := checkString(FlagLogin, login, MaxLoginBytes); err != nil {
		return err
	}
	s.rec.Login = StringPtr(login)
	return nil
}

// SetCredential stores an already encrypted password.
func (s *Store) SetCredential(credential []byte) error {
	if len(credential) > MaxCredentialBytes {
		return fmt.Errorf("%w: credential longer than %d bytes", ErrInvalid, MaxCredentialBytes)
	}
	s.rec.Credential = append([]byte(nil), credential...)
	return nil
}

// SetPassword encrypts password and stores the result, returning the encrypted bytes.
func (s *Store) SetPassword(password string) ([]byte, error) {
	if s.enc == nil {
		return nil, fmt.Errorf("%w: no encrypter configured", ErrEncryptionFailure)
	}
	credential, err := s.enc.Encrypt([]byte(password))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrEncryptionFailure, err)
	}
	if err := s.SetCredential(credential); err != nil {
		return nil, err
	}
	return credential, nil
}

// ClearCredentials forgets the saved login and password.
func (s *Store) ClearCredentials() {
	s.rec.Login = nil
	s.rec.Credential = nil
}

// SetProfileIndex selects the profile. Indexes above MaxProfileIndex are rejected.
func (s *Store) SetProfileIndex(index uint32) error {
	if err := checkProfile(index); err != nil {
		return err
	}
	s.rec.ProfileIndex = index
	return nil
}

// SetAutoEnter sets whether the client connects to the server on launch.
func (s *Store) SetAutoEnter(v bool) { s.rec.AutoEnter = v }

// SetFullScreen sets whether the client starts in full screen.
func (s *Store) SetFullScreen(v bool) { s.rec.FullScreen = v }

// SetDebug persists the debug logging flag.
func (s *Store) SetDebug(v bool) { s.rec.DebugEnabled = v }

// SetDownloadsDir sets the downloads directory.
func (s *Store) SetDownloadsDir(dir string) error {
	if err := checkString(FlagDownloadsDir, dir, MaxPathBytes); err != nil {
		return err
	}
	s.rec.DownloadsDir = dir
	return nil
}

func (s *Store) defaultRecord() Record {
	return Record{
		DownloadsDir: s.defaults.DownloadsDir,
		AutoEnter:    s.defaults.AutoEnter,
		FullScreen:   s.defaults.FullScreen,
		RAMMB:        ClampRAM(int64(s.defaults.RAMMB), s.codec.MaxRAMMB),
	}
}

func (s *Store) apply(base Record) error {
	resolved, err := Resolve(base, s.overrides, s.enc, s.codec.MaxRAMMB)
	s.rec = resolved
	if err != nil {
		s.logger.Error("❌ Failed to apply command-line overrides", "error", err)
		return err
	}
	return nil
}

func (s *Store) read() (*Record, error) {
	file, err := os.Open(s.path)
	if err != nil {
		return nil, err
	}
	defer file.Close()

	if err := s.lock.RLock(); err != nil {
		return nil, fmt.Errorf("failed to lock settings: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Debug("⚠️ Failed to release settings lock", "error", err)
		}
	}()

	return s.codec.Decode(file)
}

func (s *Store) write() error {
	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, permissions.DefaultDirPerms); err != nil {
		return fmt.Errorf("failed to create settings directory: %w", err)
	}

	if err := s.lock.Lock(); err != nil {
		return fmt.Errorf("failed to lock settings: %w", err)
	}
	defer func() {
		if err := s.lock.Unlock(); err != nil {
			s.logger.Debug("⚠️ Failed to release settings lock", "error", err)
		}
	}()

	tmp, err := os.CreateTemp(dir, ".settings-*.tmp")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op once renamed

	if err := s.codec.Encode(tmp, &s.rec); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Chmod(s.mode); err != nil {
		s.logger.Debug("⚠️ Failed to set settings file mode", "error", err)
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, s.path)
}
