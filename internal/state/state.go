package state

import (
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"sync"
)

const (
	settingsFileName = "settings.json"
	hashBytes        = 8192 // First 8KB for content hash
)

// Settings are the display preferences remembered between sessions.
// Zero fields mean "not set" and fall back to configuration.
type Settings struct {
	Theme    string `json:"theme,omitempty"`
	Font     string `json:"font,omitempty"`
	FontSize int    `json:"font_size,omitempty"`
	WPM      int    `json:"wpm,omitempty"`
}

// Merge returns s with its unset fields filled from defaults.
func (s Settings) Merge(defaults Settings) Settings {
	if s.Theme == "" {
		s.Theme = defaults.Theme
	}
	if s.Font == "" {
		s.Font = defaults.Font
	}
	if s.FontSize == 0 {
		s.FontSize = defaults.FontSize
	}
	if s.WPM == 0 {
		s.WPM = defaults.WPM
	}
	return s
}

// SettingsStore manages persistent display settings
type SettingsStore struct {
	path string
	data Settings
	mu   sync.RWMutex
}

// NewSettingsStore creates or loads settings from dir. An empty dir means
// DefaultDir.
func NewSettingsStore(dir string) (*SettingsStore, error) {
	if dir == "" {
		dir = DefaultDir()
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, err
	}

	store := &SettingsStore{path: filepath.Join(dir, settingsFileName)}
	if err := store.load(); err != nil {
		// Non-fatal - start with defaults
		store.data = Settings{}
	}
	return store, nil
}

// DefaultDir returns XDG_STATE_HOME/rsvp or ~/.local/state/rsvp
func DefaultDir() string {
	if dir := os.Getenv("XDG_STATE_HOME"); dir != "" {
		return filepath.Join(dir, "rsvp")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "state", "rsvp")
}

// Path is the settings file location.
func (s *SettingsStore) Path() string {
	return s.path
}

// ComputeHash generates content hash for file identity
func ComputeHash(filename string) (string, error) {
	f, err := os.Open(filename)
	if err != nil {
		return "", err
	}
	defer f.Close()
	return HashReader(f)
}

// HashReader hashes the first 8KB read from r.
func HashReader(r io.Reader) (string, error) {
	buf := make([]byte, hashBytes)
	n, err := io.ReadFull(r, buf)
	if err != nil && err != io.ErrUnexpectedEOF && err != io.EOF {
		return "", err
	}

	hash := sha256.Sum256(buf[:n])
	return hex.EncodeToString(hash[:16]), nil // First 16 bytes = 32 hex chars
}

// Settings returns the stored settings.
func (s *SettingsStore) Settings() Settings {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.data
}

// SaveSettings replaces and persists the stored settings.
func (s *SettingsStore) SaveSettings(settings Settings) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = settings
	return s.save()
}

// Update applies fn to the stored settings and persists the result.
func (s *SettingsStore) Update(fn func(*Settings)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.data)
	return s.save()
}

// Clear forgets all settings.
func (s *SettingsStore) Clear() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data = Settings{}
	if err := os.Remove(s.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (s *SettingsStore) load() error {
	data, err := os.ReadFile(s.path)
	if os.IsNotExist(err) {
		return nil
	}
	if err != nil {
		return err
	}
	return json.Unmarshal(data, &s.data)
}

func (s *SettingsStore) save() error {
	data, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(s.path, data, 0644)
}
