// Package config loads reader settings from defaults, a TOML file, a .env
// file and RSVP_* environment variables, in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"

	"github.com/metcalfc/rsvp/internal/reader"
	"github.com/metcalfc/rsvp/internal/state"
	"github.com/metcalfc/rsvp/internal/theme"
)

const fileName = "config.toml"

// Duration is a time.Duration written as a Go duration string in TOML.
type Duration time.Duration

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(time.Duration(d).String()), nil
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return err
	}
	*d = Duration(v)
	return nil
}

// Config holds all configuration for the reader
type Config struct {
	// Storage
	DataDir  string `toml:"data_dir"`
	StateDir string `toml:"state_dir"`

	// Playback
	WPM              int      `toml:"wpm"`
	JumpMs           int64    `toml:"jump_ms"`
	ArrowJumpMs      int64    `toml:"arrow_jump_ms"`
	AutosaveInterval Duration `toml:"autosave_interval"`

	// Display
	Theme    string `toml:"theme"`
	Font     string `toml:"font"`
	FontSize int    `toml:"font_size"`

	LogLevel string `toml:"log_level"`
}

// Default returns the built-in configuration.
func Default() *Config {
	return &Config{
		DataDir:          defaultDataDir(),
		StateDir:         state.DefaultDir(),
		WPM:              reader.DefaultWPM,
		JumpMs:           5000,
		ArrowJumpMs:      3000,
		AutosaveInterval: Duration(5 * time.Second),
		Theme:            string(theme.Light),
		Font:             string(theme.Mono),
		FontSize:         theme.DefaultFontSize,
		LogLevel:         "info",
	}
}

// DefaultPath returns XDG_CONFIG_HOME/rsvp/config.toml or
// ~/.config/rsvp/config.toml.
func DefaultPath() string {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, "rsvp", fileName)
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".config", "rsvp", fileName)
}

func defaultDataDir() string {
	if dir := os.Getenv("XDG_DATA_HOME"); dir != "" {
		return filepath.Join(dir, "rsvp")
	}
	home, _ := os.UserHomeDir()
	return filepath.Join(home, ".local", "share", "rsvp")
}

// Load reads configuration. An empty path means DefaultPath, which may be
// absent; an explicit path must exist. A .env file in the working directory
// is loaded without overriding variables already set.
func Load(path string) (*Config, error) {
	explicit := path != ""
	if !explicit {
		path = DefaultPath()
	}

	_ = godotenv.Load()

	cfg := Default()
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	case os.IsNotExist(err) && !explicit:
	default:
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg.applyEnv()
	return cfg, cfg.Validate()
}

func (c *Config) applyEnv() {
	c.DataDir = getEnv("RSVP_DATA_DIR", c.DataDir)
	c.StateDir = getEnv("RSVP_STATE_DIR", c.StateDir)
	c.WPM = getEnvInt("RSVP_WPM", c.WPM)
	c.JumpMs = int64(getEnvInt("RSVP_JUMP_MS", int(c.JumpMs)))
	c.ArrowJumpMs = int64(getEnvInt("RSVP_ARROW_JUMP_MS", int(c.ArrowJumpMs)))
	c.AutosaveInterval = Duration(getEnvDuration("RSVP_AUTOSAVE_INTERVAL", time.Duration(c.AutosaveInterval)))
	c.Theme = getEnv("RSVP_THEME", c.Theme)
	c.Font = getEnv("RSVP_FONT", c.Font)
	c.FontSize = getEnvInt("RSVP_FONT_SIZE", c.FontSize)
	c.LogLevel = getEnv("RSVP_LOG_LEVEL", c.LogLevel)
}

// Validate rejects unusable values and snaps the rate onto the supported
// grid.
func (c *Config) Validate() error {
	if err := reader.ValidateRate(c.WPM); err != nil {
		return fmt.Errorf("wpm: %w", err)
	}
	c.WPM = reader.ClampRate(c.WPM)

	if c.JumpMs <= 0 || c.ArrowJumpMs <= 0 {
		return fmt.Errorf("jump_ms and arrow_jump_ms must be positive, got %d and %d", c.JumpMs, c.ArrowJumpMs)
	}
	if c.AutosaveInterval <= 0 {
		return errors.New("autosave_interval must be positive")
	}
	if _, err := theme.ParseName(c.Theme); err != nil {
		return err
	}
	if _, err := theme.ParseFont(c.Font); err != nil {
		return err
	}
	if _, err := log.ParseLevel(c.LogLevel); err != nil {
		return fmt.Errorf("log_level: %w", err)
	}
	if c.DataDir == "" || c.StateDir == "" {
		return errors.New("data_dir and state_dir must be set")
	}
	return nil
}

// Display is the configured presentation, before stored settings apply.
func (c *Config) Display() theme.Display {
	return theme.New(c.Theme, c.Font, c.FontSize)
}

// Settings is the configuration as defaults for state.Settings.Merge.
func (c *Config) Settings() state.Settings {
	return state.Settings{Theme: c.Theme, Font: c.Font, FontSize: c.FontSize, WPM: c.WPM}
}

// Autosave is the progress autosave period.
func (c *Config) Autosave() time.Duration {
	return time.Duration(c.AutosaveInterval)
}

// DatabasePath is the library database inside DataDir.
func (c *Config) DatabasePath() string {
	return filepath.Join(c.DataDir, "library.db")
}

// Save writes c as TOML to path, creating its directory.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return err
	}
	data, err := toml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0600)
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
