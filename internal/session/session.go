// Package session is one open book: the reader over its tokens, the
// playback clock, and the stores that remember where the reader stopped
// and how it likes words displayed. Both front ends drive a Session.
package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/charmbracelet/log"
	"golang.org/x/time/rate"

	"github.com/metcalfc/rsvp/internal/library"
	"github.com/metcalfc/rsvp/internal/logger"
	"github.com/metcalfc/rsvp/internal/playback"
	"github.com/metcalfc/rsvp/internal/reader"
	"github.com/metcalfc/rsvp/internal/state"
	"github.com/metcalfc/rsvp/internal/theme"
)

const (
	// RateStep is the change applied by the faster/slower keys.
	RateStep = 50
	// DefaultAutosave applies when Config.Autosave is unset.
	DefaultAutosave = 5 * time.Second
)

// Library is the part of the library a session reads and writes.
type Library interface {
	Tokens(ctx context.Context, bookID string) ([]reader.Token, error)
	GetProgress(ctx context.Context, bookID string) (*library.Progress, error)
	SaveProgress(ctx context.Context, bookID string, index int) error
	AddBookmark(ctx context.Context, bookID string, index int, note string) (*library.Bookmark, error)
	ListBookmarks(ctx context.Context, bookID string) ([]library.Bookmark, error)
}

// SettingsStore persists display preferences between sessions.
type SettingsStore interface {
	Settings() state.Settings
	SaveSettings(state.Settings) error
}

// Config describes the session to open.
type Config struct {
	Book     *library.Book
	Library  Library
	Settings SettingsStore
	// Defaults fill settings the store has never saved.
	Defaults state.Settings

	JumpMs      int64
	ArrowJumpMs int64
	Autosave    time.Duration
	// Fresh starts at the first token instead of the saved position.
	Fresh  bool
	Logger *log.Logger
}

// Session is an open book.
type Session struct {
	Book    *library.Book
	Reader  *reader.Reader
	Display theme.Display

	JumpMs      int64
	ArrowJumpMs int64

	clock    *playback.Clock
	lib      Library
	settings SettingsStore
	autosave *rate.Sometimes
	log      *log.Logger
	ctx      context.Context
}

// Open loads the book's tokens and restores its saved position and the
// stored display settings.
func Open(ctx context.Context, cfg Config) (*Session, error) {
	if cfg.Book == nil {
		return nil, errors.New("no book to open")
	}
	l := cfg.Logger
	if l == nil {
		l = logger.Discard()
	}

	tokens, err := cfg.Library.Tokens(ctx, cfg.Book.ID)
	if err != nil {
		return nil, fmt.Errorf("loading %q: %w", cfg.Book.Title, err)
	}
	if len(tokens) == 0 {
		return nil, fmt.Errorf("loading %q: %w", cfg.Book.Title, reader.ErrNoText)
	}

	if cfg.Autosave <= 0 {
		cfg.Autosave = DefaultAutosave
	}

	prefs := cfg.Defaults
	if cfg.Settings != nil {
		prefs = cfg.Settings.Settings().Merge(cfg.Defaults)
	}

	s := &Session{
		Book:        cfg.Book,
		Reader:      reader.NewReader(tokens, prefs.WPM),
		Display:     theme.New(prefs.Theme, prefs.Font, prefs.FontSize),
		JumpMs:      cfg.JumpMs,
		ArrowJumpMs: cfg.ArrowJumpMs,
		lib:         cfg.Library,
		settings:    cfg.Settings,
		autosave:    &rate.Sometimes{Interval: cfg.Autosave},
		log:         l.With("book", cfg.Book.ID),
		ctx:         ctx,
	}

	if !cfg.Fresh {
		p, err := cfg.Library.GetProgress(ctx, cfg.Book.ID)
		switch {
		case err == nil:
			s.Reader.Seek(p.Index)
			s.log.Debug("restored position", "index", s.Reader.Position)
		case !errors.Is(err, library.ErrNotFound):
			return nil, err
		}
	}
	return s, nil
}

// Start attaches a playback clock driven by sched. Observers run after
// every timed advance, after the session's own autosave check.
func (s *Session) Start(sched playback.Scheduler, observers ...func(index int)) *playback.Clock {
	s.clock = playback.New(s.Reader, sched, playback.WithObserver(func(index int) {
		s.autosave.Do(func() {
			if err := s.SaveProgress(); err != nil {
				s.log.Warn("autosave failed", "err", err)
			}
		})
		for _, fn := range observers {
			fn(index)
		}
	}))
	return s.clock
}

// Clock is the clock attached by Start, or nil.
func (s *Session) Clock() *playback.Clock {
	return s.clock
}

// SaveProgress stores the current position.
func (s *Session) SaveProgress() error {
	return s.lib.SaveProgress(s.ctx, s.Book.ID, s.Reader.Position)
}

// Pause pauses playback and saves the position.
func (s *Session) Pause() error {
	if s.clock != nil {
		s.clock.Pause()
	}
	return s.SaveProgress()
}

// TogglePlay plays or pauses, saving the position on pause.
func (s *Session) TogglePlay() error {
	if s.clock == nil {
		return errors.New("session not started")
	}
	if s.clock.Playing() {
		return s.Pause()
	}
	s.clock.Play()
	return nil
}

// AdjustRate changes the rate by delta, clamped to the supported range,
// and remembers it.
func (s *Session) AdjustRate(delta int) error {
	return s.SetRate(reader.ClampRate(s.Reader.WPM + delta))
}

// SetRate sets and remembers the rate.
func (s *Session) SetRate(wpm int) error {
	var err error
	if s.clock != nil {
		err = s.clock.SetRate(wpm)
	} else {
		err = s.Reader.SetRate(wpm)
	}
	if err != nil {
		return err
	}
	return s.saveSettings()
}

// ApplyPreset switches to the nth rate preset, 1-based.
func (s *Session) ApplyPreset(n int) (reader.Preset, error) {
	if n < 1 || n > len(reader.Presets) {
		return reader.Preset{}, fmt.Errorf("no preset %d", n)
	}
	p := reader.Presets[n-1]
	return p, s.SetRate(p.WPM)
}

// CycleTheme switches to the next theme and remembers it.
func (s *Session) CycleTheme() error {
	s.Display = s.Display.NextTheme()
	return s.saveSettings()
}

// CycleFont switches to the next font family and remembers it.
func (s *Session) CycleFont() error {
	s.Display = s.Display.NextFont()
	return s.saveSettings()
}

// AdjustFontSize changes the font size within theme limits.
func (s *Session) AdjustFontSize(delta int) error {
	s.Display = theme.New(string(s.Display.Theme), string(s.Display.Font), s.Display.FontSize+delta)
	return s.saveSettings()
}

func (s *Session) saveSettings() error {
	if s.settings == nil {
		return nil
	}
	return s.settings.SaveSettings(state.Settings{
		Theme:    string(s.Display.Theme),
		Font:     string(s.Display.Font),
		FontSize: s.Display.FontSize,
		WPM:      s.Reader.WPM,
	})
}

// AddBookmark bookmarks the current token.
func (s *Session) AddBookmark(note string) (*library.Bookmark, error) {
	return s.lib.AddBookmark(s.ctx, s.Book.ID, s.Reader.Position, note)
}

// Bookmarks lists the book's bookmarks.
func (s *Session) Bookmarks() ([]library.Bookmark, error) {
	return s.lib.ListBookmarks(s.ctx, s.Book.ID)
}

// Status is the information shown under the word.
type Status struct {
	Word      int
	Total     int
	Percent   int
	Locator   string
	Chapter   *reader.ChapterPosition
	Remaining string
	WPM       int
	Speed     string
	Playing   bool
	Finished  bool
}

// Status describes the current position.
func (s *Session) Status() Status {
	cur, total := s.Reader.Progress()
	st := Status{
		Word:      cur,
		Total:     total,
		Percent:   s.Reader.Percent(),
		Remaining: reader.FormatDuration(s.Reader.Remaining()),
		WPM:       s.Reader.WPM,
		Speed:     reader.SpeedLabel(s.Reader.WPM),
		Playing:   s.clock != nil && s.clock.Playing(),
		Finished:  s.Reader.AtEnd(),
	}
	if tok, ok := s.Reader.CurrentToken(); ok {
		st.Locator = tok.Locator.String()
	}
	if ch, ok := s.Reader.CurrentChapter(); ok {
		st.Chapter = &ch
	}
	return st
}

// Close pauses and saves the position.
func (s *Session) Close() error {
	if err := s.Pause(); err != nil {
		return err
	}
	s.log.Info("closed", "index", s.Reader.Position)
	return nil
}
