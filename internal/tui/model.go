// Package tui is the full-screen terminal reader.
package tui

import (
	"fmt"
	"time"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/progress"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/metcalfc/rsvp/internal/logger"
	"github.com/metcalfc/rsvp/internal/playback"
	"github.com/metcalfc/rsvp/internal/session"
	"github.com/metcalfc/rsvp/internal/theme"
)

// arrowRepeat is the window within which arrow presses count as one held
// key. A lone press pauses playback; holding the key scrubs without
// pausing.
const arrowRepeat = 500 * time.Millisecond

// fireMsg carries a playback callback onto the event loop.
type fireMsg func()

// flashMsg clears a transient notice once it expires.
type flashMsg struct{ id int }

const flashDuration = 2 * time.Second

type model struct {
	sess  *session.Session
	clock *playback.Clock

	keys     keyMap
	help     help.Model
	progress progress.Model
	styles   theme.Styles

	copy func(string) error
	log  *log.Logger
	now  func() time.Time

	flash    string
	flashID  int
	quitting bool
	width    int
	height   int
}

func newModel(sess *session.Session, sched playback.Scheduler, l *log.Logger) model {
	if l == nil {
		l = logger.Discard()
	}
	m := model{
		sess:     sess,
		clock:    sess.Start(sched),
		keys:     newKeyMap(sess.ArrowJumpMs, sess.JumpMs),
		help:     help.New(),
		progress: progress.New(progress.WithoutPercentage()),
		copy:     clipboard.WriteAll,
		log:      l,
		now:      time.Now,
		width:    80,
		height:   24,
	}
	m.applyTheme()
	return m
}

// Run reads sess full screen until the user quits.
func Run(sess *session.Session, l *log.Logger) error {
	var p *tea.Program
	sched := playback.Dispatch{Do: func(f func()) { p.Send(fireMsg(f)) }}

	p = tea.NewProgram(newModel(sess, sched, l), tea.WithAltScreen())
	_, err := p.Run()
	return err
}

func (m *model) applyTheme() {
	m.styles = m.sess.Display.Styles()
	p := m.sess.Display.Palette()
	m.progress.FullColor = string(p.Pivot)
	m.progress.EmptyColor = string(p.Border)
}

func (m model) Init() tea.Cmd {
	return nil
}

func (m model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case fireMsg:
		msg()
		return m, nil

	case flashMsg:
		if msg.id == m.flashID {
			m.flash = ""
		}
		return m, nil

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.progress.Width = max(msg.Width-4, 10)
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	r := m.sess.Reader

	switch {
	case key.Matches(msg, m.keys.Quit):
		if err := m.sess.Close(); err != nil {
			m.log.Error("saving progress", "err", err)
		}
		m.quitting = true
		return m, tea.Quit

	case key.Matches(msg, m.keys.Play):
		if err := m.sess.TogglePlay(); err != nil {
			return m.notify("Could not save progress: " + err.Error())
		}

	case key.Matches(msg, m.keys.Back):
		m.arrowPress()
		m.clock.JumpBackward(m.sess.ArrowJumpMs)

	case key.Matches(msg, m.keys.Forward):
		m.arrowPress()
		m.clock.JumpForward(m.sess.ArrowJumpMs)

	case key.Matches(msg, m.keys.LongBack):
		m.clock.JumpBackward(m.sess.JumpMs)

	case key.Matches(msg, m.keys.LongForward):
		m.clock.JumpForward(m.sess.JumpMs)

	case key.Matches(msg, m.keys.PrevSent):
		m.clock.PrevSentence()

	case key.Matches(msg, m.keys.NextSent):
		m.clock.NextSentence()

	case key.Matches(msg, m.keys.Faster):
		return m.adjustRate(session.RateStep)

	case key.Matches(msg, m.keys.Slower):
		return m.adjustRate(-session.RateStep)

	case key.Matches(msg, m.keys.Preset):
		p, err := m.sess.ApplyPreset(int(msg.String()[0] - '0'))
		if err != nil {
			return m.notify(err.Error())
		}
		return m.notify(fmt.Sprintf("%s: %d WPM", p.Label, p.WPM))

	case key.Matches(msg, m.keys.NextChapter):
		if !m.clock.NextChapter() {
			return m.notify("No next chapter")
		}

	case key.Matches(msg, m.keys.PrevChapter):
		if !m.clock.PrevChapter() {
			return m.notify("No previous chapter")
		}

	case key.Matches(msg, m.keys.Bookmark):
		b, err := m.sess.AddBookmark("")
		if err != nil {
			m.log.Error("adding bookmark", "err", err)
			return m.notify("Bookmark failed")
		}
		return m.notify(fmt.Sprintf("Bookmarked word %d", b.Index+1))

	case key.Matches(msg, m.keys.Copy):
		if err := m.copy(r.ContextText()); err != nil {
			m.log.Warn("clipboard", "err", err)
			return m.notify("Clipboard unavailable")
		}
		return m.notify("Passage copied")

	case key.Matches(msg, m.keys.Theme):
		if err := m.sess.CycleTheme(); err != nil {
			m.log.Warn("saving settings", "err", err)
		}
		m.applyTheme()
		return m.notify(m.sess.Display.Theme.Title() + " theme")

	case key.Matches(msg, m.keys.Restart):
		m.clock.Restart()

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
	}
	return m, nil
}

// arrowPress pauses on an isolated arrow press. Presses arriving within
// arrowRepeat of the last one are a held key and leave playback alone.
func (m model) arrowPress() {
	r := m.sess.Reader
	now := m.now()
	if now.Sub(r.LastArrowPress) > arrowRepeat && m.clock.Playing() {
		if err := m.sess.Pause(); err != nil {
			m.log.Warn("saving progress", "err", err)
		}
	}
	r.LastArrowPress = now
}

func (m model) adjustRate(delta int) (tea.Model, tea.Cmd) {
	if err := m.sess.AdjustRate(delta); err != nil {
		m.log.Warn("saving settings", "err", err)
	}
	return m, nil
}

// notify shows text in the status area for flashDuration.
func (m model) notify(text string) (tea.Model, tea.Cmd) {
	m.flashID++
	m.flash = text
	id := m.flashID
	return m, tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashMsg{id: id}
	})
}
