//go:build gui

package main

import (
	"fmt"
	"strings"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
	"github.com/charmbracelet/log"

	"github.com/metcalfc/rsvp/internal/playback"
	"github.com/metcalfc/rsvp/internal/reader"
	"github.com/metcalfc/rsvp/internal/session"
	"github.com/metcalfc/rsvp/internal/theme"
)

// runner reads in a desktop window.
var runner = runGUI

const (
	arrowRepeat   = 500 * time.Millisecond
	fontSizeStep  = 4
	windowWidth   = 800
	windowHeight  = 600
	resizePollGap = 100 * time.Millisecond
)

type window struct {
	sess  *session.Session
	clock *playback.Clock
	log   *log.Logger

	app fyne.App
	win fyne.Window

	background *canvas.Rectangle
	word       *fyne.Container
	status     *widget.Label
	flash      *widget.Label
	controls   *widget.Label
	chapters   *widget.List
	split      *container.Split

	chaptersVisible bool
	flashID         int
}

func createWordDisplay(s reader.Split, d theme.Display, windowWidth float32) *fyne.Container {
	p := d.Palette()
	style := fyne.TextStyle{Bold: true, Monospace: d.Font == theme.Mono, Italic: d.Font == theme.Serif}

	beforeText := canvas.NewText(s.Before, theme.RGB(p.Text))
	focusText := canvas.NewText(s.Pivot, theme.RGB(p.Pivot))
	afterText := canvas.NewText(s.After, theme.RGB(p.Text))
	for _, t := range []*canvas.Text{beforeText, focusText, afterText} {
		t.TextSize = float32(d.FontSize)
		t.TextStyle = style
	}

	// Horizontal: anchor ORP at center
	centerX := windowWidth / 2
	beforeX := max(centerX-beforeText.MinSize().Width, 0)
	afterX := centerX + focusText.MinSize().Width

	beforeText.Move(fyne.NewPos(beforeX, 0))
	focusText.Move(fyne.NewPos(centerX, 0))
	afterText.Move(fyne.NewPos(afterX, 0))

	return &fyne.Container{
		Layout:  &centerVerticalLayout{},
		Objects: []fyne.CanvasObject{beforeText, focusText, afterText},
	}
}

// centerVerticalLayout centres its children vertically and leaves the x
// positions createWordDisplay gave them.
type centerVerticalLayout struct{}

func (l *centerVerticalLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var maxH float32
	for _, o := range objects {
		maxH = max(maxH, o.MinSize().Height)
	}
	return fyne.NewSize(0, maxH)
}

func (l *centerVerticalLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	maxH := l.MinSize(objects).Height
	y := max((size.Height-maxH)/2, 0)
	for _, o := range objects {
		o.Move(fyne.NewPos(o.Position().X, y))
		o.Resize(o.MinSize())
	}
}

// runGUI reads sess in a window until it is closed.
func runGUI(sess *session.Session, l *log.Logger) error {
	w := &window{sess: sess, log: l, app: app.New()}
	w.win = w.app.NewWindow("rsvp - " + sess.Book.Title)

	// Timer callbacks run on the fyne event goroutine, like key handlers.
	w.clock = sess.Start(playback.Dispatch{Do: fyne.Do}, func(int) { w.update() })

	w.build()
	w.win.Canvas().SetOnTypedKey(w.onKey)
	w.win.Canvas().SetOnTypedRune(w.onRune)
	w.win.SetOnClosed(func() {
		if err := sess.Close(); err != nil {
			l.Error("saving progress", "err", err)
		}
	})
	w.win.Resize(fyne.NewSize(windowWidth, windowHeight))

	go w.watchResize()
	go func() {
		time.Sleep(resizePollGap)
		fyne.Do(w.update)
	}()

	w.win.ShowAndRun()
	return nil
}

func (w *window) build() {
	w.background = canvas.NewRectangle(theme.RGB(w.sess.Display.Palette().Background))
	w.word = container.NewStack()

	w.status = widget.NewLabel("")
	w.status.Alignment = fyne.TextAlignCenter
	w.flash = widget.NewLabel("")
	w.flash.Alignment = fyne.TextAlignCenter
	w.controls = widget.NewLabel("SPACE: play  ←/→: jump  ,/.: sentence  ↑/↓: speed  1-5: presets  " +
		"N/P: chapter  C: chapters  B: bookmark  Y: copy  T: theme  F: font  +/-: size  F11: fullscreen  Q: quit")
	w.controls.Alignment = fyne.TextAlignCenter
	w.controls.Wrapping = fyne.TextWrapWord

	reading := container.NewBorder(
		w.status,
		container.NewVBox(w.flash, w.controls),
		nil, nil,
		container.NewStack(w.background, w.word),
	)

	chapters := w.sess.Reader.Chapters()
	if len(chapters) == 0 {
		w.win.SetContent(reading)
		return
	}

	w.chapters = widget.NewList(
		func() int { return len(chapters) },
		func() fyne.CanvasObject {
			return container.NewVBox(widget.NewLabel("Title"), widget.NewLabel("Words"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			ch := chapters[id]
			vbox := obj.(*fyne.Container)
			title := vbox.Objects[0].(*widget.Label)
			title.TextStyle.Bold = true
			title.SetText(ch.Title)
			vbox.Objects[1].(*widget.Label).SetText(fmt.Sprintf("%s · %d words", ch.Locator, ch.WordCount))
		},
	)
	w.chapters.OnSelected = func(id widget.ListItemID) {
		w.clock.Pause()
		w.clock.JumpToChapter(id + 1)
		w.toggleChapters()
		w.chapters.UnselectAll()
	}

	panel := container.NewBorder(
		widget.NewLabel("Chapters"),
		widget.NewLabel("Click to jump • C to close"),
		nil, nil,
		w.chapters,
	)
	panel.Hide()
	w.split = container.NewHSplit(panel, reading)
	w.split.Offset = 0.33
	w.win.SetContent(w.split)
}

func (w *window) toggleChapters() {
	if w.split == nil {
		w.notify("No chapters detected")
		return
	}
	w.chaptersVisible = !w.chaptersVisible
	if w.chaptersVisible {
		if err := w.sess.Pause(); err != nil {
			w.log.Warn("saving progress", "err", err)
		}
		w.split.Leading.Show()
	} else {
		w.split.Leading.Hide()
	}
	w.split.Refresh()
	w.update()
}

// update redraws the word and status line.
func (w *window) update() {
	width := w.win.Canvas().Size().Width
	if width <= 0 {
		width = windowWidth
	}

	d := w.sess.Display
	w.background.FillColor = theme.RGB(d.Palette().Background)
	w.background.Refresh()

	w.word.Objects = []fyne.CanvasObject{createWordDisplay(w.sess.Reader.CurrentSplit(), d, width)}
	w.word.Refresh()

	w.status.SetText(statusText(w.sess.Status(), d))
}

func statusText(st session.Status, d theme.Display) string {
	parts := []string{fmt.Sprintf("Word %d/%d (%d%%)", st.Word, st.Total, st.Percent)}
	if st.Locator != "" {
		parts = append(parts, st.Locator)
	}
	if st.Chapter != nil {
		parts = append(parts, fmt.Sprintf("Ch %d/%d", st.Chapter.Number, st.Chapter.Total))
	}
	parts = append(parts,
		st.Remaining+" left",
		fmt.Sprintf("%d WPM %s", st.WPM, st.Speed),
		fmt.Sprintf("%s %s %d", d.Theme.Title(), d.Font, d.FontSize),
	)
	switch {
	case st.Finished:
		parts = append(parts, "Reading complete!")
	case !st.Playing:
		parts = append(parts, "[PAUSED]")
	}
	return strings.Join(parts, " | ")
}

// notify shows text under the word for a couple of seconds.
func (w *window) notify(text string) {
	w.flashID++
	id := w.flashID
	w.flash.SetText(text)
	time.AfterFunc(2*time.Second, func() {
		fyne.Do(func() {
			if w.flashID == id {
				w.flash.SetText("")
			}
		})
	})
}

// arrowPress pauses on an isolated arrow press; a held key scrubs.
func (w *window) arrowPress() {
	r := w.sess.Reader
	now := time.Now()
	if now.Sub(r.LastArrowPress) > arrowRepeat && w.clock.Playing() {
		if err := w.sess.Pause(); err != nil {
			w.log.Warn("saving progress", "err", err)
		}
	}
	r.LastArrowPress = now
}

func (w *window) onKey(key *fyne.KeyEvent) {
	switch key.Name {
	case fyne.KeySpace:
		if err := w.sess.TogglePlay(); err != nil {
			w.log.Warn("saving progress", "err", err)
		}
	case fyne.KeyUp:
		w.warn(w.sess.AdjustRate(session.RateStep))
	case fyne.KeyDown:
		w.warn(w.sess.AdjustRate(-session.RateStep))
	case fyne.KeyLeft:
		w.arrowPress()
		w.clock.JumpBackward(w.sess.ArrowJumpMs)
	case fyne.KeyRight:
		w.arrowPress()
		w.clock.JumpForward(w.sess.ArrowJumpMs)
	case fyne.KeyF11:
		w.win.SetFullScreen(!w.win.FullScreen())
	case fyne.KeyEscape:
		if w.chaptersVisible {
			w.toggleChapters()
		}
	default:
		return
	}
	w.update()
}

func (w *window) onRune(r rune) {
	switch r {
	case '[':
		w.clock.JumpBackward(w.sess.JumpMs)
	case ']':
		w.clock.JumpForward(w.sess.JumpMs)
	case ',':
		w.clock.PrevSentence()
	case '.':
		w.clock.NextSentence()
	case '1', '2', '3', '4', '5':
		p, err := w.sess.ApplyPreset(int(r - '0'))
		if err != nil {
			w.notify(err.Error())
			break
		}
		w.notify(fmt.Sprintf("%s: %d WPM", p.Label, p.WPM))
	case 'n', 'N':
		if !w.clock.NextChapter() {
			w.notify("No next chapter")
		}
	case 'p', 'P':
		if !w.clock.PrevChapter() {
			w.notify("No previous chapter")
		}
	case 'c', 'C':
		w.toggleChapters()
	case 'b', 'B':
		b, err := w.sess.AddBookmark("")
		if err != nil {
			w.log.Error("adding bookmark", "err", err)
			w.notify("Bookmark failed")
			break
		}
		w.notify(fmt.Sprintf("Bookmarked word %d", b.Index+1))
	case 'y', 'Y':
		w.app.Clipboard().SetContent(w.sess.Reader.ContextText())
		w.notify("Passage copied")
	case 't', 'T':
		w.warn(w.sess.CycleTheme())
	case 'f', 'F':
		w.warn(w.sess.CycleFont())
	case '+', '=':
		w.warn(w.sess.AdjustFontSize(fontSizeStep))
	case '-':
		w.warn(w.sess.AdjustFontSize(-fontSizeStep))
	case 'r', 'R':
		w.clock.Restart()
	case 'q', 'Q':
		w.win.Close()
		return
	default:
		return
	}
	w.update()
}

func (w *window) warn(err error) {
	if err != nil {
		w.log.Warn("saving settings", "err", err)
	}
}

// watchResize pauses and redraws when the window width changes, since the
// word is positioned for a fixed width.
func (w *window) watchResize() {
	var lastWidth float32 = windowWidth
	for {
		time.Sleep(resizePollGap)
		var width float32
		fyne.DoAndWait(func() { width = w.win.Canvas().Size().Width })
		if width <= 0 || width == lastWidth {
			continue
		}
		lastWidth = width
		fyne.Do(func() {
			if err := w.sess.Pause(); err != nil {
				w.log.Warn("saving progress", "err", err)
			}
			w.update()
		})
	}
}
