package tui

import (
	"fmt"
	"strconv"

	"github.com/charmbracelet/bubbles/key"
)

type keyMap struct {
	Play        key.Binding
	Back        key.Binding
	Forward     key.Binding
	LongBack    key.Binding
	LongForward key.Binding
	PrevSent    key.Binding
	NextSent    key.Binding
	Faster      key.Binding
	Slower      key.Binding
	Preset      key.Binding
	NextChapter key.Binding
	PrevChapter key.Binding
	Bookmark    key.Binding
	Copy        key.Binding
	Theme       key.Binding
	Restart     key.Binding
	Help        key.Binding
	Quit        key.Binding
}

// jumpHelp labels a jump of ms milliseconds in seconds, e.g. "back 1.5s".
func jumpHelp(dir string, ms int64) string {
	return fmt.Sprintf("%s %ss", dir, strconv.FormatFloat(float64(ms)/1000, 'f', -1, 64))
}

func newKeyMap(arrowJumpMs, jumpMs int64) keyMap {
	return keyMap{
		Play: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "pause/play"),
		),
		Back: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←", jumpHelp("back", arrowJumpMs)),
		),
		Forward: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→", jumpHelp("forward", arrowJumpMs)),
		),
		LongBack: key.NewBinding(
			key.WithKeys("["),
			key.WithHelp("[", jumpHelp("back", jumpMs)),
		),
		LongForward: key.NewBinding(
			key.WithKeys("]"),
			key.WithHelp("]", jumpHelp("forward", jumpMs)),
		),
		PrevSent: key.NewBinding(
			key.WithKeys(","),
			key.WithHelp(",", "prev sentence"),
		),
		NextSent: key.NewBinding(
			key.WithKeys("."),
			key.WithHelp(".", "next sentence"),
		),
		Faster: key.NewBinding(
			key.WithKeys("up", "+", "="),
			key.WithHelp("↑", "faster"),
		),
		Slower: key.NewBinding(
			key.WithKeys("down", "-"),
			key.WithHelp("↓", "slower"),
		),
		Preset: key.NewBinding(
			key.WithKeys("1", "2", "3", "4", "5"),
			key.WithHelp("1-5", "presets"),
		),
		NextChapter: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "next chapter"),
		),
		PrevChapter: key.NewBinding(
			key.WithKeys("p"),
			key.WithHelp("p", "prev chapter"),
		),
		Bookmark: key.NewBinding(
			key.WithKeys("b"),
			key.WithHelp("b", "bookmark"),
		),
		Copy: key.NewBinding(
			key.WithKeys("y"),
			key.WithHelp("y", "copy passage"),
		),
		Theme: key.NewBinding(
			key.WithKeys("t"),
			key.WithHelp("t", "theme"),
		),
		Restart: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "restart"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "more keys"),
		),
		Quit: key.NewBinding(
			key.WithKeys("q", "Q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Play, k.Faster, k.Slower, k.Back, k.Forward, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Play, k.Faster, k.Slower, k.Preset},
		{k.Back, k.Forward, k.LongBack, k.LongForward},
		{k.PrevSent, k.NextSent, k.PrevChapter, k.NextChapter},
		{k.Bookmark, k.Copy, k.Theme, k.Restart, k.Quit},
	}
}
