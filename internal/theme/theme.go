// Package theme holds the reader's display preferences: a colour theme, a
// font family and a font size. A Display value is passed explicitly to
// whatever renders words; nothing here is global.
package theme

import (
	"fmt"
	"image/color"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Name identifies a colour theme.
type Name string

const (
	Light Name = "light"
	Sepia Name = "sepia"
	Dark  Name = "dark"
)

// Names lists the themes in cycle order.
var Names = []Name{Light, Sepia, Dark}

// Font identifies a font family.
type Font string

const (
	Mono  Font = "mono"
	Serif Font = "serif"
	Sans  Font = "sans"
)

var Fonts = []Font{Mono, Serif, Sans}

const (
	DefaultFontSize = 48
	MinFontSize     = 16
	MaxFontSize     = 128
)

// Palette is a theme's colours as hex strings.
type Palette struct {
	Background lipgloss.Color
	Card       lipgloss.Color
	Text       lipgloss.Color
	Secondary  lipgloss.Color
	Border     lipgloss.Color
	Pivot      lipgloss.Color
}

// RGB converts a palette entry for drawing outside the terminal. Malformed
// entries come out black.
func RGB(c lipgloss.Color) color.Color {
	col, err := colorful.Hex(string(c))
	if err != nil {
		return color.Black
	}
	return col
}

var palettes = map[Name]Palette{
	Light: {
		Background: "#F9FAFB",
		Card:       "#FFFFFF",
		Text:       "#111827",
		Secondary:  "#4B5563",
		Border:     "#E5E7EB",
		Pivot:      "#2563EB",
	},
	Sepia: {
		Background: "#F4ECD8",
		Card:       "#F9F5E8",
		Text:       "#5C4A3A",
		Secondary:  "#8B7355",
		Border:     "#D4C4A8",
		Pivot:      "#C77700",
	},
	Dark: {
		Background: "#070812",
		Card:       "#0B1220",
		Text:       "#FFFFFF",
		Secondary:  "#D1D5DB",
		Border:     "#1F2937",
		Pivot:      "#60A5FA",
	},
}

// ParseName accepts a theme name in any case.
func ParseName(s string) (Name, error) {
	n := Name(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := palettes[n]; !ok {
		return "", fmt.Errorf("unknown theme %q (want light, sepia or dark)", s)
	}
	return n, nil
}

// ParseFont accepts a font family in any case.
func ParseFont(s string) (Font, error) {
	f := Font(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Fonts {
		if f == known {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown font %q (want mono, serif or sans)", s)
}

// Title is the display label, e.g. "Sepia".
func (n Name) Title() string {
	if n == "" {
		return ""
	}
	return strings.ToUpper(string(n[:1])) + string(n[1:])
}

// Display is the full set of presentation preferences.
type Display struct {
	Theme    Name
	Font     Font
	FontSize int
}

// Default is light, monospace, 48pt.
func Default() Display {
	return Display{Theme: Light, Font: Mono, FontSize: DefaultFontSize}
}

// New builds a Display from stored strings, falling back to the default
// for anything unknown.
func New(name, font string, size int) Display {
	d := Default()
	if n, err := ParseName(name); err == nil {
		d.Theme = n
	}
	if f, err := ParseFont(font); err == nil {
		d.Font = f
	}
	if size > 0 {
		d.FontSize = min(max(size, MinFontSize), MaxFontSize)
	}
	return d
}

func (d Display) Palette() Palette {
	if p, ok := palettes[d.Theme]; ok {
		return p
	}
	return palettes[Light]
}

// NextTheme returns d with the following theme in Names.
func (d Display) NextTheme() Display {
	for i, n := range Names {
		if n == d.Theme {
			d.Theme = Names[(i+1)%len(Names)]
			return d
		}
	}
	d.Theme = Names[0]
	return d
}

// NextFont returns d with the following font in Fonts.
func (d Display) NextFont() Display {
	for i, f := range Fonts {
		if f == d.Font {
			d.Font = Fonts[(i+1)%len(Fonts)]
			return d
		}
	}
	d.Font = Fonts[0]
	return d
}

// Styles are the lipgloss styles the terminal reader draws with.
type Styles struct {
	Before   lipgloss.Style
	Pivot    lipgloss.Style
	After    lipgloss.Style
	Status   lipgloss.Style
	Controls lipgloss.Style
	Paused   lipgloss.Style
	Complete lipgloss.Style
	Context  lipgloss.Style
	Frame    lipgloss.Style
}

// Styles derives terminal styles from the palette.
func (d Display) Styles() Styles {
	p := d.Palette()
	return Styles{
		Before: lipgloss.NewStyle().Foreground(p.Text),
		Pivot: lipgloss.NewStyle().
			Bold(true).
			Foreground(p.Pivot),
		After: lipgloss.NewStyle().Foreground(p.Text),
		Status: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Padding(0, 1),
		Controls: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Italic(true),
		Paused: lipgloss.NewStyle().
			Foreground(p.Pivot).
			Bold(true),
		Complete: lipgloss.NewStyle().
			Foreground(p.Pivot).
			Bold(true),
		Context: lipgloss.NewStyle().
			Foreground(p.Secondary).
			Padding(0, 2),
		Frame: lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(p.Border).
			Padding(1, 4),
	}
}
