package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/metcalfc/rsvp/internal/reader"
	"github.com/metcalfc/rsvp/internal/session"
	"github.com/metcalfc/rsvp/internal/theme"
)

func (m model) View() string {
	if m.quitting {
		if m.sess.Reader.AtEnd() {
			return m.styles.Complete.Render("\n  Reading complete!\n")
		}
		return ""
	}

	r := m.sess.Reader
	if len(r.Tokens) == 0 {
		return "No text to read."
	}

	st := m.sess.Status()
	header := m.styles.Status.Render(statusLine(st))
	bar := " " + m.progress.ViewAs(float64(st.Percent)/100)
	footer := m.help.View(m.keys)
	if m.flash != "" {
		footer = m.styles.Paused.Render(m.flash) + "\n" + footer
	}

	var below string
	if !st.Playing && !st.Finished {
		below = m.contextPanel()
	}
	if st.Finished && st.Playing {
		below = m.styles.Complete.Render("Reading complete!")
	}

	word := anchorORP(r.CurrentSplit(), m.styles, m.width)

	// Centre the word in whatever the header, bar and footer leave.
	used := lipgloss.Height(header) + lipgloss.Height(bar) + lipgloss.Height(footer)
	if below != "" {
		used += lipgloss.Height(below) + 1
	}
	avail := max(m.height-used-1, 1)
	vPad := avail / 2

	var sb strings.Builder
	sb.WriteString(header)
	sb.WriteString("\n")
	sb.WriteString(bar)
	sb.WriteString(strings.Repeat("\n", vPad+1))
	sb.WriteString(word)
	sb.WriteString("\n")
	if below != "" {
		sb.WriteString("\n")
		sb.WriteString(below)
		sb.WriteString("\n")
	}
	sb.WriteString(strings.Repeat("\n", max(avail-vPad-1, 0)))
	sb.WriteString(footer)
	return sb.String()
}

// statusLine renders word count, locator, chapter, time left and rate.
func statusLine(st session.Status) string {
	parts := []string{fmt.Sprintf("Word %d/%d (%d%%)", st.Word, st.Total, st.Percent)}
	if st.Locator != "" {
		parts = append(parts, st.Locator)
	}
	if st.Chapter != nil {
		parts = append(parts, fmt.Sprintf("Ch %d/%d %s", st.Chapter.Number, st.Chapter.Total, st.Chapter.Title))
	}
	parts = append(parts,
		st.Remaining+" left",
		fmt.Sprintf("%d WPM %s", st.WPM, st.Speed),
	)
	if !st.Playing {
		parts = append(parts, "[PAUSED]")
	}
	return strings.Join(parts, " | ")
}

// anchorORP renders the split word so its pivot sits at the horizontal
// centre of a line width cells wide.
func anchorORP(s reader.Split, styles theme.Styles, width int) string {
	pad := max(width/2-lipgloss.Width(s.Before), 0)
	return strings.Repeat(" ", pad) +
		styles.Before.Render(s.Before) +
		styles.Pivot.Render(s.Pivot) +
		styles.After.Render(s.After)
}

// contextPanel shows the passage around the current word while paused.
func (m model) contextPanel() string {
	text := m.sess.Reader.ContextText()
	if text == "" {
		return ""
	}
	width := max(min(m.width-8, 100), 20)
	return m.styles.Context.Width(width).Render(text)
}
