package reader

import (
	"errors"
	"fmt"
	"math"
	"time"
	"unicode/utf8"
)

// Rate limits, in words per minute.
const (
	MinWPM     = 100
	MaxWPM     = 600
	RateStep   = 10
	DefaultWPM = 300
)

// ErrInvalidRate is returned for a words-per-minute rate that cannot be used
// as a divisor.
var ErrInvalidRate = errors.New("invalid rate")

// ValidateRate rejects rates the timing functions cannot work with.
func ValidateRate(wpm int) error {
	if wpm <= 0 {
		return fmt.Errorf("%w: %d wpm", ErrInvalidRate, wpm)
	}
	return nil
}

// ClampRate snaps wpm onto the supported range and step.
func ClampRate(wpm int) int {
	if wpm < MinWPM {
		return MinWPM
	}
	if wpm > MaxWPM {
		return MaxWPM
	}
	return (wpm + RateStep/2) / RateStep * RateStep
}

// WordDuration returns how long word stays on screen, in milliseconds.
// Long words and trailing punctuation stretch the base interval; a sentence
// end followed by nothing (or by a lone newline token) is treated as a
// paragraph break. next is the following word, "" when there is none.
//
// wpm must be positive; see ValidateRate.
func WordDuration(word string, wpm int, next string) int64 {
	baseMs := 60000 / float64(wpm)
	multiplier := 1.0

	switch n := utf8.RuneCountInString(word); {
	case n > 13:
		multiplier = 2.0
	case n > 9:
		multiplier = 1.5
	}

	last, _ := utf8.DecodeLastRuneInString(word)
	switch last {
	case ',', ';', ':':
		multiplier = math.Max(multiplier, 1.5)
	case '.', '!', '?':
		multiplier = math.Max(multiplier, 2.5)
		if next == "" || next == "\n" {
			multiplier = 3.5
		}
	}

	return int64(math.Round(baseMs * multiplier))
}

// Delay converts a duration in milliseconds for use with timers.
func Delay(ms int64) time.Duration {
	return time.Duration(ms) * time.Millisecond
}

// TotalDuration is the time needed to read every token at wpm.
func TotalDuration(tokens []Token, wpm int) int64 {
	return RemainingDuration(tokens, 0, wpm)
}

// RemainingDuration is the time needed to read from index to the end.
func RemainingDuration(tokens []Token, index, wpm int) int64 {
	if index < 0 {
		index = 0
	}
	var total int64
	for i := index; i < len(tokens); i++ {
		total += WordDuration(tokens[i].Text, wpm, textAt(tokens, i+1))
	}
	return total
}

// FormatDuration renders milliseconds as "45s", "2m 5s" or "1h 2m".
func FormatDuration(ms int64) string {
	seconds := ms / 1000
	minutes := seconds / 60
	hours := minutes / 60

	switch {
	case hours > 0:
		return fmt.Sprintf("%dh %dm", hours, minutes%60)
	case minutes > 0:
		return fmt.Sprintf("%dm %ds", minutes, seconds%60)
	}
	return fmt.Sprintf("%ds", seconds)
}

// SpeedLabel describes a reading rate.
func SpeedLabel(wpm int) string {
	switch {
	case wpm <= 200:
		return "Study mode"
	case wpm <= 300:
		return "Comfortable"
	case wpm <= 400:
		return "Fast"
	}
	return "Skimming"
}

// Preset is a named reading rate.
type Preset struct {
	WPM   int
	Label string
}

// Presets are the quick-select reading rates.
var Presets = []Preset{
	{150, "Study"},
	{250, "Comfortable"},
	{300, "Default"},
	{350, "Fast"},
	{450, "Skim"},
}
