// Package reader provides core RSVP (Rapid Serial Visual Presentation) speed reading logic:
// word timing, ORP alignment, chapter detection and navigation over a token stream.
package reader

import (
	"errors"
	"math"
	"strings"
	"time"
)

// ErrNoText is returned when a document yields no readable words.
var ErrNoText = errors.New("no text to read")

// ContextRadius is how many tokens either side of the position the context
// passage covers.
const ContextRadius = 50

// Reader holds the state for an RSVP speed reading session.
type Reader struct {
	Tokens         []Token
	Position       int
	WPM            int
	LastArrowPress time.Time

	version         int
	chapters        []Chapter
	chaptersVersion int
	chaptersValid   bool
}

// NewReader creates a Reader over tokens. Rates outside the supported range
// are clamped.
func NewReader(tokens []Token, wpm int) *Reader {
	return &Reader{
		Tokens: tokens,
		WPM:    ClampRate(wpm),
	}
}

// NewTextReader tokenizes plain text and creates a Reader over it.
func NewTextReader(text string, wpm int) *Reader {
	return NewReader(Tokenize(text, Locator{}), wpm)
}

// SetTokens replaces the stream and invalidates anything derived from it.
func (r *Reader) SetTokens(tokens []Token) {
	r.Tokens = tokens
	r.version++
	r.Position = clampIndex(r.Position, len(tokens))
}

// Version identifies the current token stream. It changes on SetTokens.
func (r *Reader) Version() int {
	return r.version
}

// SetRate validates and applies a new words-per-minute rate.
func (r *Reader) SetRate(wpm int) error {
	if err := ValidateRate(wpm); err != nil {
		return err
	}
	r.WPM = ClampRate(wpm)
	return nil
}

// Seek moves to index, clamped into the stream.
func (r *Reader) Seek(index int) {
	r.Position = clampIndex(index, len(r.Tokens))
}

// CurrentToken returns the token at the current position.
func (r *Reader) CurrentToken() (Token, bool) {
	if r.Position >= 0 && r.Position < len(r.Tokens) {
		return r.Tokens[r.Position], true
	}
	return Token{}, false
}

// CurrentWord returns the word at the current position.
func (r *Reader) CurrentWord() string {
	return textAt(r.Tokens, r.Position)
}

// NextWord returns the word after the current one, "" at the end.
func (r *Reader) NextWord() string {
	return textAt(r.Tokens, r.Position+1)
}

// CurrentSplit returns the current word cut at its ORP.
func (r *Reader) CurrentSplit() Split {
	return SplitAtORP(r.CurrentWord())
}

// CurrentDuration is how long the current word should be displayed.
func (r *Reader) CurrentDuration() time.Duration {
	return Delay(WordDuration(r.CurrentWord(), r.WPM, r.NextWord()))
}

// Progress returns the current position and total word count.
func (r *Reader) Progress() (current, total int) {
	return r.Position + 1, len(r.Tokens)
}

// Percent returns how far through the stream the position is, 0-100.
func (r *Reader) Percent() int {
	if len(r.Tokens) == 0 {
		return 0
	}
	return int(math.Round(float64(r.Position) * 100 / float64(len(r.Tokens))))
}

// Remaining is the reading time left from the current position.
func (r *Reader) Remaining() int64 {
	return RemainingDuration(r.Tokens, r.Position, r.WPM)
}

// Total is the reading time of the whole stream.
func (r *Reader) Total() int64 {
	return TotalDuration(r.Tokens, r.WPM)
}

// Advance moves to the next word. Returns true if there are more words.
func (r *Reader) Advance() bool {
	if r.Position < len(r.Tokens)-1 {
		r.Position++
		return true
	}
	return false
}

// AtEnd returns true if the reader is at the last word.
func (r *Reader) AtEnd() bool {
	return r.Position >= len(r.Tokens)-1
}

// JumpForward skips ahead by roughly ms of reading time.
func (r *Reader) JumpForward(ms int64) {
	r.Position = JumpForward(r.Tokens, r.Position, r.WPM, ms)
}

// JumpBackward rewinds by roughly ms of reading time.
func (r *Reader) JumpBackward(ms int64) {
	r.Position = JumpBackward(r.Tokens, r.Position, r.WPM, ms)
}

// JumpToPrevSentence moves to the start of the previous sentence.
func (r *Reader) JumpToPrevSentence() {
	r.Position = PreviousSentenceBoundary(r.Tokens, r.Position)
}

// JumpToNextSentence moves to the start of the next sentence.
func (r *Reader) JumpToNextSentence() {
	r.Position = NextSentenceBoundary(r.Tokens, r.Position)
}

// Chapters returns the chapters detected in the stream. Detection runs once
// per stream version.
func (r *Reader) Chapters() []Chapter {
	if !r.chaptersValid || r.chaptersVersion != r.version {
		r.chapters = DetectChapters(r.Tokens)
		r.chaptersVersion = r.version
		r.chaptersValid = true
	}
	return r.chapters
}

// CurrentChapter returns the chapter containing the current position.
func (r *Reader) CurrentChapter() (ChapterPosition, bool) {
	return FindChapter(r.Chapters(), r.Position)
}

// JumpToChapter moves to the start of the n-th chapter (1-based).
func (r *Reader) JumpToChapter(n int) bool {
	chapters := r.Chapters()
	if n < 1 || n > len(chapters) {
		return false
	}
	r.Position = chapters[n-1].Start
	return true
}

// NextChapter moves to the start of the chapter after the current one.
func (r *Reader) NextChapter() bool {
	for _, ch := range r.Chapters() {
		if ch.Start > r.Position {
			r.Position = ch.Start
			return true
		}
	}
	return false
}

// PrevChapter moves to the start of the current chapter, or to the previous
// chapter when already at a chapter start.
func (r *Reader) PrevChapter() bool {
	chapters := r.Chapters()
	for i := len(chapters) - 1; i >= 0; i-- {
		if chapters[i].Start < r.Position {
			r.Position = chapters[i].Start
			return true
		}
	}
	return false
}

// ContextText returns the passage of up to ContextRadius words either side
// of the current position.
func (r *Reader) ContextText() string {
	start := max(0, r.Position-ContextRadius)
	end := min(len(r.Tokens), r.Position+ContextRadius)
	if start >= end {
		return ""
	}
	return strings.Join(Words(r.Tokens[start:end]), " ")
}
