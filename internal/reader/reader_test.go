package reader

import (
	"errors"
	"strings"
	"testing"
	"time"
)

func TestTokenize(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected []string
	}{
		{"simple sentence", "Hello world this is a test", []string{"Hello", "world", "this", "is", "a", "test"}},
		{"multiple spaces", "Hello    world     test", []string{"Hello", "world", "test"}},
		{"newlines and tabs", "Hello\nworld\ttest", []string{"Hello", "world", "test"}},
		{"empty string", "", []string{}},
		{"punctuation", "Hello, world! How are you?", []string{"Hello,", "world!", "How", "are", "you?"}},
		{"decomposed accents are composed", "cafe\u0301", []string{"caf\u00e9"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := Tokenize(tt.input, Locator{Page: 2})
			if len(result) != len(tt.expected) {
				t.Fatalf("Tokenize() length = %v, want %v", len(result), len(tt.expected))
			}
			for i, tok := range result {
				if tok.Text != tt.expected[i] {
					t.Errorf("Tokenize()[%d] = %q, want %q", i, tok.Text, tt.expected[i])
				}
				if tok.Index != i {
					t.Errorf("Tokenize()[%d].Index = %d", i, tok.Index)
				}
				if tok.Locator.Page != 2 {
					t.Errorf("Tokenize()[%d] lost its locator", i)
				}
			}
		})
	}
}

func TestNewReader(t *testing.T) {
	r := NewTextReader("Hello world test", 500)

	if r.WPM != 500 {
		t.Errorf("NewReader() WPM = %v, want 500", r.WPM)
	}
	if len(r.Tokens) != 3 {
		t.Errorf("NewReader() tokens = %v, want 3", len(r.Tokens))
	}
	if r.Position != 0 {
		t.Errorf("NewReader() Position = %v, want 0", r.Position)
	}

	if r := NewTextReader("x", 1500); r.WPM != MaxWPM {
		t.Errorf("NewReader() did not clamp rate: %d", r.WPM)
	}
}

func TestReaderCurrentDuration(t *testing.T) {
	tests := []struct {
		name     string
		wpm      int
		expected time.Duration
	}{
		{"300 wpm", 300, 200 * time.Millisecond},
		{"600 wpm", 600, 100 * time.Millisecond},
		{"100 wpm", 100, 600 * time.Millisecond},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := NewTextReader("test words", tt.wpm)
			if got := r.CurrentDuration(); got != tt.expected {
				t.Errorf("CurrentDuration() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestReaderAdvance(t *testing.T) {
	r := NewTextReader("one two three", 300)

	if !r.Advance() || r.CurrentWord() != "two" {
		t.Fatalf("Advance() to %q", r.CurrentWord())
	}
	if !r.Advance() || !r.AtEnd() {
		t.Fatal("expected to reach the last word")
	}
	if r.Advance() {
		t.Error("Advance() past the end returned true")
	}
	if cur, total := r.Progress(); cur != 3 || total != 3 {
		t.Errorf("Progress() = %d/%d", cur, total)
	}
	if r.NextWord() != "" {
		t.Errorf("NextWord() at end = %q", r.NextWord())
	}
}

func TestReaderEmpty(t *testing.T) {
	r := NewReader(nil, 300)

	if r.CurrentWord() != "" {
		t.Errorf("CurrentWord() = %q", r.CurrentWord())
	}
	if _, ok := r.CurrentToken(); ok {
		t.Error("CurrentToken() reported a token")
	}
	if !r.AtEnd() {
		t.Error("empty reader should be at end")
	}
	r.JumpForward(5000)
	r.JumpBackward(5000)
	r.JumpToNextSentence()
	r.JumpToPrevSentence()
	if r.Position != 0 {
		t.Errorf("Position = %d after navigating an empty stream", r.Position)
	}
	if r.Percent() != 0 || r.Remaining() != 0 || r.ContextText() != "" {
		t.Error("empty reader reported progress")
	}
	if (r.CurrentSplit() != Split{}) {
		t.Error("empty reader produced a split")
	}
}

func TestReaderSetRate(t *testing.T) {
	r := NewTextReader("a b c", 300)

	if err := r.SetRate(0); !errors.Is(err, ErrInvalidRate) {
		t.Errorf("SetRate(0) = %v", err)
	}
	if r.WPM != 300 {
		t.Errorf("rejected rate changed WPM to %d", r.WPM)
	}
	if err := r.SetRate(455); err != nil || r.WPM != 460 {
		t.Errorf("SetRate(455) = %v, WPM %d", err, r.WPM)
	}
}

func TestReaderSeek(t *testing.T) {
	r := NewTextReader("a b c d", 300)

	tests := []struct {
		index    int
		expected int
	}{
		{2, 2},
		{-3, 0},
		{10, 3},
	}
	for _, tt := range tests {
		r.Seek(tt.index)
		if r.Position != tt.expected {
			t.Errorf("Seek(%d) = %d, want %d", tt.index, r.Position, tt.expected)
		}
	}
}

func TestReaderSentenceJumps(t *testing.T) {
	r := NewTextReader("One two. Three four. Five six.", 300)

	r.JumpToNextSentence()
	if r.CurrentWord() != "Three" {
		t.Errorf("JumpToNextSentence() landed on %q", r.CurrentWord())
	}
	r.JumpToNextSentence()
	if r.CurrentWord() != "Five" {
		t.Errorf("JumpToNextSentence() landed on %q", r.CurrentWord())
	}
	r.Advance()
	r.JumpToPrevSentence()
	if r.CurrentWord() != "Five" {
		t.Errorf("JumpToPrevSentence() landed on %q", r.CurrentWord())
	}
}

func TestReaderChapters(t *testing.T) {
	r := NewTextReader("Intro. Chapter 1 a b. Chapter 2 c d. Chapter 3 e f.", 300)

	if n := len(r.Chapters()); n != 3 {
		t.Fatalf("Chapters() = %d, want 3", n)
	}
	if _, ok := r.CurrentChapter(); ok {
		t.Error("intro should not be in a chapter")
	}

	if !r.NextChapter() || r.Position != 1 {
		t.Fatalf("NextChapter() moved to %d", r.Position)
	}
	pos, ok := r.CurrentChapter()
	if !ok || pos.Number != 1 || pos.Total != 3 {
		t.Errorf("CurrentChapter() = %+v, %v", pos, ok)
	}

	if !r.JumpToChapter(3) || r.CurrentWord() != "Chapter" {
		t.Fatalf("JumpToChapter(3) moved to %d", r.Position)
	}
	if r.NextChapter() {
		t.Error("NextChapter() past the last chapter")
	}
	r.Advance()
	if !r.PrevChapter() || r.Position != r.Chapters()[2].Start {
		t.Errorf("PrevChapter() from inside chapter 3 moved to %d", r.Position)
	}
	if !r.PrevChapter() || r.Position != r.Chapters()[1].Start {
		t.Errorf("PrevChapter() from chapter 3 start moved to %d", r.Position)
	}
	if r.JumpToChapter(0) || r.JumpToChapter(4) {
		t.Error("JumpToChapter accepted an out-of-range chapter")
	}
}

func TestReaderChaptersInvalidatedOnSetTokens(t *testing.T) {
	r := NewTextReader("Chapter 1 only text", 300)
	if len(r.Chapters()) != 1 {
		t.Fatal("expected one chapter")
	}
	v := r.Version()

	r.SetTokens(Tokenize("no chapters any more", Locator{}))
	if r.Version() == v {
		t.Error("SetTokens did not change the version")
	}
	if len(r.Chapters()) != 0 {
		t.Error("chapters were not recomputed after SetTokens")
	}
}

func TestReaderContextText(t *testing.T) {
	words := make([]string, 200)
	for i := range words {
		words[i] = "w"
	}
	r := NewTextReader(strings.Join(words, " "), 300)

	r.Seek(100)
	if n := len(strings.Fields(r.ContextText())); n != 2*ContextRadius {
		t.Errorf("ContextText() has %d words, want %d", n, 2*ContextRadius)
	}
	r.Seek(10)
	if n := len(strings.Fields(r.ContextText())); n != 10+ContextRadius {
		t.Errorf("ContextText() near the start has %d words", n)
	}
}

func TestReaderRemaining(t *testing.T) {
	r := NewTextReader("The cat sat. It purred.", 300)
	if r.Total() != 1800 {
		t.Errorf("Total() = %d", r.Total())
	}
	r.Seek(2)
	if r.Remaining() != 1400 {
		t.Errorf("Remaining() = %d", r.Remaining())
	}
	if r.Percent() != 40 {
		t.Errorf("Percent() = %d", r.Percent())
	}
}

func TestReaderPercentRounds(t *testing.T) {
	r := NewTextReader("one two three", 300)
	tests := map[int]int{0: 0, 1: 33, 2: 67}
	for pos, want := range tests {
		r.Seek(pos)
		if got := r.Percent(); got != want {
			t.Errorf("Percent() at %d = %d, want %d", pos, got, want)
		}
	}
}

func BenchmarkTokenize(b *testing.B) {
	text := strings.Repeat("Hello world this is a test sentence with multiple words. ", 100)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Tokenize(text, Locator{})
	}
}
