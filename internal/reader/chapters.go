package reader

import (
	"regexp"
	"strings"
)

// Chapter is a contiguous run of tokens that starts at a heading-like marker.
type Chapter struct {
	Start     int
	End       int // exclusive
	Title     string
	Locator   Locator
	WordCount int
}

// ChapterPosition is the chapter containing a token, with its 1-based
// number among all chapters.
type ChapterPosition struct {
	Chapter
	Number int
	Total  int
}

const (
	chapterWindow   = 5
	chapterTitleLen = 50
)

var chapterRegex = regexp.MustCompile(`(?i)^(chapter|ch\.|section|part)\s+[[:alnum:]]+`)

// DetectChapters scans tokens for "Chapter 3", "Part II" and similar markers
// and partitions the stream into chapters. Tokens before the first marker
// belong to no chapter.
func DetectChapters(tokens []Token) []Chapter {
	var chapters []Chapter
	for i := range tokens {
		end := min(i+chapterWindow, len(tokens))
		context := strings.Join(Words(tokens[i:end]), " ")
		if !chapterRegex.MatchString(context) {
			continue
		}
		chapters = append(chapters, Chapter{
			Start:   i,
			Title:   truncateRunes(context, chapterTitleLen),
			Locator: tokens[i].Locator,
		})
	}

	for i := range chapters {
		if i+1 < len(chapters) {
			chapters[i].End = chapters[i+1].Start
		} else {
			chapters[i].End = len(tokens)
		}
		chapters[i].WordCount = chapters[i].End - chapters[i].Start
	}
	return chapters
}

// CurrentChapter detects chapters and returns the one containing index.
// It reports false when index precedes every chapter or there are none.
func CurrentChapter(tokens []Token, index int) (ChapterPosition, bool) {
	return FindChapter(DetectChapters(tokens), index)
}

// FindChapter is CurrentChapter over an already detected chapter list.
func FindChapter(chapters []Chapter, index int) (ChapterPosition, bool) {
	for i := len(chapters) - 1; i >= 0; i-- {
		if chapters[i].Start <= index {
			return ChapterPosition{
				Chapter: chapters[i],
				Number:  i + 1,
				Total:   len(chapters),
			}, true
		}
	}
	return ChapterPosition{}, false
}

func truncateRunes(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
