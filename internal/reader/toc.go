package reader

import "strings"

// OutlineEntry is one entry of a document's own table of contents,
// resolved to a position in the token stream.
type OutlineEntry struct {
	Title   string `json:"title"`
	Index   int    `json:"index"`
	Level   int    `json:"level"`
	Preview string `json:"preview,omitempty"`
}

// Outliner is an optional interface for formats that carry a table of
// contents. tokens must be the stream the same format extracted from
// filename.
type Outliner interface {
	Outline(filename string, tokens []Token) ([]OutlineEntry, error)
}

// Outline returns filename's embedded table of contents. Formats without
// one return nil and no error; callers fall back to DetectChapters.
func Outline(filename string, tokens []Token) ([]OutlineEntry, error) {
	f, ok := FormatFor(filename)
	if !ok {
		return nil, nil
	}
	o, ok := f.(Outliner)
	if !ok {
		return nil, nil
	}
	return o.Outline(filename, tokens)
}

const previewWords = 10

// preview returns the first few words starting at index.
func preview(tokens []Token, index int) string {
	if index < 0 || index >= len(tokens) {
		return ""
	}
	end := min(index+previewWords, len(tokens))
	s := strings.Join(Words(tokens[index:end]), " ")
	if end < len(tokens) {
		s += "..."
	}
	return s
}

// sectionStarts maps each section number to the index of its first token.
func sectionStarts(tokens []Token) map[int]int {
	starts := make(map[int]int)
	for _, tok := range tokens {
		if _, ok := starts[tok.Locator.Section]; !ok {
			starts[tok.Locator.Section] = tok.Index
		}
	}
	return starts
}
