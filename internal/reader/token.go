package reader

import (
	"fmt"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Token is one word of a document together with where it came from.
type Token struct {
	Index   int     `json:"index"`
	Text    string  `json:"text"`
	Locator Locator `json:"locator"`
}

// Locator points back into the source document. Which fields are set
// depends on the format: PDFs fill Page and BBox, EPUB and Markdown fill
// Section.
type Locator struct {
	Page    int   `json:"page,omitempty"`
	Section int   `json:"section,omitempty"`
	BBox    *BBox `json:"bbox,omitempty"`
}

// BBox is a word's bounding box in PDF user space, Y measured from the top.
type BBox struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

func (l Locator) String() string {
	switch {
	case l.Page > 0:
		return fmt.Sprintf("Page %d", l.Page)
	case l.Section > 0:
		return fmt.Sprintf("Section %d", l.Section)
	}
	return ""
}

// Tokenize splits text into whitespace-separated tokens with dense indices.
func Tokenize(text string, loc Locator) []Token {
	return appendWords(nil, text, loc)
}

// appendWords tokenizes text and appends the result to tokens, continuing
// the index sequence.
func appendWords(tokens []Token, text string, loc Locator) []Token {
	for _, w := range strings.Fields(text) {
		tokens = append(tokens, Token{
			Index:   len(tokens),
			Text:    norm.NFC.String(w),
			Locator: loc,
		})
	}
	return tokens
}

// Words returns the text of each token.
func Words(tokens []Token) []string {
	out := make([]string, len(tokens))
	for i, t := range tokens {
		out[i] = t.Text
	}
	return out
}

// textAt returns the text at i, or "" when i is outside the stream.
func textAt(tokens []Token, i int) string {
	if i < 0 || i >= len(tokens) {
		return ""
	}
	return tokens[i].Text
}
