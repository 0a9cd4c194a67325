package reader

import (
	"context"
	"fmt"
	"math"
	"os"
	"strings"
	"unicode"

	"rsc.io/pdf"
)

// PDFFormat implements Format for PDF files.
type PDFFormat struct{}

func init() {
	Register(&PDFFormat{})
}

func (f *PDFFormat) Name() string         { return "PDF" }
func (f *PDFFormat) Extensions() []string { return []string{".pdf"} }

// Extract walks every page's text runs and groups glyphs into words. Tokens
// carry their page number and an approximate bounding box.
func (f *PDFFormat) Extract(ctx context.Context, filename string, progress ProgressFunc) (*Document, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open pdf: %w", err)
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return nil, fmt.Errorf("failed to stat pdf: %w", err)
	}

	r, err := pdf.NewReader(file, info.Size())
	if err != nil {
		return nil, fmt.Errorf("failed to parse pdf: %w", err)
	}

	pages := r.NumPage()
	doc := &Document{
		Title:      strings.TrimSpace(r.Trailer().Key("Info").Key("Title").Text()),
		Author:     strings.TrimSpace(r.Trailer().Key("Info").Key("Author").Text()),
		Type:       "pdf",
		TotalPages: pages,
	}
	if doc.Title == "" {
		doc.Title = titleFromFilename(filename)
	}

	for i := 1; i <= pages; i++ {
		if err := canceled(ctx); err != nil {
			return nil, err
		}
		doc.Tokens = append(doc.Tokens, pageWords(r.Page(i), i, len(doc.Tokens))...)
		progress(i, pages)
	}

	if len(doc.Tokens) == 0 {
		return nil, fmt.Errorf("no text content extracted from pdf: %w", ErrNoText)
	}
	return doc, nil
}

// pageWords extracts the words of one page. rsc.io/pdf panics on malformed
// content streams; such pages are skipped.
func pageWords(page pdf.Page, pageNum, offset int) (tokens []Token) {
	defer func() {
		if recover() != nil {
			tokens = nil
		}
	}()

	if page.V.IsNull() {
		return nil
	}
	words := groupWords(page.Content().Text, pageHeight(page))
	for i, w := range words {
		w.Index = offset + i
		w.Locator.Page = pageNum
		words[i] = w
	}
	return words
}

// pageHeight finds the page's MediaBox height, which may be inherited from
// an ancestor page tree node.
func pageHeight(page pdf.Page) float64 {
	for v := page.V; !v.IsNull(); v = v.Key("Parent") {
		if box := v.Key("MediaBox"); box.Kind() == pdf.Array && box.Len() == 4 {
			return box.Index(3).Float64()
		}
	}
	return 0
}

// wordGap is the horizontal gap, relative to font size, that separates two
// glyph runs into different words.
const wordGap = 0.15

// groupWords joins glyph runs into whitespace-delimited words.
func groupWords(texts []pdf.Text, height float64) []Token {
	var (
		tokens []Token
		cur    strings.Builder
		box    BBox
		lastX  float64
		lastY  float64
		size   float64
	)

	flush := func() {
		if cur.Len() == 0 {
			return
		}
		b := box
		tokens = appendWords(tokens, cur.String(), Locator{BBox: &b})
		cur.Reset()
	}

	for _, t := range texts {
		for _, r := range t.S {
			if unicode.IsSpace(r) {
				flush()
				continue
			}
			sameLine := math.Abs(t.Y-lastY) < math.Max(t.FontSize, size)*0.5
			if cur.Len() > 0 && (!sameLine || t.X-lastX > t.FontSize*wordGap) {
				flush()
			}
			if cur.Len() == 0 {
				box = BBox{X: t.X, Y: height - t.Y - t.FontSize, Height: t.FontSize}
			}
			cur.WriteRune(r)
			lastX = t.X + t.W
			lastY = t.Y
			size = t.FontSize
			box.Width = lastX - box.X
		}
	}
	flush()
	return tokens
}
