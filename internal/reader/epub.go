package reader

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/taylorskalyo/goreader/epub"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// EPUBFormat implements Format for EPUB files.
type EPUBFormat struct{}

func init() {
	Register(&EPUBFormat{})
}

func (f *EPUBFormat) Name() string         { return "EPUB" }
func (f *EPUBFormat) Extensions() []string { return []string{".epub"} }

// Extract reads the spine in order. Each spine item becomes a section and
// its tokens carry the 1-based section number as their locator.
func (f *EPUBFormat) Extract(ctx context.Context, filename string, progress ProgressFunc) (*Document, error) {
	rc, err := epub.OpenReader(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open epub: %w", err)
	}
	defer rc.Close()

	if len(rc.Rootfiles) == 0 {
		return nil, fmt.Errorf("no rootfiles found in epub")
	}

	book := rc.Rootfiles[0]
	items := book.Spine.Itemrefs
	doc := &Document{
		Title:      strings.TrimSpace(book.Title),
		Author:     strings.TrimSpace(book.Creator),
		Type:       "epub",
		TotalPages: len(items),
	}
	if doc.Title == "" {
		doc.Title = titleFromFilename(filename)
	}

	for i, ref := range items {
		if err := canceled(ctx); err != nil {
			return nil, err
		}
		if ref.Item != nil {
			if text, err := readSpineItem(ref.Item); err == nil {
				doc.Tokens = appendWords(doc.Tokens, text, Locator{Section: i + 1})
			}
		}
		progress(i+1, len(items))
	}

	if len(doc.Tokens) == 0 {
		return nil, fmt.Errorf("no text content extracted from epub: %w", ErrNoText)
	}
	return doc, nil
}

func readSpineItem(item *epub.Item) (string, error) {
	r, err := item.Open()
	if err != nil {
		return "", err
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return "", err
	}
	return extractTextFromHTML(string(data)), nil
}

func extractTextFromHTML(s string) string {
	doc, err := html.Parse(strings.NewReader(s))
	if err != nil {
		return ""
	}

	var out strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && (n.DataAtom == atom.Script || n.DataAtom == atom.Style) {
			return
		}
		if n.Type == html.TextNode {
			if t := strings.TrimSpace(n.Data); t != "" {
				out.WriteString(t)
				out.WriteString(" ")
			}
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(doc)
	return out.String()
}
