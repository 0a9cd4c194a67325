package reader

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/ast"
	"github.com/yuin/goldmark/text"
)

// MarkdownFormat implements Format for Markdown files.
type MarkdownFormat struct{}

func init() {
	Register(&MarkdownFormat{})
}

func (f *MarkdownFormat) Name() string         { return "Markdown" }
func (f *MarkdownFormat) Extensions() []string { return []string{".md", ".markdown"} }

// Extract renders the document to plain words, dropping markup and code
// blocks. Every heading opens a new section; words before the first heading
// are in section 0. The first top-level heading becomes the title.
func (f *MarkdownFormat) Extract(ctx context.Context, filename string, progress ProgressFunc) (*Document, error) {
	src, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	if err := canceled(ctx); err != nil {
		return nil, err
	}

	root := goldmark.New().Parser().Parse(text.NewReader(src))
	doc := &Document{Type: "markdown"}

	var (
		section int
		buf     strings.Builder
	)
	flush := func() {
		doc.Tokens = appendWords(doc.Tokens, buf.String(), Locator{Section: section})
		buf.Reset()
	}

	err = ast.Walk(root, func(n ast.Node, entering bool) (ast.WalkStatus, error) {
		switch n := n.(type) {
		case *ast.Heading:
			if entering {
				flush()
				section++
				if doc.Title == "" && n.Level == 1 {
					doc.Title = string(n.Text(src))
				}
			}
		case *ast.FencedCodeBlock, *ast.CodeBlock, *ast.HTMLBlock:
			return ast.WalkSkipChildren, nil
		case *ast.Text:
			if entering {
				buf.Write(n.Segment.Value(src))
				if n.SoftLineBreak() || n.HardLineBreak() {
					buf.WriteByte(' ')
				}
			}
		case *ast.String:
			if entering {
				buf.Write(n.Value)
			}
		}
		if !entering && n.Type() == ast.TypeBlock {
			buf.WriteByte(' ')
		}
		return ast.WalkContinue, nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to walk markdown: %w", err)
	}
	flush()
	progress(1, 1)

	if doc.Title == "" {
		doc.Title = titleFromFilename(filename)
	}
	doc.TotalPages = max(section, 1)
	if len(doc.Tokens) == 0 {
		return nil, fmt.Errorf("no text content extracted from markdown: %w", ErrNoText)
	}
	return doc, nil
}
