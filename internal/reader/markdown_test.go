package reader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeMarkdown(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "test.md")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("Failed to write test file: %v", err)
	}
	return path
}

func TestMarkdownExtract(t *testing.T) {
	path := writeMarkdown(t, `# Chapter 1
Opening words with **some** emphasis.

# Chapter 2
Middle text has [more](http://example.com) links here.

`+"```go\nfunc skipped() {}\n```"+`

# Chapter 3
Closing words end here.
`)

	f := &MarkdownFormat{}
	doc, err := f.Extract(context.Background(), path, func(int, int) {})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if doc.Title != "Chapter 1" {
		t.Errorf("Title = %q, want %q", doc.Title, "Chapter 1")
	}
	if doc.TotalPages != 3 {
		t.Errorf("TotalPages = %d, want 3", doc.TotalPages)
	}

	for _, tok := range doc.Tokens {
		if tok.Text == "func" || tok.Text == "**some**" || tok.Text == "#" {
			t.Errorf("markup leaked into tokens: %q", tok.Text)
		}
	}

	// Headings become chapter markers for the detector.
	chapters := DetectChapters(doc.Tokens)
	if len(chapters) != 3 {
		t.Fatalf("Expected 3 chapters, got %d", len(chapters))
	}
	expectedSections := []int{1, 2, 3}
	expectedStarts := []int{0, 7, 15}
	for i, ch := range chapters {
		if ch.Locator.Section != expectedSections[i] {
			t.Errorf("Chapter %d: section %d, want %d", i, ch.Locator.Section, expectedSections[i])
		}
		if ch.Start != expectedStarts[i] {
			t.Errorf("Chapter %d: start %d, want %d", i, ch.Start, expectedStarts[i])
		}
	}

	// Indices stay dense across sections.
	for i, tok := range doc.Tokens {
		if tok.Index != i {
			t.Fatalf("token %d has index %d", i, tok.Index)
		}
	}
}

func TestMarkdownNoHeaders(t *testing.T) {
	path := writeMarkdown(t, `This is just plain text.
No headers at all.
Just paragraphs.
`)

	f := &MarkdownFormat{}
	doc, err := f.Extract(context.Background(), path, func(int, int) {})
	if err != nil {
		t.Fatalf("Extract failed: %v", err)
	}

	if doc.Title != "test" {
		t.Errorf("Expected title from filename, got %q", doc.Title)
	}
	if len(doc.Tokens) != 11 {
		t.Errorf("Expected 11 words, got %d: %v", len(doc.Tokens), Words(doc.Tokens))
	}
	for _, tok := range doc.Tokens {
		if tok.Locator.Section != 0 {
			t.Errorf("token %q in section %d, want 0", tok.Text, tok.Locator.Section)
		}
	}
}

func TestMarkdownEmpty(t *testing.T) {
	path := writeMarkdown(t, "```\nonly code\n```\n")

	f := &MarkdownFormat{}
	if _, err := f.Extract(context.Background(), path, func(int, int) {}); !errors.Is(err, ErrNoText) {
		t.Errorf("Extract() = %v, want ErrNoText", err)
	}
}
