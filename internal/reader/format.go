package reader

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Document is the token stream extracted from a file plus whatever metadata
// the format carries.
type Document struct {
	Title      string
	Author     string
	Type       string
	Tokens     []Token
	TotalPages int
}

// ProgressFunc is told how many pages (or sections) of a document have been
// extracted so far.
type ProgressFunc func(done, total int)

// Format defines a file format reader for extracting tokens.
type Format interface {
	Name() string
	Extensions() []string
	Extract(ctx context.Context, filename string, progress ProgressFunc) (*Document, error)
}

var registry []Format

// Register adds a format reader to the registry.
func Register(f Format) {
	registry = append(registry, f)
}

// FormatFor returns the registered format handling filename's extension.
func FormatFor(filename string) (Format, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	for _, f := range registry {
		for _, e := range f.Extensions() {
			if ext == e {
				return f, true
			}
		}
	}
	return nil, false
}

// ExtractDocument extracts tokens from a file, using a registered format or
// plain text fallback.
func ExtractDocument(ctx context.Context, filename string, progress ProgressFunc) (*Document, error) {
	if progress == nil {
		progress = func(int, int) {}
	}
	if f, ok := FormatFor(filename); ok {
		return f.Extract(ctx, filename, progress)
	}
	return extractPlainText(filename, progress)
}

func extractPlainText(filename string, progress ProgressFunc) (*Document, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	progress(1, 1)
	return &Document{
		Title:      titleFromFilename(filename),
		Type:       "text",
		Tokens:     Tokenize(string(data), Locator{}),
		TotalPages: 1,
	}, nil
}

// SupportedFormats returns registered format names with their extensions.
func SupportedFormats() []string {
	var out []string
	for _, f := range registry {
		out = append(out, f.Name()+" ("+strings.Join(f.Extensions(), ", ")+")")
	}
	return out
}

func titleFromFilename(filename string) string {
	base := filepath.Base(filename)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("extraction canceled: %w", err)
	}
	return nil
}
