package reader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func TestExtractDocument(t *testing.T) {
	tmpDir := t.TempDir()

	t.Run("plain text", func(t *testing.T) {
		content := "Hello world this is a test."
		path := filepath.Join(tmpDir, "notes.txt")
		os.WriteFile(path, []byte(content), 0644)

		var calls int
		doc, err := ExtractDocument(context.Background(), path, func(done, total int) { calls++ })
		if err != nil {
			t.Fatalf("ExtractDocument: %v", err)
		}
		if got := Words(doc.Tokens); len(got) != 6 || got[5] != "test." {
			t.Errorf("got words %v", got)
		}
		if doc.Title != "notes" || doc.Type != "text" {
			t.Errorf("got title %q type %q", doc.Title, doc.Type)
		}
		if calls != 1 {
			t.Errorf("progress called %d times, want 1", calls)
		}
	})

	t.Run("markdown by extension", func(t *testing.T) {
		path := filepath.Join(tmpDir, "test.md")
		os.WriteFile(path, []byte("Some *markdown* content"), 0644)

		doc, err := ExtractDocument(context.Background(), path, nil)
		if err != nil {
			t.Fatalf("ExtractDocument: %v", err)
		}
		if doc.Type != "markdown" {
			t.Errorf("Type = %q, want markdown", doc.Type)
		}
		if got := Words(doc.Tokens); len(got) != 3 || got[1] != "markdown" {
			t.Errorf("got words %v", got)
		}
	})

	t.Run("nonexistent file", func(t *testing.T) {
		_, err := ExtractDocument(context.Background(), filepath.Join(tmpDir, "nonexistent.txt"), nil)
		if err == nil {
			t.Error("expected error")
		}
	})

	t.Run("broken epub", func(t *testing.T) {
		path := filepath.Join(tmpDir, "broken.epub")
		os.WriteFile(path, []byte("not a zip"), 0644)

		if _, err := ExtractDocument(context.Background(), path, nil); err == nil {
			t.Error("expected error")
		}
	})

	t.Run("canceled", func(t *testing.T) {
		path := filepath.Join(tmpDir, "cancel.md")
		os.WriteFile(path, []byte("# Title\n\nbody"), 0644)

		ctx, cancel := context.WithCancel(context.Background())
		cancel()
		if _, err := ExtractDocument(ctx, path, nil); !errors.Is(err, context.Canceled) {
			t.Errorf("got %v, want context.Canceled", err)
		}
	})
}

func TestFormatFor(t *testing.T) {
	tests := []struct {
		filename string
		want     string
	}{
		{"book.epub", "EPUB"},
		{"BOOK.EPUB", "EPUB"},
		{"paper.pdf", "PDF"},
		{"notes.md", "Markdown"},
		{"notes.markdown", "Markdown"},
		{"notes.txt", ""},
	}
	for _, tt := range tests {
		f, ok := FormatFor(tt.filename)
		if tt.want == "" {
			if ok {
				t.Errorf("FormatFor(%q) = %s, want none", tt.filename, f.Name())
			}
			continue
		}
		if !ok || f.Name() != tt.want {
			t.Errorf("FormatFor(%q) = %v, want %s", tt.filename, f, tt.want)
		}
	}
}

func TestEPUBFormat(t *testing.T) {
	f := &EPUBFormat{}
	if f.Name() != "EPUB" {
		t.Errorf("Name() = %q, want EPUB", f.Name())
	}
	if exts := f.Extensions(); len(exts) != 1 || exts[0] != ".epub" {
		t.Errorf("Extensions() = %v, want [.epub]", exts)
	}
}

func TestSupportedFormats(t *testing.T) {
	formats := SupportedFormats()
	if len(formats) < 3 {
		t.Errorf("expected EPUB, PDF and Markdown, got %v", formats)
	}
	want := map[string]bool{"EPUB (.epub)": false, "PDF (.pdf)": false, "Markdown (.md, .markdown)": false}
	for _, f := range formats {
		if _, ok := want[f]; ok {
			want[f] = true
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("%s not registered: %v", name, formats)
		}
	}
}
