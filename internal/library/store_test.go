package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/metcalfc/rsvp/internal/reader"
)

var testNow = time.Date(2025, 3, 14, 15, 9, 26, 0, time.UTC)

// setupTestStore creates a temporary SQLite library for testing.
func setupTestStore(t *testing.T) *Store {
	t.Helper()

	clock := testNow
	store, err := Open(filepath.Join(t.TempDir(), "library.db"), WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}))
	require.NoError(t, err)
	t.Cleanup(func() { assert.NoError(t, store.Close()) })
	return store
}

func createTestBook(t *testing.T, store *Store, title string) *Book {
	t.Helper()
	b := &Book{
		Title:       title,
		FileName:    title + ".txt",
		FileType:    "text",
		ContentHash: "hash-" + title,
		TotalWords:  100,
	}
	require.NoError(t, store.PutBook(context.Background(), b))
	return b
}

func numberedTokens(n int) []reader.Token {
	words := make([]string, n)
	for i := range words {
		words[i] = fmt.Sprintf("w%d", i)
	}
	return reader.Tokenize(strings.Join(words, " "), reader.Locator{Page: 1})
}

func TestOpenMigrates(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "library.db")

	store, err := Open(path)
	require.NoError(t, err)
	v, err := store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
	assert.Equal(t, path, store.Path())
	require.NoError(t, store.Close())

	// Reopening does not reapply migrations.
	store, err = Open(path)
	require.NoError(t, err)
	defer store.Close()
	v, err = store.SchemaVersion(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, v)
}

func TestBooks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	first := createTestBook(t, store, "Dracula")
	second := createTestBook(t, store, "Frankenstein")

	assert.NotEmpty(t, first.ID)
	assert.Equal(t, testNow.Add(time.Second), first.UploadedAt)

	got, err := store.GetBook(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, *first, *got)

	books, err := store.ListBooks(ctx)
	require.NoError(t, err)
	require.Len(t, books, 2)
	assert.Equal(t, second.ID, books[0].ID, "newest first")

	byHash, err := store.FindBookByHash(ctx, "hash-Dracula")
	require.NoError(t, err)
	assert.Equal(t, first.ID, byHash.ID)

	_, err = store.GetBook(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPutBookUpdates(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()

	b := createTestBook(t, store, "Draft")
	b.Title = "Final"
	require.NoError(t, store.PutBook(ctx, b))

	got, err := store.GetBook(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, "Final", got.Title)
}

func TestPutBookDuplicateHash(t *testing.T) {
	store := setupTestStore(t)
	createTestBook(t, store, "Once")

	dup := &Book{Title: "Twice", FileName: "x", FileType: "text", ContentHash: "hash-Once"}
	err := store.PutBook(context.Background(), dup)
	assert.ErrorIs(t, err, ErrDuplicate)
}

func TestTokens(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	b := createTestBook(t, store, "Long")

	tokens := numberedTokens(2*ChunkSize + 500)
	tokens[7].Locator.BBox = &reader.BBox{X: 1, Y: 2, Width: 3, Height: 4}
	require.NoError(t, store.PutTokens(ctx, b.ID, tokens))

	n, err := store.TokenCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, len(tokens), n)

	all, err := store.Tokens(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, all, len(tokens))
	for i, tok := range all {
		require.Equal(t, i, tok.Index)
	}
	assert.Equal(t, tokens[7], all[7], "locator with bbox survives")
	assert.Nil(t, all[8].Locator.BBox)
	assert.Equal(t, 1, all[8].Locator.Page)

	t.Run("range is half open", func(t *testing.T) {
		window, err := store.TokenRange(ctx, b.ID, 995, 1005)
		require.NoError(t, err)
		require.Len(t, window, 10)
		assert.Equal(t, 995, window[0].Index)
		assert.Equal(t, 1004, window[9].Index)
	})

	t.Run("range past end", func(t *testing.T) {
		window, err := store.TokenRange(ctx, b.ID, len(tokens)-2, len(tokens)+50)
		require.NoError(t, err)
		assert.Len(t, window, 2)
	})

	t.Run("empty range", func(t *testing.T) {
		window, err := store.TokenRange(ctx, b.ID, 10, 10)
		require.NoError(t, err)
		assert.Empty(t, window)
	})
}

func TestProgress(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	b := createTestBook(t, store, "Book")

	_, err := store.GetProgress(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, store.SaveProgress(ctx, b.ID, 12))
	require.NoError(t, store.SaveProgress(ctx, b.ID, 42))

	p, err := store.GetProgress(ctx, b.ID)
	require.NoError(t, err)
	assert.Equal(t, 42, p.Index)
	assert.Equal(t, testNow.Add(3*time.Second), p.UpdatedAt)
}

func TestBookmarks(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	b := createTestBook(t, store, "Marked")

	late, err := store.AddBookmark(ctx, b.ID, 90, "the twist")
	require.NoError(t, err)
	early, err := store.AddBookmark(ctx, b.ID, 10, "")
	require.NoError(t, err)

	marks, err := store.ListBookmarks(ctx, b.ID)
	require.NoError(t, err)
	require.Len(t, marks, 2)
	assert.Equal(t, early.ID, marks[0].ID, "reading order")
	assert.Equal(t, "the twist", marks[1].Note)

	require.NoError(t, store.DeleteBookmark(ctx, late.ID))
	assert.ErrorIs(t, store.DeleteBookmark(ctx, late.ID), ErrNotFound)

	marks, err = store.ListBookmarks(ctx, b.ID)
	require.NoError(t, err)
	assert.Len(t, marks, 1)
}

func TestDeleteBookCascades(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	b := createTestBook(t, store, "Doomed")
	keep := createTestBook(t, store, "Kept")

	require.NoError(t, store.PutTokens(ctx, b.ID, numberedTokens(20)))
	require.NoError(t, store.PutTokens(ctx, keep.ID, numberedTokens(5)))
	require.NoError(t, store.SaveProgress(ctx, b.ID, 3))
	_, err := store.AddBookmark(ctx, b.ID, 4, "")
	require.NoError(t, err)

	require.NoError(t, store.DeleteBook(ctx, b.ID))

	_, err = store.GetBook(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	n, err := store.TokenCount(ctx, b.ID)
	require.NoError(t, err)
	assert.Zero(t, n)
	_, err = store.GetProgress(ctx, b.ID)
	assert.ErrorIs(t, err, ErrNotFound)
	marks, err := store.ListBookmarks(ctx, b.ID)
	require.NoError(t, err)
	assert.Empty(t, marks)

	n, err = store.TokenCount(ctx, keep.ID)
	require.NoError(t, err)
	assert.Equal(t, 5, n, "other books untouched")

	assert.ErrorIs(t, store.DeleteBook(ctx, b.ID), ErrNotFound)
}

func TestResolve(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	moby := createTestBook(t, store, "Moby Dick")
	createTestBook(t, store, "Middlemarch")

	tests := []struct {
		name string
		ref  string
		want string
	}{
		{"full id", moby.ID, moby.ID},
		{"id prefix", moby.ID[:8], moby.ID},
		{"fuzzy title", "mobydk", moby.ID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, err := store.Resolve(ctx, tt.ref)
			require.NoError(t, err)
			assert.Equal(t, tt.want, b.ID)
		})
	}

	_, err := store.Resolve(ctx, "zzzz")
	assert.ErrorIs(t, err, ErrNotFound)
	_, err = store.Resolve(ctx, "  ")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSummaries(t *testing.T) {
	store := setupTestStore(t)
	ctx := context.Background()
	b := createTestBook(t, store, "Halfway")
	createTestBook(t, store, "Unread")

	require.NoError(t, store.SaveProgress(ctx, b.ID, 49))
	_, err := store.AddBookmark(ctx, b.ID, 10, "")
	require.NoError(t, err)

	sums, err := store.Summaries(ctx)
	require.NoError(t, err)
	require.Len(t, sums, 2)

	byTitle := map[string]Summary{}
	for _, s := range sums {
		byTitle[s.Book.Title] = s
	}
	assert.Equal(t, 50, byTitle["Halfway"].Percent())
	assert.Equal(t, 1, byTitle["Halfway"].Bookmarks)
	assert.NotNil(t, byTitle["Halfway"].LastRead)
	assert.Nil(t, byTitle["Unread"].LastRead)
	assert.Zero(t, byTitle["Unread"].Percent())
}

func TestSearchBooks(t *testing.T) {
	books := []Book{{Title: "War and Peace"}, {Title: "Peace Talks"}, {Title: "Dune"}}

	matches := SearchBooks(books, "peace")
	require.Len(t, matches, 2)
	assert.Empty(t, SearchBooks(books, "xyz"))
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}
