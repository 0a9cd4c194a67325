package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/sahilm/fuzzy"
)

// Book is an imported document's metadata.
type Book struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Author      string    `json:"author,omitempty" yaml:"author,omitempty"`
	FileName    string    `json:"file_name" yaml:"file_name"`
	FileType    string    `json:"file_type" yaml:"file_type"`
	ContentHash string    `json:"content_hash" yaml:"content_hash"`
	TotalPages  int       `json:"total_pages" yaml:"total_pages"`
	TotalWords  int       `json:"total_words" yaml:"total_words"`
	UploadedAt  time.Time `json:"uploaded_at" yaml:"uploaded_at"`
}

const bookColumns = `id, title, author, file_name, file_type, content_hash, total_pages, total_words, uploaded_at`

// PutBook inserts or updates a book. A missing ID or upload time is filled
// in and written back to b.
func (s *Store) PutBook(ctx context.Context, b *Book) error {
	if b.ID == "" {
		b.ID = uuid.NewString()
	}
	if b.UploadedAt.IsZero() {
		b.UploadedAt = s.now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO books (`+bookColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			title = excluded.title,
			author = excluded.author,
			file_name = excluded.file_name,
			file_type = excluded.file_type,
			content_hash = excluded.content_hash,
			total_pages = excluded.total_pages,
			total_words = excluded.total_words
	`, b.ID, b.Title, b.Author, b.FileName, b.FileType, b.ContentHash,
		b.TotalPages, b.TotalWords, millis(b.UploadedAt))
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed: books.content_hash") {
			return fmt.Errorf("saving book %q: %w", b.Title, ErrDuplicate)
		}
		return fmt.Errorf("saving book: %w", err)
	}
	return nil
}

// GetBook retrieves a book by ID.
func (s *Store) GetBook(ctx context.Context, id string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE id = ?`, id)
	return scanBook(row)
}

// FindBookByHash retrieves the book imported from content with hash.
func (s *Store) FindBookByHash(ctx context.Context, hash string) (*Book, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+bookColumns+` FROM books WHERE content_hash = ?`, hash)
	return scanBook(row)
}

// ListBooks returns every book, most recently imported first.
func (s *Store) ListBooks(ctx context.Context) ([]Book, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+bookColumns+` FROM books ORDER BY uploaded_at DESC, title`)
	if err != nil {
		return nil, fmt.Errorf("listing books: %w", err)
	}
	defer rows.Close()

	var books []Book
	for rows.Next() {
		b, err := scanBook(rows)
		if err != nil {
			return nil, err
		}
		books = append(books, *b)
	}
	return books, rows.Err()
}

// DeleteBook removes a book with its tokens, progress and bookmarks.
func (s *Store) DeleteBook(ctx context.Context, id string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("beginning transaction: %w", err)
	}
	defer tx.Rollback()

	for _, table := range []string{"tokens", "progress", "bookmarks"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table+` WHERE book_id = ?`, id); err != nil {
			return fmt.Errorf("deleting %s: %w", table, err)
		}
	}
	res, err := tx.ExecContext(ctx, `DELETE FROM books WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting book: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing delete: %w", err)
	}
	s.log.Info("deleted book", "book", id)
	return nil
}

// Resolve finds a book by ID, unique ID prefix, or title. Titles are
// matched fuzzily and the best match wins.
func (s *Store) Resolve(ctx context.Context, ref string) (*Book, error) {
	ref = strings.TrimSpace(ref)
	if ref == "" {
		return nil, ErrNotFound
	}
	if b, err := s.GetBook(ctx, ref); err == nil {
		return b, nil
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	var prefixed []Book
	for _, b := range books {
		if strings.HasPrefix(b.ID, ref) {
			prefixed = append(prefixed, b)
		}
	}
	if len(prefixed) == 1 {
		return &prefixed[0], nil
	}

	matches := SearchBooks(books, ref)
	if len(matches) == 0 {
		return nil, fmt.Errorf("no book matches %q: %w", ref, ErrNotFound)
	}
	return &matches[0], nil
}

type bookTitles []Book

func (b bookTitles) String(i int) string { return b[i].Title }
func (b bookTitles) Len() int            { return len(b) }

// SearchBooks returns the books whose titles fuzzily match query, best
// match first.
func SearchBooks(books []Book, query string) []Book {
	matches := fuzzy.FindFrom(query, bookTitles(books))
	out := make([]Book, 0, len(matches))
	for _, m := range matches {
		out = append(out, books[m.Index])
	}
	return out
}

type scanner interface {
	Scan(dest ...any) error
}

func scanBook(row scanner) (*Book, error) {
	var b Book
	var uploaded int64
	if err := row.Scan(&b.ID, &b.Title, &b.Author, &b.FileName, &b.FileType,
		&b.ContentHash, &b.TotalPages, &b.TotalWords, &uploaded); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("scanning book: %w", err)
	}
	b.UploadedAt = fromMillis(uploaded)
	return &b, nil
}
