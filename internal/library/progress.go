package library

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// Progress is the last saved reading position of a book.
type Progress struct {
	BookID    string    `json:"book_id" yaml:"book_id"`
	Index     int       `json:"index" yaml:"index"`
	UpdatedAt time.Time `json:"updated_at" yaml:"updated_at"`
}

// SaveProgress records index as the book's position.
func (s *Store) SaveProgress(ctx context.Context, bookID string, index int) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO progress (book_id, token_idx, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(book_id) DO UPDATE SET
			token_idx = excluded.token_idx,
			updated_at = excluded.updated_at
	`, bookID, index, millis(s.now()))
	if err != nil {
		return fmt.Errorf("saving progress: %w", err)
	}
	return nil
}

// GetProgress returns the saved position, or ErrNotFound.
func (s *Store) GetProgress(ctx context.Context, bookID string) (*Progress, error) {
	p := Progress{BookID: bookID}
	var updated int64
	err := s.db.QueryRowContext(ctx, `SELECT token_idx, updated_at FROM progress WHERE book_id = ?`, bookID).
		Scan(&p.Index, &updated)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("getting progress: %w", err)
	}
	p.UpdatedAt = fromMillis(updated)
	return &p, nil
}

// Bookmark marks a token in a book, with an optional note.
type Bookmark struct {
	ID        string    `json:"id" yaml:"id"`
	BookID    string    `json:"book_id" yaml:"book_id"`
	Index     int       `json:"index" yaml:"index"`
	Note      string    `json:"note,omitempty" yaml:"note,omitempty"`
	CreatedAt time.Time `json:"created_at" yaml:"created_at"`
}

// AddBookmark bookmarks index in a book.
func (s *Store) AddBookmark(ctx context.Context, bookID string, index int, note string) (*Bookmark, error) {
	b := &Bookmark{
		ID:        uuid.NewString(),
		BookID:    bookID,
		Index:     index,
		Note:      note,
		CreatedAt: s.now().UTC(),
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO bookmarks (id, book_id, token_idx, note, created_at) VALUES (?, ?, ?, ?, ?)
	`, b.ID, b.BookID, b.Index, b.Note, millis(b.CreatedAt))
	if err != nil {
		return nil, fmt.Errorf("adding bookmark: %w", err)
	}
	return b, nil
}

// ListBookmarks returns a book's bookmarks in reading order.
func (s *Store) ListBookmarks(ctx context.Context, bookID string) ([]Bookmark, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, book_id, token_idx, note, created_at FROM bookmarks
		WHERE book_id = ? ORDER BY token_idx, created_at
	`, bookID)
	if err != nil {
		return nil, fmt.Errorf("listing bookmarks: %w", err)
	}
	defer rows.Close()

	var marks []Bookmark
	for rows.Next() {
		var b Bookmark
		var created int64
		if err := rows.Scan(&b.ID, &b.BookID, &b.Index, &b.Note, &created); err != nil {
			return nil, fmt.Errorf("scanning bookmark: %w", err)
		}
		b.CreatedAt = fromMillis(created)
		marks = append(marks, b)
	}
	return marks, rows.Err()
}

// DeleteBookmark removes a bookmark by ID.
func (s *Store) DeleteBookmark(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM bookmarks WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("deleting bookmark: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// Summary is a book with its reading state, for listings.
type Summary struct {
	Book      Book       `json:"book" yaml:"book"`
	Position  int        `json:"position" yaml:"position"`
	LastRead  *time.Time `json:"last_read,omitempty" yaml:"last_read,omitempty"`
	Bookmarks int        `json:"bookmarks" yaml:"bookmarks"`
}

// Percent is how far into the book the saved position is.
func (s Summary) Percent() int {
	if s.LastRead == nil || s.Book.TotalWords == 0 {
		return 0
	}
	return (s.Position + 1) * 100 / s.Book.TotalWords
}

// Summaries lists every book with its progress and bookmark count.
func (s *Store) Summaries(ctx context.Context) ([]Summary, error) {
	books, err := s.ListBooks(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]Summary, 0, len(books))
	for _, b := range books {
		sum := Summary{Book: b}
		if p, err := s.GetProgress(ctx, b.ID); err == nil {
			sum.Position = p.Index
			sum.LastRead = &p.UpdatedAt
		} else if !errors.Is(err, ErrNotFound) {
			return nil, err
		}
		if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM bookmarks WHERE book_id = ?`, b.ID).
			Scan(&sum.Bookmarks); err != nil {
			return nil, fmt.Errorf("counting bookmarks: %w", err)
		}
		out = append(out, sum)
	}
	return out, nil
}
