package library

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/metcalfc/rsvp/internal/reader"
)

// ChunkSize is how many tokens are written per transaction.
const ChunkSize = 1000

// PutTokens stores a book's token stream in ChunkSize transactions.
// Re-putting an index overwrites it.
func (s *Store) PutTokens(ctx context.Context, bookID string, tokens []reader.Token) error {
	for start := 0; start < len(tokens); start += ChunkSize {
		end := min(start+ChunkSize, len(tokens))
		if err := s.putChunk(ctx, bookID, tokens[start:end]); err != nil {
			return fmt.Errorf("storing tokens %d-%d: %w", start, end, err)
		}
		s.log.Debug("stored token chunk", "book", bookID, "start", start, "end", end)
	}
	return nil
}

func (s *Store) putChunk(ctx context.Context, bookID string, chunk []reader.Token) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT OR REPLACE INTO tokens (book_id, token_idx, word, page, section, bbox)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, tok := range chunk {
		var bbox sql.NullString
		if tok.Locator.BBox != nil {
			data, err := json.Marshal(tok.Locator.BBox)
			if err != nil {
				return err
			}
			bbox = sql.NullString{String: string(data), Valid: true}
		}
		if _, err := stmt.ExecContext(ctx, bookID, tok.Index, tok.Text,
			tok.Locator.Page, tok.Locator.Section, bbox); err != nil {
			return err
		}
	}
	return tx.Commit()
}

// Tokens returns a book's whole stream ordered by index.
func (s *Store) Tokens(ctx context.Context, bookID string) ([]reader.Token, error) {
	return s.queryTokens(ctx, `
		SELECT token_idx, word, page, section, bbox FROM tokens
		WHERE book_id = ? ORDER BY token_idx
	`, bookID)
}

// TokenRange returns the tokens with start <= index < end, in order.
func (s *Store) TokenRange(ctx context.Context, bookID string, start, end int) ([]reader.Token, error) {
	return s.queryTokens(ctx, `
		SELECT token_idx, word, page, section, bbox FROM tokens
		WHERE book_id = ? AND token_idx >= ? AND token_idx < ?
		ORDER BY token_idx
	`, bookID, start, end)
}

// TokenCount is the number of stored tokens for a book.
func (s *Store) TokenCount(ctx context.Context, bookID string) (int, error) {
	var n int
	err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM tokens WHERE book_id = ?`, bookID).Scan(&n)
	if err != nil {
		return 0, fmt.Errorf("counting tokens: %w", err)
	}
	return n, nil
}

func (s *Store) queryTokens(ctx context.Context, query string, args ...any) ([]reader.Token, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying tokens: %w", err)
	}
	defer rows.Close()

	var tokens []reader.Token
	for rows.Next() {
		var tok reader.Token
		var bbox sql.NullString
		if err := rows.Scan(&tok.Index, &tok.Text, &tok.Locator.Page, &tok.Locator.Section, &bbox); err != nil {
			return nil, fmt.Errorf("scanning token: %w", err)
		}
		if bbox.Valid {
			tok.Locator.BBox = &reader.BBox{}
			if err := json.Unmarshal([]byte(bbox.String), tok.Locator.BBox); err != nil {
				return nil, fmt.Errorf("unmarshaling bbox: %w", err)
			}
		}
		tokens = append(tokens, tok)
	}
	return tokens, rows.Err()
}
