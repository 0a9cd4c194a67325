package library

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/metcalfc/rsvp/internal/reader"
	"github.com/metcalfc/rsvp/internal/state"
)

// Import extracts path on a background worker and stores the result. The
// optional onEvent sees every ingestion event as it arrives. Content that
// is already in the library is not extracted again; the existing book is
// returned with ErrDuplicate.
func (s *Store) Import(ctx context.Context, path string, onEvent func(reader.Event)) (*Book, error) {
	hash, err := state.ComputeHash(path)
	if err != nil {
		return nil, fmt.Errorf("hashing %s: %w", path, err)
	}
	if existing, err := s.FindBookByHash(ctx, hash); err == nil {
		return existing, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	s.log.Info("importing", "file", path)

	var doc *reader.Document
	for ev := range reader.Ingest(ctx, path) {
		if onEvent != nil {
			onEvent(ev)
		}
		switch ev.Kind {
		case reader.EventProgress:
			s.log.Debug("extracted", "page", ev.Page, "total", ev.Total)
		case reader.EventComplete:
			doc = ev.Document
		case reader.EventError:
			err = ev.Err
		}
	}
	if err != nil {
		return nil, fmt.Errorf("importing %s: %w", filepath.Base(path), err)
	}

	return s.store(ctx, doc, filepath.Base(path), hash)
}

// ImportText stores already-extracted plain text, such as piped input,
// under title.
func (s *Store) ImportText(ctx context.Context, title, text string) (*Book, error) {
	hash, err := state.HashReader(strings.NewReader(text))
	if err != nil {
		return nil, err
	}
	if existing, err := s.FindBookByHash(ctx, hash); err == nil {
		return existing, ErrDuplicate
	} else if !errors.Is(err, ErrNotFound) {
		return nil, err
	}

	tokens := reader.Tokenize(text, reader.Locator{})
	if len(tokens) == 0 {
		return nil, reader.ErrNoText
	}
	doc := &reader.Document{Title: title, Type: "text", Tokens: tokens, TotalPages: 1}
	return s.store(ctx, doc, title, hash)
}

func (s *Store) store(ctx context.Context, doc *reader.Document, fileName, hash string) (*Book, error) {
	book := &Book{
		Title:       doc.Title,
		Author:      doc.Author,
		FileName:    fileName,
		FileType:    doc.Type,
		ContentHash: hash,
		TotalPages:  doc.TotalPages,
		TotalWords:  len(doc.Tokens),
	}
	if err := s.PutBook(ctx, book); err != nil {
		return nil, err
	}
	if err := s.PutTokens(ctx, book.ID, doc.Tokens); err != nil {
		// Don't leave a book without its text behind.
		if delErr := s.DeleteBook(context.WithoutCancel(ctx), book.ID); delErr != nil {
			s.log.Error("cleanup after failed import", "book", book.ID, "err", delErr)
		}
		return nil, err
	}

	s.log.Info("imported", "book", book.ID, "title", book.Title, "tokens", book.TotalWords)
	return book, nil
}
