package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/metcalfc/rsvp/internal/library"
	"github.com/metcalfc/rsvp/internal/logger"
	"github.com/metcalfc/rsvp/internal/reader"
	"github.com/metcalfc/rsvp/internal/session"
)

// ErrNoInput is returned when read has no file, title, piped text or
// previously read book to open.
var ErrNoInput = errors.New("no input provided. Provide a file, a library title, or pipe text to stdin")

func newReadCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "read [file|title]",
		Short: "Read a file, a library book or piped text",
		Long: `Open a document in the reader.

The argument is a file to import (skipped when its content is already in
the library) or the title or id of a library book. Titles are matched
fuzzily. With no argument, piped text is read from stdin; otherwise the
most recently read book is resumed.

Examples:
  rsvp read book.epub
  rsvp read sherlock
  curl -s https://example.com/essay.txt | rsvp read`,
		Args: cobra.MaximumNArgs(1),
		RunE: a.runRead,
	}
}

func (a *app) runRead(cmd *cobra.Command, args []string) error {
	ctx := contextOf(cmd)

	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()

	book, err := a.pickBook(ctx, cmd, lib, args)
	if err != nil {
		return err
	}

	settings, err := a.openSettings()
	if err != nil {
		return err
	}

	// The reader owns the terminal; log to a file instead.
	l, closer, err := logger.OpenFile(a.cfg.StateDir, a.cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("opening log: %w", err)
	}
	defer closer.Close()

	sess, err := session.Open(ctx, session.Config{
		Book:        book,
		Library:     lib,
		Settings:    settings,
		Defaults:    a.cfg.Settings(),
		JumpMs:      a.cfg.JumpMs,
		ArrowJumpMs: a.cfg.ArrowJumpMs,
		Autosave:    a.cfg.Autosave(),
		Fresh:       a.fresh,
		Logger:      l,
	})
	if err != nil {
		return err
	}
	if cmd.Flags().Changed("wpm") {
		if err := sess.SetRate(a.wpm); err != nil {
			return err
		}
	}

	l.Info("reading", "book", book.ID, "title", book.Title, "position", sess.Reader.Position)
	return a.run(sess, l)
}

// pickBook turns the read arguments into a library book, importing files
// and piped text on the way.
func (a *app) pickBook(ctx context.Context, cmd *cobra.Command, lib *library.Store, args []string) (*library.Book, error) {
	if len(args) == 1 {
		if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
			return a.importFile(ctx, cmd, lib, args[0])
		}
		return lib.Resolve(ctx, args[0])
	}

	if !a.stdinIsTTY() {
		data, err := io.ReadAll(a.stdin)
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		if strings.TrimSpace(string(data)) == "" {
			return nil, reader.ErrNoText
		}
		title := "Piped text " + time.Now().Format("2006-01-02 15:04")
		b, err := lib.ImportText(ctx, title, string(data))
		if errors.Is(err, library.ErrDuplicate) {
			err = nil
		}
		return b, err
	}

	b, err := lastRead(ctx, lib)
	if errors.Is(err, library.ErrNotFound) {
		return nil, ErrNoInput
	}
	return b, err
}

// lastRead returns the book with the most recently saved position.
func lastRead(ctx context.Context, lib *library.Store) (*library.Book, error) {
	sums, err := lib.Summaries(ctx)
	if err != nil {
		return nil, err
	}
	var best *library.Summary
	for i := range sums {
		s := &sums[i]
		if s.LastRead == nil {
			continue
		}
		if best == nil || s.LastRead.After(*best.LastRead) {
			best = s
		}
	}
	if best == nil {
		return nil, library.ErrNotFound
	}
	return &best.Book, nil
}
