package library

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/metcalfc/rsvp/internal/reader"
)

// settleDelay is how long a dropped file must stay quiet before it is
// imported, so a file still being copied is not read half-written.
const settleDelay = 500 * time.Millisecond

// Importable reports whether path has an extension the reader can extract.
func Importable(path string) bool {
	if strings.HasPrefix(filepath.Base(path), ".") {
		return false
	}
	if _, ok := reader.FormatFor(path); ok {
		return true
	}
	return strings.EqualFold(filepath.Ext(path), ".txt")
}

// Watch imports every importable file created in or written to dir until
// ctx is canceled. onImport is called with each result, including
// ErrDuplicate for content already in the library.
func (s *Store) Watch(ctx context.Context, dir string, onImport func(path string, b *Book, err error)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}
	defer w.Close()

	if err := w.Add(dir); err != nil {
		return fmt.Errorf("watching %s: %w", dir, err)
	}
	s.log.Info("watching for new documents", "dir", dir)

	// Each write pushes a file's deadline back; the ticker imports files
	// whose deadline has passed.
	due := make(map[string]time.Time)
	ticker := time.NewTicker(settleDelay / 2)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) {
				continue
			}
			if info, err := os.Stat(ev.Name); err != nil || info.IsDir() || !Importable(ev.Name) {
				continue
			}
			due[ev.Name] = time.Now().Add(settleDelay)

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.Warn("watcher error", "err", err)

		case now := <-ticker.C:
			for path, at := range due {
				if now.Before(at) {
					continue
				}
				delete(due, path)
				b, err := s.Import(ctx, path, nil)
				onImport(path, b, err)
			}
		}
	}
}
