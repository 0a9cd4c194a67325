package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/metcalfc/rsvp/internal/library"
	"github.com/metcalfc/rsvp/internal/reader"
)

func newImportCmd(a *app) *cobra.Command {
	var watchDir string

	cmd := &cobra.Command{
		Use:   "import [files...]",
		Short: "Add documents to the library",
		Long: `Extract documents into the library so they can be read by title.

Files whose content is already in the library are skipped. With --watch,
keep running and import every document dropped into a directory.

Examples:
  rsvp import book.epub paper.pdf notes.md
  rsvp import --watch ~/Books`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 && watchDir == "" {
				return errors.New("nothing to import: pass files or --watch DIR")
			}
			return a.withLibrary(func(lib *library.Store) error {
				ctx := contextOf(cmd)
				var failed int
				for _, path := range args {
					if _, err := a.importFile(ctx, cmd, lib, path); err != nil {
						fmt.Fprintf(cmd.ErrOrStderr(), "Error: %v\n", err)
						failed++
					}
				}
				if watchDir != "" {
					return a.watch(cmd, lib, watchDir)
				}
				if failed > 0 {
					return fmt.Errorf("%d of %d imports failed", failed, len(args))
				}
				return nil
			})
		},
	}

	cmd.Flags().StringVar(&watchDir, "watch", "", "import documents dropped into this directory until interrupted")
	return cmd
}

// importFile imports path, reporting extraction progress on stderr. A
// duplicate is not an error; the existing book is returned.
func (a *app) importFile(ctx context.Context, cmd *cobra.Command, lib *library.Store, path string) (*library.Book, error) {
	out := cmd.ErrOrStderr()
	name := filepath.Base(path)

	b, err := lib.Import(ctx, path, func(ev reader.Event) {
		if ev.Kind == reader.EventProgress && ev.Total > 1 {
			fmt.Fprintf(out, "\rExtracting %s: %d/%d", name, ev.Page, ev.Total)
			if ev.Page == ev.Total {
				fmt.Fprintln(out)
			}
		}
	})
	switch {
	case errors.Is(err, library.ErrDuplicate):
		fmt.Fprintf(cmd.OutOrStdout(), "Already in library: %s\n", b.Title)
		return b, nil
	case err != nil:
		return nil, err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s words) [%s]\n", b.Title, humanize.Comma(int64(b.TotalWords)), shortID(b.ID))
	return b, nil
}

func (a *app) watch(cmd *cobra.Command, lib *library.Store, dir string) error {
	ctx, stop := signal.NotifyContext(contextOf(cmd), os.Interrupt)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Watching %s (Ctrl+C to stop)\n", dir)
	return lib.Watch(ctx, dir, func(path string, b *library.Book, err error) {
		switch {
		case errors.Is(err, library.ErrDuplicate):
			fmt.Fprintf(cmd.OutOrStdout(), "Already in library: %s\n", filepath.Base(path))
		case err != nil:
			a.log.Error("import failed", "file", path, "err", err)
		default:
			fmt.Fprintf(cmd.OutOrStdout(), "Imported %s (%s words) [%s]\n", b.Title, humanize.Comma(int64(b.TotalWords)), shortID(b.ID))
		}
	})
}

// shortID is the id prefix shown in listings; Resolve accepts it back.
func shortID(id string) string {
	if len(id) > 8 {
		return id[:8]
	}
	return id
}
