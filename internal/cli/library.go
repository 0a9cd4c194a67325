package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/metcalfc/rsvp/internal/library"
)

func newLibraryCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "library",
		Aliases: []string{"lib", "ls"},
		Short:   "List and remove library books",
		Long:    `Show the imported books with their reading progress, or remove them.`,
	}
	list := newLibraryListCmd(a)
	cmd.AddCommand(list, newLibraryRmCmd(a))
	// "rsvp library" on its own lists.
	cmd.Args = cobra.NoArgs
	cmd.RunE = list.RunE
	return cmd
}

func newLibraryListCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list [query]",
		Short: "List books, most recently imported first",
		Long: `List books with their reading progress.

An optional query filters titles fuzzily.

Examples:
  rsvp library list
  rsvp library list holmes -o json`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(func(lib *library.Store) error {
				sums, err := lib.Summaries(contextOf(cmd))
				if err != nil {
					return err
				}
				if len(args) == 1 {
					sums = filterSummaries(sums, args[0])
				}
				if len(sums) == 0 && format == formatTable {
					fmt.Fprintln(cmd.OutOrStdout(), "No books found")
					return nil
				}
				return writeOutput(cmd.OutOrStdout(), format, sums, func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "ID\tTITLE\tTYPE\tWORDS\tPROGRESS\tLAST READ\n")
					for _, s := range sums {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%d%%\t%s\n",
							shortID(s.Book.ID),
							truncate(s.Book.Title, 40),
							s.Book.FileType,
							humanize.Comma(int64(s.Book.TotalWords)),
							s.Percent(),
							formatTime(s.LastRead))
					}
				})
			})
		},
	}
	addOutputFlag(cmd, &format)
	return cmd
}

// filterSummaries keeps the summaries whose titles fuzzily match query,
// best match first.
func filterSummaries(sums []library.Summary, query string) []library.Summary {
	books := make([]library.Book, len(sums))
	byID := make(map[string]library.Summary, len(sums))
	for i, s := range sums {
		books[i] = s.Book
		byID[s.Book.ID] = s
	}
	var out []library.Summary
	for _, b := range library.SearchBooks(books, query) {
		out = append(out, byID[b.ID])
	}
	return out
}

func newLibraryRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <title|id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a book with its progress and bookmarks",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(func(lib *library.Store) error {
				ctx := contextOf(cmd)
				b, err := lib.Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				if err := lib.DeleteBook(ctx, b.ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed %s\n", b.Title)
				return nil
			})
		},
	}
}
