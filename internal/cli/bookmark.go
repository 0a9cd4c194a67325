package cli

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/metcalfc/rsvp/internal/library"
	"github.com/metcalfc/rsvp/internal/reader"
)

const bookmarkPreviewWords = 8

// bookmarkView is a bookmark with the words it points at, for listings.
type bookmarkView struct {
	library.Bookmark `yaml:",inline"`
	Preview          string `json:"preview" yaml:"preview"`
}

func newBookmarkCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "bookmark",
		Aliases: []string{"bm"},
		Short:   "Manage bookmarks",
		Long:    `Add, list and remove bookmarks. Bookmarks are also added with "b" while reading.`,
	}
	cmd.AddCommand(newBookmarkAddCmd(a), newBookmarkListCmd(a), newBookmarkRmCmd(a))
	return cmd
}

func newBookmarkAddCmd(a *app) *cobra.Command {
	var word int
	cmd := &cobra.Command{
		Use:   "add <title|id> [note]",
		Short: "Bookmark a word, by default the saved position",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(func(lib *library.Store) error {
				ctx := contextOf(cmd)
				b, err := lib.Resolve(ctx, args[0])
				if err != nil {
					return err
				}

				index := word - 1
				if !cmd.Flags().Changed("word") {
					index = 0
					if p, err := lib.GetProgress(ctx, b.ID); err == nil {
						index = p.Index
					} else if !errors.Is(err, library.ErrNotFound) {
						return err
					}
				}
				if index < 0 || index >= b.TotalWords {
					return fmt.Errorf("word %d is outside %q (1-%d)", index+1, b.Title, b.TotalWords)
				}

				var note string
				if len(args) == 2 {
					note = args[1]
				}
				mark, err := lib.AddBookmark(ctx, b.ID, index, note)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Bookmarked word %s of %s [%s]\n",
					humanize.Comma(int64(mark.Index+1)), b.Title, shortID(mark.ID))
				return nil
			})
		},
	}
	cmd.Flags().IntVar(&word, "word", 0, "1-based word number to bookmark")
	return cmd
}

func newBookmarkListCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "list <title|id>",
		Short: "List a book's bookmarks in reading order",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(func(lib *library.Store) error {
				ctx := contextOf(cmd)
				b, err := lib.Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				views, err := bookmarkViews(ctx, lib, b.ID)
				if err != nil {
					return err
				}
				if len(views) == 0 && format == formatTable {
					fmt.Fprintf(cmd.OutOrStdout(), "No bookmarks in %s\n", b.Title)
					return nil
				}
				return writeOutput(cmd.OutOrStdout(), format, views, func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "ID\tWORD\tTEXT\tNOTE\tCREATED\n")
					for _, v := range views {
						fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n",
							shortID(v.ID),
							humanize.Comma(int64(v.Index+1)),
							truncate(v.Preview, 40),
							truncate(v.Note, 30),
							formatTime(&v.CreatedAt))
					}
				})
			})
		},
	}
	addOutputFlag(cmd, &format)
	return cmd
}

func bookmarkViews(ctx context.Context, lib *library.Store, bookID string) ([]bookmarkView, error) {
	marks, err := lib.ListBookmarks(ctx, bookID)
	if err != nil {
		return nil, err
	}
	views := make([]bookmarkView, 0, len(marks))
	for _, m := range marks {
		tokens, err := lib.TokenRange(ctx, bookID, m.Index, m.Index+bookmarkPreviewWords)
		if err != nil {
			return nil, err
		}
		views = append(views, bookmarkView{Bookmark: m, Preview: strings.Join(reader.Words(tokens), " ")})
	}
	return views, nil
}

func newBookmarkRmCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <title|id> <bookmark-id>",
		Aliases: []string{"remove", "delete"},
		Short:   "Remove a bookmark by id or id prefix",
		Args:    cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(func(lib *library.Store) error {
				ctx := contextOf(cmd)
				b, err := lib.Resolve(ctx, args[0])
				if err != nil {
					return err
				}
				marks, err := lib.ListBookmarks(ctx, b.ID)
				if err != nil {
					return err
				}

				var match []library.Bookmark
				for _, m := range marks {
					if strings.HasPrefix(m.ID, args[1]) {
						match = append(match, m)
					}
				}
				switch len(match) {
				case 0:
					return fmt.Errorf("bookmark %q in %s: %w", args[1], b.Title, library.ErrNotFound)
				case 1:
				default:
					return fmt.Errorf("bookmark %q is ambiguous in %s", args[1], b.Title)
				}

				if err := lib.DeleteBookmark(ctx, match[0].ID); err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "Removed bookmark at word %s\n", humanize.Comma(int64(match[0].Index+1)))
				return nil
			})
		},
	}
}
