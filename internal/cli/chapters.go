package cli

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/metcalfc/rsvp/internal/library"
	"github.com/metcalfc/rsvp/internal/reader"
)

// chapterRow is one line of the chapters listing, from either a document's
// own table of contents or detected chapter markers.
type chapterRow struct {
	Title   string `json:"title" yaml:"title"`
	Word    int    `json:"word" yaml:"word"`
	Level   int    `json:"level" yaml:"level"`
	Words   int    `json:"words,omitempty" yaml:"words,omitempty"`
	Preview string `json:"preview,omitempty" yaml:"preview,omitempty"`
}

func newChaptersCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:     "chapters <file|title>",
		Aliases: []string{"toc"},
		Short:   "List a document's chapters",
		Long: `List chapters with the word they start at.

For a file with an embedded table of contents (EPUB), that table is used.
Otherwise chapters are detected from "Chapter 3", "Part II" and similar
headings in the text.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := contextOf(cmd)

			var rows []chapterRow
			if info, err := os.Stat(args[0]); err == nil && !info.IsDir() {
				doc, err := reader.ExtractDocument(ctx, args[0], nil)
				if err != nil {
					return err
				}
				outline, err := reader.Outline(args[0], doc.Tokens)
				if err != nil {
					a.log.Warn("reading table of contents", "file", args[0], "err", err)
				}
				if len(outline) > 0 {
					rows = outlineRows(outline)
				} else {
					rows = detectedRows(doc.Tokens)
				}
			} else {
				err := a.withLibrary(func(lib *library.Store) error {
					b, err := lib.Resolve(ctx, args[0])
					if err != nil {
						return err
					}
					tokens, err := lib.Tokens(ctx, b.ID)
					if err != nil {
						return err
					}
					rows = detectedRows(tokens)
					return nil
				})
				if err != nil {
					return err
				}
			}

			if len(rows) == 0 && format == formatTable {
				fmt.Fprintln(cmd.OutOrStdout(), "No chapters found")
				return nil
			}
			return writeOutput(cmd.OutOrStdout(), format, rows, func(tw *tabwriter.Writer) {
				fmt.Fprintf(tw, "#\tCHAPTER\tWORD\tLENGTH\n")
				for i, r := range rows {
					length := "-"
					if r.Words > 0 {
						length = humanize.Comma(int64(r.Words))
					}
					fmt.Fprintf(tw, "%d\t%s%s\t%s\t%s\n",
						i+1,
						strings.Repeat("  ", r.Level),
						truncate(r.Title, 50),
						humanize.Comma(int64(r.Word)),
						length)
				}
			})
		},
	}
	addOutputFlag(cmd, &format)
	return cmd
}

func outlineRows(entries []reader.OutlineEntry) []chapterRow {
	rows := make([]chapterRow, len(entries))
	for i, e := range entries {
		rows[i] = chapterRow{Title: e.Title, Word: e.Index + 1, Level: e.Level, Preview: e.Preview}
	}
	return rows
}

func detectedRows(tokens []reader.Token) []chapterRow {
	chapters := reader.DetectChapters(tokens)
	rows := make([]chapterRow, len(chapters))
	for i, ch := range chapters {
		rows[i] = chapterRow{Title: ch.Title, Word: ch.Start + 1, Words: ch.WordCount}
	}
	return rows
}
