package cli

import (
	"fmt"
	"text/tabwriter"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/metcalfc/rsvp/internal/library"
	"github.com/metcalfc/rsvp/internal/reader"
)

// Stats summarises the whole library.
type Stats struct {
	Books      int    `json:"books" yaml:"books"`
	Started    int    `json:"started" yaml:"started"`
	Finished   int    `json:"finished" yaml:"finished"`
	Words      int    `json:"words" yaml:"words"`
	WordsRead  int    `json:"words_read" yaml:"words_read"`
	Bookmarks  int    `json:"bookmarks" yaml:"bookmarks"`
	WPM        int    `json:"wpm" yaml:"wpm"`
	TimeToRead string `json:"time_to_read" yaml:"time_to_read"`
}

// computeStats totals sums. TimeToRead is the unread words at wpm with no
// punctuation pauses, so it is a lower bound.
func computeStats(sums []library.Summary, wpm int) Stats {
	st := Stats{Books: len(sums), WPM: wpm}
	for _, s := range sums {
		st.Words += s.Book.TotalWords
		st.Bookmarks += s.Bookmarks
		if s.LastRead == nil {
			continue
		}
		st.Started++
		read := min(s.Position+1, s.Book.TotalWords)
		st.WordsRead += read
		if read == s.Book.TotalWords {
			st.Finished++
		}
	}
	st.TimeToRead = reader.FormatDuration(int64(st.Words-st.WordsRead) * 60000 / int64(wpm))
	return st
}

func newStatsCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "stats",
		Short: "Show reading statistics",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return a.withLibrary(func(lib *library.Store) error {
				sums, err := lib.Summaries(contextOf(cmd))
				if err != nil {
					return err
				}
				wpm := a.cfg.WPM
				if cmd.Flags().Changed("wpm") {
					wpm = reader.ClampRate(a.wpm)
				}
				st := computeStats(sums, wpm)
				return writeOutput(cmd.OutOrStdout(), format, st, func(tw *tabwriter.Writer) {
					fmt.Fprintf(tw, "Books:\t%d (%d started, %d finished)\n", st.Books, st.Started, st.Finished)
					fmt.Fprintf(tw, "Words:\t%s\n", humanize.Comma(int64(st.Words)))
					fmt.Fprintf(tw, "Words read:\t%s\n", humanize.Comma(int64(st.WordsRead)))
					fmt.Fprintf(tw, "Bookmarks:\t%d\n", st.Bookmarks)
					fmt.Fprintf(tw, "Left to read:\t%s at %d WPM\n", st.TimeToRead, st.WPM)
				})
			})
		},
	}
	addOutputFlag(cmd, &format)
	return cmd
}
