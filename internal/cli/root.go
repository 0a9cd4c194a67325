// Package cli is the rsvp command line: reading, importing and managing the
// library.
package cli

import (
	"context"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/metcalfc/rsvp/internal/config"
	"github.com/metcalfc/rsvp/internal/library"
	"github.com/metcalfc/rsvp/internal/logger"
	"github.com/metcalfc/rsvp/internal/reader"
	"github.com/metcalfc/rsvp/internal/session"
	"github.com/metcalfc/rsvp/internal/state"
)

// VersionInfo contains build information
type VersionInfo struct {
	Version string
	Commit  string
	Date    string
}

// Runner presents an opened session. The terminal build passes tui.Run;
// the desktop build passes its window loop.
type Runner func(sess *session.Session, l *log.Logger) error

// app is the state shared by every command of one invocation.
type app struct {
	info VersionInfo
	run  Runner

	cfgPath string
	verbose bool
	wpm     int
	fresh   bool

	cfg *config.Config
	log *log.Logger

	stdin      io.Reader
	stdinIsTTY func() bool
}

// NewRootCmd builds the command tree. run presents books opened by the
// read command.
func NewRootCmd(info VersionInfo, run Runner) *cobra.Command {
	return newRootCmd(&app{
		info:  info,
		run:   run,
		stdin: os.Stdin,
		stdinIsTTY: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd()))
		},
	})
}

func newRootCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "rsvp [file|title]",
		Short: "Speed read documents one word at a time",
		Long: `rsvp shows text one word at a time at a fixed point, with the
optimal recognition letter highlighted, so your eyes never move.

Supported formats: ` + strings.Join(reader.SupportedFormats(), ", ") + ` and plain text.

Examples:
  rsvp book.epub
  rsvp "pride and prejudice"
  cat notes.txt | rsvp
  rsvp import --watch ~/Books`,
		Args:              cobra.MaximumNArgs(1),
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
		RunE:              a.runRead,
	}

	flags := cmd.PersistentFlags()
	flags.StringVar(&a.cfgPath, "config", "", "config file (default "+config.DefaultPath()+")")
	flags.BoolVarP(&a.verbose, "verbose", "v", false, "debug logging")
	flags.IntVarP(&a.wpm, "wpm", "w", 0, "reading rate in words per minute")
	flags.BoolVar(&a.fresh, "fresh", false, "start from the beginning instead of the saved position")

	cmd.AddCommand(
		newReadCmd(a),
		newImportCmd(a),
		newLibraryCmd(a),
		newBookmarkCmd(a),
		newStatsCmd(a),
		newChaptersCmd(a),
		newConfigCmd(a),
		newVersionCmd(a),
	)
	return cmd
}

// Execute runs the command line and returns the first error.
func Execute(info VersionInfo, run Runner) error {
	return NewRootCmd(info, run).Execute()
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.verbose {
		cfg.LogLevel = "debug"
	}
	a.cfg = cfg
	a.log = logger.New(cmd.ErrOrStderr(), cfg.LogLevel)
	return nil
}

func (a *app) openLibrary() (*library.Store, error) {
	return library.Open(a.cfg.DatabasePath(), library.WithLogger(a.log))
}

func (a *app) openSettings() (*state.SettingsStore, error) {
	return state.NewSettingsStore(a.cfg.StateDir)
}

// withLibrary opens the library for the duration of fn.
func (a *app) withLibrary(fn func(lib *library.Store) error) error {
	lib, err := a.openLibrary()
	if err != nil {
		return err
	}
	defer lib.Close()
	return fn(lib)
}

func contextOf(cmd *cobra.Command) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
