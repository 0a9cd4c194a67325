// Package logger builds the charmbracelet/log loggers used across the
// reader. Commands log to stderr; the full-screen reader logs to a file so
// output never lands on the alternate screen.
package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
)

// FileName is the log file created inside the state directory.
const FileName = "rsvp.log"

// New returns a logger writing to w at level. Unknown levels mean info.
func New(w io.Writer, level string) *log.Logger {
	lvl, err := log.ParseLevel(level)
	if err != nil {
		lvl = log.InfoLevel
	}
	return log.NewWithOptions(w, log.Options{
		Level:           lvl,
		Prefix:          "rsvp",
		ReportTimestamp: lvl == log.DebugLevel,
		TimeFormat:      time.Kitchen,
	})
}

// OpenFile returns a logger appending to dir/rsvp.log in logfmt, plus the
// file to close when done.
func OpenFile(dir, level string) (*log.Logger, io.Closer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, nil, err
	}
	f, err := os.OpenFile(filepath.Join(dir, FileName), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return nil, nil, err
	}
	l := New(f, level)
	l.SetReportTimestamp(true)
	l.SetTimeFormat(time.RFC3339)
	l.SetFormatter(log.LogfmtFormatter)
	return l, f, nil
}

// Discard is a logger that drops everything, for tests and library code
// constructed without one.
func Discard() *log.Logger {
	return log.New(io.Discard)
}
