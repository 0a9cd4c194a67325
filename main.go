package main

import (
	"fmt"
	"os"

	"github.com/metcalfc/rsvp/internal/cli"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	info := cli.VersionInfo{Version: version, Commit: commit, Date: date}
	if err := cli.Execute(info, runner); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
