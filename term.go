//go:build !gui

package main

import "github.com/metcalfc/rsvp/internal/tui"

// runner reads in the terminal. Build with -tags gui for the desktop
// window instead.
var runner = tui.Run
