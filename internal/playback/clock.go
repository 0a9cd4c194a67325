// Package playback drives a reader.Reader forward in time. A Clock is a
// two-state machine (Paused, Playing) that keeps at most one advance armed
// on an injected Scheduler.
package playback

import (
	"github.com/metcalfc/rsvp/internal/reader"
)

// State is the clock's play state.
type State int

const (
	Paused State = iota
	Playing
)

func (s State) String() string {
	if s == Playing {
		return "playing"
	}
	return "paused"
}

// Clock advances a Reader one token at a time, waiting each token's display
// duration. All methods must be called from the goroutine (or event loop)
// the Scheduler delivers callbacks on.
type Clock struct {
	r     *reader.Reader
	sched Scheduler
	state State

	pending Timer
	// gen identifies the armed advance. A callback from an older
	// generation was canceled after its timer had already fired and is
	// dropped.
	gen uint64

	onAdvance func(index int)
}

// Option configures a Clock.
type Option func(*Clock)

// WithObserver registers fn to be called with the new position after every
// timed advance. Explicit navigation does not notify.
func WithObserver(fn func(index int)) Option {
	return func(c *Clock) { c.onAdvance = fn }
}

// New returns a paused clock over r.
func New(r *reader.Reader, s Scheduler, opts ...Option) *Clock {
	c := &Clock{r: r, sched: s}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Reader returns the session the clock drives.
func (c *Clock) Reader() *reader.Reader { return c.r }

func (c *Clock) State() State { return c.state }

func (c *Clock) Playing() bool { return c.state == Playing }

// Pending reports whether an advance is armed.
func (c *Clock) Pending() bool { return c.pending != nil }

// Play starts playback. At the last token the clock is Playing but idle.
func (c *Clock) Play() {
	if c.state == Playing {
		return
	}
	c.state = Playing
	c.arm()
}

// Pause stops playback and cancels the pending advance.
func (c *Clock) Pause() {
	c.state = Paused
	c.cancel()
}

// Toggle switches between Playing and Paused.
func (c *Clock) Toggle() {
	if c.state == Playing {
		c.Pause()
	} else {
		c.Play()
	}
}

// SetRate changes the reading rate. The pending advance is rearmed with the
// current token's duration at the new rate.
func (c *Clock) SetRate(wpm int) error {
	if err := c.r.SetRate(wpm); err != nil {
		return err
	}
	c.rearm()
	return nil
}

// SetTokens replaces the stream, for example as ingestion delivers it.
func (c *Clock) SetTokens(tokens []reader.Token) {
	c.navigate(func() { c.r.SetTokens(tokens) })
}

func (c *Clock) Seek(index int) {
	c.navigate(func() { c.r.Seek(index) })
}

func (c *Clock) Restart() { c.Seek(0) }

func (c *Clock) JumpForward(ms int64) {
	c.navigate(func() { c.r.JumpForward(ms) })
}

func (c *Clock) JumpBackward(ms int64) {
	c.navigate(func() { c.r.JumpBackward(ms) })
}

func (c *Clock) NextSentence() {
	c.navigate(c.r.JumpToNextSentence)
}

func (c *Clock) PrevSentence() {
	c.navigate(c.r.JumpToPrevSentence)
}

// NextChapter and PrevChapter report whether a chapter boundary existed.
func (c *Clock) NextChapter() (moved bool) {
	c.navigate(func() { moved = c.r.NextChapter() })
	return moved
}

func (c *Clock) PrevChapter() (moved bool) {
	c.navigate(func() { moved = c.r.PrevChapter() })
	return moved
}

func (c *Clock) JumpToChapter(n int) (moved bool) {
	c.navigate(func() { moved = c.r.JumpToChapter(n) })
	return moved
}

// navigate cancels the pending advance, applies move and rearms so the new
// token gets its full duration.
func (c *Clock) navigate(move func()) {
	c.cancel()
	move()
	c.arm()
}

func (c *Clock) rearm() {
	c.cancel()
	c.arm()
}

func (c *Clock) arm() {
	if c.state != Playing || c.r.AtEnd() {
		return
	}
	c.gen++
	gen := c.gen
	c.pending = c.sched.AfterFunc(c.r.CurrentDuration(), func() { c.fire(gen) })
}

func (c *Clock) cancel() {
	c.gen++
	if c.pending != nil {
		c.pending.Stop()
		c.pending = nil
	}
}

func (c *Clock) fire(gen uint64) {
	if gen != c.gen || c.state != Playing {
		return
	}
	c.pending = nil
	if c.r.Advance() && c.onAdvance != nil {
		c.onAdvance(c.r.Position)
	}
	c.arm()
}
