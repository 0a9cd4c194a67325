package playback

import (
	"sort"
	"time"
)

// Virtual is a deterministic Scheduler driven by Advance. Nothing fires on
// its own, which makes clock behaviour reproducible in tests and dry runs.
type Virtual struct {
	now    time.Duration
	seq    int
	timers []*virtualTimer
}

type virtualTimer struct {
	v   *Virtual
	at  time.Duration
	seq int
	f   func()
}

// NewVirtual returns a virtual scheduler at time zero.
func NewVirtual() *Virtual {
	return &Virtual{}
}

func (v *Virtual) AfterFunc(d time.Duration, f func()) Timer {
	v.seq++
	t := &virtualTimer{v: v, at: v.now + max(d, 0), seq: v.seq, f: f}
	v.timers = append(v.timers, t)
	return t
}

// Now is the virtual time elapsed since creation.
func (v *Virtual) Now() time.Duration {
	return v.now
}

// Pending is the number of armed timers.
func (v *Virtual) Pending() int {
	return len(v.timers)
}

// Advance moves virtual time forward by d, firing due timers in deadline
// order. Timers armed by a callback fire too if they fall within d.
func (v *Virtual) Advance(d time.Duration) {
	target := v.now + d
	for {
		t := v.next()
		if t == nil || t.at > target {
			break
		}
		v.remove(t)
		v.now = t.at
		t.f()
	}
	v.now = target
}

func (v *Virtual) next() *virtualTimer {
	if len(v.timers) == 0 {
		return nil
	}
	sort.SliceStable(v.timers, func(i, j int) bool {
		if v.timers[i].at == v.timers[j].at {
			return v.timers[i].seq < v.timers[j].seq
		}
		return v.timers[i].at < v.timers[j].at
	})
	return v.timers[0]
}

func (v *Virtual) remove(t *virtualTimer) bool {
	for i, x := range v.timers {
		if x == t {
			v.timers = append(v.timers[:i], v.timers[i+1:]...)
			return true
		}
	}
	return false
}

func (t *virtualTimer) Stop() bool {
	return t.v.remove(t)
}
