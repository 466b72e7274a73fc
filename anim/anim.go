// SPDX-License-Identifier: Unlicense OR MIT

// Package anim implements fixed duration tweens and one-shot timers
// driven by a host frame clock.
package anim

import (
	"time"

	"golang.org/x/exp/constraints"
)

// Ease maps the linear progress t in [0, 1] of an animation to the
// interpolation fraction.
type Ease func(t float32) float32

// Linear is the identity Ease.
func Linear(t float32) float32 { return t }

// Decelerate starts fast and slows down towards the end.
func Decelerate(t float32) float32 {
	u := 1 - t
	return 1 - u*u
}

// Lerp interpolates between a and b.
func Lerp[T constraints.Float](a, b, t T) T {
	return a + (b-a)*t
}

// ID identifies a scheduled tween or timer.
type ID uint64

type entry struct {
	id       ID
	timer    bool
	start    time.Time
	duration time.Duration
	ease     Ease
	update   func(t float32)
	done     func()
}

// Timeline runs tweens and timers. The zero value is ready to use.
// A Timeline is not safe for concurrent use.
type Timeline struct {
	now      time.Time
	stepping bool
	last     ID
	entries  []*entry
}

// Tween schedules an animation of duration d. Update is called with
// the eased progress on every Step until the tween completes, after
// which done is called. Both functions may be nil.
func (tl *Timeline) Tween(d time.Duration, ease Ease, update func(t float32), done func()) ID {
	if ease == nil {
		ease = Linear
	}
	return tl.add(&entry{duration: d, ease: ease, update: update, done: done})
}

// After schedules fn to be called once d has elapsed.
func (tl *Timeline) After(d time.Duration, fn func()) ID {
	return tl.add(&entry{timer: true, duration: d, done: fn})
}

func (tl *Timeline) add(e *entry) ID {
	tl.last++
	e.id = tl.last
	if tl.stepping {
		e.start = tl.now
	}
	tl.entries = append(tl.entries, e)
	return e.id
}

// Cancel removes a tween or timer without calling its done function.
func (tl *Timeline) Cancel(id ID) {
	for i, e := range tl.entries {
		if e.id == id {
			tl.entries = append(tl.entries[:i], tl.entries[i+1:]...)
			return
		}
	}
}

// Clear cancels everything.
func (tl *Timeline) Clear() {
	tl.entries = tl.entries[:0]
}

// Pending reports whether id is still scheduled.
func (tl *Timeline) Pending(id ID) bool {
	for _, e := range tl.entries {
		if e.id == id {
			return true
		}
	}
	return false
}

// Active reports whether a tween is running. Waiting timers don't
// count; use Next for their deadline.
func (tl *Timeline) Active() bool {
	for _, e := range tl.entries {
		if !e.timer {
			return true
		}
	}
	return false
}

// Next returns the earliest timer deadline.
func (tl *Timeline) Next() (time.Time, bool) {
	var (
		next time.Time
		ok   bool
	)
	for _, e := range tl.entries {
		if !e.timer {
			continue
		}
		if e.start.IsZero() {
			return tl.now, true
		}
		at := e.start.Add(e.duration)
		if !ok || at.Before(next) {
			next, ok = at, true
		}
	}
	return next, ok
}

// Step advances the timeline to now. Entries scheduled during a Step
// start at the time of that Step and are first advanced by the next
// one; entries scheduled between Steps start at the next Step. Done
// functions run after every update of the Step, in scheduling order.
func (tl *Timeline) Step(now time.Time) {
	tl.now = now
	tl.stepping = true
	defer func() { tl.stepping = false }()
	var finished []*entry
	entries := append([]*entry(nil), tl.entries...)
	for _, e := range entries {
		if e.start.IsZero() {
			e.start = now
		}
		elapsed := now.Sub(e.start)
		complete := elapsed >= e.duration
		if !e.timer && e.update != nil {
			t := float32(1)
			if !complete {
				t = float32(elapsed) / float32(e.duration)
			}
			e.update(e.ease(t))
		}
		if complete {
			finished = append(finished, e)
		}
	}
	for _, e := range finished {
		if !tl.Pending(e.id) {
			// Cancelled by an earlier done function.
			continue
		}
		tl.Cancel(e.id)
		if e.done != nil {
			e.done()
		}
	}
}
