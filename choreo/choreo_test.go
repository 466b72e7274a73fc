// SPDX-License-Identifier: Unlicense OR MIT

package choreo

import (
	"testing"
	"time"

	"gioui.org/f32"
)

type testArena struct {
	center Props
	radial []Props
	home   []f32.Point
	gone   map[Handle]bool
}

func newArena(n int) *testArena {
	a := &testArena{radial: make([]Props, n), gone: make(map[Handle]bool)}
	for i := 0; i < n; i++ {
		a.home = append(a.home, f32.Pt(float32(10*i+5), float32(-7*i-3)))
	}
	return a
}

func (a *testArena) Radial() int { return len(a.radial) }

func (a *testArena) Props(h Handle) (*Props, bool) {
	if a.gone[h] {
		return nil, false
	}
	if h == Center {
		return &a.center, true
	}
	if int(h) < 0 || int(h) >= len(a.radial) {
		return nil, false
	}
	return &a.radial[h], true
}

func (a *testArena) ToCenter(h Handle) f32.Point {
	return a.home[h]
}

type recorder struct {
	traces []Trace
}

func (r *recorder) observe(t Trace) { r.traces = append(r.traces, t) }

func (r *recorder) count(k TraceKind) int {
	n := 0
	for _, t := range r.traces {
		if t.Kind == k {
			n++
		}
	}
	return n
}

func (r *recorder) index(k TraceKind, h Handle) int {
	for i, t := range r.traces {
		if t.Kind == k && t.Item == h {
			return i
		}
	}
	return -1
}

const frame = 16 * time.Millisecond

// run steps c until done reports true, for at most 30 seconds of frames.
func run(t *testing.T, c *Choreographer, now *time.Time, done func() bool) {
	t.Helper()
	for i := 0; i < 30*60; i++ {
		if done() {
			return
		}
		*now = now.Add(frame)
		c.Step(*now)
	}
	t.Fatalf("sequence did not finish, state %v", c.State())
}

func newTest(n int) (*Choreographer, *testArena, *recorder, time.Time) {
	a := newArena(n)
	c := New(Config{}, a)
	r := new(recorder)
	c.Observe(r.observe)
	return c, a, r, time.Unix(1000, 0)
}

func TestOpenSequence(t *testing.T) {
	c, a, r, now := newTest(5)
	c.Open()
	if c.State() != Pending {
		t.Fatalf("state = %v, want Pending", c.State())
	}
	for i, p := range a.radial {
		if p.Scale != 0 || p.Alpha != 0 || p.Offset != a.home[i] {
			t.Fatalf("item %d not collapsed: %+v", i, p)
		}
	}
	start := now
	c.Step(now)
	run(t, c, &now, func() bool { return c.State() == Settled && !c.Animating() })

	if at := r.traces[r.index(Entering, Center)].At; at.Sub(start) < time.Second {
		t.Errorf("center entered after %v, want >= 1s", at.Sub(start))
	}
	// Releases are strictly serialized in index order.
	last := r.index(Entering, Center)
	for k := 0; k < 5; k++ {
		s, d := r.index(ReleaseStarted, Handle(k)), r.index(Released, Handle(k))
		if s < last || d < s {
			t.Fatalf("item %d: started at %d, released at %d, previous release at %d", k, s, d, last)
		}
		if dt := r.traces[d].At.Sub(r.traces[s].At); dt < 350*time.Millisecond {
			t.Errorf("item %d released after %v", k, dt)
		}
		last = d
	}
	if r.count(Opened) != 1 || r.index(Opened, Center) < last {
		t.Errorf("Opened traced %d times", r.count(Opened))
	}
	for i, p := range a.radial {
		if p.Scale != 1 || p.Alpha != 1 || p.Offset != (f32.Point{}) {
			t.Errorf("item %d not open: %+v", i, p)
		}
	}
	if a.center.Scale != 1 {
		t.Errorf("center scale = %v, want 1", a.center.Scale)
	}
	if len(c.Queued()) != 0 {
		t.Errorf("queue = %v", c.Queued())
	}
}

func TestOpenDelay(t *testing.T) {
	c, _, _, now := newTest(3)
	c.Open()
	c.Step(now)
	if at, ok := c.Next(); !ok || !at.Equal(now.Add(time.Second)) {
		t.Errorf("Next = %v, %v", at, ok)
	}
	c.Step(now.Add(999 * time.Millisecond))
	if c.State() != Pending {
		t.Fatalf("state = %v before the delay", c.State())
	}
	c.Step(now.Add(time.Second))
	if c.State() != CenterEntering {
		t.Fatalf("state = %v after the delay", c.State())
	}
	if !c.Animating() {
		t.Error("center spring not running")
	}
}

func TestCenterScaleRange(t *testing.T) {
	c, a, _, now := newTest(2)
	c.cfg.OpenDelay = -1
	c.Open()
	if c.State() != CenterEntering {
		t.Fatalf("state = %v, want CenterEntering without a delay", c.State())
	}
	min := float32(10)
	for c.State() == CenterEntering {
		now = now.Add(frame)
		c.Step(now)
		if a.center.Scale < min {
			min = a.center.Scale
		}
	}
	if min < 0.8-1e-6 {
		t.Errorf("center scale dropped to %v, want >= 0.8", min)
	}
}

func TestCloseBarrier(t *testing.T) {
	c, a, r, now := newTest(6)
	c.Open()
	run(t, c, &now, func() bool { return c.State() == Settled })
	r.traces = nil
	c.Close()
	if c.State() != Collapsing {
		t.Fatalf("state = %v, want Collapsing", c.State())
	}
	run(t, c, &now, func() bool { return c.State() == Idle })

	if got := r.count(Collapsed); got != 6 {
		t.Fatalf("%d collapse completions, want 6", got)
	}
	pulse := r.index(CenterPulsed, Center)
	for k := 0; k < 6; k++ {
		if i := r.index(Collapsed, Handle(k)); i < 0 || i > pulse {
			t.Errorf("item %d collapsed at %d, center pulsed at %d", k, i, pulse)
		}
	}
	// All radial items collapse in parallel.
	first := r.traces[r.index(Collapsed, 0)].At
	for k := 1; k < 6; k++ {
		if at := r.traces[r.index(Collapsed, Handle(k))].At; !at.Equal(first) {
			t.Errorf("item %d collapsed at %v, item 0 at %v", k, at, first)
		}
	}
	if r.index(Closed, Center) < pulse {
		t.Error("closed before the center pulse")
	}
	if a.center.Scale != 0 {
		t.Errorf("center scale = %v, want 0", a.center.Scale)
	}
	for i, p := range a.radial {
		if p.Scale != 0 || p.Alpha != 0 || p.Offset != a.home[i] {
			t.Errorf("item %d not collapsed: %+v", i, p)
		}
	}
	c.Close()
	if c.State() != Idle {
		t.Errorf("closing an idle menu changed state to %v", c.State())
	}
}

func TestCloseDuringOpen(t *testing.T) {
	c, _, r, now := newTest(6)
	c.Open()
	run(t, c, &now, func() bool { return r.count(Released) == 2 })
	if len(c.Queued()) == 0 {
		t.Fatal("queue drained too early")
	}
	c.Close()
	if len(c.Queued()) != 0 {
		t.Errorf("queue = %v after close", c.Queued())
	}
	collapse := len(r.traces) - 1
	run(t, c, &now, func() bool { return c.State() == Idle })
	for _, tr := range r.traces[collapse:] {
		if tr.Kind == ReleaseStarted || tr.Kind == Released {
			t.Errorf("release %v of item %d after close", tr.Kind, tr.Item)
		}
	}
	if r.count(Collapsed) != 6 {
		t.Errorf("%d collapse completions, want 6", r.count(Collapsed))
	}
}

func TestReopen(t *testing.T) {
	c, _, r, now := newTest(4)
	c.Open()
	run(t, c, &now, func() bool { return r.count(Released) == 1 })
	r.traces = nil
	c.Open()
	if c.State() != Pending || len(c.Queued()) != 0 {
		t.Fatalf("reopen: state %v queue %v", c.State(), c.Queued())
	}
	run(t, c, &now, func() bool { return c.State() == Settled })
	for k := 0; k < 4; k++ {
		h := Handle(k)
		n := 0
		for _, tr := range r.traces {
			if tr.Kind == Released && tr.Item == h {
				n++
			}
		}
		if n != 1 {
			t.Errorf("item %d released %d times", k, n)
		}
	}
}

func TestVanishedItem(t *testing.T) {
	c, a, r, now := newTest(4)
	c.Open()
	run(t, c, &now, func() bool { return r.count(ReleaseStarted) == 1 })
	a.gone[2] = true
	run(t, c, &now, func() bool { return c.State() == Settled })
	if r.index(ReleaseStarted, 2) >= 0 {
		t.Error("vanished item was released")
	}
	if r.index(Released, 3) < 0 {
		t.Error("item after the vanished one was not released")
	}
}

func TestReset(t *testing.T) {
	c, _, r, now := newTest(3)
	c.Open()
	run(t, c, &now, func() bool { return c.State() == Releasing })
	c.Reset()
	if c.State() != Idle || c.Animating() {
		t.Fatalf("reset: state %v animating %v", c.State(), c.Animating())
	}
	n := len(r.traces)
	for i := 0; i < 120; i++ {
		now = now.Add(frame)
		c.Step(now)
	}
	if len(r.traces) != n {
		t.Errorf("abandoned sequence traced %v", r.traces[n:])
	}
}

func TestNoRadial(t *testing.T) {
	c, a, r, now := newTest(0)
	c.Open()
	run(t, c, &now, func() bool { return c.State() == Settled })
	c.Close()
	run(t, c, &now, func() bool { return c.State() == Idle })
	if r.count(CenterPulsed) != 1 || a.center.Scale != 0 {
		t.Errorf("pulses %d, center scale %v", r.count(CenterPulsed), a.center.Scale)
	}
}

func TestItemBounce(t *testing.T) {
	c, a, r, now := newTest(3)
	c.Open()
	run(t, c, &now, func() bool { return r.count(Released) == 1 })
	lo, hi := float32(10), float32(0)
	for c.State() != Settled || c.Animating() {
		now = now.Add(frame)
		c.Step(now)
		s := a.radial[0].Scale
		lo, hi = min(lo, s), max(hi, s)
	}
	if lo >= 1 || lo < 0.8-1e-6 {
		t.Errorf("item 0 scale dipped to %v, want in [0.8, 1)", lo)
	}
	if hi <= 1 {
		t.Errorf("item 0 scale peaked at %v, want an overshoot", hi)
	}
	for i, p := range a.radial {
		if p.Scale != 1 {
			t.Errorf("item %d rests at scale %v, want 1", i, p.Scale)
		}
	}
}

func TestCenterShrink(t *testing.T) {
	c, a, r, now := newTest(2)
	c.Open()
	run(t, c, &now, func() bool { return c.State() == Settled && !c.Animating() })
	c.Close()
	run(t, c, &now, func() bool { return r.count(CenterPulsed) == 1 && !c.springs.Active() })
	if c.State() != Collapsing {
		t.Fatalf("state = %v after the center pulse, want Collapsing", c.State())
	}
	var shrink []float32
	for c.State() == Collapsing {
		now = now.Add(frame)
		c.Step(now)
		shrink = append(shrink, a.center.Scale)
	}
	// The shrink starts at the frame after the pulse rests and ends
	// with the close.
	if len(shrink) < 4 {
		t.Fatalf("center hidden after %d frames", len(shrink))
	}
	for i := 1; i < len(shrink)-1; i++ {
		if s := shrink[i]; s <= 0 || s >= 1 {
			t.Errorf("frame %d: center scale %v, want in (0, 1)", i, s)
		}
		if shrink[i] > shrink[i-1] {
			t.Errorf("frame %d: center scale grew from %v to %v", i, shrink[i-1], shrink[i])
		}
	}
	if a.center.Scale != 0 || r.count(Closed) != 1 {
		t.Errorf("center scale %v, %d closes", a.center.Scale, r.count(Closed))
	}
}
