// SPDX-License-Identifier: Unlicense OR MIT

/*
Package choreo sequences the open and close animations of a radial menu.

The open sequence bounces the center item into view and then releases
the radial items one at a time, each one sliding out from the center
while it fades in and bouncing when it arrives. The close sequence
collapses every radial item at once, waits for all of them, pulses the
center and shrinks it out of view.

A Choreographer never holds on to items. It addresses them by Handle
through an Arena, and an item the Arena no longer resolves is skipped.
Animation callbacks don't drive the sequence directly; they post Events
that Step dispatches once the clocks have advanced, so the whole
sequence runs on the caller's goroutine and is reproducible with a fake
clock.
*/
package choreo

import (
	"time"

	"gioui.org/f32"

	"github.com/spiderui/spider/anim"
	"github.com/spiderui/spider/spring"
)

// Handle refers to an item of an Arena. Radial items have handles
// 0 through Radial()-1.
type Handle int

// Center is the handle of the center item.
const Center Handle = -1

// Props are the animated properties of an item.
type Props struct {
	// Scale is the scale factor around the item center.
	Scale float32
	// Alpha is the opacity in [0, 1].
	Alpha float32
	// Offset translates the item from its resolved position.
	Offset f32.Point
}

// Arena resolves handles to items.
type Arena interface {
	// Radial returns the number of radial items.
	Radial() int
	// Props returns the animated properties of h, or false if h no longer
	// refers to an item.
	Props(h Handle) (*Props, bool)
	// ToCenter returns the offset that moves h from its resolved
	// position to the center of the canvas.
	ToCenter(h Handle) f32.Point
}

// State is the state of a Choreographer.
type State uint8

const (
	// Idle is the collapsed state, before opening and after closing.
	Idle State = iota
	// Pending is the open delay.
	Pending
	// CenterEntering runs the center spring.
	CenterEntering
	// Releasing releases the queued radial items one by one.
	Releasing
	// Settled is the open state.
	Settled
	// Collapsing runs the close sequence.
	Collapsing
)

// EventKind is the kind of an Event.
type EventKind uint8

const (
	// DelayElapsed is posted when the open delay ends.
	DelayElapsed EventKind = iota
	// SpringRested is posted when a center spring that continues the
	// sequence comes to rest.
	SpringRested
	// TranslateCompleted is posted when a release animation ends.
	TranslateCompleted
	// CollapseCompleted is posted when a collapse animation ends.
	CollapseCompleted
	// CenterHidden is posted when the center has shrunk out of view.
	CenterHidden
)

// Event is a sequence transition posted by an animation callback.
type Event struct {
	Kind  EventKind
	Item  Handle
	epoch uint64
}

// TraceKind is a milestone of a sequence.
type TraceKind uint8

const (
	// Entering is traced when the center spring starts.
	Entering TraceKind = iota
	// ReleaseStarted is traced when a radial item starts sliding out.
	ReleaseStarted
	// Released is traced when a radial item reaches its position.
	Released
	// Opened is traced once every radial item is released.
	Opened
	// CollapseStarted is traced when the close sequence starts.
	CollapseStarted
	// Collapsed is traced when a radial item is back at the center.
	Collapsed
	// CenterPulsed is traced when the center pulse of the close
	// sequence starts.
	CenterPulsed
	// Closed is traced when the center is hidden.
	Closed
)

// Trace records a milestone for observers.
type Trace struct {
	Kind TraceKind
	Item Handle
	// At is the frame time the milestone was reached at.
	At time.Time
}

// Config tunes the sequences. Zero fields select the defaults.
type Config struct {
	// OpenDelay is the wait before the center enters. Negative
	// means no delay. Default 1s.
	OpenDelay time.Duration
	// ReleaseDuration is the duration of one radial release. Default
	// 350ms.
	ReleaseDuration time.Duration
	// CollapseDuration is the duration of the radial collapse. Default
	// 250ms.
	CollapseDuration time.Duration
	// CenterOpen drives the center entrance. Default 400/10.
	CenterOpen spring.Config
	// RadialPulse drives the center pulse of every release and the
	// bounce of every released item. Default 200/10.
	RadialPulse spring.Config
	// CenterClose drives the center pulse of the close sequence.
	// Default 400/10.
	CenterClose spring.Config
	// CenterScaleMin and CenterScaleMax are the display scales the
	// center springs and the item bounces map onto. Default 0.8 and 1.
	CenterScaleMin, CenterScaleMax float32
}

// Choreographer runs open and close sequences over an Arena.
type Choreographer struct {
	cfg      Config
	arena    Arena
	springs  spring.System
	timeline anim.Timeline

	now   time.Time
	state State
	// epoch is incremented whenever in-flight work is abandoned;
	// events from older epochs are dropped.
	epoch   uint64
	queue   []Handle
	center  *spring.Spring
	pending int
	mailbox []Event

	observers []func(Trace)
}

// DefaultConfig returns the default configuration with every field set.
func DefaultConfig() Config {
	return Config{}.withDefaults()
}

func (c Config) withDefaults() Config {
	if c.OpenDelay == 0 {
		c.OpenDelay = time.Second
	}
	if c.ReleaseDuration <= 0 {
		c.ReleaseDuration = 350 * time.Millisecond
	}
	if c.CollapseDuration <= 0 {
		c.CollapseDuration = 250 * time.Millisecond
	}
	if c.CenterOpen == (spring.Config{}) {
		c.CenterOpen = spring.Config{Tension: 400, Friction: 10}
	}
	if c.RadialPulse == (spring.Config{}) {
		c.RadialPulse = spring.Config{Tension: 200, Friction: 10}
	}
	if c.CenterClose == (spring.Config{}) {
		c.CenterClose = spring.Config{Tension: 400, Friction: 10}
	}
	if c.CenterScaleMin == 0 && c.CenterScaleMax == 0 {
		c.CenterScaleMin, c.CenterScaleMax = 0.8, 1
	}
	return c
}

// New returns an idle Choreographer for a.
func New(cfg Config, a Arena) *Choreographer {
	return &Choreographer{cfg: cfg.withDefaults(), arena: a}
}

// Config returns the effective configuration.
func (c *Choreographer) Config() Config {
	return c.cfg
}

// State returns the current state.
func (c *Choreographer) State() State {
	return c.state
}

// Observe registers f to be called for every milestone.
func (c *Choreographer) Observe(f func(Trace)) {
	c.observers = append(c.observers, f)
}

// Queued returns the radial items still waiting for their release.
func (c *Choreographer) Queued() []Handle {
	return append([]Handle(nil), c.queue...)
}

// Animating reports whether the next frame will move something.
func (c *Choreographer) Animating() bool {
	return c.springs.Active() || c.timeline.Active() || len(c.mailbox) > 0
}

// Next returns the time of the next scheduled transition while no
// animation is running, such as the end of the open delay.
func (c *Choreographer) Next() (time.Time, bool) {
	return c.timeline.Next()
}

// Step advances the animations to now and dispatches the events they
// posted.
func (c *Choreographer) Step(now time.Time) {
	c.now = now
	c.springs.Step(now)
	c.timeline.Step(now)
	for len(c.mailbox) > 0 {
		e := c.mailbox[0]
		c.mailbox = c.mailbox[1:]
		if e.epoch != c.epoch {
			continue
		}
		c.dispatch(e)
	}
}

// Open abandons any sequence in progress, resets every item to its
// collapsed appearance and starts the open sequence.
func (c *Choreographer) Open() {
	c.abandon()
	if p, ok := c.arena.Props(Center); ok {
		*p = Props{Scale: 0, Alpha: 1}
	}
	for i := 0; i < c.arena.Radial(); i++ {
		h := Handle(i)
		if p, ok := c.arena.Props(h); ok {
			*p = Props{Scale: 0, Alpha: 0, Offset: c.arena.ToCenter(h)}
		}
	}
	c.state = Pending
	if c.cfg.OpenDelay < 0 {
		c.enter()
		return
	}
	epoch := c.epoch
	c.timeline.After(c.cfg.OpenDelay, func() {
		c.post(DelayElapsed, Center, epoch)
	})
}

// Close starts the close sequence. Closing an idle or collapsing menu
// does nothing.
func (c *Choreographer) Close() {
	if c.state == Idle || c.state == Collapsing {
		return
	}
	c.abandon()
	c.state = Collapsing
	c.trace(CollapseStarted, Center)
	epoch := c.epoch
	for i := 0; i < c.arena.Radial(); i++ {
		h := Handle(i)
		p, ok := c.arena.Props(h)
		if !ok {
			continue
		}
		from, to := *p, c.arena.ToCenter(h)
		c.pending++
		c.timeline.Tween(c.cfg.CollapseDuration, anim.Decelerate, func(t float32) {
			p, ok := c.arena.Props(h)
			if !ok {
				return
			}
			p.Offset = lerpPt(from.Offset, to, t)
			p.Alpha = anim.Lerp(from.Alpha, 0, t)
			p.Scale = anim.Lerp(from.Scale, 0, t)
		}, func() {
			c.post(CollapseCompleted, h, epoch)
		})
	}
	if c.pending == 0 {
		c.closeCenter()
	}
}

// Reset abandons any sequence in progress and returns to Idle without
// touching the items.
func (c *Choreographer) Reset() {
	c.abandon()
	c.state = Idle
}

func (c *Choreographer) abandon() {
	c.epoch++
	c.timeline.Clear()
	c.springs.Clear()
	c.center = nil
	c.queue = c.queue[:0]
	c.pending = 0
	c.mailbox = c.mailbox[:0]
}

func (c *Choreographer) post(k EventKind, h Handle, epoch uint64) {
	c.mailbox = append(c.mailbox, Event{Kind: k, Item: h, epoch: epoch})
}

func (c *Choreographer) dispatch(e Event) {
	switch e.Kind {
	case DelayElapsed:
		if c.state == Pending {
			c.enter()
		}
	case SpringRested:
		switch c.state {
		case CenterEntering:
			c.startReleasing()
		case Collapsing:
			if c.pending == 0 {
				c.hideCenter()
			}
		}
	case TranslateCompleted:
		if c.state != Releasing || len(c.queue) == 0 || c.queue[0] != e.Item {
			return
		}
		c.queue = c.queue[1:]
		c.trace(Released, e.Item)
		c.bounce(e.Item)
		c.releaseNext()
	case CollapseCompleted:
		if c.state != Collapsing || c.pending == 0 {
			return
		}
		c.pending--
		c.trace(Collapsed, e.Item)
		if c.pending == 0 {
			c.closeCenter()
		}
	case CenterHidden:
		if c.state == Collapsing {
			c.finishClose()
		}
	}
}

func (c *Choreographer) enter() {
	c.state = CenterEntering
	c.trace(Entering, Center)
	c.pulse(c.cfg.CenterOpen, true)
}

func (c *Choreographer) startReleasing() {
	c.state = Releasing
	c.queue = c.queue[:0]
	for i := 0; i < c.arena.Radial(); i++ {
		c.queue = append(c.queue, Handle(i))
	}
	c.releaseNext()
}

func (c *Choreographer) releaseNext() {
	for len(c.queue) > 0 {
		if _, ok := c.arena.Props(c.queue[0]); ok {
			break
		}
		c.queue = c.queue[1:]
	}
	if len(c.queue) == 0 {
		c.state = Settled
		c.trace(Opened, Center)
		return
	}
	h := c.queue[0]
	p, _ := c.arena.Props(h)
	p.Scale = 1
	from := p.Offset
	c.trace(ReleaseStarted, h)
	c.pulse(c.cfg.RadialPulse, false)
	epoch := c.epoch
	c.timeline.Tween(c.cfg.ReleaseDuration, anim.Decelerate, func(t float32) {
		p, ok := c.arena.Props(h)
		if !ok {
			return
		}
		p.Offset = lerpPt(from, f32.Point{}, t)
		p.Alpha = t
	}, func() {
		c.post(TranslateCompleted, h, epoch)
	})
}

func (c *Choreographer) closeCenter() {
	c.trace(CenterPulsed, Center)
	c.pulse(c.cfg.CenterClose, true)
}

// hideCenter shrinks the center out of view.
func (c *Choreographer) hideCenter() {
	c.center = nil
	var from float32
	if p, ok := c.arena.Props(Center); ok {
		from = p.Scale
	}
	epoch := c.epoch
	c.timeline.Tween(c.cfg.CollapseDuration, anim.Decelerate, func(t float32) {
		if p, ok := c.arena.Props(Center); ok {
			p.Scale = anim.Lerp(from, 0, t)
		}
	}, func() {
		c.post(CenterHidden, Center, epoch)
	})
}

func (c *Choreographer) finishClose() {
	if p, ok := c.arena.Props(Center); ok {
		p.Scale = 0
	}
	c.center = nil
	c.state = Idle
	c.trace(Closed, Center)
}

// bounce springs a released item from the minimum to the maximum
// display scale.
func (c *Choreographer) bounce(h Handle) {
	p, ok := c.arena.Props(h)
	if !ok {
		return
	}
	lo, hi := float64(c.cfg.CenterScaleMin), float64(c.cfg.CenterScaleMax)
	p.Scale = float32(lo)
	sp := c.springs.New(c.cfg.RadialPulse)
	sp.OnUpdate(func(v float64) {
		if p, ok := c.arena.Props(h); ok {
			p.Scale = float32(spring.MapRange(v, 0, 1, lo, hi))
		}
	})
	sp.OnRest(func() {
		if p, ok := c.arena.Props(h); ok {
			p.Scale = float32(hi)
		}
	})
	sp.SetCurrentValue(0)
	sp.SetEndValue(1)
}

// pulse replaces the center spring with a new one bouncing from 0 to
// 1. Only springs that continue the sequence post SpringRested.
func (c *Choreographer) pulse(cfg spring.Config, notify bool) {
	if c.center != nil {
		c.springs.Remove(c.center)
	}
	sp := c.springs.New(cfg)
	lo, hi := float64(c.cfg.CenterScaleMin), float64(c.cfg.CenterScaleMax)
	if p, ok := c.arena.Props(Center); ok {
		p.Scale = float32(lo)
	}
	sp.OnUpdate(func(v float64) {
		if p, ok := c.arena.Props(Center); ok {
			p.Scale = float32(spring.MapRange(v, 0, 1, lo, hi))
		}
	})
	if notify {
		epoch := c.epoch
		sp.OnRest(func() {
			c.post(SpringRested, Center, epoch)
		})
	}
	sp.SetCurrentValue(0)
	sp.SetEndValue(1)
	c.center = sp
}

func (c *Choreographer) trace(k TraceKind, h Handle) {
	t := Trace{Kind: k, Item: h, At: c.now}
	for _, f := range c.observers {
		f(t)
	}
}

func lerpPt(a, b f32.Point, t float32) f32.Point {
	return f32.Pt(anim.Lerp(a.X, b.X, t), anim.Lerp(a.Y, b.Y, t))
}

func (s State) String() string {
	switch s {
	case Idle:
		return "Idle"
	case Pending:
		return "Pending"
	case CenterEntering:
		return "CenterEntering"
	case Releasing:
		return "Releasing"
	case Settled:
		return "Settled"
	case Collapsing:
		return "Collapsing"
	default:
		panic("invalid State")
	}
}

func (k TraceKind) String() string {
	switch k {
	case Entering:
		return "Entering"
	case ReleaseStarted:
		return "ReleaseStarted"
	case Released:
		return "Released"
	case Opened:
		return "Opened"
	case CollapseStarted:
		return "CollapseStarted"
	case Collapsed:
		return "Collapsed"
	case CenterPulsed:
		return "CenterPulsed"
	case Closed:
		return "Closed"
	default:
		panic("invalid TraceKind")
	}
}
