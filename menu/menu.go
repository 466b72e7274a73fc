// SPDX-License-Identifier: Unlicense OR MIT

/*
Package menu implements the composition root of a radial menu: the item
set, the layout pass and the open and close sequences.

A Container knows nothing about drawing or input. The host layout engine
drives it in three steps per frame:

	c.Layout(size)    // resolve the geometry of the square canvas
	c.PreDraw()       // start the open sequence once per session
	c.Frame(now)      // advance the animations

and then draws every item at Position+Props.Offset, scaled by
Props.Scale with opacity Props.Alpha. Taps are reported with Tap.
*/
package menu

import (
	"errors"
	"fmt"
	"image"
	"math"
	"time"

	"gioui.org/f32"

	"github.com/spiderui/spider/choreo"
	"github.com/spiderui/spider/ring"
)

// Kind distinguishes the center item from the radial items.
type Kind uint8

const (
	// Center is the item in the middle of the ring.
	Center Kind = iota + 1
	// Radial is an item on the ring.
	Radial
)

// Entry is one element of a declarative item list.
type Entry struct {
	Kind Kind
	// Visual is the host specific image of the item.
	Visual any
	// Label is an optional caption.
	Label string
	// Payload identifies the item to the click listener.
	Payload string
}

// Item is a visual slot of the menu.
type Item struct {
	Kind Kind
	// Index is the position among the radial items, or -1 for the
	// center item.
	Index   int
	Visual  any
	Label   string
	Payload string
	// Radius and Position are resolved by the layout pass.
	Radius   float32
	Position f32.Point
	// Props are the animated properties.
	Props choreo.Props
}

// Placer positions items on behalf of the host layout engine.
type Placer interface {
	Place(it *Item)
}

// Config configures a Container. Zero fields select the defaults.
type Config struct {
	// ItemRadius is the requested radial item radius in pixels.
	// Default 70.
	ItemRadius int
	// CenterRadius is the requested center item radius in pixels.
	// Default 100.
	CenterRadius int
	// Choreo tunes the animations.
	Choreo choreo.Config
	// Accept reports whether a visual is supported by the host. A nil
	// Accept allows any visual.
	Accept func(visual any) bool
}

// Errors wrapped by ConfigError.
var (
	// ErrNoCenter means no entry is a Center.
	ErrNoCenter = errors.New("missing center item")
	// ErrManyCenters means more than one entry is a Center.
	ErrManyCenters = errors.New("more than one center item")
	// ErrNoRadial means the set has no Radial entries.
	ErrNoRadial = errors.New("no radial items")
	// ErrKind means an entry is neither Center nor Radial.
	ErrKind = errors.New("invalid item kind")
	// ErrVisual means an entry's visual was refused by
	// Config.Accept.
	ErrVisual = errors.New("unsupported visual")
)

// ConfigError describes an invalid item set.
type ConfigError struct {
	// Index is the offending entry, or -1 if the error concerns the
	// set as a whole.
	Index int
	Err   error
}

func (e *ConfigError) Error() string {
	if e.Index < 0 {
		return fmt.Sprintf("menu: %v", e.Err)
	}
	return fmt.Sprintf("menu: item %d: %v", e.Index, e.Err)
}

func (e *ConfigError) Unwrap() error {
	return e.Err
}

// Container holds the items of a menu and runs its layout and
// animations. A Container is not safe for concurrent use.
type Container struct {
	cfg    Config
	center Item
	radial []Item
	// count is the number of radial items, updated when the item set
	// changes.
	count int
	valid bool

	geo  ring.Geometry
	size int
	// relayout forces the next Layout to solve the geometry.
	relayout bool
	// armed is set when the next PreDraw must start the open sequence.
	armed   bool
	session int

	choreo   *choreo.Choreographer
	listener func(payload string)
}

// New returns an empty Container.
func New(cfg Config) *Container {
	if cfg.ItemRadius <= 0 {
		cfg.ItemRadius = 70
	}
	if cfg.CenterRadius <= 0 {
		cfg.CenterRadius = 100
	}
	c := &Container{cfg: cfg}
	c.choreo = choreo.New(cfg.Choreo, arena{c})
	return c
}

// SetEntries replaces the item set with a declarative list that
// contains exactly one center entry. The radial items keep the order
// of the list.
func (c *Container) SetEntries(entries []Entry) error {
	centerAt := -1
	var radial []Entry
	for i, e := range entries {
		switch e.Kind {
		case Center:
			if centerAt >= 0 {
				return &ConfigError{Index: i, Err: ErrManyCenters}
			}
			centerAt = i
		case Radial:
			radial = append(radial, e)
		default:
			return &ConfigError{Index: i, Err: ErrKind}
		}
		if err := c.check(e); err != nil {
			return &ConfigError{Index: i, Err: err}
		}
	}
	if centerAt < 0 {
		return &ConfigError{Index: -1, Err: ErrNoCenter}
	}
	return c.SetItems(entries[centerAt], radial)
}

// SetItems replaces the item set and starts a new session. Entry kinds
// are implied by the arguments; an entry with a conflicting Kind is
// rejected.
func (c *Container) SetItems(center Entry, radial []Entry) error {
	if center.Kind != 0 && center.Kind != Center {
		return &ConfigError{Index: -1, Err: fmt.Errorf("center: %w", ErrKind)}
	}
	if err := c.check(center); err != nil {
		return &ConfigError{Index: -1, Err: fmt.Errorf("center: %w", err)}
	}
	if len(radial) == 0 {
		return &ConfigError{Index: -1, Err: ErrNoRadial}
	}
	items := make([]Item, len(radial))
	for i, e := range radial {
		if e.Kind != 0 && e.Kind != Radial {
			return &ConfigError{Index: i, Err: ErrKind}
		}
		if err := c.check(e); err != nil {
			return &ConfigError{Index: i, Err: err}
		}
		items[i] = Item{
			Kind:    Radial,
			Index:   i,
			Visual:  e.Visual,
			Label:   e.Label,
			Payload: e.Payload,
		}
	}
	c.choreo.Reset()
	c.center = Item{
		Kind:    Center,
		Index:   -1,
		Visual:  center.Visual,
		Label:   center.Label,
		Payload: center.Payload,
	}
	c.radial = items
	c.count = len(items)
	c.valid = true
	c.session++
	c.relayout = true
	c.armed = true
	return nil
}

func (c *Container) check(e Entry) error {
	if e.Visual != nil && c.cfg.Accept != nil && !c.cfg.Accept(e.Visual) {
		return fmt.Errorf("%w: %T", ErrVisual, e.Visual)
	}
	return nil
}

// SetClickListener registers the function called with the payload of
// every tapped item.
func (c *Container) SetClickListener(f func(payload string)) {
	c.listener = f
}

// SetRadii changes the requested radii, for example after a change of
// display density. A radius <= 0 keeps the current value. The next
// Layout solves the geometry again if a radius changed.
func (c *Container) SetRadii(item, center int) {
	if item <= 0 {
		item = c.cfg.ItemRadius
	}
	if center <= 0 {
		center = c.cfg.CenterRadius
	}
	if item == c.cfg.ItemRadius && center == c.cfg.CenterRadius {
		return
	}
	c.cfg.ItemRadius = item
	c.cfg.CenterRadius = center
	c.relayout = true
}

// Observe registers f to be called for every animation milestone.
func (c *Container) Observe(f func(choreo.Trace)) {
	c.choreo.Observe(f)
}

// Session returns the number of item sets assigned so far.
func (c *Container) Session() int {
	return c.session
}

// State returns the state of the animations.
func (c *Container) State() choreo.State {
	return c.choreo.State()
}

// Geometry returns the geometry of the most recent layout pass.
func (c *Container) Geometry() ring.Geometry {
	return c.geo
}

// Len returns the number of radial items.
func (c *Container) Len() int {
	return c.count
}

// Item returns the item for h.
func (c *Container) Item(h choreo.Handle) (*Item, bool) {
	if !c.valid {
		return nil, false
	}
	if h == choreo.Center {
		return &c.center, true
	}
	if h < 0 || int(h) >= c.count {
		return nil, false
	}
	return &c.radial[h], true
}

// Measure returns the side of the square canvas that fits avail.
func (c *Container) Measure(avail image.Point) int {
	s := avail.X
	if avail.Y < s {
		s = avail.Y
	}
	if s < 0 {
		s = 0
	}
	return s
}

// Layout resolves the geometry for a canvas of the given side. The
// geometry is solved again only when the size or the item set changed;
// a change in the middle of a sequence abandons it, and the next
// PreDraw starts over.
func (c *Container) Layout(size int) {
	if !c.valid || (size == c.size && !c.relayout) {
		return
	}
	c.size = size
	c.relayout = false
	c.geo = ring.Solve(size, c.count, c.cfg.ItemRadius, c.cfg.CenterRadius)
	c.center.Radius = c.geo.CenterRadius
	c.center.Position = c.geo.Center
	for i := range c.radial {
		it := &c.radial[i]
		it.Radius = c.geo.ItemRadius
		if i < len(c.geo.Positions) {
			it.Position = c.geo.Positions[i]
		} else {
			it.Position = c.geo.Center
		}
	}
	switch c.choreo.State() {
	case choreo.Idle, choreo.Settled:
	default:
		c.choreo.Reset()
		c.armed = true
	}
}

// PreDraw starts the open sequence if the session has not opened yet
// and the geometry is drawable. It reports whether it did.
func (c *Container) PreDraw() bool {
	if !c.armed || !c.valid || c.geo.Empty() {
		return false
	}
	c.armed = false
	c.choreo.Open()
	return true
}

// Frame advances the animations to now. It reports whether another
// frame is needed right away, and otherwise whether and when the next
// transition is due.
func (c *Container) Frame(now time.Time) (animating bool, next time.Time, wake bool) {
	c.choreo.Step(now)
	if c.choreo.Animating() {
		return true, time.Time{}, false
	}
	next, wake = c.choreo.Next()
	return false, next, wake
}

// Open runs the open sequence again, typically after a close.
func (c *Container) Open() {
	if !c.valid || c.geo.Empty() {
		c.armed = true
		return
	}
	c.armed = false
	c.choreo.Open()
}

// Tap reports the payload of h to the click listener and starts the
// close sequence.
func (c *Container) Tap(h choreo.Handle) {
	it, ok := c.Item(h)
	if !ok {
		return
	}
	if c.listener != nil {
		c.listener(it.Payload)
	}
	c.choreo.Close()
}

// Place calls p for every item in drawing order: the radial items in
// index order and the center item last.
func (c *Container) Place(p Placer) {
	if !c.valid {
		return
	}
	for i := range c.radial {
		p.Place(&c.radial[i])
	}
	p.Place(&c.center)
}

// HitTest returns the topmost visible item containing pos, in the
// animated layout.
func (c *Container) HitTest(pos f32.Point) (choreo.Handle, bool) {
	if !c.valid {
		return 0, false
	}
	if hit(&c.center, pos) {
		return choreo.Center, true
	}
	for i := len(c.radial) - 1; i >= 0; i-- {
		if hit(&c.radial[i], pos) {
			return choreo.Handle(i), true
		}
	}
	return 0, false
}

// Visible reports whether it is drawn at all.
func (it *Item) Visible() bool {
	return it.Props.Scale > 0 && it.Props.Alpha > 0 && it.Radius > 0
}

// Bounds returns the smallest integer rectangle that contains the
// animated disc of it.
func (it *Item) Bounds() image.Rectangle {
	c := it.Position.Add(it.Props.Offset)
	r := float64(it.Radius * it.Props.Scale)
	x, y := float64(c.X), float64(c.Y)
	return image.Rect(
		int(math.Floor(x-r)), int(math.Floor(y-r)),
		int(math.Ceil(x+r)), int(math.Ceil(y+r)),
	)
}

func hit(it *Item, pos f32.Point) bool {
	if !it.Visible() {
		return false
	}
	r := it.Radius * it.Props.Scale
	d := pos.Sub(it.Position.Add(it.Props.Offset))
	return d.X*d.X+d.Y*d.Y <= r*r
}

// arena exposes the items to the choreographer through handles.
type arena struct {
	c *Container
}

func (a arena) Radial() int {
	return a.c.count
}

func (a arena) Props(h choreo.Handle) (*choreo.Props, bool) {
	it, ok := a.c.Item(h)
	if !ok {
		return nil, false
	}
	return &it.Props, true
}

func (a arena) ToCenter(h choreo.Handle) f32.Point {
	it, ok := a.c.Item(h)
	if !ok {
		return f32.Point{}
	}
	return a.c.geo.Center.Sub(it.Position)
}
