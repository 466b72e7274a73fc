// SPDX-License-Identifier: Unlicense OR MIT

// Package term runs radial menus in a terminal.
package term

import (
	"context"
	"image"
	"math"
	"time"

	"gioui.org/f32"
	"github.com/gdamore/tcell/v2"

	"github.com/spiderui/spider/menu"
)

// Scale is the number of layout pixels per terminal row. Terminal
// cells are about twice as tall as wide, so a column is Scale/2
// pixels.
const Scale = 4

// FrameInterval is the animation frame period of Run.
const FrameInterval = 16 * time.Millisecond

var (
	centerColor = tcell.ColorNavy
	radialColor = tcell.ColorTeal
	labelColor  = tcell.ColorWhite
)

// Accept reports whether v is a valid item visual for a Host. Use it
// as menu.Config.Accept.
func Accept(v any) bool {
	_, ok := v.(tcell.Color)
	return ok
}

// Host draws a menu container into a screen and feeds it mouse taps.
type Host struct {
	screen tcell.Screen
	c      *menu.Container
	// origin is the cell of the canvas top left corner.
	origin  image.Point
	buttons tcell.ButtonMask
}

// New returns a Host for an initialized screen.
func New(screen tcell.Screen, c *menu.Container) *Host {
	return &Host{screen: screen, c: c}
}

// Run initializes screen and shows c until the user quits with q or
// Escape, or ctx is done. The o key opens the menu again.
func Run(ctx context.Context, screen tcell.Screen, c *menu.Container) error {
	if err := screen.Init(); err != nil {
		return err
	}
	defer screen.Fini()
	screen.EnableMouse()
	screen.HideCursor()

	done := make(chan struct{})
	defer close(done)
	events := make(chan tcell.Event, 16)
	go func() {
		for {
			ev := screen.PollEvent()
			if ev == nil {
				return
			}
			select {
			case events <- ev:
			case <-done:
				return
			}
		}
	}()

	h := New(screen, c)
	ticker := time.NewTicker(FrameInterval)
	defer ticker.Stop()
	h.Frame(time.Now())
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-events:
			if !h.HandleEvent(ev) {
				return nil
			}
		case now := <-ticker.C:
			h.Frame(now)
		}
	}
}

// HandleEvent processes a screen event. It returns false when the user
// asked to quit.
func (h *Host) HandleEvent(ev tcell.Event) bool {
	switch ev := ev.(type) {
	case *tcell.EventKey:
		switch {
		case ev.Key() == tcell.KeyEscape, ev.Key() == tcell.KeyCtrlC:
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'q':
			return false
		case ev.Key() == tcell.KeyRune && ev.Rune() == 'o':
			h.c.Open()
		}
	case *tcell.EventMouse:
		b := ev.Buttons()
		pressed := b&tcell.Button1 != 0 && h.buttons&tcell.Button1 == 0
		h.buttons = b
		if pressed {
			x, y := ev.Position()
			if it, ok := h.c.HitTest(h.toCanvas(x, y)); ok {
				h.c.Tap(it)
			}
		}
	case *tcell.EventResize:
		h.screen.Sync()
	}
	return true
}

// Frame lays out, animates and draws the menu.
func (h *Host) Frame(now time.Time) {
	w, ht := h.screen.Size()
	side := h.c.Measure(image.Pt(w*Scale/2, ht*Scale))
	h.origin = image.Pt((w-side*2/Scale)/2, (ht-side/Scale)/2)
	h.c.Layout(side)
	h.c.PreDraw()
	h.c.Frame(now)
	h.screen.Clear()
	h.c.Place(h)
	h.screen.Show()
}

// toCanvas maps the center of a cell to canvas pixels.
func (h *Host) toCanvas(x, y int) f32.Point {
	return f32.Pt(
		(float32(x-h.origin.X)+.5)*Scale/2,
		(float32(y-h.origin.Y)+.5)*Scale,
	)
}

// Place draws it.
func (h *Host) Place(it *menu.Item) {
	if !it.Visible() {
		return
	}
	col, ok := it.Visual.(tcell.Color)
	if !ok {
		col = radialColor
		if it.Kind == menu.Center {
			col = centerColor
		}
	}
	bg := tcell.StyleDefault.Background(fade(col, it.Props.Alpha))
	b := it.Bounds()
	c := it.Position.Add(it.Props.Offset)
	r := it.Radius * it.Props.Scale
	x0 := h.origin.X + int(math.Floor(float64(b.Min.X)*2/Scale))
	x1 := h.origin.X + int(math.Ceil(float64(b.Max.X)*2/Scale))
	y0 := h.origin.Y + int(math.Floor(float64(b.Min.Y)/Scale))
	y1 := h.origin.Y + int(math.Ceil(float64(b.Max.Y)/Scale))
	for y := y0; y <= y1; y++ {
		for x := x0; x <= x1; x++ {
			d := h.toCanvas(x, y).Sub(c)
			if d.X*d.X+d.Y*d.Y <= r*r {
				h.screen.SetContent(x, y, ' ', nil, bg)
			}
		}
	}
	if it.Label == "" || it.Props.Scale < 1 {
		return
	}
	// The label is drawn on the middle row when it fits in the disc.
	lbl := []rune(it.Label)
	if n := int(2 * r * 2 / Scale); len(lbl) > n-1 {
		return
	}
	row := h.origin.Y + int(c.Y/Scale)
	x := h.origin.X + int(c.X*2/Scale) - len(lbl)/2
	st := bg.Foreground(labelColor)
	for i, ch := range lbl {
		h.screen.SetContent(x+i, row, ch, nil, st)
	}
}

// fade darkens c towards a black background by alpha.
func fade(c tcell.Color, alpha float32) tcell.Color {
	if alpha >= 1 {
		return c
	}
	r, g, b := c.RGB()
	if r < 0 {
		return c
	}
	a := float64(alpha)
	return tcell.NewRGBColor(
		int32(math.Round(float64(r)*a)),
		int32(math.Round(float64(g)*a)),
		int32(math.Round(float64(b)*a)),
	)
}
