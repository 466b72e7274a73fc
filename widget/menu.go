// SPDX-License-Identifier: Unlicense OR MIT

// Package widget implements a Gio widget for radial menus.
package widget

import (
	"image"
	"image/color"
	"log"
	"math"

	"gioui.org/f32"
	"gioui.org/gesture"
	"gioui.org/layout"
	"gioui.org/op"
	"gioui.org/op/clip"
	"gioui.org/op/paint"
	"gioui.org/text"
	"gioui.org/unit"
	giowidget "gioui.org/widget"
	"gioui.org/widget/material"

	"github.com/spiderui/spider/choreo"
	"github.com/spiderui/spider/menu"
	"github.com/spiderui/spider/shadow"
)

// Look is the visual of a menu item. A Look, an image.Image or a
// *widget.Icon are valid item visuals.
type Look struct {
	// Background fills the item disc.
	Background color.NRGBA
	// Foreground is the color of Icon and the label.
	Foreground color.NRGBA
	Icon       *giowidget.Icon
	// Image is drawn cropped to the item disc.
	Image image.Image
}

// Menu is a radial menu widget. It fills the largest square that fits
// its constraints.
type Menu struct {
	// ItemRadius and CenterRadius override the radii of the
	// configuration in device independent units, when non-zero.
	ItemRadius   unit.Dp
	CenterRadius unit.Dp
	// Shadow is the width of the item shadows. Default is 4dp.
	Shadow unit.Dp
	// Theme draws item labels when set.
	Theme *material.Theme
	// TextSize of the labels. Default is 14sp.
	TextSize unit.Sp

	c      *menu.Container
	clicks map[choreo.Handle]*gesture.Click
	cache  shadow.Cache
	images map[*image.RGBA]paint.ImageOp
	// failed and badMasks record the surface failures already
	// reported.
	failed   map[shadow.Style]bool
	badMasks map[badMask]bool
}

type badMask struct {
	h choreo.Handle
	d int
}

var (
	defaultBackground = color.NRGBA{R: 0xee, G: 0xee, B: 0xee, A: 0xff}
	defaultForeground = color.NRGBA{R: 0x30, G: 0x30, B: 0x30, A: 0xff}
	shade             = color.NRGBA{A: 0x50}
)

// New returns a Menu for the given configuration. The visuals accepted
// by cfg.Accept are restricted to the ones Menu can draw.
func New(cfg menu.Config) *Menu {
	accept := cfg.Accept
	cfg.Accept = func(v any) bool {
		if !drawable(v) {
			return false
		}
		return accept == nil || accept(v)
	}
	return &Menu{
		c:      menu.New(cfg),
		clicks: make(map[choreo.Handle]*gesture.Click),
		images: make(map[*image.RGBA]paint.ImageOp),
		failed:   make(map[shadow.Style]bool),
		badMasks: make(map[badMask]bool),
	}
}

func drawable(v any) bool {
	switch v.(type) {
	case Look, *Look, image.Image, *giowidget.Icon:
		return true
	}
	return false
}

// SetEntries replaces the items of the menu. See menu.Container.
func (m *Menu) SetEntries(entries []menu.Entry) error {
	return m.c.SetEntries(entries)
}

// SetClickListener sets the function called with the payload of a
// tapped item.
func (m *Menu) SetClickListener(f func(payload string)) {
	m.c.SetClickListener(f)
}

// Container returns the underlying container.
func (m *Menu) Container() *menu.Container {
	return m.c
}

// Open runs the open sequence again.
func (m *Menu) Open() {
	m.c.Open()
}

// Layout processes the taps of the previous frame, advances the
// animations to gtx.Now and draws the menu.
func (m *Menu) Layout(gtx layout.Context) layout.Dimensions {
	m.update(gtx)
	m.c.SetRadii(gtx.Dp(m.ItemRadius), gtx.Dp(m.CenterRadius))
	side := m.c.Measure(gtx.Constraints.Max)
	m.c.Layout(side)
	m.c.PreDraw()
	animating, next, wake := m.c.Frame(gtx.Now)
	switch {
	case animating:
		gtx.Execute(op.InvalidateCmd{})
	case wake:
		gtx.Execute(op.InvalidateCmd{At: next})
	}
	sz := gtx.Constraints.Constrain(image.Pt(side, side))
	defer clip.Rect{Max: sz}.Push(gtx.Ops).Pop()
	m.c.Place(&painter{m: m, gtx: gtx})
	return layout.Dimensions{Size: sz}
}

// update processes the item clicks, the center first and then the
// radial items in order. At most one tap is reported per frame.
func (m *Menu) update(gtx layout.Context) {
	tapped := false
	for i := -1; i < m.c.Len(); i++ {
		h := choreo.Handle(i)
		if i < 0 {
			h = choreo.Center
		}
		c, ok := m.clicks[h]
		if !ok {
			continue
		}
		for {
			e, ok := c.Update(gtx.Source)
			if !ok {
				break
			}
			if e.Kind == gesture.KindClick && !tapped {
				tapped = true
				m.c.Tap(h)
			}
		}
	}
}

func (m *Menu) click(h choreo.Handle) *gesture.Click {
	c, ok := m.clicks[h]
	if !ok {
		c = new(gesture.Click)
		m.clicks[h] = c
	}
	return c
}

func (m *Menu) imageOp(img *image.RGBA) paint.ImageOp {
	if io, ok := m.images[img]; ok {
		return io
	}
	if len(m.images) > 128 {
		clear(m.images)
	}
	io := paint.NewImageOp(img)
	m.images[img] = io
	return io
}

type painter struct {
	m   *Menu
	gtx layout.Context
}

func handle(it *menu.Item) choreo.Handle {
	if it.Kind == menu.Center {
		return choreo.Center
	}
	return choreo.Handle(it.Index)
}

func lookOf(v any) Look {
	var l Look
	switch v := v.(type) {
	case Look:
		l = v
	case *Look:
		if v != nil {
			l = *v
		}
	case *giowidget.Icon:
		l.Icon = v
	case image.Image:
		l.Image = v
	}
	if l.Background == (color.NRGBA{}) {
		l.Background = defaultBackground
	}
	if l.Foreground == (color.NRGBA{}) {
		l.Foreground = defaultForeground
	}
	return l
}

func (p *painter) Place(it *menu.Item) {
	if !it.Visible() {
		return
	}
	m, gtx := p.m, p.gtx
	look := lookOf(it.Visual)
	r := int(math.Ceil(float64(it.Radius)))
	d := 2 * r
	blur := gtx.Dp(m.Shadow)
	if m.Shadow == 0 {
		blur = gtx.Dp(4)
	}
	st := shadow.Style{
		Radius: r,
		Blur:   blur,
		Drop:   blur / 2,
		Fill:   look.Background,
		Shade:  shade,
	}
	disc, err := m.cache.Disc(st)
	if err != nil {
		if !m.failed[st] {
			m.failed[st] = true
			log.Printf("spider: item %d: %v", it.Index, err)
		}
		return
	}

	pos := it.Position.Add(it.Props.Offset)
	s := it.Props.Scale
	tr := f32.Affine2D{}.
		Offset(pos.Sub(f32.Pt(float32(r), float32(r)))).
		Scale(pos, f32.Pt(s, s))
	t := op.Affine(tr).Push(gtx.Ops)
	o := paint.PushOpacity(gtx.Ops, it.Props.Alpha)

	off := op.Offset(image.Pt(-blur, -blur)).Push(gtx.Ops)
	m.paint(gtx, disc)
	off.Pop()

	gtx.Constraints = layout.Exact(image.Pt(d, d))
	switch {
	case look.Image != nil:
		img, err := m.cache.Mask(look.Image, d)
		if err != nil {
			if k := (badMask{handle(it), d}); !m.badMasks[k] {
				m.badMasks[k] = true
				log.Printf("spider: item %d: %v", it.Index, err)
			}
			break
		}
		m.paint(gtx, img)
	case look.Icon != nil:
		layout.Center.Layout(gtx, func(gtx layout.Context) layout.Dimensions {
			gtx.Constraints = layout.Exact(image.Pt(d*3/5, d*3/5))
			return look.Icon.Layout(gtx, look.Foreground)
		})
	case it.Label != "" && m.Theme != nil:
		size := m.TextSize
		if size == 0 {
			size = 14
		}
		l := material.Label(m.Theme, size, it.Label)
		l.Color = look.Foreground
		l.Alignment = text.Middle
		l.MaxLines = 1
		layout.Center.Layout(gtx, l.Layout)
	}
	o.Pop()
	t.Pop()

	defer clip.Ellipse(it.Bounds()).Push(gtx.Ops).Pop()
	m.click(handle(it)).Add(gtx.Ops)
}

func (m *Menu) paint(gtx layout.Context, img *image.RGBA) {
	defer clip.Rect{Max: img.Bounds().Size()}.Push(gtx.Ops).Pop()
	m.imageOp(img).Add(gtx.Ops)
	paint.PaintOp{}.Add(gtx.Ops)
}
