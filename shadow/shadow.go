// SPDX-License-Identifier: Unlicense OR MIT

// Package shadow renders the round item surfaces of a radial menu: discs
// with a soft drop shadow, and images cropped to a circle.
package shadow

import (
	"errors"
	"image"
	"image/color"
	"math"
	"reflect"

	"golang.org/x/image/draw"
	"golang.org/x/image/vector"
)

// ErrSurface is returned when a surface cannot be allocated.
var ErrSurface = errors.New("shadow: cannot allocate surface")

// MaxSide is the largest surface side in pixels.
const MaxSide = 4096

// Style describes a disc and its shadow.
type Style struct {
	// Radius of the disc in pixels.
	Radius int
	// Blur is the width of the shadow fringe in pixels.
	Blur int
	// Drop moves the shadow down, in pixels.
	Drop int
	Fill  color.NRGBA
	Shade color.NRGBA
}

// Side returns the side of the surface that holds s.
func (s Style) Side() int {
	return 2*(s.Radius+s.Blur) + s.Drop
}

// Disc renders s into a new surface. The disc is centered in the
// surface, less the drop.
func Disc(s Style) (*image.RGBA, error) {
	side := s.Side()
	if s.Radius <= 0 || s.Blur < 0 || s.Drop < 0 || side > MaxSide {
		return nil, ErrSurface
	}
	dst := image.NewRGBA(image.Rect(0, 0, side, side))
	c := float32(s.Radius + s.Blur)
	// The shadow is a stack of translucent discs shrinking towards the
	// disc radius.
	const layers = 8
	if s.Blur > 0 && s.Shade.A > 0 {
		sh := s.Shade
		sh.A = uint8(math.Ceil(float64(s.Shade.A) / layers))
		for i := 0; i < layers; i++ {
			r := float32(s.Radius) + float32(s.Blur)*float32(layers-i)/layers
			fill(dst, c, c+float32(s.Drop), r, image.NewUniform(sh))
		}
	}
	fill(dst, c, c, float32(s.Radius), image.NewUniform(s.Fill))
	return dst, nil
}

// Mask scales src to a square of side d and crops it to the inscribed
// circle.
func Mask(src image.Image, d int) (*image.RGBA, error) {
	if d <= 0 || d > MaxSide || src == nil || src.Bounds().Empty() {
		return nil, ErrSurface
	}
	r := image.Rect(0, 0, d, d)
	scaled := image.NewRGBA(r)
	draw.CatmullRom.Scale(scaled, r, src, src.Bounds(), draw.Src, nil)
	dst := image.NewRGBA(r)
	h := float32(d) / 2
	fill(dst, h, h, h, scaled)
	return dst, nil
}

// fill composites src over dst through a circle of radius r around
// (cx, cy).
func fill(dst *image.RGBA, cx, cy, r float32, src image.Image) {
	b := dst.Bounds()
	z := vector.NewRasterizer(b.Dx(), b.Dy())
	z.DrawOp = draw.Over
	circle(z, cx, cy, r)
	z.Draw(dst, b, src, image.Point{})
}

// circle adds a circle path approximated by four cubic Béziers.
func circle(z *vector.Rasterizer, cx, cy, r float32) {
	const k = 0.551915024494
	a := k * r
	z.MoveTo(cx+r, cy)
	z.CubeTo(cx+r, cy+a, cx+a, cy+r, cx, cy+r)
	z.CubeTo(cx-a, cy+r, cx-r, cy+a, cx-r, cy)
	z.CubeTo(cx-r, cy-a, cx-a, cy-r, cx, cy-r)
	z.CubeTo(cx+a, cy-r, cx+r, cy-a, cx+r, cy)
	z.ClosePath()
}

// Cache memoizes surfaces. The zero value is ready to use.
type Cache struct {
	discs map[Style]*image.RGBA
	masks map[maskKey]*image.RGBA
}

type maskKey struct {
	src image.Image
	d   int
}

// maxEntries bounds each map of a Cache; a full map is dropped.
const maxEntries = 64

// Disc is like the package function Disc, but memoized.
func (c *Cache) Disc(s Style) (*image.RGBA, error) {
	if img, ok := c.discs[s]; ok {
		return img, nil
	}
	img, err := Disc(s)
	if err != nil {
		return nil, err
	}
	if c.discs == nil || len(c.discs) >= maxEntries {
		c.discs = make(map[Style]*image.RGBA)
	}
	c.discs[s] = img
	return img, nil
}

// Mask is like the package function Mask, but memoized for comparable
// images, which all the image types of package image are.
func (c *Cache) Mask(src image.Image, d int) (*image.RGBA, error) {
	if src == nil || !reflect.ValueOf(src).Comparable() {
		return Mask(src, d)
	}
	k := maskKey{src, d}
	if img, ok := c.masks[k]; ok {
		return img, nil
	}
	img, err := Mask(src, d)
	if err != nil {
		return nil, err
	}
	if c.masks == nil || len(c.masks) >= maxEntries {
		c.masks = make(map[maskKey]*image.RGBA)
	}
	c.masks[k] = img
	return img, nil
}
