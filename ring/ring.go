// SPDX-License-Identifier: Unlicense OR MIT

/*
Package ring computes the geometry of a radial menu: the radius of the
radial items, the radius of the ring they are placed on and the angular
position of every item inside a square canvas.

Items are circles of radius r placed around a virtual circle of radius R.
The number of such circles that fit around the ring without overlapping
is

	n = floor(π / asin(r / (R + r)))

and, conversely, the largest r for which n circles fit is

	r = R·sin(π/n) / (1 − sin(π/n))

Solve keeps one circle-width of the ring empty, so N items need room for
N+1 circles.

The coordinate space has the origin in the top left corner with the axes
extending right and down. Item 0 sits straight above the center and the
remaining items follow clockwise.
*/
package ring

import (
	"math"

	"gioui.org/f32"
)

// Geometry is the resolved arrangement of a menu in a canvas. It is
// recomputed on every layout pass and never stored.
type Geometry struct {
	// Canvas is the side of the square canvas.
	Canvas int
	// RingRadius is the radius of the virtual circle, not including
	// the contribution of the items themselves.
	RingRadius float32
	// ItemRadius is the effective radius of every radial item.
	ItemRadius float32
	// CenterRadius is the radius of the center item.
	CenterRadius float32
	// Center is the center of the canvas.
	Center f32.Point
	// Positions holds the centers of the radial items, in
	// declaration order.
	Positions []f32.Point
}

// fitEpsilon absorbs rounding so that a radius computed by FitRadius,
// even after a round trip through float32, is counted as fitting by
// FitCount.
const fitEpsilon = 1e-4

// Solve lays out n radial items in a square canvas. The requested
// item radius is shrunk when the items would not fit around the ring
// with a spare gap; the center radius is limited to the space inside
// the ring.
//
// A non-positive canvas results in a zero Geometry. Zero items result
// in a Geometry with only the center item.
func Solve(canvas, n, itemRadius, centerRadius int) Geometry {
	if canvas <= 0 || itemRadius <= 0 {
		return Geometry{}
	}
	if n < 0 {
		n = 0
	}
	half := float64(canvas) / 2
	req := float64(itemRadius)
	g := Geometry{
		Canvas: canvas,
		Center: f32.Pt(float32(half), float32(half)),
	}
	if n == 0 {
		rr := math.Max(half-2*req, 0)
		g.RingRadius = float32(rr)
		g.ItemRadius = float32(req)
		g.CenterRadius = float32(math.Min(float64(max(centerRadius, 0)), rr))
		return g
	}

	// First pass: ring derived from the requested radius.
	rr := half - 2*req
	r := req
	if req > rr || FitCount(rr, req) < n+1 {
		r = math.Min(req, bound(half, n+1))
		if rr > 0 {
			r = math.Min(r, FitRadius(rr, n+1))
		}
	}
	// Second pass: ring derived from the effective radius.
	rr = math.Max(half-2*r, 0)

	g.RingRadius = float32(rr)
	g.ItemRadius = float32(r)
	g.CenterRadius = float32(math.Min(float64(max(centerRadius, 0)), rr))
	g.Positions = make([]f32.Point, n)
	d := rr + r
	for i := range g.Positions {
		sin, cos := math.Sincos(Angle(i, n))
		g.Positions[i] = f32.Pt(float32(half+d*cos), float32(half+d*sin))
	}
	return g
}

// FitCount returns the number of circles of radius r that fit around a
// ring of radius R without overlapping.
func FitCount(R, r float64) int {
	if r <= 0 || R+r <= 0 {
		return 0
	}
	x := r / (R + r)
	if x > 1 {
		return 1
	}
	return int(math.Floor(math.Pi/math.Asin(x) + fitEpsilon))
}

// FitRadius returns the largest radius of n circles that fit around a
// ring of radius R. The result is +Inf when any radius fits, which is
// the case for n <= 2.
func FitRadius(R float64, n int) float64 {
	if n <= 2 {
		return math.Inf(1)
	}
	s := math.Sin(math.Pi / float64(n))
	return R * s / (1 - s)
}

// bound is the largest radius r of n circles such that the ring
// recomputed as half-2r still fits them.
func bound(half float64, n int) float64 {
	s := 1.0
	if n > 2 {
		s = math.Sin(math.Pi / float64(n))
	}
	return half * s / (1 + s)
}

// Angle returns the angle in radians of item i out of n. Item 0 is
// at 270°, that is straight up in a y-down coordinate space.
func Angle(i, n int) float64 {
	if n <= 0 {
		return 1.5 * math.Pi
	}
	deg := 270 + float64(i)*360/float64(n)
	return deg * math.Pi / 180
}

// Radial reports the number of radial items in g.
func (g Geometry) Radial() int {
	return len(g.Positions)
}

// Empty reports whether g is a degenerate, zero-sized geometry.
func (g Geometry) Empty() bool {
	return g.Canvas <= 0
}
