// SPDX-License-Identifier: Unlicense OR MIT

/*
Package spring implements damped spring animations driven by a host
frame clock.

A Spring moves a scalar value towards its end value as a damped harmonic
oscillator. Springs are configured with Origami style tension and
friction, the same pair of numbers design tools use for bounce
animations, and are integrated in fixed steps of one millisecond
regardless of the frame rate.

Springs never run on their own: the owner of a System calls Step with
the frame time of every frame, and the springs report progress through
their OnUpdate and OnRest callbacks.
*/
package spring

import (
	"math"
	"time"

	"github.com/charmbracelet/harmonica"
)

// Config specifies the stiffness and damping of a spring, in Origami
// units.
type Config struct {
	Tension  float64
	Friction float64
}

const (
	// solverStep is the fixed integration step.
	solverStep = time.Millisecond
	// maxFrame bounds the time a single Step integrates, so a stalled
	// frame clock doesn't make springs jump.
	maxFrame = 64 * time.Millisecond

	restSpeed        = 0.005
	restDisplacement = 0.005
)

// Coefficients returns the angular frequency and damping ratio of a
// unit mass spring with the stiffness and damping of c.
func (c Config) Coefficients() (omega, zeta float64) {
	k := (c.Tension-30)*3.62 + 194
	f := (c.Friction-8)*3 + 25
	if c.Tension == 0 {
		k = 0
	}
	if c.Friction == 0 {
		f = 0
	}
	if k <= 0 {
		return 0, 0
	}
	omega = math.Sqrt(k)
	return omega, f / (2 * omega)
}

// System advances a set of springs on a shared clock. The zero value
// is ready to use. A System is not safe for concurrent use.
type System struct {
	now      time.Time
	stepping bool
	active   []*Spring
}

// Spring is a damped oscillator owned by a System.
type Spring struct {
	sys      *System
	cfg      Config
	integ    harmonica.Spring
	value    float64
	velocity float64
	end      float64
	last     time.Time
	acc      time.Duration
	active   bool
	onUpdate func(v float64)
	onRest   func()
}

// New returns a resting spring at value 0.
func (s *System) New(cfg Config) *Spring {
	omega, zeta := cfg.Coefficients()
	return &Spring{
		sys:   s,
		cfg:   cfg,
		integ: harmonica.NewSpring(solverStep.Seconds(), omega, zeta),
	}
}

// Active reports whether any spring is moving.
func (s *System) Active() bool {
	return len(s.active) > 0
}

// Remove stops sp without calling its OnRest callback. The spring
// keeps its current value.
func (s *System) Remove(sp *Spring) {
	if sp == nil || !sp.active {
		return
	}
	sp.active = false
	for i, a := range s.active {
		if a == sp {
			s.active = append(s.active[:i], s.active[i+1:]...)
			break
		}
	}
}

// Clear stops every spring without calling callbacks.
func (s *System) Clear() {
	for _, sp := range s.active {
		sp.active = false
	}
	s.active = s.active[:0]
}

// Step advances every active spring to now. Springs activated from a
// callback, or between Steps, start moving at the next Step.
func (s *System) Step(now time.Time) {
	s.now = now
	if len(s.active) == 0 {
		return
	}
	s.stepping = true
	defer func() { s.stepping = false }()
	springs := append([]*Spring(nil), s.active...)
	for _, sp := range springs {
		if !sp.active {
			continue
		}
		sp.advance(now)
	}
}

func (s *System) activate(sp *Spring) {
	if sp.active {
		return
	}
	sp.active = true
	sp.last = time.Time{}
	if s.stepping {
		sp.last = s.now
	}
	sp.acc = 0
	s.active = append(s.active, sp)
}

func (sp *Spring) advance(now time.Time) {
	if sp.last.IsZero() {
		sp.last = now
		return
	}
	dt := now.Sub(sp.last)
	sp.last = now
	if dt <= 0 {
		return
	}
	if dt > maxFrame {
		dt = maxFrame
	}
	sp.acc += dt
	for sp.acc >= solverStep {
		sp.acc -= solverStep
		sp.value, sp.velocity = sp.integ.Update(sp.value, sp.velocity, sp.end)
	}
	resting := sp.atRest()
	if resting {
		sp.value = sp.end
		sp.velocity = 0
		sp.sys.Remove(sp)
	}
	if sp.onUpdate != nil {
		sp.onUpdate(sp.value)
	}
	if resting && sp.onRest != nil {
		sp.onRest()
	}
}

func (sp *Spring) atRest() bool {
	if sp.cfg.Tension == 0 {
		return math.Abs(sp.velocity) <= restSpeed
	}
	return math.Abs(sp.velocity) <= restSpeed && math.Abs(sp.end-sp.value) <= restDisplacement
}

// OnUpdate registers a function called with the current value after
// every Step that moved the spring.
func (sp *Spring) OnUpdate(f func(v float64)) {
	sp.onUpdate = f
}

// OnRest registers a function called once every time the spring comes
// to rest at its end value.
func (sp *Spring) OnRest(f func()) {
	sp.onRest = f
}

// SetCurrentValue moves the spring to v and stops it. The spring starts
// moving again if v is not its end value.
func (sp *Spring) SetCurrentValue(v float64) {
	sp.value = v
	sp.velocity = 0
	if !sp.atRest() {
		sp.sys.activate(sp)
	}
}

// SetEndValue sets the value the spring moves towards.
func (sp *Spring) SetEndValue(v float64) {
	sp.end = v
	if !sp.atRest() {
		sp.sys.activate(sp)
	}
}

// Value returns the current value.
func (sp *Spring) Value() float64 { return sp.value }

// Velocity returns the current velocity in units per second.
func (sp *Spring) Velocity() float64 { return sp.velocity }

// EndValue returns the value the spring moves towards.
func (sp *Spring) EndValue() float64 { return sp.end }

// IsResting reports whether the spring is not moving.
func (sp *Spring) IsResting() bool { return !sp.active }

// Config returns the spring configuration.
func (sp *Spring) Config() Config { return sp.cfg }

// MapRange maps v from the range [fromLow, fromHigh] onto [toLow,
// toHigh]. Values outside the source range are extrapolated.
func MapRange(v, fromLow, fromHigh, toLow, toHigh float64) float64 {
	if fromHigh == fromLow {
		return toLow
	}
	t := (v - fromLow) / (fromHigh - fromLow)
	return toLow + t*(toHigh-toLow)
}
