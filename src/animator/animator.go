package animator

import (
	"log"

	"zoom-follow/src/geometry"
)

const (
	// SnapThreshold is the remaining distance, in pixels, at which a field
	// jumps straight to its target.
	SnapThreshold = 5
	// StepDivisor sets the ease-out rate: each tick covers 1/StepDivisor of
	// the remaining distance.
	StepDivisor = 5
)

// Sink receives every crop the animator settles on for a tick.
type Sink interface {
	ApplyCrop(c geometry.Crop) error
}

// Animator eases the live crop toward a target, one bounded step per tick.
// It is not safe for concurrent use; the event loop owns it.
type Animator struct {
	sink      Sink
	current   geometry.Crop
	target    geometry.Crop
	hasTarget bool
}

// New returns an animator at rest on initial.
func New(sink Sink, initial geometry.Crop) *Animator {
	return &Animator{sink: sink, current: initial.NonNegative()}
}

func (a *Animator) Current() geometry.Crop { return a.current }

// Target returns the pending target, if any.
func (a *Animator) Target() (geometry.Crop, bool) { return a.target, a.hasTarget }

// Animating reports whether a target is pending.
func (a *Animator) Animating() bool { return a.hasTarget }

// SetTarget replaces the pending target. The live crop is untouched until
// the next Step.
func (a *Animator) SetTarget(c geometry.Crop) {
	a.target = c.NonNegative()
	a.hasTarget = true
}

// ClearTarget stops the animation where it is.
func (a *Animator) ClearTarget() {
	a.target = geometry.Crop{}
	a.hasTarget = false
}

// Step advances every field of the live crop toward the target and applies
// the result to the sink when it changed. It returns true when the sink was
// called. Once the live crop reaches the target, the target is cleared.
func (a *Animator) Step() bool {
	if !a.hasTarget {
		return false
	}

	next := geometry.Crop{
		Left:   approach(a.current.Left, a.target.Left),
		Top:    approach(a.current.Top, a.target.Top),
		Right:  approach(a.current.Right, a.target.Right),
		Bottom: approach(a.current.Bottom, a.target.Bottom),
	}.NonNegative()

	changed := next != a.current
	a.current = next
	if changed && a.sink != nil {
		if err := a.sink.ApplyCrop(next); err != nil {
			log.Printf("animator: sink rejected crop %v: %v", next, err)
		}
	}
	if a.current == a.target {
		a.ClearTarget()
	}
	return changed
}

// approach moves cur toward target by a fifth of the gap, snapping when the
// gap is within SnapThreshold.
func approach(cur, target int) int {
	d := target - cur
	if d >= -SnapThreshold && d <= SnapThreshold {
		return target
	}
	return cur + d/StepDivisor
}
