package component

import (
	"fmt"
	"math"
	"strings"
)

// DirectionFilter restricts which side a mover may approach from.
type DirectionFilter int

const (
	DirectionAny DirectionFilter = iota
	DirectionFromLeft
	DirectionFromRight
)

func (d DirectionFilter) String() string {
	switch d {
	case DirectionFromLeft:
		return "left"
	case DirectionFromRight:
		return "right"
	default:
		return "any"
	}
}

func ParseDirection(s string) (DirectionFilter, bool) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "", "any":
		return DirectionAny, true
	case "left", "from_left":
		return DirectionFromLeft, true
	case "right", "from_right":
		return DirectionFromRight, true
	}
	return DirectionAny, false
}

// ProximityRule triggers a drop platform. JumpToDisable switches the waiting
// phase into the jump-to-disable mode; JumpMargin is how far below the
// platform top a falling mover has to be.
type ProximityRule struct {
	TriggerDistance float64
	Direction       DirectionFilter
	MinHoldDelay    float64
	MaxHoldTimeout  float64
	JumpToDisable   bool
	JumpMargin      float64

	// Consumed is set once the rule fired; it never resets within a scene.
	Consumed bool
}

func (r ProximityRule) Validate() error {
	switch {
	case math.IsNaN(r.TriggerDistance) || r.TriggerDistance < 0:
		return fmt.Errorf("%w: trigger distance %v", ErrInvalidRule, r.TriggerDistance)
	case math.IsNaN(r.MinHoldDelay) || r.MinHoldDelay < 0:
		return fmt.Errorf("%w: min hold %v", ErrInvalidRule, r.MinHoldDelay)
	case math.IsNaN(r.MaxHoldTimeout) || math.IsInf(r.MaxHoldTimeout, 0) || r.MaxHoldTimeout <= 0:
		return fmt.Errorf("%w: max hold timeout %v", ErrInvalidRule, r.MaxHoldTimeout)
	case r.MinHoldDelay > r.MaxHoldTimeout:
		return fmt.Errorf("%w: min hold %v exceeds timeout %v", ErrInvalidRule, r.MinHoldDelay, r.MaxHoldTimeout)
	case math.IsNaN(r.JumpMargin):
		return fmt.Errorf("%w: jump margin is NaN", ErrInvalidRule)
	}
	return nil
}
