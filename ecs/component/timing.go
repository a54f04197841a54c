package component

import (
	"fmt"
	"math"
)

// RetractTiming drives a retractable hazard. All values are seconds.
type RetractTiming struct {
	Extend     float64
	Retract    float64
	CycleDelay float64
}

// VibrateTiming drives a one-shot vibrating hazard. Amplitude/Frequency add a
// jitter along the mounting direction while in hold.
type VibrateTiming struct {
	FadeIn    float64
	Hold      float64
	FadeOut   float64
	Amplitude float64
	Frequency float64
}

// DropTiming drives a drop platform. DropDistance is in world units.
type DropTiming struct {
	DropDuration  float64
	DropDistance  float64
	ArmDelay      float64
	RaiseDuration float64
}

func badDuration(v float64) bool {
	return math.IsNaN(v) || math.IsInf(v, 0) || v < 0
}

func (t RetractTiming) Validate() error {
	if badDuration(t.Extend) || badDuration(t.Retract) || badDuration(t.CycleDelay) {
		return fmt.Errorf("%w: retract timing %+v", ErrInvalidTiming, t)
	}
	return nil
}

func (t VibrateTiming) Validate() error {
	if badDuration(t.FadeIn) || badDuration(t.Hold) || badDuration(t.FadeOut) || badDuration(t.Frequency) {
		return fmt.Errorf("%w: vibrate timing %+v", ErrInvalidTiming, t)
	}
	return nil
}

func (t DropTiming) Validate() error {
	if badDuration(t.DropDuration) || badDuration(t.ArmDelay) || badDuration(t.RaiseDuration) || math.IsNaN(t.DropDistance) {
		return fmt.Errorf("%w: drop timing %+v", ErrInvalidTiming, t)
	}
	return nil
}
