package system

import (
	"math"

	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
)

// VibrateSystem drives one-shot vibrating hazards:
// dormant -> fadeIn -> hold -> fadeOut -> permanentlyHidden.
// Opacity is cosmetic here; the gate stays open for the actor's lifetime.
type VibrateSystem struct{}

func NewVibrateSystem() *VibrateSystem { return &VibrateSystem{} }

func (s *VibrateSystem) Kind() component.Kind { return component.KindVibrating }

func (s *VibrateSystem) Step(w *ecs.World, e ecs.Entity, a *component.Actor, dt float64) {
	if w == nil || a == nil || a.Revealed {
		return
	}
	step := dt
	if a.ChangedTick == w.Tick() {
		step = 0
	}
	for a.Transitions < maxTransitionsPerTick {
		if !s.stepOnce(w, e, a, step) || a.Revealed {
			return
		}
		step = 0
	}
}

func (s *VibrateSystem) stepOnce(w *ecs.World, e ecs.Entity, a *component.Actor, dt float64) bool {
	switch a.Phase {
	case component.PhaseDormant:
		if !a.Armed {
			return false
		}
		if a.Advance(dt, a.StartDelay) < 1 {
			return false
		}
		a.Armed = false
		return w.Transition(e, a, component.PhaseFadeIn)

	case component.PhaseFadeIn:
		p := a.Advance(dt, a.Vibrate.FadeIn)
		a.Visual.Opacity = p
		a.Visual.Reveal = p
		if p < 1 {
			return false
		}
		return w.Transition(e, a, component.PhaseHold)

	case component.PhaseHold:
		p := a.Advance(dt, a.Vibrate.Hold)
		a.Visual.Opacity = 1
		a.Visual.Reveal = 1
		a.Visual.Jitter = vibrationJitter(a.Vibrate, a.PhaseTimer)
		if p < 1 {
			return false
		}
		a.Visual.Jitter = 0
		return w.Transition(e, a, component.PhaseFadeOut)

	case component.PhaseFadeOut:
		p := a.Advance(dt, a.Vibrate.FadeOut)
		a.Visual.Opacity = 1 - p
		a.Visual.Reveal = 1 - p
		if p < 1 {
			return false
		}
		a.Visual.Opacity = 0
		a.Visual.Reveal = 0
		return w.Transition(e, a, component.PhasePermanentlyHidden)
	}
	return false
}

func vibrationJitter(t component.VibrateTiming, elapsed float64) float64 {
	if t.Amplitude == 0 || t.Frequency <= 0 {
		return 0
	}
	return t.Amplitude * math.Sin(2*math.Pi*t.Frequency*elapsed)
}

// Arm (re)starts the one-shot after delay seconds.
func (s *VibrateSystem) Arm(w *ecs.World, e ecs.Entity, a *component.Actor, delay float64) {
	if a == nil || a.Revealed {
		return
	}
	a.Visual.Opacity = 0
	a.Visual.Reveal = 0
	a.Visual.Jitter = 0
	if delay <= 0 {
		a.Armed = false
		w.Transition(e, a, component.PhaseFadeIn)
		return
	}
	w.Transition(e, a, component.PhaseDormant)
	a.Armed = true
	a.StartDelay = delay
}
