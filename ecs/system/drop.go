package system

import (
	"github.com/milk9111/trapline/common"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
)

// DropSystem drives drop-away platforms:
// idle -> dropping -> waiting -> raising -> disabled.
// Disabled is terminal; a platform reacts to proximity at most once.
type DropSystem struct{}

func NewDropSystem() *DropSystem { return &DropSystem{} }

func (s *DropSystem) Kind() component.Kind { return component.KindDropPlatform }

func (s *DropSystem) Step(w *ecs.World, e ecs.Entity, a *component.Actor, dt float64) {
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

func (s *DropSystem) stepOnce(w *ecs.World, e ecs.Entity, a *component.Actor, dt float64) bool {
	switch a.Phase {
	case component.PhaseIdle:
		if a.Armed {
			if a.Advance(dt, a.StartDelay) < 1 {
				return false
			}
			a.Armed = false
			return s.trigger(w, e, a)
		}
		if a.Rule == nil || a.Rule.Consumed {
			return false
		}
		m, ok := w.Mover()
		if !ok || !Triggers(m, a.Geometry.Anchor, *a.Rule) {
			return false
		}
		return s.trigger(w, e, a)

	case component.PhaseDropping:
		p := a.Advance(dt, a.Drop.DropDuration)
		a.DropState.SinceTrigger += dt
		a.Visual.Offset = common.Lerp(0, a.Drop.DropDistance, p)
		s.checkArm(a)
		if p < 1 {
			return false
		}
		return w.Transition(e, a, component.PhaseHolding)

	case component.PhaseHolding:
		a.DropState.SinceTrigger += dt
		s.checkArm(a)
		a.Advance(dt, holdTimeout(a))
		return s.checkHoldExit(w, e, a)

	case component.PhaseRaising:
		p := a.Advance(dt, a.Drop.RaiseDuration)
		a.Visual.Offset = common.Lerp(a.DropState.RaiseFrom, 0, p)
		if a.DropState.HazardArmed {
			a.Visual.Opacity = common.Lerp(a.DropState.FadeFrom, 0, p)
			a.Visual.Reveal = a.Visual.Opacity
		}
		if p < 1 {
			return false
		}
		a.DropState.HazardArmed = false
		a.Visual.Opacity = 0
		a.Visual.Reveal = 0
		a.GateOpen = false
		return w.Transition(e, a, component.PhaseDisabled)
	}
	return false
}

func holdTimeout(a *component.Actor) float64 {
	if a.Rule == nil {
		return 0
	}
	return a.Rule.MaxHoldTimeout
}

// trigger consumes the rule and starts the drop.
func (s *DropSystem) trigger(w *ecs.World, e ecs.Entity, a *component.Actor) bool {
	if a.Rule != nil {
		a.Rule.Consumed = true
	}
	a.DropState.SinceTrigger = 0
	return w.Transition(e, a, component.PhaseDropping)
}

// checkArm shows and arms the hazard once armDelay has passed since the drop
// started, independent of where the platform is.
func (s *DropSystem) checkArm(a *component.Actor) {
	if a.DropState.HazardArmed || a.DropState.Disarmed {
		return
	}
	if !common.ApproxGE(a.DropState.SinceTrigger, a.Drop.ArmDelay) {
		return
	}
	a.DropState.HazardArmed = true
	a.Visual.Opacity = 1
	a.Visual.Reveal = 1
}

// checkHoldExit races the waiting phase's exits. In jump-to-disable mode the
// presence exit is replaced by the jump check; the timeout always applies.
func (s *DropSystem) checkHoldExit(w *ecs.World, e ecs.Entity, a *component.Actor) bool {
	rule := a.Rule
	if rule == nil {
		return s.beginRaise(w, e, a)
	}
	m, hasMover := w.Mover()
	if rule.JumpToDisable {
		if hasMover && JumpDetected(m, a, *rule) {
			s.disarm(w, e, a)
			return s.beginRaise(w, e, a)
		}
	} else if common.ApproxGE(a.PhaseTimer, rule.MinHoldDelay) {
		if !hasMover || !WithinDistance(m, a.Geometry.Anchor, rule.TriggerDistance) {
			return s.beginRaise(w, e, a)
		}
	}
	if common.ApproxGE(a.PhaseTimer, rule.MaxHoldTimeout) {
		return s.beginRaise(w, e, a)
	}
	return false
}

func (s *DropSystem) beginRaise(w *ecs.World, e ecs.Entity, a *component.Actor) bool {
	a.DropState.RaiseFrom = a.Visual.Offset
	a.DropState.FadeFrom = a.Visual.Opacity
	return w.Transition(e, a, component.PhaseRaising)
}

func (s *DropSystem) disarm(w *ecs.World, e ecs.Entity, a *component.Actor) {
	a.DropState.HazardArmed = false
	a.DropState.Disarmed = true
	a.GateOpen = false
	a.Visual.Opacity = 0
	a.Visual.Reveal = 0
	w.Events().Push(ecs.Event{Kind: ecs.EventDisarmed, Entity: e, Tick: w.Tick(), From: a.Phase, To: a.Phase})
}

// Arm schedules a manual drop on an idle platform, bypassing its proximity
// rule. The rule counts as consumed once the drop starts.
func (s *DropSystem) Arm(w *ecs.World, e ecs.Entity, a *component.Actor, delay float64) bool {
	if a == nil || a.Revealed || a.Phase != component.PhaseIdle {
		return false
	}
	if delay <= 0 {
		a.Armed = false
		return s.trigger(w, e, a)
	}
	a.Armed = true
	a.StartDelay = delay
	a.PhaseTimer = 0
	return true
}
