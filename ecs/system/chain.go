package system

import (
	"github.com/milk9111/trapline/common"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
)

// maxTransitionsPerTick bounds how many phases one actor may pass through in
// a single tick when phases or delays are zero-length.
const maxTransitionsPerTick = 8

// ChainSystem drives retractable hazards and the chains they form:
// waiting -> extending -> retracting -> waitingForNext -> chainAdvanced, and
// for the chain as a whole cycleComplete -> restart.
type ChainSystem struct{}

func NewChainSystem() *ChainSystem { return &ChainSystem{} }

func (s *ChainSystem) Kind() component.Kind { return component.KindRetractable }

func (s *ChainSystem) Step(w *ecs.World, e ecs.Entity, a *component.Actor, dt float64) {
	if w == nil || a == nil || a.Revealed {
		return
	}
	step := dt
	if a.ChangedTick == w.Tick() {
		// already moved by a parent this tick; it starts next tick
		step = 0
	}
	for a.Transitions < maxTransitionsPerTick {
		if !s.stepOnce(w, e, a, step) || a.Revealed {
			return
		}
		step = 0
	}
}

func (s *ChainSystem) stepOnce(w *ecs.World, e ecs.Entity, a *component.Actor, dt float64) bool {
	switch a.Phase {
	case component.PhaseWaiting:
		if !a.Armed {
			return false
		}
		if a.Advance(dt, a.StartDelay) < 1 {
			return false
		}
		a.Armed = false
		return w.Transition(e, a, component.PhaseExtending)

	case component.PhaseExtending:
		p := a.Advance(dt, a.Retract.Extend)
		PoseRetractable(a, p)
		if p < 1 {
			return false
		}
		return w.Transition(e, a, component.PhaseRetracting)

	case component.PhaseRetracting:
		p := a.Advance(dt, a.Retract.Retract)
		PoseRetractable(a, 1-p)
		if p < 1 {
			return false
		}
		return s.finishRetract(w, e, a)

	case component.PhaseWaitingForNext:
		a.Advance(dt, a.NextWait)
		return s.fireReadyLinks(w, e, a)

	case component.PhaseCycleComplete:
		return s.stepCycle(w, e, a, dt)
	}
	return false
}

// PoseRetractable places a retractable hazard at visible fraction frac.
func PoseRetractable(a *component.Actor, frac float64) {
	frac = common.Clamp01(frac)
	a.Visual.Reveal = frac
	a.Visual.Opacity = frac
	a.Visual.Offset = common.Lerp(a.Geometry.HiddenOffset, a.Geometry.VisibleOffset, frac)
}

func (s *ChainSystem) finishRetract(w *ecs.World, e ecs.Entity, a *component.Actor) bool {
	if len(w.Graph().Outgoing(e)) > 0 {
		return w.Transition(e, a, component.PhaseWaitingForNext)
	}
	chain := w.ChainOf(e)
	if chain == nil || !chain.MarkSinkDone(e) {
		return w.Transition(e, a, component.PhaseChainAdvanced)
	}
	s.completeCycle(w, chain)
	return true
}

// completeCycle parks every member in cycleComplete at once. Without a cycle
// delay the chain restarts in the same tick, since the driver may already
// have been stepped.
func (s *ChainSystem) completeCycle(w *ecs.World, chain *ecs.Chain) {
	chain.CycleTimer = 0
	for _, m := range chain.Members {
		if ma, ok := w.Actor(m); ok {
			w.Transition(m, ma, component.PhaseCycleComplete)
		}
	}
	if chain.CycleDelay <= 0 {
		s.Restart(w, chain)
	}
}

func (s *ChainSystem) fireReadyLinks(w *ecs.World, e ecs.Entity, a *component.Actor) bool {
	pending := false
	for _, l := range w.Graph().Outgoing(e) {
		if l.Fired {
			continue
		}
		if !common.ApproxGE(a.PhaseTimer, l.InterDelay) {
			pending = true
			continue
		}
		l.Fired = true
		w.Events().Push(ecs.Event{Kind: ecs.EventLinkFired, Entity: e, Target: l.To, Tick: w.Tick()})
		s.tryStart(w, l.To)
	}
	if pending {
		return false
	}
	return w.Transition(e, a, component.PhaseChainAdvanced)
}

// tryStart moves a waiting target into extending once all its incoming links
// have fired.
func (s *ChainSystem) tryStart(w *ecs.World, target ecs.Entity) {
	ta, ok := w.Actor(target)
	if !ok || ta.Revealed || ta.Phase != component.PhaseWaiting {
		return
	}
	for _, l := range w.Graph().Incoming(target) {
		if !l.Fired {
			return
		}
	}
	ta.Armed = false
	w.Transition(target, ta, component.PhaseExtending)
}

func (s *ChainSystem) stepCycle(w *ecs.World, e ecs.Entity, a *component.Actor, dt float64) bool {
	p := a.Advance(dt, a.CycleWait)
	chain := w.ChainOf(e)
	if chain == nil || chainDriver(w, chain) != e {
		return false
	}
	chain.CycleTimer = a.PhaseTimer
	if p < 1 {
		return false
	}
	s.Restart(w, chain)
	return true
}

// chainDriver is the first member that can still change phase.
func chainDriver(w *ecs.World, chain *ecs.Chain) ecs.Entity {
	for _, m := range chain.Members {
		if a, ok := w.Actor(m); ok && !a.Revealed {
			return m
		}
	}
	return 0
}

// Restart begins a new cycle: heads extend, everything else waits.
func (s *ChainSystem) Restart(w *ecs.World, chain *ecs.Chain) {
	s.reset(w, chain)
	for _, m := range chain.Members {
		ma, ok := w.Actor(m)
		if !ok || ma.Revealed {
			continue
		}
		ma.CycleCount++
		if chain.IsHead(m) {
			w.Transition(m, ma, component.PhaseExtending)
		} else {
			w.Transition(m, ma, component.PhaseWaiting)
		}
	}
	w.Events().Push(ecs.Event{Kind: ecs.EventChainCycled, Entity: chain.First(), Tick: w.Tick()})
}

// Arm puts the whole chain back at rest and schedules its heads to extend
// after delay seconds. A non-positive delay starts them immediately.
func (s *ChainSystem) Arm(w *ecs.World, chain *ecs.Chain, delay float64) {
	s.reset(w, chain)
	for _, m := range chain.Members {
		ma, ok := w.Actor(m)
		if !ok || ma.Revealed {
			continue
		}
		switch {
		case !chain.IsHead(m):
			w.Transition(m, ma, component.PhaseWaiting)
		case delay <= 0:
			w.Transition(m, ma, component.PhaseExtending)
		default:
			w.Transition(m, ma, component.PhaseWaiting)
			ma.Armed = true
			ma.StartDelay = delay
		}
	}
}

func (s *ChainSystem) reset(w *ecs.World, chain *ecs.Chain) {
	chain.ResetCycle()
	for _, m := range chain.Members {
		for _, l := range w.Graph().Outgoing(m) {
			l.Fired = false
		}
		if ma, ok := w.Actor(m); ok && !ma.Revealed {
			ma.Armed = false
			PoseRetractable(ma, 0)
		}
	}
}
