package component

import "github.com/milk9111/trapline/common"

// Visual is the presentation state pushed to the renderer.
type Visual struct {
	Opacity float64
	// Offset is the current distance from Anchor along the mount direction.
	// For drop platforms it is the downward platform displacement.
	Offset float64
	// Reveal is how far the hazard is toward fully shown, in [0,1].
	Reveal float64
	// Jitter is a cosmetic displacement added on top of Offset.
	Jitter float64
}

// DropState is runtime data only drop platforms use.
type DropState struct {
	SinceTrigger float64
	HazardArmed  bool
	Disarmed     bool
	RaiseFrom    float64
	FadeFrom     float64
}

// Actor is one hazard instance. It is owned by a single World; collaborators
// only ever see copies.
type Actor struct {
	Name     string
	Kind     Kind
	Geometry Geometry
	Visual   Visual

	Phase      Phase
	PhaseTimer float64
	GateOpen   bool
	Revealed   bool
	CycleCount int

	// Armed marks a pending startAnimation; StartDelay is its delay.
	Armed      bool
	StartDelay float64

	// ChangedTick is the World tick on which Phase last changed.
	ChangedTick uint64
	// Transitions counts phase changes inside the current tick.
	Transitions int

	Retract RetractTiming
	Vibrate VibrateTiming
	Drop    DropTiming

	// NextWait and CycleWait are chain-derived: the longest outgoing link
	// delay and the chain's cycle delay. The World keeps them current.
	NextWait  float64
	CycleWait float64

	Rule      *ProximityRule
	DropState DropState

	// ArmThreshold is the visible fraction at which a retractable hazard
	// becomes lethal.
	ArmThreshold float64
	// Decoy hazards never open their gate on their own.
	Decoy bool
	// RevealChain widens a death reveal to the whole chain.
	RevealChain bool
	// DeathFired records that the death callback already ran.
	DeathFired bool
}

// NewActor builds an actor in its kind's initial phase.
func NewActor(kind Kind, name string, geom Geometry) *Actor {
	a := &Actor{
		Name:         name,
		Kind:         kind,
		Geometry:     geom,
		Phase:        InitialPhase(kind),
		ArmThreshold: 0.5,
	}
	switch kind {
	case KindRetractable:
		a.Visual.Offset = geom.HiddenOffset
	case KindVibrating:
		a.Visual.Offset = geom.VisibleOffset
	}
	return a
}

// Progress is clamp(timer/duration, 0, 1); non-positive durations are
// already complete.
func Progress(timer, duration float64) float64 {
	if duration <= 0 {
		return 1
	}
	return common.Clamp01(timer / duration)
}

// Advance adds dt to the phase timer, keeping it within [0,duration], and
// returns the progress through the phase.
func (a *Actor) Advance(dt, duration float64) float64 {
	if a == nil {
		return 0
	}
	if duration <= 0 {
		a.PhaseTimer = 0
		return 1
	}
	a.PhaseTimer += common.SanitizeDelta(dt)
	if a.PhaseTimer > duration {
		a.PhaseTimer = duration
	}
	p := Progress(a.PhaseTimer, duration)
	if common.ApproxGE(a.PhaseTimer, duration) {
		p = 1
	}
	return p
}

// TransitionTo is the only way an actor changes phase. Revealed actors are
// frozen and the call reports false.
func (a *Actor) TransitionTo(p Phase, tick uint64) bool {
	if a == nil || a.Revealed {
		return false
	}
	a.Phase = p
	a.PhaseTimer = 0
	a.ChangedTick = tick
	a.Transitions++
	return true
}

// Position is the actor's current world position including jitter.
func (a *Actor) Position() Vec {
	if a == nil {
		return Vec{}
	}
	if a.Kind == KindDropPlatform {
		return a.Geometry.Anchor.Add(Vec{Y: a.Visual.Offset})
	}
	return a.Geometry.PositionAt(a.Visual.Offset + a.Visual.Jitter)
}

// PhaseDuration is the length of the actor's current phase, used to bound
// PhaseTimer. Passive phases have zero length.
func (a *Actor) PhaseDuration() float64 {
	switch a.Phase {
	case PhaseWaiting, PhaseDormant, PhaseIdle:
		if a.Armed {
			return a.StartDelay
		}
	case PhaseExtending:
		return a.Retract.Extend
	case PhaseRetracting:
		return a.Retract.Retract
	case PhaseWaitingForNext:
		return a.NextWait
	case PhaseCycleComplete:
		return a.CycleWait
	case PhaseFadeIn:
		return a.Vibrate.FadeIn
	case PhaseHold:
		return a.Vibrate.Hold
	case PhaseFadeOut:
		return a.Vibrate.FadeOut
	case PhaseDropping:
		return a.Drop.DropDuration
	case PhaseHolding:
		if a.Rule != nil {
			return a.Rule.MaxHoldTimeout
		}
	case PhaseRaising:
		return a.Drop.RaiseDuration
	}
	return 0
}
