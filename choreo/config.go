package choreo

import (
	"fmt"
	"math"

	"github.com/milk9111/trapline/ecs/component"
)

// ActorConfig describes one hazard at creation time. Only the timing block
// matching the actor's kind is read.
type ActorConfig struct {
	// Name is optional; when set it must be unique in the scene.
	Name     string
	Geometry component.Geometry

	Retract component.RetractTiming
	Vibrate component.VibrateTiming
	Drop    component.DropTiming

	// ArmThreshold is the visible fraction at which a retractable hazard
	// becomes lethal. Nil means the default of 0.5; zero makes the first
	// visible pixel lethal.
	ArmThreshold *float64
	// RevealChain makes a death on this actor reveal its whole chain.
	RevealChain bool
	// OnHit is the death callback. A nil OnHit makes the actor a decoy whose
	// gate never opens on its own.
	OnHit func(DeathEvent)
}

// Threshold returns a pointer to v, for ActorConfig.ArmThreshold.
func Threshold(v float64) *float64 {
	return &v
}

func (c ActorConfig) validate(kind component.Kind) error {
	if !kind.Valid() {
		return fmt.Errorf("%w: %d", component.ErrUnknownKind, kind)
	}
	if t := c.ArmThreshold; t != nil && (math.IsNaN(*t) || *t < 0 || *t > 1) {
		return fmt.Errorf("%w: arm threshold %v", component.ErrInvalidTiming, *t)
	}
	switch kind {
	case component.KindRetractable:
		return c.Retract.Validate()
	case component.KindVibrating:
		return c.Vibrate.Validate()
	case component.KindDropPlatform:
		return c.Drop.Validate()
	}
	return nil
}

func (c ActorConfig) build(kind component.Kind) *component.Actor {
	a := component.NewActor(kind, c.Name, c.Geometry)
	a.Retract = c.Retract
	a.Vibrate = c.Vibrate
	a.Drop = c.Drop
	if c.ArmThreshold != nil {
		a.ArmThreshold = *c.ArmThreshold
	}
	a.RevealChain = c.RevealChain
	a.Decoy = c.OnHit == nil
	return a
}
