package prefabs

import (
	"fmt"
	"image/color"

	"github.com/milk9111/trapline/choreo"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
)

// Scene is a level built into a runner.
type Scene struct {
	Spec   *LevelSpec
	Actors map[string]ecs.Entity
	Colors map[ecs.Entity]color.Color
}

// Build creates every hazard, link and proximity rule of spec on r, then
// starts the hazards that carry a start delay. Non-decoy hazards report deaths
// to onDeath.
func Build(r *choreo.Runner, spec *LevelSpec, onDeath func(choreo.DeathEvent)) (*Scene, error) {
	if r == nil || spec == nil {
		return nil, fmt.Errorf("prefabs: build: nil runner or spec")
	}
	scene := &Scene{
		Spec:   spec,
		Actors: make(map[string]ecs.Entity, len(spec.Hazards)),
		Colors: make(map[ecs.Entity]color.Color),
	}

	for i, h := range spec.Hazards {
		kind, ok := component.ParseKind(h.Kind)
		if !ok {
			return nil, fmt.Errorf("prefabs: hazard %d %q: %w: %q", i, h.Name, component.ErrUnknownKind, h.Kind)
		}
		cfg, err := actorConfig(h, onDeath)
		if err != nil {
			return nil, fmt.Errorf("prefabs: hazard %d %q: %w", i, h.Name, err)
		}
		e, err := r.CreateActor(kind, cfg)
		if err != nil {
			return nil, fmt.Errorf("prefabs: hazard %d %q: %w", i, h.Name, err)
		}
		if h.Name != "" {
			scene.Actors[h.Name] = e
		}
		if h.Color != nil && h.Color.Color != nil {
			scene.Colors[e] = h.Color.Color
		}
		if h.Proximity != nil {
			rule, err := proximityRule(*h.Proximity)
			if err != nil {
				return nil, fmt.Errorf("prefabs: hazard %q: %w", h.Name, err)
			}
			if err := r.SetProximityRule(e, rule); err != nil {
				return nil, fmt.Errorf("prefabs: hazard %q: %w", h.Name, err)
			}
		}
	}

	for _, l := range spec.Links {
		from, ok := scene.Actors[l.From]
		if !ok {
			return nil, fmt.Errorf("prefabs: link %s -> %s: unknown hazard %q", l.From, l.To, l.From)
		}
		to, ok := scene.Actors[l.To]
		if !ok {
			return nil, fmt.Errorf("prefabs: link %s -> %s: unknown hazard %q", l.From, l.To, l.To)
		}
		if err := r.Link(from, to, l.Delay); err != nil {
			return nil, fmt.Errorf("prefabs: link %s -> %s: %w", l.From, l.To, err)
		}
	}

	for _, h := range spec.Hazards {
		if h.StartDelay == nil {
			continue
		}
		e, ok := scene.Actors[h.Name]
		if !ok {
			return nil, fmt.Errorf("prefabs: start delay on unnamed hazard")
		}
		if err := r.StartAnimation(e, *h.StartDelay); err != nil {
			return nil, fmt.Errorf("prefabs: start %q: %w", h.Name, err)
		}
	}

	return scene, nil
}

func actorConfig(h HazardSpec, onDeath func(choreo.DeathEvent)) (choreo.ActorConfig, error) {
	orient, ok := component.ParseOrientation(h.Geometry.Orientation)
	if !ok {
		return choreo.ActorConfig{}, fmt.Errorf("unknown orientation %q", h.Geometry.Orientation)
	}
	cfg := choreo.ActorConfig{
		Name: h.Name,
		Geometry: component.Geometry{
			Anchor:        component.Vec{X: h.Geometry.Anchor.X, Y: h.Geometry.Anchor.Y},
			Orientation:   orient,
			HiddenOffset:  h.Geometry.HiddenOffset,
			VisibleOffset: h.Geometry.VisibleOffset,
			Size:          component.Vec{X: h.Geometry.Size.X, Y: h.Geometry.Size.Y},
		},
		ArmThreshold: h.ArmThreshold,
		RevealChain:  h.RevealChain,
	}
	if h.Retract != nil {
		cfg.Retract = component.RetractTiming{Extend: h.Retract.Extend, Retract: h.Retract.Retract, CycleDelay: h.Retract.CycleDelay}
	}
	if h.Vibrate != nil {
		cfg.Vibrate = component.VibrateTiming{
			FadeIn:    h.Vibrate.FadeIn,
			Hold:      h.Vibrate.Hold,
			FadeOut:   h.Vibrate.FadeOut,
			Amplitude: h.Vibrate.Amplitude,
			Frequency: h.Vibrate.Frequency,
		}
	}
	if h.Drop != nil {
		cfg.Drop = component.DropTiming{
			DropDuration:  h.Drop.Duration,
			DropDistance:  h.Drop.Distance,
			ArmDelay:      h.Drop.ArmDelay,
			RaiseDuration: h.Drop.RaiseDuration,
		}
	}
	if !h.Decoy {
		cfg.OnHit = onDeath
		if cfg.OnHit == nil {
			cfg.OnHit = func(choreo.DeathEvent) {}
		}
	}
	return cfg, nil
}

func proximityRule(p ProximitySpec) (component.ProximityRule, error) {
	dir, ok := component.ParseDirection(p.Direction)
	if !ok {
		return component.ProximityRule{}, fmt.Errorf("unknown direction %q", p.Direction)
	}
	return component.ProximityRule{
		TriggerDistance: p.Distance,
		Direction:       dir,
		MinHoldDelay:    p.MinHold,
		MaxHoldTimeout:  p.MaxHold,
		JumpToDisable:   p.JumpToDisable,
		JumpMargin:      p.JumpMargin,
	}, nil
}
