package system

import (
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
)

// Reveal freezes a in a fully visible, lethal state. Its phase is kept as-is
// and never changes again. Reports false when a was already revealed.
func Reveal(w *ecs.World, e ecs.Entity, a *component.Actor) bool {
	if a == nil || a.Revealed {
		return false
	}
	a.Revealed = true
	a.GateOpen = true
	a.Armed = false
	a.PhaseTimer = 0
	a.Visual.Opacity = 1
	a.Visual.Reveal = 1
	a.Visual.Jitter = 0
	switch a.Kind {
	case component.KindRetractable, component.KindVibrating:
		a.Visual.Offset = a.Geometry.VisibleOffset
	case component.KindDropPlatform:
		a.DropState.HazardArmed = true
	}
	w.Events().Push(ecs.Event{Kind: ecs.EventRevealed, Entity: e, Tick: w.Tick(), From: a.Phase, To: a.Phase})
	return true
}

// RevealScope reveals e, and with chainScope every actor sharing its chain.
// It returns the actors that changed.
func RevealScope(w *ecs.World, e ecs.Entity, chainScope bool) []ecs.Entity {
	targets := []ecs.Entity{e}
	if chainScope {
		if c := w.ChainOf(e); c != nil {
			targets = c.Members
		}
	}
	var changed []ecs.Entity
	for _, t := range targets {
		if a, ok := w.Actor(t); ok && Reveal(w, t, a) {
			changed = append(changed, t)
		}
	}
	return changed
}
