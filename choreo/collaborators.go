package choreo

import (
	"github.com/jakecoffman/cp"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
)

// VisualState is the read-only snapshot handed to renderers and physics.
type VisualState struct {
	Kind     component.Kind
	Phase    component.Phase
	Position component.Vec
	// HitBox is in world units with y down: B is the top edge, T the bottom.
	HitBox   cp.BB
	Opacity  float64
	Lethal   bool
	Revealed bool
}

// RenderSink receives every actor's state once per tick, after all phase
// transitions of that tick have been applied.
type RenderSink interface {
	SyncActor(id ecs.Entity, state VisualState)
}

// CollisionSource detects player/hazard overlap. The runner registers one
// callback per actor when the actor is created.
type CollisionSource interface {
	OnPlayerCollision(id ecs.Entity, fn func())
}

// MoverSource supplies the tracked player sample, polled at the start of
// every tick.
type MoverSource interface {
	MoverPosition() (component.Mover, bool)
}

// ActorRemover is implemented by collaborators that keep per-actor state,
// such as hit bodies. The runner calls it when an actor is destroyed; it may
// be called twice for one id when a value is both sink and source.
type ActorRemover interface {
	RemoveActor(id ecs.Entity)
}

// DeathEvent is passed to an actor's death callback.
type DeathEvent struct {
	Actor    ecs.Entity
	Name     string
	Revealed []ecs.Entity
}

// RenderFunc adapts a function to RenderSink.
type RenderFunc func(id ecs.Entity, state VisualState)

func (f RenderFunc) SyncActor(id ecs.Entity, state VisualState) { f(id, state) }

// MoverFunc adapts a function to MoverSource.
type MoverFunc func() (component.Mover, bool)

func (f MoverFunc) MoverPosition() (component.Mover, bool) { return f() }
