package ecs

import (
	"errors"
	"fmt"

	"github.com/milk9111/trapline/ecs/component"
)

var ErrDuplicateName = errors.New("ecs: actor name already used")

// World owns the actor arena for one scene: actors, choreography links, the
// latest mover sample and the tick counter. Discard it on scene teardown.
type World struct {
	entities entityStore
	actors   SparseSet[*component.Actor]
	names    map[string]Entity
	graph    *Graph
	events   EventQueue

	graphVersion uint64

	tick     uint64
	mover    component.Mover
	hasMover bool
}

// NewWorld creates an empty world.
func NewWorld() *World {
	return &World{
		names: make(map[string]Entity),
		graph: newGraph(),
	}
}

// CreateActor stores a into the arena and returns its handle.
func (w *World) CreateActor(a *component.Actor) (Entity, error) {
	if a == nil {
		return 0, fmt.Errorf("ecs: nil actor")
	}
	if a.Name != "" {
		if _, taken := w.names[a.Name]; taken {
			return 0, fmt.Errorf("%w: %q", ErrDuplicateName, a.Name)
		}
	}
	e := w.entities.create()
	w.actors.Set(e, a)
	if a.Name != "" {
		w.names[a.Name] = e
	}
	w.graph.AddNode(e, a.Kind == component.KindRetractable)
	return e, nil
}

// DestroyActor removes e and its links from the arena. The handle, and any
// copy of it, stops resolving; its slot is reused with a new generation. It
// returns the actors that were chained to e.
func (w *World) DestroyActor(e Entity) ([]Entity, error) {
	a, ok := w.Actor(e)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, e)
	}
	former := w.graph.RemoveNode(e)
	w.actors.Remove(e)
	if a.Name != "" && w.names[a.Name] == e {
		delete(w.names, a.Name)
	}
	w.entities.destroy(e)
	w.events.Push(Event{Kind: EventDestroyed, Entity: e, Tick: w.tick, From: a.Phase, To: a.Phase})
	w.syncGraph()
	return former, nil
}

// IsAlive reports whether an entity handle resolves to an actor.
func (w *World) IsAlive(e Entity) bool {
	return w != nil && w.entities.isAlive(e) && w.actors.Has(e)
}

// Actor returns the live record for e. Only systems should mutate it.
func (w *World) Actor(e Entity) (*component.Actor, bool) {
	if w == nil {
		return nil, false
	}
	return w.actors.Get(e)
}

// Lookup resolves an actor by its level name.
func (w *World) Lookup(name string) (Entity, bool) {
	if w == nil {
		return 0, false
	}
	e, ok := w.names[name]
	return e, ok
}

// Len returns the number of actors.
func (w *World) Len() int {
	if w == nil {
		return 0
	}
	return w.entities.live
}

// Graph exposes the choreography graph.
func (w *World) Graph() *Graph {
	return w.graph
}

// Link declares a choreography link. Links are scene setup: both chains must
// still be untouched by startAnimation and ticking.
func (w *World) Link(from, to Entity, interDelay float64) (*Link, error) {
	for _, e := range []Entity{from, to} {
		if !w.IsAlive(e) {
			return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, e)
		}
		for _, m := range w.graph.Connected(e) {
			if a, ok := w.Actor(m); ok && (a.Armed || a.Phase != component.InitialPhase(a.Kind) || a.Revealed) {
				return nil, fmt.Errorf("%w: %s", ErrAlreadyStarted, m)
			}
		}
	}
	l, err := w.graph.AddLink(from, to, interDelay)
	if err != nil {
		return nil, err
	}
	w.syncGraph()
	return l, nil
}

// Order returns the tick order, refreshing chain-derived timings first.
func (w *World) Order() []Entity {
	w.syncGraph()
	return w.graph.Order()
}

// ChainOf returns the chain e belongs to, or nil.
func (w *World) ChainOf(e Entity) *Chain {
	w.syncGraph()
	return w.graph.ChainOf(e)
}

// RefreshTimings recomputes chain-derived waits after an actor's timing changed.
func (w *World) RefreshTimings() {
	w.graph.dirty = true
	w.syncGraph()
}

func (w *World) syncGraph() {
	w.graph.rebuild()
	if w.graph.version == w.graphVersion {
		return
	}
	w.graphVersion = w.graph.version
	for _, c := range w.graph.chains {
		delay := 0.0
		for _, m := range c.Members {
			if a, ok := w.Actor(m); ok && a.Retract.CycleDelay > delay {
				delay = a.Retract.CycleDelay
			}
		}
		c.CycleDelay = delay
		for _, m := range c.Members {
			a, ok := w.Actor(m)
			if !ok {
				continue
			}
			a.CycleWait = delay
			a.NextWait = 0
			for _, l := range w.graph.Outgoing(m) {
				if l.InterDelay > a.NextWait {
					a.NextWait = l.InterDelay
				}
			}
		}
	}
}

// BeginTick advances the tick counter and returns it.
func (w *World) BeginTick() uint64 {
	w.tick++
	return w.tick
}

// Tick is the current tick number; 0 before the first tick.
func (w *World) Tick() uint64 {
	return w.tick
}

// SetMover records the tracked mover sample for this tick.
func (w *World) SetMover(m component.Mover) {
	w.mover = m
	w.hasMover = true
}

// Mover returns the latest mover sample, if any was supplied.
func (w *World) Mover() (component.Mover, bool) {
	return w.mover, w.hasMover
}

// Events returns the world event queue.
func (w *World) Events() *EventQueue {
	if w == nil {
		return nil
	}
	return &w.events
}

// Transition moves a to phase p through TransitionTo and records the change.
func (w *World) Transition(e Entity, a *component.Actor, p component.Phase) bool {
	from := a.Phase
	if !a.TransitionTo(p, w.tick) {
		return false
	}
	w.events.Push(Event{Kind: EventPhaseChanged, Entity: e, Tick: w.tick, From: from, To: p})
	return true
}
