package ecs

import "github.com/milk9111/trapline/ecs/component"

// EventKind identifies what happened to an actor during a tick.
type EventKind string

const (
	EventPhaseChanged EventKind = "phase"
	EventChainCycled  EventKind = "cycle"
	EventLinkFired    EventKind = "link"
	EventRevealed     EventKind = "revealed"
	EventDeath        EventKind = "death"
	EventDisarmed     EventKind = "disarmed"
	EventDestroyed    EventKind = "destroyed"
)

// Event is an actor notification hosts can drain after a tick, e.g. to cue
// audio or write a trace.
type Event struct {
	Kind   EventKind
	Entity Entity
	Tick   uint64
	From   component.Phase
	To     component.Phase
	// Target is the second actor for link events.
	Target Entity
}

// EventQueue is a simple FIFO queue.
type EventQueue struct {
	items []Event
}

// Push adds an event.
func (q *EventQueue) Push(evt Event) {
	if q == nil {
		return
	}
	q.items = append(q.items, evt)
}

// Len reports pending events.
func (q *EventQueue) Len() int {
	if q == nil {
		return 0
	}
	return len(q.items)
}

// Drain returns all events and clears the queue.
func (q *EventQueue) Drain() []Event {
	if q == nil || len(q.items) == 0 {
		return nil
	}
	out := q.items
	q.items = nil
	return out
}
