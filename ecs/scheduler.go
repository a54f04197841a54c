package ecs

import "github.com/milk9111/trapline/ecs/component"

// System advances every actor of one kind by a frame.
type System interface {
	Kind() component.Kind
	Step(w *World, e Entity, a *component.Actor, dt float64)
}

// PostSystem runs over every actor after all kind systems, in tick order.
type PostSystem interface {
	Post(w *World, e Entity, a *component.Actor)
}

// Scheduler dispatches each actor to the system for its kind, walking the
// world's topological order so a parent's transition is visible to its
// dependents within the same tick.
type Scheduler struct {
	systems map[component.Kind]System
	post    []PostSystem
}

func NewScheduler(systems ...System) *Scheduler {
	s := &Scheduler{systems: make(map[component.Kind]System, len(systems))}
	for _, sys := range systems {
		s.Add(sys)
	}
	return s
}

func (s *Scheduler) Add(system System) {
	if system == nil {
		return
	}
	s.systems[system.Kind()] = system
}

func (s *Scheduler) AddPost(p PostSystem) {
	if p == nil {
		return
	}
	s.post = append(s.post, p)
}

// Update runs one tick of dt seconds.
func (s *Scheduler) Update(w *World, dt float64) {
	if w == nil {
		return
	}
	w.BeginTick()
	order := w.Order()
	for _, e := range order {
		a, ok := w.Actor(e)
		if !ok {
			continue
		}
		a.Transitions = 0
		if sys, ok := s.systems[a.Kind]; ok {
			sys.Step(w, e, a, dt)
		}
	}
	for _, p := range s.post {
		for _, e := range order {
			if a, ok := w.Actor(e); ok {
				p.Post(w, e, a)
			}
		}
	}
}
