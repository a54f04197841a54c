package ecs

import (
	"errors"
	"testing"

	"github.com/milk9111/trapline/ecs/component"
)

func spike(name string) *component.Actor {
	a := component.NewActor(component.KindRetractable, name, component.Geometry{VisibleOffset: 10})
	a.Retract = component.RetractTiming{Extend: 0.1, Retract: 0.1, CycleDelay: 0.2}
	return a
}

func TestEntityStoreLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			var s entityStore
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, s.create())
			}
			if s.live != c.create {
				t.Fatalf("expected %d live entities, got %d", c.create, s.live)
			}
			if c.destroyIndex < 0 {
				return
			}
			old := ents[c.destroyIndex]
			if !s.destroy(old) {
				t.Fatalf("destroy should return true for alive entity")
			}
			if s.isAlive(old) {
				t.Fatalf("entity should not be alive after destruction")
			}
			if s.destroy(old) {
				t.Fatalf("second destroy should report false")
			}
			reused := s.create()
			if reused.id() != old.id() || reused.generation() == old.generation() {
				t.Fatalf("expected slot reuse with new generation, got %s after %s", reused, old)
			}
			if s.isAlive(old) {
				t.Fatalf("stale handle resolved after slot reuse")
			}
		})
	}
}

func TestSparseSet(t *testing.T) {
	var s entityStore
	e1, e2, e3 := s.create(), s.create(), s.create()

	var set SparseSet[int]
	set.Set(e1, 1)
	set.Set(e2, 2)
	set.Set(e3, 3)
	set.Set(e2, 20)

	if v, ok := set.Get(e2); !ok || v != 20 {
		t.Fatalf("expected updated value 20, got %d %v", v, ok)
	}
	if !set.Remove(e1) || set.Has(e1) {
		t.Fatalf("remove e1 failed")
	}
	if set.Len() != 2 {
		t.Fatalf("expected 2 values, got %d", set.Len())
	}
	if v, ok := set.Get(e3); !ok || v != 3 {
		t.Fatalf("swap-remove lost e3: %d %v", v, ok)
	}

	s.destroy(e3)
	stale := e3
	fresh := s.create()
	if set.Has(fresh) {
		t.Fatalf("fresh generation must not see the stale value")
	}
	set.Set(fresh, 30)
	if set.Has(stale) {
		t.Fatalf("stale handle must not resolve after overwrite")
	}
	if v, _ := set.Get(fresh); v != 30 {
		t.Fatalf("expected 30, got %d", v)
	}
}

func TestWorldCreateAndLookup(t *testing.T) {
	w := NewWorld()
	a, err := w.CreateActor(spike("a"))
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.CreateActor(spike("a")); !errors.Is(err, ErrDuplicateName) {
		t.Fatalf("expected ErrDuplicateName, got %v", err)
	}
	if _, err := w.CreateActor(spike("")); err != nil {
		t.Fatalf("anonymous actors are allowed: %v", err)
	}
	if _, err := w.CreateActor(spike("")); err != nil {
		t.Fatalf("several anonymous actors are allowed: %v", err)
	}

	if got, ok := w.Lookup("a"); !ok || got != a {
		t.Fatalf("lookup returned %s %v", got, ok)
	}
	if w.Len() != 3 {
		t.Fatalf("expected 3 actors, got %d", w.Len())
	}
	if w.IsAlive(Entity(0)) || w.IsAlive(makeEntity(99, 0)) {
		t.Fatalf("invalid handles reported alive")
	}
}

func TestWorldDestroyActor(t *testing.T) {
	w := NewWorld()
	a, _ := w.CreateActor(spike("a"))
	b, _ := w.CreateActor(spike("b"))
	c, _ := w.CreateActor(spike("c"))
	if _, err := w.Link(a, b, 0.1); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Link(b, c, 0.1); err != nil {
		t.Fatal(err)
	}

	former, err := w.DestroyActor(b)
	if err != nil {
		t.Fatal(err)
	}
	if len(former) != 2 || former[0] != a || former[1] != c {
		t.Fatalf("expected former chain [a c], got %v", former)
	}
	if w.IsAlive(b) || w.Len() != 2 {
		t.Fatalf("b should be gone, alive=%v len=%d", w.IsAlive(b), w.Len())
	}
	if _, ok := w.Lookup("b"); ok {
		t.Fatalf("name should be released")
	}
	if n := len(w.Graph().Links()); n != 0 {
		t.Fatalf("expected no links left, got %d", n)
	}
	if ca, cc := w.ChainOf(a), w.ChainOf(c); ca == nil || cc == nil || ca == cc {
		t.Fatalf("a and c should now be separate chains")
	}
	if got := w.Order(); len(got) != 2 || got[0] != a || got[1] != c {
		t.Fatalf("unexpected order %v", got)
	}

	evts := w.Events().Drain()
	if len(evts) != 1 || evts[0].Kind != EventDestroyed || evts[0].Entity != b {
		t.Fatalf("expected one destroyed event, got %+v", evts)
	}

	d, _ := w.CreateActor(spike("b"))
	if d.id() != b.id() || d.generation() == b.generation() {
		t.Fatalf("slot should be reused with a new generation: %s vs %s", d, b)
	}
	if _, ok := w.Actor(b); ok {
		t.Fatalf("stale handle resolved to the new actor")
	}
	if _, err := w.DestroyActor(b); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestWorldLinkDerivedTimings(t *testing.T) {
	w := NewWorld()
	a, _ := w.CreateActor(spike("a"))
	bActor := spike("b")
	bActor.Retract.CycleDelay = 0.7
	b, _ := w.CreateActor(bActor)
	c, _ := w.CreateActor(spike("c"))

	if _, err := w.Link(a, b, 0.3); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Link(a, c, 0.5); err != nil {
		t.Fatal(err)
	}

	aa, _ := w.Actor(a)
	if aa.NextWait != 0.5 {
		t.Fatalf("expected longest outgoing delay 0.5, got %v", aa.NextWait)
	}
	for _, e := range []Entity{a, b, c} {
		x, _ := w.Actor(e)
		if x.CycleWait != 0.7 {
			t.Fatalf("%s: expected chain cycle delay 0.7, got %v", e, x.CycleWait)
		}
	}

	aa.Phase = component.PhaseExtending
	d, _ := w.CreateActor(spike("d"))
	if _, err := w.Link(c, d, 0); !errors.Is(err, ErrAlreadyStarted) {
		t.Fatalf("expected ErrAlreadyStarted, got %v", err)
	}
	if _, err := w.Link(d, Entity(77), 0); !errors.Is(err, ErrUnknownEntity) {
		t.Fatalf("expected ErrUnknownEntity, got %v", err)
	}
}

func TestWorldTransitionEvents(t *testing.T) {
	w := NewWorld()
	e, _ := w.CreateActor(spike("a"))
	a, _ := w.Actor(e)

	w.BeginTick()
	if !w.Transition(e, a, component.PhaseExtending) {
		t.Fatalf("transition refused")
	}
	a.Revealed = true
	if w.Transition(e, a, component.PhaseRetracting) {
		t.Fatalf("revealed actor must not transition")
	}

	events := w.Events().Drain()
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	ev := events[0]
	if ev.Kind != EventPhaseChanged || ev.From != component.PhaseWaiting || ev.To != component.PhaseExtending || ev.Tick != 1 {
		t.Fatalf("unexpected event %+v", ev)
	}
	if w.Events().Len() != 0 || w.Events().Drain() != nil {
		t.Fatalf("queue should be empty after drain")
	}
}

type countingSystem struct {
	kind  component.Kind
	order []Entity
}

func (s *countingSystem) Kind() component.Kind { return s.kind }

func (s *countingSystem) Step(w *World, e Entity, a *component.Actor, dt float64) {
	s.order = append(s.order, e)
}

type postRecorder struct{ seen int }

func (p *postRecorder) Post(w *World, e Entity, a *component.Actor) { p.seen++ }

func TestSchedulerWalksTopologicalOrder(t *testing.T) {
	w := NewWorld()
	c, _ := w.CreateActor(spike("c"))
	b, _ := w.CreateActor(spike("b"))
	a, _ := w.CreateActor(spike("a"))
	v, _ := w.CreateActor(component.NewActor(component.KindVibrating, "v", component.Geometry{}))
	if _, err := w.Link(a, b, 0); err != nil {
		t.Fatal(err)
	}
	if _, err := w.Link(b, c, 0); err != nil {
		t.Fatal(err)
	}

	spikes := &countingSystem{kind: component.KindRetractable}
	post := &postRecorder{}
	s := NewScheduler(spikes)
	s.AddPost(post)
	s.Update(w, 0.1)

	want := []Entity{a, b, c}
	if len(spikes.order) != len(want) {
		t.Fatalf("expected %d stepped actors, got %v", len(want), spikes.order)
	}
	for i := range want {
		if spikes.order[i] != want[i] {
			t.Fatalf("step order %v, want %v", spikes.order, want)
		}
	}
	if post.seen != 4 {
		t.Fatalf("post systems should see every actor, saw %d", post.seen)
	}
	if w.Tick() != 1 {
		t.Fatalf("expected tick 1, got %d", w.Tick())
	}
	_ = v
}
