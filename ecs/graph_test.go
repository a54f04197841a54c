package ecs

import (
	"errors"
	"math"
	"testing"
)

func graphWith(n int) (*Graph, []Entity) {
	g := newGraph()
	ents := make([]Entity, n)
	for i := range ents {
		ents[i] = makeEntity(entityID(i+1), 0)
		g.AddNode(ents[i], true)
	}
	return g, ents
}

func TestGraphAddLinkValidation(t *testing.T) {
	g, e := graphWith(3)
	loose := makeEntity(10, 0)
	g.AddNode(loose, false)

	if _, err := g.AddLink(e[0], e[1], 0.1); err != nil {
		t.Fatal(err)
	}
	if _, err := g.AddLink(e[1], e[2], 0.1); err != nil {
		t.Fatal(err)
	}

	cases := []struct {
		name     string
		from, to Entity
		delay    float64
		want     error
	}{
		{"direct_cycle", e[1], e[0], 0, ErrCycle},
		{"long_cycle", e[2], e[0], 0, ErrCycle},
		{"self", e[2], e[2], 0, ErrSelfLink},
		{"duplicate", e[0], e[1], 0.5, ErrDuplicateLink},
		{"negative", e[0], e[2], -0.1, ErrNegativeDelay},
		{"infinite", e[0], e[2], math.Inf(1), ErrNegativeDelay},
		{"unknown", e[0], makeEntity(42, 0), 0, ErrUnknownEntity},
		{"not_chainable", e[0], loose, 0, ErrNotChainable},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			before := len(g.Links())
			if _, err := g.AddLink(c.from, c.to, c.delay); !errors.Is(err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, err)
			}
			if len(g.Links()) != before {
				t.Fatalf("graph changed on rejected link")
			}
		})
	}

	// a diamond shortcut is fine
	if _, err := g.AddLink(e[0], e[2], 0); err != nil {
		t.Fatalf("forward shortcut rejected: %v", err)
	}
}

func TestGraphOrderAndChains(t *testing.T) {
	g, e := graphWith(6)
	// declared out of order: 3 -> 1 -> 0, plus fan-in 4 -> 0, and 2, 5 alone
	mustLink := func(from, to Entity) {
		t.Helper()
		if _, err := g.AddLink(from, to, 0); err != nil {
			t.Fatal(err)
		}
	}
	mustLink(e[3], e[1])
	mustLink(e[1], e[0])
	mustLink(e[4], e[0])

	order := g.Order()
	pos := make(map[Entity]int, len(order))
	for i, n := range order {
		pos[n] = i
	}
	if len(order) != 6 {
		t.Fatalf("order lost nodes: %v", order)
	}
	for _, l := range g.Links() {
		if pos[l.From] >= pos[l.To] {
			t.Fatalf("link %s -> %s out of order in %v", l.From, l.To, order)
		}
	}
	if order[0] != e[2] {
		t.Fatalf("ties should follow declaration order, got %v", order)
	}

	chains := g.Chains()
	if len(chains) != 3 {
		t.Fatalf("expected 3 chains, got %d", len(chains))
	}
	big := g.ChainOf(e[0])
	if big == nil || len(big.Members) != 4 {
		t.Fatalf("expected 4-member chain, got %+v", big)
	}
	if g.ChainOf(e[3]) != big || g.ChainOf(e[4]) != big {
		t.Fatalf("linked actors must share a chain")
	}
	if !big.IsHead(e[3]) || !big.IsHead(e[4]) || big.IsHead(e[1]) {
		t.Fatalf("unexpected heads %v", big.Heads)
	}
	if len(big.Sinks) != 1 || big.Sinks[0] != e[0] {
		t.Fatalf("unexpected sinks %v", big.Sinks)
	}
	if lone := g.ChainOf(e[5]); lone == nil || len(lone.Members) != 1 || !lone.IsHead(e[5]) {
		t.Fatalf("an unlinked actor is a chain of one: %+v", lone)
	}
	if got := g.Connected(e[4]); len(got) != 4 {
		t.Fatalf("connected should return the whole chain, got %v", got)
	}
}

func TestChainSinkBookkeeping(t *testing.T) {
	g, e := graphWith(3)
	g.AddLink(e[0], e[1], 0)
	g.AddLink(e[0], e[2], 0)
	c := g.ChainOf(e[0])

	if c.MarkSinkDone(e[1]) {
		t.Fatalf("one of two sinks is not a complete cycle")
	}
	if !c.MarkSinkDone(e[2]) {
		t.Fatalf("both sinks done should complete the cycle")
	}
	c.CycleTimer = 0.4
	c.ResetCycle()
	if c.CycleTimer != 0 || c.MarkSinkDone(e[1]) {
		t.Fatalf("reset should clear cycle state")
	}

	// adding an unrelated node keeps the chain's runtime
	c.CycleTimer = 0.25
	g.AddNode(makeEntity(9, 0), true)
	if again := g.ChainOf(e[0]); again.CycleTimer != 0.25 {
		t.Fatalf("chain runtime lost on rebuild: %v", again.CycleTimer)
	}
}
