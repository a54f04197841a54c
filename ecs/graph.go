package ecs

import (
	"errors"
	"fmt"
	"math"
)

var (
	ErrUnknownEntity  = errors.New("ecs: unknown entity")
	ErrCycle          = errors.New("ecs: link would close a cycle")
	ErrSelfLink       = errors.New("ecs: actor cannot link to itself")
	ErrDuplicateLink  = errors.New("ecs: link already declared")
	ErrNegativeDelay  = errors.New("ecs: inter delay must be a non-negative number")
	ErrNotChainable   = errors.New("ecs: only retractable actors can be linked")
	ErrAlreadyStarted = errors.New("ecs: chain already started")
)

// Link is a directed choreography edge: To may extend only after From has
// retracted and InterDelay has elapsed since.
type Link struct {
	From       Entity
	To         Entity
	InterDelay float64

	// Fired is per cycle; the chain restart clears it.
	Fired bool
}

// Chain is a weakly connected set of linked retractable actors.
type Chain struct {
	Members []Entity
	Heads   []Entity
	Sinks   []Entity

	CycleDelay float64
	CycleTimer float64

	sinksDone map[Entity]struct{}
}

// First is the member that drives the chain's cycle timer.
func (c *Chain) First() Entity {
	if c == nil || len(c.Members) == 0 {
		return 0
	}
	return c.Members[0]
}

func (c *Chain) IsHead(e Entity) bool {
	for _, h := range c.Heads {
		if h == e {
			return true
		}
	}
	return false
}

// MarkSinkDone records a sink finishing its retract and reports whether every
// sink of the chain has now finished.
func (c *Chain) MarkSinkDone(e Entity) bool {
	if c.sinksDone == nil {
		c.sinksDone = make(map[Entity]struct{}, len(c.Sinks))
	}
	c.sinksDone[e] = struct{}{}
	for _, s := range c.Sinks {
		if _, ok := c.sinksDone[s]; !ok {
			return false
		}
	}
	return true
}

// ResetCycle clears the per-cycle sink bookkeeping.
func (c *Chain) ResetCycle() {
	c.CycleTimer = 0
	clear(c.sinksDone)
}

// Graph holds the static choreography links plus the derived tick order.
type Graph struct {
	nodes   []Entity
	index   map[Entity]int
	chained map[Entity]bool

	links []*Link
	out   map[Entity][]*Link
	in    map[Entity][]*Link

	dirty   bool
	version uint64
	order   []Entity
	chains  []*Chain
	chainOf map[Entity]*Chain
}

func newGraph() *Graph {
	return &Graph{
		index:   make(map[Entity]int),
		chained: make(map[Entity]bool),
		out:     make(map[Entity][]*Link),
		in:      make(map[Entity][]*Link),
		chainOf: make(map[Entity]*Chain),
	}
}

// AddNode registers an actor. Chained nodes take part in link chains.
func (g *Graph) AddNode(e Entity, chained bool) {
	if _, ok := g.index[e]; ok {
		return
	}
	g.index[e] = len(g.nodes)
	g.nodes = append(g.nodes, e)
	g.chained[e] = chained
	g.dirty = true
}

func (g *Graph) Has(e Entity) bool {
	_, ok := g.index[e]
	return ok
}

// AddLink validates and records a link. The graph is unchanged on error.
func (g *Graph) AddLink(from, to Entity, interDelay float64) (*Link, error) {
	if !g.Has(from) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, from)
	}
	if !g.Has(to) {
		return nil, fmt.Errorf("%w: %s", ErrUnknownEntity, to)
	}
	if !g.chained[from] || !g.chained[to] {
		return nil, fmt.Errorf("%w: %s -> %s", ErrNotChainable, from, to)
	}
	if from == to {
		return nil, fmt.Errorf("%w: %s", ErrSelfLink, from)
	}
	if math.IsNaN(interDelay) || math.IsInf(interDelay, 0) || interDelay < 0 {
		return nil, fmt.Errorf("%w: %v", ErrNegativeDelay, interDelay)
	}
	for _, l := range g.out[from] {
		if l.To == to {
			return nil, fmt.Errorf("%w: %s -> %s", ErrDuplicateLink, from, to)
		}
	}
	if g.reaches(to, from) {
		return nil, fmt.Errorf("%w: %s -> %s", ErrCycle, from, to)
	}

	l := &Link{From: from, To: to, InterDelay: interDelay}
	g.links = append(g.links, l)
	g.out[from] = append(g.out[from], l)
	g.in[to] = append(g.in[to], l)
	g.dirty = true
	return l, nil
}

// RemoveNode drops e and every link touching it. It returns the actors that
// shared a chain with e, which may now form several smaller chains.
func (g *Graph) RemoveNode(e Entity) []Entity {
	if !g.Has(e) {
		return nil
	}
	var former []Entity
	for _, m := range g.Connected(e) {
		if m != e {
			former = append(former, m)
		}
	}

	kept := g.links[:0]
	for _, l := range g.links {
		if l.From != e && l.To != e {
			kept = append(kept, l)
		}
	}
	clear(g.links[len(kept):])
	g.links = kept
	for _, l := range g.out[e] {
		g.in[l.To] = dropLink(g.in[l.To], l)
	}
	for _, l := range g.in[e] {
		g.out[l.From] = dropLink(g.out[l.From], l)
	}
	delete(g.out, e)
	delete(g.in, e)

	i := g.index[e]
	g.nodes = append(g.nodes[:i], g.nodes[i+1:]...)
	delete(g.index, e)
	delete(g.chained, e)
	for j := i; j < len(g.nodes); j++ {
		g.index[g.nodes[j]] = j
	}
	g.dirty = true
	return former
}

func dropLink(links []*Link, l *Link) []*Link {
	for i, x := range links {
		if x == l {
			return append(links[:i], links[i+1:]...)
		}
	}
	return links
}

// reaches reports whether dst is reachable from src over existing links.
func (g *Graph) reaches(src, dst Entity) bool {
	seen := map[Entity]bool{src: true}
	stack := []Entity{src}
	for len(stack) > 0 {
		n := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if n == dst {
			return true
		}
		for _, l := range g.out[n] {
			if !seen[l.To] {
				seen[l.To] = true
				stack = append(stack, l.To)
			}
		}
	}
	return false
}

func (g *Graph) Outgoing(e Entity) []*Link { return g.out[e] }

func (g *Graph) Incoming(e Entity) []*Link { return g.in[e] }

// Links returns every link in declaration order.
func (g *Graph) Links() []*Link { return g.links }

// Order is the fixed tick order: topological over links, ties broken by
// declaration order.
func (g *Graph) Order() []Entity {
	g.rebuild()
	return g.order
}

// Chains returns chains ordered by their first member's position in Order.
func (g *Graph) Chains() []*Chain {
	g.rebuild()
	return g.chains
}

func (g *Graph) ChainOf(e Entity) *Chain {
	g.rebuild()
	return g.chainOf[e]
}

func sameMembers(a, b *Chain) bool {
	if len(a.Members) != len(b.Members) {
		return false
	}
	for i := range a.Members {
		if a.Members[i] != b.Members[i] {
			return false
		}
	}
	return true
}

// Connected returns every actor sharing a chain with e, e included.
func (g *Graph) Connected(e Entity) []Entity {
	if c := g.ChainOf(e); c != nil {
		return c.Members
	}
	if g.Has(e) {
		return []Entity{e}
	}
	return nil
}

// rebuild recomputes order and chains, reporting whether anything was
// recomputed. Chains whose membership is unchanged keep their cycle state.
func (g *Graph) rebuild() bool {
	if !g.dirty {
		return false
	}
	g.dirty = false
	g.version++

	prev := make(map[Entity]*Chain, len(g.chains))
	for _, c := range g.chains {
		prev[c.First()] = c
	}

	// Kahn's algorithm; the ready set is kept sorted by declaration index so
	// the result is deterministic and first-declared wins ties.
	indeg := make(map[Entity]int, len(g.nodes))
	for _, l := range g.links {
		indeg[l.To]++
	}
	ready := make([]Entity, 0, len(g.nodes))
	for _, n := range g.nodes {
		if indeg[n] == 0 {
			ready = append(ready, n)
		}
	}
	order := make([]Entity, 0, len(g.nodes))
	for len(ready) > 0 {
		best := 0
		for i := 1; i < len(ready); i++ {
			if g.index[ready[i]] < g.index[ready[best]] {
				best = i
			}
		}
		n := ready[best]
		ready = append(ready[:best], ready[best+1:]...)
		order = append(order, n)
		for _, l := range g.out[n] {
			indeg[l.To]--
			if indeg[l.To] == 0 {
				ready = append(ready, l.To)
			}
		}
	}
	g.order = order

	// Union-find over chained nodes.
	parent := make(map[Entity]Entity, len(g.nodes))
	var find func(Entity) Entity
	find = func(e Entity) Entity {
		p, ok := parent[e]
		if !ok || p == e {
			parent[e] = e
			return e
		}
		root := find(p)
		parent[e] = root
		return root
	}
	for _, l := range g.links {
		ra, rb := find(l.From), find(l.To)
		if ra != rb {
			parent[rb] = ra
		}
	}

	byRoot := make(map[Entity]*Chain)
	g.chains = nil
	clear(g.chainOf)
	for _, n := range order {
		if !g.chained[n] {
			continue
		}
		root := find(n)
		c, ok := byRoot[root]
		if !ok {
			c = &Chain{}
			byRoot[root] = c
			g.chains = append(g.chains, c)
		}
		c.Members = append(c.Members, n)
		if len(g.in[n]) == 0 {
			c.Heads = append(c.Heads, n)
		}
		if len(g.out[n]) == 0 {
			c.Sinks = append(c.Sinks, n)
		}
		g.chainOf[n] = c
	}

	for _, c := range g.chains {
		old, ok := prev[c.First()]
		if !ok || !sameMembers(old, c) {
			continue
		}
		c.CycleTimer = old.CycleTimer
		c.sinksDone = old.sinksDone
	}
	return true
}
