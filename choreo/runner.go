package choreo

import (
	"fmt"
	"log"

	"github.com/milk9111/trapline/common"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
	"github.com/milk9111/trapline/ecs/system"
)

// Runner owns every hazard actor of one scene and is the only thing that
// advances their time. Create one per scene instance and call Teardown (or
// drop it) on scene exit. A Runner is not safe for concurrent use.
type Runner struct {
	world *ecs.World
	sched *ecs.Scheduler

	chains  *system.ChainSystem
	vibrate *system.VibrateSystem
	drops   *system.DropSystem

	onHit map[ecs.Entity]func(DeathEvent)

	render     RenderSink
	collisions CollisionSource
	mover      MoverSource
	logger     *log.Logger
}

// NewRunner creates an empty scene runner.
func NewRunner(opts ...Option) *Runner {
	r := &Runner{
		world:   ecs.NewWorld(),
		chains:  system.NewChainSystem(),
		vibrate: system.NewVibrateSystem(),
		drops:   system.NewDropSystem(),
		onHit:   make(map[ecs.Entity]func(DeathEvent)),
		logger:  log.Default(),
	}
	r.sched = ecs.NewScheduler(r.chains, r.vibrate, r.drops)
	r.sched.AddPost(system.NewGateSystem())
	for _, opt := range opts {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

// CreateActor adds a hazard of the given kind and registers its collision
// callback with the collision source.
func (r *Runner) CreateActor(kind component.Kind, cfg ActorConfig) (ecs.Entity, error) {
	if r.world == nil {
		return 0, ErrTornDown
	}
	if err := cfg.validate(kind); err != nil {
		return 0, configErr("create actor", err)
	}
	a := cfg.build(kind)
	system.Gate(a)
	e, err := r.world.CreateActor(a)
	if err != nil {
		return 0, configErr("create actor", err)
	}
	if cfg.OnHit != nil {
		r.onHit[e] = cfg.OnHit
	}
	if r.collisions != nil {
		world := r.world
		r.collisions.OnPlayerCollision(e, func() {
			if r.world != world {
				r.logger.Printf("choreo: collision for actor %s after teardown ignored", e)
				return
			}
			r.HandleCollision(e)
		})
	}
	return e, nil
}

// Link declares that to may begin extending only after from has retracted and
// interDelay seconds have passed. Cycles are rejected.
func (r *Runner) Link(from, to ecs.Entity, interDelay float64) error {
	if r.world == nil {
		return ErrTornDown
	}
	for _, e := range []ecs.Entity{from, to} {
		if !r.world.IsAlive(e) {
			return &UnknownActorError{Op: "link", ID: e}
		}
	}
	if _, err := r.world.Link(from, to, interDelay); err != nil {
		return configErr("link", err)
	}
	return nil
}

// StartAnimation arms an actor. For retractable hazards id must be a chain
// head; the whole chain is reset and its heads extend after delay. Vibrating
// hazards replay their one-shot; idle drop platforms drop after delay.
func (r *Runner) StartAnimation(id ecs.Entity, delay float64) error {
	a, err := r.actor("start animation", id)
	if err != nil {
		return err
	}
	if a.Revealed {
		return nil
	}
	delay = common.SanitizeDelta(delay)
	switch a.Kind {
	case component.KindRetractable:
		chain := r.world.ChainOf(id)
		if chain == nil {
			return &UnknownActorError{Op: "start animation", ID: id}
		}
		if !chain.IsHead(id) {
			return &ConfigurationError{Op: "start animation", Err: fmt.Errorf("%w: %s", ErrNotChainHead, id)}
		}
		r.chains.Arm(r.world, chain, delay)
	case component.KindVibrating:
		r.vibrate.Arm(r.world, id, a, delay)
	case component.KindDropPlatform:
		if !r.drops.Arm(r.world, id, a, delay) {
			return &ConfigurationError{Op: "start animation", Err: fmt.Errorf("%w: platform %s is %s", ecs.ErrAlreadyStarted, id, a.Phase)}
		}
	}
	r.refreshGates()
	return nil
}

// DestroyActor removes an actor and its links. Chains it belonged to that
// were already running restart from their heads; collisions reported later
// for the old handle are logged and ignored.
func (r *Runner) DestroyActor(id ecs.Entity) error {
	if _, err := r.actor("destroy actor", id); err != nil {
		return err
	}
	running := false
	for _, m := range r.world.Graph().Connected(id) {
		if ma, ok := r.world.Actor(m); ok && (ma.Armed || ma.Phase != component.InitialPhase(ma.Kind)) {
			running = true
			break
		}
	}
	former, err := r.world.DestroyActor(id)
	if err != nil {
		return &UnknownActorError{Op: "destroy actor", ID: id}
	}
	delete(r.onHit, id)
	for _, c := range []any{r.collisions, r.render} {
		if rm, ok := c.(ActorRemover); ok {
			rm.RemoveActor(id)
		}
	}

	if running {
		restarted := make(map[*ecs.Chain]bool)
		for _, m := range former {
			chain := r.world.ChainOf(m)
			if chain == nil || restarted[chain] {
				continue
			}
			restarted[chain] = true
			r.chains.Arm(r.world, chain, 0)
		}
	}
	r.refreshGates()
	return nil
}

// SetProximityRule attaches the trigger rule of a drop platform. Replacing a
// rule is only allowed while the platform is idle.
func (r *Runner) SetProximityRule(id ecs.Entity, rule component.ProximityRule) error {
	a, err := r.actor("set proximity rule", id)
	if err != nil {
		return err
	}
	if a.Kind != component.KindDropPlatform {
		return &ConfigurationError{Op: "set proximity rule", Err: fmt.Errorf("%w: %s is %s", ErrKindMismatch, id, a.Kind)}
	}
	if err := rule.Validate(); err != nil {
		return configErr("set proximity rule", err)
	}
	if a.Phase != component.PhaseIdle || (a.Rule != nil && a.Rule.Consumed) {
		return &ConfigurationError{Op: "set proximity rule", Err: fmt.Errorf("%w: %s", ecs.ErrAlreadyStarted, id)}
	}
	rule.Consumed = false
	a.Rule = &rule
	return nil
}

// ForceReveal freezes the actor fully visible and lethal; with chainScope
// every actor in its chain as well. Calling it again changes nothing.
func (r *Runner) ForceReveal(id ecs.Entity, chainScope bool) error {
	if _, err := r.actor("force reveal", id); err != nil {
		return err
	}
	system.RevealScope(r.world, id, chainScope)
	return nil
}

// HandleCollision is the death path for a player overlap reported by the
// collision collaborator. Overlaps with a closed gate are ignored; a lethal
// overlap reveals the hazard and fires its death callback once.
func (r *Runner) HandleCollision(id ecs.Entity) {
	if r.world == nil {
		r.logger.Printf("choreo: collision for actor %s after teardown ignored", id)
		return
	}
	a, ok := r.world.Actor(id)
	if !ok {
		r.logger.Printf("choreo: collision for unknown actor %s ignored", id)
		return
	}
	if !system.IsLethal(a) || a.DeathFired {
		return
	}
	revealed := system.RevealScope(r.world, id, a.RevealChain)
	a.DeathFired = true
	r.world.Events().Push(ecs.Event{Kind: ecs.EventDeath, Entity: id, Tick: r.world.Tick(), From: a.Phase, To: a.Phase})
	if fn := r.onHit[id]; fn != nil {
		fn(DeathEvent{Actor: id, Name: a.Name, Revealed: revealed})
	}
}

// SetMover pushes a mover sample directly, for hosts without a MoverSource.
func (r *Runner) SetMover(m component.Mover) {
	if r.world == nil {
		r.logger.Printf("choreo: mover sample after teardown ignored")
		return
	}
	r.world.SetMover(m)
}

// Tick advances every actor by dt seconds in topological order, then pushes
// the resulting state to the render sink. Negative or non-finite dt is
// treated as 0.
func (r *Runner) Tick(dt float64) {
	if r.world == nil {
		return
	}
	dt = common.SanitizeDelta(dt)
	if r.mover != nil {
		if m, ok := r.mover.MoverPosition(); ok {
			r.world.SetMover(m)
		}
	}
	r.sched.Update(r.world, dt)
	if r.render == nil {
		return
	}
	for _, e := range r.world.Order() {
		if st, ok := r.VisualState(e); ok {
			r.render.SyncActor(e, st)
		}
	}
}

// VisualState returns the actor's current presentation snapshot.
func (r *Runner) VisualState(id ecs.Entity) (VisualState, bool) {
	if r.world == nil {
		return VisualState{}, false
	}
	a, ok := r.world.Actor(id)
	if !ok {
		return VisualState{}, false
	}
	return VisualState{
		Kind:     a.Kind,
		Phase:    a.Phase,
		Position: a.Position(),
		HitBox:   system.HitBox(a),
		Opacity:  a.Visual.Opacity,
		Lethal:   system.IsLethal(a),
		Revealed: a.Revealed,
	}, true
}

// IsLethal reports the actor's collision gate. Unknown actors are harmless.
func (r *Runner) IsLethal(id ecs.Entity) bool {
	if r.world == nil {
		return false
	}
	a, ok := r.world.Actor(id)
	return ok && system.IsLethal(a)
}

// Actor returns a copy of the actor record for inspection.
func (r *Runner) Actor(id ecs.Entity) (component.Actor, bool) {
	if r.world == nil {
		return component.Actor{}, false
	}
	a, ok := r.world.Actor(id)
	if !ok {
		return component.Actor{}, false
	}
	snapshot := *a
	if a.Rule != nil {
		rule := *a.Rule
		snapshot.Rule = &rule
	}
	return snapshot, true
}

// Lookup resolves an actor by name.
func (r *Runner) Lookup(name string) (ecs.Entity, bool) {
	if r.world == nil {
		return 0, false
	}
	return r.world.Lookup(name)
}

// Actors lists every actor in tick order.
func (r *Runner) Actors() []ecs.Entity {
	if r.world == nil {
		return nil
	}
	order := r.world.Order()
	return append([]ecs.Entity(nil), order...)
}

// Links returns a copy of the declared links in declaration order.
func (r *Runner) Links() []ecs.Link {
	if r.world == nil {
		return nil
	}
	links := r.world.Graph().Links()
	out := make([]ecs.Link, 0, len(links))
	for _, l := range links {
		out = append(out, *l)
	}
	return out
}

// Now is the number of ticks run so far.
func (r *Runner) Now() uint64 {
	if r.world == nil {
		return 0
	}
	return r.world.Tick()
}

// Events drains the notifications produced since the last call.
func (r *Runner) Events() []ecs.Event {
	if r.world == nil {
		return nil
	}
	return r.world.Events().Drain()
}

// Teardown discards every actor. Later calls on the runner are no-ops and
// late collision callbacks are logged and dropped.
func (r *Runner) Teardown() {
	r.world = nil
	r.onHit = nil
}

func (r *Runner) actor(op string, id ecs.Entity) (*component.Actor, error) {
	if r.world == nil {
		return nil, ErrTornDown
	}
	a, ok := r.world.Actor(id)
	if !ok {
		return nil, &UnknownActorError{Op: op, ID: id}
	}
	return a, nil
}

func (r *Runner) refreshGates() {
	for _, e := range r.world.Order() {
		if a, ok := r.world.Actor(e); ok {
			system.Gate(a)
		}
	}
}
