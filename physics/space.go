// Package physics hosts the player body and the hazard hit boxes in a
// Chipmunk space. Space is the collision, render and mover collaborator for a
// choreo.Runner.
package physics

import (
	"log"
	"math"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/trapline/choreo"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
)

const (
	collisionTypePlayer cp.CollisionType = iota + 1
	collisionTypeSolid
	collisionTypeHazard
)

const groundGraceSteps = 6

// DefaultGravity is in world units per second squared, y down.
const DefaultGravity = 1800.0

type hazardBody struct {
	body   *cp.Body
	shape  *cp.Shape
	w, h   float64
	lethal bool
}

// Space implements choreo.CollisionSource, choreo.RenderSink,
// choreo.MoverSource and choreo.ActorRemover.
type Space struct {
	space         *cp.Space
	handlersReady bool

	player           *cp.Body
	playerShape      *cp.Shape
	playerW, playerH float64

	grounded    bool
	groundGrace int

	hazards   map[ecs.Entity]*hazardBody
	shapes    map[*cp.Shape]ecs.Entity
	callbacks map[ecs.Entity]func()
	order     []ecs.Entity
	touching  map[ecs.Entity]bool
}

// NewSpace creates an empty space with the given downward gravity.
func NewSpace(gravity float64) *Space {
	space := cp.NewSpace()
	space.Iterations = 20
	space.SetGravity(cp.Vector{X: 0, Y: gravity})

	s := &Space{
		space:     space,
		hazards:   make(map[ecs.Entity]*hazardBody),
		shapes:    make(map[*cp.Shape]ecs.Entity),
		callbacks: make(map[ecs.Entity]func()),
		touching:  make(map[ecs.Entity]bool),
	}
	s.ensureHandlers()
	return s
}

// Space returns the underlying Chipmunk space.
func (s *Space) Space() *cp.Space {
	if s == nil {
		return nil
	}
	return s.space
}

// AddSolid adds static level geometry; x, y is the top-left corner.
func (s *Space) AddSolid(x, y, w, h float64) {
	if s == nil || w <= 0 || h <= 0 {
		return
	}
	bb := cp.BB{L: x, B: y, R: x + w, T: y + h}
	shape := cp.NewBox2(s.space.StaticBody, bb, 0)
	shape.SetFriction(0.8)
	shape.SetCollisionType(collisionTypeSolid)
	s.space.AddShape(shape)
}

// SpawnPlayer places the player box centered on x, y, replacing any previous
// player body.
func (s *Space) SpawnPlayer(x, y, w, h float64) {
	if s == nil || w <= 0 || h <= 0 {
		return
	}
	if s.player != nil {
		s.space.RemoveShape(s.playerShape)
		s.space.RemoveBody(s.player)
	}
	body := cp.NewBody(1, math.Inf(1))
	body.SetPosition(cp.Vector{X: x, Y: y})
	shape := cp.NewBox(body, w, h, 0)
	shape.SetFriction(0)
	shape.SetCollisionType(collisionTypePlayer)
	s.space.AddBody(body)
	s.space.AddShape(shape)
	s.player = body
	s.playerShape = shape
	s.playerW, s.playerH = w, h
	s.grounded = false
	s.groundGrace = 0
}

// MovePlayer sets the horizontal speed and, when grounded, applies a jump.
func (s *Space) MovePlayer(vx float64, jump bool, jumpSpeed float64) {
	if s == nil || s.player == nil {
		return
	}
	v := s.player.Velocity()
	y := v.Y
	if jump && s.Grounded() {
		y = -jumpSpeed
		s.groundGrace = 0
		s.grounded = false
	}
	s.player.SetVelocity(vx, y)
}

// Grounded reports whether the player touched ground within the last few
// steps.
func (s *Space) Grounded() bool {
	return s != nil && (s.grounded || s.groundGrace > 0)
}

// PlayerBox returns the player's axis-aligned box, top-left origin.
func (s *Space) PlayerBox() (x, y, w, h float64, ok bool) {
	if s == nil || s.playerShape == nil {
		return 0, 0, 0, 0, false
	}
	bb := s.playerShape.BB()
	return bb.L, bb.B, bb.R - bb.L, bb.T - bb.B, true
}

// MoverPosition reports the player's center and vertical velocity.
func (s *Space) MoverPosition() (component.Mover, bool) {
	if s == nil || s.player == nil {
		return component.Mover{}, false
	}
	p := s.player.Position()
	v := s.player.Velocity()
	return component.Mover{X: p.X, Y: p.Y, VelocityY: v.Y}, true
}

// OnPlayerCollision registers fn to run after a Step in which the player
// overlapped the actor's hit box while it was lethal.
func (s *Space) OnPlayerCollision(id ecs.Entity, fn func()) {
	if s == nil || fn == nil {
		return
	}
	if _, ok := s.callbacks[id]; !ok {
		s.order = append(s.order, id)
	}
	s.callbacks[id] = fn
}

// SyncActor moves the actor's kinematic hit box and toggles whether it can
// touch the player.
func (s *Space) SyncActor(id ecs.Entity, st choreo.VisualState) {
	if s == nil {
		return
	}
	w := st.HitBox.R - st.HitBox.L
	h := st.HitBox.T - st.HitBox.B
	hb := s.hazards[id]
	if hb != nil && (hb.w != w || hb.h != h) {
		s.removeHazard(id)
		hb = nil
	}
	if hb == nil {
		if w <= 0 || h <= 0 {
			return
		}
		hb = s.addHazard(id, w, h)
	}
	hb.body.SetPosition(st.HitBox.Center())
	if hb.lethal != st.Lethal {
		hb.lethal = st.Lethal
		if st.Lethal {
			hb.shape.SetFilter(cp.SHAPE_FILTER_ALL)
		} else {
			hb.shape.SetFilter(cp.SHAPE_FILTER_NONE)
		}
	}
}

func (s *Space) addHazard(id ecs.Entity, w, h float64) *hazardBody {
	body := cp.NewKinematicBody()
	shape := cp.NewBox(body, w, h, 0)
	shape.SetSensor(true)
	shape.SetCollisionType(collisionTypeHazard)
	shape.SetFilter(cp.SHAPE_FILTER_NONE)
	s.space.AddBody(body)
	s.space.AddShape(shape)

	hb := &hazardBody{body: body, shape: shape, w: w, h: h}
	s.hazards[id] = hb
	s.shapes[shape] = id
	return hb
}

// RemoveActor drops the actor's hit box and collision callback.
func (s *Space) RemoveActor(id ecs.Entity) {
	if s == nil {
		return
	}
	s.removeHazard(id)
	if _, ok := s.callbacks[id]; !ok {
		return
	}
	delete(s.callbacks, id)
	delete(s.touching, id)
	for i, e := range s.order {
		if e == id {
			s.order = append(s.order[:i], s.order[i+1:]...)
			break
		}
	}
}

func (s *Space) removeHazard(id ecs.Entity) {
	hb := s.hazards[id]
	if hb == nil {
		return
	}
	s.space.RemoveShape(hb.shape)
	s.space.RemoveBody(hb.body)
	delete(s.shapes, hb.shape)
	delete(s.hazards, id)
}

// Step advances the simulation by dt seconds and then runs the collision
// callbacks of every lethal hazard the player overlapped, in registration
// order. Callbacks never run inside the Chipmunk step.
func (s *Space) Step(dt float64) {
	if s == nil || dt <= 0 || math.IsNaN(dt) || math.IsInf(dt, 0) {
		return
	}
	clear(s.touching)
	s.grounded = false
	if s.groundGrace > 0 {
		s.groundGrace--
	}

	s.space.Step(dt)
	s.confirmOverlaps()

	for _, id := range s.order {
		if !s.touching[id] {
			continue
		}
		if fn := s.callbacks[id]; fn != nil {
			fn()
		}
	}
}

// confirmOverlaps marks lethal hazards whose box overlaps the player's.
// Chipmunk reports no contact for boxes that coincide exactly.
func (s *Space) confirmOverlaps() {
	if s.player == nil {
		return
	}
	player := cp.NewBBForExtents(s.player.Position(), s.playerW/2, s.playerH/2)
	for id, hb := range s.hazards {
		if hb.lethal && overlaps(player, hb.bb()) {
			s.touching[id] = true
		}
	}
}

func (hb *hazardBody) bb() cp.BB {
	return cp.NewBBForExtents(hb.body.Position(), hb.w/2, hb.h/2)
}

// overlaps is a strict AABB test; boxes that only share an edge do not
// touch.
func overlaps(a, b cp.BB) bool {
	return a.L < b.R && b.L < a.R && a.B < b.T && b.B < a.T
}

// Reset drops every hazard and callback, keeping solids and the player.
func (s *Space) Reset() {
	if s == nil {
		return
	}
	for id := range s.hazards {
		s.removeHazard(id)
	}
	clear(s.callbacks)
	clear(s.touching)
	s.order = s.order[:0]
}

func (s *Space) ensureHandlers() {
	if s.handlersReady || s.space == nil {
		return
	}

	groundHandler := s.space.NewCollisionHandler(collisionTypePlayer, collisionTypeSolid)
	groundHandler.UserData = s
	groundHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		hs, ok := userData.(*Space)
		if !ok || hs == nil {
			return true
		}
		shapeA, _ := arb.Shapes()
		n := arb.Normal()
		if shapeA != hs.playerShape {
			n = n.Neg()
		}
		// ground is below the player: normal points down in screen space
		if n.Y > 0.5 {
			hs.grounded = true
			hs.groundGrace = groundGraceSteps
		}
		return true
	}

	hazardHandler := s.space.NewCollisionHandler(collisionTypePlayer, collisionTypeHazard)
	hazardHandler.UserData = s
	hazardHandler.PreSolveFunc = func(arb *cp.Arbiter, space *cp.Space, userData interface{}) bool {
		hs, ok := userData.(*Space)
		if !ok || hs == nil {
			return true
		}
		shapeA, shapeB := arb.Shapes()
		id, okA := hs.shapes[shapeA]
		if !okA {
			var okB bool
			id, okB = hs.shapes[shapeB]
			if !okB {
				log.Printf("physics: overlap with untracked hazard shape ignored")
				return true
			}
		}
		if hb := hs.hazards[id]; hb != nil && hb.lethal {
			hs.touching[id] = true
		}
		return true
	}

	s.handlersReady = true
}
