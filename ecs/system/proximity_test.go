package system

import (
	"testing"

	"github.com/jakecoffman/cp"
	"github.com/milk9111/trapline/ecs/component"
)

func TestTriggers(t *testing.T) {
	anchor := component.Vec{X: 100, Y: 50}
	cases := []struct {
		name string
		x    float64
		dir  component.DirectionFilter
		want bool
	}{
		{"inside_any", 120, component.DirectionAny, true},
		{"boundary_left", 70, component.DirectionAny, true},
		{"boundary_right", 130, component.DirectionAny, true},
		{"outside", 130.5, component.DirectionAny, false},
		{"from_left_ok", 80, component.DirectionFromLeft, true},
		{"from_left_wrong_side", 120, component.DirectionFromLeft, false},
		{"from_right_ok", 120, component.DirectionFromRight, true},
		{"from_right_wrong_side", 80, component.DirectionFromRight, false},
		{"directly_above_left", 100, component.DirectionFromLeft, true},
		{"directly_above_right", 100, component.DirectionFromRight, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			rule := component.ProximityRule{TriggerDistance: 30, Direction: c.dir, MaxHoldTimeout: 1}
			if got := Triggers(component.Mover{X: c.x, Y: -400}, anchor, rule); got != c.want {
				t.Fatalf("Triggers = %v, want %v", got, c.want)
			}
		})
	}
}

func TestJumpDetected(t *testing.T) {
	a := component.NewActor(component.KindDropPlatform, "p", component.Geometry{
		Anchor: component.Vec{X: 100, Y: 200},
		Size:   component.Vec{X: 40, Y: 10},
	})
	a.Visual.Offset = 30
	rule := component.ProximityRule{JumpToDisable: true, JumpMargin: 6, MaxHoldTimeout: 1}

	cases := []struct {
		name string
		m    component.Mover
		want bool
	}{
		{"falling_past_margin", component.Mover{X: 100, Y: 236, VelocityY: 50}, true},
		{"falling_short_of_margin", component.Mover{X: 100, Y: 235, VelocityY: 50}, false},
		{"rising", component.Mover{X: 100, Y: 240, VelocityY: -50}, false},
		{"standing", component.Mover{X: 100, Y: 240}, false},
		{"beside_platform", component.Mover{X: 121, Y: 240, VelocityY: 50}, false},
		{"platform_edge", component.Mover{X: 80, Y: 240, VelocityY: 50}, true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := JumpDetected(c.m, a, rule); got != c.want {
				t.Fatalf("JumpDetected = %v, want %v", got, c.want)
			}
		})
	}
}

func TestLethalGate(t *testing.T) {
	spike := func(reveal float64) *component.Actor {
		a := component.NewActor(component.KindRetractable, "", component.Geometry{})
		a.Visual.Reveal = reveal
		return a
	}
	cases := []struct {
		name string
		a    *component.Actor
		want bool
	}{
		{"spike_hidden", spike(0), false},
		{"spike_below_threshold", spike(0.49), false},
		{"spike_at_threshold", spike(0.5), true},
		{"spike_decoy", func() *component.Actor { a := spike(1); a.Decoy = true; return a }(), false},
		{"spike_revealed_decoy", func() *component.Actor { a := spike(0); a.Decoy = true; a.Revealed = true; return a }(), true},
		{"vibrating_invisible", component.NewActor(component.KindVibrating, "", component.Geometry{}), true},
		{"platform_unarmed", component.NewActor(component.KindDropPlatform, "", component.Geometry{}), false},
		{"platform_armed", func() *component.Actor {
			a := component.NewActor(component.KindDropPlatform, "", component.Geometry{})
			a.DropState.HazardArmed = true
			return a
		}(), true},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			Gate(c.a)
			if got := IsLethal(c.a); got != c.want {
				t.Fatalf("IsLethal = %v, want %v", got, c.want)
			}
		})
	}
}

func TestHitBox(t *testing.T) {
	a := component.NewActor(component.KindRetractable, "", component.Geometry{
		Anchor:        component.Vec{X: 50, Y: 50},
		VisibleOffset: 10,
		Size:          component.Vec{X: 8, Y: 12},
	})
	a.Visual.Offset = 10
	if got := HitBox(a); got != (cp.BB{L: 46, B: 34, R: 54, T: 46}) {
		t.Fatalf("spike hit box %+v", got)
	}

	p := component.NewActor(component.KindDropPlatform, "", component.Geometry{
		Anchor: component.Vec{X: 50, Y: 50},
		Size:   component.Vec{X: 20, Y: 4},
	})
	p.Visual.Offset = 5
	if got := HitBox(p); got != (cp.BB{L: 40, B: 55, R: 60, T: 59}) {
		t.Fatalf("platform hit box %+v", got)
	}
}
