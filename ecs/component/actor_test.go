package component

import (
	"errors"
	"math"
	"testing"
)

func TestAdvanceClampsAndCompletes(t *testing.T) {
	cases := []struct {
		name     string
		steps    []float64
		duration float64
		wantP    float64
		wantT    float64
	}{
		{"partial", []float64{0.05}, 0.2, 0.25, 0.05},
		{"float_sum_completes", []float64{0.05, 0.05, 0.05}, 0.15, 1, 0.15},
		{"overshoot_clamped", []float64{5}, 0.3, 1, 0.3},
		{"zero_duration", []float64{0.1}, 0, 1, 0},
		{"negative_dt_ignored", []float64{0.1, -1, math.NaN()}, 1, 0.1, 0.1},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			a := NewActor(KindRetractable, "", Geometry{})
			var p float64
			for _, dt := range c.steps {
				p = a.Advance(dt, c.duration)
			}
			if math.Abs(p-c.wantP) > 1e-9 {
				t.Fatalf("progress %v, want %v", p, c.wantP)
			}
			if math.Abs(a.PhaseTimer-c.wantT) > 1e-9 {
				t.Fatalf("timer %v, want %v", a.PhaseTimer, c.wantT)
			}
		})
	}
}

func TestTransitionToFrozenWhenRevealed(t *testing.T) {
	a := NewActor(KindVibrating, "v", Geometry{})
	a.PhaseTimer = 0.4
	if !a.TransitionTo(PhaseFadeIn, 3) {
		t.Fatalf("transition refused")
	}
	if a.PhaseTimer != 0 || a.ChangedTick != 3 || a.Transitions != 1 {
		t.Fatalf("transition bookkeeping wrong: %+v", a)
	}
	a.Revealed = true
	if a.TransitionTo(PhaseHold, 4) || a.Phase != PhaseFadeIn {
		t.Fatalf("revealed actor changed phase")
	}
}

func TestInitialPhasesAreValid(t *testing.T) {
	for _, k := range []Kind{KindRetractable, KindVibrating, KindDropPlatform} {
		a := NewActor(k, "", Geometry{HiddenOffset: 1, VisibleOffset: 9})
		if !a.Phase.ValidFor(k) {
			t.Fatalf("%s starts in %s", k, a.Phase)
		}
		if a.ArmThreshold != 0.5 {
			t.Fatalf("%s: default arm threshold %v", k, a.ArmThreshold)
		}
	}
	if PhaseHold.ValidFor(KindRetractable) || PhaseExtending.ValidFor(KindDropPlatform) || PhaseNone.ValidFor(KindVibrating) {
		t.Fatalf("phases leak across kinds")
	}
	if NewActor(KindRetractable, "", Geometry{HiddenOffset: 1}).Visual.Offset != 1 {
		t.Fatalf("retractable should start hidden")
	}
}

func TestPositionFollowsOrientation(t *testing.T) {
	cases := []struct {
		orient Orientation
		want   Vec
	}{
		{OrientFloor, Vec{X: 10, Y: 2}},
		{OrientCeiling, Vec{X: 10, Y: 18}},
		{OrientLeft, Vec{X: 18, Y: 10}},
		{OrientRight, Vec{X: 2, Y: 10}},
	}
	for _, c := range cases {
		t.Run(c.orient.String(), func(t *testing.T) {
			a := NewActor(KindRetractable, "", Geometry{Anchor: Vec{X: 10, Y: 10}, Orientation: c.orient, VisibleOffset: 8})
			a.Visual.Offset = 8
			if got := a.Position(); got != c.want {
				t.Fatalf("position %+v, want %+v", got, c.want)
			}
			parsed, ok := ParseOrientation(c.orient.String())
			if !ok || parsed != c.orient {
				t.Fatalf("orientation did not round trip through its name")
			}
		})
	}

	p := NewActor(KindDropPlatform, "", Geometry{Anchor: Vec{X: 5, Y: 5}})
	p.Visual.Offset = 20
	if got := p.Position(); got != (Vec{X: 5, Y: 25}) {
		t.Fatalf("platform should sink downward, got %+v", got)
	}
}

func TestPhaseDuration(t *testing.T) {
	a := NewActor(KindDropPlatform, "", Geometry{})
	a.Drop = DropTiming{DropDuration: 0.3, RaiseDuration: 0.6}
	if a.PhaseDuration() != 0 {
		t.Fatalf("idle without arm has no duration")
	}
	a.Armed, a.StartDelay = true, 0.2
	if a.PhaseDuration() != 0.2 {
		t.Fatalf("armed idle waits for its start delay")
	}
	a.Phase = PhaseHolding
	a.Rule = &ProximityRule{MaxHoldTimeout: 4}
	if a.PhaseDuration() != 4 {
		t.Fatalf("waiting is bounded by the hold timeout")
	}
	a.Phase = PhaseRaising
	if a.PhaseDuration() != 0.6 {
		t.Fatalf("raising duration")
	}
}

func TestValidation(t *testing.T) {
	cases := []struct {
		name string
		err  error
		want error
	}{
		{"retract_ok", RetractTiming{Extend: 1}.Validate(), nil},
		{"retract_negative", RetractTiming{Retract: -1}.Validate(), ErrInvalidTiming},
		{"vibrate_nan", VibrateTiming{Hold: math.NaN()}.Validate(), ErrInvalidTiming},
		{"drop_inf", DropTiming{ArmDelay: math.Inf(1)}.Validate(), ErrInvalidTiming},
		{"rule_ok", ProximityRule{TriggerDistance: 5, MinHoldDelay: 1, MaxHoldTimeout: 2}.Validate(), nil},
		{"rule_no_timeout", ProximityRule{TriggerDistance: 5}.Validate(), ErrInvalidRule},
		{"rule_min_over_max", ProximityRule{MinHoldDelay: 3, MaxHoldTimeout: 2}.Validate(), ErrInvalidRule},
		{"rule_negative_distance", ProximityRule{TriggerDistance: -1, MaxHoldTimeout: 2}.Validate(), ErrInvalidRule},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if c.want == nil {
				if c.err != nil {
					t.Fatalf("unexpected error %v", c.err)
				}
				return
			}
			if !errors.Is(c.err, c.want) {
				t.Fatalf("expected %v, got %v", c.want, c.err)
			}
		})
	}
}

func TestParseNames(t *testing.T) {
	if k, ok := ParseKind("Drop_Platform"); !ok || k != KindDropPlatform {
		t.Fatalf("kind parse failed")
	}
	if _, ok := ParseKind("lava"); ok {
		t.Fatalf("unknown kind accepted")
	}
	if d, ok := ParseDirection("from_left"); !ok || d != DirectionFromLeft {
		t.Fatalf("direction parse failed")
	}
	if PhaseHolding.String() != "waiting" {
		t.Fatalf("drop platform hold phase is reported as waiting")
	}
}
