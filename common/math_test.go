package common

import (
	"math"
	"testing"
)

func TestClamp01(t *testing.T) {
	cases := []struct {
		in   float64
		want float64
	}{
		{-1, 0},
		{0, 0},
		{0.25, 0.25},
		{1, 1},
		{3, 1},
		{math.NaN(), 0},
	}
	for _, c := range cases {
		if got := Clamp01(c.in); got != c.want {
			t.Fatalf("Clamp01(%v) = %v, want %v", c.in, got, c.want)
		}
	}
}

func TestSanitizeDelta(t *testing.T) {
	cases := []struct {
		name string
		in   float64
		want float64
	}{
		{"negative", -0.5, 0},
		{"nan", math.NaN(), 0},
		{"inf", math.Inf(1), 0},
		{"normal", 0.016, 0.016},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if got := SanitizeDelta(c.in); got != c.want {
				t.Fatalf("got %v want %v", got, c.want)
			}
		})
	}
}

func TestApproxGE(t *testing.T) {
	sum := 0.0
	for i := 0; i < 3; i++ {
		sum += 0.05
	}
	if !ApproxGE(sum, 0.15) {
		t.Fatalf("expected %v >= 0.15 within epsilon", sum)
	}
	if ApproxGE(0.1, 0.15) {
		t.Fatalf("0.1 should not reach 0.15")
	}
}
