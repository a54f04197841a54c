package main

import (
	"bytes"
	"strings"
	"testing"
)

func TestRunPrintsChainTimeline(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-level", "gauntlet", "-dt", "0.05", "-seconds", "1", "-dump"}, &out); err != nil {
		t.Fatal(err)
	}
	s := out.String()
	for _, want := range []string{
		"level gauntlet",
		"spike_a    extending -> retracting",
		"spike_a    link -> spike_b",
		"phase: ",
	} {
		if !strings.Contains(s, want) {
			t.Fatalf("output missing %q:\n%s", want, s)
		}
	}
}

func TestRunWithMoverTriggersPlatform(t *testing.T) {
	var out bytes.Buffer
	if err := run([]string{"-level", "drops", "-mover", "400,500", "-seconds", "0.5"}, &out); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(out.String(), "trap_floor idle -> dropping") {
		t.Fatalf("platform should drop for a mover on its left:\n%s", out.String())
	}
}

func TestParseMover(t *testing.T) {
	cases := []struct {
		in   string
		ok   bool
		fail bool
	}{
		{"", false, false},
		{"1,2", true, false},
		{"1, 2, -3", true, false},
		{"1", false, true},
		{"a,b", false, true},
	}
	for _, c := range cases {
		t.Run(c.in, func(t *testing.T) {
			_, ok, err := parseMover(c.in)
			if (err != nil) != c.fail || ok != c.ok {
				t.Fatalf("parseMover(%q) = %v, %v", c.in, ok, err)
			}
		})
	}
}

func TestRejectsBadDelta(t *testing.T) {
	if err := run([]string{"-dt", "0"}, &bytes.Buffer{}); err == nil {
		t.Fatalf("expected error for zero dt")
	}
}
