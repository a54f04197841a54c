package prefabs

import (
	"strings"
	"testing"

	"github.com/milk9111/trapline/choreo"
	"gopkg.in/yaml.v3"
)

func TestDumpRunner(t *testing.T) {
	spec, err := LoadLevel("gauntlet")
	if err != nil {
		t.Fatal(err)
	}
	r := choreo.NewRunner()
	if _, err := Build(r, spec, nil); err != nil {
		t.Fatal(err)
	}
	r.Tick(0.05)

	dump := DumpRunner(r)
	if len(dump) != len(spec.Hazards) {
		t.Fatalf("expected %d entries, got %d", len(spec.Hazards), len(dump))
	}
	if dump[0].Name != "spike_a" || dump[0].Phase != "extending" {
		t.Fatalf("first entry should be the chain head, got %+v", dump[0])
	}

	raw, err := MarshalDump(dump)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(raw), "phase: extending") {
		t.Fatalf("dump missing phase:\n%s", raw)
	}
	var back []ActorDump
	if err := yaml.Unmarshal(raw, &back); err != nil || len(back) != len(dump) {
		t.Fatalf("dump is not valid yaml: %v", err)
	}
}
