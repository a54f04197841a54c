package prefabs

import (
	"github.com/milk9111/trapline/choreo"
	"gopkg.in/yaml.v3"
)

// ActorDump is one line of a runner state dump.
type ActorDump struct {
	ID       string  `yaml:"id"`
	Name     string  `yaml:"name,omitempty"`
	Kind     string  `yaml:"kind"`
	Phase    string  `yaml:"phase"`
	Timer    float64 `yaml:"timer"`
	Opacity  float64 `yaml:"opacity"`
	Lethal   bool    `yaml:"lethal"`
	Revealed bool    `yaml:"revealed,omitempty"`
	Cycles   int     `yaml:"cycles,omitempty"`
}

// DumpRunner snapshots every actor of r in tick order.
func DumpRunner(r *choreo.Runner) []ActorDump {
	var out []ActorDump
	for _, e := range r.Actors() {
		a, ok := r.Actor(e)
		if !ok {
			continue
		}
		out = append(out, ActorDump{
			ID:       e.String(),
			Name:     a.Name,
			Kind:     a.Kind.String(),
			Phase:    a.Phase.String(),
			Timer:    a.PhaseTimer,
			Opacity:  a.Visual.Opacity,
			Lethal:   r.IsLethal(e),
			Revealed: a.Revealed,
			Cycles:   a.CycleCount,
		})
	}
	return out
}

// MarshalDump renders a dump as yaml, for the clipboard or a trace file.
func MarshalDump(d []ActorDump) ([]byte, error) {
	return yaml.Marshal(d)
}
