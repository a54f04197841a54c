// Command choreotrace runs a level headless and prints its hazard events, for
// checking choreography timing without a window.
package main

import (
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"

	"github.com/milk9111/trapline/choreo"
	"github.com/milk9111/trapline/ecs"
	"github.com/milk9111/trapline/ecs/component"
	"github.com/milk9111/trapline/prefabs"
)

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		log.Fatal(err)
	}
}

type traceOptions struct {
	level   string
	dt      float64
	seconds float64
	mover   string
	phases  bool
	dump    bool
}

func parseFlags(args []string) (traceOptions, error) {
	var opts traceOptions
	fs := flag.NewFlagSet("choreotrace", flag.ContinueOnError)
	fs.StringVar(&opts.level, "level", "gauntlet", "level name in prefabs/levels/ (basename, .yaml optional)")
	fs.Float64Var(&opts.dt, "dt", 1.0/60.0, "seconds per tick")
	fs.Float64Var(&opts.seconds, "seconds", 5, "simulated seconds to run")
	fs.StringVar(&opts.mover, "mover", "", "fixed mover sample as x,y[,vy]")
	fs.BoolVar(&opts.phases, "phases", true, "print phase changes")
	fs.BoolVar(&opts.dump, "dump", false, "print the final actor state as yaml")
	if err := fs.Parse(args); err != nil {
		return opts, err
	}
	if opts.dt <= 0 {
		return opts, fmt.Errorf("dt must be positive, got %v", opts.dt)
	}
	return opts, nil
}

func parseMover(s string) (component.Mover, bool, error) {
	if strings.TrimSpace(s) == "" {
		return component.Mover{}, false, nil
	}
	parts := strings.Split(s, ",")
	if len(parts) < 2 || len(parts) > 3 {
		return component.Mover{}, false, fmt.Errorf("mover %q: want x,y[,vy]", s)
	}
	var v [3]float64
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 64)
		if err != nil {
			return component.Mover{}, false, fmt.Errorf("mover %q: %w", s, err)
		}
		v[i] = f
	}
	return component.Mover{X: v[0], Y: v[1], VelocityY: v[2]}, true, nil
}

func run(args []string, out io.Writer) error {
	opts, err := parseFlags(args)
	if err != nil {
		return err
	}
	mover, hasMover, err := parseMover(opts.mover)
	if err != nil {
		return err
	}

	spec, err := prefabs.LoadLevel(opts.level)
	if err != nil {
		return err
	}

	var runnerOpts []choreo.Option
	if hasMover {
		runnerOpts = append(runnerOpts, choreo.WithMoverSource(choreo.MoverFunc(func() (component.Mover, bool) {
			return mover, true
		})))
	}
	r := choreo.NewRunner(runnerOpts...)
	scene, err := prefabs.Build(r, spec, func(ev choreo.DeathEvent) {
		fmt.Fprintf(out, "death %s revealed=%d\n", ev.Name, len(ev.Revealed))
	})
	if err != nil {
		return err
	}
	names := make(map[ecs.Entity]string, len(scene.Actors))
	for name, e := range scene.Actors {
		names[e] = name
	}
	label := func(e ecs.Entity) string {
		if n, ok := names[e]; ok {
			return n
		}
		return e.String()
	}

	fmt.Fprintf(out, "level %s: %d hazards, %d links\n", spec.Name, len(spec.Hazards), len(spec.Links))
	ticks := int(opts.seconds/opts.dt + 0.5)
	for i := 1; i <= ticks; i++ {
		r.Tick(opts.dt)
		now := float64(i) * opts.dt
		for _, ev := range r.Events() {
			switch ev.Kind {
			case ecs.EventPhaseChanged:
				if opts.phases {
					fmt.Fprintf(out, "%8.3f %-10s %s -> %s\n", now, label(ev.Entity), ev.From, ev.To)
				}
			case ecs.EventLinkFired:
				fmt.Fprintf(out, "%8.3f %-10s link -> %s\n", now, label(ev.Entity), label(ev.Target))
			default:
				fmt.Fprintf(out, "%8.3f %-10s %s\n", now, label(ev.Entity), ev.Kind)
			}
		}
	}

	if opts.dump {
		raw, err := prefabs.MarshalDump(prefabs.DumpRunner(r))
		if err != nil {
			return err
		}
		if _, err := out.Write(raw); err != nil {
			return err
		}
	}
	return nil
}
