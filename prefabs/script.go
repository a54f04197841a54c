package prefabs

import (
	"errors"
	"fmt"
	"strings"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
)

// RunLevelScript runs the level's tengo script. The script sees `level_name`
// and a `level` map of functions:
//
//	level.hazard({...})          adds a hazard, same keys as the yaml
//	level.link(from, to, delay)  links two hazards by name
//	level.solid(x, y, w, h)      adds level geometry
//	level.count()                number of hazards so far
func RunLevelScript(spec *LevelSpec) error {
	if spec == nil {
		return errors.New("nil level spec")
	}
	src, err := LoadScript(spec.Script)
	if err != nil {
		return err
	}

	var callErr error
	script := tengo.NewScript(src)
	script.SetImports(stdlib.GetModuleMap(stdlib.AllModuleNames()...))
	if err := script.Add("level", buildLevelEngine(spec, &callErr)); err != nil {
		return err
	}
	if err := script.Add("level_name", spec.Name); err != nil {
		return err
	}

	compiled, err := script.Compile()
	if err != nil {
		return err
	}
	if err := compiled.Run(); err != nil {
		return err
	}
	return callErr
}

func buildLevelEngine(spec *LevelSpec, callErr *error) *tengo.ImmutableMap {
	fail := func(err error) (tengo.Object, error) {
		if *callErr == nil {
			*callErr = err
		}
		return tengo.FalseValue, nil
	}

	values := map[string]tengo.Object{}

	values["hazard"] = &tengo.UserFunction{Name: "hazard", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		raw, ok := objectToAny(args[0]).(map[string]any)
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "spec", Expected: "map", Found: args[0].TypeName()}
		}
		h, err := DecodeSpec[HazardSpec](raw)
		if err != nil {
			return fail(fmt.Errorf("hazard %d: %w", len(spec.Hazards), err))
		}
		if strings.TrimSpace(h.Kind) == "" {
			return fail(fmt.Errorf("hazard %q: missing kind", h.Name))
		}
		spec.Hazards = append(spec.Hazards, h)
		return &tengo.String{Value: h.Name}, nil
	}}

	values["link"] = &tengo.UserFunction{Name: "link", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 2 || len(args) > 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		from, ok := tengo.ToString(args[0])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "from", Expected: "string", Found: args[0].TypeName()}
		}
		to, ok := tengo.ToString(args[1])
		if !ok {
			return nil, tengo.ErrInvalidArgumentType{Name: "to", Expected: "string", Found: args[1].TypeName()}
		}
		delay := 0.0
		if len(args) == 3 {
			if delay, ok = tengo.ToFloat64(args[2]); !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "delay", Expected: "float", Found: args[2].TypeName()}
			}
		}
		spec.Links = append(spec.Links, LinkSpec{From: from, To: to, Delay: delay})
		return tengo.TrueValue, nil
	}}

	values["solid"] = &tengo.UserFunction{Name: "solid", Value: func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 4 {
			return nil, tengo.ErrWrongNumArguments
		}
		var v [4]float64
		for i, a := range args {
			f, ok := tengo.ToFloat64(a)
			if !ok {
				return nil, tengo.ErrInvalidArgumentType{Name: "solid", Expected: "float", Found: a.TypeName()}
			}
			v[i] = f
		}
		spec.Solids = append(spec.Solids, SolidSpec{X: v[0], Y: v[1], Width: v[2], Height: v[3]})
		return tengo.TrueValue, nil
	}}

	values["count"] = &tengo.UserFunction{Name: "count", Value: func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(len(spec.Hazards))}, nil
	}}

	return &tengo.ImmutableMap{Value: values}
}

func objectToAny(obj tengo.Object) any {
	if obj == nil {
		return nil
	}

	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	case *tengo.Int:
		return int(v.Value)
	case *tengo.Float:
		return v.Value
	case *tengo.Bool:
		return !v.IsFalsy()
	case *tengo.Array:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.ImmutableArray:
		out := make([]any, 0, len(v.Value))
		for _, item := range v.Value {
			out = append(out, objectToAny(item))
		}
		return out
	case *tengo.Map:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.ImmutableMap:
		out := make(map[string]any, len(v.Value))
		for k, item := range v.Value {
			out[k] = objectToAny(item)
		}
		return out
	case *tengo.Undefined:
		return nil
	default:
		return v.String()
	}
}
