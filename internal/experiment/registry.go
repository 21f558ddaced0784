package experiment

import (
	"sort"

	"github.com/san-kum/ventsim/internal/dynamo"
	"github.com/san-kum/ventsim/internal/physics"
)

// LeakSpec carries every field a fistula kind may read.
type LeakSpec struct {
	Rf       float64
	Active   bool
	Fraction float64
}

type Registry struct {
	fistulas map[string]func(LeakSpec) physics.Fistula
}

func NewRegistry() *Registry {
	r := &Registry{
		fistulas: make(map[string]func(LeakSpec) physics.Fistula),
	}

	r.fistulas[physics.KindNone] = func(LeakSpec) physics.Fistula { return physics.NoLeak{} }
	r.fistulas[physics.KindConductance] = func(s LeakSpec) physics.Fistula {
		return physics.ConductanceLeak{Rf: s.Rf, Active: s.Active}
	}
	r.fistulas[physics.KindFlowFraction] = func(s LeakSpec) physics.Fistula {
		return physics.FlowFractionLeak{Fraction: s.Fraction}
	}
	r.fistulas[physics.KindVolumeFraction] = func(s LeakSpec) physics.Fistula {
		return physics.VolumeFractionLeak{Fraction: s.Fraction}
	}

	return r
}

func (r *Registry) GetFistula(kind string, spec LeakSpec) (physics.Fistula, error) {
	if kind == "" {
		kind = physics.KindNone
	}
	fn, ok := r.fistulas[kind]
	if !ok {
		return nil, dynamo.InvalidParam("unknown fistula kind %q", kind)
	}
	f := fn(spec)
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return f, nil
}

func (r *Registry) ListFistulas() []string {
	names := make([]string, 0, len(r.fistulas))
	for name := range r.fistulas {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// FistulasFor lists the kinds a compartment may carry in mode.
func (r *Registry) FistulasFor(mode Mode) []string {
	names := make([]string, 0, len(r.fistulas))
	for _, name := range r.ListFistulas() {
		f := r.fistulas[name](LeakSpec{Rf: 1})
		switch mode {
		case Algebraic:
			if _, ok := f.(physics.VolumeLeak); ok {
				names = append(names, name)
			}
		default:
			if _, ok := f.(physics.FlowLeak); ok {
				names = append(names, name)
			}
		}
	}
	return names
}
