package dynamo

import (
	"math"
)

type State []float64

func (s State) Clone() State {
	c := make(State, len(s))
	copy(c, s)
	return c
}

func (s State) IsValid() bool {
	for _, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

type Control []float64

type System interface {
	Derive(x State, u Control, t float64) State
	StateDim() int
	ControlDim() int
}

type Integrator interface {
	Step(dyn System, x State, u Control, t float64, dt float64) State
}

// Forcing supplies the control applied on the step that lands on sample i.
type Forcing interface {
	At(i int) Control
	Len() int
}

// Sampled adapts equally long series into a Forcing, one control
// component per series.
type Sampled []Series

func (s Sampled) At(i int) Control {
	u := make(Control, len(s))
	for k := range s {
		u[k] = s[k][i]
	}
	return u
}

func (s Sampled) Len() int {
	if len(s) == 0 {
		return 0
	}
	n := len(s[0])
	for _, c := range s[1:] {
		if len(c) < n {
			n = len(c)
		}
	}
	return n
}

// Trajectory is the sampled state history of one run.
type Trajectory struct {
	States     []State
	Times      []float64
	StepsTaken int
}

// Component extracts state variable k as a series.
func (t *Trajectory) Component(k int) Series {
	out := make(Series, len(t.States))
	for i, x := range t.States {
		out[i] = x[k]
	}
	return out
}
