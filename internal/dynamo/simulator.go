package dynamo

import (
	"context"
	"fmt"
)

type Simulator struct {
	dyn        System
	integrator Integrator
}

func New(dyn System, integrator Integrator) *Simulator {
	return &Simulator{
		dyn:        dyn,
		integrator: integrator,
	}
}

// Run advances x0 across every sample of grid. The step that lands on
// sample i starts at t_{i-1} and sees forcing.At(i). Any non-finite state
// aborts the run and no trajectory is returned.
func (s *Simulator) Run(ctx context.Context, x0 State, grid TimeGrid, forcing Forcing) (*Trajectory, error) {
	if len(x0) != s.dyn.StateDim() {
		return nil, fmt.Errorf("%w: state has %d components, system expects %d", ErrDimensionMismatch, len(x0), s.dyn.StateDim())
	}

	n := grid.SampleCount()
	if forcing.Len() < n {
		return nil, fmt.Errorf("%w: forcing has %d samples, grid has %d", ErrDimensionMismatch, forcing.Len(), n)
	}

	traj := &Trajectory{
		States: make([]State, 0, n),
		Times:  make([]float64, 0, n),
	}

	x := x0.Clone()
	if !x.IsValid() {
		return nil, &SimulationError{Step: 0, Time: 0, State: x, Wrapped: ErrNumericInstability}
	}

	traj.States = append(traj.States, x.Clone())
	traj.Times = append(traj.Times, grid.At(0))

	for i := 1; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		u := forcing.At(i)
		if len(u) != s.dyn.ControlDim() {
			return nil, fmt.Errorf("%w: control has %d components, system expects %d", ErrDimensionMismatch, len(u), s.dyn.ControlDim())
		}

		x = s.integrator.Step(s.dyn, x, u, grid.At(i-1), grid.Dt)
		t := grid.At(i)

		if !x.IsValid() {
			return nil, &SimulationError{Step: i, Time: t, State: x.Clone(), Wrapped: ErrNumericInstability}
		}

		traj.States = append(traj.States, x.Clone())
		traj.Times = append(traj.Times, t)
		traj.StepsTaken++
	}

	return traj, nil
}
