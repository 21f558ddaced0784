// Package dynamo provides the numerical primitives shared by the lung models.
//
// The package defines the fundamental types for fixed-step simulation of
// volume-driven respiratory mechanics:
//
//   - [TimeGrid]: the uniform time axis every output series is sampled on
//   - [Series]: a sampled signal on a [TimeGrid]
//   - [System]: interface for ODE systems (dX/dt = f(X, u, t))
//   - [Integrator]: numerical stepper interface
//   - [Simulator]: advances a [System] sample by sample under a [Forcing]
//
// # Example
//
//	grid, _ := dynamo.NewTimeGrid(0.01, 20)
//	s := dynamo.New(lungs, integrators.NewEuler())
//	traj, err := s.Run(ctx, x0, grid, dynamo.Sampled{pressure})
//
// # Thread Safety
//
// Simulator instances hold no per-run state and may be shared, but the
// System and Integrator they wrap must themselves be safe for concurrent use.
package dynamo
