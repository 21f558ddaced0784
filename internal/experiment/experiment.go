package experiment

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"

	"github.com/san-kum/ventsim/internal/drive"
	"github.com/san-kum/ventsim/internal/dynamo"
	"github.com/san-kum/ventsim/internal/integrators"
	"github.com/san-kum/ventsim/internal/physics"
)

// Mode selects how the two compartments are combined.
type Mode int

const (
	// Coupled integrates both lungs by explicit Euler under the
	// single-compartment pressure as a shared driving pressure.
	Coupled Mode = iota
	// Algebraic computes each lung's volume in closed form and averages
	// the two lungs' elastic and resistive pressures.
	Algebraic
)

func (m Mode) String() string {
	switch m {
	case Coupled:
		return "coupled"
	case Algebraic:
		return "algebraic"
	default:
		return fmt.Sprintf("mode(%d)", int(m))
	}
}

func ParseMode(name string) (Mode, error) {
	switch strings.ToLower(name) {
	case "", "coupled":
		return Coupled, nil
	case "algebraic":
		return Algebraic, nil
	default:
		return Coupled, dynamo.InvalidParam("unknown mode %q", name)
	}
}

// Params is the complete, immutable input of one run.
type Params struct {
	Dt       float64
	Duration float64
	Drive    drive.Params
	Single   physics.SingleCompartment
	Right    physics.Compartment
	Left     physics.Compartment
	Mode     Mode
	Initial  physics.InitialCondition
}

func DefaultParams() Params {
	return Params{
		Dt:       dynamo.DefaultDt,
		Duration: dynamo.DefaultDuration,
		Drive:    drive.DefaultParams(),
		Single:   physics.NewSingleCompartment(),
		Right:    physics.NewCompartment(physics.RightLung, 25, 6, 0),
		Left:     physics.NewCompartment(physics.LeftLung, 15, 4, 0),
		Mode:     Coupled,
		Initial:  physics.InitFRC,
	}
}

func (p Params) Validate() error {
	if _, err := dynamo.NewTimeGrid(p.Dt, p.Duration); err != nil {
		return err
	}
	if err := p.Drive.Validate(); err != nil {
		return err
	}
	if err := p.Single.Validate(); err != nil {
		return err
	}

	switch p.Mode {
	case Coupled:
		if err := p.Right.ValidateCoupled(); err != nil {
			return err
		}
		if err := p.Left.ValidateCoupled(); err != nil {
			return err
		}
		if p.Initial != physics.InitFRC && p.Initial != physics.InitZero {
			return dynamo.InvalidParam("unknown initial condition %d", int(p.Initial))
		}
	case Algebraic:
		if err := p.Right.ValidateAlgebraic(); err != nil {
			return err
		}
		if err := p.Left.ValidateAlgebraic(); err != nil {
			return err
		}
	default:
		return dynamo.InvalidParam("unknown mode %d", int(p.Mode))
	}

	return nil
}

// Result holds every output series of one run on a common time grid.
// It is never modified after Simulate returns. No two series share a
// backing array.
type Result struct {
	Params Params

	Times   dynamo.Series
	VIn     dynamo.Series // drive volume
	DVIn    dynamo.Series // drive flow
	PSingle dynamo.Series // single-compartment pressure
	VD      dynamo.Series // right lung volume
	VE      dynamo.Series // left lung volume
	VTotal  dynamo.Series
	PDrive  dynamo.Series // coupled mode only
	PTotal  dynamo.Series // algebraic mode only

	Right physics.Trace
	Left  physics.Trace
}

// Pressure returns the two-compartment pressure of whichever mode ran.
func (r *Result) Pressure() dynamo.Series {
	if r.Params.Mode == Algebraic {
		return r.PTotal
	}
	return r.PDrive
}

func (r *Result) SampleCount() int { return len(r.Times) }

// Simulate runs p from scratch.
func Simulate(p Params) (*Result, error) {
	return SimulateContext(context.Background(), p)
}

// SimulateContext runs p, stopping between integration steps if ctx is done.
// Either a complete finite result or an error is returned, never both.
func SimulateContext(ctx context.Context, p Params) (*Result, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	grid, err := dynamo.NewTimeGrid(p.Dt, p.Duration)
	if err != nil {
		return nil, err
	}

	logger := log.WithFields(log.Fields{
		"mode":    p.Mode.String(),
		"samples": grid.SampleCount(),
		"dt":      grid.Dt,
	})
	logger.Debug("simulation started")

	w, err := drive.Generate(p.Drive, grid)
	if err != nil {
		return nil, err
	}

	res := &Result{
		Params:  p,
		Times:   grid.Times(),
		VIn:     w.Volume,
		DVIn:    w.Flow,
		PSingle: p.Single.Pressure(w.Volume, w.Flow, p.Drive.PEEP),
	}

	switch p.Mode {
	case Algebraic:
		alg, err := physics.Algebraic(p.Right, p.Left, w, p.Drive.PEEP)
		if err != nil {
			return nil, err
		}
		res.Right, res.Left, res.PTotal = alg.Right, alg.Left, alg.Total
	default:
		lungs, err := physics.NewTwoLung(p.Right, p.Left)
		if err != nil {
			return nil, err
		}

		res.PDrive = res.PSingle.Clone()
		traj, err := dynamo.New(lungs, integrators.NewEuler()).Run(ctx, lungs.InitialState(p.Initial), grid, dynamo.Sampled{res.PDrive})
		if err != nil {
			return nil, err
		}
		res.Right, res.Left = lungs.Traces(traj, res.PDrive, grid.Dt)
	}

	res.VD = res.Right.Volume.Clone()
	res.VE = res.Left.Volume.Clone()
	res.VTotal = make(dynamo.Series, len(res.VD))
	for i := range res.VTotal {
		res.VTotal[i] = res.VD[i] + res.VE[i]
	}

	if err := res.checkFinite(grid); err != nil {
		return nil, err
	}

	logger.WithField("leaked", res.Right.Leaked+res.Left.Leaked).Debug("simulation completed")
	return res, nil
}

func (r *Result) checkFinite(grid dynamo.TimeGrid) error {
	named := []struct {
		name string
		s    dynamo.Series
	}{
		{"p_single", r.PSingle},
		{"v_d", r.VD},
		{"v_e", r.VE},
		{"v_total", r.VTotal},
		{"pressure", r.Pressure()},
		{"flow_d", r.Right.Flow},
		{"flow_e", r.Left.Flow},
	}

	for _, n := range named {
		if i := n.s.FirstNonFinite(); i >= 0 {
			return &dynamo.SimulationError{
				Step:    i,
				Time:    grid.At(i),
				Wrapped: fmt.Errorf("%w: %s", dynamo.ErrNumericInstability, n.name),
			}
		}
	}
	return nil
}
