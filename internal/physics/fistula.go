package physics

import (
	"math"

	"github.com/san-kum/ventsim/internal/dynamo"
)

const (
	KindNone           = "none"
	KindConductance    = "conductance"
	KindFlowFraction   = "flow-fraction"
	KindVolumeFraction = "volume-fraction"
)

// Fistula is a leak pathway attached to a single compartment.
type Fistula interface {
	Kind() string
	Validate() error
}

// FlowLeak alters the Euler flow of a compartment integrated under the
// shared driving pressure.
type FlowLeak interface {
	Fistula
	Flow(base, pressure float64) float64
}

// VolumeLeak removes a fixed share of the oscillatory volume in closed form.
type VolumeLeak interface {
	Fistula
	Retained() float64
}

// NoLeak is an intact compartment. It is valid in both model modes.
type NoLeak struct{}

func (NoLeak) Kind() string                        { return KindNone }
func (NoLeak) Validate() error                     { return nil }
func (NoLeak) Flow(base, pressure float64) float64 { return base }
func (NoLeak) Retained() float64                   { return 1 }

// ConductanceLeak is a parallel path of conductance 1/Rf drawing
// P_drive/Rf away from the compartment while Active.
type ConductanceLeak struct {
	Rf     float64 // cmH2O·s/L
	Active bool
}

func (ConductanceLeak) Kind() string { return KindConductance }

func (c ConductanceLeak) Validate() error {
	if !c.Active {
		return nil
	}
	if !(c.Rf > 0) || math.IsInf(c.Rf, 0) {
		return dynamo.InvalidParam("fistula resistance must be positive, got %f", c.Rf)
	}
	return nil
}

func (c ConductanceLeak) Flow(base, pressure float64) float64 {
	if !c.Active {
		return base
	}
	return base - pressure/c.Rf
}

// FlowFractionLeak diverts a fixed fraction of the computed net flow.
type FlowFractionLeak struct {
	Fraction float64
}

func (FlowFractionLeak) Kind() string { return KindFlowFraction }

func (f FlowFractionLeak) Validate() error { return validateFraction(f.Fraction) }

func (f FlowFractionLeak) Flow(base, pressure float64) float64 {
	return base * (1 - f.Fraction)
}

// VolumeFractionLeak scales the oscillatory volume superimposed on FRC.
type VolumeFractionLeak struct {
	Fraction float64
}

func (VolumeFractionLeak) Kind() string { return KindVolumeFraction }

func (v VolumeFractionLeak) Validate() error { return validateFraction(v.Fraction) }

func (v VolumeFractionLeak) Retained() float64 { return 1 - v.Fraction }

func validateFraction(phi float64) error {
	if !(phi >= 0 && phi <= 1) {
		return dynamo.InvalidParam("leak fraction must be in [0, 1], got %f", phi)
	}
	return nil
}
