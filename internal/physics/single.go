package physics

import (
	"fmt"
	"math"

	"github.com/san-kum/ventsim/internal/dynamo"
)

const (
	DefaultElastance  = 20.0
	DefaultResistance = 5.0
)

// SingleCompartment is the equation of motion P = E·V + R·dV/dt + PEEP.
type SingleCompartment struct {
	E float64 // cmH2O/L
	R float64 // cmH2O·s/L
}

func NewSingleCompartment() SingleCompartment {
	return SingleCompartment{E: DefaultElastance, R: DefaultResistance}
}

func (s SingleCompartment) Validate() error {
	if !(s.E > 0) || math.IsInf(s.E, 0) {
		return dynamo.InvalidParam("elastance must be positive, got %f", s.E)
	}
	if !(s.R >= 0) || math.IsInf(s.R, 0) {
		return dynamo.InvalidParam("resistance must be non-negative, got %f", s.R)
	}
	return nil
}

// Pressure maps volume and flow samples to airway pressure.
func (s SingleCompartment) Pressure(volume, flow dynamo.Series, peep float64) dynamo.Series {
	p := make(dynamo.Series, len(volume))
	for i := range volume {
		p[i] = s.E*volume[i] + s.R*flow[i] + peep
	}
	return p
}

func (s *SingleCompartment) GetParams() map[string]float64 {
	return map[string]float64{"e": s.E, "r": s.R}
}

func (s *SingleCompartment) SetParam(name string, value float64) error {
	switch name {
	case "e":
		s.E = value
	case "r":
		s.R = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}
