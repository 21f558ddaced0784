package physics

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/ventsim/internal/dynamo"
)

// InitialCondition selects the volume each compartment starts from in the
// coupled mode.
type InitialCondition int

const (
	// InitFRC starts each lung at its resting capacity.
	InitFRC InitialCondition = iota
	// InitZero starts each lung empty.
	InitZero
)

func (ic InitialCondition) String() string {
	switch ic {
	case InitFRC:
		return "frc"
	case InitZero:
		return "zero"
	default:
		return fmt.Sprintf("initial(%d)", int(ic))
	}
}

func ParseInitialCondition(name string) (InitialCondition, error) {
	switch strings.ToLower(name) {
	case "", "frc":
		return InitFRC, nil
	case "zero", "empty":
		return InitZero, nil
	default:
		return InitFRC, dynamo.InvalidParam("unknown initial condition %q", name)
	}
}

// Compartment is one lung: elastance, resistance, resting volume and an
// optional fistula.
type Compartment struct {
	Name string
	E    float64 // cmH2O/L
	R    float64 // cmH2O·s/L
	FRC  float64 // L
	Leak Fistula
}

func NewCompartment(name string, e, r, frc float64) Compartment {
	return Compartment{Name: name, E: e, R: r, FRC: frc, Leak: NoLeak{}}
}

func (c Compartment) WithLeak(f Fistula) Compartment {
	c.Leak = f
	return c
}

func (c Compartment) fistula() Fistula {
	if c.Leak == nil {
		return NoLeak{}
	}
	return c.Leak
}

// Validate checks the parameters common to both model modes.
func (c Compartment) Validate() error {
	if !(c.E > 0) || math.IsInf(c.E, 0) {
		return dynamo.InvalidParam("%s: elastance must be positive, got %f", c.Name, c.E)
	}
	if !(c.R >= 0) || math.IsInf(c.R, 0) {
		return dynamo.InvalidParam("%s: resistance must be non-negative, got %f", c.Name, c.R)
	}
	if !(c.FRC >= 0) || math.IsInf(c.FRC, 0) {
		return dynamo.InvalidParam("%s: FRC must be non-negative, got %f", c.Name, c.FRC)
	}
	if err := c.fistula().Validate(); err != nil {
		return fmt.Errorf("%s: %w", c.Name, err)
	}
	return nil
}

// ValidateCoupled additionally requires a strictly positive resistance and
// a flow-type fistula.
func (c Compartment) ValidateCoupled() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if c.R <= 0 {
		return dynamo.InvalidParam("%s: resistance must be positive in coupled mode, got %f", c.Name, c.R)
	}
	if _, ok := c.fistula().(FlowLeak); !ok {
		return dynamo.InvalidParam("%s: %s fistula cannot be integrated in coupled mode", c.Name, c.fistula().Kind())
	}
	return nil
}

// ValidateAlgebraic additionally requires a volume-type fistula.
func (c Compartment) ValidateAlgebraic() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if _, ok := c.fistula().(VolumeLeak); !ok {
		return dynamo.InvalidParam("%s: %s fistula has no closed form in algebraic mode", c.Name, c.fistula().Kind())
	}
	return nil
}

func (c Compartment) Initial(ic InitialCondition) float64 {
	if ic == InitZero {
		return 0
	}
	return c.FRC
}

// Flows returns the leak-adjusted flow into the compartment at driving
// pressure p and volume v, and the flow lost through the fistula.
// The compartment must have passed ValidateCoupled.
func (c Compartment) Flows(p, v float64) (net, leak float64) {
	base := (p - c.E*(v-c.FRC)) / c.R
	net = c.fistula().(FlowLeak).Flow(base, p)
	return net, base - net
}

func (c *Compartment) GetParams() map[string]float64 {
	return map[string]float64{
		"e":   c.E,
		"r":   c.R,
		"frc": c.FRC,
	}
}

func (c *Compartment) SetParam(name string, value float64) error {
	switch name {
	case "e":
		c.E = value
	case "r":
		c.R = value
	case "frc":
		c.FRC = value
	default:
		return fmt.Errorf("unknown param: %s", name)
	}
	return nil
}

// Trace is the per-compartment output of a run.
type Trace struct {
	Volume    dynamo.Series // L
	Flow      dynamo.Series // L/s into the compartment
	LeakFlow  dynamo.Series // L/s diverted by the fistula
	Elastic   dynamo.Series // E·(V − FRC), cmH2O
	Resistive dynamo.Series // R·flow, cmH2O
	Leaked    float64       // net volume diverted over the run, L
}

func newTrace(n int) Trace {
	return Trace{
		Volume:    make(dynamo.Series, n),
		Flow:      make(dynamo.Series, n),
		LeakFlow:  make(dynamo.Series, n),
		Elastic:   make(dynamo.Series, n),
		Resistive: make(dynamo.Series, n),
	}
}
