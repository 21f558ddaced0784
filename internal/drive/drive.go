// Package drive generates the prescribed sinusoidal volume waveform that
// forces every lung model, together with its time derivative.
package drive

import (
	"fmt"
	"math"
	"strings"

	"github.com/san-kum/ventsim/internal/dynamo"
)

const (
	DefaultAmplitude = 0.5
	DefaultFrequency = 0.25
	DefaultPEEP      = 5.0
)

// Scheme selects how the flow waveform is obtained from the volume waveform.
type Scheme int

const (
	// Numerical differentiates the sampled volume with dynamo.Gradient.
	Numerical Scheme = iota
	// Analytic uses 2πfA·cos(2πft). Agrees with Numerical to O(dt²) in the
	// interior and O(dt) at the two boundary samples.
	Analytic
)

func (s Scheme) String() string {
	switch s {
	case Numerical:
		return "numerical"
	case Analytic:
		return "analytic"
	default:
		return fmt.Sprintf("scheme(%d)", int(s))
	}
}

func ParseScheme(name string) (Scheme, error) {
	switch strings.ToLower(name) {
	case "", "numerical", "gradient":
		return Numerical, nil
	case "analytic":
		return Analytic, nil
	default:
		return Numerical, dynamo.InvalidParam("unknown derivative scheme %q", name)
	}
}

// Params describes V_in(t) = A·sin(2πft) and the constant PEEP offset.
type Params struct {
	Amplitude  float64 // L
	Frequency  float64 // Hz
	PEEP       float64 // cmH2O
	Derivative Scheme
}

func DefaultParams() Params {
	return Params{
		Amplitude: DefaultAmplitude,
		Frequency: DefaultFrequency,
		PEEP:      DefaultPEEP,
	}
}

func (p Params) Validate() error {
	if !(p.Amplitude > 0) || math.IsInf(p.Amplitude, 0) {
		return dynamo.InvalidParam("amplitude must be positive, got %f", p.Amplitude)
	}
	if !(p.Frequency > 0) || math.IsInf(p.Frequency, 0) {
		return dynamo.InvalidParam("frequency must be positive, got %f", p.Frequency)
	}
	if !(p.PEEP >= 0) || math.IsInf(p.PEEP, 0) {
		return dynamo.InvalidParam("PEEP must be non-negative, got %f", p.PEEP)
	}
	if p.Derivative != Numerical && p.Derivative != Analytic {
		return dynamo.InvalidParam("unknown derivative scheme %d", int(p.Derivative))
	}
	return nil
}

// Waveform is the drive sampled on a grid.
type Waveform struct {
	Volume dynamo.Series // V_in, L
	Flow   dynamo.Series // dV_in/dt, L/s
	Scheme Scheme
	Dt     float64
}

// Generate samples the drive on grid.
func Generate(p Params, grid dynamo.TimeGrid) (*Waveform, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}

	n := grid.SampleCount()
	w := 2 * math.Pi * p.Frequency
	vol := make(dynamo.Series, n)
	for i := range vol {
		vol[i] = p.Amplitude * math.Sin(w*grid.At(i))
	}

	var flow dynamo.Series
	switch p.Derivative {
	case Analytic:
		flow = make(dynamo.Series, n)
		for i := range flow {
			flow[i] = w * p.Amplitude * math.Cos(w*grid.At(i))
		}
	default:
		flow = dynamo.Gradient(vol, grid.Dt)
	}

	return &Waveform{Volume: vol, Flow: flow, Scheme: p.Derivative, Dt: grid.Dt}, nil
}

// Derivative differentiates a signal built as offset + scale·Volume using
// the waveform's scheme. Numerical differentiates v directly; Analytic
// scales the analytic flow.
func (w *Waveform) Derivative(v dynamo.Series, scale float64) dynamo.Series {
	if w.Scheme == Analytic {
		out := make(dynamo.Series, len(w.Flow))
		for i, f := range w.Flow {
			out[i] = scale * f
		}
		return out
	}
	return dynamo.Gradient(v, w.Dt)
}
