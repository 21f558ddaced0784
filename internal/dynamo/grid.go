package dynamo

import "math"

const (
	DefaultDt       = 0.01
	DefaultDuration = 20.0

	// MaxSamples bounds the memory of a single run.
	MaxSamples = 10_000_000
)

// TimeGrid is a uniform time axis t_i = i*Dt for i in [0, SampleCount).
type TimeGrid struct {
	Dt       float64
	Duration float64
	samples  int
}

// NewTimeGrid builds the grid covering [0, duration) with ceil(duration/dt)
// samples. At least two samples are needed to differentiate a series.
func NewTimeGrid(dt, duration float64) (TimeGrid, error) {
	if !(dt > 0) || math.IsInf(dt, 0) {
		return TimeGrid{}, InvalidParam("dt must be positive, got %f", dt)
	}
	if !(duration > 0) || math.IsInf(duration, 0) {
		return TimeGrid{}, InvalidParam("duration must be positive, got %f", duration)
	}

	steps := math.Ceil(duration / dt)
	if steps > MaxSamples {
		return TimeGrid{}, InvalidParam("duration %g at dt %g needs %g samples, limit is %d", duration, dt, steps, MaxSamples)
	}
	n := int(steps)
	if n < 2 {
		return TimeGrid{}, InvalidParam("duration %f covers fewer than two steps of %f", duration, dt)
	}

	return TimeGrid{Dt: dt, Duration: duration, samples: n}, nil
}

func (g TimeGrid) SampleCount() int { return g.samples }

func (g TimeGrid) At(i int) float64 { return float64(i) * g.Dt }

func (g TimeGrid) Times() Series {
	t := make(Series, g.samples)
	for i := range t {
		t[i] = g.At(i)
	}
	return t
}
