package metrics

import "math"

// Work is the trapezoidal ∮P·dV over the observed loop, in cmH2O·L.
type Work struct {
	name    string
	total   float64
	prevV   float64
	prevP   float64
	samples int
}

func NewWork() *Work {
	return &Work{name: "work"}
}

func (w *Work) Name() string { return w.name }

func (w *Work) Observe(volume, pressure float64) {
	if w.samples > 0 {
		w.total += 0.5 * (pressure + w.prevP) * (volume - w.prevV)
	}
	w.prevV, w.prevP = volume, pressure
	w.samples++
}

func (w *Work) Value() float64 { return w.total }

func (w *Work) Reset() {
	w.total = 0
	w.samples = 0
}

// Swing is the peak-to-peak excursion of volume, i.e. the tidal volume
// when observing a volume trace.
type Swing struct {
	name    string
	min     float64
	max     float64
	samples int
}

func NewSwing() *Swing {
	return &Swing{name: "tidal_volume"}
}

func (s *Swing) Name() string { return s.name }

func (s *Swing) Observe(volume, pressure float64) {
	if s.samples == 0 {
		s.min, s.max = volume, volume
	}
	s.min = math.Min(s.min, volume)
	s.max = math.Max(s.max, volume)
	s.samples++
}

func (s *Swing) Value() float64 {
	if s.samples == 0 {
		return 0
	}
	return s.max - s.min
}

func (s *Swing) Reset() {
	s.samples = 0
}
