package metrics

import (
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/ventsim/internal/experiment"
)

// Summary condenses a run into the figures shown next to its plots.
type Summary struct {
	PeakPressure float64 // cmH2O
	MinPressure  float64
	MeanPressure float64
	TidalVolume  float64 // L, total
	TidalRight   float64
	TidalLeft    float64
	// Compliance is the dynamic ΔV/ΔP over the whole run, L/cmH2O.
	Compliance float64
	Work       float64 // cmH2O·L
	Leaked     float64 // L
}

func Summarize(res *experiment.Result) Summary {
	p := res.Pressure()
	loops := PressureVolume(res)

	work := NewWork()
	tidal := NewSwing()
	Observe(loops.Total, work, tidal)

	right := NewSwing()
	Observe(loops.Right, right)
	left := NewSwing()
	Observe(loops.Left, left)

	s := Summary{
		PeakPressure: floats.Max(p),
		MinPressure:  floats.Min(p),
		MeanPressure: stat.Mean(p, nil),
		TidalVolume:  tidal.Value(),
		TidalRight:   right.Value(),
		TidalLeft:    left.Value(),
		Work:         work.Value(),
		Leaked:       res.Right.Leaked + res.Left.Leaked,
	}
	if dp := s.PeakPressure - s.MinPressure; dp > 0 {
		s.Compliance = s.TidalVolume / dp
	}
	return s
}

func (s Summary) Map() map[string]float64 {
	return map[string]float64{
		"peak_pressure": s.PeakPressure,
		"min_pressure":  s.MinPressure,
		"mean_pressure": s.MeanPressure,
		"tidal_volume":  s.TidalVolume,
		"tidal_right":   s.TidalRight,
		"tidal_left":    s.TidalLeft,
		"compliance":    s.Compliance,
		"work":          s.Work,
		"leaked":        s.Leaked,
	}
}
