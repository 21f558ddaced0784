package metrics

import (
	"github.com/san-kum/ventsim/internal/dynamo"
	"github.com/san-kum/ventsim/internal/experiment"
)

// Point is one pressure-volume sample.
type Point struct {
	V float64 // L
	P float64 // cmH2O
}

type Loop []Point

// Volumes returns the volume coordinate of every point.
func (l Loop) Volumes() dynamo.Series {
	v := make(dynamo.Series, len(l))
	for i, pt := range l {
		v[i] = pt.V
	}
	return v
}

func (l Loop) Pressures() dynamo.Series {
	p := make(dynamo.Series, len(l))
	for i, pt := range l {
		p[i] = pt.P
	}
	return p
}

// PVLoops pairs each volume of a run with the two-compartment pressure,
// next to the single-compartment loop it is contrasted with.
type PVLoops struct {
	Single Loop
	Total  Loop
	Right  Loop
	Left   Loop
}

// PressureVolume builds the pressure-volume loops of res. P is the driving
// pressure in coupled mode and the averaged pressure in algebraic mode.
func PressureVolume(res *experiment.Result) PVLoops {
	p := res.Pressure()
	return PVLoops{
		Single: pair(res.VIn, res.PSingle),
		Total:  pair(res.VTotal, p),
		Right:  pair(res.VD, p),
		Left:   pair(res.VE, p),
	}
}

func pair(v, p dynamo.Series) Loop {
	n := min(len(v), len(p))
	loop := make(Loop, n)
	for i := 0; i < n; i++ {
		loop[i] = Point{V: v[i], P: p[i]}
	}
	return loop
}
