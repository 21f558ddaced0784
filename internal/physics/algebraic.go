package physics

import (
	"github.com/san-kum/ventsim/internal/drive"
	"github.com/san-kum/ventsim/internal/dynamo"
)

// AlgebraicResult is the closed-form volume-fraction model.
type AlgebraicResult struct {
	Right Trace
	Left  Trace
	// Total is the mean of the two lungs' elastic pressures plus the mean
	// of their resistive pressures plus PEEP.
	Total dynamo.Series
}

// Algebraic superimposes each lung's retained share of the drive volume on
// its FRC. No integration is involved: every sample is computed directly.
func Algebraic(right, left Compartment, w *drive.Waveform, peep float64) (*AlgebraicResult, error) {
	if err := right.ValidateAlgebraic(); err != nil {
		return nil, err
	}
	if err := left.ValidateAlgebraic(); err != nil {
		return nil, err
	}

	res := &AlgebraicResult{
		Right: algebraicTrace(right, w),
		Left:  algebraicTrace(left, w),
		Total: make(dynamo.Series, len(w.Volume)),
	}

	for i := range res.Total {
		pel := (res.Right.Elastic[i] + res.Left.Elastic[i]) / 2
		pres := (res.Right.Resistive[i] + res.Left.Resistive[i]) / 2
		res.Total[i] = pel + pres + peep
	}

	return res, nil
}

func algebraicTrace(c Compartment, w *drive.Waveform) Trace {
	k := c.fistula().(VolumeLeak).Retained()
	tr := newTrace(len(w.Volume))

	for i, v := range w.Volume {
		tr.Volume[i] = c.FRC + k*v
	}
	tr.Flow = w.Derivative(tr.Volume, k)

	for i := range tr.Volume {
		tr.LeakFlow[i] = (1 - k) * w.Flow[i]
		tr.Elastic[i] = c.E * (tr.Volume[i] - c.FRC)
		tr.Resistive[i] = c.R * tr.Flow[i]
		if i > 0 {
			tr.Leaked += tr.LeakFlow[i] * w.Dt
		}
	}

	return tr
}
