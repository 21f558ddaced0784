package dynamo

import "math"

// Series is a signal sampled on a TimeGrid.
type Series []float64

func (s Series) Clone() Series {
	c := make(Series, len(s))
	copy(c, s)
	return c
}

// FirstNonFinite returns the index of the first NaN or Inf sample, or -1.
func (s Series) FirstNonFinite() int {
	for i, v := range s {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return i
		}
	}
	return -1
}

// Gradient differentiates y with respect to a uniform spacing dt using
// second-order central differences in the interior and one-sided first
// differences at both ends.
func Gradient(y Series, dt float64) Series {
	n := len(y)
	out := make(Series, n)
	if n < 2 {
		return out
	}

	out[0] = (y[1] - y[0]) / dt
	for i := 1; i < n-1; i++ {
		out[i] = (y[i+1] - y[i-1]) / (2 * dt)
	}
	out[n-1] = (y[n-1] - y[n-2]) / dt

	return out
}
