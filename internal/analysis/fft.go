package analysis

import (
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"

	"github.com/san-kum/ventsim/internal/dynamo"
)

// Spectrum is the one-sided amplitude spectrum of a sampled signal.
type Spectrum struct {
	Power      []float64
	Resolution float64 // Hz per bin
}

// Frequency returns the frequency of bin k in Hz.
func (s Spectrum) Frequency(k int) float64 { return float64(k) * s.Resolution }

// PowerSpectrum removes the mean of s, zero-pads it to a power of two and
// returns the magnitude of the lower half of its transform.
func PowerSpectrum(s dynamo.Series, dt float64) Spectrum {
	n := 1
	for n < len(s) {
		n <<= 1
	}
	if n < 2 {
		return Spectrum{Resolution: 1 / (float64(n) * dt)}
	}

	mean := 0.0
	if len(s) > 0 {
		mean = stat.Mean(s, nil)
	}

	padded := make([]float64, n)
	for i, v := range s {
		padded[i] = v - mean
	}

	coeff := fourier.NewFFT(n).Coefficients(nil, padded)
	ps := make([]float64, n/2)
	for i := range ps {
		ps[i] = cmplx.Abs(coeff[i])
	}

	return Spectrum{Power: ps, Resolution: 1 / (float64(n) * dt)}
}

// DominantFrequency is the frequency of the strongest non-DC bin.
func DominantFrequency(s dynamo.Series, dt float64) float64 {
	spec := PowerSpectrum(s, dt)
	best := 0
	for k := 1; k < len(spec.Power); k++ {
		if best == 0 || spec.Power[k] > spec.Power[best] {
			best = k
		}
	}
	return spec.Frequency(best)
}
