// Package analysis inspects simulated waveforms.
//
//   - [PowerSpectrum] and [DominantFrequency]: spectral content of a series
//   - [Crossings] and [BreathPeriod]: breath timing from a volume trace
//   - [ScatterToASCII]: terminal rendering of pressure-volume loops
//
// The breathing frequency recovered from a driving-pressure trace should
// match the configured drive frequency:
//
//	f := analysis.DominantFrequency(res.PDrive, res.Params.Dt)
package analysis
