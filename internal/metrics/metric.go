package metrics

// Metric accumulates one scalar over a pressure-volume trajectory sampled
// in time order.
type Metric interface {
	Name() string
	Observe(volume, pressure float64)
	Value() float64
	Reset()
}

// Observe feeds every point of loop to each metric after resetting it.
func Observe(loop Loop, ms ...Metric) {
	for _, m := range ms {
		m.Reset()
	}
	for _, pt := range loop {
		for _, m := range ms {
			m.Observe(pt.V, pt.P)
		}
	}
}
