package dynamo

import (
	"errors"
	"math"
	"testing"
)

func TestNewTimeGrid(t *testing.T) {
	tests := []struct {
		dt, duration float64
		samples      int
	}{
		{0.01, 20, 2000},
		{0.1, 1, 10},
		{0.3, 1, 4},
		{0.5, 1, 2},
		{0.0009765625, 9765.625, MaxSamples},
	}

	for _, tt := range tests {
		g, err := NewTimeGrid(tt.dt, tt.duration)
		if err != nil {
			t.Fatalf("dt=%f duration=%f: %v", tt.dt, tt.duration, err)
		}
		if g.SampleCount() != tt.samples {
			t.Errorf("dt=%f duration=%f: expected %d samples, got %d", tt.dt, tt.duration, tt.samples, g.SampleCount())
		}
	}
}

func TestNewTimeGrid_Invalid(t *testing.T) {
	tests := []struct {
		name         string
		dt, duration float64
	}{
		{"zero dt", 0, 1},
		{"negative dt", -0.1, 1},
		{"NaN dt", math.NaN(), 1},
		{"zero duration", 0.1, 0},
		{"negative duration", 0.1, -1},
		{"single sample", 1, 0.5},
		{"too many samples", 1e-15, 20},
		{"overflows int", 1e-300, 1e300},
		{"just over limit", 1e-6, 10.000001},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := NewTimeGrid(tt.dt, tt.duration)
			if !errors.Is(err, ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}
}

func TestTimeGrid_UniformSpacing(t *testing.T) {
	g, err := NewTimeGrid(0.01, 20)
	if err != nil {
		t.Fatal(err)
	}

	times := g.Times()
	if times[0] != 0 {
		t.Errorf("expected t_0 = 0, got %f", times[0])
	}
	for i := 1; i < len(times); i++ {
		if times[i] <= times[i-1] {
			t.Fatalf("times not strictly increasing at %d", i)
		}
		if math.Abs(times[i]-times[i-1]-0.01) > 1e-12 {
			t.Fatalf("non-uniform spacing at %d: %g", i, times[i]-times[i-1])
		}
	}
	if math.Abs(times[len(times)-1]-19.99) > 1e-9 {
		t.Errorf("expected last sample at 19.99, got %f", times[len(times)-1])
	}
}
