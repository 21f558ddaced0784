package drive

import (
	"errors"
	"math"
	"testing"

	"github.com/san-kum/ventsim/internal/dynamo"
)

func mustGrid(t *testing.T, dt, duration float64) dynamo.TimeGrid {
	t.Helper()
	g, err := dynamo.NewTimeGrid(dt, duration)
	if err != nil {
		t.Fatal(err)
	}
	return g
}

func TestGenerate_ReferenceScenario(t *testing.T) {
	grid := mustGrid(t, 0.01, 20)
	w, err := Generate(DefaultParams(), grid)
	if err != nil {
		t.Fatal(err)
	}

	if len(w.Volume) != 2000 || len(w.Flow) != 2000 {
		t.Fatalf("expected 2000 samples, got %d/%d", len(w.Volume), len(w.Flow))
	}
	if w.Volume[0] != 0 {
		t.Errorf("expected V_in[0] = 0, got %g", w.Volume[0])
	}

	// forward difference at the first sample
	want := 0.5 * math.Sin(2*math.Pi*0.25*0.01) / 0.01
	if math.Abs(w.Flow[0]-want) > 1e-12 {
		t.Errorf("expected dV_in[0] = %g, got %g", want, w.Flow[0])
	}

	// quarter period (t = 1s) is the volume peak
	if math.Abs(w.Volume[100]-0.5) > 1e-12 {
		t.Errorf("expected peak volume 0.5 at t=1, got %g", w.Volume[100])
	}
	if math.Abs(w.Flow[100]) > 1e-3 {
		t.Errorf("expected ~zero flow at peak, got %g", w.Flow[100])
	}
}

func TestGenerate_AnalyticMatchesNumerical(t *testing.T) {
	grid := mustGrid(t, 0.001, 8)

	p := DefaultParams()
	num, err := Generate(p, grid)
	if err != nil {
		t.Fatal(err)
	}
	p.Derivative = Analytic
	ana, err := Generate(p, grid)
	if err != nil {
		t.Fatal(err)
	}

	for i := 1; i < grid.SampleCount()-1; i++ {
		if math.Abs(num.Flow[i]-ana.Flow[i]) > 1e-5 {
			t.Fatalf("sample %d: numerical %g vs analytic %g", i, num.Flow[i], ana.Flow[i])
		}
	}
	if ana.Flow[0] != 2*math.Pi*0.25*0.5 {
		t.Errorf("expected analytic flow 2πfA at t=0, got %g", ana.Flow[0])
	}
}

func TestParams_Validate(t *testing.T) {
	tests := []struct {
		name string
		mod  func(*Params)
	}{
		{"zero amplitude", func(p *Params) { p.Amplitude = 0 }},
		{"negative amplitude", func(p *Params) { p.Amplitude = -1 }},
		{"zero frequency", func(p *Params) { p.Frequency = 0 }},
		{"NaN frequency", func(p *Params) { p.Frequency = math.NaN() }},
		{"negative PEEP", func(p *Params) { p.PEEP = -1 }},
		{"unknown scheme", func(p *Params) { p.Derivative = Scheme(7) }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := DefaultParams()
			tt.mod(&p)
			if err := p.Validate(); !errors.Is(err, dynamo.ErrInvalidParameter) {
				t.Errorf("expected ErrInvalidParameter, got %v", err)
			}
		})
	}

	p := DefaultParams()
	p.PEEP = 0
	if err := p.Validate(); err != nil {
		t.Errorf("zero PEEP should be valid: %v", err)
	}
}

func TestWaveform_Derivative(t *testing.T) {
	grid := mustGrid(t, 0.01, 4)

	for _, scheme := range []Scheme{Numerical, Analytic} {
		p := DefaultParams()
		p.Derivative = scheme
		w, err := Generate(p, grid)
		if err != nil {
			t.Fatal(err)
		}

		scaled := make(dynamo.Series, len(w.Volume))
		for i, v := range w.Volume {
			scaled[i] = 0.5 * v
		}

		d := w.Derivative(scaled, 0.5)
		for i := range d {
			if math.Abs(d[i]-0.5*w.Flow[i]) > 1e-12 {
				t.Fatalf("%s: sample %d: got %g want %g", scheme, i, d[i], 0.5*w.Flow[i])
			}
		}
	}
}

func TestParseScheme(t *testing.T) {
	if s, err := ParseScheme("analytic"); err != nil || s != Analytic {
		t.Errorf("ParseScheme(analytic) = %v, %v", s, err)
	}
	if s, err := ParseScheme(""); err != nil || s != Numerical {
		t.Errorf("ParseScheme(\"\") = %v, %v", s, err)
	}
	if _, err := ParseScheme("spline"); err == nil {
		t.Error("expected error for unknown scheme")
	}
}
