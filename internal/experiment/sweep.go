package experiment

import (
	"context"
	"fmt"
	"math"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/san-kum/ventsim/internal/dynamo"
)

// Sweep runs independent parameter sets concurrently. Results keep the
// order of params; the first failure cancels the remaining runs.
func Sweep(ctx context.Context, params []Params) ([]*Result, error) {
	results := make([]*Result, len(params))

	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.NumCPU())

	for i, p := range params {
		g.Go(func() error {
			r, err := SimulateContext(ctx, p)
			if err != nil {
				return fmt.Errorf("run %d: %w", i, err)
			}
			results[i] = r
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// Refinement compares a run against the same run at half the step.
type Refinement struct {
	Dt        float64
	MaxDeltaD float64 // max |V_D(dt) − V_D(dt/2)| on shared samples, L
	MaxDeltaE float64
}

// Converge halves p.Dt levels times and reports the volume change at each
// halving on the samples both grids share.
func Converge(ctx context.Context, p Params, levels int) ([]Refinement, error) {
	if levels < 1 {
		return nil, dynamo.InvalidParam("convergence needs at least one refinement, got %d", levels)
	}

	params := make([]Params, levels+1)
	for i := range params {
		params[i] = p
		params[i].Dt = p.Dt / math.Pow(2, float64(i))
	}

	results, err := Sweep(ctx, params)
	if err != nil {
		return nil, err
	}

	out := make([]Refinement, levels)
	for i := 0; i < levels; i++ {
		coarse, fine := results[i], results[i+1]
		out[i] = Refinement{
			Dt:        params[i].Dt,
			MaxDeltaD: maxDelta(coarse.VD, fine.VD),
			MaxDeltaE: maxDelta(coarse.VE, fine.VE),
		}
	}
	return out, nil
}

func maxDelta(coarse, fine dynamo.Series) float64 {
	m := 0.0
	for i := range coarse {
		if 2*i >= len(fine) {
			break
		}
		m = math.Max(m, math.Abs(coarse[i]-fine[2*i]))
	}
	return m
}
