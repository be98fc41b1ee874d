package chainbinom

import (
	"context"
	"fmt"
	"runtime"

	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/mat"
)

// Ensemble repeats a simulation with consecutive seeds. Runs are independent and
// execute concurrently; the hazard function and any observers must be safe for
// concurrent use.
type Ensemble struct {
	base      *Simulator
	numRuns   int
	seedStart int64
	metrics   func() []Metric
}

func NewEnsemble(s *Simulator, numRuns int, seedStart int64) *Ensemble {
	return &Ensemble{base: s, numRuns: numRuns, seedStart: seedStart}
}

// WithMetrics sets a factory producing a fresh metric set for every run.
func (e *Ensemble) WithMetrics(factory func() []Metric) *Ensemble {
	e.metrics = factory
	return e
}

// Run executes every run and returns the results in seed order. The first
// failure cancels the remaining runs.
func (e *Ensemble) Run(ctx context.Context, x0 *mat.Dense, cfg Config) ([]*Result, error) {
	results := make([]*Result, e.numRuns)

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(runtime.GOMAXPROCS(0))

	for i := 0; i < e.numRuns; i++ {
		g.Go(func() error {
			cfgCopy := cfg
			cfgCopy.Seed = e.seedStart + int64(i)

			s := New(e.base.hazard, e.base.stoichiometry, WithLogger(e.base.logger))
			if e.metrics != nil {
				for _, m := range e.metrics() {
					s.AddMetric(m)
				}
			}
			for _, o := range e.base.observers {
				s.AddObserver(o)
			}

			res, err := s.Run(gctx, x0, cfgCopy)
			if err != nil {
				return fmt.Errorf("run %d (seed %d): %w", i, cfgCopy.Seed, err)
			}
			results[i] = res
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}
