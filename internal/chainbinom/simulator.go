package chainbinom

import (
	"context"
	"log/slog"
	"time"

	"github.com/san-kum/chainsim/internal/logging"
	"gonum.org/v1/gonum/mat"
)

// Metric summarises a run from the states it observes. Observe receives every
// recorded state in time order and must not modify it.
type Metric interface {
	Name() string
	Observe(t float64, x *mat.Dense)
	Value() float64
	Reset()
}

// Observer is notified of every recorded state. Observers shared by an Ensemble
// are called from several goroutines.
type Observer interface {
	OnStep(step int, t float64, x *mat.Dense)
}

type Config struct {
	Start float64
	End   float64
	Dt    float64
	Seed  int64
}

func DefaultConfig() Config {
	return Config{
		Start: 0,
		End:   100,
		Dt:    1,
	}
}

type Result struct {
	Trajectory *Trajectory
	Metrics    map[string]float64
	Seed       int64
}

type Simulator struct {
	hazard        HazardFunc
	stoichiometry *mat.Dense
	metrics       []Metric
	observers     []Observer
	logger        *slog.Logger
}

type Option func(*Simulator)

func WithLogger(logger *slog.Logger) Option {
	return func(s *Simulator) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func New(h HazardFunc, stoichiometry *mat.Dense, opts ...Option) *Simulator {
	s := &Simulator{
		hazard:        h,
		stoichiometry: stoichiometry,
		metrics:       make([]Metric, 0),
		observers:     make([]Observer, 0),
		logger:        logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Simulator) AddMetric(m Metric)     { s.metrics = append(s.metrics, m) }
func (s *Simulator) AddObserver(o Observer) { s.observers = append(s.observers, o) }

// Run simulates from x0 with a stream seeded by cfg.Seed.
func (s *Simulator) Run(ctx context.Context, x0 *mat.Dense, cfg Config) (*Result, error) {
	for _, m := range s.metrics {
		m.Reset()
	}

	s.logger.Debug("simulation started",
		"start", cfg.Start, "end", cfg.End, "dt", cfg.Dt, "seed", cfg.Seed)
	began := time.Now()

	record := func(step int, t float64, x *mat.Dense) {
		for _, m := range s.metrics {
			m.Observe(t, x)
		}
		for _, o := range s.observers {
			o.OnStep(step, t, x)
		}
	}

	src := NewSource(uint64(cfg.Seed))
	traj, err := simulate(ctx, s.hazard, x0, cfg.Start, cfg.End, cfg.Dt, s.stoichiometry, src, record)
	if err != nil {
		s.logger.Debug("simulation failed", "seed", cfg.Seed, "error", err)
		return nil, err
	}

	result := &Result{
		Trajectory: traj,
		Metrics:    make(map[string]float64, len(s.metrics)),
		Seed:       cfg.Seed,
	}
	for _, m := range s.metrics {
		result.Metrics[m.Name()] = m.Value()
	}

	s.logger.Debug("simulation finished",
		"seed", cfg.Seed, "points", traj.Len(), "elapsed", time.Since(began))
	return result, nil
}
