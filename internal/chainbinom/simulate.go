package chainbinom

import (
	"context"
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// TimePoints returns start, start+dt, start+2dt, ... strictly below end. The
// count is max(0, ceil((end-start)/dt)), so start >= end yields no points.
func TimePoints(start, end, dt float64) []float64 {
	count := int(math.Ceil((end - start) / dt))
	if count < 0 {
		count = 0
	}
	times := make([]float64, count)
	for i := range times {
		times[i] = start + float64(i)*dt
	}
	return times
}

// Simulate runs the chain binomial process from state0 over TimePoints(start,
// end, timeStep). The first recorded state is a copy of state0 and every later
// one is one Propagate step from its predecessor. An empty time range returns an
// empty trajectory without calling h.
//
// Any failure aborts the run; no partial trajectory is returned.
func Simulate(ctx context.Context, h HazardFunc, state0 *mat.Dense, start, end, timeStep float64, stoichiometry *mat.Dense, src rand.Source) (*Trajectory, error) {
	return simulate(ctx, h, state0, start, end, timeStep, stoichiometry, src, nil)
}

func simulate(ctx context.Context, h HazardFunc, state0 *mat.Dense, start, end, timeStep float64, stoichiometry *mat.Dense, src rand.Source, record func(int, float64, *mat.Dense)) (*Trajectory, error) {
	if math.IsNaN(start) || math.IsInf(start, 0) || math.IsNaN(end) || math.IsInf(end, 0) {
		return nil, fmt.Errorf("%w: [%g, %g)", ErrInvalidTimeRange, start, end)
	}

	step, err := Propagate(h, timeStep, stoichiometry, src)
	if err != nil {
		return nil, err
	}
	_, compartments := stoichiometry.Dims()
	if err := checkState(state0, compartments); err != nil {
		return nil, err
	}

	times := TimePoints(start, end, timeStep)
	traj := &Trajectory{
		Times:  times,
		States: make([]*mat.Dense, len(times)),
	}
	if len(times) == 0 {
		return traj, nil
	}

	x := mat.DenseCopyOf(state0)
	traj.States[0] = x
	if record != nil {
		record(0, times[0], x)
	}

	for i := 1; i < len(times); i++ {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}

		next, err := step(x)
		if err != nil {
			return nil, &SimulationError{Step: i - 1, Time: times[i-1], Wrapped: err}
		}
		x = next
		traj.States[i] = x
		if record != nil {
			record(i, times[i], x)
		}
	}

	return traj, nil
}
