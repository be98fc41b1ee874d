package chainbinom

import (
	"fmt"
	"math"
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/stat/distuv"
)

// Probability converts a hazard rate into the probability of at least one event
// within dt, 1 - exp(-rate·dt).
func Probability(rate, dt float64) float64 {
	return -math.Expm1(-rate * dt)
}

// TrialCounts returns the R×N matrix whose row r is the state row stateIdx[r].
func TrialCounts(state *mat.Dense, stateIdx []int) *mat.Dense {
	_, n := state.Dims()
	trials := mat.NewDense(len(stateIdx), n, nil)
	for r, idx := range stateIdx {
		trials.SetRow(r, state.RawRowView(idx))
	}
	return trials
}

// Propagate returns the chain binomial step function for hazard h over timeStep.
// Every call queries h once, converts rates to probabilities, draws binomial
// transition counts from the population of each transition's source compartment
// and applies them through stoichiometry.
//
// Transitions sharing a source compartment compete for the same individuals: the
// number leaving is drawn once from the summed hazard and then split between the
// transitions in proportion to their rates, so a compartment is never drained
// below zero. A compartment with a single outgoing transition gets exactly one
// Binomial(count, 1-exp(-rate·dt)) draw.
//
// Draws are taken from src in a fixed order (unit, then source compartment, then
// transition), so the same seed replays the same trajectory. A nil src uses an
// unseeded stream.
func Propagate(h HazardFunc, timeStep float64, stoichiometry *mat.Dense, src rand.Source) (StepFunc, error) {
	if h == nil {
		return nil, fmt.Errorf("%w: nil hazard function", ErrInvalidHazard)
	}
	if !(timeStep > 0) || math.IsInf(timeStep, 0) {
		return nil, fmt.Errorf("%w: got %g", ErrInvalidTimeStep, timeStep)
	}
	if err := checkStoichiometry(stoichiometry); err != nil {
		return nil, err
	}
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}

	transitions, compartments := stoichiometry.Dims()

	return func(state *mat.Dense) (*mat.Dense, error) {
		if err := checkState(state, compartments); err != nil {
			return nil, err
		}
		_, units := state.Dims()

		stateIdx, rates, err := h(state)
		if err != nil {
			return nil, fmt.Errorf("hazard: %w", err)
		}
		if err := checkHazard(stateIdx, rates, transitions, compartments, units); err != nil {
			return nil, err
		}

		trials := TrialCounts(state, stateIdx)
		update := sampleTransitions(trials, rates, stateIdx, compartments, timeStep, src)
		return UpdateState(update, state, stoichiometry)
	}, nil
}

func sampleTransitions(trials, rates *mat.Dense, stateIdx []int, compartments int, dt float64, src rand.Source) *mat.Dense {
	transitions, units := rates.Dims()
	update := mat.NewDense(transitions, units, nil)

	bySource := make([][]int, compartments)
	for r, idx := range stateIdx {
		bySource[idx] = append(bySource[idx], r)
	}

	for n := 0; n < units; n++ {
		for _, group := range bySource {
			switch len(group) {
			case 0:
			case 1:
				r := group[0]
				update.Set(r, n, binomial(trials.At(r, n), Probability(rates.At(r, n), dt), src))
			default:
				splitCompeting(update, group, n, trials.At(group[0], n), rates, dt, src)
			}
		}
	}
	return update
}

// splitCompeting draws how many of pop leave under the combined hazard of group
// and divides them with sequential conditional binomials.
func splitCompeting(update *mat.Dense, group []int, n int, pop float64, rates *mat.Dense, dt float64, src rand.Source) {
	total := 0.0
	for _, r := range group {
		total += rates.At(r, n)
	}
	remaining := binomial(pop, Probability(total, dt), src)

	for i, r := range group {
		rest := 0.0
		for _, q := range group[i:] {
			rest += rates.At(q, n)
		}
		if remaining == 0 || rest == 0 {
			return
		}
		k := binomial(remaining, rates.At(r, n)/rest, src)
		update.Set(r, n, k)
		remaining -= k
	}
}

// binomial draws from Binomial(n, p) with exact results at the boundaries.
func binomial(n, p float64, src rand.Source) float64 {
	switch {
	case n == 0 || p <= 0:
		return 0
	case p >= 1:
		return n
	}
	return distuv.Binomial{N: n, P: p, Src: src}.Rand()
}
