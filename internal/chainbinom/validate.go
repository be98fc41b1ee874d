package chainbinom

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
)

func isEmpty(m *mat.Dense) bool {
	return m == nil || m.IsEmpty()
}

func isWhole(v float64) bool {
	return !math.IsInf(v, 0) && v == math.Trunc(v)
}

// checkState requires an S×N matrix of nonnegative whole counts.
func checkState(state *mat.Dense, compartments int) error {
	if isEmpty(state) {
		return fmt.Errorf("%w: empty state", ErrInvalidState)
	}
	r, c := state.Dims()
	if r != compartments {
		return dimErr("state", state, fmt.Sprintf("%d rows", compartments))
	}
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			v := state.At(i, j)
			if v < 0 || !isWhole(v) {
				return fmt.Errorf("%w: count[%d,%d] = %g", ErrInvalidState, i, j, v)
			}
		}
	}
	return nil
}

func checkStoichiometry(stoichiometry *mat.Dense) error {
	if isEmpty(stoichiometry) {
		return fmt.Errorf("%w: empty matrix", ErrInvalidStoichiometry)
	}
	r, c := stoichiometry.Dims()
	for i := 0; i < r; i++ {
		for j := 0; j < c; j++ {
			if v := stoichiometry.At(i, j); !isWhole(v) {
				return fmt.Errorf("%w: entry[%d,%d] = %g is not an integer", ErrInvalidStoichiometry, i, j, v)
			}
		}
	}
	return nil
}

func checkHazard(stateIdx []int, rates *mat.Dense, transitions, compartments, units int) error {
	if len(stateIdx) != transitions {
		return fmt.Errorf("%w: %d source indices for %d transitions", ErrDimensionMismatch, len(stateIdx), transitions)
	}
	for r, idx := range stateIdx {
		if idx < 0 || idx >= compartments {
			return fmt.Errorf("%w: transition %d source index %d outside [0,%d)", ErrInvalidHazard, r, idx, compartments)
		}
	}
	if isEmpty(rates) {
		return fmt.Errorf("%w: no rates", ErrInvalidHazard)
	}
	if r, c := rates.Dims(); r != transitions || c != units {
		return dimErr("rates", rates, fmt.Sprintf("%dx%d", transitions, units))
	}
	for r := 0; r < transitions; r++ {
		for n, v := range rates.RawRowView(r) {
			if v < 0 || math.IsNaN(v) || math.IsInf(v, 0) {
				return fmt.Errorf("%w: rate[%d,%d] = %g", ErrInvalidHazard, r, n, v)
			}
		}
	}
	return nil
}
