package chainbinom

import (
	"fmt"

	"gonum.org/v1/gonum/mat"
)

// UpdateState applies R×N transition counts to an S×N state through an R×S
// stoichiometry matrix and returns the resulting state. Each count is spread over
// the compartments by its transition's stoichiometry row and the contributions
// are summed over transitions, i.e. state + stoichiometryᵀ·update.
func UpdateState(update, state, stoichiometry *mat.Dense) (*mat.Dense, error) {
	if isEmpty(update) || isEmpty(state) || isEmpty(stoichiometry) {
		return nil, fmt.Errorf("%w: empty operand", ErrDimensionMismatch)
	}
	r, s := stoichiometry.Dims()
	_, n := state.Dims()
	if ur, un := update.Dims(); ur != r || un != n {
		return nil, dimErr("update", update, fmt.Sprintf("%dx%d", r, n))
	}
	if sr, _ := state.Dims(); sr != s {
		return nil, dimErr("state", state, fmt.Sprintf("%d rows", s))
	}

	var delta mat.Dense
	delta.Mul(stoichiometry.T(), update)

	next := mat.NewDense(s, n, nil)
	next.Add(state, &delta)
	return next, nil
}
