package chainbinom

import (
	"math/rand/v2"

	"gonum.org/v1/gonum/mat"
)

// HazardFunc reports, for each of the R transitions, the compartment whose count
// is at risk and the per-unit hazard rate. stateIdx has length R with entries in
// [0,S); rates is R×N. It must not modify state.
type HazardFunc func(state *mat.Dense) (stateIdx []int, rates *mat.Dense, err error)

// StepFunc advances an S×N state by one time step. It returns a new matrix and
// leaves its argument untouched.
type StepFunc func(state *mat.Dense) (*mat.Dense, error)

// NewSource returns a deterministic random stream for seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)
}

// Trajectory is the recorded output of a simulation: States[i] is the S×N state
// at Times[i].
type Trajectory struct {
	Times  []float64
	States []*mat.Dense
}

func (tr *Trajectory) Len() int { return len(tr.Times) }

// Dims returns the compartment and unit counts, or zeros for an empty trajectory.
func (tr *Trajectory) Dims() (compartments, units int) {
	if len(tr.States) == 0 {
		return 0, 0
	}
	return tr.States[0].Dims()
}

func (tr *Trajectory) At(t, s, n int) float64 {
	return tr.States[t].At(s, n)
}

// Series gathers compartment s of unit n over the time axis.
func (tr *Trajectory) Series(s, n int) []float64 {
	out := make([]float64, len(tr.States))
	for i, x := range tr.States {
		out[i] = x.At(s, n)
	}
	return out
}

// MeanSeries averages compartment s over all units at every time point.
func (tr *Trajectory) MeanSeries(s int) []float64 {
	out := make([]float64, len(tr.States))
	for i, x := range tr.States {
		row := x.RawRowView(s)
		sum := 0.0
		for _, v := range row {
			sum += v
		}
		out[i] = sum / float64(len(row))
	}
	return out
}

// Totals sums every compartment per unit at time index t.
func (tr *Trajectory) Totals(t int) []float64 {
	x := tr.States[t]
	s, n := x.Dims()
	out := make([]float64, n)
	for i := 0; i < s; i++ {
		for j, v := range x.RawRowView(i) {
			out[j] += v
		}
	}
	return out
}
