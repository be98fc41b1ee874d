package models

import (
	"errors"
	"fmt"
	"math"

	"github.com/san-kum/chainsim/internal/chainbinom"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrUnknownCompartment = errors.New("models: unknown compartment")
	ErrInvalidTransition  = errors.New("models: invalid transition")
	ErrInvalidModel       = errors.New("models: invalid model")
)

type Transition struct {
	Name     string
	From     string
	To       string
	Rate     float64
	Pressure []string
}

type Model struct {
	Name         string
	Compartments []string
	Transitions  []Transition

	index    map[string]int
	source   []int
	pressure [][]int
}

// New validates the compartment and transition lists and resolves names to
// indices.
func New(name string, compartments []string, transitions []Transition) (*Model, error) {
	if len(compartments) == 0 {
		return nil, fmt.Errorf("%w: no compartments", ErrInvalidModel)
	}
	if len(transitions) == 0 {
		return nil, fmt.Errorf("%w: no transitions", ErrInvalidModel)
	}

	m := &Model{
		Name:         name,
		Compartments: append([]string(nil), compartments...),
		Transitions:  append([]Transition(nil), transitions...),
		index:        make(map[string]int, len(compartments)),
		source:       make([]int, len(transitions)),
		pressure:     make([][]int, len(transitions)),
	}
	for i, c := range compartments {
		if c == "" {
			return nil, fmt.Errorf("%w: compartment %d has no name", ErrInvalidModel, i)
		}
		if _, dup := m.index[c]; dup {
			return nil, fmt.Errorf("%w: duplicate compartment %q", ErrInvalidModel, c)
		}
		m.index[c] = i
	}

	for r, tr := range transitions {
		from, ok := m.index[tr.From]
		if !ok {
			return nil, fmt.Errorf("%w: transition %q from %q", ErrUnknownCompartment, tr.Name, tr.From)
		}
		if tr.To != "" {
			if _, ok := m.index[tr.To]; !ok {
				return nil, fmt.Errorf("%w: transition %q to %q", ErrUnknownCompartment, tr.Name, tr.To)
			}
		}
		if tr.To == tr.From {
			return nil, fmt.Errorf("%w: transition %q loops on %q", ErrInvalidTransition, tr.Name, tr.From)
		}
		if tr.Rate < 0 || math.IsNaN(tr.Rate) || math.IsInf(tr.Rate, 0) {
			return nil, fmt.Errorf("%w: transition %q has rate %g", ErrInvalidTransition, tr.Name, tr.Rate)
		}
		m.source[r] = from
		for _, p := range tr.Pressure {
			idx, ok := m.index[p]
			if !ok {
				return nil, fmt.Errorf("%w: transition %q pressure %q", ErrUnknownCompartment, tr.Name, p)
			}
			m.pressure[r] = append(m.pressure[r], idx)
		}
	}

	return m, nil
}

// Index returns the row of compartment name in the state matrix.
func (m *Model) Index(name string) (int, bool) {
	i, ok := m.index[name]
	return i, ok
}

// Stoichiometry returns the R×S matrix with -1 at each source and +1 at each
// destination.
func (m *Model) Stoichiometry() *mat.Dense {
	st := mat.NewDense(len(m.Transitions), len(m.Compartments), nil)
	for r, tr := range m.Transitions {
		st.Set(r, m.source[r], -1)
		if tr.To != "" {
			st.Set(r, m.index[tr.To], 1)
		}
	}
	return st
}

// Hazard returns a chainbinom.HazardFunc evaluating the model's rate laws. It
// keeps no state and is safe for concurrent use.
func (m *Model) Hazard() chainbinom.HazardFunc {
	stateIdx := append([]int(nil), m.source...)

	return func(x *mat.Dense) ([]int, *mat.Dense, error) {
		s, n := x.Dims()
		if s != len(m.Compartments) {
			return nil, nil, fmt.Errorf("%w: state has %d compartments, model %q has %d",
				chainbinom.ErrDimensionMismatch, s, m.Name, len(m.Compartments))
		}

		totals := make([]float64, n)
		for i := 0; i < s; i++ {
			for j, v := range x.RawRowView(i) {
				totals[j] += v
			}
		}

		rates := mat.NewDense(len(m.Transitions), n, nil)
		for r, tr := range m.Transitions {
			row := rates.RawRowView(r)
			for j := range row {
				row[j] = tr.Rate * m.force(r, x, j, totals[j])
			}
		}
		return stateIdx, rates, nil
	}
}

// force is the frequency-dependent multiplier of transition r in unit j.
func (m *Model) force(r int, x *mat.Dense, j int, total float64) float64 {
	if len(m.pressure[r]) == 0 {
		return 1
	}
	if total == 0 {
		return 0
	}
	sum := 0.0
	for _, p := range m.pressure[r] {
		sum += x.At(p, j)
	}
	return sum / total
}

// InitialState builds an S×units state with the given counts in every unit.
// Compartments missing from counts start empty.
func (m *Model) InitialState(counts map[string]float64, units int) (*mat.Dense, error) {
	if units < 1 {
		return nil, fmt.Errorf("%w: %d units", ErrInvalidModel, units)
	}
	x := mat.NewDense(len(m.Compartments), units, nil)
	for name, v := range counts {
		i, ok := m.index[name]
		if !ok {
			return nil, fmt.Errorf("%w: initial count for %q", ErrUnknownCompartment, name)
		}
		if v < 0 || v != math.Trunc(v) || math.IsInf(v, 0) {
			return nil, fmt.Errorf("%w: initial count %s = %g", ErrInvalidModel, name, v)
		}
		row := x.RawRowView(i)
		for j := range row {
			row[j] = v
		}
	}
	return x, nil
}
