package metrics

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// ConservationDrift records the largest change of any unit's total population
// relative to the first observation. Models made only of transfers keep it at 0.
type ConservationDrift struct {
	name     string
	initial  []float64
	maxDrift float64
}

func NewConservationDrift() *ConservationDrift {
	return &ConservationDrift{name: "conservation_drift"}
}

func (c *ConservationDrift) Name() string { return c.name }

func (c *ConservationDrift) Observe(t float64, x *mat.Dense) {
	s, n := x.Dims()
	totals := make([]float64, n)
	for i := 0; i < s; i++ {
		for j, v := range x.RawRowView(i) {
			totals[j] += v
		}
	}

	if c.initial == nil {
		c.initial = totals
		return
	}
	for j, v := range totals {
		c.maxDrift = math.Max(c.maxDrift, math.Abs(v-c.initial[j]))
	}
}

func (c *ConservationDrift) Value() float64 { return c.maxDrift }

func (c *ConservationDrift) Reset() {
	c.initial = nil
	c.maxDrift = 0
}
