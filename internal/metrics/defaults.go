package metrics

import (
	"github.com/san-kum/chainsim/internal/chainbinom"
	"github.com/san-kum/chainsim/internal/models"
)

// ForModel returns peak, peak time and final value for every compartment plus
// conservation drift.
func ForModel(m *models.Model) []chainbinom.Metric {
	out := make([]chainbinom.Metric, 0, 3*len(m.Compartments)+1)
	for i, c := range m.Compartments {
		out = append(out, NewPeak(c, i), NewPeakTime(c, i), NewFinal(c, i))
	}
	return append(out, NewConservationDrift())
}
