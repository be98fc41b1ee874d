package analysis

import (
	"errors"
	"fmt"
	"sort"

	"github.com/san-kum/chainsim/internal/chainbinom"
	"gonum.org/v1/gonum/stat"
)

var ErrEmptyTrajectory = errors.New("analysis: empty trajectory")

// Band is the replica mean of one compartment with a quantile envelope.
type Band struct {
	Times []float64
	Mean  []float64
	Lower []float64
	Upper []float64
}

// Summarize computes the mean and the lower/upper empirical quantiles of
// compartment s across replicas at every time point.
func Summarize(traj *chainbinom.Trajectory, s int, lower, upper float64) (Band, error) {
	if traj.Len() == 0 {
		return Band{}, ErrEmptyTrajectory
	}
	if !(0 <= lower && lower <= upper && upper <= 1) {
		return Band{}, fmt.Errorf("analysis: quantiles %g, %g outside 0 <= lower <= upper <= 1", lower, upper)
	}
	if rows, _ := traj.Dims(); s < 0 || s >= rows {
		return Band{}, fmt.Errorf("analysis: compartment %d outside [0,%d)", s, rows)
	}

	band := Band{
		Times: append([]float64(nil), traj.Times...),
		Mean:  make([]float64, traj.Len()),
		Lower: make([]float64, traj.Len()),
		Upper: make([]float64, traj.Len()),
	}

	for t, x := range traj.States {
		values := append([]float64(nil), x.RawRowView(s)...)
		sort.Float64s(values)
		band.Mean[t] = stat.Mean(values, nil)
		band.Lower[t] = stat.Quantile(lower, stat.Empirical, values, nil)
		band.Upper[t] = stat.Quantile(upper, stat.Empirical, values, nil)
	}
	return band, nil
}

// PeakTimes returns, per replica, the first time compartment s reached its maximum.
func PeakTimes(traj *chainbinom.Trajectory, s int) []float64 {
	_, units := traj.Dims()
	out := make([]float64, units)
	for n := 0; n < units; n++ {
		series := traj.Series(s, n)
		best := 0
		for i, v := range series {
			if v > series[best] {
				best = i
			}
		}
		out[n] = traj.Times[best]
	}
	return out
}

// FinalCounts returns compartment s of every replica at the last time point.
func FinalCounts(traj *chainbinom.Trajectory, s int) []float64 {
	if traj.Len() == 0 {
		return nil
	}
	return append([]float64(nil), traj.States[traj.Len()-1].RawRowView(s)...)
}
