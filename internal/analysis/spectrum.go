package analysis

import (
	"errors"
	"math/cmplx"

	"github.com/mjibson/go-dsp/fft"
	"gonum.org/v1/gonum/floats"
)

var ErrNoPeriod = errors.New("analysis: series has no periodic component")

// PowerSpectrum returns |X_k| for k in [0, n/2] of the mean-removed series.
func PowerSpectrum(series []float64) []float64 {
	if len(series) == 0 {
		return nil
	}
	centered := append([]float64(nil), series...)
	floats.AddConst(-floats.Sum(centered)/float64(len(centered)), centered)

	coeffs := fft.FFTReal(centered)
	ps := make([]float64, len(coeffs)/2+1)
	for k := range ps {
		ps[k] = cmplx.Abs(coeffs[k])
	}
	return ps
}

// DominantPeriod estimates the period, in time units, of the strongest
// oscillation in a series sampled every dt.
func DominantPeriod(series []float64, dt float64) (float64, error) {
	if len(series) < 4 {
		return 0, ErrNoPeriod
	}
	ps := PowerSpectrum(series)

	best := 0
	for k := 1; k < len(ps); k++ {
		if ps[k] > ps[best] {
			best = k
		}
	}
	if best == 0 || ps[best] < 1e-9 {
		return 0, ErrNoPeriod
	}
	return float64(len(series)) * dt / float64(best), nil
}
