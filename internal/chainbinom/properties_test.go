package chainbinom_test

import (
	"context"
	"math"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"gonum.org/v1/gonum/mat"

	"github.com/san-kum/chainsim/internal/chainbinom"
)

// seir has exposure, onset and recovery transitions over S, E, I, R.
var seirStoichiometry = mat.NewDense(3, 4, []float64{
	-1, 1, 0, 0,
	0, -1, 1, 0,
	0, 0, -1, 1,
})

func seirHazard(beta, sigma, gamma float64) chainbinom.HazardFunc {
	return func(x *mat.Dense) ([]int, *mat.Dense, error) {
		_, n := x.Dims()
		rates := mat.NewDense(3, n, nil)
		for j := 0; j < n; j++ {
			total := 0.0
			for s := 0; s < 4; s++ {
				total += x.At(s, j)
			}
			if total > 0 {
				rates.Set(0, j, beta*x.At(2, j)/total)
			}
			rates.Set(1, j, sigma)
			rates.Set(2, j, gamma)
		}
		return []int{0, 1, 2}, rates, nil
	}
}

func initialSEIR(units int) *mat.Dense {
	x := mat.NewDense(4, units, nil)
	for j := 0; j < units; j++ {
		x.Set(0, j, 1000-float64(j))
		x.Set(2, j, float64(j%5+1))
	}
	return x
}

var _ = Describe("Simulate", func() {
	const units = 24

	var traj *chainbinom.Trajectory

	BeforeEach(func() {
		var err error
		traj, err = chainbinom.Simulate(context.Background(), seirHazard(0.6, 0.25, 0.1),
			initialSEIR(units), 0, 120, 0.5, seirStoichiometry, chainbinom.NewSource(31))
		Expect(err).NotTo(HaveOccurred())
	})

	It("records one state per time point", func() {
		Expect(traj.Times).To(HaveLen(240))
		Expect(traj.States).To(HaveLen(240))
		Expect(traj.Times[239]).To(BeNumerically("~", 119.5, 1e-9))
	})

	It("never produces negative counts", func() {
		for _, x := range traj.States {
			Expect(mat.Min(x)).To(BeNumerically(">=", 0))
		}
	})

	It("conserves each unit's population under pure transfers", func() {
		initial := traj.Totals(0)
		for t := range traj.States {
			Expect(traj.Totals(t)).To(Equal(initial))
		}
	})

	It("never draws more transitions than the source held", func() {
		// each compartment only loses individuals to its own exit
		for t := 1; t < traj.Len(); t++ {
			for n := 0; n < units; n++ {
				Expect(traj.At(t, 0, n)).To(BeNumerically("<=", traj.At(t-1, 0, n)))
				Expect(traj.At(t, 3, n)).To(BeNumerically(">=", traj.At(t-1, 3, n)))
				exposedIn := traj.At(t-1, 0, n) - traj.At(t, 0, n)
				recovered := traj.At(t, 3, n) - traj.At(t-1, 3, n)
				Expect(recovered).To(BeNumerically("<=", traj.At(t-1, 2, n)))
				Expect(traj.At(t, 1, n) - exposedIn).To(BeNumerically(">=", 0))
			}
		}
	})

	It("replays bit-identically from the same seed", func() {
		again, err := chainbinom.Simulate(context.Background(), seirHazard(0.6, 0.25, 0.1),
			initialSEIR(units), 0, 120, 0.5, seirStoichiometry, chainbinom.NewSource(31))
		Expect(err).NotTo(HaveOccurred())
		for i := range traj.States {
			Expect(mat.Equal(again.States[i], traj.States[i])).To(BeTrue())
		}
	})
})

var _ = Describe("Propagate", func() {
	It("keeps the state fixed when every rate is zero", func() {
		zero := func(x *mat.Dense) ([]int, *mat.Dense, error) {
			_, n := x.Dims()
			return []int{0, 1, 2}, mat.NewDense(3, n, nil), nil
		}
		step, err := chainbinom.Propagate(zero, 1, seirStoichiometry, chainbinom.NewSource(4))
		Expect(err).NotTo(HaveOccurred())

		x := initialSEIR(8)
		next, err := step(x)
		Expect(err).NotTo(HaveOccurred())
		Expect(mat.Equal(next, x)).To(BeTrue())
	})

	It("draws binomial counts with the hazard-derived mean", func() {
		const (
			units = 2000
			pop   = 1000.0
			rate  = 0.1
		)
		stoich := mat.NewDense(1, 2, []float64{-1, 1})
		rates := mat.NewDense(1, units, nil)
		x := mat.NewDense(2, units, nil)
		for j := 0; j < units; j++ {
			rates.Set(0, j, rate)
			x.Set(0, j, pop)
		}
		h := func(*mat.Dense) ([]int, *mat.Dense, error) { return []int{0}, rates, nil }

		step, err := chainbinom.Propagate(h, 1, stoich, chainbinom.NewSource(8))
		Expect(err).NotTo(HaveOccurred())
		next, err := step(x)
		Expect(err).NotTo(HaveOccurred())

		mean := mat.Sum(next.RowView(1)) / units
		want := pop * (1 - math.Exp(-rate))
		Expect(mean).To(BeNumerically("~", want, 2))
	})
})
