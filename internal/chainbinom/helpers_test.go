package chainbinom

import (
	"gonum.org/v1/gonum/mat"
)

// sirStoichiometry maps infection (S→I) and recovery (I→R).
func sirStoichiometry() *mat.Dense {
	return mat.NewDense(2, 3, []float64{
		-1, 1, 0,
		0, -1, 1,
	})
}

func sirHazard(beta, gamma float64) HazardFunc {
	return func(x *mat.Dense) ([]int, *mat.Dense, error) {
		_, n := x.Dims()
		rates := mat.NewDense(2, n, nil)
		for j := 0; j < n; j++ {
			total := x.At(0, j) + x.At(1, j) + x.At(2, j)
			if total > 0 {
				rates.Set(0, j, beta*x.At(1, j)/total)
			}
			rates.Set(1, j, gamma)
		}
		return []int{0, 1}, rates, nil
	}
}

// constantHazard returns fixed rates regardless of state.
func constantHazard(stateIdx []int, rates *mat.Dense) HazardFunc {
	return func(x *mat.Dense) ([]int, *mat.Dense, error) {
		return stateIdx, rates, nil
	}
}

func sirState(units int, s, i, r float64) *mat.Dense {
	x := mat.NewDense(3, units, nil)
	for j := 0; j < units; j++ {
		x.Set(0, j, s)
		x.Set(1, j, i)
		x.Set(2, j, r)
	}
	return x
}
