package chainbinom

import (
	"errors"
	"testing"

	"gonum.org/v1/gonum/mat"
)

func TestUpdateState(t *testing.T) {
	stoich := sirStoichiometry()
	state := mat.NewDense(3, 2, []float64{
		10, 5,
		2, 0,
		0, 1,
	})
	update := mat.NewDense(2, 2, []float64{
		3, 1,
		1, 0,
	})
	before := mat.DenseCopyOf(state)

	next, err := UpdateState(update, state, stoich)
	if err != nil {
		t.Fatalf("UpdateState: %v", err)
	}

	want := mat.NewDense(3, 2, []float64{
		7, 4,
		4, 1,
		1, 1,
	})
	if !mat.Equal(next, want) {
		t.Errorf("UpdateState =\n%v\nwant\n%v", mat.Formatted(next), mat.Formatted(want))
	}
	if !mat.Equal(state, before) {
		t.Error("UpdateState modified its state argument")
	}
}

func TestUpdateState_ZeroUpdate(t *testing.T) {
	state := sirState(4, 90, 10, 0)
	next, err := UpdateState(mat.NewDense(2, 4, nil), state, sirStoichiometry())
	if err != nil {
		t.Fatalf("UpdateState: %v", err)
	}
	if !mat.Equal(next, state) {
		t.Error("zero update changed the state")
	}
}

func TestUpdateState_DimensionMismatch(t *testing.T) {
	stoich := sirStoichiometry()

	tests := []struct {
		name   string
		update *mat.Dense
		state  *mat.Dense
		stoich *mat.Dense
	}{
		{"update units", mat.NewDense(2, 3, nil), sirState(2, 1, 1, 1), stoich},
		{"update transitions", mat.NewDense(3, 2, nil), sirState(2, 1, 1, 1), stoich},
		{"state compartments", mat.NewDense(2, 2, nil), mat.NewDense(2, 2, nil), stoich},
		{"nil state", mat.NewDense(2, 2, nil), nil, stoich},
		{"empty stoichiometry", mat.NewDense(2, 2, nil), sirState(2, 1, 1, 1), &mat.Dense{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := UpdateState(tt.update, tt.state, tt.stoich)
			if !errors.Is(err, ErrDimensionMismatch) {
				t.Errorf("expected ErrDimensionMismatch, got %v", err)
			}
		})
	}
}
