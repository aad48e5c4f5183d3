package nurbs

import (
	"errors"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

func TestHomogenize(t *testing.T) {
	cpts := [][]float64{{1, 2, 3}, {4, 5, 6}}
	wpts, err := Homogenize(cpts, []float64{2, 0.5})
	if err != nil {
		t.Fatal(err)
	}
	diff(t, [][]float64{{2, 4, 6, 2}, {2, 2.5, 3, 0.5}}, wpts)

	back, err := Dehomogenize(wpts)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, cpts, back, cmpopts.EquateApprox(0, 1e-12))
	diff(t, []float64{2, 0.5}, WeightsOf(wpts))

	if _, err := Homogenize(cpts, []float64{1}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
	if _, err := Dehomogenize([][]float64{{1, 2, 0}}); !errors.Is(err, ErrDivideByZero) {
		t.Errorf("got %v, want ErrDivideByZero", err)
	}
}
