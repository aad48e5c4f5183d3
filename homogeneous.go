package nurbs

import "fmt"

// Homogenize lifts Cartesian control points into homogeneous coordinates:
// each point (x, y, ...) with weight w becomes (x·w, y·w, ..., w). The
// rational evaluators and knot insertion operate exclusively on this form.
func Homogenize(cpts [][]float64, weights []float64) ([][]float64, error) {
	if len(weights) != len(cpts) {
		return nil, fmt.Errorf("%w: %d control points but %d weights", ErrInvalidArgument, len(cpts), len(weights))
	}
	out := make([][]float64, len(cpts))
	for i, pt := range cpts {
		w := weights[i]
		hpt := make([]float64, len(pt)+1)
		for c, v := range pt {
			hpt[c] = v * w
		}
		hpt[len(pt)] = w
		out[i] = hpt
	}
	return out, nil
}

// Dehomogenize projects homogeneous points back to Cartesian coordinates by
// dividing out the trailing weight component. A zero weight is an error.
func Dehomogenize(wcpts [][]float64) ([][]float64, error) {
	out := make([][]float64, len(wcpts))
	for i, hpt := range wcpts {
		pt, err := dehomogenize(hpt)
		if err != nil {
			return nil, fmt.Errorf("point %d: %w", i, err)
		}
		out[i] = pt
	}
	return out, nil
}

func dehomogenize(hpt []float64) ([]float64, error) {
	w := hpt[len(hpt)-1]
	if w == 0 {
		return nil, fmt.Errorf("%w: zero weight component", ErrDivideByZero)
	}
	pt := make([]float64, len(hpt)-1)
	for c := range pt {
		pt[c] = hpt[c] / w
	}
	return pt, nil
}

// WeightsOf extracts the trailing weight component of each homogeneous point.
func WeightsOf(wcpts [][]float64) []float64 {
	out := make([]float64, len(wcpts))
	for i, hpt := range wcpts {
		out[i] = hpt[len(hpt)-1]
	}
	return out
}
