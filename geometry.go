package nurbs

import (
	"fmt"
	"math"
)

// BBox is the axis-aligned bounding box of a geometry's control points. Since
// a spline lies inside the convex hull of its control points, the box bounds
// the geometry itself as well.
type BBox struct {
	Min, Max []float64
}

// bboxOf computes the componentwise min and max over a set of Cartesian
// points.
func bboxOf(cpts [][]float64) BBox {
	dim := len(cpts[0])
	bb := BBox{
		Min: make([]float64, dim),
		Max: make([]float64, dim),
	}
	for c := range dim {
		bb.Min[c] = math.Inf(1)
		bb.Max[c] = math.Inf(-1)
	}
	for _, pt := range cpts {
		for c, v := range pt {
			bb.Min[c] = math.Min(bb.Min[c], v)
			bb.Max[c] = math.Max(bb.Max[c], v)
		}
	}
	return bb
}

// checkDelta validates an evaluation step size.
func checkDelta(d float64) error {
	if d <= 0 || d >= 1 {
		return fmt.Errorf("%w: evaluation delta must be in (0, 1), got %g", ErrInvalidArgument, d)
	}
	return nil
}

// sampleCount converts an evaluation delta into the equivalent number of
// evaluation points across the domain.
func sampleCount(delta float64) int {
	return int(math.Floor(1/delta+0.5)) + 1
}

// sampleDelta converts a sample size back into a step size.
func sampleDelta(n int) (float64, error) {
	if n < 2 {
		return 0, fmt.Errorf("%w: sample size must be at least 2, got %d", ErrInvalidArgument, n)
	}
	return 1 / float64(n-1), nil
}

// uniformWeights returns n weights of 1.
func uniformWeights(n int) []float64 {
	ws := make([]float64, n)
	for i := range ws {
		ws[i] = 1
	}
	return ws
}

// clonePoints deep-copies a point slice. Geometries never alias control
// points with their callers or with derived geometries.
func clonePoints(pts [][]float64) [][]float64 {
	out := make([][]float64, len(pts))
	for i, pt := range pts {
		out[i] = append([]float64(nil), pt...)
	}
	return out
}

// checkPoints validates that pts is non-empty and of uniform dimension,
// returning that dimension.
func checkPoints(pts [][]float64) (int, error) {
	if len(pts) == 0 {
		return 0, fmt.Errorf("%w: empty control point list", ErrInvalidArgument)
	}
	dim := len(pts[0])
	if dim == 0 {
		return 0, fmt.Errorf("%w: zero-dimensional control point", ErrInvalidArgument)
	}
	for i, pt := range pts {
		if len(pt) != dim {
			return 0, fmt.Errorf("%w: control point %d has dimension %d, expected %d", ErrInvalidArgument, i, len(pt), dim)
		}
	}
	return dim, nil
}

// DefaultDelta is the evaluation step size geometries start with: 101 sample
// points per direction over a normalized domain.
const DefaultDelta = 0.01
