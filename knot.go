package nurbs

import (
	"fmt"
	"math"
)

// knotEpsilon is the tolerance used when comparing knot values and when
// validating evaluation parameters against the knot vector's domain.
const knotEpsilon = 1e-8

// SpanMode selects the search strategy used for knot span lookup. The two
// strategies return identical results; the binary search is preferred for
// long knot vectors.
type SpanMode int

const (
	SpanLinear SpanMode = iota
	SpanBinary
)

// KnotVector is a non-decreasing sequence of parameter values. For a geometry
// of degree p with n control points in a direction, the knot vector of that
// direction must have exactly n+p+1 elements.
type KnotVector []float64

// NewKnotVector generates a clamped, equally spaced knot vector of length
// degree+nctrlpts+1 over [0, 1]. The first and last knots are repeated
// degree+1 times, so a curve built on the vector interpolates its end control
// points.
func NewKnotVector(degree, nctrlpts int) (KnotVector, error) {
	if degree <= 0 || nctrlpts <= 0 {
		return nil, fmt.Errorf("%w: degree (%d) and number of control points (%d) must be positive", ErrInvalidArgument, degree, nctrlpts)
	}
	if nctrlpts < degree+1 {
		return nil, fmt.Errorf("%w: degree %d needs at least %d control points, got %d",
			ErrInvalidArgument, degree, degree+1, nctrlpts)
	}

	// degree+1 copies of 0, equally spaced interior knots, degree+1 copies
	// of 1. The interior Linspace contributes the two boundary values.
	segments := nctrlpts - (degree + 1)
	kv := make(KnotVector, 0, degree+nctrlpts+1)
	for range degree {
		kv = append(kv, 0)
	}
	kv = append(kv, Linspace(0, 1, segments+2, -1)...)
	for range degree {
		kv = append(kv, 1)
	}
	return kv, nil
}

// NewUnclampedKnotVector generates a uniform, unclamped knot vector of length
// degree+nctrlpts+1 over [0, 1]: every knot is simple and equally spaced.
func NewUnclampedKnotVector(degree, nctrlpts int) (KnotVector, error) {
	if degree <= 0 || nctrlpts <= 0 {
		return nil, fmt.Errorf("%w: degree (%d) and number of control points (%d) must be positive", ErrInvalidArgument, degree, nctrlpts)
	}
	return KnotVector(Linspace(0, 1, degree+nctrlpts+1, -1)), nil
}

// Check reports whether kv is a valid knot vector for the given degree and
// control point count: its length equals degree+nctrlpts+1 and its values are
// non-decreasing. Repeated knots are legal; they raise the multiplicity.
func (kv KnotVector) Check(degree, nctrlpts int) bool {
	if len(kv) != degree+nctrlpts+1 {
		return false
	}
	return kv.IsNonDecreasing()
}

// IsNonDecreasing reports whether no knot is smaller than its predecessor.
func (kv KnotVector) IsNonDecreasing() bool {
	for i := 1; i < len(kv); i++ {
		if kv[i] < kv[i-1] {
			return false
		}
	}
	return true
}

// Normalize returns a copy of kv rescaled affinely so that its first knot is
// 0 and its last knot is 1, with every value rounded to decimals decimal
// places. A negative decimals value disables rounding.
func (kv KnotVector) Normalize(decimals int) (KnotVector, error) {
	if len(kv) == 0 {
		return nil, fmt.Errorf("%w: empty knot vector", ErrInvalidArgument)
	}
	first, last := kv[0], kv[len(kv)-1]
	denom := last - first
	out := make(KnotVector, len(kv))
	for i, u := range kv {
		out[i] = roundTo((u-first)/denom, decimals)
	}
	return out, nil
}

// Domain returns the valid parameter range of the knot vector,
// [kv[degree], kv[len(kv)-degree-1]]. For a clamped normalized vector this is
// [0, 1].
func (kv KnotVector) Domain(degree int) (start, end float64) {
	return kv[degree], kv[len(kv)-degree-1]
}

// Clone returns a copy of kv.
func (kv KnotVector) Clone() KnotVector {
	return append(KnotVector(nil), kv...)
}

// Span returns the knot span index i such that kv[i] <= u < kv[i+1],
// corresponding to algorithm A2.1. When u equals the last valid knot, the
// last non-degenerate span is returned, keeping evaluation continuous at the
// right end of the domain.
func (kv KnotVector) Span(degree, nctrlpts int, u float64, mode SpanMode) int {
	if mode == SpanBinary {
		return kv.spanBinary(degree, nctrlpts, u)
	}
	return kv.spanLinear(degree, nctrlpts, u)
}

// Spans performs span lookup for every parameter in us. Dense samplers use it
// to batch lookup away from the per-point accumulation loops.
func (kv KnotVector) Spans(degree, nctrlpts int, us []float64, mode SpanMode) []int {
	spans := make([]int, len(us))
	for i, u := range us {
		spans[i] = kv.Span(degree, nctrlpts, u, mode)
	}
	return spans
}

func (kv KnotVector) spanLinear(degree, nctrlpts int, u float64) int {
	span := degree + 1
	for span < nctrlpts && kv[span] <= u {
		span++
	}
	return span - 1
}

func (kv KnotVector) spanBinary(degree, nctrlpts int, u float64) int {
	n := nctrlpts - 1
	if u >= kv[n+1] {
		return n
	}
	if u < kv[degree] {
		return degree
	}

	low, high := degree, n+1
	mid := (low + high) / 2
	for u < kv[mid] || u >= kv[mid+1] {
		if u < kv[mid] {
			high = mid
		} else {
			low = mid
		}
		mid = (low + high) / 2
	}
	return mid
}

// Multiplicity returns how many knots equal u within a small tolerance.
func (kv KnotVector) Multiplicity(u float64) int {
	var mult int
	for _, knot := range kv {
		if math.Abs(u-knot) <= knotEpsilon {
			mult++
		}
	}
	return mult
}

// contains reports whether u lies inside the valid domain, allowing tol of
// slack at both ends.
func (kv KnotVector) contains(degree int, u, tol float64) bool {
	start, end := kv.Domain(degree)
	return u >= start-tol && u <= end+tol
}
