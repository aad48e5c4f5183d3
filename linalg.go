package nurbs

import (
	"fmt"
	"math"
	"sync"
)

// Pure numeric helpers shared by the evaluators and exposed to fitting and
// exchange collaborators. All functions are stateless; the only package-level
// state is the binomial memo table below.

// Linspace returns num evenly spaced values from start to stop inclusive,
// each rounded to decimals decimal places. A negative decimals value disables
// rounding. If start and stop coincide within 1e-7, a single-element slice is
// returned.
func Linspace(start, stop float64, num, decimals int) []float64 {
	if math.Abs(start-stop) <= 1e-7 {
		return []float64{start}
	}
	if num < 2 {
		num = 2
	}
	div := float64(num - 1)
	out := make([]float64, num)
	for i := range out {
		out[i] = roundTo(start+(stop-start)*(float64(i)/div), decimals)
	}
	return out
}

// Frange returns the values from start to stop (inclusive, within a small
// tolerance) in increments of step.
func Frange(start, stop, step float64) []float64 {
	var out []float64
	for v := start; v <= stop+1e-8; v += step {
		out = append(out, v)
	}
	return out
}

// roundTo rounds x to decimals decimal places. Rounding is skipped when
// decimals is negative or beyond float64 precision.
func roundTo(x float64, decimals int) float64 {
	if decimals < 0 || decimals > 15 {
		return x
	}
	pow := math.Pow(10, float64(decimals))
	return math.Round(x*pow) / pow
}

// Cross computes the cross product of two vectors. The inputs must both be
// 2- or 3-dimensional; 2-dimensional inputs are zero-extended to 3D, so their
// cross product lies along the z axis.
func Cross(v1, v2 []float64) ([]float64, error) {
	if len(v1) != len(v2) {
		return nil, fmt.Errorf("%w: vectors have different dimensions (%d and %d)", ErrInvalidArgument, len(v1), len(v2))
	}
	switch len(v1) {
	case 2:
		return []float64{0, 0, v1[0]*v2[1] - v1[1]*v2[0]}, nil
	case 3:
		return []float64{
			v1[1]*v2[2] - v1[2]*v2[1],
			v1[2]*v2[0] - v1[0]*v2[2],
			v1[0]*v2[1] - v1[1]*v2[0],
		}, nil
	default:
		return nil, fmt.Errorf("%w: cross product requires 2- or 3-dimensional vectors, got %d", ErrInvalidArgument, len(v1))
	}
}

// Dot computes the dot product of two vectors of equal dimension.
func Dot(v1, v2 []float64) (float64, error) {
	if len(v1) != len(v2) {
		return 0, fmt.Errorf("%w: vectors have different dimensions (%d and %d)", ErrInvalidArgument, len(v1), len(v2))
	}
	var sum float64
	for i := range v1 {
		sum += v1[i] * v2[i]
	}
	return sum, nil
}

// Magnitude returns the euclidean length of v.
func Magnitude(v []float64) float64 {
	var sq float64
	for _, c := range v {
		sq += c * c
	}
	return math.Sqrt(sq)
}

// NormalizeVector returns v scaled to unit length. A zero-magnitude input is
// an error.
func NormalizeVector(v []float64) ([]float64, error) {
	if len(v) == 0 {
		return nil, fmt.Errorf("%w: empty vector", ErrInvalidArgument)
	}
	mag := Magnitude(v)
	if mag == 0 {
		return nil, fmt.Errorf("%w: cannot normalize a zero-magnitude vector", ErrDivideByZero)
	}
	out := make([]float64, len(v))
	for i, c := range v {
		out[i] = c / mag
	}
	return out, nil
}

// VectorBetween returns the vector from p1 to p2, optionally normalized.
func VectorBetween(p1, p2 []float64, normalize bool) ([]float64, error) {
	if len(p1) != len(p2) {
		return nil, fmt.Errorf("%w: points have different dimensions (%d and %d)", ErrInvalidArgument, len(p1), len(p2))
	}
	v := make([]float64, len(p1))
	for i := range v {
		v[i] = p2[i] - p1[i]
	}
	if normalize {
		return NormalizeVector(v)
	}
	return v, nil
}

// PointDistance returns the euclidean distance between two points of equal
// dimension.
func PointDistance(p1, p2 []float64) (float64, error) {
	v, err := VectorBetween(p1, p2, false)
	if err != nil {
		return 0, err
	}
	return Magnitude(v), nil
}

// PointMid returns the midpoint of two points of equal dimension.
func PointMid(p1, p2 []float64) ([]float64, error) {
	if len(p1) != len(p2) {
		return nil, fmt.Errorf("%w: points have different dimensions (%d and %d)", ErrInvalidArgument, len(p1), len(p2))
	}
	mid := make([]float64, len(p1))
	for i := range mid {
		mid[i] = 0.5 * (p1[i] + p2[i])
	}
	return mid, nil
}

// PointTranslate returns p moved by the vector v.
func PointTranslate(p, v []float64) ([]float64, error) {
	if len(p) != len(v) {
		return nil, fmt.Errorf("%w: point and vector have different dimensions (%d and %d)", ErrInvalidArgument, len(p), len(v))
	}
	out := make([]float64, len(p))
	for i := range out {
		out[i] = p[i] + v[i]
	}
	return out, nil
}

// Transpose returns the transpose of m.
func Transpose(m [][]float64) [][]float64 {
	if len(m) == 0 {
		return nil
	}
	out := make([][]float64, len(m[0]))
	for i := range out {
		out[i] = make([]float64, len(m))
		for j := range out[i] {
			out[i][j] = m[j][i]
		}
	}
	return out
}

// MatMul multiplies two matrices with the straightforward triple loop.
func MatMul(a, b [][]float64) ([][]float64, error) {
	if len(a) == 0 || len(b) == 0 || len(a[0]) != len(b) {
		return nil, fmt.Errorf("%w: incompatible matrix dimensions for multiplication", ErrInvalidArgument)
	}
	out := make([][]float64, len(a))
	for i := range out {
		out[i] = make([]float64, len(b[0]))
		for k := range b {
			aik := a[i][k]
			for j := range b[0] {
				out[i][j] += aik * b[k][j]
			}
		}
	}
	return out, nil
}

// LUDecompose factors the square matrix m into lower- and upper-triangular
// matrices with Doolittle's method, so that m = l·u with a unit diagonal on
// l.
func LUDecompose(m [][]float64) (l, u [][]float64, err error) {
	n := len(m)
	for _, row := range m {
		if len(row) != n {
			return nil, nil, fmt.Errorf("%w: LU decomposition requires a square matrix", ErrInvalidArgument)
		}
	}

	l = make([][]float64, n)
	u = make([][]float64, n)
	for i := range n {
		l[i] = make([]float64, n)
		u[i] = make([]float64, n)
	}

	for i := range n {
		for j := i; j < n; j++ {
			sum := 0.0
			for k := range i {
				sum += l[i][k] * u[k][j]
			}
			u[i][j] = m[i][j] - sum
		}
		l[i][i] = 1
		for j := i + 1; j < n; j++ {
			sum := 0.0
			for k := range i {
				sum += l[j][k] * u[k][i]
			}
			if u[i][i] == 0 {
				return nil, nil, fmt.Errorf("%w: zero pivot at row %d", ErrDivideByZero, i)
			}
			l[j][i] = (m[j][i] - sum) / u[i][i]
		}
	}
	return l, u, nil
}

// ForwardSubstitute solves l·y = b for y, where l is lower-triangular.
func ForwardSubstitute(l [][]float64, b []float64) []float64 {
	n := len(b)
	y := make([]float64, n)
	for i := range n {
		sum := b[i]
		for j := range i {
			sum -= l[i][j] * y[j]
		}
		y[i] = sum / l[i][i]
	}
	return y
}

// BackwardSubstitute solves u·x = y for x, where u is upper-triangular.
func BackwardSubstitute(u [][]float64, y []float64) []float64 {
	n := len(y)
	x := make([]float64, n)
	for i := n - 1; i >= 0; i-- {
		sum := y[i]
		for j := i + 1; j < n; j++ {
			sum -= u[i][j] * x[j]
		}
		x[i] = sum / u[i][i]
	}
	return x
}

// LUSolve solves the linear system m·x = b by LU decomposition followed by
// the two triangular solves.
func LUSolve(m [][]float64, b []float64) ([]float64, error) {
	l, u, err := LUDecompose(m)
	if err != nil {
		return nil, err
	}
	return BackwardSubstitute(u, ForwardSubstitute(l, b)), nil
}

var binomMu sync.Mutex
var binomCache = map[[2]int]float64{}

// Binomial returns the binomial coefficient C(k, i). The result is 0 when
// i > k. Results are memoized; the table is safe for concurrent use.
func Binomial(k, i int) float64 {
	if i > k {
		return 0
	}
	if i == 0 || i == k {
		return 1
	}

	if i > k-i {
		i = k - i
	}
	binomMu.Lock()
	defer binomMu.Unlock()
	if v, ok := binomCache[[2]int{k, i}]; ok {
		return v
	}
	r := 1.0
	n := k
	for d := 1; d <= i; d++ {
		r *= float64(n) / float64(d)
		n--
	}
	r = math.Round(r)
	binomCache[[2]int{k, i}] = r
	return r
}
