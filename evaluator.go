package nurbs

import "fmt"

// CurveData is an immutable snapshot of everything a curve evaluator needs:
// degree, knot vector, and control points. For rational evaluators the
// control points are homogeneous (weighted); for polynomial evaluators they
// are Cartesian. It doubles as the boundary format consumed by exchange and
// extraction utilities.
type CurveData struct {
	Degree   int
	Knots    KnotVector
	CtrlPts  [][]float64
	Rational bool
}

// SurfaceData is the two-direction analogue of [CurveData]. Control points
// are stored flat in u-major order: point (u, v) lives at index u*SizeV+v.
type SurfaceData struct {
	DegreeU, DegreeV int
	KnotsU, KnotsV   KnotVector
	SizeU, SizeV     int
	CtrlPts          [][]float64
	Rational         bool
}

// VolumeData is the three-direction analogue of [CurveData]. Control points
// are stored flat with w varying fastest: point (u, v, w) lives at index
// (u*SizeV+v)*SizeW+w.
type VolumeData struct {
	DegreeU, DegreeV, DegreeW int
	KnotsU, KnotsV, KnotsW    KnotVector
	SizeU, SizeV, SizeW       int
	CtrlPts                   [][]float64
	Rational                  bool
}

// At returns the control point at grid position (u, v).
func (d *SurfaceData) At(u, v int) []float64 {
	return d.CtrlPts[u*d.SizeV+v]
}

// At returns the control point at grid position (u, v, w).
func (d *VolumeData) At(u, v, w int) []float64 {
	return d.CtrlPts[(u*d.SizeV+v)*d.SizeW+w]
}

// CurveEvaluator computes points and derivatives of a spline curve described
// by a [CurveData] snapshot.
type CurveEvaluator interface {
	// Evaluate computes the curve point at every parameter in us.
	Evaluate(data *CurveData, us []float64) ([][]float64, error)
	// Derivatives computes the curve point and its derivatives up to the
	// given order at u. Row k of the result is the k-th derivative; row 0 is
	// the point itself. Derivatives of order beyond the degree are zero
	// vectors for polynomial curves.
	Derivatives(data *CurveData, u float64, order int) ([][]float64, error)
}

// SurfaceEvaluator computes points and derivatives of a spline surface. The
// point list produced by Evaluate is u-major, matching the control point
// layout.
type SurfaceEvaluator interface {
	Evaluate(data *SurfaceData, us, vs []float64) ([][]float64, error)
	// Derivatives returns the table SKL where SKL[k][l] is the derivative
	// taken k times in u and l times in v; SKL[0][0] is the surface point.
	Derivatives(data *SurfaceData, u, v float64, order int) ([][][]float64, error)
}

// VolumeEvaluator computes points and derivatives of a spline volume. The
// point list produced by Evaluate iterates w fastest, matching the control
// point layout.
type VolumeEvaluator interface {
	Evaluate(data *VolumeData, us, vs, ws []float64) ([][]float64, error)
	// Derivatives returns the table SKL where SKL[k][l][m] is the derivative
	// taken k times in u, l times in v and m times in w.
	Derivatives(data *VolumeData, u, v, w float64, order int) ([][][][]float64, error)
}

// domainTolerance is the slack allowed when validating evaluation parameters
// against the knot vector domain.
const domainTolerance = 1e-7

// checkDomain validates every parameter against the knot vector's domain.
func checkDomain(kv KnotVector, degree int, us ...float64) error {
	for _, u := range us {
		if !kv.contains(degree, u, domainTolerance) {
			start, end := kv.Domain(degree)
			return fmt.Errorf("%w: %g not in [%g, %g]", ErrOutOfDomain, u, start, end)
		}
	}
	return nil
}

// checkCurveData verifies the structural relation between degree, knot vector
// and control points before evaluation touches them.
func checkCurveData(data *CurveData) error {
	if len(data.CtrlPts) < data.Degree+1 {
		return fmt.Errorf("%w: a degree %d curve needs at least %d control points, have %d",
			ErrInvalidArgument, data.Degree, data.Degree+1, len(data.CtrlPts))
	}
	if len(data.Knots) != data.Degree+len(data.CtrlPts)+1 {
		return fmt.Errorf("%w: knot vector length %d does not equal degree+ctrlpts+1 = %d",
			ErrInvalidArgument, len(data.Knots), data.Degree+len(data.CtrlPts)+1)
	}
	return nil
}

func checkSurfaceData(data *SurfaceData) error {
	if len(data.CtrlPts) != data.SizeU*data.SizeV {
		return fmt.Errorf("%w: %d control points for a %dx%d grid", ErrInvalidArgument, len(data.CtrlPts), data.SizeU, data.SizeV)
	}
	if data.SizeU < data.DegreeU+1 || data.SizeV < data.DegreeV+1 {
		return fmt.Errorf("%w: control point grid %dx%d too small for degrees (%d, %d)",
			ErrInvalidArgument, data.SizeU, data.SizeV, data.DegreeU, data.DegreeV)
	}
	if len(data.KnotsU) != data.DegreeU+data.SizeU+1 || len(data.KnotsV) != data.DegreeV+data.SizeV+1 {
		return fmt.Errorf("%w: knot vector lengths inconsistent with degrees and control point grid", ErrInvalidArgument)
	}
	return nil
}

func checkVolumeData(data *VolumeData) error {
	if len(data.CtrlPts) != data.SizeU*data.SizeV*data.SizeW {
		return fmt.Errorf("%w: %d control points for a %dx%dx%d grid", ErrInvalidArgument, len(data.CtrlPts), data.SizeU, data.SizeV, data.SizeW)
	}
	if data.SizeU < data.DegreeU+1 || data.SizeV < data.DegreeV+1 || data.SizeW < data.DegreeW+1 {
		return fmt.Errorf("%w: control point lattice %dx%dx%d too small for degrees (%d, %d, %d)",
			ErrInvalidArgument, data.SizeU, data.SizeV, data.SizeW, data.DegreeU, data.DegreeV, data.DegreeW)
	}
	if len(data.KnotsU) != data.DegreeU+data.SizeU+1 ||
		len(data.KnotsV) != data.DegreeV+data.SizeV+1 ||
		len(data.KnotsW) != data.DegreeW+data.SizeW+1 {
		return fmt.Errorf("%w: knot vector lengths inconsistent with degrees and control point grid", ErrInvalidArgument)
	}
	return nil
}
