package nurbs

import (
	"fmt"
)

// Surface is a B-spline or NURBS surface parametrized over two directions, u
// and v. Control points form a SizeU×SizeV grid, stored flat in u-major
// order. State handling follows [Curve]: degrees before control points
// before knot vectors, cache invalidation on every mutation.
type Surface struct {
	rational         bool
	degreeU, degreeV int
	knotsU, knotsV   KnotVector
	sizeU, sizeV     int
	ctrlpts          [][]float64
	weights          []float64
	deltaU, deltaV   float64
	eval             SurfaceEvaluator

	evalpts [][]float64
	bbox    *BBox
}

// NewSurface returns an empty polynomial B-spline surface.
func NewSurface() *Surface {
	return &Surface{
		deltaU: DefaultDelta,
		deltaV: DefaultDelta,
		eval:   &BSplineSurfaceEval{},
	}
}

// NewRationalSurface returns an empty rational (NURBS) surface.
func NewRationalSurface() *Surface {
	return &Surface{
		rational: true,
		deltaU:   DefaultDelta,
		deltaV:   DefaultDelta,
		eval:     &NURBSSurfaceEval{},
	}
}

func (s *Surface) invalidate() {
	s.evalpts = nil
	s.bbox = nil
}

func (s *Surface) missing() []string {
	var m []string
	if s.degreeU == 0 {
		m = append(m, "degree (u)")
	}
	if s.degreeV == 0 {
		m = append(m, "degree (v)")
	}
	if len(s.ctrlpts) == 0 {
		m = append(m, "control points")
	}
	if len(s.knotsU) == 0 {
		m = append(m, "knot vector (u)")
	}
	if len(s.knotsV) == 0 {
		m = append(m, "knot vector (v)")
	}
	return m
}

func (s *Surface) ready(op string) error {
	if m := s.missing(); len(m) > 0 {
		return &StateError{Op: op, Missing: m}
	}
	return nil
}

// Rational reports whether the surface carries weights.
func (s *Surface) Rational() bool { return s.rational }

// DegreeU returns the degree in the u direction.
func (s *Surface) DegreeU() int { return s.degreeU }

// DegreeV returns the degree in the v direction.
func (s *Surface) DegreeV() int { return s.degreeV }

// SetDegreeU sets the degree in the u direction.
func (s *Surface) SetDegreeU(degree int) error {
	if degree <= 0 {
		return fmt.Errorf("%w: degree must be positive, got %d", ErrInvalidArgument, degree)
	}
	if s.sizeU != 0 && s.sizeU < degree+1 {
		return fmt.Errorf("%w: degree %d in u needs at least %d control points, have %d",
			ErrInvalidArgument, degree, degree+1, s.sizeU)
	}
	s.degreeU = degree
	if s.knotsU != nil && !s.knotsU.Check(s.degreeU, s.sizeU) {
		s.knotsU = nil
	}
	s.invalidate()
	return nil
}

// SetDegreeV sets the degree in the v direction.
func (s *Surface) SetDegreeV(degree int) error {
	if degree <= 0 {
		return fmt.Errorf("%w: degree must be positive, got %d", ErrInvalidArgument, degree)
	}
	if s.sizeV != 0 && s.sizeV < degree+1 {
		return fmt.Errorf("%w: degree %d in v needs at least %d control points, have %d",
			ErrInvalidArgument, degree, degree+1, s.sizeV)
	}
	s.degreeV = degree
	if s.knotsV != nil && !s.knotsV.Check(s.degreeV, s.sizeV) {
		s.knotsV = nil
	}
	s.invalidate()
	return nil
}

// SizeU returns the number of control points in the u direction.
func (s *Surface) SizeU() int { return s.sizeU }

// SizeV returns the number of control points in the v direction.
func (s *Surface) SizeV() int { return s.sizeV }

// Dimension returns the spatial dimension of the control points.
func (s *Surface) Dimension() int {
	if len(s.ctrlpts) == 0 {
		return 0
	}
	return len(s.ctrlpts[0])
}

// CtrlPts returns a copy of the Cartesian control points, flat in u-major
// order.
func (s *Surface) CtrlPts() [][]float64 { return clonePoints(s.ctrlpts) }

// CtrlPts2D returns a copy of the control points as a SizeU×SizeV grid.
func (s *Surface) CtrlPts2D() [][][]float64 {
	out := make([][][]float64, s.sizeU)
	for u := range out {
		out[u] = clonePoints(s.ctrlpts[u*s.sizeV : (u+1)*s.sizeV])
	}
	return out
}

// SetCtrlPts replaces the control points with a flat u-major list describing
// a sizeU×sizeV grid. Both degrees must be set first; each direction needs
// at least degree+1 points.
func (s *Surface) SetCtrlPts(pts [][]float64, sizeU, sizeV int) error {
	var m []string
	if s.degreeU == 0 {
		m = append(m, "degree (u)")
	}
	if s.degreeV == 0 {
		m = append(m, "degree (v)")
	}
	if len(m) > 0 {
		return &StateError{Op: "SetCtrlPts", Missing: m}
	}
	if sizeU < s.degreeU+1 || sizeV < s.degreeV+1 {
		return fmt.Errorf("%w: a degree (%d, %d) surface needs at least a %dx%d control grid, got %dx%d",
			ErrInvalidArgument, s.degreeU, s.degreeV, s.degreeU+1, s.degreeV+1, sizeU, sizeV)
	}
	if len(pts) != sizeU*sizeV {
		return fmt.Errorf("%w: %d control points for a %dx%d grid", ErrInvalidArgument, len(pts), sizeU, sizeV)
	}
	if _, err := checkPoints(pts); err != nil {
		return err
	}
	s.ctrlpts = clonePoints(pts)
	s.sizeU, s.sizeV = sizeU, sizeV
	if s.rational && len(s.weights) != len(pts) {
		s.weights = uniformWeights(len(pts))
	}
	if s.knotsU != nil && !s.knotsU.Check(s.degreeU, s.sizeU) {
		s.knotsU = nil
	}
	if s.knotsV != nil && !s.knotsV.Check(s.degreeV, s.sizeV) {
		s.knotsV = nil
	}
	s.invalidate()
	return nil
}

// Weights returns a copy of the control point weights, or nil for a
// polynomial surface.
func (s *Surface) Weights() []float64 {
	if !s.rational {
		return nil
	}
	return append([]float64(nil), s.weights...)
}

// SetWeights replaces the weights of a rational surface.
func (s *Surface) SetWeights(ws []float64) error {
	if !s.rational {
		return fmt.Errorf("%w: cannot set weights on a non-rational surface", ErrInvalidArgument)
	}
	if len(s.ctrlpts) == 0 {
		return &StateError{Op: "SetWeights", Missing: []string{"control points"}}
	}
	if len(ws) != len(s.ctrlpts) {
		return fmt.Errorf("%w: %d weights for %d control points", ErrInvalidArgument, len(ws), len(s.ctrlpts))
	}
	s.weights = append([]float64(nil), ws...)
	s.invalidate()
	return nil
}

// KnotVectorU returns the u-direction knot vector.
func (s *Surface) KnotVectorU() KnotVector { return s.knotsU }

// KnotVectorV returns the v-direction knot vector.
func (s *Surface) KnotVectorV() KnotVector { return s.knotsV }

// SetKnotVectorU replaces the u-direction knot vector.
func (s *Surface) SetKnotVectorU(kv KnotVector) error {
	if s.degreeU == 0 || len(s.ctrlpts) == 0 {
		return &StateError{Op: "SetKnotVectorU", Missing: missingFor(s.degreeU, len(s.ctrlpts), "degree (u)")}
	}
	if !kv.Check(s.degreeU, s.sizeU) {
		return fmt.Errorf("%w: knot vector of length %d is not valid for degree %d with %d control points",
			ErrInvalidArgument, len(kv), s.degreeU, s.sizeU)
	}
	s.knotsU = kv.Clone()
	s.invalidate()
	return nil
}

// SetKnotVectorV replaces the v-direction knot vector.
func (s *Surface) SetKnotVectorV(kv KnotVector) error {
	if s.degreeV == 0 || len(s.ctrlpts) == 0 {
		return &StateError{Op: "SetKnotVectorV", Missing: missingFor(s.degreeV, len(s.ctrlpts), "degree (v)")}
	}
	if !kv.Check(s.degreeV, s.sizeV) {
		return fmt.Errorf("%w: knot vector of length %d is not valid for degree %d with %d control points",
			ErrInvalidArgument, len(kv), s.degreeV, s.sizeV)
	}
	s.knotsV = kv.Clone()
	s.invalidate()
	return nil
}

// DeltaU returns the evaluation step size in u.
func (s *Surface) DeltaU() float64 { return s.deltaU }

// DeltaV returns the evaluation step size in v.
func (s *Surface) DeltaV() float64 { return s.deltaV }

// SetDeltaU sets the evaluation step size in u.
func (s *Surface) SetDeltaU(delta float64) error {
	if err := checkDelta(delta); err != nil {
		return err
	}
	s.deltaU = delta
	s.invalidate()
	return nil
}

// SetDeltaV sets the evaluation step size in v.
func (s *Surface) SetDeltaV(delta float64) error {
	if err := checkDelta(delta); err != nil {
		return err
	}
	s.deltaV = delta
	s.invalidate()
	return nil
}

// SampleSizeU returns the number of evaluation points in the u direction.
func (s *Surface) SampleSizeU() int { return sampleCount(s.deltaU) }

// SampleSizeV returns the number of evaluation points in the v direction.
func (s *Surface) SampleSizeV() int { return sampleCount(s.deltaV) }

// SetSampleSizeU sets the evaluation density in u as a point count.
func (s *Surface) SetSampleSizeU(n int) error {
	delta, err := sampleDelta(n)
	if err != nil {
		return err
	}
	s.deltaU = delta
	s.invalidate()
	return nil
}

// SetSampleSizeV sets the evaluation density in v as a point count.
func (s *Surface) SetSampleSizeV(n int) error {
	delta, err := sampleDelta(n)
	if err != nil {
		return err
	}
	s.deltaV = delta
	s.invalidate()
	return nil
}

// Evaluator returns the installed evaluator.
func (s *Surface) Evaluator() SurfaceEvaluator { return s.eval }

// SetEvaluator replaces the evaluator.
func (s *Surface) SetEvaluator(ev SurfaceEvaluator) {
	s.eval = ev
	s.invalidate()
}

// Data returns an evaluation-ready snapshot of the surface; for rational
// surfaces the control points are homogeneous.
func (s *Surface) Data() *SurfaceData {
	cpts := clonePoints(s.ctrlpts)
	if s.rational {
		cpts, _ = Homogenize(cpts, s.weights)
	}
	return &SurfaceData{
		DegreeU:  s.degreeU,
		DegreeV:  s.degreeV,
		KnotsU:   s.knotsU.Clone(),
		KnotsV:   s.knotsV.Clone(),
		SizeU:    s.sizeU,
		SizeV:    s.sizeV,
		CtrlPts:  cpts,
		Rational: s.rational,
	}
}

// Evaluate computes the surface points over the whole domain at the
// configured sampling density and caches them. The point list is u-major.
func (s *Surface) Evaluate() error {
	if err := s.ready("Evaluate"); err != nil {
		return err
	}
	startU, endU := s.knotsU.Domain(s.degreeU)
	startV, endV := s.knotsV.Domain(s.degreeV)
	pts, err := s.eval.Evaluate(s.Data(),
		Linspace(startU, endU, s.SampleSizeU(), -1),
		Linspace(startV, endV, s.SampleSizeV(), -1))
	if err != nil {
		return err
	}
	s.evalpts = pts
	return nil
}

// EvalPts returns the cached evaluated points, evaluating first if needed.
func (s *Surface) EvalPts() ([][]float64, error) {
	if s.evalpts == nil {
		if err := s.Evaluate(); err != nil {
			return nil, err
		}
	}
	return s.evalpts, nil
}

// EvaluateAt computes the surface point at a single (u, v) parameter pair.
func (s *Surface) EvaluateAt(u, v float64) ([]float64, error) {
	pts, err := s.EvaluateList([][2]float64{{u, v}})
	if err != nil {
		return nil, err
	}
	return pts[0], nil
}

// EvaluateList computes the surface points at the given (u, v) pairs,
// bypassing the cache.
func (s *Surface) EvaluateList(params [][2]float64) ([][]float64, error) {
	if err := s.ready("EvaluateList"); err != nil {
		return nil, err
	}
	data := s.Data()
	out := make([][]float64, len(params))
	for i, uv := range params {
		pts, err := s.eval.Evaluate(data, []float64{uv[0]}, []float64{uv[1]})
		if err != nil {
			return nil, err
		}
		out[i] = pts[0]
	}
	return out, nil
}

// Derivatives computes the surface point and its derivatives up to the given
// total order at (u, v). Entry [k][l] is the derivative taken k times in u
// and l times in v.
func (s *Surface) Derivatives(u, v float64, order int) ([][][]float64, error) {
	if err := s.ready("Derivatives"); err != nil {
		return nil, err
	}
	return s.eval.Derivatives(s.Data(), u, v, order)
}

// BBox returns the bounding box of the control points, cached until the
// control points change.
func (s *Surface) BBox() (BBox, error) {
	if len(s.ctrlpts) == 0 {
		return BBox{}, &StateError{Op: "BBox", Missing: []string{"control points"}}
	}
	if s.bbox == nil {
		bb := bboxOf(s.ctrlpts)
		s.bbox = &bb
	}
	return *s.bbox, nil
}

// Transpose returns a new surface with the u and v directions swapped.
// Degrees, knot vectors, weights, and the control grid are exchanged
// accordingly; the surface shape is unchanged.
func (s *Surface) Transpose() (*Surface, error) {
	if err := s.ready("Transpose"); err != nil {
		return nil, err
	}

	out := &Surface{
		rational: s.rational,
		degreeU:  s.degreeV,
		degreeV:  s.degreeU,
		knotsU:   s.knotsV.Clone(),
		knotsV:   s.knotsU.Clone(),
		sizeU:    s.sizeV,
		sizeV:    s.sizeU,
		deltaU:   s.deltaV,
		deltaV:   s.deltaU,
		eval:     s.eval,
	}
	out.ctrlpts = make([][]float64, len(s.ctrlpts))
	if s.rational {
		out.weights = make([]float64, len(s.weights))
	}
	for u := range s.sizeU {
		for v := range s.sizeV {
			src := u*s.sizeV + v
			dst := v*s.sizeU + u
			out.ctrlpts[dst] = append([]float64(nil), s.ctrlpts[src]...)
			if s.rational {
				out.weights[dst] = s.weights[src]
			}
		}
	}
	return out, nil
}

// missingFor builds the missing-precondition list for the knot vector
// setters.
func missingFor(degree, nctrlpts int, degreeName string) []string {
	var m []string
	if degree == 0 {
		m = append(m, degreeName)
	}
	if nctrlpts == 0 {
		m = append(m, "control points")
	}
	return m
}
