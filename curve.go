package nurbs

import (
	"fmt"
)

// Curve is a B-spline or NURBS curve: a degree, a knot vector, control
// points, and, for rational curves, per-control point weights.
//
// A zero-configured curve accepts its state incrementally: degree first, then
// control points, then the knot vector (which is validated against the two).
// Evaluation requires all three and reports every missing piece via
// [StateError]. Evaluated points are cached and recomputed lazily after any
// mutation.
type Curve struct {
	rational bool
	degree   int
	knots    KnotVector
	ctrlpts  [][]float64
	weights  []float64
	delta    float64
	eval     CurveEvaluator

	evalpts [][]float64
	bbox    *BBox
}

// NewCurve returns an empty polynomial B-spline curve with the default
// evaluation delta.
func NewCurve() *Curve {
	return &Curve{
		delta: DefaultDelta,
		eval:  &BSplineCurveEval{},
	}
}

// NewRationalCurve returns an empty rational (NURBS) curve. Control points
// carry weights, which default to 1 until [Curve.SetWeights] is called.
func NewRationalCurve() *Curve {
	return &Curve{
		rational: true,
		delta:    DefaultDelta,
		eval:     &NURBSCurveEval{},
	}
}

// invalidate drops every cached result. Each mutator calls it.
func (c *Curve) invalidate() {
	c.evalpts = nil
	c.bbox = nil
}

// missing lists the unset preconditions for evaluation.
func (c *Curve) missing() []string {
	var m []string
	if c.degree == 0 {
		m = append(m, "degree")
	}
	if len(c.ctrlpts) == 0 {
		m = append(m, "control points")
	}
	if len(c.knots) == 0 {
		m = append(m, "knot vector")
	}
	return m
}

func (c *Curve) ready(op string) error {
	if m := c.missing(); len(m) > 0 {
		return &StateError{Op: op, Missing: m}
	}
	return nil
}

// Rational reports whether the curve carries weights.
func (c *Curve) Rational() bool { return c.rational }

// Degree returns the curve degree.
func (c *Curve) Degree() int { return c.degree }

// SetDegree sets the curve degree. An existing knot vector that is no longer
// consistent with the new degree is dropped and must be resupplied.
func (c *Curve) SetDegree(degree int) error {
	if degree <= 0 {
		return fmt.Errorf("%w: degree must be positive, got %d", ErrInvalidArgument, degree)
	}
	if len(c.ctrlpts) != 0 && len(c.ctrlpts) < degree+1 {
		return fmt.Errorf("%w: a degree %d curve needs at least %d control points, have %d",
			ErrInvalidArgument, degree, degree+1, len(c.ctrlpts))
	}
	c.degree = degree
	if c.knots != nil && !c.knots.Check(c.degree, len(c.ctrlpts)) {
		c.knots = nil
	}
	c.invalidate()
	return nil
}

// Dimension returns the spatial dimension of the control points, excluding
// any weight component.
func (c *Curve) Dimension() int {
	if len(c.ctrlpts) == 0 {
		return 0
	}
	return len(c.ctrlpts[0])
}

// CtrlPts returns a copy of the Cartesian control points.
func (c *Curve) CtrlPts() [][]float64 { return clonePoints(c.ctrlpts) }

// SetCtrlPts replaces the control points. The degree must be set first, and
// at least degree+1 points are required. For rational curves the weights are
// reset to 1 unless the new point count matches the old. An existing knot
// vector that no longer fits the new point count is dropped.
func (c *Curve) SetCtrlPts(pts [][]float64) error {
	if c.degree == 0 {
		return &StateError{Op: "SetCtrlPts", Missing: []string{"degree"}}
	}
	if _, err := checkPoints(pts); err != nil {
		return err
	}
	if len(pts) < c.degree+1 {
		return fmt.Errorf("%w: a degree %d curve needs at least %d control points, got %d",
			ErrInvalidArgument, c.degree, c.degree+1, len(pts))
	}
	c.ctrlpts = clonePoints(pts)
	if c.rational && len(c.weights) != len(pts) {
		c.weights = uniformWeights(len(pts))
	}
	if c.knots != nil && !c.knots.Check(c.degree, len(c.ctrlpts)) {
		c.knots = nil
	}
	c.invalidate()
	return nil
}

// Weights returns a copy of the control point weights, or nil for a
// polynomial curve.
func (c *Curve) Weights() []float64 {
	if !c.rational {
		return nil
	}
	return append([]float64(nil), c.weights...)
}

// SetWeights replaces the weights of a rational curve. The control points
// must be set first and the counts must match.
func (c *Curve) SetWeights(ws []float64) error {
	if !c.rational {
		return fmt.Errorf("%w: cannot set weights on a non-rational curve", ErrInvalidArgument)
	}
	if len(c.ctrlpts) == 0 {
		return &StateError{Op: "SetWeights", Missing: []string{"control points"}}
	}
	if len(ws) != len(c.ctrlpts) {
		return fmt.Errorf("%w: %d weights for %d control points", ErrInvalidArgument, len(ws), len(c.ctrlpts))
	}
	c.weights = append([]float64(nil), ws...)
	c.invalidate()
	return nil
}

// KnotVector returns the knot vector. Callers must not modify it; replace it
// wholesale with [Curve.SetKnotVector].
func (c *Curve) KnotVector() KnotVector { return c.knots }

// SetKnotVector replaces the knot vector. Degree and control points must be
// set first; the vector is validated against both.
func (c *Curve) SetKnotVector(kv KnotVector) error {
	var m []string
	if c.degree == 0 {
		m = append(m, "degree")
	}
	if len(c.ctrlpts) == 0 {
		m = append(m, "control points")
	}
	if len(m) > 0 {
		return &StateError{Op: "SetKnotVector", Missing: m}
	}
	if !kv.Check(c.degree, len(c.ctrlpts)) {
		return fmt.Errorf("%w: knot vector of length %d is not valid for degree %d with %d control points",
			ErrInvalidArgument, len(kv), c.degree, len(c.ctrlpts))
	}
	c.knots = kv.Clone()
	c.invalidate()
	return nil
}

// Delta returns the evaluation step size.
func (c *Curve) Delta() float64 { return c.delta }

// SetDelta sets the evaluation step size, 0 < delta < 1.
func (c *Curve) SetDelta(delta float64) error {
	if err := checkDelta(delta); err != nil {
		return err
	}
	c.delta = delta
	c.invalidate()
	return nil
}

// SampleSize returns the number of points [Curve.Evaluate] produces.
func (c *Curve) SampleSize() int { return sampleCount(c.delta) }

// SetSampleSize sets the evaluation density as a point count, n >= 2.
func (c *Curve) SetSampleSize(n int) error {
	delta, err := sampleDelta(n)
	if err != nil {
		return err
	}
	c.delta = delta
	c.invalidate()
	return nil
}

// Evaluator returns the installed evaluator.
func (c *Curve) Evaluator() CurveEvaluator { return c.eval }

// SetEvaluator replaces the evaluator. The evaluator must match the curve's
// rational flag: rational curves need an evaluator that consumes homogeneous
// control points.
func (c *Curve) SetEvaluator(ev CurveEvaluator) {
	c.eval = ev
	c.invalidate()
}

// Data returns an evaluation-ready snapshot of the curve: for rational
// curves the control points are homogeneous. The snapshot shares nothing
// with the curve and is the boundary format consumed by exchange and
// extraction utilities.
func (c *Curve) Data() *CurveData {
	cpts := clonePoints(c.ctrlpts)
	if c.rational {
		cpts, _ = Homogenize(cpts, c.weights)
	}
	return &CurveData{
		Degree:   c.degree,
		Knots:    c.knots.Clone(),
		CtrlPts:  cpts,
		Rational: c.rational,
	}
}

// Evaluate computes the curve points over the whole domain at the configured
// sampling density and caches them.
func (c *Curve) Evaluate() error {
	if err := c.ready("Evaluate"); err != nil {
		return err
	}
	start, end := c.knots.Domain(c.degree)
	pts, err := c.eval.Evaluate(c.Data(), Linspace(start, end, c.SampleSize(), -1))
	if err != nil {
		return err
	}
	c.evalpts = pts
	return nil
}

// EvalPts returns the cached evaluated points, evaluating first if the cache
// is empty or was invalidated.
func (c *Curve) EvalPts() ([][]float64, error) {
	if c.evalpts == nil {
		if err := c.Evaluate(); err != nil {
			return nil, err
		}
	}
	return c.evalpts, nil
}

// EvaluateAt computes the curve point at a single parameter.
func (c *Curve) EvaluateAt(u float64) ([]float64, error) {
	pts, err := c.EvaluateList([]float64{u})
	if err != nil {
		return nil, err
	}
	return pts[0], nil
}

// EvaluateList computes the curve points at the given parameters, bypassing
// the cache.
func (c *Curve) EvaluateList(us []float64) ([][]float64, error) {
	if err := c.ready("EvaluateList"); err != nil {
		return nil, err
	}
	return c.eval.Evaluate(c.Data(), us)
}

// Derivatives computes the curve point and its derivatives up to the given
// order at u. Row k is the k-th derivative.
func (c *Curve) Derivatives(u float64, order int) ([][]float64, error) {
	if err := c.ready("Derivatives"); err != nil {
		return nil, err
	}
	return c.eval.Derivatives(c.Data(), u, order)
}

// BBox returns the bounding box of the control points. It is cached until
// the control points change.
func (c *Curve) BBox() (BBox, error) {
	if len(c.ctrlpts) == 0 {
		return BBox{}, &StateError{Op: "BBox", Missing: []string{"control points"}}
	}
	if c.bbox == nil {
		bb := bboxOf(c.ctrlpts)
		c.bbox = &bb
	}
	return *c.bbox, nil
}

// Reverse returns a new curve traversing the same shape in the opposite
// parametric direction. Control points and weights are copied, never
// aliased.
func (c *Curve) Reverse() (*Curve, error) {
	if err := c.ready("Reverse"); err != nil {
		return nil, err
	}

	out := &Curve{
		rational: c.rational,
		degree:   c.degree,
		delta:    c.delta,
		eval:     c.eval,
	}
	out.ctrlpts = make([][]float64, len(c.ctrlpts))
	for i, pt := range c.ctrlpts {
		out.ctrlpts[len(c.ctrlpts)-1-i] = append([]float64(nil), pt...)
	}
	if c.rational {
		out.weights = make([]float64, len(c.weights))
		for i, w := range c.weights {
			out.weights[len(c.weights)-1-i] = w
		}
	}

	// Mirror the knot vector: successive spans appear in reverse order,
	// shifted to keep the original domain.
	kv := make(KnotVector, len(c.knots))
	kv[0] = c.knots[0]
	last := len(c.knots) - 1
	for i := 1; i < len(c.knots); i++ {
		kv[i] = kv[i-1] + (c.knots[last-i+1] - c.knots[last-i])
	}
	out.knots = kv
	return out, nil
}
