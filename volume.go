package nurbs

import (
	"fmt"
)

// Volume is a B-spline or NURBS volume parametrized over three directions,
// u, v, and w. Control points form a SizeU×SizeV×SizeW lattice, stored flat
// with w varying fastest.
type Volume struct {
	rational                  bool
	degreeU, degreeV, degreeW int
	knotsU, knotsV, knotsW    KnotVector
	sizeU, sizeV, sizeW       int
	ctrlpts                   [][]float64
	weights                   []float64
	deltaU, deltaV, deltaW    float64
	eval                      VolumeEvaluator

	evalpts [][]float64
	bbox    *BBox
}

// NewVolume returns an empty polynomial B-spline volume.
func NewVolume() *Volume {
	return &Volume{
		deltaU: DefaultDelta,
		deltaV: DefaultDelta,
		deltaW: DefaultDelta,
		eval:   &BSplineVolumeEval{},
	}
}

// NewRationalVolume returns an empty rational (NURBS) volume.
func NewRationalVolume() *Volume {
	return &Volume{
		rational: true,
		deltaU:   DefaultDelta,
		deltaV:   DefaultDelta,
		deltaW:   DefaultDelta,
		eval:     &NURBSVolumeEval{},
	}
}

func (v *Volume) invalidate() {
	v.evalpts = nil
	v.bbox = nil
}

func (v *Volume) missing() []string {
	var m []string
	if v.degreeU == 0 {
		m = append(m, "degree (u)")
	}
	if v.degreeV == 0 {
		m = append(m, "degree (v)")
	}
	if v.degreeW == 0 {
		m = append(m, "degree (w)")
	}
	if len(v.ctrlpts) == 0 {
		m = append(m, "control points")
	}
	if len(v.knotsU) == 0 {
		m = append(m, "knot vector (u)")
	}
	if len(v.knotsV) == 0 {
		m = append(m, "knot vector (v)")
	}
	if len(v.knotsW) == 0 {
		m = append(m, "knot vector (w)")
	}
	return m
}

func (v *Volume) ready(op string) error {
	if m := v.missing(); len(m) > 0 {
		return &StateError{Op: op, Missing: m}
	}
	return nil
}

// Rational reports whether the volume carries weights.
func (v *Volume) Rational() bool { return v.rational }

// DegreeU returns the degree in the u direction.
func (v *Volume) DegreeU() int { return v.degreeU }

// DegreeV returns the degree in the v direction.
func (v *Volume) DegreeV() int { return v.degreeV }

// DegreeW returns the degree in the w direction.
func (v *Volume) DegreeW() int { return v.degreeW }

func (v *Volume) setDegree(dst *int, kv *KnotVector, size int, degree int, dir string) error {
	if degree <= 0 {
		return fmt.Errorf("%w: degree must be positive, got %d", ErrInvalidArgument, degree)
	}
	if size != 0 && size < degree+1 {
		return fmt.Errorf("%w: degree %d in %s needs at least %d control points, have %d",
			ErrInvalidArgument, degree, dir, degree+1, size)
	}
	*dst = degree
	if *kv != nil && !kv.Check(degree, size) {
		*kv = nil
	}
	v.invalidate()
	return nil
}

// SetDegreeU sets the degree in the u direction.
func (v *Volume) SetDegreeU(degree int) error {
	return v.setDegree(&v.degreeU, &v.knotsU, v.sizeU, degree, "u")
}

// SetDegreeV sets the degree in the v direction.
func (v *Volume) SetDegreeV(degree int) error {
	return v.setDegree(&v.degreeV, &v.knotsV, v.sizeV, degree, "v")
}

// SetDegreeW sets the degree in the w direction.
func (v *Volume) SetDegreeW(degree int) error {
	return v.setDegree(&v.degreeW, &v.knotsW, v.sizeW, degree, "w")
}

// SizeU returns the number of control points in the u direction.
func (v *Volume) SizeU() int { return v.sizeU }

// SizeV returns the number of control points in the v direction.
func (v *Volume) SizeV() int { return v.sizeV }

// SizeW returns the number of control points in the w direction.
func (v *Volume) SizeW() int { return v.sizeW }

// Dimension returns the spatial dimension of the control points.
func (v *Volume) Dimension() int {
	if len(v.ctrlpts) == 0 {
		return 0
	}
	return len(v.ctrlpts[0])
}

// CtrlPts returns a copy of the Cartesian control points, flat with w
// varying fastest.
func (v *Volume) CtrlPts() [][]float64 { return clonePoints(v.ctrlpts) }

// CtrlPts3D returns a copy of the control points as a SizeU×SizeV×SizeW
// lattice.
func (v *Volume) CtrlPts3D() [][][][]float64 {
	out := make([][][][]float64, v.sizeU)
	for u := range out {
		out[u] = make([][][]float64, v.sizeV)
		for vv := range out[u] {
			base := (u*v.sizeV + vv) * v.sizeW
			out[u][vv] = clonePoints(v.ctrlpts[base : base+v.sizeW])
		}
	}
	return out
}

// SetCtrlPts replaces the control points with a flat list describing a
// sizeU×sizeV×sizeW lattice, w varying fastest. All three degrees must be
// set first; each direction needs at least degree+1 points.
func (v *Volume) SetCtrlPts(pts [][]float64, sizeU, sizeV, sizeW int) error {
	var m []string
	if v.degreeU == 0 {
		m = append(m, "degree (u)")
	}
	if v.degreeV == 0 {
		m = append(m, "degree (v)")
	}
	if v.degreeW == 0 {
		m = append(m, "degree (w)")
	}
	if len(m) > 0 {
		return &StateError{Op: "SetCtrlPts", Missing: m}
	}
	if sizeU < v.degreeU+1 || sizeV < v.degreeV+1 || sizeW < v.degreeW+1 {
		return fmt.Errorf("%w: a degree (%d, %d, %d) volume needs at least a %dx%dx%d control lattice, got %dx%dx%d",
			ErrInvalidArgument, v.degreeU, v.degreeV, v.degreeW,
			v.degreeU+1, v.degreeV+1, v.degreeW+1, sizeU, sizeV, sizeW)
	}
	if len(pts) != sizeU*sizeV*sizeW {
		return fmt.Errorf("%w: %d control points for a %dx%dx%d lattice", ErrInvalidArgument, len(pts), sizeU, sizeV, sizeW)
	}
	if _, err := checkPoints(pts); err != nil {
		return err
	}
	v.ctrlpts = clonePoints(pts)
	v.sizeU, v.sizeV, v.sizeW = sizeU, sizeV, sizeW
	if v.rational && len(v.weights) != len(pts) {
		v.weights = uniformWeights(len(pts))
	}
	if v.knotsU != nil && !v.knotsU.Check(v.degreeU, v.sizeU) {
		v.knotsU = nil
	}
	if v.knotsV != nil && !v.knotsV.Check(v.degreeV, v.sizeV) {
		v.knotsV = nil
	}
	if v.knotsW != nil && !v.knotsW.Check(v.degreeW, v.sizeW) {
		v.knotsW = nil
	}
	v.invalidate()
	return nil
}

// Weights returns a copy of the control point weights, or nil for a
// polynomial volume.
func (v *Volume) Weights() []float64 {
	if !v.rational {
		return nil
	}
	return append([]float64(nil), v.weights...)
}

// SetWeights replaces the weights of a rational volume.
func (v *Volume) SetWeights(ws []float64) error {
	if !v.rational {
		return fmt.Errorf("%w: cannot set weights on a non-rational volume", ErrInvalidArgument)
	}
	if len(v.ctrlpts) == 0 {
		return &StateError{Op: "SetWeights", Missing: []string{"control points"}}
	}
	if len(ws) != len(v.ctrlpts) {
		return fmt.Errorf("%w: %d weights for %d control points", ErrInvalidArgument, len(ws), len(v.ctrlpts))
	}
	v.weights = append([]float64(nil), ws...)
	v.invalidate()
	return nil
}

// KnotVectorU returns the u-direction knot vector.
func (v *Volume) KnotVectorU() KnotVector { return v.knotsU }

// KnotVectorV returns the v-direction knot vector.
func (v *Volume) KnotVectorV() KnotVector { return v.knotsV }

// KnotVectorW returns the w-direction knot vector.
func (v *Volume) KnotVectorW() KnotVector { return v.knotsW }

func (v *Volume) setKnotVector(op string, dst *KnotVector, degree, size int, degreeName string, kv KnotVector) error {
	if degree == 0 || len(v.ctrlpts) == 0 {
		return &StateError{Op: op, Missing: missingFor(degree, len(v.ctrlpts), degreeName)}
	}
	if !kv.Check(degree, size) {
		return fmt.Errorf("%w: knot vector of length %d is not valid for degree %d with %d control points",
			ErrInvalidArgument, len(kv), degree, size)
	}
	*dst = kv.Clone()
	v.invalidate()
	return nil
}

// SetKnotVectorU replaces the u-direction knot vector.
func (v *Volume) SetKnotVectorU(kv KnotVector) error {
	return v.setKnotVector("SetKnotVectorU", &v.knotsU, v.degreeU, v.sizeU, "degree (u)", kv)
}

// SetKnotVectorV replaces the v-direction knot vector.
func (v *Volume) SetKnotVectorV(kv KnotVector) error {
	return v.setKnotVector("SetKnotVectorV", &v.knotsV, v.degreeV, v.sizeV, "degree (v)", kv)
}

// SetKnotVectorW replaces the w-direction knot vector.
func (v *Volume) SetKnotVectorW(kv KnotVector) error {
	return v.setKnotVector("SetKnotVectorW", &v.knotsW, v.degreeW, v.sizeW, "degree (w)", kv)
}

// DeltaU returns the evaluation step size in u.
func (v *Volume) DeltaU() float64 { return v.deltaU }

// DeltaV returns the evaluation step size in v.
func (v *Volume) DeltaV() float64 { return v.deltaV }

// DeltaW returns the evaluation step size in w.
func (v *Volume) DeltaW() float64 { return v.deltaW }

func (v *Volume) setDelta(dst *float64, delta float64) error {
	if err := checkDelta(delta); err != nil {
		return err
	}
	*dst = delta
	v.invalidate()
	return nil
}

// SetDeltaU sets the evaluation step size in u.
func (v *Volume) SetDeltaU(delta float64) error { return v.setDelta(&v.deltaU, delta) }

// SetDeltaV sets the evaluation step size in v.
func (v *Volume) SetDeltaV(delta float64) error { return v.setDelta(&v.deltaV, delta) }

// SetDeltaW sets the evaluation step size in w.
func (v *Volume) SetDeltaW(delta float64) error { return v.setDelta(&v.deltaW, delta) }

// SampleSizeU returns the number of evaluation points in the u direction.
func (v *Volume) SampleSizeU() int { return sampleCount(v.deltaU) }

// SampleSizeV returns the number of evaluation points in the v direction.
func (v *Volume) SampleSizeV() int { return sampleCount(v.deltaV) }

// SampleSizeW returns the number of evaluation points in the w direction.
func (v *Volume) SampleSizeW() int { return sampleCount(v.deltaW) }

func (v *Volume) setSampleSize(dst *float64, n int) error {
	delta, err := sampleDelta(n)
	if err != nil {
		return err
	}
	*dst = delta
	v.invalidate()
	return nil
}

// SetSampleSizeU sets the evaluation density in u as a point count.
func (v *Volume) SetSampleSizeU(n int) error { return v.setSampleSize(&v.deltaU, n) }

// SetSampleSizeV sets the evaluation density in v as a point count.
func (v *Volume) SetSampleSizeV(n int) error { return v.setSampleSize(&v.deltaV, n) }

// SetSampleSizeW sets the evaluation density in w as a point count.
func (v *Volume) SetSampleSizeW(n int) error { return v.setSampleSize(&v.deltaW, n) }

// Evaluator returns the installed evaluator.
func (v *Volume) Evaluator() VolumeEvaluator { return v.eval }

// SetEvaluator replaces the evaluator.
func (v *Volume) SetEvaluator(ev VolumeEvaluator) {
	v.eval = ev
	v.invalidate()
}

// Data returns an evaluation-ready snapshot of the volume; for rational
// volumes the control points are homogeneous.
func (v *Volume) Data() *VolumeData {
	cpts := clonePoints(v.ctrlpts)
	if v.rational {
		cpts, _ = Homogenize(cpts, v.weights)
	}
	return &VolumeData{
		DegreeU:  v.degreeU,
		DegreeV:  v.degreeV,
		DegreeW:  v.degreeW,
		KnotsU:   v.knotsU.Clone(),
		KnotsV:   v.knotsV.Clone(),
		KnotsW:   v.knotsW.Clone(),
		SizeU:    v.sizeU,
		SizeV:    v.sizeV,
		SizeW:    v.sizeW,
		CtrlPts:  cpts,
		Rational: v.rational,
	}
}

// Evaluate computes the volume points over the whole domain at the
// configured sampling density and caches them. The point list iterates u
// slowest and w fastest.
func (v *Volume) Evaluate() error {
	if err := v.ready("Evaluate"); err != nil {
		return err
	}
	startU, endU := v.knotsU.Domain(v.degreeU)
	startV, endV := v.knotsV.Domain(v.degreeV)
	startW, endW := v.knotsW.Domain(v.degreeW)
	pts, err := v.eval.Evaluate(v.Data(),
		Linspace(startU, endU, v.SampleSizeU(), -1),
		Linspace(startV, endV, v.SampleSizeV(), -1),
		Linspace(startW, endW, v.SampleSizeW(), -1))
	if err != nil {
		return err
	}
	v.evalpts = pts
	return nil
}

// EvalPts returns the cached evaluated points, evaluating first if needed.
func (v *Volume) EvalPts() ([][]float64, error) {
	if v.evalpts == nil {
		if err := v.Evaluate(); err != nil {
			return nil, err
		}
	}
	return v.evalpts, nil
}

// EvaluateAt computes the volume point at a single (u, v, w) parameter
// triple.
func (v *Volume) EvaluateAt(u, vv, w float64) ([]float64, error) {
	pts, err := v.EvaluateList([][3]float64{{u, vv, w}})
	if err != nil {
		return nil, err
	}
	return pts[0], nil
}

// EvaluateList computes the volume points at the given (u, v, w) triples,
// bypassing the cache.
func (v *Volume) EvaluateList(params [][3]float64) ([][]float64, error) {
	if err := v.ready("EvaluateList"); err != nil {
		return nil, err
	}
	data := v.Data()
	out := make([][]float64, len(params))
	for i, uvw := range params {
		pts, err := v.eval.Evaluate(data, []float64{uvw[0]}, []float64{uvw[1]}, []float64{uvw[2]})
		if err != nil {
			return nil, err
		}
		out[i] = pts[0]
	}
	return out, nil
}

// Derivatives computes the volume point and its derivatives up to the given
// total order at (u, v, w). Entry [k][l][m] is the derivative taken k times
// in u, l times in v, and m times in w.
func (v *Volume) Derivatives(u, vv, w float64, order int) ([][][][]float64, error) {
	if err := v.ready("Derivatives"); err != nil {
		return nil, err
	}
	return v.eval.Derivatives(v.Data(), u, vv, w, order)
}

// BBox returns the bounding box of the control points, cached until the
// control points change.
func (v *Volume) BBox() (BBox, error) {
	if len(v.ctrlpts) == 0 {
		return BBox{}, &StateError{Op: "BBox", Missing: []string{"control points"}}
	}
	if v.bbox == nil {
		bb := bboxOf(v.ctrlpts)
		v.bbox = &bb
	}
	return *v.bbox, nil
}
