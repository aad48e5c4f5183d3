package nurbs

import (
	"fmt"
)

// insertedKnotVector splices u into kv r times after the given span.
func insertedKnotVector(kv KnotVector, u float64, span, r int) KnotVector {
	out := make(KnotVector, 0, len(kv)+r)
	out = append(out, kv[:span+1]...)
	for range r {
		out = append(out, u)
	}
	out = append(out, kv[span+1:]...)
	return out
}

// insertKnotCpts computes the control points of a curve after inserting u r
// times. s is the current multiplicity of u in kv and span its knot span.
// The input points may be homogeneous; they are not modified.
func insertKnotCpts(degree int, kv KnotVector, cpts [][]float64, u float64, r, s, span int) [][]float64 {
	np := len(cpts)
	out := make([][]float64, np+r)

	for i := range span - degree + 1 {
		out[i] = append([]float64(nil), cpts[i]...)
	}
	for i := span - s; i < np; i++ {
		out[i+r] = append([]float64(nil), cpts[i]...)
	}

	tmp := make([][]float64, degree-s+1)
	for i := range tmp {
		tmp[i] = append([]float64(nil), cpts[span-degree+i]...)
	}

	var l int
	for j := 1; j <= r; j++ {
		l = span - degree + j
		for i := 0; i <= degree-j-s; i++ {
			alpha := (u - kv[l+i]) / (kv[i+span+1] - kv[l+i])
			for d := range tmp[i] {
				tmp[i][d] = alpha*tmp[i+1][d] + (1.0-alpha)*tmp[i][d]
			}
		}
		out[l] = append([]float64(nil), tmp[0]...)
		out[span+r-j-s] = append([]float64(nil), tmp[degree-j-s]...)
	}
	for i := l + 1; i < span-s; i++ {
		out[i] = append([]float64(nil), tmp[i-l]...)
	}
	return out
}

// checkInsertion validates an insertion request against the knot vector.
// It returns the span and current multiplicity of u.
func checkInsertion(degree int, kv KnotVector, nctrlpts int, u float64, r int) (span, mult int, err error) {
	if r <= 0 {
		return 0, 0, fmt.Errorf("%w: insertion count must be positive, got %d", ErrInvalidArgument, r)
	}
	start, end := kv.Domain(degree)
	if u < start-domainTolerance || u > end+domainTolerance {
		return 0, 0, fmt.Errorf("%w: knot %v outside domain [%v, %v]", ErrOutOfDomain, u, start, end)
	}
	mult = kv.Multiplicity(u)
	if r+mult > degree {
		return 0, 0, fmt.Errorf("%w: inserting %v %d more times would exceed multiplicity %d for degree %d",
			ErrInvalidArgument, u, r, degree, degree)
	}
	span = kv.Span(degree, nctrlpts, u, SpanLinear)
	return span, mult, nil
}

// InsertKnot inserts the knot u into the curve r times. The curve shape is
// unchanged; the control point count grows by r. The total multiplicity of
// u after insertion must not exceed the degree.
func (c *Curve) InsertKnot(u float64, r int) error {
	if err := c.ready("InsertKnot"); err != nil {
		return err
	}
	span, mult, err := checkInsertion(c.degree, c.knots, len(c.ctrlpts), u, r)
	if err != nil {
		return err
	}

	cpts := c.ctrlpts
	if c.rational {
		cpts, _ = Homogenize(cpts, c.weights)
	}
	cpts = insertKnotCpts(c.degree, c.knots, cpts, u, r, mult, span)
	if c.rational {
		cart, err := Dehomogenize(cpts)
		if err != nil {
			return err
		}
		c.ctrlpts = cart
		c.weights = WeightsOf(cpts)
	} else {
		c.ctrlpts = cpts
	}
	c.knots = insertedKnotVector(c.knots, u, span, r)
	c.invalidate()
	return nil
}

// InsertKnotU inserts the knot u into the surface's u direction r times.
func (s *Surface) InsertKnotU(u float64, r int) error {
	if err := s.ready("InsertKnotU"); err != nil {
		return err
	}
	span, mult, err := checkInsertion(s.degreeU, s.knotsU, s.sizeU, u, r)
	if err != nil {
		return err
	}

	cpts := s.ctrlpts
	if s.rational {
		cpts, _ = Homogenize(cpts, s.weights)
	}
	nu := s.sizeU + r
	out := make([][]float64, nu*s.sizeV)
	strip := make([][]float64, s.sizeU)
	for v := range s.sizeV {
		for i := range s.sizeU {
			strip[i] = cpts[i*s.sizeV+v]
		}
		ins := insertKnotCpts(s.degreeU, s.knotsU, strip, u, r, mult, span)
		for i := range nu {
			out[i*s.sizeV+v] = ins[i]
		}
	}
	if err := s.replaceCtrlPts(out, nu, s.sizeV); err != nil {
		return err
	}
	s.knotsU = insertedKnotVector(s.knotsU, u, span, r)
	s.invalidate()
	return nil
}

// InsertKnotV inserts the knot v into the surface's v direction r times.
func (s *Surface) InsertKnotV(v float64, r int) error {
	if err := s.ready("InsertKnotV"); err != nil {
		return err
	}
	span, mult, err := checkInsertion(s.degreeV, s.knotsV, s.sizeV, v, r)
	if err != nil {
		return err
	}

	cpts := s.ctrlpts
	if s.rational {
		cpts, _ = Homogenize(cpts, s.weights)
	}
	nv := s.sizeV + r
	out := make([][]float64, s.sizeU*nv)
	for u := range s.sizeU {
		strip := cpts[u*s.sizeV : (u+1)*s.sizeV]
		ins := insertKnotCpts(s.degreeV, s.knotsV, strip, v, r, mult, span)
		copy(out[u*nv:(u+1)*nv], ins)
	}
	if err := s.replaceCtrlPts(out, s.sizeU, nv); err != nil {
		return err
	}
	s.knotsV = insertedKnotVector(s.knotsV, v, span, r)
	s.invalidate()
	return nil
}

// replaceCtrlPts installs refined control points, splitting homogeneous
// coordinates back into Cartesian points and weights when rational.
func (s *Surface) replaceCtrlPts(cpts [][]float64, sizeU, sizeV int) error {
	if s.rational {
		cart, err := Dehomogenize(cpts)
		if err != nil {
			return err
		}
		s.ctrlpts = cart
		s.weights = WeightsOf(cpts)
	} else {
		s.ctrlpts = cpts
	}
	s.sizeU, s.sizeV = sizeU, sizeV
	return nil
}

// InsertKnotU inserts the knot u into the volume's u direction r times.
func (v *Volume) InsertKnotU(u float64, r int) error {
	if err := v.ready("InsertKnotU"); err != nil {
		return err
	}
	span, mult, err := checkInsertion(v.degreeU, v.knotsU, v.sizeU, u, r)
	if err != nil {
		return err
	}

	cpts := v.homogeneous()
	nu := v.sizeU + r
	out := make([][]float64, nu*v.sizeV*v.sizeW)
	strip := make([][]float64, v.sizeU)
	for vi := range v.sizeV {
		for wi := range v.sizeW {
			for i := range v.sizeU {
				strip[i] = cpts[(i*v.sizeV+vi)*v.sizeW+wi]
			}
			ins := insertKnotCpts(v.degreeU, v.knotsU, strip, u, r, mult, span)
			for i := range nu {
				out[(i*v.sizeV+vi)*v.sizeW+wi] = ins[i]
			}
		}
	}
	if err := v.replaceCtrlPts(out, nu, v.sizeV, v.sizeW); err != nil {
		return err
	}
	v.knotsU = insertedKnotVector(v.knotsU, u, span, r)
	v.invalidate()
	return nil
}

// InsertKnotV inserts the knot vv into the volume's v direction r times.
func (v *Volume) InsertKnotV(vv float64, r int) error {
	if err := v.ready("InsertKnotV"); err != nil {
		return err
	}
	span, mult, err := checkInsertion(v.degreeV, v.knotsV, v.sizeV, vv, r)
	if err != nil {
		return err
	}

	cpts := v.homogeneous()
	nv := v.sizeV + r
	out := make([][]float64, v.sizeU*nv*v.sizeW)
	strip := make([][]float64, v.sizeV)
	for ui := range v.sizeU {
		for wi := range v.sizeW {
			for i := range v.sizeV {
				strip[i] = cpts[(ui*v.sizeV+i)*v.sizeW+wi]
			}
			ins := insertKnotCpts(v.degreeV, v.knotsV, strip, vv, r, mult, span)
			for i := range nv {
				out[(ui*nv+i)*v.sizeW+wi] = ins[i]
			}
		}
	}
	if err := v.replaceCtrlPts(out, v.sizeU, nv, v.sizeW); err != nil {
		return err
	}
	v.knotsV = insertedKnotVector(v.knotsV, vv, span, r)
	v.invalidate()
	return nil
}

// InsertKnotW inserts the knot w into the volume's w direction r times.
func (v *Volume) InsertKnotW(w float64, r int) error {
	if err := v.ready("InsertKnotW"); err != nil {
		return err
	}
	span, mult, err := checkInsertion(v.degreeW, v.knotsW, v.sizeW, w, r)
	if err != nil {
		return err
	}

	cpts := v.homogeneous()
	nw := v.sizeW + r
	out := make([][]float64, v.sizeU*v.sizeV*nw)
	for ui := range v.sizeU {
		for vi := range v.sizeV {
			strip := cpts[(ui*v.sizeV+vi)*v.sizeW : (ui*v.sizeV+vi+1)*v.sizeW]
			ins := insertKnotCpts(v.degreeW, v.knotsW, strip, w, r, mult, span)
			copy(out[(ui*v.sizeV+vi)*nw:(ui*v.sizeV+vi+1)*nw], ins)
		}
	}
	if err := v.replaceCtrlPts(out, v.sizeU, v.sizeV, nw); err != nil {
		return err
	}
	v.knotsW = insertedKnotVector(v.knotsW, w, span, r)
	v.invalidate()
	return nil
}

func (v *Volume) homogeneous() [][]float64 {
	if !v.rational {
		return v.ctrlpts
	}
	cpts, _ := Homogenize(v.ctrlpts, v.weights)
	return cpts
}

func (v *Volume) replaceCtrlPts(cpts [][]float64, sizeU, sizeV, sizeW int) error {
	if v.rational {
		cart, err := Dehomogenize(cpts)
		if err != nil {
			return err
		}
		v.ctrlpts = cart
		v.weights = WeightsOf(cpts)
	} else {
		v.ctrlpts = cpts
	}
	v.sizeU, v.sizeV, v.sizeW = sizeU, sizeV, sizeW
	return nil
}
