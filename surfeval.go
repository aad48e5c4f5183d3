package nurbs

import "fmt"

// BSplineSurfaceEval evaluates polynomial B-spline surfaces: points with the
// tensor-product form of A3.5, derivatives with A3.6.
type BSplineSurfaceEval struct {
	Spans SpanMode
}

var _ SurfaceEvaluator = (*BSplineSurfaceEval)(nil)

func (ev *BSplineSurfaceEval) Evaluate(data *SurfaceData, us, vs []float64) ([][]float64, error) {
	if err := checkSurfaceData(data); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsU, data.DegreeU, us...); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsV, data.DegreeV, vs...); err != nil {
		return nil, err
	}

	degU, degV := data.DegreeU, data.DegreeV
	spansU := data.KnotsU.Spans(degU, data.SizeU, us, ev.Spans)
	spansV := data.KnotsV.Spans(degV, data.SizeV, vs, ev.Spans)
	basisU := BasisFunctionsAt(degU, data.KnotsU, spansU, us)
	basisV := BasisFunctionsAt(degV, data.KnotsV, spansV, vs)

	dim := len(data.CtrlPts[0])
	pts := make([][]float64, 0, len(us)*len(vs))
	temp := make([]float64, dim)
	for iu := range us {
		uind := spansU[iu] - degU
		for iv := range vs {
			vind := spansV[iv] - degV
			pt := make([]float64, dim)
			// Accumulate u-isolines, then blend them with the v basis
			// weights; never materialize the dense tensor.
			for l := 0; l <= degV; l++ {
				clear(temp)
				for k := 0; k <= degU; k++ {
					cpt := data.At(uind+k, vind+l)
					b := basisU[iu][k]
					for c := range temp {
						temp[c] += b * cpt[c]
					}
				}
				b := basisV[iv][l]
				for c := range pt {
					pt[c] += b * temp[c]
				}
			}
			pts = append(pts, pt)
		}
	}
	return pts, nil
}

func (ev *BSplineSurfaceEval) Derivatives(data *SurfaceData, u, v float64, order int) ([][][]float64, error) {
	if err := checkSurfaceData(data); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsU, data.DegreeU, u); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsV, data.DegreeV, v); err != nil {
		return nil, err
	}

	degU, degV := data.DegreeU, data.DegreeV
	dim := len(data.CtrlPts[0])
	du := min(degU, order)
	dv := min(degV, order)

	skl := zeros3(order+1, order+1, dim)

	spanU := data.KnotsU.Span(degU, data.SizeU, u, ev.Spans)
	spanV := data.KnotsV.Span(degV, data.SizeV, v, ev.Spans)
	dersU := BasisFunctionDers(degU, data.KnotsU, spanU, u, du)
	dersV := BasisFunctionDers(degV, data.KnotsV, spanV, v, dv)

	// A3.6: differentiate the u-isolines first, then blend with the v basis
	// derivatives.
	temp := zeros2(degV+1, dim)
	for k := 0; k <= du; k++ {
		for s := 0; s <= degV; s++ {
			clear(temp[s])
			for r := 0; r <= degU; r++ {
				cpt := data.At(spanU-degU+r, spanV-degV+s)
				d := dersU[k][r]
				for c := range temp[s] {
					temp[s][c] += d * cpt[c]
				}
			}
		}
		dd := min(order-k, dv)
		for l := 0; l <= dd; l++ {
			for s := 0; s <= degV; s++ {
				d := dersV[l][s]
				for c := range skl[k][l] {
					skl[k][l][c] += d * temp[s][c]
				}
			}
		}
	}
	return skl, nil
}

// BSplineSurfaceEval2 evaluates like [BSplineSurfaceEval] but derives through
// surface derivative control points (algorithms A3.7 and A3.8).
type BSplineSurfaceEval2 struct {
	Spans SpanMode
}

var _ SurfaceEvaluator = (*BSplineSurfaceEval2)(nil)

func (ev *BSplineSurfaceEval2) Evaluate(data *SurfaceData, us, vs []float64) ([][]float64, error) {
	return (&BSplineSurfaceEval{Spans: ev.Spans}).Evaluate(data, us, vs)
}

func (ev *BSplineSurfaceEval2) Derivatives(data *SurfaceData, u, v float64, order int) ([][][]float64, error) {
	if err := checkSurfaceData(data); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsU, data.DegreeU, u); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsV, data.DegreeV, v); err != nil {
		return nil, err
	}

	degU, degV := data.DegreeU, data.DegreeV
	dim := len(data.CtrlPts[0])
	du := min(degU, order)
	dv := min(degV, order)

	skl := zeros3(order+1, order+1, dim)

	spanU := data.KnotsU.Span(degU, data.SizeU, u, ev.Spans)
	spanV := data.KnotsV.Span(degV, data.SizeV, v, ev.Spans)
	bfunsU := AllBasisFunctions(degU, data.KnotsU, spanU, u)
	bfunsV := AllBasisFunctions(degV, data.KnotsV, spanV, v)
	pkl := SurfaceDerivCpts(data, order, spanU-degU, spanU, spanV-degV, spanV)

	// A3.8: the (k,l) derivative is a (degU-k, degV-l) surface over the
	// derivative control net.
	for k := 0; k <= du; k++ {
		dd := min(order-k, dv)
		for l := 0; l <= dd; l++ {
			for i := 0; i <= degV-l; i++ {
				tmp := make([]float64, dim)
				for j := 0; j <= degU-k; j++ {
					b := bfunsU[j][degU-k]
					for c := range tmp {
						tmp[c] += b * pkl[k][l][j][i][c]
					}
				}
				b := bfunsV[i][degV-l]
				for c := range skl[k][l] {
					skl[k][l][c] += b * tmp[c]
				}
			}
		}
	}
	return skl, nil
}

// SurfaceDerivCpts computes the control nets of the derivative surfaces up to
// order (algorithm A3.7), restricted to the window [rs0, rs1]×[ss0, ss1] of
// the control grid. The result is indexed [k][l][i][j]: the control point
// (i, j) of the surface differentiated k times in u and l times in v. Entries
// outside the triangular validity region (i > r-k or j > s-l) are nil.
func SurfaceDerivCpts(data *SurfaceData, order, rs0, rs1, ss0, ss1 int) [][][][][]float64 {
	degU, degV := data.DegreeU, data.DegreeV
	du := min(degU, order)
	dv := min(degV, order)
	r := rs1 - rs0
	s := ss1 - ss0

	pkl := make([][][][][]float64, du+1)
	for k := range pkl {
		pkl[k] = make([][][][]float64, dv+1)
		for l := range pkl[k] {
			pkl[k][l] = make([][][]float64, r+1)
			for i := range pkl[k][l] {
				pkl[k][l][i] = make([][]float64, s+1)
			}
		}
	}

	// u-derivative control points of every u-row.
	strip := make([][]float64, data.SizeU)
	for j := ss0; j <= ss1; j++ {
		for i := range strip {
			strip[i] = data.At(i, j)
		}
		pku := CurveDerivCpts(degU, data.KnotsU, strip, rs0, rs1, du)
		for k := 0; k <= du; k++ {
			for i := 0; i <= r-k; i++ {
				pkl[k][0][i][j-ss0] = pku[k][i]
			}
		}
	}

	// v-derivative control points of every u-differentiated v-row.
	for k := 0; k <= du; k++ {
		for i := 0; i <= r-k; i++ {
			dd := min(order-k, dv)
			if dd == 0 {
				continue
			}
			pkuv := CurveDerivCpts(degV, data.KnotsV[ss0:], pkl[k][0][i], 0, s, dd)
			for l := 1; l <= dd; l++ {
				for j := 0; j <= s-l; j++ {
					pkl[k][l][i][j] = pkuv[l][j]
				}
			}
		}
	}
	return pkl
}

// NURBSSurfaceEval evaluates rational surfaces: homogeneous A3.5 followed by
// a perspective divide (A4.3); derivatives apply the double-sum binomial
// correction of A4.4.
type NURBSSurfaceEval struct {
	Spans SpanMode
}

var _ SurfaceEvaluator = (*NURBSSurfaceEval)(nil)

func (ev *NURBSSurfaceEval) Evaluate(data *SurfaceData, us, vs []float64) ([][]float64, error) {
	wpts, err := (&BSplineSurfaceEval{Spans: ev.Spans}).Evaluate(data, us, vs)
	if err != nil {
		return nil, err
	}
	return Dehomogenize(wpts)
}

func (ev *NURBSSurfaceEval) Derivatives(data *SurfaceData, u, v float64, order int) ([][][]float64, error) {
	sklw, err := (&BSplineSurfaceEval{Spans: ev.Spans}).Derivatives(data, u, v, order)
	if err != nil {
		return nil, err
	}

	dim := len(data.CtrlPts[0]) - 1
	w0 := sklw[0][0][dim]
	if w0 == 0 {
		return nil, fmt.Errorf("%w: rational weight evaluated to zero at (u, v)=(%g, %g)", ErrDivideByZero, u, v)
	}

	skl := zeros3(order+1, order+1, dim)
	for k := 0; k <= order; k++ {
		for l := 0; l <= order-k; l++ {
			pt := append([]float64(nil), sklw[k][l][:dim]...)
			for j := 1; j <= l; j++ {
				bin := Binomial(l, j) * sklw[0][j][dim]
				for c := range pt {
					pt[c] -= bin * skl[k][l-j][c]
				}
			}
			for i := 1; i <= k; i++ {
				binK := Binomial(k, i)
				wi0 := sklw[i][0][dim]
				for c := range pt {
					pt[c] -= binK * wi0 * skl[k-i][l][c]
				}
				for j := 1; j <= l; j++ {
					bin := binK * Binomial(l, j) * sklw[i][j][dim]
					for c := range pt {
						pt[c] -= bin * skl[k-i][l-j][c]
					}
				}
			}
			for c := range pt {
				pt[c] /= w0
			}
			skl[k][l] = pt
		}
	}
	return skl, nil
}

// zeros3 allocates an a×b matrix of zero vectors of the given dimension.
func zeros3(a, b, dim int) [][][]float64 {
	out := make([][][]float64, a)
	for i := range out {
		out[i] = zeros2(b, dim)
	}
	return out
}
