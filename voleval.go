package nurbs

import "fmt"

// BSplineVolumeEval evaluates polynomial B-spline volumes with the trivariate
// tensor-product accumulation: u-isolines are blended into uv-isosurfaces,
// which are blended along w. Derivatives generalize A3.6 to three directions.
type BSplineVolumeEval struct {
	Spans SpanMode
}

var _ VolumeEvaluator = (*BSplineVolumeEval)(nil)

func (ev *BSplineVolumeEval) Evaluate(data *VolumeData, us, vs, ws []float64) ([][]float64, error) {
	if err := checkVolumeData(data); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsU, data.DegreeU, us...); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsV, data.DegreeV, vs...); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsW, data.DegreeW, ws...); err != nil {
		return nil, err
	}

	degU, degV, degW := data.DegreeU, data.DegreeV, data.DegreeW
	spansU := data.KnotsU.Spans(degU, data.SizeU, us, ev.Spans)
	spansV := data.KnotsV.Spans(degV, data.SizeV, vs, ev.Spans)
	spansW := data.KnotsW.Spans(degW, data.SizeW, ws, ev.Spans)
	basisU := BasisFunctionsAt(degU, data.KnotsU, spansU, us)
	basisV := BasisFunctionsAt(degV, data.KnotsV, spansV, vs)
	basisW := BasisFunctionsAt(degW, data.KnotsW, spansW, ws)

	dim := len(data.CtrlPts[0])
	pts := make([][]float64, 0, len(us)*len(vs)*len(ws))
	tempU := make([]float64, dim)
	tempUV := make([]float64, dim)
	for iu := range us {
		uind := spansU[iu] - degU
		for iv := range vs {
			vind := spansV[iv] - degV
			for iw := range ws {
				wind := spansW[iw] - degW
				pt := make([]float64, dim)
				for m := 0; m <= degW; m++ {
					clear(tempUV)
					for l := 0; l <= degV; l++ {
						clear(tempU)
						for k := 0; k <= degU; k++ {
							cpt := data.At(uind+k, vind+l, wind+m)
							b := basisU[iu][k]
							for c := range tempU {
								tempU[c] += b * cpt[c]
							}
						}
						b := basisV[iv][l]
						for c := range tempUV {
							tempUV[c] += b * tempU[c]
						}
					}
					b := basisW[iw][m]
					for c := range pt {
						pt[c] += b * tempUV[c]
					}
				}
				pts = append(pts, pt)
			}
		}
	}
	return pts, nil
}

func (ev *BSplineVolumeEval) Derivatives(data *VolumeData, u, v, w float64, order int) ([][][][]float64, error) {
	if err := checkVolumeData(data); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsU, data.DegreeU, u); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsV, data.DegreeV, v); err != nil {
		return nil, err
	}
	if err := checkDomain(data.KnotsW, data.DegreeW, w); err != nil {
		return nil, err
	}

	degU, degV, degW := data.DegreeU, data.DegreeV, data.DegreeW
	dim := len(data.CtrlPts[0])
	du := min(degU, order)
	dv := min(degV, order)
	dw := min(degW, order)

	skl := zeros4(order+1, order+1, order+1, dim)

	spanU := data.KnotsU.Span(degU, data.SizeU, u, ev.Spans)
	spanV := data.KnotsV.Span(degV, data.SizeV, v, ev.Spans)
	spanW := data.KnotsW.Span(degW, data.SizeW, w, ev.Spans)
	dersU := BasisFunctionDers(degU, data.KnotsU, spanU, u, du)
	dersV := BasisFunctionDers(degV, data.KnotsV, spanV, v, dv)
	dersW := BasisFunctionDers(degW, data.KnotsW, spanW, w, dw)

	tempU := zeros2(degV+1, dim)
	tempUV := zeros2(degW+1, dim)
	for k := 0; k <= du; k++ {
		ddv := min(order-k, dv)
		for l := 0; l <= ddv; l++ {
			// Differentiate the uv-isosurface control strip, then blend
			// along w.
			for t := 0; t <= degW; t++ {
				for s := 0; s <= degV; s++ {
					clear(tempU[s])
					for r := 0; r <= degU; r++ {
						cpt := data.At(spanU-degU+r, spanV-degV+s, spanW-degW+t)
						d := dersU[k][r]
						for c := range tempU[s] {
							tempU[s][c] += d * cpt[c]
						}
					}
				}
				clear(tempUV[t])
				for s := 0; s <= degV; s++ {
					d := dersV[l][s]
					for c := range tempUV[t] {
						tempUV[t][c] += d * tempU[s][c]
					}
				}
			}
			ddw := min(order-k-l, dw)
			for m := 0; m <= ddw; m++ {
				for t := 0; t <= degW; t++ {
					d := dersW[m][t]
					for c := range skl[k][l][m] {
						skl[k][l][m][c] += d * tempUV[t][c]
					}
				}
			}
		}
	}
	return skl, nil
}

// NURBSVolumeEval evaluates rational volumes: homogeneous evaluation followed
// by a perspective divide; derivatives apply the trivariate Leibniz
// correction, the three-direction generalization of A4.2 and A4.4.
type NURBSVolumeEval struct {
	Spans SpanMode
}

var _ VolumeEvaluator = (*NURBSVolumeEval)(nil)

func (ev *NURBSVolumeEval) Evaluate(data *VolumeData, us, vs, ws []float64) ([][]float64, error) {
	wpts, err := (&BSplineVolumeEval{Spans: ev.Spans}).Evaluate(data, us, vs, ws)
	if err != nil {
		return nil, err
	}
	return Dehomogenize(wpts)
}

func (ev *NURBSVolumeEval) Derivatives(data *VolumeData, u, v, w float64, order int) ([][][][]float64, error) {
	sklw, err := (&BSplineVolumeEval{Spans: ev.Spans}).Derivatives(data, u, v, w, order)
	if err != nil {
		return nil, err
	}

	dim := len(data.CtrlPts[0]) - 1
	w0 := sklw[0][0][0][dim]
	if w0 == 0 {
		return nil, fmt.Errorf("%w: rational weight evaluated to zero at (u, v, w)=(%g, %g, %g)", ErrDivideByZero, u, v, w)
	}

	// S[k][l][m] solves the Leibniz expansion of Aw = w·S for the highest
	// term: every lower-order product is subtracted, then the zeroth weight
	// is divided out.
	skl := zeros4(order+1, order+1, order+1, dim)
	for k := 0; k <= order; k++ {
		for l := 0; l <= order-k; l++ {
			for m := 0; m <= order-k-l; m++ {
				pt := append([]float64(nil), sklw[k][l][m][:dim]...)
				for i := 0; i <= k; i++ {
					for j := 0; j <= l; j++ {
						for q := 0; q <= m; q++ {
							if i == 0 && j == 0 && q == 0 {
								continue
							}
							bin := Binomial(k, i) * Binomial(l, j) * Binomial(m, q) * sklw[i][j][q][dim]
							if bin == 0 {
								continue
							}
							lower := skl[k-i][l-j][m-q]
							for c := range pt {
								pt[c] -= bin * lower[c]
							}
						}
					}
				}
				for c := range pt {
					pt[c] /= w0
				}
				skl[k][l][m] = pt
			}
		}
	}
	return skl, nil
}

// zeros4 allocates an a×b×c grid of zero vectors of the given dimension.
func zeros4(a, b, c, dim int) [][][][]float64 {
	out := make([][][][]float64, a)
	for i := range out {
		out[i] = zeros3(b, c, dim)
	}
	return out
}
