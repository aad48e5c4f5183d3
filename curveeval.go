package nurbs

import "fmt"

// BSplineCurveEval evaluates polynomial B-spline curves: points with
// algorithm A3.1 generalized to a dense parameter array, derivatives with the
// direct basis-derivative recursion of A3.2.
type BSplineCurveEval struct {
	// Spans selects the knot span search strategy.
	Spans SpanMode
}

var _ CurveEvaluator = (*BSplineCurveEval)(nil)

func (ev *BSplineCurveEval) Evaluate(data *CurveData, us []float64) ([][]float64, error) {
	if err := checkCurveData(data); err != nil {
		return nil, err
	}
	if err := checkDomain(data.Knots, data.Degree, us...); err != nil {
		return nil, err
	}

	degree := data.Degree
	spans := data.Knots.Spans(degree, len(data.CtrlPts), us, ev.Spans)
	basis := BasisFunctionsAt(degree, data.Knots, spans, us)

	dim := len(data.CtrlPts[0])
	pts := make([][]float64, len(us))
	for idx := range us {
		pt := make([]float64, dim)
		for i := 0; i <= degree; i++ {
			cpt := data.CtrlPts[spans[idx]-degree+i]
			b := basis[idx][i]
			for c := range pt {
				pt[c] += b * cpt[c]
			}
		}
		pts[idx] = pt
	}
	return pts, nil
}

func (ev *BSplineCurveEval) Derivatives(data *CurveData, u float64, order int) ([][]float64, error) {
	if err := checkCurveData(data); err != nil {
		return nil, err
	}
	if err := checkDomain(data.Knots, data.Degree, u); err != nil {
		return nil, err
	}

	degree := data.Degree
	dim := len(data.CtrlPts[0])

	// Derivatives beyond the degree vanish identically; the rows above du
	// stay zero.
	du := min(degree, order)
	ck := zeros2(order+1, dim)

	span := data.Knots.Span(degree, len(data.CtrlPts), u, ev.Spans)
	ders := BasisFunctionDers(degree, data.Knots, span, u, du)
	for k := 0; k <= du; k++ {
		for j := 0; j <= degree; j++ {
			cpt := data.CtrlPts[span-degree+j]
			d := ders[k][j]
			for c := range ck[k] {
				ck[k][c] += d * cpt[c]
			}
		}
	}
	return ck, nil
}

// BSplineCurveEval2 evaluates polynomial B-spline curves like
// [BSplineCurveEval], but computes derivatives through derivative control
// points (algorithms A3.3 and A3.4). The two evaluators produce numerically
// equal derivatives; this one reuses intermediate results when many orders
// are requested for the same span.
type BSplineCurveEval2 struct {
	Spans SpanMode
}

var _ CurveEvaluator = (*BSplineCurveEval2)(nil)

func (ev *BSplineCurveEval2) Evaluate(data *CurveData, us []float64) ([][]float64, error) {
	return (&BSplineCurveEval{Spans: ev.Spans}).Evaluate(data, us)
}

func (ev *BSplineCurveEval2) Derivatives(data *CurveData, u float64, order int) ([][]float64, error) {
	if err := checkCurveData(data); err != nil {
		return nil, err
	}
	if err := checkDomain(data.Knots, data.Degree, u); err != nil {
		return nil, err
	}

	degree := data.Degree
	dim := len(data.CtrlPts[0])
	du := min(degree, order)
	ck := zeros2(order+1, dim)

	span := data.Knots.Span(degree, len(data.CtrlPts), u, ev.Spans)
	bfuns := AllBasisFunctions(degree, data.Knots, span, u)
	pk := CurveDerivCpts(degree, data.Knots, data.CtrlPts, span-degree, span, du)

	// A3.4: the k-th derivative is a degree-k curve over the k-th derivative
	// control points.
	for k := 0; k <= du; k++ {
		for j := 0; j <= degree-k; j++ {
			b := bfuns[j][degree-k]
			for c := range ck[k] {
				ck[k][c] += b * pk[k][j][c]
			}
		}
	}
	return ck, nil
}

// NURBSCurveEval evaluates rational curves. Points come from the homogeneous
// form of A3.1 followed by a perspective divide (A4.1); derivatives apply the
// binomial correction of A4.2, the Leibniz-rule differentiation of the
// quotient Aw(u)/w(u).
type NURBSCurveEval struct {
	Spans SpanMode
}

var _ CurveEvaluator = (*NURBSCurveEval)(nil)

func (ev *NURBSCurveEval) Evaluate(data *CurveData, us []float64) ([][]float64, error) {
	wpts, err := (&BSplineCurveEval{Spans: ev.Spans}).Evaluate(data, us)
	if err != nil {
		return nil, err
	}
	return Dehomogenize(wpts)
}

func (ev *NURBSCurveEval) Derivatives(data *CurveData, u float64, order int) ([][]float64, error) {
	// Homogeneous-space derivatives carry the point and weight derivatives
	// together; CKw[k] = (Aw⁽ᵏ⁾, w⁽ᵏ⁾).
	ckw, err := (&BSplineCurveEval{Spans: ev.Spans}).Derivatives(data, u, order)
	if err != nil {
		return nil, err
	}

	dim := len(data.CtrlPts[0]) - 1
	w0 := ckw[0][dim]
	if w0 == 0 {
		return nil, fmt.Errorf("%w: rational weight evaluated to zero at u=%g", ErrDivideByZero, u)
	}

	ck := make([][]float64, order+1)
	for k := 0; k <= order; k++ {
		v := append([]float64(nil), ckw[k][:dim]...)
		for i := 1; i <= k; i++ {
			bin := Binomial(k, i) * ckw[i][dim]
			for c := range v {
				v[c] -= bin * ck[k-i][c]
			}
		}
		for c := range v {
			v[c] /= w0
		}
		ck[k] = v
	}
	return ck, nil
}

// zeros2 allocates a rows×cols matrix of zeros.
func zeros2(rows, cols int) [][]float64 {
	out := make([][]float64, rows)
	for i := range out {
		out[i] = make([]float64, cols)
	}
	return out
}
