package nurbs

import (
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

// testCurve returns a cubic B-spline curve with ten 3D control points on a
// clamped knot vector.
func testCurve(t *testing.T) *Curve {
	t.Helper()
	c := NewCurve()
	if err := c.SetDegree(3); err != nil {
		t.Fatal(err)
	}
	err := c.SetCtrlPts([][]float64{
		{5, 15, 0}, {10, 25, 5}, {20, 20, 10}, {15, -5, 15}, {7.5, 10, 20},
		{12.5, 15, 25}, {15, 0, 30}, {5, -10, 35}, {10, 15, 40}, {5, 15, 30},
	})
	if err != nil {
		t.Fatal(err)
	}
	kv, err := NewKnotVector(c.Degree(), len(c.CtrlPts()))
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetKnotVector(kv); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestCurveEndpoints(t *testing.T) {
	c := testCurve(t)
	approx := cmpopts.EquateApprox(0, 1e-8)

	start, err := c.EvaluateAt(0)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []float64{5, 15, 0}, start, approx)

	end, err := c.EvaluateAt(1)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []float64{5, 15, 30}, end, approx)
}

func TestCurveStateErrors(t *testing.T) {
	c := NewCurve()

	err := c.SetCtrlPts([][]float64{{0, 0}, {1, 1}})
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want a StateError", err)
	}
	if len(se.Missing) != 1 || se.Missing[0] != "degree" {
		t.Errorf("missing = %v, want [degree]", se.Missing)
	}

	if err := c.SetDegree(2); err != nil {
		t.Fatal(err)
	}
	if err := c.SetCtrlPts([][]float64{{0, 0}, {1, 1}, {2, 0}}); err != nil {
		t.Fatal(err)
	}
	err = c.Evaluate()
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want a StateError", err)
	}
	if !strings.Contains(err.Error(), "knot vector") {
		t.Errorf("error %q does not name the missing knot vector", err)
	}

	// Too few control points for the degree.
	if err := c.SetCtrlPts([][]float64{{0, 0}, {1, 1}}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("got %v, want ErrInvalidArgument", err)
	}
}

func TestCurveRaiseDegreeTooFewCtrlPts(t *testing.T) {
	c := NewCurve()
	if err := c.SetDegree(2); err != nil {
		t.Fatal(err)
	}
	if err := c.SetCtrlPts([][]float64{{0, 0}, {1, 1}, {2, 0}}); err != nil {
		t.Fatal(err)
	}

	// Raising the degree past the control point count must fail, not leave
	// the curve in a state where evaluation reads past the knot vector.
	if err := c.SetDegree(5); !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("SetDegree(5) with 3 control points: got %v, want ErrInvalidArgument", err)
	}
	if c.Degree() != 2 {
		t.Fatalf("degree = %d after rejected change, want 2", c.Degree())
	}
	kv, err := NewKnotVector(2, 3)
	if err != nil {
		t.Fatal(err)
	}
	if err := c.SetKnotVector(kv); err != nil {
		t.Fatal(err)
	}
	if _, err := c.EvaluateAt(0); err != nil {
		t.Fatal(err)
	}

	// The evaluator boundary rejects inconsistent snapshots too.
	data := &CurveData{
		Degree:  5,
		CtrlPts: [][]float64{{0, 0}, {1, 1}, {2, 0}},
		Knots:   KnotVector{0, 0, 0, 0, 0, 0, 1, 1, 1},
	}
	e := &BSplineCurveEval{}
	if _, err := e.Evaluate(data, []float64{0}); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("Evaluate with degree > ctrlpts-1: got %v, want ErrInvalidArgument", err)
	}
}

func TestCurveOutOfDomain(t *testing.T) {
	c := testCurve(t)
	if _, err := c.EvaluateAt(1.5); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("got %v, want ErrOutOfDomain", err)
	}
	if _, err := c.EvaluateAt(-0.1); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("got %v, want ErrOutOfDomain", err)
	}
	// A hair outside the boundary is tolerated.
	if _, err := c.EvaluateAt(1 + 1e-9); err != nil {
		t.Errorf("u=1+1e-9: %v", err)
	}
}

func TestCurveEvalPts(t *testing.T) {
	c := testCurve(t)
	if err := c.SetSampleSize(25); err != nil {
		t.Fatal(err)
	}
	pts, err := c.EvalPts()
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 25 {
		t.Fatalf("got %d evaluated points, want 25", len(pts))
	}

	// Mutation invalidates the cache; the next EvalPts recomputes at the new
	// density.
	if err := c.SetDelta(0.1); err != nil {
		t.Fatal(err)
	}
	pts, err = c.EvalPts()
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 11 {
		t.Fatalf("got %d evaluated points after delta change, want 11", len(pts))
	}
}

func TestCurveEvaluatorsAgree(t *testing.T) {
	c := testCurve(t)
	data := c.Data()
	e1 := &BSplineCurveEval{}
	e2 := &BSplineCurveEval2{}
	approx := cmpopts.EquateApprox(0, 1e-8)
	for _, u := range []float64{0, 0.1, 0.37, 0.5, 0.71, 1} {
		d1, err := e1.Derivatives(data, u, 2)
		if err != nil {
			t.Fatal(err)
		}
		d2, err := e2.Derivatives(data, u, 2)
		if err != nil {
			t.Fatal(err)
		}
		diff(t, d1, d2, approx)
	}
}

func TestCurveDerivativesFiniteDiff(t *testing.T) {
	c := testCurve(t)
	const h = 1e-6
	for _, u := range []float64{0.2, 0.45, 0.8} {
		ders, err := c.Derivatives(u, 1)
		if err != nil {
			t.Fatal(err)
		}
		lo, err := c.EvaluateAt(u - h)
		if err != nil {
			t.Fatal(err)
		}
		hi, err := c.EvaluateAt(u + h)
		if err != nil {
			t.Fatal(err)
		}
		for d := range 3 {
			approx := (hi[d] - lo[d]) / (2 * h)
			if math.Abs(ders[1][d]-approx) > 1e-4 {
				t.Fatalf("u=%v: derivative %v, finite difference %v", u, ders[1], approx)
			}
		}
		// Row 0 is the curve point itself.
		pt, err := c.EvaluateAt(u)
		if err != nil {
			t.Fatal(err)
		}
		diff(t, pt, ders[0], cmpopts.EquateApprox(0, 1e-12))
	}
}

func TestCurveDerivativesBeyondDegree(t *testing.T) {
	c := testCurve(t)
	ders, err := c.Derivatives(0.5, 5)
	if err != nil {
		t.Fatal(err)
	}
	if len(ders) != 6 {
		t.Fatalf("got %d rows, want 6", len(ders))
	}
	// Derivatives above the degree vanish.
	for k := 4; k <= 5; k++ {
		diff(t, []float64{0, 0, 0}, ders[k])
	}
}

func TestRationalUnitWeights(t *testing.T) {
	c := testCurve(t)

	r := NewRationalCurve()
	if err := r.SetDegree(3); err != nil {
		t.Fatal(err)
	}
	if err := r.SetCtrlPts(c.CtrlPts()); err != nil {
		t.Fatal(err)
	}
	if err := r.SetKnotVector(c.KnotVector()); err != nil {
		t.Fatal(err)
	}

	us := Linspace(0, 1, 50, -1)
	want, err := c.EvaluateList(us)
	if err != nil {
		t.Fatal(err)
	}
	got, err := r.EvaluateList(us)
	if err != nil {
		t.Fatal(err)
	}
	diff(t, want, got, cmpopts.EquateApprox(0, 1e-8))
}

// quarterCircle returns the standard degree-2 rational arc from (1,0)
// to (0,1).
func quarterCircle(t *testing.T) *Curve {
	t.Helper()
	c := NewRationalCurve()
	if err := c.SetDegree(2); err != nil {
		t.Fatal(err)
	}
	if err := c.SetCtrlPts([][]float64{{1, 0}, {1, 1}, {0, 1}}); err != nil {
		t.Fatal(err)
	}
	if err := c.SetWeights([]float64{1, math.Sqrt2 / 2, 1}); err != nil {
		t.Fatal(err)
	}
	if err := c.SetKnotVector(KnotVector{0, 0, 0, 1, 1, 1}); err != nil {
		t.Fatal(err)
	}
	return c
}

func TestRationalCurveCircle(t *testing.T) {
	c := quarterCircle(t)
	for _, u := range Linspace(0, 1, 100, -1) {
		pt, err := c.EvaluateAt(u)
		if err != nil {
			t.Fatal(err)
		}
		if r := math.Hypot(pt[0], pt[1]); math.Abs(r-1) > 1e-12 {
			t.Fatalf("u=%v: point %v has radius %v, want 1", u, pt, r)
		}
	}
}

func TestRationalCurveDerivatives(t *testing.T) {
	c := quarterCircle(t)
	const h = 1e-6
	for _, u := range []float64{0.25, 0.5, 0.75} {
		ders, err := c.Derivatives(u, 1)
		if err != nil {
			t.Fatal(err)
		}
		lo, err := c.EvaluateAt(u - h)
		if err != nil {
			t.Fatal(err)
		}
		hi, err := c.EvaluateAt(u + h)
		if err != nil {
			t.Fatal(err)
		}
		for d := range 2 {
			approx := (hi[d] - lo[d]) / (2 * h)
			if math.Abs(ders[1][d]-approx) > 1e-4 {
				t.Fatalf("u=%v: derivative %v, finite difference %v", u, ders[1], approx)
			}
		}
	}
}

func TestCurveReverse(t *testing.T) {
	c := testCurve(t)
	rev, err := c.Reverse()
	if err != nil {
		t.Fatal(err)
	}
	approx := cmpopts.EquateApprox(0, 1e-9)
	for _, u := range Linspace(0, 1, 25, -1) {
		want, err := c.EvaluateAt(u)
		if err != nil {
			t.Fatal(err)
		}
		got, err := rev.EvaluateAt(1 - u)
		if err != nil {
			t.Fatal(err)
		}
		diff(t, want, got, approx)
	}
}

func TestCurveBBox(t *testing.T) {
	c := testCurve(t)
	bb, err := c.BBox()
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []float64{5, -10, 0}, bb.Min)
	diff(t, []float64{20, 25, 40}, bb.Max)

	// The convex hull property keeps every evaluated point inside.
	pts, err := c.EvalPts()
	if err != nil {
		t.Fatal(err)
	}
	for _, pt := range pts {
		for d := range pt {
			if pt[d] < bb.Min[d]-1e-9 || pt[d] > bb.Max[d]+1e-9 {
				t.Fatalf("point %v escapes bounding box [%v, %v]", pt, bb.Min, bb.Max)
			}
		}
	}
}

func TestCurveDataIsDetached(t *testing.T) {
	c := testCurve(t)
	data := c.Data()
	data.CtrlPts[0][0] = 999
	data.Knots[0] = 999
	if c.CtrlPts()[0][0] == 999 || c.KnotVector()[0] == 999 {
		t.Error("mutating the snapshot leaked into the curve")
	}
}
