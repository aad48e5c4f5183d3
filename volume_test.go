package nurbs

import (
	"errors"
	"math"
	"testing"

	"github.com/google/go-cmp/cmp/cmpopts"
)

// testVolume returns the trilinear unit cube: the identity map from the
// parameter space to [0,1]^3.
func testVolume(t *testing.T) *Volume {
	t.Helper()
	v := NewVolume()
	for _, set := range []func(int) error{v.SetDegreeU, v.SetDegreeV, v.SetDegreeW} {
		if err := set(1); err != nil {
			t.Fatal(err)
		}
	}
	pts := make([][]float64, 0, 8)
	for i := range 2 {
		for j := range 2 {
			for k := range 2 {
				pts = append(pts, []float64{float64(i), float64(j), float64(k)})
			}
		}
	}
	if err := v.SetCtrlPts(pts, 2, 2, 2); err != nil {
		t.Fatal(err)
	}
	kv := KnotVector{0, 0, 1, 1}
	for _, set := range []func(KnotVector) error{v.SetKnotVectorU, v.SetKnotVectorV, v.SetKnotVectorW} {
		if err := set(kv); err != nil {
			t.Fatal(err)
		}
	}
	return v
}

// testQuadraticVolume returns a triquadratic volume over a 3x3x3 lattice
// whose points lie on the graph of the linear map (x, y, z) -> x+y+z in the
// fourth coordinate.
func testQuadraticVolume(t *testing.T, rational bool) *Volume {
	t.Helper()
	var v *Volume
	if rational {
		v = NewRationalVolume()
	} else {
		v = NewVolume()
	}
	for _, set := range []func(int) error{v.SetDegreeU, v.SetDegreeV, v.SetDegreeW} {
		if err := set(2); err != nil {
			t.Fatal(err)
		}
	}
	pts := make([][]float64, 0, 27)
	for i := range 3 {
		for j := range 3 {
			for k := range 3 {
				x, y, z := float64(i), float64(j), float64(k)
				pts = append(pts, []float64{x, y, z, x + y + z})
			}
		}
	}
	if err := v.SetCtrlPts(pts, 3, 3, 3); err != nil {
		t.Fatal(err)
	}
	kv := KnotVector{0, 0, 0, 1, 1, 1}
	for _, set := range []func(KnotVector) error{v.SetKnotVectorU, v.SetKnotVectorV, v.SetKnotVectorW} {
		if err := set(kv); err != nil {
			t.Fatal(err)
		}
	}
	return v
}

func TestVolumeIdentity(t *testing.T) {
	v := testVolume(t)
	approx := cmpopts.EquateApprox(0, 1e-12)
	for _, u := range Linspace(0, 1, 7, -1) {
		for _, vv := range Linspace(0, 1, 7, -1) {
			for _, w := range Linspace(0, 1, 7, -1) {
				pt, err := v.EvaluateAt(u, vv, w)
				if err != nil {
					t.Fatal(err)
				}
				diff(t, []float64{u, vv, w}, pt, approx)
			}
		}
	}
}

func TestVolumeDerivatives(t *testing.T) {
	v := testVolume(t)
	ders, err := v.Derivatives(0.3, 0.6, 0.9, 1)
	if err != nil {
		t.Fatal(err)
	}
	approx := cmpopts.EquateApprox(0, 1e-12)
	diff(t, []float64{0.3, 0.6, 0.9}, ders[0][0][0], approx)
	diff(t, []float64{1, 0, 0}, ders[1][0][0], approx)
	diff(t, []float64{0, 1, 0}, ders[0][1][0], approx)
	diff(t, []float64{0, 0, 1}, ders[0][0][1], approx)
}

func TestVolumeLinearGraph(t *testing.T) {
	v := testQuadraticVolume(t, false)
	for _, u := range Linspace(0, 1, 6, -1) {
		for _, vv := range Linspace(0, 1, 6, -1) {
			for _, w := range Linspace(0, 1, 6, -1) {
				pt, err := v.EvaluateAt(u, vv, w)
				if err != nil {
					t.Fatal(err)
				}
				if math.Abs(pt[3]-(pt[0]+pt[1]+pt[2])) > 1e-9 {
					t.Fatalf("(%v, %v, %v): point %v left the graph", u, vv, w, pt)
				}
			}
		}
	}
}

func TestVolumeQuadraticDerivativesFiniteDiff(t *testing.T) {
	v := testQuadraticVolume(t, false)
	const h = 1e-6
	u, vv, w := 0.35, 0.6, 0.8
	ders, err := v.Derivatives(u, vv, w, 2)
	if err != nil {
		t.Fatal(err)
	}
	hi, _ := v.EvaluateAt(u+h, vv, w)
	lo, _ := v.EvaluateAt(u-h, vv, w)
	for d := range 4 {
		approx := (hi[d] - lo[d]) / (2 * h)
		if math.Abs(ders[1][0][0][d]-approx) > 1e-4 {
			t.Fatalf("du %v, finite difference %v", ders[1][0][0], approx)
		}
	}
	// Mixed second derivative against a four-point stencil.
	pp, _ := v.EvaluateAt(u+h, vv+h, w)
	pm, _ := v.EvaluateAt(u+h, vv-h, w)
	mp, _ := v.EvaluateAt(u-h, vv+h, w)
	mm, _ := v.EvaluateAt(u-h, vv-h, w)
	for d := range 4 {
		approx := (pp[d] - pm[d] - mp[d] + mm[d]) / (4 * h * h)
		if math.Abs(ders[1][1][0][d]-approx) > 1e-3 {
			t.Fatalf("duv %v, finite difference %v", ders[1][1][0], approx)
		}
	}
}

func TestRationalVolumeDerivativesFiniteDiff(t *testing.T) {
	v := testQuadraticVolume(t, true)
	// Non-uniform weights so the rational correction terms actually matter.
	ws := make([]float64, 0, 27)
	for i := range 3 {
		for j := range 3 {
			for k := range 3 {
				ws = append(ws, 1+0.25*float64(i+2*j+k))
			}
		}
	}
	if err := v.SetWeights(ws); err != nil {
		t.Fatal(err)
	}

	const h = 1e-6
	u, vv, w := 0.35, 0.6, 0.8
	ders, err := v.Derivatives(u, vv, w, 2)
	if err != nil {
		t.Fatal(err)
	}

	hi, _ := v.EvaluateAt(u, vv, w+h)
	lo, _ := v.EvaluateAt(u, vv, w-h)
	for d := range 4 {
		approx := (hi[d] - lo[d]) / (2 * h)
		if math.Abs(ders[0][0][1][d]-approx) > 1e-4 {
			t.Fatalf("dw %v, finite difference %v", ders[0][0][1], approx)
		}
	}
	hi, _ = v.EvaluateAt(u+h, vv, w)
	lo, _ = v.EvaluateAt(u-h, vv, w)
	for d := range 4 {
		approx := (hi[d] - lo[d]) / (2 * h)
		if math.Abs(ders[1][0][0][d]-approx) > 1e-4 {
			t.Fatalf("du %v, finite difference %v", ders[1][0][0], approx)
		}
	}
	// Mixed second derivative against a four-point stencil.
	pp, _ := v.EvaluateAt(u+h, vv, w+h)
	pm, _ := v.EvaluateAt(u+h, vv, w-h)
	mp, _ := v.EvaluateAt(u-h, vv, w+h)
	mm, _ := v.EvaluateAt(u-h, vv, w-h)
	for d := range 4 {
		approx := (pp[d] - pm[d] - mp[d] + mm[d]) / (4 * h * h)
		if math.Abs(ders[1][0][1][d]-approx) > 1e-3 {
			t.Fatalf("duw %v, finite difference %v", ders[1][0][1], approx)
		}
	}
}

func TestVolumeRationalUnitWeights(t *testing.T) {
	p := testQuadraticVolume(t, false)
	r := testQuadraticVolume(t, true)
	approx := cmpopts.EquateApprox(0, 1e-8)
	for _, u := range []float64{0, 0.45, 1} {
		for _, vv := range []float64{0.2, 0.9} {
			want, err := p.EvaluateAt(u, vv, 0.5)
			if err != nil {
				t.Fatal(err)
			}
			got, err := r.EvaluateAt(u, vv, 0.5)
			if err != nil {
				t.Fatal(err)
			}
			diff(t, want, got, approx)
		}
	}
}

func TestVolumeEvalPts(t *testing.T) {
	v := testVolume(t)
	if err := v.SetSampleSizeU(4); err != nil {
		t.Fatal(err)
	}
	if err := v.SetSampleSizeV(3); err != nil {
		t.Fatal(err)
	}
	if err := v.SetSampleSizeW(2); err != nil {
		t.Fatal(err)
	}
	pts, err := v.EvalPts()
	if err != nil {
		t.Fatal(err)
	}
	if len(pts) != 24 {
		t.Fatalf("got %d evaluated points, want 24", len(pts))
	}
}

func TestVolumeStateErrors(t *testing.T) {
	v := NewVolume()
	err := v.Evaluate()
	var se *StateError
	if !errors.As(err, &se) {
		t.Fatalf("got %v, want a StateError", err)
	}
	if len(se.Missing) != 7 {
		t.Errorf("missing = %v, want all seven preconditions", se.Missing)
	}

	if _, err := v.EvaluateAt(2, 0, 0); !errors.As(err, &se) {
		t.Errorf("got %v, want a StateError", err)
	}
}

func TestVolumeRaiseDegreeTooFewCtrlPts(t *testing.T) {
	v := testVolume(t) // trilinear on a 2x2x2 lattice
	if err := v.SetDegreeU(2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetDegreeU(2) with 2 points per direction: got %v, want ErrInvalidArgument", err)
	}
	if err := v.SetDegreeV(3); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetDegreeV(3) with 2 points per direction: got %v, want ErrInvalidArgument", err)
	}
	if err := v.SetDegreeW(2); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("SetDegreeW(2) with 2 points per direction: got %v, want ErrInvalidArgument", err)
	}
	if v.DegreeU() != 1 || v.DegreeV() != 1 || v.DegreeW() != 1 {
		t.Fatalf("degrees = (%d, %d, %d) after rejected changes, want (1, 1, 1)",
			v.DegreeU(), v.DegreeV(), v.DegreeW())
	}
	if _, err := v.EvaluateAt(0.5, 0.5, 0.5); err != nil {
		t.Fatal(err)
	}
}

func TestVolumeCtrlPts3D(t *testing.T) {
	v := testQuadraticVolume(t, false)
	grid := v.CtrlPts3D()
	if len(grid) != 3 || len(grid[0]) != 3 || len(grid[0][0]) != 3 {
		t.Fatalf("lattice is %dx%dx%d, want 3x3x3", len(grid), len(grid[0]), len(grid[0][0]))
	}
	diff(t, []float64{2, 1, 0, 3}, grid[2][1][0])
	diff(t, []float64{0, 2, 1, 3}, grid[0][2][1])

	// The returned lattice is a copy.
	grid[1][1][1][0] = 99
	diff(t, []float64{1, 1, 1, 3}, v.CtrlPts3D()[1][1][1])
}

func TestVolumeOutOfDomain(t *testing.T) {
	v := testVolume(t)
	if _, err := v.EvaluateAt(0.5, 0.5, 1.5); !errors.Is(err, ErrOutOfDomain) {
		t.Errorf("got %v, want ErrOutOfDomain", err)
	}
}

func TestVolumeBBox(t *testing.T) {
	v := testQuadraticVolume(t, false)
	bb, err := v.BBox()
	if err != nil {
		t.Fatal(err)
	}
	diff(t, []float64{0, 0, 0, 0}, bb.Min)
	diff(t, []float64{2, 2, 2, 6}, bb.Max)
}
