// Package nurbs evaluates B-spline and NURBS curves, surfaces, and volumes. It
// implements the classical evaluation algorithms from The NURBS Book (Piegl &
// Tiller) and is intended as the numerical core for CAD-style geometry
// processing: tessellators, exchange formats, and fitting routines all build
// on the primitives provided here.
//
// # Geometries
//
// The three geometry types are [Curve], [Surface], and [Volume], parametrized
// over one, two, and three directions respectively. Each owns its degree(s),
// knot vector(s), control points, and, for rational geometries, per-control
// point weights. Geometries are constructed empty and configured through
// setters, which validate their input against the state configured so far;
// evaluation reports every missing precondition at once via [StateError].
//
// Evaluated points are cached. Any mutation of degree, knot vector, control
// points, or sampling density invalidates the cache, and the next read
// re-evaluates transparently.
//
// Rational geometries (constructed with [NewRationalCurve] and friends) carry
// weights and evaluate in homogeneous coordinates: control points are lifted
// to (x·w, y·w, ..., w), blended there, and projected back with a perspective
// divide. With all weights equal to 1 a rational geometry reproduces its
// polynomial counterpart exactly.
//
// # Evaluators
//
// The blending machinery lives in evaluator values ([CurveEvaluator],
// [SurfaceEvaluator], [VolumeEvaluator]) that operate on immutable data
// snapshots ([CurveData], [SurfaceData], [VolumeData]). Geometries install a
// default evaluator matching their rational flag, but callers may swap in
// another implementation, for example [BSplineCurveEval2], which computes
// derivatives through derivative control points (algorithm A3.4) instead of
// the direct basis-derivative recursion (A3.2). Both produce identical
// results; the derivative-control-point form reuses intermediate results when
// many orders are requested at the same parameter.
//
// # Building blocks
//
// Lower-level pieces are exported for collaborators that work below the
// geometry layer:
//
//   - [KnotVector]: generation (clamped and unclamped), validation,
//     normalization, span lookup (A2.1, linear and binary variants)
//   - [BasisFunctions] (A2.2), [BasisFunctionDers] (A2.3),
//     [AllBasisFunctions], [CurveDerivCpts] (A3.3)
//   - [Homogenize], [Dehomogenize]: conversion between Cartesian and
//     weighted control points
//   - [Curve.InsertKnot] and the per-direction surface and volume variants:
//     shape-preserving knot insertion (A5.1)
//   - [Linspace], [LUDecompose], [Binomial], and related small numeric
//     helpers
//
// # Concurrency
//
// Evaluation is a pure function of the geometry's state. Distinct geometry
// instances may be evaluated concurrently; a single instance must not be
// mutated while it is being read. The only package-level state is the
// memoized binomial-coefficient table, which is safe for concurrent use.
//
// # Literature
//
// Algorithm numbers referenced throughout the package (A2.1, A3.6, A4.2, ...)
// are those of The NURBS Book:
//
//   - Piegl, L., Tiller, W.: The NURBS Book, 2nd edition, Springer, 1997
package nurbs
