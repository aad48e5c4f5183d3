package nurbs

// BasisFunctions computes the degree+1 basis functions that are nonzero on
// the given knot span at parameter u, using the Cox-de Boor recursion
// (algorithm A2.2). The returned values sum to 1 for any u inside the domain.
func BasisFunctions(degree int, kv KnotVector, span int, u float64) []float64 {
	n := make([]float64, degree+1)
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)

	n[0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = u - kv[span+1-j]
		right[j] = kv[span+j] - u
		var saved float64
		for r := range j {
			temp := n[r] / (right[r+1] + left[j-r])
			n[r] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		n[j] = saved
	}
	return n
}

// BasisFunctionsAt computes basis functions for each (span, parameter) pair.
// The dense samplers batch their basis evaluation through it.
func BasisFunctionsAt(degree int, kv KnotVector, spans []int, us []float64) [][]float64 {
	out := make([][]float64, len(us))
	for i := range us {
		out[i] = BasisFunctions(degree, kv, spans[i], us[i])
	}
	return out
}

// AllBasisFunctions computes the full triangular table of basis functions of
// every degree up to degree at parameter u. The entry [j][p] holds the value
// of the j-th nonzero basis function of degree p; entries with j > p are
// zero. The table feeds the derivative-control-point evaluation algorithms
// (A3.4, A3.8).
func AllBasisFunctions(degree int, kv KnotVector, span int, u float64) [][]float64 {
	table := make([][]float64, degree+1)
	for j := range table {
		table[j] = make([]float64, degree+1)
	}
	for p := 0; p <= degree; p++ {
		for j, v := range BasisFunctions(p, kv, span, u) {
			table[j][p] = v
		}
	}
	return table
}

// BasisFunctionDers computes the basis functions on the given span and their
// derivatives up to the given order, following algorithm A2.3. Row k of the
// result holds the k-th derivatives of the degree+1 nonzero basis functions;
// row 0 holds the function values themselves. The order must not exceed the
// degree; derivatives of higher order vanish identically and are handled by
// the evaluators.
func BasisFunctionDers(degree int, kv KnotVector, span int, u float64, order int) [][]float64 {
	// Triangular table of basis values; the lower triangle stores the knot
	// differences needed by the derivative recursion.
	ndu := make([][]float64, degree+1)
	for i := range ndu {
		ndu[i] = make([]float64, degree+1)
	}
	left := make([]float64, degree+1)
	right := make([]float64, degree+1)

	ndu[0][0] = 1
	for j := 1; j <= degree; j++ {
		left[j] = u - kv[span+1-j]
		right[j] = kv[span+j] - u
		var saved float64
		for r := range j {
			ndu[j][r] = right[r+1] + left[j-r]
			temp := ndu[r][j-1] / ndu[j][r]
			ndu[r][j] = saved + right[r+1]*temp
			saved = left[j-r] * temp
		}
		ndu[j][j] = saved
	}

	ders := make([][]float64, order+1)
	for i := range ders {
		ders[i] = make([]float64, degree+1)
	}
	for j := 0; j <= degree; j++ {
		ders[0][j] = ndu[j][degree]
	}

	// Alternating rows of difference coefficients.
	a := [2][]float64{
		make([]float64, degree+1),
		make([]float64, degree+1),
	}
	for r := 0; r <= degree; r++ {
		s1, s2 := 0, 1
		a[0][0] = 1
		for k := 1; k <= order; k++ {
			var d float64
			rk := r - k
			pk := degree - k
			if r >= k {
				a[s2][0] = a[s1][0] / ndu[pk+1][rk]
				d = a[s2][0] * ndu[rk][pk]
			}
			j1 := 1
			if rk < -1 {
				j1 = -rk
			}
			j2 := k - 1
			if r-1 > pk {
				j2 = degree - r
			}
			for j := j1; j <= j2; j++ {
				a[s2][j] = (a[s1][j] - a[s1][j-1]) / ndu[pk+1][rk+j]
				d += a[s2][j] * ndu[rk+j][pk]
			}
			if r <= pk {
				a[s2][k] = -a[s1][k-1] / ndu[pk+1][r]
				d += a[s2][k] * ndu[r][pk]
			}
			ders[k][r] = d
			s1, s2 = s2, s1
		}
	}

	// Multiply through by the degree falling factorial.
	acc := float64(degree)
	for k := 1; k <= order; k++ {
		for j := 0; j <= degree; j++ {
			ders[k][j] *= acc
		}
		acc *= float64(degree - k)
	}
	return ders
}

// CurveDerivCpts computes the control points of the derivative curves up to
// order (algorithm A3.3): the control points of the k-th derivative curve are
// scaled finite differences of those of the (k-1)-th. Only the window of
// control points [rstart, rend] is considered. The result is indexed
// [order][point index][coordinate].
func CurveDerivCpts(degree int, kv KnotVector, cpts [][]float64, rstart, rend, order int) [][][]float64 {
	r := rend - rstart
	pk := make([][][]float64, order+1)
	for k := range pk {
		pk[k] = make([][]float64, r+1)
	}

	for i := 0; i <= r; i++ {
		pk[0][i] = append([]float64(nil), cpts[rstart+i]...)
	}
	for k := 1; k <= order; k++ {
		tmp := float64(degree - k + 1)
		for i := 0; i <= r-k; i++ {
			denom := kv[rstart+i+degree+1] - kv[rstart+i+k]
			pt := make([]float64, len(pk[k-1][i]))
			for c := range pt {
				pt[c] = tmp * (pk[k-1][i+1][c] - pk[k-1][i][c]) / denom
			}
			pk[k][i] = pt
		}
	}
	return pk
}
