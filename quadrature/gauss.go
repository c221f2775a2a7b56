package quadrature

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// GaussLegendre returns the q-point Gauss-Legendre nodes and weights on
// [0,1]. The rule integrates polynomials of degree 2q-1 exactly; the
// weights sum to 1 (the interval length).
func GaussLegendre(q int) (points, weights []float64) {
	x, w := gaussJacobi(0, 0, q-1)
	points = make([]float64, q)
	weights = make([]float64, q)
	for i := range x {
		points[i] = 0.5 * (x[i] + 1)
		weights[i] = 0.5 * w[i]
	}
	return points, weights
}

// GaussLobatto returns the p+1 Gauss-Lobatto nodes on [0,1], endpoints
// included. These are the interpolation points of the nodal H1 basis of
// order p. p=0 degenerates to the single midpoint node.
func GaussLobatto(p int) []float64 {
	switch p {
	case 0:
		return []float64{0.5}
	case 1:
		return []float64{0, 1}
	}

	// Interior nodes are the Gauss-Jacobi(1,1) points, i.e. the zeros
	// of P'_p on (-1,1).
	xint, _ := gaussJacobi(1, 1, p-2)

	x := make([]float64, p+1)
	x[0] = 0
	for i, xi := range xint {
		x[i+1] = 0.5 * (xi + 1)
	}
	x[p] = 1
	return x
}

// gaussJacobi computes the N+1 Gauss-Jacobi nodes and weights on [-1,1]
// for the weight (1-x)^alpha (1+x)^beta, by the Golub-Welsch method:
// the nodes are the eigenvalues of the symmetric tridiagonal Jacobi
// matrix of the three-term recurrence, and the weights follow from the
// first component of the corresponding eigenvectors.
func gaussJacobi(alpha, beta float64, N int) (x, w []float64) {
	if N == 0 {
		return []float64{-(alpha - beta) / (alpha + beta + 2)}, []float64{2}
	}

	h1 := make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: d0[i] = -(beta^2-alpha^2)/((2i+a+b)*(2i+a+b+2))
	d0 := make([]float64, N+1)
	fac := beta*beta - alpha*alpha
	for i := 0; i < N+1; i++ {
		d0[i] = fac / (h1[i] * (h1[i] + 2))
	}
	if alpha+beta < 10*eps {
		d0[0] = 0
	}

	// first superdiagonal
	d1 := make([]float64, N)
	for i := 0; i < N; i++ {
		ip1 := float64(i + 1)
		d1[i] = 2.0 / (h1[i] + 2.0) * math.Sqrt(
			ip1*(ip1+alpha+beta)*(ip1+alpha)*(ip1+beta)/(h1[i]+1)/(h1[i]+3),
		)
	}

	JJ := newSymTriDiagonal(d0, d1)

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	x = eig.Values(nil)

	VVr := mat.NewDense(len(x), len(x), nil)
	eig.VectorsTo(VVr)
	w = make([]float64, len(x))
	g0 := gamma0(alpha, beta)
	for i, v := range VVr.RawRowView(0) {
		w[i] = v * v * g0
	}
	return x, w
}

const eps = 1.0e-16

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1
	return math.Gamma(alpha+1) * math.Gamma(beta+1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func newSymTriDiagonal(d0, d1 []float64) *mat.SymDense {
	n := len(d0)
	dd := make([]float64, n*n)
	for i := 0; i < n; i++ {
		dd[i*n+i] = d0[i]
		if i < n-1 {
			dd[i*n+i+1] = d1[i]
		}
	}
	return mat.NewSymDense(n, dd)
}
