package quadrature

import "sync"

// LagrangeValues evaluates the n Lagrange interpolants through the
// given nodes at xi, by the direct product formula. The values sum to 1
// at any xi (partition of unity) and the basis reproduces polynomials
// of degree n-1 exactly.
func LagrangeValues(nodes []float64, xi float64) []float64 {
	n := len(nodes)
	vals := make([]float64, n)
	for j := 0; j < n; j++ {
		v := 1.0
		for k := 0; k < n; k++ {
			if k == j {
				continue
			}
			v *= (xi - nodes[k]) / (nodes[j] - nodes[k])
		}
		vals[j] = v
	}
	return vals
}

// LagrangeDerivatives evaluates the first derivatives of the Lagrange
// interpolants through the given nodes at xi. The derivatives sum to 0
// at any xi.
func LagrangeDerivatives(nodes []float64, xi float64) []float64 {
	n := len(nodes)
	derivs := make([]float64, n)
	for j := 0; j < n; j++ {
		var d float64
		for m := 0; m < n; m++ {
			if m == j {
				continue
			}
			term := 1.0 / (nodes[j] - nodes[m])
			for k := 0; k < n; k++ {
				if k == j || k == m {
					continue
				}
				term *= (xi - nodes[k]) / (nodes[j] - nodes[k])
			}
			d += term
		}
		derivs[j] = d
	}
	return derivs
}

// Rule holds the 1D tables a tensor-product element kernel of order p
// with q quadrature points per dimension consumes: the Gauss-Legendre
// nodes and weights on [0,1], the Gauss-Lobatto interpolation nodes,
// and the dense basis tables
//
//	B[i*N+j] = l_j(points1D[i])
//	G[i*N+j] = l'_j(points1D[i])
//
// where l_j is the j-th Lagrange interpolant through the Lobatto nodes.
// A Rule is immutable after construction and safe for concurrent use.
type Rule struct {
	P, Q int
	N    int // nodes per dimension, p+1

	Points1D  []float64 // q Gauss-Legendre nodes on [0,1]
	Weights1D []float64 // corresponding weights
	Nodes1D   []float64 // p+1 Gauss-Lobatto nodes on [0,1]

	B, G []float64 // [q][n] row-major
}

// NewRule builds the tables for order p sampled at q Gauss-Legendre
// points per dimension. The result is deterministic in (p, q).
func NewRule(p, q int) *Rule {
	r := &Rule{P: p, Q: q, N: p + 1}
	r.Points1D, r.Weights1D = GaussLegendre(q)
	r.Nodes1D = GaussLobatto(p)
	r.B = make([]float64, q*r.N)
	r.G = make([]float64, q*r.N)
	for i, xi := range r.Points1D {
		copy(r.B[i*r.N:], LagrangeValues(r.Nodes1D, xi))
		copy(r.G[i*r.N:], LagrangeDerivatives(r.Nodes1D, xi))
	}
	return r
}

var (
	ruleMu    sync.Mutex
	ruleCache = make(map[[2]int]*Rule)
)

// Lookup returns the cached Rule for (p, q), building it on first use.
func Lookup(p, q int) *Rule {
	key := [2]int{p, q}
	ruleMu.Lock()
	defer ruleMu.Unlock()
	if r, ok := ruleCache[key]; ok {
		return r
	}
	r := NewRule(p, q)
	ruleCache[key] = r
	return r
}
