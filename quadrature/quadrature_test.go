package quadrature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGaussLegendreExactness(t *testing.T) {
	// A q-point rule integrates x^k on [0,1] exactly for k <= 2q-1.
	for q := 1; q <= 10; q++ {
		x, w := GaussLegendre(q)
		require.Len(t, x, q)
		require.Len(t, w, q)

		for k := 0; k <= 2*q-1; k++ {
			var sum float64
			for i := range x {
				sum += w[i] * math.Pow(x[i], float64(k))
			}
			exact := 1.0 / float64(k+1)
			assert.InDelta(t, exact, sum, 1e-13,
				"q=%d failed to integrate x^%d", q, k)
		}
	}
}

func TestGaussLegendreKnownValues(t *testing.T) {
	// Two-point rule on [0,1]: 1/2 -+ 1/(2*sqrt(3)), weights 1/2.
	x, w := GaussLegendre(2)
	d := 0.5 / math.Sqrt(3)
	assert.InDelta(t, 0.5-d, x[0], 1e-14)
	assert.InDelta(t, 0.5+d, x[1], 1e-14)
	assert.InDelta(t, 0.5, w[0], 1e-14)
	assert.InDelta(t, 0.5, w[1], 1e-14)
}

func TestGaussLobattoNodes(t *testing.T) {
	for p := 1; p <= 8; p++ {
		nodes := GaussLobatto(p)
		require.Len(t, nodes, p+1)
		assert.Equal(t, 0.0, nodes[0])
		assert.Equal(t, 1.0, nodes[p])
		for i := 1; i <= p; i++ {
			assert.Greater(t, nodes[i], nodes[i-1], "p=%d nodes not increasing", p)
		}
	}

	// p=2 places the interior node at the midpoint.
	nodes := GaussLobatto(2)
	assert.InDelta(t, 0.5, nodes[1], 1e-14)

	// p=3 interior nodes are at 1/2 -+ 1/(2*sqrt(5)).
	nodes = GaussLobatto(3)
	d := 0.5 / math.Sqrt(5)
	assert.InDelta(t, 0.5-d, nodes[1], 1e-14)
	assert.InDelta(t, 0.5+d, nodes[2], 1e-14)
}

func TestPartitionOfUnity(t *testing.T) {
	for p := 1; p <= 8; p++ {
		nodes := GaussLobatto(p)
		n := float64(p + 1)
		for _, xi := range []float64{0, 0.137, 0.5, 0.82, 1} {
			vals := LagrangeValues(nodes, xi)
			derivs := LagrangeDerivatives(nodes, xi)

			var sumB, sumG float64
			for i := range vals {
				sumB += vals[i]
				sumG += derivs[i]
			}
			assert.InDelta(t, 1.0, sumB, n*1e-15, "p=%d xi=%v", p, xi)
			assert.InDelta(t, 0.0, sumG, 10*n*1e-15, "p=%d xi=%v", p, xi)
		}
	}
}

func TestLagrangeCardinality(t *testing.T) {
	// l_j(x_i) = delta_ij at the interpolation nodes.
	nodes := GaussLobatto(4)
	for i, xi := range nodes {
		vals := LagrangeValues(nodes, xi)
		for j := range vals {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, vals[j], 1e-13)
		}
	}
}

func TestPolynomialReproduction(t *testing.T) {
	// Interpolating P(x) = x^k at the Lobatto nodes recovers P and P'
	// at arbitrary points, for k <= p.
	for p := 1; p <= 6; p++ {
		nodes := GaussLobatto(p)
		for k := 0; k <= p; k++ {
			dofs := make([]float64, len(nodes))
			for i, x := range nodes {
				dofs[i] = math.Pow(x, float64(k))
			}
			for _, xi := range []float64{0.1, 0.47, 0.93} {
				vals := LagrangeValues(nodes, xi)
				derivs := LagrangeDerivatives(nodes, xi)
				var u, du float64
				for i := range dofs {
					u += vals[i] * dofs[i]
					du += derivs[i] * dofs[i]
				}
				exact := math.Pow(xi, float64(k))
				var dexact float64
				if k > 0 {
					dexact = float64(k) * math.Pow(xi, float64(k-1))
				}
				assert.InDelta(t, exact, u, 1e-12, "p=%d k=%d", p, k)
				assert.InDelta(t, dexact, du, 1e-11, "p=%d k=%d", p, k)
			}
		}
	}
}

func TestRuleTables(t *testing.T) {
	r := NewRule(3, 4)
	require.Equal(t, 4, r.N)
	require.Len(t, r.B, 16)
	require.Len(t, r.G, 16)

	// Each row of B sums to 1, each row of G sums to 0.
	for i := 0; i < r.Q; i++ {
		var sb, sg float64
		for j := 0; j < r.N; j++ {
			sb += r.B[i*r.N+j]
			sg += r.G[i*r.N+j]
		}
		assert.InDelta(t, 1.0, sb, 1e-14)
		assert.InDelta(t, 0.0, sg, 1e-13)
	}
}

func TestLookupCaches(t *testing.T) {
	a := Lookup(2, 3)
	b := Lookup(2, 3)
	assert.Same(t, a, b)

	c := Lookup(2, 4)
	assert.NotSame(t, a, c)
}
