package tensor

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMat3DetInv(t *testing.T) {
	m := Mat3{
		{2, 1, 0},
		{0, 3, 1},
		{1, 0, 2},
	}
	// det by cofactor expansion: 2*(6-0) - 1*(0-1) + 0 = 13
	assert.InDelta(t, 13.0, m.Det(), 1e-14)

	inv := m.Inv()
	id := m.Mul(inv)
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			want := 0.0
			if i == j {
				want = 1.0
			}
			assert.InDelta(t, want, id[i][j], 1e-14)
		}
	}
}

func TestMat2DetInv(t *testing.T) {
	m := Mat2{{3, 1}, {2, 4}}
	assert.InDelta(t, 10.0, m.Det(), 1e-14)

	id := m.Mul(m.Inv())
	assert.InDelta(t, 1.0, id[0][0], 1e-14)
	assert.InDelta(t, 0.0, id[0][1], 1e-14)
	assert.InDelta(t, 0.0, id[1][0], 1e-14)
	assert.InDelta(t, 1.0, id[1][1], 1e-14)
}

func TestSingularInvPropagatesNonFinite(t *testing.T) {
	var m Mat3 // zero matrix, det = 0
	inv := m.Inv()
	assert.True(t, math.IsNaN(inv[0][0]) || math.IsInf(inv[0][0], 0))
}

func TestTranspose(t *testing.T) {
	m := Mat3{{1, 2, 3}, {4, 5, 6}, {7, 8, 9}}
	mt := m.Transpose()
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			assert.Equal(t, m[i][j], mt[j][i])
		}
	}
	assert.Equal(t, m, m.Transpose().Transpose())
}

func TestRowVectorMatProduct(t *testing.T) {
	// v.MulMat(m) must agree with m.Transpose().MulVec(v).
	v := Vec3{1, -2, 3}
	m := Mat3{{2, 0, 1}, {1, 3, 0}, {0, 1, 4}}
	a := v.MulMat(m)
	b := m.Transpose().MulVec(v)
	for i := 0; i < 3; i++ {
		assert.InDelta(t, b[i], a[i], 1e-15)
	}
}

func TestVecOps(t *testing.T) {
	a := Vec3{1, 2, 3}
	b := Vec3{4, 5, 6}
	assert.Equal(t, Vec3{5, 7, 9}, a.Add(b))
	assert.Equal(t, Vec3{-3, -3, -3}, a.Sub(b))
	assert.Equal(t, Vec3{2, 4, 6}, a.Scale(2))
	assert.InDelta(t, 32.0, a.Dot(b), 1e-15)

	c := Vec2{1, 2}
	d := Vec2{3, 4}
	assert.InDelta(t, 11.0, c.Dot(d), 1e-15)
}

func TestDualArithmetic(t *testing.T) {
	// f(x, y) = x*y + x^2 at (3, 5): f = 24, df/dx = y + 2x = 11, df/dy = x = 3
	x := Variable(3, 2, 0)
	y := Variable(5, 2, 1)

	f := x.Mul(y).Add(x.Mul(x))
	assert.InDelta(t, 24.0, f.Val, 1e-14)
	assert.InDelta(t, 11.0, f.Grad[0], 1e-14)
	assert.InDelta(t, 3.0, f.Grad[1], 1e-14)
}

func TestDualChainRule(t *testing.T) {
	// g(x) = sqrt(exp(x) / (x + 1)) at x = 1
	x := Variable(1, 1, 0)
	one := Constant(1, 1)

	g := x.Exp().Div(x.Add(one)).Sqrt()

	v := math.Sqrt(math.E / 2)
	// g' = g/2 * (1 - 1/(x+1)) at x=1 -> g/2 * 1/2
	assert.InDelta(t, v, g.Val, 1e-14)
	assert.InDelta(t, v/4, g.Grad[0], 1e-14)
}

func TestDualLog(t *testing.T) {
	x := Variable(2, 1, 0)
	f := x.Log()
	assert.InDelta(t, math.Log(2), f.Val, 1e-15)
	assert.InDelta(t, 0.5, f.Grad[0], 1e-15)
}
