// Package tensor provides the small fixed-shape linear algebra used
// inside element kernels: 2- and 3-vectors, 2x2 and 3x3 matrices with
// closed-form determinants and inverses, and a forward-mode dual
// scalar. Everything is a value type; no allocation, no aliasing.
package tensor

// Vec2 is a 2-vector.
type Vec2 [2]float64

// Vec3 is a 3-vector.
type Vec3 [3]float64

// Mat2 is a row-major 2x2 matrix.
type Mat2 [2][2]float64

// Mat3 is a row-major 3x3 matrix.
type Mat3 [3][3]float64

func (a Vec2) Add(b Vec2) Vec2 { return Vec2{a[0] + b[0], a[1] + b[1]} }
func (a Vec2) Sub(b Vec2) Vec2 { return Vec2{a[0] - b[0], a[1] - b[1]} }

func (a Vec2) Scale(s float64) Vec2 { return Vec2{s * a[0], s * a[1]} }

func (a Vec2) Dot(b Vec2) float64 { return a[0]*b[0] + a[1]*b[1] }

// MulMat treats a as a row vector and returns a*m.
func (a Vec2) MulMat(m Mat2) Vec2 {
	return Vec2{
		a[0]*m[0][0] + a[1]*m[1][0],
		a[0]*m[0][1] + a[1]*m[1][1],
	}
}

func (a Vec3) Add(b Vec3) Vec3 { return Vec3{a[0] + b[0], a[1] + b[1], a[2] + b[2]} }
func (a Vec3) Sub(b Vec3) Vec3 { return Vec3{a[0] - b[0], a[1] - b[1], a[2] - b[2]} }

func (a Vec3) Scale(s float64) Vec3 { return Vec3{s * a[0], s * a[1], s * a[2]} }

func (a Vec3) Dot(b Vec3) float64 { return a[0]*b[0] + a[1]*b[1] + a[2]*b[2] }

// MulMat treats a as a row vector and returns a*m.
func (a Vec3) MulMat(m Mat3) Vec3 {
	return Vec3{
		a[0]*m[0][0] + a[1]*m[1][0] + a[2]*m[2][0],
		a[0]*m[0][1] + a[1]*m[1][1] + a[2]*m[2][1],
		a[0]*m[0][2] + a[1]*m[1][2] + a[2]*m[2][2],
	}
}

func (m Mat2) Add(b Mat2) Mat2 {
	return Mat2{
		{m[0][0] + b[0][0], m[0][1] + b[0][1]},
		{m[1][0] + b[1][0], m[1][1] + b[1][1]},
	}
}

func (m Mat2) Sub(b Mat2) Mat2 {
	return Mat2{
		{m[0][0] - b[0][0], m[0][1] - b[0][1]},
		{m[1][0] - b[1][0], m[1][1] - b[1][1]},
	}
}

func (m Mat2) Scale(s float64) Mat2 {
	return Mat2{
		{s * m[0][0], s * m[0][1]},
		{s * m[1][0], s * m[1][1]},
	}
}

// MulVec returns m*v with v as a column vector.
func (m Mat2) MulVec(v Vec2) Vec2 {
	return Vec2{
		m[0][0]*v[0] + m[0][1]*v[1],
		m[1][0]*v[0] + m[1][1]*v[1],
	}
}

func (m Mat2) Mul(b Mat2) Mat2 {
	var out Mat2
	for i := 0; i < 2; i++ {
		for j := 0; j < 2; j++ {
			out[i][j] = m[i][0]*b[0][j] + m[i][1]*b[1][j]
		}
	}
	return out
}

func (m Mat2) Transpose() Mat2 {
	return Mat2{
		{m[0][0], m[1][0]},
		{m[0][1], m[1][1]},
	}
}

func (m Mat2) Det() float64 {
	return m[0][0]*m[1][1] - m[0][1]*m[1][0]
}

// Inv returns the inverse by the adjugate formula. A singular input
// produces Inf/NaN entries, not an error.
func (m Mat2) Inv() Mat2 {
	inv := 1.0 / m.Det()
	return Mat2{
		{inv * m[1][1], -inv * m[0][1]},
		{-inv * m[1][0], inv * m[0][0]},
	}
}

func (m Mat3) Add(b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][j] + b[i][j]
		}
	}
	return out
}

func (m Mat3) Sub(b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][j] - b[i][j]
		}
	}
	return out
}

func (m Mat3) Scale(s float64) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = s * m[i][j]
		}
	}
	return out
}

// MulVec returns m*v with v as a column vector.
func (m Mat3) MulVec(v Vec3) Vec3 {
	return Vec3{
		m[0][0]*v[0] + m[0][1]*v[1] + m[0][2]*v[2],
		m[1][0]*v[0] + m[1][1]*v[1] + m[1][2]*v[2],
		m[2][0]*v[0] + m[2][1]*v[1] + m[2][2]*v[2],
	}
}

func (m Mat3) Mul(b Mat3) Mat3 {
	var out Mat3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			out[i][j] = m[i][0]*b[0][j] + m[i][1]*b[1][j] + m[i][2]*b[2][j]
		}
	}
	return out
}

func (m Mat3) Transpose() Mat3 {
	return Mat3{
		{m[0][0], m[1][0], m[2][0]},
		{m[0][1], m[1][1], m[2][1]},
		{m[0][2], m[1][2], m[2][2]},
	}
}

func (m Mat3) Det() float64 {
	return m[0][0]*(m[1][1]*m[2][2]-m[1][2]*m[2][1]) -
		m[0][1]*(m[1][0]*m[2][2]-m[1][2]*m[2][0]) +
		m[0][2]*(m[1][0]*m[2][1]-m[1][1]*m[2][0])
}

// Inv returns the inverse by the cofactor formula, with no pivoting. A
// singular input produces Inf/NaN entries, not an error.
func (m Mat3) Inv() Mat3 {
	inv := 1.0 / m.Det()
	return Mat3{
		{
			inv * (m[1][1]*m[2][2] - m[1][2]*m[2][1]),
			inv * (m[0][2]*m[2][1] - m[0][1]*m[2][2]),
			inv * (m[0][1]*m[1][2] - m[0][2]*m[1][1]),
		},
		{
			inv * (m[1][2]*m[2][0] - m[1][0]*m[2][2]),
			inv * (m[0][0]*m[2][2] - m[0][2]*m[2][0]),
			inv * (m[0][2]*m[1][0] - m[0][0]*m[1][2]),
		},
		{
			inv * (m[1][0]*m[2][1] - m[1][1]*m[2][0]),
			inv * (m[0][1]*m[2][0] - m[0][0]*m[2][1]),
			inv * (m[0][0]*m[1][1] - m[0][1]*m[1][0]),
		},
	}
}

// Identity2 returns the 2x2 identity.
func Identity2() Mat2 { return Mat2{{1, 0}, {0, 1}} }

// Identity3 returns the 3x3 identity.
func Identity3() Mat3 { return Mat3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}} }
