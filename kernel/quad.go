package kernel

import (
	"fmt"

	"github.com/tensorfem/FEKernel/quadrature"
	"github.com/tensorfem/FEKernel/tensor"
)

// Quad is the 2D counterpart of Hex on quadrilateral elements: the same
// sum-factorized contraction with one fewer pass. Layouts drop the z
// axis:
//
//	DOFs, residual:    [c, n, n]    index (ci*n+ky)*n+kx
//	Jacobians:         [2, 2, q, q]
//	values, sources:   [q^2, c]
//	gradients, fluxes: [q^2, c, 2]
type Quad struct {
	P, Q, NC int
	n        int

	rule *quadrature.Rule
	b, g []float64
	w    []float64
}

// NewQuad builds the 2D kernel for (p, q, nc).
func NewQuad(p, q, nc int) *Quad {
	if p < 0 || q < 1 || nc < 1 {
		panic(fmt.Sprintf("kernel: invalid quad parameters p=%d q=%d nc=%d", p, q, nc))
	}
	r := quadrature.Lookup(p, q)
	return &Quad{
		P: p, Q: q, NC: nc,
		n:    p + 1,
		rule: r,
		b:    r.B,
		g:    r.G,
		w:    r.Weights1D,
	}
}

// Rule returns the 1D quadrature and basis tables.
func (h *Quad) Rule() *quadrature.Rule { return h.rule }

// NumDofs returns the length of a DOF or residual slice.
func (h *Quad) NumDofs() int { return h.NC * h.n * h.n }

// NumQuad returns the number of quadrature points, q^2.
func (h *Quad) NumQuad() int { return h.Q * h.Q }

// JacobianLen returns the length of a Jacobian slice, 4*q^2.
func (h *Quad) JacobianLen() int { return 4 * h.NumQuad() }

// ValuesLen returns the length of a values or sources slice.
func (h *Quad) ValuesLen() int { return h.NumQuad() * h.NC }

// GradientsLen returns the length of a gradients or fluxes slice.
func (h *Quad) GradientsLen() int { return h.NumQuad() * h.NC * 2 }

// QuadScratch holds the single intermediate tile of the 2D contraction,
// A1 [2, n, q]; the transposed integrate pass reuses it as [2, n, q]
// with the quadrature index meaning qy instead of qx.
type QuadScratch struct {
	A1 []float64
}

// NewScratch allocates a scratch tile sized for h.
func (h *Quad) NewScratch() *QuadScratch {
	return &QuadScratch{A1: make([]float64, 2*h.n*h.Q)}
}

// Interpolate evaluates values and physical-space gradients at every
// quadrature point. vals [q^2,c] and grads [q^2,c,2] are overwritten.
func (h *Quad) Interpolate(x, jac, vals, grads []float64, s *QuadScratch) {
	n, q, nc := h.n, h.Q, h.NC
	b, g := h.b, h.g
	a1 := s.A1
	nq := q * q

	for ci := 0; ci < nc; ci++ {
		xc := x[ci*n*n:]

		// pass 1: contract kx
		for dy := 0; dy < n; dy++ {
			xrow := xc[dy*n:]
			for qx := 0; qx < q; qx++ {
				brow := b[qx*n:]
				grow := g[qx*n:]
				var s0, s1 float64
				for dx := 0; dx < n; dx++ {
					s0 += brow[dx] * xrow[dx]
					s1 += grow[dx] * xrow[dx]
				}
				a1[dy*q+qx] = s0
				a1[n*q+dy*q+qx] = s1
			}
		}

		// pass 2: contract ky
		for qy := 0; qy < q; qy++ {
			brow := b[qy*n:]
			grow := g[qy*n:]
			for qx := 0; qx < q; qx++ {
				var u, g0, g1 float64
				for dy := 0; dy < n; dy++ {
					v0 := a1[dy*q+qx]
					u += brow[dy] * v0
					g0 += brow[dy] * a1[n*q+dy*q+qx]
					g1 += grow[dy] * v0
				}
				pt := qy*q + qx
				vals[pt*nc+ci] = u
				gi := (pt*nc + ci) * 2
				grads[gi] = g0
				grads[gi+1] = g1
			}
		}
	}

	for pt := 0; pt < nq; pt++ {
		inv := h.jacobianAt(jac, pt).Inv()
		for ci := 0; ci < nc; ci++ {
			gi := (pt*nc + ci) * 2
			gp := tensor.Vec2{grads[gi], grads[gi+1]}.MulMat(inv)
			grads[gi], grads[gi+1] = gp[0], gp[1]
		}
	}
}

// Integrate accumulates the conjugate contraction into residual,
// scaling sources by det(J)*w and mapping fluxes by inv(J^T) in place
// first. residual is accumulated with +=, never zeroed.
func (h *Quad) Integrate(sources, fluxes, jac, residual []float64, s *QuadScratch) {
	n, q, nc := h.n, h.Q, h.NC
	b, g := h.b, h.g
	w := h.w
	a1 := s.A1

	for qy := 0; qy < q; qy++ {
		for qx := 0; qx < q; qx++ {
			pt := qy*q + qx
			jt := h.jacobianAt(jac, pt).Transpose()
			dv := jt.Det() * w[qx] * w[qy]
			invJT := jt.Inv()
			for ci := 0; ci < nc; ci++ {
				sources[pt*nc+ci] *= dv
				fi := (pt*nc + ci) * 2
				f := tensor.Vec2{fluxes[fi], fluxes[fi+1]}
				fr := f.MulMat(invJT).Scale(dv)
				fluxes[fi], fluxes[fi+1] = fr[0], fr[1]
			}
		}
	}

	for ci := 0; ci < nc; ci++ {

		// pass 1: contract qx, tile reused as [2, kx, qy]
		for dx := 0; dx < n; dx++ {
			for qy := 0; qy < q; qy++ {
				var s0, s1 float64
				for qx := 0; qx < q; qx++ {
					pt := qy*q + qx
					fi := (pt*nc + ci) * 2
					s0 += b[qx*n+dx]*sources[pt*nc+ci] + g[qx*n+dx]*fluxes[fi]
					s1 += b[qx*n+dx] * fluxes[fi+1]
				}
				a1[dx*q+qy] = s0
				a1[n*q+dx*q+qy] = s1
			}
		}

		// pass 2: contract qy, accumulate
		for dx := 0; dx < n; dx++ {
			for dy := 0; dy < n; dy++ {
				var sum float64
				for qy := 0; qy < q; qy++ {
					sum += b[qy*n+dy]*a1[dx*q+qy] + g[qy*n+dy]*a1[n*q+dx*q+qy]
				}
				residual[(ci*n+dy)*n+dx] += sum
			}
		}
	}
}

func (h *Quad) jacobianAt(jac []float64, pt int) tensor.Mat2 {
	nq := h.Q * h.Q
	var J tensor.Mat2
	for r := 0; r < 2; r++ {
		for c := 0; c < 2; c++ {
			J[r][c] = jac[(r*2+c)*nq+pt]
		}
	}
	return J
}
