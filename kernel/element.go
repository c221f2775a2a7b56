// Package kernel implements sum-factorized evaluation of H1 Lagrange
// fields on tensor-product elements: interpolation of values and
// physical-space gradients at Gauss-Legendre quadrature points, and the
// conjugate integration of quadrature-point sources and fluxes back to
// an element residual.
//
// All element data lives in flat row-major []float64 slices with fixed
// layouts (n = p+1, q quadrature points per dimension, c components):
//
//	DOFs, residual:   [c, n, n, n]   index ((ci*n+kz)*n+ky)*n+kx
//	Jacobians:        [3, 3, q, q, q] with J[r][c] = dx_r/dxi_c
//	values, sources:  [q^3, c]
//	gradients, fluxes:[q^3, c, 3]
//
// Quadrature points are ordered (qz slowest, qy, qx fastest), matching
// the DOF ordering. Kernels never allocate: intermediates go to a
// caller-provided Scratch, outputs to caller-provided slices. One
// Scratch must not be shared between concurrent element evaluations.
package kernel

import (
	"fmt"

	"github.com/tensorfem/FEKernel/quadrature"
)

// Hex evaluates fields with NC components on hexahedral elements with
// an order-P Gauss-Lobatto nodal basis, sampled at Q^3 Gauss-Legendre
// points. A Hex is immutable after construction and safe to share
// across goroutines.
type Hex struct {
	P, Q, NC int
	n        int

	rule *quadrature.Rule
	b, g []float64 // [q][n] basis values and derivatives
	w    []float64 // q 1D weights
}

// NewHex builds the kernel for (p, q, nc). Basis tables are cached per
// (p, q), so constructing many Hex values is cheap.
func NewHex(p, q, nc int) *Hex {
	if p < 0 || q < 1 || nc < 1 {
		panic(fmt.Sprintf("kernel: invalid hex parameters p=%d q=%d nc=%d", p, q, nc))
	}
	r := quadrature.Lookup(p, q)
	return &Hex{
		P: p, Q: q, NC: nc,
		n:    p + 1,
		rule: r,
		b:    r.B,
		g:    r.G,
		w:    r.Weights1D,
	}
}

// Rule returns the 1D quadrature and basis tables the kernel was built
// from.
func (h *Hex) Rule() *quadrature.Rule { return h.rule }

// NumDofs returns the length of a DOF or residual slice.
func (h *Hex) NumDofs() int { return h.NC * h.n * h.n * h.n }

// NumQuad returns the number of quadrature points, q^3.
func (h *Hex) NumQuad() int { return h.Q * h.Q * h.Q }

// JacobianLen returns the length of a Jacobian slice, 9*q^3.
func (h *Hex) JacobianLen() int { return 9 * h.NumQuad() }

// ValuesLen returns the length of a values or sources slice.
func (h *Hex) ValuesLen() int { return h.NumQuad() * h.NC }

// GradientsLen returns the length of a gradients or fluxes slice.
func (h *Hex) GradientsLen() int { return h.NumQuad() * h.NC * 3 }

// Scratch holds the two intermediate tiles of the three-pass
// contraction:
//
//	A1 [2, n, n, q]: after pass 1, B*X and G*X along the fastest axis
//	A2 [3, n, q, q]: after pass 2, B*(B*X), B*(G*X), G*(B*X)
//
// The transposed integrate passes reuse the same storage with permuted
// index meaning ([3, q, q, n] and [2, q, n, n]); the tile sizes are
// identical either way. The kernel only reads and writes a Scratch,
// never allocates one.
type Scratch struct {
	A1, A2 []float64
}

// NewScratch allocates scratch tiles sized for h. Allocate one per
// worker, not per element.
func (h *Hex) NewScratch() *Scratch {
	return &Scratch{
		A1: make([]float64, 2*h.n*h.n*h.Q),
		A2: make([]float64, 3*h.n*h.Q*h.Q),
	}
}
