package kernel

import (
	"github.com/tensorfem/FEKernel/quadrature"
	"github.com/tensorfem/FEKernel/tensor"
)

// ShapeFunctions returns the n^3 tensor-product shape function values
// at reference point xi in [0,1]^3, ordered (kz slowest, ky, kx
// fastest) to match the DOF layout.
func (h *Hex) ShapeFunctions(xi tensor.Vec3) []float64 {
	nx := quadrature.LagrangeValues(h.rule.Nodes1D, xi[0])
	ny := quadrature.LagrangeValues(h.rule.Nodes1D, xi[1])
	nz := quadrature.LagrangeValues(h.rule.Nodes1D, xi[2])

	n := h.n
	out := make([]float64, n*n*n)
	idx := 0
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				out[idx] = nx[i] * ny[j] * nz[k]
				idx++
			}
		}
	}
	return out
}

// ShapeGradients returns the n^3 x 3 reference-space shape function
// gradients at xi, flattened row-major [ndof, 3].
func (h *Hex) ShapeGradients(xi tensor.Vec3) []float64 {
	nx := quadrature.LagrangeValues(h.rule.Nodes1D, xi[0])
	ny := quadrature.LagrangeValues(h.rule.Nodes1D, xi[1])
	nz := quadrature.LagrangeValues(h.rule.Nodes1D, xi[2])
	dx := quadrature.LagrangeDerivatives(h.rule.Nodes1D, xi[0])
	dy := quadrature.LagrangeDerivatives(h.rule.Nodes1D, xi[1])
	dz := quadrature.LagrangeDerivatives(h.rule.Nodes1D, xi[2])

	n := h.n
	out := make([]float64, n*n*n*3)
	idx := 0
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				out[idx] = dx[i] * ny[j] * nz[k]
				out[idx+1] = nx[i] * dy[j] * nz[k]
				out[idx+2] = nx[i] * ny[j] * dz[k]
				idx += 3
			}
		}
	}
	return out
}

// ShapeFunctions returns the n^2 tensor-product shape function values
// at reference point xi in [0,1]^2, ordered (ky slowest, kx fastest).
func (h *Quad) ShapeFunctions(xi tensor.Vec2) []float64 {
	nx := quadrature.LagrangeValues(h.rule.Nodes1D, xi[0])
	ny := quadrature.LagrangeValues(h.rule.Nodes1D, xi[1])

	n := h.n
	out := make([]float64, n*n)
	idx := 0
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			out[idx] = nx[i] * ny[j]
			idx++
		}
	}
	return out
}

// ShapeGradients returns the n^2 x 2 reference-space shape function
// gradients at xi, flattened row-major [ndof, 2].
func (h *Quad) ShapeGradients(xi tensor.Vec2) []float64 {
	nx := quadrature.LagrangeValues(h.rule.Nodes1D, xi[0])
	ny := quadrature.LagrangeValues(h.rule.Nodes1D, xi[1])
	dx := quadrature.LagrangeDerivatives(h.rule.Nodes1D, xi[0])
	dy := quadrature.LagrangeDerivatives(h.rule.Nodes1D, xi[1])

	n := h.n
	out := make([]float64, n*n*2)
	idx := 0
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			out[idx] = dx[i] * ny[j]
			out[idx+1] = nx[i] * dy[j]
			idx += 2
		}
	}
	return out
}
