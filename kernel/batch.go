package kernel

// Lane-batched variant: every scalar in the DOFs, scratch tiles and
// outputs becomes a fixed-width vector of LaneWidth independent
// elements, while the basis tables stay scalar. There are no cross-lane
// dependencies, so the inner loops are straight-line elementwise
// arithmetic the compiler can vectorize.
//
// Batched semantics differ from the scalar kernels in one deliberate
// way: InterpolateBatch returns REFERENCE-space gradients and
// IntegrateBatch consumes sources and fluxes that the caller has
// already scaled by det(J)*w and mapped by inv(J^T). The batched caller
// owns the per-element Jacobian map; TestInterpolateBatchMatchesScalar
// pins this contract against the scalar kernel with identity Jacobians.

// LaneWidth is the number of elements processed per batched call.
const LaneWidth = 4

// Lane is one scalar slot across LaneWidth elements.
type Lane [LaneWidth]float64

// BatchScratch is the lane-valued counterpart of Scratch.
type BatchScratch struct {
	A1, A2 []Lane
}

// NewBatchScratch allocates lane-valued scratch tiles sized for h.
func (h *Hex) NewBatchScratch() *BatchScratch {
	return &BatchScratch{
		A1: make([]Lane, 2*h.n*h.n*h.Q),
		A2: make([]Lane, 3*h.n*h.Q*h.Q),
	}
}

// InterpolateBatch evaluates values and reference-space gradients for
// LaneWidth elements at once. x, vals and grads use the scalar layouts
// with each entry widened to a Lane; vals and grads are overwritten.
func (h *Hex) InterpolateBatch(x []Lane, vals, grads []Lane, s *BatchScratch) {
	n, q, nc := h.n, h.Q, h.NC
	b, g := h.b, h.g
	a1, a2 := s.A1, s.A2
	nnq := n * n * q
	nqq := n * q * q

	for ci := 0; ci < nc; ci++ {
		xc := x[ci*n*n*n:]

		// pass 1: contract kx
		for dz := 0; dz < n; dz++ {
			for dy := 0; dy < n; dy++ {
				xrow := xc[(dz*n+dy)*n:]
				for qx := 0; qx < q; qx++ {
					brow := b[qx*n:]
					grow := g[qx*n:]
					var s0, s1 Lane
					for dx := 0; dx < n; dx++ {
						bv, gv := brow[dx], grow[dx]
						xv := &xrow[dx]
						for l := 0; l < LaneWidth; l++ {
							s0[l] += bv * xv[l]
							s1[l] += gv * xv[l]
						}
					}
					a1[(dz*n+dy)*q+qx] = s0
					a1[nnq+(dz*n+dy)*q+qx] = s1
				}
			}
		}

		// pass 2: contract ky
		for dz := 0; dz < n; dz++ {
			for qy := 0; qy < q; qy++ {
				brow := b[qy*n:]
				grow := g[qy*n:]
				for qx := 0; qx < q; qx++ {
					var s0, s1, s2 Lane
					for dy := 0; dy < n; dy++ {
						bv, gv := brow[dy], grow[dy]
						v0 := &a1[(dz*n+dy)*q+qx]
						v1 := &a1[nnq+(dz*n+dy)*q+qx]
						for l := 0; l < LaneWidth; l++ {
							s0[l] += bv * v0[l]
							s1[l] += bv * v1[l]
							s2[l] += gv * v0[l]
						}
					}
					a2[(dz*q+qy)*q+qx] = s0
					a2[nqq+(dz*q+qy)*q+qx] = s1
					a2[2*nqq+(dz*q+qy)*q+qx] = s2
				}
			}
		}

		// pass 3: contract kz
		for qz := 0; qz < q; qz++ {
			brow := b[qz*n:]
			grow := g[qz*n:]
			for qy := 0; qy < q; qy++ {
				for qx := 0; qx < q; qx++ {
					var u, g0, g1, g2 Lane
					for dz := 0; dz < n; dz++ {
						bv, gv := brow[dz], grow[dz]
						v0 := &a2[(dz*q+qy)*q+qx]
						v1 := &a2[nqq+(dz*q+qy)*q+qx]
						v2 := &a2[2*nqq+(dz*q+qy)*q+qx]
						for l := 0; l < LaneWidth; l++ {
							u[l] += bv * v0[l]
							g0[l] += bv * v1[l]
							g1[l] += bv * v2[l]
							g2[l] += gv * v0[l]
						}
					}
					pt := (qz*q+qy)*q + qx
					vals[pt*nc+ci] = u
					gi := (pt*nc + ci) * 3
					grads[gi] = g0
					grads[gi+1] = g1
					grads[gi+2] = g2
				}
			}
		}
	}
}

// IntegrateBatch accumulates the transposed contraction for LaneWidth
// elements at once. sources and fluxes must already carry the
// quadrature measure and the inv(J^T) flux map; residual is accumulated
// with +=, never zeroed.
func (h *Hex) IntegrateBatch(sources, fluxes []Lane, residual []Lane, s *BatchScratch) {
	n, q, nc := h.n, h.Q, h.NC
	b, g := h.b, h.g
	a1, a2 := s.A1, s.A2
	nnq := n * n * q
	nqq := n * q * q

	for ci := 0; ci < nc; ci++ {

		// pass 1: contract qx
		for dx := 0; dx < n; dx++ {
			for qy := 0; qy < q; qy++ {
				for qz := 0; qz < q; qz++ {
					var s0, s1, s2 Lane
					for qx := 0; qx < q; qx++ {
						pt := (qz*q+qy)*q + qx
						bv, gv := b[qx*n+dx], g[qx*n+dx]
						sv := &sources[pt*nc+ci]
						fi := (pt*nc + ci) * 3
						f0, f1, f2 := &fluxes[fi], &fluxes[fi+1], &fluxes[fi+2]
						for l := 0; l < LaneWidth; l++ {
							s0[l] += bv*sv[l] + gv*f0[l]
							s1[l] += bv * f1[l]
							s2[l] += bv * f2[l]
						}
					}
					a2[(dx*q+qy)*q+qz] = s0
					a2[nqq+(dx*q+qy)*q+qz] = s1
					a2[2*nqq+(dx*q+qy)*q+qz] = s2
				}
			}
		}

		// pass 2: contract qy
		for dx := 0; dx < n; dx++ {
			for dy := 0; dy < n; dy++ {
				for qz := 0; qz < q; qz++ {
					var s0, s1 Lane
					for qy := 0; qy < q; qy++ {
						bv, gv := b[qy*n+dy], g[qy*n+dy]
						v0 := &a2[(dx*q+qy)*q+qz]
						v1 := &a2[nqq+(dx*q+qy)*q+qz]
						v2 := &a2[2*nqq+(dx*q+qy)*q+qz]
						for l := 0; l < LaneWidth; l++ {
							s0[l] += bv*v0[l] + gv*v1[l]
							s1[l] += bv * v2[l]
						}
					}
					a1[(dx*n+dy)*q+qz] = s0
					a1[nnq+(dx*n+dy)*q+qz] = s1
				}
			}
		}

		// pass 3: contract qz, accumulate
		for dx := 0; dx < n; dx++ {
			for dy := 0; dy < n; dy++ {
				for dz := 0; dz < n; dz++ {
					var sum Lane
					for qz := 0; qz < q; qz++ {
						bv, gv := b[qz*n+dz], g[qz*n+dz]
						v0 := &a1[(dx*n+dy)*q+qz]
						v1 := &a1[nnq+(dx*n+dy)*q+qz]
						for l := 0; l < LaneWidth; l++ {
							sum[l] += bv*v0[l] + gv*v1[l]
						}
					}
					r := &residual[((ci*n+dz)*n+dy)*n+dx]
					for l := 0; l < LaneWidth; l++ {
						r[l] += sum[l]
					}
				}
			}
		}
	}
}

// PackLanes interleaves LaneWidth per-element scalar slices into lane
// form: dst[i][l] = src[l][i]. All slices must have equal length.
func PackLanes(dst []Lane, src [][]float64) {
	for l, s := range src {
		for i, v := range s {
			dst[i][l] = v
		}
	}
}

// UnpackLanes splits lane data back into per-element scalar slices:
// dst[l][i] = src[i][l].
func UnpackLanes(dst [][]float64, src []Lane) {
	for l, d := range dst {
		for i := range d {
			d[i] = src[i][l]
		}
	}
}
