package kernel

import "github.com/tensorfem/FEKernel/tensor"

// Interpolate evaluates the field and its physical-space gradient at
// every quadrature point:
//
//	u[ci]       = B(qz,kz) B(qy,ky) B(qx,kx) X[ci,kz,ky,kx]
//	gradU[ci,d] = (grad_ref u) * inv(J)   at each point
//
// x is the element DOF block [c,n,n,n], jac the per-quadrature Jacobian
// field [3,3,q,q,q]. vals [q^3,c] and grads [q^3,c,3] are overwritten.
// The contraction is sum-factorized: one axis per pass, intermediates
// staged in s.
func (h *Hex) Interpolate(x, jac, vals, grads []float64, s *Scratch) {
	n, q, nc := h.n, h.Q, h.NC
	b, g := h.b, h.g
	a1, a2 := s.A1, s.A2
	nnq := n * n * q
	nqq := n * q * q
	nq := q * q * q

	for ci := 0; ci < nc; ci++ {
		xc := x[ci*n*n*n:]

		// pass 1: contract kx
		for dz := 0; dz < n; dz++ {
			for dy := 0; dy < n; dy++ {
				xrow := xc[(dz*n+dy)*n:]
				for qx := 0; qx < q; qx++ {
					brow := b[qx*n:]
					grow := g[qx*n:]
					var s0, s1 float64
					for dx := 0; dx < n; dx++ {
						s0 += brow[dx] * xrow[dx]
						s1 += grow[dx] * xrow[dx]
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
					var s0, s1, s2 float64
					for dy := 0; dy < n; dy++ {
						v0 := a1[(dz*n+dy)*q+qx]
						v1 := a1[nnq+(dz*n+dy)*q+qx]
						s0 += brow[dy] * v0
						s1 += brow[dy] * v1
						s2 += grow[dy] * v0
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
					var u, g0, g1, g2 float64
					for dz := 0; dz < n; dz++ {
						v0 := a2[(dz*q+qy)*q+qx]
						u += brow[dz] * v0
						g0 += brow[dz] * a2[nqq+(dz*q+qy)*q+qx]
						g1 += brow[dz] * a2[2*nqq+(dz*q+qy)*q+qx]
						g2 += grow[dz] * v0
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

	// map reference gradients to physical coordinates
	for pt := 0; pt < nq; pt++ {
		inv := h.jacobianAt(jac, pt).Inv()
		for ci := 0; ci < nc; ci++ {
			gi := (pt*nc + ci) * 3
			gp := tensor.Vec3{grads[gi], grads[gi+1], grads[gi+2]}.MulMat(inv)
			grads[gi], grads[gi+1], grads[gi+2] = gp[0], gp[1], gp[2]
		}
	}
}

// Integrate accumulates the conjugate of Interpolate into residual:
//
//	residual[ci,kz,ky,kx] += sum_q ( B B B * source[ci]
//	                               + G B B * flux[ci,0]
//	                               + B G B * flux[ci,1]
//	                               + B B G * flux[ci,2] )
//
// sources [q^3,c] and fluxes [q^3,c,3] hold the material outputs at
// each quadrature point in physical coordinates; Integrate scales them
// by det(J)*w and maps the fluxes by inv(J^T) in place before the
// transposed contraction. residual is accumulated with +=, never
// zeroed, so contributions from several integrals sum cleanly.
func (h *Hex) Integrate(sources, fluxes, jac, residual []float64, s *Scratch) {
	h.PrepareQuadratureData(sources, fluxes, jac)
	h.integrateScaled(sources, fluxes, residual, s)
}

// PrepareQuadratureData applies the quadrature measure in place:
// sources *= dv and fluxes = flux * inv(J^T) * dv with
// dv = det(J) * w_qx * w_qy * w_qz. Integrate calls this itself; it is
// exported for callers that run the transposed contraction elsewhere
// (the device kernels consume pre-scaled data).
func (h *Hex) PrepareQuadratureData(sources, fluxes, jac []float64) {
	q, nc := h.Q, h.NC
	w := h.w
	for qz := 0; qz < q; qz++ {
		for qy := 0; qy < q; qy++ {
			for qx := 0; qx < q; qx++ {
				pt := (qz*q+qy)*q + qx
				jt := h.jacobianAt(jac, pt).Transpose()
				dv := jt.Det() * w[qx] * w[qy] * w[qz]
				invJT := jt.Inv()
				for ci := 0; ci < nc; ci++ {
					sources[pt*nc+ci] *= dv
					fi := (pt*nc + ci) * 3
					f := tensor.Vec3{fluxes[fi], fluxes[fi+1], fluxes[fi+2]}
					fr := f.MulMat(invJT).Scale(dv)
					fluxes[fi], fluxes[fi+1], fluxes[fi+2] = fr[0], fr[1], fr[2]
				}
			}
		}
	}
}

// integrateScaled runs the transposed three-pass contraction on
// already-scaled quadrature data. The scratch tiles are reused with
// permuted index meaning: A2 as [3, kx, qy, qz], A1 as [2, kx, ky, qz].
func (h *Hex) integrateScaled(sources, fluxes, residual []float64, s *Scratch) {
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
					var s0, s1, s2 float64
					for qx := 0; qx < q; qx++ {
						pt := (qz*q+qy)*q + qx
						fi := (pt*nc + ci) * 3
						s0 += b[qx*n+dx]*sources[pt*nc+ci] + g[qx*n+dx]*fluxes[fi]
						s1 += b[qx*n+dx] * fluxes[fi+1]
						s2 += b[qx*n+dx] * fluxes[fi+2]
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
					var s0, s1 float64
					for qy := 0; qy < q; qy++ {
						s0 += b[qy*n+dy]*a2[(dx*q+qy)*q+qz] + g[qy*n+dy]*a2[nqq+(dx*q+qy)*q+qz]
						s1 += b[qy*n+dy] * a2[2*nqq+(dx*q+qy)*q+qz]
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
					var sum float64
					for qz := 0; qz < q; qz++ {
						sum += b[qz*n+dz]*a1[(dx*n+dy)*q+qz] + g[qz*n+dz]*a1[nnq+(dx*n+dy)*q+qz]
					}
					residual[((ci*n+dz)*n+dy)*n+dx] += sum
				}
			}
		}
	}
}

// jacobianAt loads J[r][c] = dx_r/dxi_c at quadrature point pt.
func (h *Hex) jacobianAt(jac []float64, pt int) tensor.Mat3 {
	nq := h.Q * h.Q * h.Q
	var J tensor.Mat3
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			J[r][c] = jac[(r*3+c)*nq+pt]
		}
	}
	return J
}
