package kernel

import "github.com/tensorfem/FEKernel/tensor"

// Specialized entry points for physics that only needs one side of the
// value/gradient pair. Each touches only the scratch planes it uses, so
// a full Scratch works for all of them.

// InterpolateValues evaluates only the field values at every quadrature
// point. No Jacobians are needed. vals [q^3,c] is overwritten.
func (h *Hex) InterpolateValues(x, vals []float64, s *Scratch) {
	n, q, nc := h.n, h.Q, h.NC
	b := h.b
	a1, a2 := s.A1, s.A2

	for ci := 0; ci < nc; ci++ {
		xc := x[ci*n*n*n:]

		for dz := 0; dz < n; dz++ {
			for dy := 0; dy < n; dy++ {
				xrow := xc[(dz*n+dy)*n:]
				for qx := 0; qx < q; qx++ {
					brow := b[qx*n:]
					var sum float64
					for dx := 0; dx < n; dx++ {
						sum += brow[dx] * xrow[dx]
					}
					a1[(dz*n+dy)*q+qx] = sum
				}
			}
		}

		for dz := 0; dz < n; dz++ {
			for qy := 0; qy < q; qy++ {
				brow := b[qy*n:]
				for qx := 0; qx < q; qx++ {
					var sum float64
					for dy := 0; dy < n; dy++ {
						sum += brow[dy] * a1[(dz*n+dy)*q+qx]
					}
					a2[(dz*q+qy)*q+qx] = sum
				}
			}
		}

		for qz := 0; qz < q; qz++ {
			brow := b[qz*n:]
			for qy := 0; qy < q; qy++ {
				for qx := 0; qx < q; qx++ {
					var sum float64
					for dz := 0; dz < n; dz++ {
						sum += brow[dz] * a2[(dz*q+qy)*q+qx]
					}
					vals[((qz*q+qy)*q+qx)*nc+ci] = sum
				}
			}
		}
	}
}

// InterpolateGradients evaluates only the physical-space gradients at
// every quadrature point. grads [q^3,c,3] is overwritten.
func (h *Hex) InterpolateGradients(x, jac, grads []float64, s *Scratch) {
	n, q, nc := h.n, h.Q, h.NC
	b, g := h.b, h.g
	a1, a2 := s.A1, s.A2
	nnq := n * n * q
	nqq := n * q * q
	nq := q * q * q

	for ci := 0; ci < nc; ci++ {
		xc := x[ci*n*n*n:]

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

		for dz := 0; dz < n; dz++ {
			for qy := 0; qy < q; qy++ {
				brow := b[qy*n:]
				grow := g[qy*n:]
				for qx := 0; qx < q; qx++ {
					var s0, s1, s2 float64
					for dy := 0; dy < n; dy++ {
						v0 := a1[(dz*n+dy)*q+qx]
						s0 += brow[dy] * v0
						s1 += brow[dy] * a1[nnq+(dz*n+dy)*q+qx]
						s2 += grow[dy] * v0
					}
					a2[(dz*q+qy)*q+qx] = s0
					a2[nqq+(dz*q+qy)*q+qx] = s1
					a2[2*nqq+(dz*q+qy)*q+qx] = s2
				}
			}
		}

		for qz := 0; qz < q; qz++ {
			brow := b[qz*n:]
			grow := g[qz*n:]
			for qy := 0; qy < q; qy++ {
				for qx := 0; qx < q; qx++ {
					var g0, g1, g2 float64
					for dz := 0; dz < n; dz++ {
						g0 += brow[dz] * a2[nqq+(dz*q+qy)*q+qx]
						g1 += brow[dz] * a2[2*nqq+(dz*q+qy)*q+qx]
						g2 += grow[dz] * a2[(dz*q+qy)*q+qx]
					}
					gi := (((qz*q+qy)*q+qx)*nc + ci) * 3
					grads[gi] = g0
					grads[gi+1] = g1
					grads[gi+2] = g2
				}
			}
		}
	}

	for pt := 0; pt < nq; pt++ {
		inv := h.jacobianAt(jac, pt).Inv()
		for ci := 0; ci < nc; ci++ {
			gi := (pt*nc + ci) * 3
			gp := tensor.Vec3{grads[gi], grads[gi+1], grads[gi+2]}.MulMat(inv)
			grads[gi], grads[gi+1], grads[gi+2] = gp[0], gp[1], gp[2]
		}
	}
}

// IntegrateSources accumulates only the source term of the residual.
// sources is scaled by det(J)*w in place.
func (h *Hex) IntegrateSources(sources, jac, residual []float64, s *Scratch) {
	n, q, nc := h.n, h.Q, h.NC
	b := h.b
	w := h.w
	a1, a2 := s.A1, s.A2

	for qz := 0; qz < q; qz++ {
		for qy := 0; qy < q; qy++ {
			for qx := 0; qx < q; qx++ {
				pt := (qz*q+qy)*q + qx
				dv := h.jacobianAt(jac, pt).Det() * w[qx] * w[qy] * w[qz]
				for ci := 0; ci < nc; ci++ {
					sources[pt*nc+ci] *= dv
				}
			}
		}
	}

	for ci := 0; ci < nc; ci++ {

		for dx := 0; dx < n; dx++ {
			for qy := 0; qy < q; qy++ {
				for qz := 0; qz < q; qz++ {
					var sum float64
					for qx := 0; qx < q; qx++ {
						sum += b[qx*n+dx] * sources[((qz*q+qy)*q+qx)*nc+ci]
					}
					a2[(dx*q+qy)*q+qz] = sum
				}
			}
		}

		for dx := 0; dx < n; dx++ {
			for dy := 0; dy < n; dy++ {
				for qz := 0; qz < q; qz++ {
					var sum float64
					for qy := 0; qy < q; qy++ {
						sum += b[qy*n+dy] * a2[(dx*q+qy)*q+qz]
					}
					a1[(dx*n+dy)*q+qz] = sum
				}
			}
		}

		for dx := 0; dx < n; dx++ {
			for dy := 0; dy < n; dy++ {
				for dz := 0; dz < n; dz++ {
					var sum float64
					for qz := 0; qz < q; qz++ {
						sum += b[qz*n+dz] * a1[(dx*n+dy)*q+qz]
					}
					residual[((ci*n+dz)*n+dy)*n+dx] += sum
				}
			}
		}
	}
}

// IntegrateFluxes accumulates only the flux term of the residual.
// fluxes is mapped by inv(J^T) and scaled by det(J)*w in place.
func (h *Hex) IntegrateFluxes(fluxes, jac, residual []float64, s *Scratch) {
	n, q, nc := h.n, h.Q, h.NC
	b, g := h.b, h.g
	w := h.w
	a1, a2 := s.A1, s.A2
	nnq := n * n * q
	nqq := n * q * q

	for qz := 0; qz < q; qz++ {
		for qy := 0; qy < q; qy++ {
			for qx := 0; qx < q; qx++ {
				pt := (qz*q+qy)*q + qx
				jt := h.jacobianAt(jac, pt).Transpose()
				dv := jt.Det() * w[qx] * w[qy] * w[qz]
				invJT := jt.Inv()
				for ci := 0; ci < nc; ci++ {
					fi := (pt*nc + ci) * 3
					f := tensor.Vec3{fluxes[fi], fluxes[fi+1], fluxes[fi+2]}
					fr := f.MulMat(invJT).Scale(dv)
					fluxes[fi], fluxes[fi+1], fluxes[fi+2] = fr[0], fr[1], fr[2]
				}
			}
		}
	}

	for ci := 0; ci < nc; ci++ {

		for dx := 0; dx < n; dx++ {
			for qy := 0; qy < q; qy++ {
				for qz := 0; qz < q; qz++ {
					var s0, s1, s2 float64
					for qx := 0; qx < q; qx++ {
						fi := (((qz*q+qy)*q+qx)*nc + ci) * 3
						s0 += g[qx*n+dx] * fluxes[fi]
						s1 += b[qx*n+dx] * fluxes[fi+1]
						s2 += b[qx*n+dx] * fluxes[fi+2]
					}
					a2[(dx*q+qy)*q+qz] = s0
					a2[nqq+(dx*q+qy)*q+qz] = s1
					a2[2*nqq+(dx*q+qy)*q+qz] = s2
				}
			}
		}

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
