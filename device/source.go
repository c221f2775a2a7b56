package device

import "fmt"

// hexKernelSource generates the OKL source for all hex kernels at a
// fixed (p, q, c). Sizes are baked in as macros so the scratch tiles
// can live in @shared memory; one @outer iteration covers one element
// and the three contraction passes run as consecutive @inner nests of
// max(n,q)^3 threads with strided index guards. OKL inserts a
// block-wide barrier between consecutive @inner nests, which is exactly
// the synchronization the pass structure needs.
//
// The interpolate kernels fold the inv(J) gradient map into the final
// pass; the integrate kernels consume sources and fluxes that the host
// has already scaled by det(J)*w and mapped by inv(J^T) (see
// kernel.Hex.PrepareQuadratureData).
func hexKernelSource(p, q, nc int) string {
	n := p + 1
	mq := n
	if q > mq {
		mq = q
	}
	return fmt.Sprintf(hexSourceTemplate, n, q, nc, mq)
}

const hexSourceTemplate = `
#define NDOF %d
#define QPTS %d
#define NCOMP %d
#define MQ %d
#define NQ3 (QPTS * QPTS * QPTS)

@kernel void hexInterpolate(const int nelem,
                            @restrict const double *B,
                            @restrict const double *G,
                            @restrict const double *X,
                            @restrict const double *jac,
                            @restrict double *vals,
                            @restrict double *grads) {
	for (int e = 0; e < nelem; ++e; @outer) {
		@shared double sB[QPTS][NDOF];
		@shared double sG[QPTS][NDOF];
		@shared double A1[2][NDOF][NDOF][QPTS];
		@shared double A2[3][NDOF][QPTS][QPTS];

		for (int tz = 0; tz < MQ; ++tz; @inner(2)) {
			for (int ty = 0; ty < MQ; ++ty; @inner(1)) {
				for (int tx = 0; tx < MQ; ++tx; @inner(0)) {
					if (tz == 0 && ty < QPTS && tx < NDOF) {
						sB[ty][tx] = B[ty * NDOF + tx];
						sG[ty][tx] = G[ty * NDOF + tx];
					}
				}
			}
		}

		for (int ci = 0; ci < NCOMP; ++ci) {

			for (int dz = 0; dz < MQ; ++dz; @inner(2)) {
				for (int dy = 0; dy < MQ; ++dy; @inner(1)) {
					for (int qx = 0; qx < MQ; ++qx; @inner(0)) {
						if (dz < NDOF && dy < NDOF && qx < QPTS) {
							double s0 = 0.0, s1 = 0.0;
							for (int dx = 0; dx < NDOF; ++dx) {
								const double xv = X[(((e * NCOMP + ci) * NDOF + dz) * NDOF + dy) * NDOF + dx];
								s0 += sB[qx][dx] * xv;
								s1 += sG[qx][dx] * xv;
							}
							A1[0][dz][dy][qx] = s0;
							A1[1][dz][dy][qx] = s1;
						}
					}
				}
			}

			for (int dz = 0; dz < MQ; ++dz; @inner(2)) {
				for (int qy = 0; qy < MQ; ++qy; @inner(1)) {
					for (int qx = 0; qx < MQ; ++qx; @inner(0)) {
						if (dz < NDOF && qy < QPTS && qx < QPTS) {
							double s0 = 0.0, s1 = 0.0, s2 = 0.0;
							for (int dy = 0; dy < NDOF; ++dy) {
								s0 += sB[qy][dy] * A1[0][dz][dy][qx];
								s1 += sB[qy][dy] * A1[1][dz][dy][qx];
								s2 += sG[qy][dy] * A1[0][dz][dy][qx];
							}
							A2[0][dz][qy][qx] = s0;
							A2[1][dz][qy][qx] = s1;
							A2[2][dz][qy][qx] = s2;
						}
					}
				}
			}

			for (int qz = 0; qz < MQ; ++qz; @inner(2)) {
				for (int qy = 0; qy < MQ; ++qy; @inner(1)) {
					for (int qx = 0; qx < MQ; ++qx; @inner(0)) {
						if (qz < QPTS && qy < QPTS && qx < QPTS) {
							double u = 0.0, g0 = 0.0, g1 = 0.0, g2 = 0.0;
							for (int dz = 0; dz < NDOF; ++dz) {
								u  += sB[qz][dz] * A2[0][dz][qy][qx];
								g0 += sB[qz][dz] * A2[1][dz][qy][qx];
								g1 += sB[qz][dz] * A2[2][dz][qy][qx];
								g2 += sG[qz][dz] * A2[0][dz][qy][qx];
							}

							const int pt = (qz * QPTS + qy) * QPTS + qx;
							const long jb = (long)e * 9 * NQ3;
							const double j00 = jac[jb + 0 * NQ3 + pt];
							const double j01 = jac[jb + 1 * NQ3 + pt];
							const double j02 = jac[jb + 2 * NQ3 + pt];
							const double j10 = jac[jb + 3 * NQ3 + pt];
							const double j11 = jac[jb + 4 * NQ3 + pt];
							const double j12 = jac[jb + 5 * NQ3 + pt];
							const double j20 = jac[jb + 6 * NQ3 + pt];
							const double j21 = jac[jb + 7 * NQ3 + pt];
							const double j22 = jac[jb + 8 * NQ3 + pt];
							const double det = j00 * (j11 * j22 - j12 * j21)
							                 - j01 * (j10 * j22 - j12 * j20)
							                 + j02 * (j10 * j21 - j11 * j20);
							const double inv = 1.0 / det;
							const double i00 = inv * (j11 * j22 - j12 * j21);
							const double i01 = inv * (j02 * j21 - j01 * j22);
							const double i02 = inv * (j01 * j12 - j02 * j11);
							const double i10 = inv * (j12 * j20 - j10 * j22);
							const double i11 = inv * (j00 * j22 - j02 * j20);
							const double i12 = inv * (j02 * j10 - j00 * j12);
							const double i20 = inv * (j10 * j21 - j11 * j20);
							const double i21 = inv * (j01 * j20 - j00 * j21);
							const double i22 = inv * (j00 * j11 - j01 * j10);

							vals[((long)e * NQ3 + pt) * NCOMP + ci] = u;
							const long gi = (((long)e * NQ3 + pt) * NCOMP + ci) * 3;
							grads[gi + 0] = g0 * i00 + g1 * i10 + g2 * i20;
							grads[gi + 1] = g0 * i01 + g1 * i11 + g2 * i21;
							grads[gi + 2] = g0 * i02 + g1 * i12 + g2 * i22;
						}
					}
				}
			}
		}
	}
}

@kernel void hexInterpolateValues(const int nelem,
                                  @restrict const double *B,
                                  @restrict const double *X,
                                  @restrict double *vals) {
	for (int e = 0; e < nelem; ++e; @outer) {
		@shared double sB[QPTS][NDOF];
		@shared double A1[NDOF][NDOF][QPTS];
		@shared double A2[NDOF][QPTS][QPTS];

		for (int tz = 0; tz < MQ; ++tz; @inner(2)) {
			for (int ty = 0; ty < MQ; ++ty; @inner(1)) {
				for (int tx = 0; tx < MQ; ++tx; @inner(0)) {
					if (tz == 0 && ty < QPTS && tx < NDOF) {
						sB[ty][tx] = B[ty * NDOF + tx];
					}
				}
			}
		}

		for (int ci = 0; ci < NCOMP; ++ci) {

			for (int dz = 0; dz < MQ; ++dz; @inner(2)) {
				for (int dy = 0; dy < MQ; ++dy; @inner(1)) {
					for (int qx = 0; qx < MQ; ++qx; @inner(0)) {
						if (dz < NDOF && dy < NDOF && qx < QPTS) {
							double sum = 0.0;
							for (int dx = 0; dx < NDOF; ++dx) {
								sum += sB[qx][dx] * X[(((e * NCOMP + ci) * NDOF + dz) * NDOF + dy) * NDOF + dx];
							}
							A1[dz][dy][qx] = sum;
						}
					}
				}
			}

			for (int dz = 0; dz < MQ; ++dz; @inner(2)) {
				for (int qy = 0; qy < MQ; ++qy; @inner(1)) {
					for (int qx = 0; qx < MQ; ++qx; @inner(0)) {
						if (dz < NDOF && qy < QPTS && qx < QPTS) {
							double sum = 0.0;
							for (int dy = 0; dy < NDOF; ++dy) {
								sum += sB[qy][dy] * A1[dz][dy][qx];
							}
							A2[dz][qy][qx] = sum;
						}
					}
				}
			}

			for (int qz = 0; qz < MQ; ++qz; @inner(2)) {
				for (int qy = 0; qy < MQ; ++qy; @inner(1)) {
					for (int qx = 0; qx < MQ; ++qx; @inner(0)) {
						if (qz < QPTS && qy < QPTS && qx < QPTS) {
							double sum = 0.0;
							for (int dz = 0; dz < NDOF; ++dz) {
								sum += sB[qz][dz] * A2[dz][qy][qx];
							}
							const int pt = (qz * QPTS + qy) * QPTS + qx;
							vals[((long)e * NQ3 + pt) * NCOMP + ci] = sum;
						}
					}
				}
			}
		}
	}
}

@kernel void hexIntegrate(const int nelem,
                          @restrict const double *B,
                          @restrict const double *G,
                          @restrict const double *sources,
                          @restrict const double *fluxes,
                          @restrict double *residual) {
	for (int e = 0; e < nelem; ++e; @outer) {
		@shared double sB[QPTS][NDOF];
		@shared double sG[QPTS][NDOF];
		@shared double A1[3][QPTS][QPTS][NDOF];
		@shared double A2[2][QPTS][NDOF][NDOF];

		for (int tz = 0; tz < MQ; ++tz; @inner(2)) {
			for (int ty = 0; ty < MQ; ++ty; @inner(1)) {
				for (int tx = 0; tx < MQ; ++tx; @inner(0)) {
					if (tz == 0 && ty < QPTS && tx < NDOF) {
						sB[ty][tx] = B[ty * NDOF + tx];
						sG[ty][tx] = G[ty * NDOF + tx];
					}
				}
			}
		}

		for (int ci = 0; ci < NCOMP; ++ci) {

			for (int qz = 0; qz < MQ; ++qz; @inner(2)) {
				for (int qy = 0; qy < MQ; ++qy; @inner(1)) {
					for (int dx = 0; dx < MQ; ++dx; @inner(0)) {
						if (qz < QPTS && qy < QPTS && dx < NDOF) {
							double s0 = 0.0, s1 = 0.0, s2 = 0.0;
							for (int qx = 0; qx < QPTS; ++qx) {
								const int pt = (qz * QPTS + qy) * QPTS + qx;
								const long fi = (((long)e * NQ3 + pt) * NCOMP + ci) * 3;
								s0 += sB[qx][dx] * sources[((long)e * NQ3 + pt) * NCOMP + ci];
								s0 += sG[qx][dx] * fluxes[fi + 0];
								s1 += sB[qx][dx] * fluxes[fi + 1];
								s2 += sB[qx][dx] * fluxes[fi + 2];
							}
							A1[0][qz][qy][dx] = s0;
							A1[1][qz][qy][dx] = s1;
							A1[2][qz][qy][dx] = s2;
						}
					}
				}
			}

			for (int qz = 0; qz < MQ; ++qz; @inner(2)) {
				for (int dy = 0; dy < MQ; ++dy; @inner(1)) {
					for (int dx = 0; dx < MQ; ++dx; @inner(0)) {
						if (qz < QPTS && dy < NDOF && dx < NDOF) {
							double s0 = 0.0, s1 = 0.0;
							for (int qy = 0; qy < QPTS; ++qy) {
								s0 += sB[qy][dy] * A1[0][qz][qy][dx];
								s0 += sG[qy][dy] * A1[1][qz][qy][dx];
								s1 += sB[qy][dy] * A1[2][qz][qy][dx];
							}
							A2[0][qz][dy][dx] = s0;
							A2[1][qz][dy][dx] = s1;
						}
					}
				}
			}

			for (int dz = 0; dz < MQ; ++dz; @inner(2)) {
				for (int dy = 0; dy < MQ; ++dy; @inner(1)) {
					for (int dx = 0; dx < MQ; ++dx; @inner(0)) {
						if (dz < NDOF && dy < NDOF && dx < NDOF) {
							double sum = 0.0;
							for (int qz = 0; qz < QPTS; ++qz) {
								sum += sB[qz][dz] * A2[0][qz][dy][dx];
								sum += sG[qz][dz] * A2[1][qz][dy][dx];
							}
							residual[(((long)(e * NCOMP + ci) * NDOF + dz) * NDOF + dy) * NDOF + dx] += sum;
						}
					}
				}
			}
		}
	}
}

@kernel void hexIntegrateSources(const int nelem,
                                 @restrict const double *B,
                                 @restrict const double *sources,
                                 @restrict double *residual) {
	for (int e = 0; e < nelem; ++e; @outer) {
		@shared double sB[QPTS][NDOF];
		@shared double A1[QPTS][QPTS][NDOF];
		@shared double A2[QPTS][NDOF][NDOF];

		for (int tz = 0; tz < MQ; ++tz; @inner(2)) {
			for (int ty = 0; ty < MQ; ++ty; @inner(1)) {
				for (int tx = 0; tx < MQ; ++tx; @inner(0)) {
					if (tz == 0 && ty < QPTS && tx < NDOF) {
						sB[ty][tx] = B[ty * NDOF + tx];
					}
				}
			}
		}

		for (int ci = 0; ci < NCOMP; ++ci) {

			for (int qz = 0; qz < MQ; ++qz; @inner(2)) {
				for (int qy = 0; qy < MQ; ++qy; @inner(1)) {
					for (int dx = 0; dx < MQ; ++dx; @inner(0)) {
						if (qz < QPTS && qy < QPTS && dx < NDOF) {
							double sum = 0.0;
							for (int qx = 0; qx < QPTS; ++qx) {
								const int pt = (qz * QPTS + qy) * QPTS + qx;
								sum += sB[qx][dx] * sources[((long)e * NQ3 + pt) * NCOMP + ci];
							}
							A1[qz][qy][dx] = sum;
						}
					}
				}
			}

			for (int qz = 0; qz < MQ; ++qz; @inner(2)) {
				for (int dy = 0; dy < MQ; ++dy; @inner(1)) {
					for (int dx = 0; dx < MQ; ++dx; @inner(0)) {
						if (qz < QPTS && dy < NDOF && dx < NDOF) {
							double sum = 0.0;
							for (int qy = 0; qy < QPTS; ++qy) {
								sum += sB[qy][dy] * A1[qz][qy][dx];
							}
							A2[qz][dy][dx] = sum;
						}
					}
				}
			}

			for (int dz = 0; dz < MQ; ++dz; @inner(2)) {
				for (int dy = 0; dy < MQ; ++dy; @inner(1)) {
					for (int dx = 0; dx < MQ; ++dx; @inner(0)) {
						if (dz < NDOF && dy < NDOF && dx < NDOF) {
							double sum = 0.0;
							for (int qz = 0; qz < QPTS; ++qz) {
								sum += sB[qz][dz] * A2[qz][dy][dx];
							}
							residual[(((long)(e * NCOMP + ci) * NDOF + dz) * NDOF + dy) * NDOF + dx] += sum;
						}
					}
				}
			}
		}
	}
}
`
