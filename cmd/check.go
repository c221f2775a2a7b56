package cmd

import (
	"fmt"
	"math"
	"math/rand"
	"os"

	"github.com/spf13/cobra"

	"github.com/tensorfem/FEKernel/kernel"
	"github.com/tensorfem/FEKernel/quadrature"
	"github.com/tensorfem/FEKernel/tensor"
)

var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Verify the kernel identities across a sweep of orders",
	Long: `
Runs the analytic identities the kernels must satisfy: quadrature
exactness, partition of unity, polynomial reproduction, the divergence
theorem on a unit flux, and adjointness of interpolate and integrate.`,
	Run: func(cmd *cobra.Command, args []string) {
		pMax, _ := cmd.Flags().GetInt("pmax")

		failed := 0
		for p := 1; p <= pMax; p++ {
			q := p + 1
			failed += report(fmt.Sprintf("p=%d q=%d quadrature exactness", p, q), checkQuadrature(q))
			failed += report(fmt.Sprintf("p=%d q=%d partition of unity", p, q), checkPartitionOfUnity(p, q))
			failed += report(fmt.Sprintf("p=%d q=%d polynomial reproduction", p, q), checkReproduction(p, q))
			failed += report(fmt.Sprintf("p=%d q=%d divergence theorem", p, q), checkDivergence(p, q))
			failed += report(fmt.Sprintf("p=%d q=%d adjointness", p, q), checkAdjoint(p, q))
		}
		if failed > 0 {
			fmt.Printf("%d checks FAILED\n", failed)
			os.Exit(1)
		}
		fmt.Println("all checks passed")
	},
}

func init() {
	rootCmd.AddCommand(checkCmd)
	checkCmd.Flags().IntP("pmax", "p", 6, "highest polynomial order to check")
}

func report(name string, err float64) int {
	const tol = 1e-10
	status := "ok"
	ret := 0
	if err > tol || math.IsNaN(err) {
		status = "FAIL"
		ret = 1
	}
	fmt.Printf("  %-44s max err %10.2e  %s\n", name, err, status)
	return ret
}

// checkQuadrature integrates x^(2q-1) on [0,1] with a q-point rule.
func checkQuadrature(q int) float64 {
	pts, wts := quadrature.GaussLegendre(q)
	k := 2*q - 1
	var sum float64
	for i := range pts {
		sum += wts[i] * math.Pow(pts[i], float64(k))
	}
	exact := 1.0 / float64(k+1)
	return math.Abs(sum - exact)
}

func checkPartitionOfUnity(p, q int) float64 {
	rule := quadrature.Lookup(p, q)
	n := p + 1
	var worst float64
	for iq := 0; iq < q; iq++ {
		var sum float64
		for j := 0; j < n; j++ {
			sum += rule.B[iq*n+j]
		}
		worst = math.Max(worst, math.Abs(sum-1))
	}
	return worst
}

// checkReproduction interpolates a degree-p monomial field and compares
// against the analytic values and gradients at the quadrature points.
func checkReproduction(p, q int) float64 {
	h := kernel.NewHex(p, q, 1)
	s := h.NewScratch()
	nodes := h.Rule().Nodes1D
	n := p + 1

	f := func(x, y, z float64) float64 { return math.Pow(x, float64(p)) + y*z }
	fx := func(x, y, z float64) float64 {
		if p == 1 {
			return 1
		}
		return float64(p) * math.Pow(x, float64(p-1))
	}

	x := make([]float64, h.NumDofs())
	for k := 0; k < n; k++ {
		for j := 0; j < n; j++ {
			for i := 0; i < n; i++ {
				x[(k*n+j)*n+i] = f(nodes[i], nodes[j], nodes[k])
			}
		}
	}

	jac := identityJac(q)
	vals := make([]float64, h.ValuesLen())
	grads := make([]float64, h.GradientsLen())
	h.Interpolate(x, jac, vals, grads, s)

	pts := h.Rule().Points1D
	var worst float64
	for qz := 0; qz < q; qz++ {
		for qy := 0; qy < q; qy++ {
			for qx := 0; qx < q; qx++ {
				pt := (qz*q+qy)*q + qx
				px, py, pz := pts[qx], pts[qy], pts[qz]
				worst = math.Max(worst, math.Abs(vals[pt]-f(px, py, pz)))
				worst = math.Max(worst, math.Abs(grads[pt*3]-fx(px, py, pz)))
				worst = math.Max(worst, math.Abs(grads[pt*3+1]-pz))
				worst = math.Max(worst, math.Abs(grads[pt*3+2]-py))
			}
		}
	}
	return worst
}

// checkDivergence integrates a unit x-flux: the residual must sum to
// zero overall, +1 on the x=1 face, -1 on the x=0 face.
func checkDivergence(p, q int) float64 {
	h := kernel.NewHex(p, q, 1)
	s := h.NewScratch()
	n := p + 1

	sources := make([]float64, h.ValuesLen())
	fluxes := make([]float64, h.GradientsLen())
	for pt := 0; pt < h.NumQuad(); pt++ {
		fluxes[pt*3] = 1
	}
	residual := make([]float64, h.NumDofs())
	h.Integrate(sources, fluxes, identityJac(q), residual, s)

	var total, faceHi, faceLo float64
	for kz := 0; kz < n; kz++ {
		for ky := 0; ky < n; ky++ {
			for kx := 0; kx < n; kx++ {
				v := residual[(kz*n+ky)*n+kx]
				total += v
				if kx == n-1 {
					faceHi += v
				}
				if kx == 0 {
					faceLo += v
				}
			}
		}
	}
	worst := math.Abs(total)
	worst = math.Max(worst, math.Abs(faceHi-1))
	return math.Max(worst, math.Abs(faceLo+1))
}

// checkAdjoint compares the quadrature-space inner product against the
// dof-space inner product with the integrated residual.
func checkAdjoint(p, q int) float64 {
	h := kernel.NewHex(p, q, 1)
	s := h.NewScratch()
	rng := rand.New(rand.NewSource(int64(p)))

	m := tensor.Mat3{{1.3, 0.2, 0.1}, {0.0, 1.1, 0.2}, {0.1, 0.0, 0.9}}
	jac := constJacobians(q, m)

	x := make([]float64, h.NumDofs())
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	src := make([]float64, h.ValuesLen())
	flx := make([]float64, h.GradientsLen())
	for i := range src {
		src[i] = rng.NormFloat64()
	}
	for i := range flx {
		flx[i] = rng.NormFloat64()
	}

	vals := make([]float64, h.ValuesLen())
	grads := make([]float64, h.GradientsLen())
	h.Interpolate(x, jac, vals, grads, s)

	w := h.Rule().Weights1D
	var lhs float64
	for qz := 0; qz < q; qz++ {
		for qy := 0; qy < q; qy++ {
			for qx := 0; qx < q; qx++ {
				pt := (qz*q+qy)*q + qx
				dv := m.Det() * w[qx] * w[qy] * w[qz]
				lhs += vals[pt] * src[pt] * dv
				for d := 0; d < 3; d++ {
					lhs += grads[pt*3+d] * flx[pt*3+d] * dv
				}
			}
		}
	}

	residual := make([]float64, h.NumDofs())
	h.Integrate(src, flx, jac, residual, s)
	var rhs float64
	for i := range x {
		rhs += x[i] * residual[i]
	}
	return math.Abs(lhs - rhs)
}

func identityJac(q int) []float64 {
	return constJacobians(q, tensor.Identity3())
}
