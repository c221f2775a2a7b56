package cmd

import (
	"fmt"
	"math/rand"
	"runtime"
	"time"

	"github.com/pkg/profile"
	"github.com/spf13/cobra"

	"github.com/tensorfem/FEKernel/device"
	"github.com/tensorfem/FEKernel/kernel"
	"github.com/tensorfem/FEKernel/tensor"
)

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Time the hex kernels over a sweep of polynomial orders",
	Run: func(cmd *cobra.Command, args []string) {
		pMax, _ := cmd.Flags().GetInt("pmax")
		nelem, _ := cmd.Flags().GetInt("nelem")
		nc, _ := cmd.Flags().GetInt("components")
		iters, _ := cmd.Flags().GetInt("iters")
		workers, _ := cmd.Flags().GetInt("workers")
		useDevice, _ := cmd.Flags().GetBool("device")
		prof, _ := cmd.Flags().GetBool("profile")

		if prof {
			defer profile.Start(profile.CPUProfile, profile.ProfilePath(".")).Stop()
		}
		if workers <= 0 {
			workers = runtime.GOMAXPROCS(0)
		}

		var dev *device.Device
		if useDevice {
			var err error
			dev, err = device.NewTestDevice()
			if err != nil {
				fmt.Printf("device unavailable, falling back to host: %v\n", err)
				useDevice = false
			} else {
				defer dev.Free()
			}
		}

		fmt.Printf("%-4s %-4s %12s %14s %14s\n", "p", "q", "elements/s", "interp DOF/s", "integ DOF/s")
		for p := 1; p <= pMax; p++ {
			q := p + 1
			if useDevice {
				benchDevice(dev, p, q, nc, nelem, iters)
			} else {
				benchHost(p, q, nc, nelem, iters, workers)
			}
		}
	},
}

func init() {
	rootCmd.AddCommand(benchCmd)
	benchCmd.Flags().IntP("pmax", "p", 4, "highest polynomial order in the sweep")
	benchCmd.Flags().IntP("nelem", "e", 4096, "number of elements per timing run")
	benchCmd.Flags().IntP("components", "c", 1, "number of field components")
	benchCmd.Flags().IntP("iters", "i", 10, "timing iterations per configuration")
	benchCmd.Flags().IntP("workers", "w", 0, "host worker goroutines (0 = GOMAXPROCS)")
	benchCmd.Flags().Bool("device", false, "run on an OCCA device instead of the host")
	benchCmd.Flags().Bool("profile", false, "write a CPU profile to the current directory")
}

func benchHost(p, q, nc, nelem, iters, workers int) {
	h := kernel.NewHex(p, q, nc)
	rng := rand.New(rand.NewSource(1))

	xs := make([][]float64, nelem)
	for e := range xs {
		xs[e] = make([]float64, h.NumDofs())
		for i := range xs[e] {
			xs[e][i] = rng.NormFloat64()
		}
	}
	jac := constJacobians(h.Q, tensor.Identity3())

	srcTmpl := make([]float64, h.ValuesLen())
	flxTmpl := make([]float64, h.GradientsLen())
	for i := range srcTmpl {
		srcTmpl[i] = rng.NormFloat64()
	}
	for i := range flxTmpl {
		flxTmpl[i] = rng.NormFloat64()
	}

	type ws struct {
		s     *kernel.Scratch
		vals  []float64
		grads []float64
		res   []float64
	}
	pool := make(chan *ws, workers)
	for w := 0; w < workers; w++ {
		pool <- &ws{
			s:     h.NewScratch(),
			vals:  make([]float64, h.ValuesLen()),
			grads: make([]float64, h.GradientsLen()),
			res:   make([]float64, h.NumDofs()),
		}
	}

	start := time.Now()
	for it := 0; it < iters; it++ {
		kernel.ForEachElement(nelem, workers, func(e int) {
			w := <-pool
			h.Interpolate(xs[e], jac, w.vals, w.grads, w.s)
			pool <- w
		})
	}
	interpDur := time.Since(start)

	start = time.Now()
	for it := 0; it < iters; it++ {
		kernel.ForEachElement(nelem, workers, func(e int) {
			w := <-pool
			// Integrate scales its inputs in place, so refresh them.
			copy(w.vals, srcTmpl)
			copy(w.grads, flxTmpl)
			h.Integrate(w.vals, w.grads, jac, w.res, w.s)
			pool <- w
		})
	}
	integDur := time.Since(start)

	total := float64(nelem * iters)
	dofs := total * float64(h.NumDofs())
	fmt.Printf("%-4d %-4d %12.0f %14.0f %14.0f\n",
		p, q,
		total/interpDur.Seconds(),
		dofs/interpDur.Seconds(),
		dofs/integDur.Seconds())
}

func benchDevice(dev *device.Device, p, q, nc, nelem, iters int) {
	hk, err := device.BuildHexKernels(dev, p, q, nc)
	if err != nil {
		fmt.Printf("p=%d q=%d: kernel build failed: %v\n", p, q, err)
		return
	}
	defer hk.Free()
	h := hk.Hex()

	rng := rand.New(rand.NewSource(1))
	x := make([]float64, nelem*h.NumDofs())
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	jacOne := constJacobians(h.Q, tensor.Identity3())
	jac := make([]float64, nelem*h.JacobianLen())
	for e := 0; e < nelem; e++ {
		copy(jac[e*h.JacobianLen():], jacOne)
	}
	vals := make([]float64, nelem*h.ValuesLen())
	grads := make([]float64, nelem*h.GradientsLen())
	res := make([]float64, nelem*h.NumDofs())

	start := time.Now()
	for it := 0; it < iters; it++ {
		if err := hk.Interpolate(nelem, x, jac, vals, grads); err != nil {
			fmt.Printf("p=%d q=%d: interpolate failed: %v\n", p, q, err)
			return
		}
	}
	interpDur := time.Since(start)

	start = time.Now()
	for it := 0; it < iters; it++ {
		if err := hk.Integrate(nelem, vals, grads, res); err != nil {
			fmt.Printf("p=%d q=%d: integrate failed: %v\n", p, q, err)
			return
		}
	}
	integDur := time.Since(start)

	total := float64(nelem * iters)
	dofs := total * float64(h.NumDofs())
	fmt.Printf("%-4d %-4d %12.0f %14.0f %14.0f\n",
		p, q,
		total/interpDur.Seconds(),
		dofs/interpDur.Seconds(),
		dofs/integDur.Seconds())
}

func constJacobians(q int, m tensor.Mat3) []float64 {
	nq := q * q * q
	jac := make([]float64, 9*nq)
	for r := 0; r < 3; r++ {
		for c := 0; c < 3; c++ {
			for pt := 0; pt < nq; pt++ {
				jac[(r*3+c)*nq+pt] = m[r][c]
			}
		}
	}
	return jac
}
