package kernel

import (
	"math/rand"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestElementResidualMatchesManual(t *testing.T) {
	// ElementResidual with a diffusion-like material (flux = grad u,
	// source = u) must equal the hand-rolled interpolate -> qf ->
	// integrate sequence.
	rng := rand.New(rand.NewSource(53))
	h := NewHex(2, 3, 1)
	s := h.NewScratch()
	qb := h.NewQuadratureBuffers()

	x := make([]float64, h.NumDofs())
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	jac := identityJacobians3(h.Q)

	qf := func(pt int, u, gradU, source, flux []float64) {
		source[0] = u[0]
		copy(flux, gradU)
	}

	got := make([]float64, h.NumDofs())
	h.ElementResidual(x, jac, qf, got, s, qb)

	// manual path
	vals := make([]float64, h.ValuesLen())
	grads := make([]float64, h.GradientsLen())
	h.Interpolate(x, jac, vals, grads, s)
	src := append([]float64(nil), vals...)
	flx := append([]float64(nil), grads...)
	want := make([]float64, h.NumDofs())
	h.Integrate(src, flx, jac, want, s)

	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-13)
	}
}

func TestElementResidualAccumulates(t *testing.T) {
	h := NewHex(1, 2, 1)
	s := h.NewScratch()
	qb := h.NewQuadratureBuffers()

	x := nodalField(h, func(x, y, z float64) float64 { return x })
	jac := identityJacobians3(h.Q)
	qf := func(pt int, u, gradU, source, flux []float64) {
		copy(flux, gradU)
	}

	res := make([]float64, h.NumDofs())
	h.ElementResidual(x, jac, qf, res, s, qb)
	once := append([]float64(nil), res...)
	h.ElementResidual(x, jac, qf, res, s, qb)

	for i := range res {
		assert.InDelta(t, 2*once[i], res[i], 1e-13)
	}
}

func TestForEachElementCoversAll(t *testing.T) {
	const nelem = 1000
	var visited [nelem]int32

	ForEachElement(nelem, 8, func(e int) {
		atomic.AddInt32(&visited[e], 1)
	})

	for e, v := range visited {
		if v != 1 {
			t.Fatalf("element %d visited %d times", e, v)
		}
	}
}

func TestForEachElementSerialFallback(t *testing.T) {
	var count int
	ForEachElement(5, 1, func(e int) { count++ })
	assert.Equal(t, 5, count)

	ForEachElement(0, 4, func(e int) { t.Fatal("fn called for empty range") })
}

func TestForEachElementParallelMatchesSerial(t *testing.T) {
	// Per-worker scratch, disjoint output tiles: the parallel residual
	// assembly must equal the serial one.
	const nelem = 16
	rng := rand.New(rand.NewSource(59))
	h := NewHex(2, 3, 1)
	jac := identityJacobians3(h.Q)

	xs := make([][]float64, nelem)
	for e := range xs {
		xs[e] = make([]float64, h.NumDofs())
		for i := range xs[e] {
			xs[e][i] = rng.NormFloat64()
		}
	}
	qf := func(pt int, u, gradU, source, flux []float64) {
		copy(flux, gradU)
	}

	run := func(workers int) [][]float64 {
		out := make([][]float64, nelem)
		for e := range out {
			out[e] = make([]float64, h.NumDofs())
		}
		ForEachElement(nelem, workers, func(e int) {
			// scratch is per-call here for simplicity; production
			// callers should pool one per worker
			s := h.NewScratch()
			qb := h.NewQuadratureBuffers()
			h.ElementResidual(xs[e], jac, qf, out[e], s, qb)
		})
		return out
	}

	serial := run(1)
	parallel := run(4)
	for e := 0; e < nelem; e++ {
		for i := range serial[e] {
			if serial[e][i] != parallel[e][i] {
				t.Fatalf("element %d entry %d differs between serial and parallel", e, i)
			}
		}
	}
}
