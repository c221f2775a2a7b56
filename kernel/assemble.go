package kernel

import (
	"runtime"
	"sync"
	"sync/atomic"
)

// QFunc is the material callback evaluated at one quadrature point. It
// receives the interpolated values u [c] and physical gradients
// gradU [c*3] and writes the conjugate source [c] and flux [c*3] in
// place. The slices alias per-element buffers; the callback must not
// retain them.
type QFunc func(pt int, u, gradU, source, flux []float64)

// QuadratureBuffers hold the per-quadrature-point inputs and outputs of
// the material callback for one element evaluation. Like Scratch, they
// are caller-owned and must not be shared between concurrent elements.
type QuadratureBuffers struct {
	Values, Gradients, Sources, Fluxes []float64
}

// NewQuadratureBuffers allocates buffers sized for h.
func (h *Hex) NewQuadratureBuffers() *QuadratureBuffers {
	return &QuadratureBuffers{
		Values:    make([]float64, h.ValuesLen()),
		Gradients: make([]float64, h.GradientsLen()),
		Sources:   make([]float64, h.ValuesLen()),
		Fluxes:    make([]float64, h.GradientsLen()),
	}
}

// ElementResidual evaluates one element end to end: interpolate the
// DOFs, apply qf at every quadrature point, integrate the resulting
// sources and fluxes into residual (accumulated with +=). This is the
// per-element body of a domain-integral residual assembly; the caller
// owns the gather before and the scatter after.
func (h *Hex) ElementResidual(x, jac []float64, qf QFunc, residual []float64, s *Scratch, qb *QuadratureBuffers) {
	h.Interpolate(x, jac, qb.Values, qb.Gradients, s)

	nc := h.NC
	for pt := 0; pt < h.NumQuad(); pt++ {
		u := qb.Values[pt*nc : (pt+1)*nc]
		g := qb.Gradients[pt*nc*3 : (pt+1)*nc*3]
		src := qb.Sources[pt*nc : (pt+1)*nc]
		flx := qb.Fluxes[pt*nc*3 : (pt+1)*nc*3]
		qf(pt, u, g, src, flx)
	}

	h.Integrate(qb.Sources, qb.Fluxes, jac, residual, s)
}

// ForEachElement runs fn(e) for every element index in [0, nelem)
// across workers goroutines. Element evaluations are independent by
// contract, so fn must confine its scratch and output tiles to one
// element; reconciling shared DOFs is the caller's scatter problem.
// workers <= 0 uses GOMAXPROCS.
func ForEachElement(nelem, workers int, fn func(e int)) {
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}
	if workers > nelem {
		workers = nelem
	}
	if workers <= 1 {
		for e := 0; e < nelem; e++ {
			fn(e)
		}
		return
	}

	var next int64 = -1
	var wg sync.WaitGroup
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for {
				e := int(atomic.AddInt64(&next, 1))
				if e >= nelem {
					return
				}
				fn(e)
			}
		}()
	}
	wg.Wait()
}
