// Package device runs the hex interpolation and integration kernels on
// an OCCA device (OpenMP, CUDA, or Serial) through gocca. Kernels are
// specialized per (p, q, c) at build time; the basis tables live in
// pooled device memory for the lifetime of the kernel set, element data
// is staged per call.
package device

import (
	"fmt"
	"unsafe"

	"github.com/notargets/gocca"

	"github.com/tensorfem/FEKernel/kernel"
)

// Device wraps an OCCA device handle.
type Device struct {
	occa *gocca.OCCADevice
}

// NewDevice creates a device from an OCCA property string, e.g.
// `{"mode": "CUDA", "device_id": 0}`.
func NewDevice(props string) (*Device, error) {
	dev, err := gocca.NewDevice(props)
	if err != nil {
		return nil, fmt.Errorf("creating OCCA device: %w", err)
	}
	return &Device{occa: dev}, nil
}

// NewTestDevice tries backends in order of preference and returns the
// first that initializes. Callers that can run without a device should
// skip on error.
func NewTestDevice() (*Device, error) {
	backends := []string{
		`{"mode": "OpenMP"}`,
		`{"mode": "CUDA", "device_id": 0}`,
		`{"mode": "Serial"}`,
	}
	var lastErr error
	for _, props := range backends {
		dev, err := gocca.NewDevice(props)
		if err != nil {
			lastErr = err
			continue
		}
		fmt.Printf("Created device with mode: %s\n", dev.Mode())
		return &Device{occa: dev}, nil
	}
	return nil, fmt.Errorf("no OCCA backend available: %w", lastErr)
}

// Mode reports the OCCA backend name (Serial, OpenMP, CUDA, ...).
func (d *Device) Mode() string { return d.occa.Mode() }

// Finish blocks until all queued device work has completed.
func (d *Device) Finish() { d.occa.Finish() }

// Free releases the device. Kernel sets built on it must be freed
// first.
func (d *Device) Free() { d.occa.Free() }

// HexKernels is a set of compiled hex kernels for one (p, q, c)
// combination, plus the basis tables resident on the device.
type HexKernels struct {
	dev *Device
	hex *kernel.Hex

	interp    *gocca.OCCAKernel
	interpVal *gocca.OCCAKernel
	integ     *gocca.OCCAKernel
	integSrc  *gocca.OCCAKernel

	bMem *gocca.OCCAMemory
	gMem *gocca.OCCAMemory
}

// BuildHexKernels compiles the kernel set for polynomial order p,
// quadrature order q, and c field components, and uploads the 1D basis
// tables.
func BuildHexKernels(dev *Device, p, q, c int) (*HexKernels, error) {
	h := kernel.NewHex(p, q, c)
	src := hexKernelSource(p, q, c)

	hk := &HexKernels{dev: dev, hex: h}
	for _, k := range []struct {
		name string
		dst  **gocca.OCCAKernel
	}{
		{"hexInterpolate", &hk.interp},
		{"hexInterpolateValues", &hk.interpVal},
		{"hexIntegrate", &hk.integ},
		{"hexIntegrateSources", &hk.integSrc},
	} {
		built, err := dev.occa.BuildKernelFromString(src, k.name, nil)
		if err != nil {
			hk.Free()
			return nil, fmt.Errorf("building kernel %s: %w", k.name, err)
		}
		*k.dst = built
	}

	rule := h.Rule()
	hk.bMem = dev.occa.Malloc(int64(len(rule.B)*8), unsafe.Pointer(&rule.B[0]), nil)
	hk.gMem = dev.occa.Malloc(int64(len(rule.G)*8), unsafe.Pointer(&rule.G[0]), nil)
	return hk, nil
}

// Hex returns the host-side kernel descriptor backing this set.
func (hk *HexKernels) Hex() *kernel.Hex { return hk.hex }

// Interpolate runs the full interpolation kernel over nelem elements.
// x holds nelem*NumDofs() entries, jac nelem*JacobianLen(); vals and
// grads receive nelem*ValuesLen() and nelem*GradientsLen() entries.
// Gradients come back in physical space.
func (hk *HexKernels) Interpolate(nelem int, x, jac, vals, grads []float64) error {
	h := hk.hex
	if err := checkLen("x", x, nelem*h.NumDofs()); err != nil {
		return err
	}
	if err := checkLen("jac", jac, nelem*h.JacobianLen()); err != nil {
		return err
	}
	if err := checkLen("vals", vals, nelem*h.ValuesLen()); err != nil {
		return err
	}
	if err := checkLen("grads", grads, nelem*h.GradientsLen()); err != nil {
		return err
	}
	if nelem == 0 {
		return nil
	}

	dev := hk.dev.occa
	xMem := dev.Malloc(int64(len(x)*8), unsafe.Pointer(&x[0]), nil)
	defer xMem.Free()
	jMem := dev.Malloc(int64(len(jac)*8), unsafe.Pointer(&jac[0]), nil)
	defer jMem.Free()
	vMem := dev.Malloc(int64(len(vals)*8), nil, nil)
	defer vMem.Free()
	gMem := dev.Malloc(int64(len(grads)*8), nil, nil)
	defer gMem.Free()

	if err := hk.interp.RunWithArgs(int32(nelem), hk.bMem, hk.gMem, xMem, jMem, vMem, gMem); err != nil {
		return fmt.Errorf("running hexInterpolate: %w", err)
	}
	dev.Finish()

	vMem.CopyTo(unsafe.Pointer(&vals[0]), int64(len(vals)*8))
	gMem.CopyTo(unsafe.Pointer(&grads[0]), int64(len(grads)*8))
	return nil
}

// InterpolateValues runs the value-only interpolation kernel. No
// Jacobians are needed.
func (hk *HexKernels) InterpolateValues(nelem int, x, vals []float64) error {
	h := hk.hex
	if err := checkLen("x", x, nelem*h.NumDofs()); err != nil {
		return err
	}
	if err := checkLen("vals", vals, nelem*h.ValuesLen()); err != nil {
		return err
	}
	if nelem == 0 {
		return nil
	}

	dev := hk.dev.occa
	xMem := dev.Malloc(int64(len(x)*8), unsafe.Pointer(&x[0]), nil)
	defer xMem.Free()
	vMem := dev.Malloc(int64(len(vals)*8), nil, nil)
	defer vMem.Free()

	if err := hk.interpVal.RunWithArgs(int32(nelem), hk.bMem, xMem, vMem); err != nil {
		return fmt.Errorf("running hexInterpolateValues: %w", err)
	}
	dev.Finish()

	vMem.CopyTo(unsafe.Pointer(&vals[0]), int64(len(vals)*8))
	return nil
}

// Integrate runs the transposed contraction kernel over nelem
// elements. sources and fluxes must already be scaled by det(J)*w and
// mapped by inv(J^T); use kernel.Hex.PrepareQuadratureData per element,
// or Prepare below for a whole batch. residual is accumulated into,
// matching the host kernel.
func (hk *HexKernels) Integrate(nelem int, sources, fluxes, residual []float64) error {
	h := hk.hex
	if err := checkLen("sources", sources, nelem*h.ValuesLen()); err != nil {
		return err
	}
	if err := checkLen("fluxes", fluxes, nelem*h.GradientsLen()); err != nil {
		return err
	}
	if err := checkLen("residual", residual, nelem*h.NumDofs()); err != nil {
		return err
	}
	if nelem == 0 {
		return nil
	}

	dev := hk.dev.occa
	sMem := dev.Malloc(int64(len(sources)*8), unsafe.Pointer(&sources[0]), nil)
	defer sMem.Free()
	fMem := dev.Malloc(int64(len(fluxes)*8), unsafe.Pointer(&fluxes[0]), nil)
	defer fMem.Free()
	rMem := dev.Malloc(int64(len(residual)*8), unsafe.Pointer(&residual[0]), nil)
	defer rMem.Free()

	if err := hk.integ.RunWithArgs(int32(nelem), hk.bMem, hk.gMem, sMem, fMem, rMem); err != nil {
		return fmt.Errorf("running hexIntegrate: %w", err)
	}
	dev.Finish()

	rMem.CopyTo(unsafe.Pointer(&residual[0]), int64(len(residual)*8))
	return nil
}

// IntegrateSources runs the source-only kernel. sources must already
// carry the det(J)*w quadrature scaling.
func (hk *HexKernels) IntegrateSources(nelem int, sources, residual []float64) error {
	h := hk.hex
	if err := checkLen("sources", sources, nelem*h.ValuesLen()); err != nil {
		return err
	}
	if err := checkLen("residual", residual, nelem*h.NumDofs()); err != nil {
		return err
	}
	if nelem == 0 {
		return nil
	}

	dev := hk.dev.occa
	sMem := dev.Malloc(int64(len(sources)*8), unsafe.Pointer(&sources[0]), nil)
	defer sMem.Free()
	rMem := dev.Malloc(int64(len(residual)*8), unsafe.Pointer(&residual[0]), nil)
	defer rMem.Free()

	if err := hk.integSrc.RunWithArgs(int32(nelem), hk.bMem, sMem, rMem); err != nil {
		return fmt.Errorf("running hexIntegrateSources: %w", err)
	}
	dev.Finish()

	rMem.CopyTo(unsafe.Pointer(&residual[0]), int64(len(residual)*8))
	return nil
}

// Prepare applies the quadrature scaling and flux mapping to a whole
// batch on the host, in place, so the data can be handed to Integrate.
func (hk *HexKernels) Prepare(nelem int, sources, fluxes, jac []float64) error {
	h := hk.hex
	if err := checkLen("sources", sources, nelem*h.ValuesLen()); err != nil {
		return err
	}
	if err := checkLen("fluxes", fluxes, nelem*h.GradientsLen()); err != nil {
		return err
	}
	if err := checkLen("jac", jac, nelem*h.JacobianLen()); err != nil {
		return err
	}
	vl, gl, jl := h.ValuesLen(), h.GradientsLen(), h.JacobianLen()
	for e := 0; e < nelem; e++ {
		h.PrepareQuadratureData(
			sources[e*vl:(e+1)*vl],
			fluxes[e*gl:(e+1)*gl],
			jac[e*jl:(e+1)*jl],
		)
	}
	return nil
}

// Free releases the compiled kernels and pooled basis memory.
func (hk *HexKernels) Free() {
	for _, k := range []*gocca.OCCAKernel{hk.interp, hk.interpVal, hk.integ, hk.integSrc} {
		if k != nil {
			k.Free()
		}
	}
	if hk.bMem != nil {
		hk.bMem.Free()
	}
	if hk.gMem != nil {
		hk.gMem.Free()
	}
}

func checkLen(name string, s []float64, want int) error {
	if len(s) != want {
		return fmt.Errorf("%s: length %d, want %d", name, len(s), want)
	}
	return nil
}
