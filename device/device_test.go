package device

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tensorfem/FEKernel/tensor"
)

func testDevice(t *testing.T) *Device {
	t.Helper()
	dev, err := NewTestDevice()
	if err != nil {
		t.Skipf("no OCCA device available: %v", err)
	}
	return dev
}

func randomField(rng *rand.Rand, n int) []float64 {
	x := make([]float64, n)
	for i := range x {
		x[i] = rng.NormFloat64()
	}
	return x
}

func constantJacobians(nelem, q int, m tensor.Mat3) []float64 {
	nq := q * q * q
	jac := make([]float64, nelem*9*nq)
	for e := 0; e < nelem; e++ {
		for r := 0; r < 3; r++ {
			for c := 0; c < 3; c++ {
				for pt := 0; pt < nq; pt++ {
					jac[e*9*nq+(r*3+c)*nq+pt] = m[r][c]
				}
			}
		}
	}
	return jac
}

func TestDeviceInterpolateMatchesHost(t *testing.T) {
	dev := testDevice(t)
	defer dev.Free()

	rng := rand.New(rand.NewSource(61))
	const nelem = 5
	for _, tc := range []struct{ p, q, c int }{
		{1, 2, 1},
		{2, 3, 2},
		{3, 4, 1},
	} {
		hk, err := BuildHexKernels(dev, tc.p, tc.q, tc.c)
		require.NoError(t, err)

		h := hk.Hex()
		m := tensor.Mat3{{1.4, 0.2, 0.0}, {0.1, 1.1, 0.3}, {0.0, 0.2, 0.9}}
		x := randomField(rng, nelem*h.NumDofs())
		jac := constantJacobians(nelem, tc.q, m)

		vals := make([]float64, nelem*h.ValuesLen())
		grads := make([]float64, nelem*h.GradientsLen())
		require.NoError(t, hk.Interpolate(nelem, x, jac, vals, grads))

		s := h.NewScratch()
		wantV := make([]float64, h.ValuesLen())
		wantG := make([]float64, h.GradientsLen())
		for e := 0; e < nelem; e++ {
			h.Interpolate(
				x[e*h.NumDofs():(e+1)*h.NumDofs()],
				jac[e*h.JacobianLen():(e+1)*h.JacobianLen()],
				wantV, wantG, s,
			)
			for i := range wantV {
				assert.InDelta(t, wantV[i], vals[e*h.ValuesLen()+i], 1e-12,
					"p=%d q=%d c=%d element %d vals[%d]", tc.p, tc.q, tc.c, e, i)
			}
			for i := range wantG {
				assert.InDelta(t, wantG[i], grads[e*h.GradientsLen()+i], 1e-12,
					"p=%d q=%d c=%d element %d grads[%d]", tc.p, tc.q, tc.c, e, i)
			}
		}
		hk.Free()
	}
}

func TestDeviceInterpolateValuesMatchesHost(t *testing.T) {
	dev := testDevice(t)
	defer dev.Free()

	rng := rand.New(rand.NewSource(67))
	const nelem = 3
	hk, err := BuildHexKernels(dev, 2, 3, 1)
	require.NoError(t, err)
	defer hk.Free()

	h := hk.Hex()
	x := randomField(rng, nelem*h.NumDofs())
	vals := make([]float64, nelem*h.ValuesLen())
	require.NoError(t, hk.InterpolateValues(nelem, x, vals))

	s := h.NewScratch()
	want := make([]float64, h.ValuesLen())
	for e := 0; e < nelem; e++ {
		h.InterpolateValues(x[e*h.NumDofs():(e+1)*h.NumDofs()], want, s)
		for i := range want {
			assert.InDelta(t, want[i], vals[e*h.ValuesLen()+i], 1e-12)
		}
	}
}

func TestDeviceIntegrateMatchesHost(t *testing.T) {
	dev := testDevice(t)
	defer dev.Free()

	rng := rand.New(rand.NewSource(71))
	const nelem = 4
	hk, err := BuildHexKernels(dev, 2, 3, 2)
	require.NoError(t, err)
	defer hk.Free()

	h := hk.Hex()
	m := tensor.Mat3{{1.2, 0.1, 0.0}, {0.0, 0.9, 0.2}, {0.1, 0.0, 1.1}}
	jac := constantJacobians(nelem, h.Q, m)

	sources := randomField(rng, nelem*h.ValuesLen())
	fluxes := randomField(rng, nelem*h.GradientsLen())

	// Host reference on raw (unscaled) data.
	s := h.NewScratch()
	want := make([]float64, nelem*h.NumDofs())
	for e := 0; e < nelem; e++ {
		src := append([]float64(nil), sources[e*h.ValuesLen():(e+1)*h.ValuesLen()]...)
		flx := append([]float64(nil), fluxes[e*h.GradientsLen():(e+1)*h.GradientsLen()]...)
		h.Integrate(src, flx, jac[e*h.JacobianLen():(e+1)*h.JacobianLen()],
			want[e*h.NumDofs():(e+1)*h.NumDofs()], s)
	}

	// Device path scales on the host, contracts on the device.
	require.NoError(t, hk.Prepare(nelem, sources, fluxes, jac))
	got := make([]float64, nelem*h.NumDofs())
	require.NoError(t, hk.Integrate(nelem, sources, fluxes, got))

	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestDeviceIntegrateAccumulates(t *testing.T) {
	dev := testDevice(t)
	defer dev.Free()

	hk, err := BuildHexKernels(dev, 1, 2, 1)
	require.NoError(t, err)
	defer hk.Free()

	h := hk.Hex()
	sources := make([]float64, h.ValuesLen())
	fluxes := make([]float64, h.GradientsLen())
	for i := range sources {
		sources[i] = 1
	}

	res := make([]float64, h.NumDofs())
	require.NoError(t, hk.Integrate(1, sources, fluxes, res))
	once := append([]float64(nil), res...)
	require.NoError(t, hk.Integrate(1, sources, fluxes, res))

	for i := range res {
		assert.InDelta(t, 2*once[i], res[i], 1e-13)
	}
}

func TestDeviceIntegrateSourcesMatchesFull(t *testing.T) {
	dev := testDevice(t)
	defer dev.Free()

	rng := rand.New(rand.NewSource(73))
	hk, err := BuildHexKernels(dev, 2, 3, 1)
	require.NoError(t, err)
	defer hk.Free()

	h := hk.Hex()
	sources := randomField(rng, h.ValuesLen())
	zeroFlux := make([]float64, h.GradientsLen())

	want := make([]float64, h.NumDofs())
	require.NoError(t, hk.Integrate(1, append([]float64(nil), sources...), zeroFlux, want))

	got := make([]float64, h.NumDofs())
	require.NoError(t, hk.IntegrateSources(1, sources, got))

	for i := range want {
		assert.InDelta(t, want[i], got[i], 1e-12)
	}
}

func TestDeviceArgumentValidation(t *testing.T) {
	dev := testDevice(t)
	defer dev.Free()

	hk, err := BuildHexKernels(dev, 1, 2, 1)
	require.NoError(t, err)
	defer hk.Free()

	h := hk.Hex()
	short := make([]float64, h.NumDofs()-1)
	jac := make([]float64, h.JacobianLen())
	vals := make([]float64, h.ValuesLen())
	grads := make([]float64, h.GradientsLen())

	err = hk.Interpolate(1, short, jac, vals, grads)
	assert.Error(t, err)
}

func BenchmarkDeviceInterpolate(b *testing.B) {
	dev, err := NewTestDevice()
	if err != nil {
		b.Skipf("no OCCA device available: %v", err)
	}
	defer dev.Free()

	hk, err := BuildHexKernels(dev, 3, 4, 1)
	if err != nil {
		b.Fatal(err)
	}
	defer hk.Free()

	h := hk.Hex()
	const nelem = 256
	rng := rand.New(rand.NewSource(1))
	x := randomField(rng, nelem*h.NumDofs())
	jac := constantJacobians(nelem, h.Q, tensor.Identity3())
	vals := make([]float64, nelem*h.ValuesLen())
	grads := make([]float64, nelem*h.GradientsLen())

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := hk.Interpolate(nelem, x, jac, vals, grads); err != nil {
			b.Fatal(err)
		}
	}
}
