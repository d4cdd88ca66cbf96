package tdgl

import (
	"errors"
	"math"
	"math/cmplx"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmocz/superconductor-spectral/internal/field"
	"github.com/pmocz/superconductor-spectral/internal/noise"
)

func testParams(n int, l float64) Params {
	p := DefaultParams()
	p.N = n
	p.L = l
	return p
}

func newTestStepper(t *testing.T, p Params, psi0 *field.Complex2D) *Stepper {
	t.Helper()
	g, err := NewGrid(p.N, p.L)
	require.NoError(t, err)
	tr, err := NewDSPTransform(p.N)
	require.NoError(t, err)
	s, err := NewStepper(psi0, p, g, tr)
	require.NoError(t, err)
	return s
}

func TestPotential(t *testing.T) {
	psi := field.New(2)
	psi.Set(0, 0, 3+4i)
	psi.Set(1, 0, 1i)
	v := field.New(2)
	v.Set(1, 1, 7) // overwritten

	potential(v, psi, 1.5)
	assert.Equal(t, -(1i+1.5)*25, v.At(0, 0))
	assert.Equal(t, -(1i + 1.5), v.At(1, 0))
	assert.Equal(t, complex128(0), v.At(1, 1))
}

func TestPropagatorClosedForm(t *testing.T) {
	p := testParams(8, 10)
	g, err := NewGrid(p.N, p.L)
	require.NoError(t, err)
	prop := NewPropagator(g, p)

	for r := 0; r < p.N; r++ {
		for c := 0; c < p.N; c++ {
			kSq := g.KSq[r][c]
			want := cmplx.Rect(math.Exp(p.Dt*(1-kSq)), -p.Alpha*kSq*p.Dt)
			assert.InDelta(t, real(want), real(prop.At(r, c)), 1e-12)
			assert.InDelta(t, imag(want), imag(prop.At(r, c)), 1e-12)
		}
	}
	// the zero mode only grows
	assert.InDelta(t, math.Exp(p.Dt), real(prop.At(0, 0)), 1e-12)
	assert.InDelta(t, 0, imag(prop.At(0, 0)), 1e-12)
}

func TestStepSingleModeFollowsLinearPropagator(t *testing.T) {
	// With a tiny amplitude |psi|^2 is ~1e-12, so the kicks are the
	// identity to well below the tolerance and one step is just P(k).
	const amp = 1e-6
	p := testParams(16, 16)
	g, err := NewGrid(p.N, p.L)
	require.NoError(t, err)

	const mx, my = 2, -1
	kx := 2 * math.Pi / p.L * mx
	ky := 2 * math.Pi / p.L * my
	psi0 := field.New(p.N)
	psi0.Fill(func(r, c int) complex128 {
		return complex(amp, 0) * cmplx.Exp(complex(0, kx*g.X[r][c]+ky*g.Y[r][c]))
	})

	s := newTestStepper(t, p, psi0)
	view, err := s.Step()
	require.NoError(t, err)

	kSq := kx*kx + ky*ky
	want := cmplx.Exp(complex(p.Dt, 0) * (-1i * (complex(kSq, 0)*(complex(p.Alpha, 0)-1i) + 1i)))
	for r := 0; r < p.N; r++ {
		for c := 0; c < p.N; c++ {
			expected := want * psi0.At(r, c)
			got := view.At(r, c)
			assert.InDelta(t, real(expected), real(got), 1e-15)
			assert.InDelta(t, imag(expected), imag(got), 1e-15)
		}
	}
}

func TestStepUniformFieldMatchesOdeSplitting(t *testing.T) {
	// A uniform field only has the zero mode, so drift multiplies by
	// exp(dt) and the kicks are the exact pointwise nonlinear flow.
	p := testParams(4, 10)
	psi0 := field.New(p.N)
	psi0.Fill(func(r, c int) complex128 { return 0.3 })

	s := newTestStepper(t, p, psi0)
	_, err := s.Step()
	require.NoError(t, err)

	kick := func(z complex128) complex128 {
		a := real(z)*real(z) + imag(z)*imag(z)
		v := -(1i + complex(p.Beta, 0)) * complex(a, 0)
		return cmplx.Exp(-1i*complex(p.Dt/2, 0)*v) * z
	}
	drifted := complex(math.Exp(p.Dt), 0) * kick(0.3)
	want := kick(drifted)

	got := s.Field()
	for _, v := range got.Data() {
		assert.InDelta(t, real(want), real(v), 1e-12)
		assert.InDelta(t, imag(want), imag(v), 1e-12)
	}

	// V is refreshed between drift and the second kick
	pot := s.Potential()
	a := cmplx.Abs(drifted)
	assert.InDelta(t, -p.Beta*a*a, real(pot.At(1, 1)), 1e-12)
	assert.InDelta(t, -a*a, imag(pot.At(1, 1)), 1e-12)
}

func TestStepDoesNotTouchGridOrPropagator(t *testing.T) {
	p := testParams(8, 8)
	s := newTestStepper(t, p, noise.Gaussian(p.N, noise.DefaultAmplitude, 3))

	kSq := make([][]float64, p.N)
	for r := range kSq {
		kSq[r] = append([]float64{}, s.Grid().KSq[r]...)
	}
	prop := s.Propagator().(*field.Complex2D).Clone()

	for i := 0; i < 5; i++ {
		_, err := s.Step()
		require.NoError(t, err)
	}
	assert.Equal(t, kSq, s.Grid().KSq)
	assert.True(t, prop.Equal(s.Propagator().(*field.Complex2D)))
}

func TestStepperCopiesInitialField(t *testing.T) {
	p := testParams(4, 4)
	psi0 := noise.Gaussian(p.N, noise.DefaultAmplitude, 1)
	keep := psi0.Clone()
	s := newTestStepper(t, p, psi0)
	_, err := s.Step()
	require.NoError(t, err)
	assert.True(t, keep.Equal(psi0))

	f := s.Field()
	f.Set(0, 0, 42)
	assert.NotEqual(t, complex128(42), s.Field().At(0, 0))
}

func TestNewStepperErrors(t *testing.T) {
	p := testParams(4, 4)
	g, err := NewGrid(4, 4)
	require.NoError(t, err)
	tr, err := NewDSPTransform(4)
	require.NoError(t, err)

	_, err = NewStepper(nil, p, g, tr)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = NewStepper(field.New(8), p, g, tr)
	assert.True(t, errors.Is(err, ErrConfiguration))

	_, err = NewStepper(field.New(4), p, g, nil)
	assert.True(t, errors.Is(err, ErrTransform))

	small, err := NewDSPTransform(2)
	require.NoError(t, err)
	_, err = NewStepper(field.New(4), p, g, small)
	assert.True(t, errors.Is(err, ErrTransform))

	bad := p
	bad.Dt = 0
	_, err = NewStepper(field.New(4), bad, g, tr)
	assert.True(t, errors.Is(err, ErrConfiguration))
}

func TestShapes(t *testing.T) {
	for _, n := range []int{4, 16, 400} {
		p := testParams(n, 200)
		s := newTestStepper(t, p, noise.Gaussian(n, noise.DefaultAmplitude, p.Seed))

		g := s.Grid()
		for _, grid := range [][][]float64{g.X, g.Y, g.KX, g.KY, g.KSq} {
			require.Len(t, grid, n)
			for _, row := range grid {
				require.Len(t, row, n)
			}
		}
		assert.Equal(t, n, s.Propagator().Size())
		assert.Equal(t, n, s.Potential().Size())

		view, err := s.Step()
		require.NoError(t, err)
		assert.Equal(t, n, view.Size())
		assert.Equal(t, n, s.Potential().Size())
		mag := view.Magnitude()
		require.Len(t, mag, n)
		assert.Len(t, mag[n-1], n)
		assert.True(t, view.IsFinite())
	}
}
