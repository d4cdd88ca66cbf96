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

func TestTransformRoundTrip(t *testing.T) {
	for _, n := range []int{1, 4, 12, 16, 33} {
		tr, err := NewDSPTransform(n)
		require.NoError(t, err)

		x := noise.Gaussian(n, 1, int64(n))
		x.Map(x, func(v complex128) complex128 { return v + complex(0, real(v)*0.5) })
		orig := x.Clone()

		require.NoError(t, tr.Forward(x))
		require.NoError(t, tr.Inverse(x))
		assert.Less(t, x.MaxAbsDiff(orig), 1e-10, "n=%d", n)
	}
}

func TestTransformOrderingMatchesFFTFreq(t *testing.T) {
	const n = 16
	tr, err := NewDSPTransform(n)
	require.NoError(t, err)

	for _, tc := range []struct{ mx, my int }{
		{0, 0}, {1, 0}, {3, 0}, {-1, 0}, {-8, 0}, {0, 2}, {0, -5}, {4, -3}, {7, 7},
	} {
		psi := field.New(n)
		psi.Fill(func(r, c int) complex128 {
			return cmplx.Exp(complex(0, 2*math.Pi*(float64(tc.mx*c)+float64(tc.my*r))/n))
		})
		require.NoError(t, tr.Forward(psi))

		peakR, peakC, peak := 0, 0, 0.0
		for r := 0; r < n; r++ {
			for c := 0; c < n; c++ {
				if a := cmplx.Abs(psi.At(r, c)); a > peak {
					peakR, peakC, peak = r, c, a
				}
			}
		}
		assert.Equal(t, ModeIndex(n, tc.mx), peakC, "mode %+v", tc)
		assert.Equal(t, ModeIndex(n, tc.my), peakR, "mode %+v", tc)
		assert.InDelta(t, float64(n*n), peak, 1e-8)
		assert.Equal(t, tc.mx, FFTFreq(n)[peakC])
		assert.Equal(t, tc.my, FFTFreq(n)[peakR])
	}
}

func TestTransformSizeErrors(t *testing.T) {
	_, err := NewDSPTransform(0)
	assert.True(t, errors.Is(err, ErrTransform))

	tr, err := NewDSPTransform(4)
	require.NoError(t, err)
	err = tr.Forward(field.New(8))
	assert.True(t, errors.Is(err, ErrTransform))
	err = tr.Inverse(field.New(2))
	var trErr *TransformError
	require.True(t, errors.As(err, &trErr))
	assert.Equal(t, "inverse", trErr.Op)
}
