// Package noise generates the small-amplitude random initial condition.
package noise

import (
	"golang.org/x/exp/rand"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/pmocz/superconductor-spectral/internal/field"
)

// DefaultAmplitude is the standard deviation of the initial noise.
const DefaultAmplitude = 1e-2

// Gaussian returns an n x n field of real N(0, amplitude^2) samples drawn
// row by row from a source seeded with seed. Equal seeds give equal fields.
func Gaussian(n int, amplitude float64, seed int64) *field.Complex2D {
	dist := distuv.Normal{
		Mu:    0,
		Sigma: amplitude,
		Src:   rand.NewSource(uint64(seed)),
	}
	psi := field.New(n)
	psi.Fill(func(r, c int) complex128 {
		return complex(dist.Rand(), 0)
	})
	return psi
}
