package tdgl

import (
	"math/cmplx"

	"github.com/pmocz/superconductor-spectral/internal/field"
)

// NewPropagator returns the exact one-step solution operator of the linear
// part dpsi/dt = (1+i*alpha) lap(psi) + psi in Fourier space:
//
//	P = exp(dt * (-i * (kSq*(alpha - i) + i)))
//
// Its modulus is exp(dt*(1-kSq)), so every mode with kSq > 1 is damped.
// Beta does not enter the linear part.
func NewPropagator(g *Grid, p Params) *field.Complex2D {
	prop := field.New(g.N)
	dt := complex(p.Dt, 0)
	alpha := complex(p.Alpha, 0)
	prop.Fill(func(r, c int) complex128 {
		kSq := complex(g.KSq[r][c], 0)
		return cmplx.Exp(dt * (-1i * (kSq*(alpha-1i) + 1i)))
	})
	return prop
}

// potential sets v = -(i+beta)|psi|^2.
func potential(v, psi *field.Complex2D, beta float64) {
	v.AbsSq(psi)
	v.Scale(-(1i + complex(beta, 0)))
}
