package tdgl

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/floats"
)

// Grid holds the real-space coordinates and the matching wavenumbers of
// the periodic N x N domain. Row index is y, column index is x.
//
// KX, KY and KSq are laid out in the transform engine's native order
// (see FFTFreq), so they can multiply a forward transform elementwise.
type Grid struct {
	N  int
	L  float64
	Dx float64

	X, Y [][]float64

	KX, KY [][]float64
	KSq    [][]float64
}

// NewGrid builds the coordinate and wavenumber grids for an n x n domain of
// side l.
func NewGrid(n int, l float64) (*Grid, error) {
	if n <= 0 {
		return nil, &ConfigError{Field: "N", Reason: fmt.Sprintf("must be positive, got %d", n)}
	}
	if !positive(l) {
		return nil, &ConfigError{Field: "L", Reason: fmt.Sprintf("must be positive and finite, got %g", l)}
	}

	g := &Grid{N: n, L: l, Dx: l / float64(n)}

	xLin := Linspace(n, l)
	kLin := Wavenumbers(n, l)

	g.X, g.Y = meshgrid(xLin)
	g.KX, g.KY = meshgrid(kLin)

	g.KSq = make([][]float64, n)
	for r := 0; r < n; r++ {
		g.KSq[r] = make([]float64, n)
		for c := 0; c < n; c++ {
			g.KSq[r][c] = g.KX[r][c]*g.KX[r][c] + g.KY[r][c]*g.KY[r][c]
		}
	}
	return g, nil
}

// Linspace returns n samples j*l/n for j = 0..n-1. The point x=l coincides
// with x=0 on the periodic domain and is left out.
func Linspace(n int, l float64) []float64 {
	pts := make([]float64, n+1)
	floats.Span(pts, 0, l)
	return pts[:n:n]
}

// FFTFreq returns the integer mode numbers in the transform engine's
// native order: 0, 1, ..., ceil(n/2)-1, then -floor(n/2), ..., -1.
//
// For even n this is the ifftshift of -n/2 .. n/2-1. A forward transform
// of exp(2*pi*i*m*j/n) peaks at the index i with FFTFreq(n)[i] == m.
func FFTFreq(n int) []int {
	m := make([]int, n)
	for i := 0; i < n; i++ {
		if i < (n+1)/2 {
			m[i] = i
		} else {
			m[i] = i - n
		}
	}
	return m
}

// Wavenumbers returns k = 2*pi/l * m for m in FFTFreq order.
func Wavenumbers(n int, l float64) []float64 {
	scale := 2 * math.Pi / l
	k := make([]float64, n)
	for i, m := range FFTFreq(n) {
		k[i] = scale * float64(m)
	}
	return k
}

// ModeIndex returns the array index holding mode number m, or -1 if m is
// not representable on an n-point grid.
func ModeIndex(n, m int) int {
	if m >= 0 && m < (n+1)/2 {
		return m
	}
	if m < 0 && m >= -(n/2) {
		return n + m
	}
	return -1
}

// meshgrid returns xx[r][c] = lin[c] and yy[r][c] = lin[r].
func meshgrid(lin []float64) (xx, yy [][]float64) {
	n := len(lin)
	xx = make([][]float64, n)
	yy = make([][]float64, n)
	for r := 0; r < n; r++ {
		xx[r] = make([]float64, n)
		yy[r] = make([]float64, n)
		copy(xx[r], lin)
		for c := 0; c < n; c++ {
			yy[r][c] = lin[r]
		}
	}
	return xx, yy
}
