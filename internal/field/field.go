// Package field provides the square complex array that carries the order
// parameter, the potential and the propagator through the solver.
package field

import (
	"fmt"
	"math"
	"math/cmplx"
)

// View is a read-only window onto a square complex array.
type View interface {
	Size() int
	At(r, c int) complex128
	Magnitude() [][]float64
	IsFinite() bool
}

// Complex2D is an N x N array of complex128 stored row-major in one
// contiguous slice. Rows() exposes per-row views sharing that storage.
type Complex2D struct {
	n    int
	data []complex128
	rows [][]complex128
}

// New allocates a zeroed n x n array.
func New(n int) *Complex2D {
	if n <= 0 {
		panic(fmt.Sprintf("field: size must be positive, got %d", n))
	}
	f := &Complex2D{n: n, data: make([]complex128, n*n)}
	f.rows = make([][]complex128, n)
	for r := 0; r < n; r++ {
		f.rows[r] = f.data[r*n : (r+1)*n : (r+1)*n]
	}
	return f
}

// Size returns N.
func (f *Complex2D) Size() int { return f.n }

// At returns the element at row r, column c.
func (f *Complex2D) At(r, c int) complex128 { return f.data[r*f.n+c] }

// Set stores v at row r, column c.
func (f *Complex2D) Set(r, c int, v complex128) { f.data[r*f.n+c] = v }

// Data returns the row-major backing slice.
func (f *Complex2D) Data() []complex128 { return f.data }

// Rows returns per-row slices that alias the backing storage.
func (f *Complex2D) Rows() [][]complex128 { return f.rows }

// Clone returns a deep copy.
func (f *Complex2D) Clone() *Complex2D {
	out := New(f.n)
	copy(out.data, f.data)
	return out
}

// CopyRows overwrites f row by row. rows must be N x N.
func (f *Complex2D) CopyRows(rows [][]complex128) {
	if len(rows) != f.n {
		panic(fmt.Sprintf("field: got %d rows, want %d", len(rows), f.n))
	}
	for r, row := range rows {
		if len(row) != f.n {
			panic(fmt.Sprintf("field: row %d has length %d, want %d", r, len(row), f.n))
		}
		copy(f.rows[r], row)
	}
}

// Mul multiplies f by o elementwise, in place.
func (f *Complex2D) Mul(o *Complex2D) {
	f.mustMatch(o)
	for i, v := range o.data {
		f.data[i] *= v
	}
}

// Scale multiplies every element by s.
func (f *Complex2D) Scale(s complex128) {
	for i := range f.data {
		f.data[i] *= s
	}
}

// Map sets f[i] = fn(src[i]) for every element. src may be f itself.
func (f *Complex2D) Map(src *Complex2D, fn func(complex128) complex128) {
	f.mustMatch(src)
	for i, v := range src.data {
		f.data[i] = fn(v)
	}
}

// Fill sets every element to fn(r, c).
func (f *Complex2D) Fill(fn func(r, c int) complex128) {
	for r := 0; r < f.n; r++ {
		row := f.rows[r]
		for c := range row {
			row[c] = fn(r, c)
		}
	}
}

// AbsSq sets f[i] = |src[i]|^2 (imaginary part zero).
func (f *Complex2D) AbsSq(src *Complex2D) {
	f.Map(src, func(v complex128) complex128 {
		re, im := real(v), imag(v)
		return complex(re*re+im*im, 0)
	})
}

// Magnitude returns |f| as a freshly allocated N x N real array.
func (f *Complex2D) Magnitude() [][]float64 {
	out := make([][]float64, f.n)
	flat := make([]float64, f.n*f.n)
	for r := 0; r < f.n; r++ {
		out[r] = flat[r*f.n : (r+1)*f.n : (r+1)*f.n]
		for c, v := range f.rows[r] {
			out[r][c] = cmplx.Abs(v)
		}
	}
	return out
}

// IsFinite reports whether no element is NaN or Inf.
func (f *Complex2D) IsFinite() bool {
	for _, v := range f.data {
		if !isFinite(v) {
			return false
		}
	}
	return true
}

// MaxAbsDiff returns max |f[i] - o[i]|.
func (f *Complex2D) MaxAbsDiff(o *Complex2D) float64 {
	f.mustMatch(o)
	var m float64
	for i, v := range f.data {
		if d := cmplx.Abs(v - o.data[i]); d > m || math.IsNaN(d) {
			m = d
		}
	}
	return m
}

// Equal reports bit-identical contents.
func (f *Complex2D) Equal(o *Complex2D) bool {
	if f.n != o.n {
		return false
	}
	for i, v := range f.data {
		w := o.data[i]
		if math.Float64bits(real(v)) != math.Float64bits(real(w)) ||
			math.Float64bits(imag(v)) != math.Float64bits(imag(w)) {
			return false
		}
	}
	return true
}

func (f *Complex2D) mustMatch(o *Complex2D) {
	if f.n != o.n {
		panic(fmt.Sprintf("field: size mismatch %d != %d", f.n, o.n))
	}
}

func isFinite(v complex128) bool {
	return !math.IsNaN(real(v)) && !math.IsNaN(imag(v)) &&
		!math.IsInf(real(v), 0) && !math.IsInf(imag(v), 0)
}
