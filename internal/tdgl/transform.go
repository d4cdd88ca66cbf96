package tdgl

import (
	"fmt"

	"github.com/mjibson/go-dsp/fft"

	"github.com/pmocz/superconductor-spectral/internal/field"
)

// Transform is the 2D discrete Fourier transform used by the drift.
//
// Forward computes X[k,l] = sum x[r,c] exp(-2*pi*i*(k*r + l*c)/N) without
// normalization, with frequency indices in FFTFreq order. Inverse is its
// exact inverse (scaled by 1/N^2). Both operate in place.
type Transform interface {
	Forward(f *field.Complex2D) error
	Inverse(f *field.Complex2D) error
}

// DSPTransform implements Transform with go-dsp's FFT2/IFFT2.
type DSPTransform struct {
	n int
}

// NewDSPTransform returns a transform for n x n arrays.
func NewDSPTransform(n int) (*DSPTransform, error) {
	if n <= 0 {
		return nil, &TransformError{Op: "setup", Wrapped: fmt.Errorf("size must be positive, got %d", n)}
	}
	return &DSPTransform{n: n}, nil
}

// SetWorkers sets the size of go-dsp's FFT worker pool. The pool is
// process-wide; n <= 0 leaves the library default untouched.
func SetWorkers(n int) {
	if n > 0 {
		fft.SetWorkerPoolSize(n)
	}
}

// Size returns N.
func (t *DSPTransform) Size() int { return t.n }

// Forward replaces f with its forward transform.
func (t *DSPTransform) Forward(f *field.Complex2D) error {
	if err := t.check("forward", f); err != nil {
		return err
	}
	f.CopyRows(fft.FFT2(f.Rows()))
	return nil
}

// Inverse replaces f with its inverse transform.
func (t *DSPTransform) Inverse(f *field.Complex2D) error {
	if err := t.check("inverse", f); err != nil {
		return err
	}
	f.CopyRows(fft.IFFT2(f.Rows()))
	return nil
}

func (t *DSPTransform) check(op string, f *field.Complex2D) error {
	if f.Size() != t.n {
		return &TransformError{Op: op, Wrapped: fmt.Errorf("field is %dx%d, transform is %dx%d", f.Size(), f.Size(), t.n, t.n)}
	}
	return nil
}
