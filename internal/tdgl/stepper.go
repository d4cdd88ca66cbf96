package tdgl

import (
	"fmt"
	"math/cmplx"

	"github.com/pmocz/superconductor-spectral/internal/field"
)

// Stepper advances the order parameter with the Strang split-step scheme.
// It owns psi and V; neither leaves the stepper except as a read-only
// view or a clone.
type Stepper struct {
	params Params
	grid   *Grid
	tr     Transform

	psi   *field.Complex2D // order parameter
	v     *field.Complex2D // potential -(i+beta)|psi|^2
	prop  *field.Complex2D // linear propagator, fixed for the run
	phase *field.Complex2D // scratch for exp(-i dt/2 V)

	halfDt complex128
}

// NewStepper prepares a stepper starting from a copy of psi0.
func NewStepper(psi0 *field.Complex2D, p Params, g *Grid, tr Transform) (*Stepper, error) {
	if err := p.Validate(); err != nil {
		return nil, err
	}
	if psi0 == nil {
		return nil, &ConfigError{Field: "psi0", Reason: "initial field is nil"}
	}
	if psi0.Size() != p.N || g.N != p.N {
		return nil, &ConfigError{Field: "N", Reason: fmt.Sprintf("initial field is %d, grid is %d, params say %d", psi0.Size(), g.N, p.N)}
	}
	if tr == nil {
		return nil, &TransformError{Op: "setup", Wrapped: fmt.Errorf("no transform engine")}
	}
	if sized, ok := tr.(interface{ Size() int }); ok && sized.Size() != p.N {
		return nil, &TransformError{Op: "setup", Wrapped: fmt.Errorf("transform is %dx%d, grid is %dx%d", sized.Size(), sized.Size(), p.N, p.N)}
	}

	s := &Stepper{
		params: p,
		grid:   g,
		tr:     tr,
		psi:    psi0.Clone(),
		v:      field.New(p.N),
		prop:   NewPropagator(g, p),
		phase:  field.New(p.N),
		halfDt: complex(p.Dt/2, 0),
	}
	potential(s.v, s.psi, p.Beta)
	return s, nil
}

// Step advances psi by one full time step and returns a read-only view of
// the result. The view is only valid until the next call to Step.
func (s *Stepper) Step() (field.View, error) {
	// (1/2) kick
	s.kick()

	// drift
	if err := s.tr.Forward(s.psi); err != nil {
		return nil, err
	}
	s.psi.Mul(s.prop)
	if err := s.tr.Inverse(s.psi); err != nil {
		return nil, err
	}

	// update potential
	potential(s.v, s.psi, s.params.Beta)

	// (1/2) kick
	s.kick()

	return s.psi, nil
}

// kick applies psi <- exp(-i dt/2 V) psi.
func (s *Stepper) kick() {
	halfDt := s.halfDt
	s.phase.Map(s.v, func(v complex128) complex128 {
		return cmplx.Exp(-1i * halfDt * v)
	})
	s.psi.Mul(s.phase)
}

// Field returns a copy of the current order parameter.
func (s *Stepper) Field() *field.Complex2D { return s.psi.Clone() }

// Potential returns a copy of the current potential.
func (s *Stepper) Potential() *field.Complex2D { return s.v.Clone() }

// Propagator returns the fixed linear propagator.
func (s *Stepper) Propagator() field.View { return s.prop }

// Grid returns the grid the stepper was built on.
func (s *Stepper) Grid() *Grid { return s.grid }
