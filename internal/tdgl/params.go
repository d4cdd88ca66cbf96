package tdgl

import (
	"fmt"
	"math"
)

// Params holds the fixed configuration of one run.
type Params struct {
	N     int     // grid resolution per axis
	L     float64 // domain length, the domain is [0,L) x [0,L)
	Dt    float64 // time step
	TEnd  float64 // time at which the run ends
	TOut  float64 // output cadence
	Alpha float64 // linear dispersion coefficient
	Beta  float64 // nonlinear dispersion coefficient
	Seed  int64   // initial condition seed
}

// DefaultParams returns the reference configuration: a 400x400 grid on
// [0,200)^2 run to t=100 with dt=0.2.
func DefaultParams() Params {
	return Params{
		N:     400,
		L:     200,
		Dt:    0.2,
		TEnd:  100,
		TOut:  0.2,
		Alpha: 0.1,
		Beta:  1.5,
		Seed:  917,
	}
}

// Validate returns a *ConfigError for the first invalid parameter.
func (p Params) Validate() error {
	switch {
	case p.N <= 0:
		return &ConfigError{Field: "N", Reason: fmt.Sprintf("must be positive, got %d", p.N)}
	case !positive(p.L):
		return &ConfigError{Field: "L", Reason: fmt.Sprintf("must be positive and finite, got %g", p.L)}
	case !positive(p.Dt):
		return &ConfigError{Field: "dt", Reason: fmt.Sprintf("must be positive and finite, got %g", p.Dt)}
	case !positive(p.TEnd):
		return &ConfigError{Field: "tEnd", Reason: fmt.Sprintf("must be positive and finite, got %g", p.TEnd)}
	case !positive(p.TOut):
		return &ConfigError{Field: "tOut", Reason: fmt.Sprintf("must be positive and finite, got %g", p.TOut)}
	case !finite(p.Alpha):
		return &ConfigError{Field: "alpha", Reason: "must be finite"}
	case !finite(p.Beta):
		return &ConfigError{Field: "beta", Reason: "must be finite"}
	}
	return nil
}

// Steps returns Nt = ceil(TEnd/Dt).
func (p Params) Steps() int {
	return int(math.Ceil(p.TEnd / p.Dt))
}

func positive(v float64) bool { return v > 0 && finite(v) }

func finite(v float64) bool { return !math.IsNaN(v) && !math.IsInf(v, 0) }
