package tdgl

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/pmocz/superconductor-spectral/internal/field"
)

// Snapshot is handed to observers each time a step is due for output.
// Magnitude is a fresh N x N copy of |psi| owned by the receiver.
type Snapshot struct {
	Step  int     // zero-based index of the step just taken
	Time  float64 // simulation time after the step
	Final bool    // last step of a completed run

	Magnitude [][]float64
	Mean      float64 // mean of |psi|
	Max       float64 // max of |psi|
	Finite    bool    // no NaN or Inf in psi
}

// Observer consumes snapshots. A returned error aborts the run.
type Observer interface {
	Observe(s Snapshot) error
}

// ObserverFunc adapts a function to Observer.
type ObserverFunc func(s Snapshot) error

// Observe calls f(s).
func (f ObserverFunc) Observe(s Snapshot) error { return f(s) }

func newSnapshot(step int, t float64, final bool, psi field.View) Snapshot {
	mag := psi.Magnitude()
	s := Snapshot{
		Step:      step,
		Time:      t,
		Final:     final,
		Magnitude: mag,
		Finite:    psi.IsFinite(),
	}

	n := len(mag)
	s.Max = math.Inf(-1)
	var sum float64
	for _, row := range mag {
		sum += floats.Sum(row)
		if m := floats.Max(row); m > s.Max || math.IsNaN(m) {
			s.Max = m
		}
	}
	s.Mean = sum / float64(n*n)
	return s
}
