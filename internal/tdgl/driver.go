package tdgl

import (
	"context"
	"fmt"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/pmocz/superconductor-spectral/internal/field"
)

// State is the driver lifecycle stage.
type State int

const (
	Initializing State = iota
	Running
	Terminated
)

func (s State) String() string {
	switch s {
	case Initializing:
		return "initializing"
	case Running:
		return "running"
	case Terminated:
		return "terminated"
	}
	return fmt.Sprintf("State(%d)", int(s))
}

// Result summarizes a run.
type Result struct {
	Steps     int     // steps taken
	Time      float64 // simulation time reached
	Snapshots int     // snapshots delivered to observers
	Cancelled bool    // stopped by the context before the last step

	// FirstNonFinite is the first step after which psi held NaN or Inf,
	// or -1 if the field stayed finite.
	FirstNonFinite int
}

// Completed reports whether every scheduled step ran.
func (r Result) Completed() bool { return !r.Cancelled }

// DriverOption customizes a Driver.
type DriverOption func(*Driver)

// WithLogger sets the driver's logger.
func WithLogger(l log.Logger) DriverOption {
	return func(d *Driver) { d.logger = l }
}

// WithObserver appends observers. They are called in order for every due
// snapshot.
func WithObserver(obs ...Observer) DriverOption {
	return func(d *Driver) { d.observers = append(d.observers, obs...) }
}

// WithTransform replaces the default go-dsp transform.
func WithTransform(tr Transform) DriverOption {
	return func(d *Driver) { d.tr = tr }
}

// WithHaltOnBlowup makes Run stop with ErrUnstable at the first non-finite
// snapshot instead of only reporting it.
func WithHaltOnBlowup(halt bool) DriverOption {
	return func(d *Driver) { d.haltOnBlowup = halt }
}

// Driver owns the time loop: it steps the integrator Nt times, decides when
// a step is due for output and feeds snapshots to observers.
type Driver struct {
	params  Params
	grid    *Grid
	tr      Transform
	stepper *Stepper

	observers    []Observer
	haltOnBlowup bool
	logger       log.Logger

	state State
}

// NewDriver validates p, builds the grids, the transform and the stepper.
// psi0 is copied.
func NewDriver(p Params, psi0 *field.Complex2D, opts ...DriverOption) (*Driver, error) {
	d := &Driver{
		params: p,
		logger: log.NewNopLogger(),
		state:  Initializing,
	}
	for _, opt := range opts {
		opt(d)
	}
	d.logger = log.With(d.logger, "component", "driver")

	if err := p.Validate(); err != nil {
		return nil, err
	}

	grid, err := NewGrid(p.N, p.L)
	if err != nil {
		return nil, err
	}
	d.grid = grid

	if d.tr == nil {
		tr, err := NewDSPTransform(p.N)
		if err != nil {
			return nil, err
		}
		d.tr = tr
	}

	d.stepper, err = NewStepper(psi0, p, grid, d.tr)
	if err != nil {
		return nil, fmt.Errorf("failed to build stepper: %w", err)
	}

	level.Info(d.logger).Log("msg", "initialized", "N", p.N, "L", p.L, "dx", grid.Dx,
		"dt", p.Dt, "tEnd", p.TEnd, "tOut", p.TOut, "Nt", p.Steps(), "alpha", p.Alpha, "beta", p.Beta)
	return d, nil
}

// State returns the current lifecycle stage.
func (d *Driver) State() State { return d.state }

// Grid returns the simulation grid.
func (d *Driver) Grid() *Grid { return d.grid }

// Field returns a copy of the current order parameter.
func (d *Driver) Field() *field.Complex2D { return d.stepper.Field() }

// Run executes the time loop. The context is checked between steps only,
// so a cancelled run always finishes the step in flight. Cancellation is a
// normal termination: Result.Cancelled is set and the error is nil.
func (d *Driver) Run(ctx context.Context) (Result, error) {
	if d.state != Initializing {
		return Result{}, fmt.Errorf("tdgl: driver already %s", d.state)
	}
	d.state = Running
	defer func() { d.state = Terminated }()

	nt := d.params.Steps()
	dt := d.params.Dt
	res := Result{FirstNonFinite: -1}

	t := 0.0
	outputCount := 1
	for i := 0; i < nt; i++ {
		select {
		case <-ctx.Done():
			res.Cancelled = true
			level.Info(d.logger).Log("msg", "cancelled", "step", i, "t", t, "reason", ctx.Err())
			return res, nil
		default:
		}

		psi, err := d.stepper.Step()
		if err != nil {
			return res, &StepError{Step: i, Time: t, Wrapped: err}
		}
		t += dt
		res.Steps = i + 1
		res.Time = t
		level.Debug(d.logger).Log("msg", "step", "step", i, "t", t)

		if res.FirstNonFinite < 0 && !psi.IsFinite() {
			res.FirstNonFinite = i
			level.Warn(d.logger).Log("msg", "field is no longer finite", "step", i, "t", t)
			if d.haltOnBlowup {
				return res, &StepError{Step: i, Time: t, Wrapped: ErrUnstable}
			}
		}

		final := i == nt-1
		if !(t+dt > float64(outputCount)*d.params.TOut) && !final {
			continue
		}

		snap := newSnapshot(i, t, final, psi)
		for _, obs := range d.observers {
			if err := obs.Observe(snap); err != nil {
				return res, &StepError{Step: i, Time: t, Wrapped: fmt.Errorf("observer: %w", err)}
			}
		}
		res.Snapshots++
		outputCount++
		level.Debug(d.logger).Log("msg", "snapshot", "step", i, "t", t, "mean", snap.Mean, "max", snap.Max, "final", final)
	}

	level.Info(d.logger).Log("msg", "finished", "steps", res.Steps, "t", res.Time, "snapshots", res.Snapshots)
	return res, nil
}
