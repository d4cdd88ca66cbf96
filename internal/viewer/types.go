package viewer

import (
	"context"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

// Frame is sent FROM the simulation goroutine TO the UI goroutine.
type Frame struct {
	Step  int
	Time  float64
	Final bool

	// |psi|, owned by the receiver.
	Magnitude [][]float64
	Mean      float64
	Finite    bool

	// If not nil the run failed; the UI shows the error instead of a plot.
	Err error
}

// Sink forwards snapshots to the window. Intermediate frames are dropped
// when the UI falls behind; the final frame is always delivered unless the
// context is cancelled.
type Sink struct {
	ctx    context.Context
	frames chan<- Frame
	logger log.Logger

	dropped int
}

// NewSink returns a sink writing to frames.
func NewSink(ctx context.Context, frames chan<- Frame, logger log.Logger) *Sink {
	if logger == nil {
		logger = log.NewNopLogger()
	}
	return &Sink{ctx: ctx, frames: frames, logger: logger}
}

// Observe implements tdgl.Observer.
func (s *Sink) Observe(snap tdgl.Snapshot) error {
	f := Frame{
		Step:      snap.Step,
		Time:      snap.Time,
		Final:     snap.Final,
		Magnitude: snap.Magnitude,
		Mean:      snap.Mean,
		Finite:    snap.Finite,
	}
	if snap.Final {
		select {
		case s.frames <- f:
		case <-s.ctx.Done():
		}
		return nil
	}
	select {
	case s.frames <- f:
	default:
		s.dropped++
		level.Debug(s.logger).Log("msg", "frame channel full, skipping plot update", "step", snap.Step)
	}
	return nil
}

// Dropped returns the number of skipped frames.
func (s *Sink) Dropped() int { return s.dropped }
