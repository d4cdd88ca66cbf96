package runlog

import (
	"context"

	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

// Recorder is a tdgl.Observer that writes every snapshot of one run.
type Recorder struct {
	store *Store
	ctx   context.Context
	runID string
}

// NewRecorder starts a run in store and returns its recorder. Writes are
// detached from ctx cancellation so a cancelled run still records its
// last snapshot and its outcome.
func NewRecorder(ctx context.Context, store *Store, p tdgl.Params) (*Recorder, error) {
	ctx = context.WithoutCancel(ctx)
	id, err := store.StartRun(ctx, p)
	if err != nil {
		return nil, err
	}
	return &Recorder{store: store, ctx: ctx, runID: id}, nil
}

// RunID returns the id of the recorded run.
func (r *Recorder) RunID() string { return r.runID }

// Observe stores the snapshot diagnostics.
func (r *Recorder) Observe(s tdgl.Snapshot) error {
	return r.store.AddSnapshot(r.ctx, r.runID, Entry{
		Step:   s.Step,
		Time:   s.Time,
		Mean:   s.Mean,
		Max:    s.Max,
		Finite: s.Finite,
		Final:  s.Final,
	})
}

// Finish stores the run outcome. runErr is the error returned by the
// driver, if any.
func (r *Recorder) Finish(res tdgl.Result, runErr error) error {
	status := StatusCompleted
	switch {
	case runErr != nil:
		status = StatusFailed
	case res.Cancelled:
		status = StatusCancelled
	}
	return r.store.FinishRun(r.ctx, r.runID, status, res)
}
