package runlog

import (
	"context"
	"errors"
	"math"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmocz/superconductor-spectral/internal/noise"
	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

func openTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "runs.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func TestStoreRunLifecycle(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)
	fixed := time.Date(2023, 4, 1, 12, 0, 0, 0, time.UTC)
	s.now = func() time.Time { return fixed }

	p := tdgl.DefaultParams()
	id, err := s.StartRun(ctx, p)
	require.NoError(t, err)
	require.NotEmpty(t, id)

	run, err := s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusRunning, run.Status)
	assert.Equal(t, p, run.Params)
	assert.True(t, fixed.Equal(run.StartedAt))
	assert.True(t, run.FinishedAt.IsZero())

	require.NoError(t, s.AddSnapshot(ctx, id, Entry{Step: 0, Time: 0.2, Mean: 0.01, Max: 0.03, Finite: true}))
	require.NoError(t, s.AddSnapshot(ctx, id, Entry{Step: 4, Time: 1.0, Mean: math.NaN(), Max: math.Inf(1), Final: true}))

	require.NoError(t, s.FinishRun(ctx, id, StatusCompleted, tdgl.Result{Steps: 5, Time: 1.0}))
	run, err = s.GetRun(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, 5, run.Steps)
	assert.Equal(t, 1.0, run.SimTime)
	assert.True(t, fixed.Equal(run.FinishedAt))

	entries, err := s.Snapshots(ctx, id)
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, Entry{Step: 0, Time: 0.2, Mean: 0.01, Max: 0.03, Finite: true}, entries[0])
	assert.True(t, math.IsNaN(entries[1].Mean))
	assert.True(t, math.IsNaN(entries[1].Max))
	assert.False(t, entries[1].Finite)
	assert.True(t, entries[1].Final)
}

func TestStoreUnknownRun(t *testing.T) {
	ctx := context.Background()
	s := openTestStore(t)

	_, err := s.GetRun(ctx, "nope")
	assert.Error(t, err)
	assert.Error(t, s.FinishRun(ctx, "nope", StatusFailed, tdgl.Result{}))
	assert.Error(t, s.AddSnapshot(ctx, "nope", Entry{}))
}

func TestStoreReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "runs.db")
	s, err := Open(path)
	require.NoError(t, err)
	id, err := s.StartRun(context.Background(), tdgl.DefaultParams())
	require.NoError(t, err)
	require.NoError(t, s.Close())

	s, err = Open(path)
	require.NoError(t, err)
	defer s.Close()
	_, err = s.GetRun(context.Background(), id)
	assert.NoError(t, err)
}

func TestRecorderWithDriver(t *testing.T) {
	s := openTestStore(t)
	p := tdgl.DefaultParams()
	p.N, p.L, p.TEnd, p.TOut = 8, 16, 2, 0.4

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	rec, err := NewRecorder(ctx, s, p)
	require.NoError(t, err)

	d, err := tdgl.NewDriver(p, noise.Gaussian(p.N, noise.DefaultAmplitude, p.Seed), tdgl.WithObserver(rec))
	require.NoError(t, err)
	res, err := d.Run(ctx)
	require.NoError(t, err)
	require.NoError(t, rec.Finish(res, nil))

	run, err := s.GetRun(context.Background(), rec.RunID())
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, run.Status)
	assert.Equal(t, res.Steps, run.Steps)

	entries, err := s.Snapshots(context.Background(), rec.RunID())
	require.NoError(t, err)
	require.Len(t, entries, res.Snapshots)
	assert.True(t, entries[len(entries)-1].Final)
}

func TestRecorderStatus(t *testing.T) {
	s := openTestStore(t)
	ctx := context.Background()

	for _, tc := range []struct {
		res    tdgl.Result
		err    error
		status string
	}{
		{tdgl.Result{Steps: 3}, nil, StatusCompleted},
		{tdgl.Result{Steps: 2, Cancelled: true}, nil, StatusCancelled},
		{tdgl.Result{Steps: 1}, errors.New("boom"), StatusFailed},
	} {
		rec, err := NewRecorder(ctx, s, tdgl.DefaultParams())
		require.NoError(t, err)
		require.NoError(t, rec.Finish(tc.res, tc.err))
		run, err := s.GetRun(ctx, rec.RunID())
		require.NoError(t, err)
		assert.Equal(t, tc.status, run.Status)
	}
}
