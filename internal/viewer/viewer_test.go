package viewer

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pmocz/superconductor-spectral/internal/render"
	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

func TestSinkDropsIntermediateFrames(t *testing.T) {
	frames := make(chan Frame, 1)
	s := NewSink(context.Background(), frames, nil)

	require.NoError(t, s.Observe(tdgl.Snapshot{Step: 0, Finite: true}))
	require.NoError(t, s.Observe(tdgl.Snapshot{Step: 1, Finite: true}))
	assert.Equal(t, 1, s.Dropped())

	f := <-frames
	assert.Equal(t, 0, f.Step)
}

func TestSinkDeliversFinalFrame(t *testing.T) {
	frames := make(chan Frame)
	s := NewSink(context.Background(), frames, nil)

	done := make(chan error)
	go func() { done <- s.Observe(tdgl.Snapshot{Step: 9, Final: true, Time: 2}) }()

	f := <-frames
	assert.True(t, f.Final)
	assert.Equal(t, 2.0, f.Time)
	assert.NoError(t, <-done)
}

func TestSinkFinalFrameGivesUpOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	s := NewSink(ctx, make(chan Frame), nil)
	assert.NoError(t, s.Observe(tdgl.Snapshot{Final: true}))
}

func TestPlotDraw(t *testing.T) {
	p := &plot{opts: render.DefaultOptions()}

	img := p.draw(8, 4)
	assert.Equal(t, 8, img.Bounds().Dx())
	assert.Equal(t, 4, img.Bounds().Dy())
	r, g, b, _ := img.At(3, 3).RGBA()
	assert.Equal(t, []uint32{20, 20, 40}, []uint32{r >> 8, g >> 8, b >> 8})

	p.set(Frame{Magnitude: [][]float64{{1, 1}, {1, 1}}})
	img = p.draw(8, 4)
	assert.Equal(t, render.BlueWhiteRed(1), img.At(5, 1))
}

func TestStatusText(t *testing.T) {
	assert.Contains(t, statusText(Frame{Step: 4, Finite: true, Mean: 0.5}), "step 4")
	assert.Contains(t, statusText(Frame{Step: 4, Finite: true, Final: true}), "finished after 5 steps")
	assert.Contains(t, statusText(Frame{Step: 4}), "not finite")
}
