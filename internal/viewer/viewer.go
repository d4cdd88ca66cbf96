// Package viewer animates a run in a desktop window. Closing the window
// cancels the run.
package viewer

import (
	"context"
	"fmt"
	"image"
	"image/color"
	"sync"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/widget"
	"github.com/go-kit/log"
	"github.com/go-kit/log/level"

	"github.com/pmocz/superconductor-spectral/internal/render"
	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

// RunFunc runs the simulation, feeding obs, until done or ctx is cancelled.
type RunFunc func(ctx context.Context, obs tdgl.Observer) error

// Options configures the window.
type Options struct {
	Title  string
	Render render.Options
	Size   float32 // initial plot edge in pixels
	Logger log.Logger
}

// Run opens the window, starts run in a separate goroutine and blocks until
// the window is closed. It must be called from the main goroutine. The
// window stays open after the run finishes so the final state can be
// inspected. The returned error is the one returned by run.
func Run(parent context.Context, opts Options, run RunFunc) error {
	if opts.Logger == nil {
		opts.Logger = log.NewNopLogger()
	}
	logger := log.With(opts.Logger, "component", "viewer")
	if opts.Size <= 0 {
		opts.Size = 512
	}

	ctx, cancel := context.WithCancel(parent)
	defer cancel()

	a := app.New()
	w := a.NewWindow(opts.Title)

	frames := make(chan Frame, 16)
	ui := newUI(w, opts)
	w.SetContent(ui.container)
	w.Resize(fyne.NewSize(opts.Size, opts.Size+60))
	w.CenterOnScreen()

	var (
		wg     sync.WaitGroup
		runErr error
	)
	wg.Add(1)
	go func() {
		defer wg.Done()
		defer close(frames)
		runErr = run(ctx, NewSink(ctx, frames, logger))
		if runErr != nil {
			select {
			case frames <- Frame{Err: runErr}:
			case <-ctx.Done():
			}
		}
	}()
	go ui.updateLoop(frames, logger)

	w.SetOnClosed(func() {
		level.Info(logger).Log("msg", "window closed by user")
		cancel()
		done := make(chan struct{})
		go func() {
			wg.Wait()
			close(done)
		}()
		select {
		case <-done:
			level.Debug(logger).Log("msg", "simulation finished cleanly")
		case <-time.After(2 * time.Second):
			level.Warn(logger).Log("msg", "timeout waiting for simulation")
		}
	})

	// parent cancellation (e.g. SIGINT) closes the window
	go func() {
		<-ctx.Done()
		if parent.Err() != nil {
			a.Quit()
		}
	}()

	w.ShowAndRun()
	cancel()
	wg.Wait()
	return runErr
}

type appUI struct {
	window    fyne.Window
	plot      *plot
	raster    *canvas.Raster
	timeLabel *widget.Label
	statLabel *widget.Label
	container fyne.CanvasObject
}

func newUI(w fyne.Window, opts Options) *appUI {
	ui := &appUI{window: w, plot: &plot{opts: opts.Render}}

	ui.timeLabel = widget.NewLabel("t = 0.000")
	ui.timeLabel.Alignment = fyne.TextAlignTrailing
	ui.statLabel = widget.NewLabel("waiting for first step")

	ui.raster = canvas.NewRaster(ui.plot.draw)
	ui.raster.ScaleMode = canvas.ImageScalePixels
	ui.raster.SetMinSize(fyne.NewSize(opts.Size, opts.Size))

	status := container.NewBorder(nil, nil, ui.statLabel, ui.timeLabel)
	ui.container = container.NewBorder(nil, status, nil, nil, ui.raster)
	return ui
}

// updateLoop runs in its own goroutine and applies frames until the
// channel closes.
func (ui *appUI) updateLoop(frames <-chan Frame, logger log.Logger) {
	for f := range frames {
		if f.Err != nil {
			level.Error(logger).Log("msg", "run failed", "err", f.Err)
			dialog.ShowError(f.Err, ui.window)
			continue
		}
		ui.plot.set(f)
		ui.timeLabel.SetText(fmt.Sprintf("t = %.3f", f.Time))
		ui.statLabel.SetText(statusText(f))
		ui.raster.Refresh()
	}
}

func statusText(f Frame) string {
	switch {
	case !f.Finite:
		return fmt.Sprintf("step %d: field is not finite", f.Step)
	case f.Final:
		return fmt.Sprintf("finished after %d steps, mean |psi| = %.4f", f.Step+1, f.Mean)
	}
	return fmt.Sprintf("step %d, mean |psi| = %.4f", f.Step, f.Mean)
}

// plot holds the last frame and draws it on demand.
type plot struct {
	mu    sync.Mutex
	frame Frame
	opts  render.Options
}

var placeholder = color.NRGBA{R: 20, G: 20, B: 40, A: 255}

func (p *plot) set(f Frame) {
	p.mu.Lock()
	p.frame = f
	p.mu.Unlock()
}

// draw is the raster generator.
func (p *plot) draw(w, h int) image.Image {
	p.mu.Lock()
	mag := p.frame.Magnitude
	p.mu.Unlock()

	if len(mag) == 0 || len(mag[0]) == 0 {
		img := image.NewNRGBA(image.Rect(0, 0, w, h))
		for y := 0; y < h; y++ {
			for x := 0; x < w; x++ {
				img.SetNRGBA(x, y, placeholder)
			}
		}
		return img
	}
	return render.Resample(mag, w, h, p.opts)
}
