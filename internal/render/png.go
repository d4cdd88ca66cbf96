package render

import (
	"fmt"
	"image/png"
	"os"
	"path/filepath"

	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

// PNGSink writes the final snapshot of a completed run as a PNG file.
type PNGSink struct {
	Path string
	Opts Options

	written bool
}

// NewPNGSink returns a sink writing to path with default options.
func NewPNGSink(path string) *PNGSink {
	return &PNGSink{Path: path, Opts: DefaultOptions()}
}

// Observe writes the image when s is the final snapshot.
func (p *PNGSink) Observe(s tdgl.Snapshot) error {
	if !s.Final {
		return nil
	}
	if err := WritePNG(p.Path, s.Magnitude, p.Opts); err != nil {
		return err
	}
	p.written = true
	return nil
}

// Written reports whether the final image was saved.
func (p *PNGSink) Written() bool { return p.written }

// CheckWritable reports an error if an image can not be created at path:
// its directory must exist and accept new files. Nothing is left behind.
func CheckWritable(path string) error {
	tmp, err := os.CreateTemp(filepath.Dir(path), ".superconductor-*.png")
	if err != nil {
		return fmt.Errorf("image path %s is not writable: %w", path, err)
	}
	name := tmp.Name()
	tmp.Close()
	return os.Remove(name)
}

// WritePNG renders mag and saves it to path. The file is written under a
// temporary name and renamed, so an existing image is never left half
// written.
func WritePNG(path string, mag [][]float64, opts Options) error {
	dir := filepath.Dir(path)
	tmp, err := os.CreateTemp(dir, ".superconductor-*.png")
	if err != nil {
		return fmt.Errorf("failed to create image: %w", err)
	}
	defer os.Remove(tmp.Name())

	if err := png.Encode(tmp, Image(mag, opts)); err != nil {
		tmp.Close()
		return fmt.Errorf("failed to encode image: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("failed to write image: %w", err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return fmt.Errorf("failed to save image: %w", err)
	}
	return nil
}
