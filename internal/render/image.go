package render

import (
	"image"
	"math"
)

// Options controls how a magnitude array becomes an image.
type Options struct {
	Colormap Colormap
	Min, Max float64 // color limits
	Scale    int     // pixels per cell, at least 1
}

// DefaultOptions uses the blue-white-red map with limits [0,1].
func DefaultOptions() Options {
	return Options{Colormap: BlueWhiteRed, Min: 0, Max: 1, Scale: 1}
}

// Image renders mag with row 0 at the bottom, so y increases upwards.
func Image(mag [][]float64, opts Options) *image.NRGBA {
	if opts.Colormap == nil {
		opts.Colormap = BlueWhiteRed
	}
	if opts.Scale < 1 {
		opts.Scale = 1
	}
	rows := len(mag)
	cols := 0
	if rows > 0 {
		cols = len(mag[0])
	}
	img := image.NewNRGBA(image.Rect(0, 0, cols*opts.Scale, rows*opts.Scale))

	span := opts.Max - opts.Min
	for r := 0; r < rows; r++ {
		y0 := (rows - 1 - r) * opts.Scale
		for c := 0; c < cols; c++ {
			val := mag[r][c]
			col := invalid
			if !math.IsNaN(val) && !math.IsInf(val, 0) {
				norm := 0.0
				if span > 0 {
					norm = (val - opts.Min) / span
				}
				col = opts.Colormap(norm)
			}
			x0 := c * opts.Scale
			for dy := 0; dy < opts.Scale; dy++ {
				for dx := 0; dx < opts.Scale; dx++ {
					img.SetNRGBA(x0+dx, y0+dy, col)
				}
			}
		}
	}
	return img
}

// Resample renders mag into a w x h image by nearest-cell lookup.
func Resample(mag [][]float64, w, h int, opts Options) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	rows := len(mag)
	if rows == 0 || len(mag[0]) == 0 || w <= 0 || h <= 0 {
		return img
	}
	cols := len(mag[0])
	cells := Image(mag, Options{Colormap: opts.Colormap, Min: opts.Min, Max: opts.Max, Scale: 1})
	for y := 0; y < h; y++ {
		cy := y * rows / h
		for x := 0; x < w; x++ {
			cx := x * cols / w
			img.SetNRGBA(x, y, cells.NRGBAAt(cx, cy))
		}
	}
	return img
}
