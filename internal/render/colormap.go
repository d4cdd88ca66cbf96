// Package render turns magnitude snapshots into images and text charts.
package render

import (
	"image/color"
	"math"
)

// Colormap maps a value in [0,1] to a color.
type Colormap func(v float64) color.NRGBA

// BlueWhiteRed runs linearly from blue through white to red.
func BlueWhiteRed(v float64) color.NRGBA {
	v = clamp01(v)
	var r, g, b float64
	if v < 0.5 {
		r, g, b = 2*v, 2*v, 1
	} else {
		r, g, b = 1, 2*(1-v), 2*(1-v)
	}
	return color.NRGBA{R: toByte(r), G: toByte(g), B: toByte(b), A: 255}
}

// Viridis is a piecewise linear approximation of matplotlib's viridis.
func Viridis(v float64) color.NRGBA {
	v = clamp01(v)
	var r, g, b float64
	switch {
	case v < 0.25: // blue/purple
		f := v * 4
		r, g, b = 68+1*f, 1+55*f, 84+51*f
	case v < 0.5: // cyan/green
		f := (v - 0.25) * 4
		r, g, b = 69-48*f, 56+93*f, 135-7*f
	case v < 0.75: // yellow/green
		f := (v - 0.5) * 4
		r, g, b = 21+108*f, 149+51*f, 128-93*f
	default: // yellow
		f := (v - 0.75) * 4
		r, g, b = 129+126*f, 200+23*f, 35-31*f
	}
	return color.NRGBA{R: uint8(math.Round(r)), G: uint8(math.Round(g)), B: uint8(math.Round(b)), A: 255}
}

// ColormapByName returns the colormap called name ("bwr" or "viridis").
func ColormapByName(name string) (Colormap, bool) {
	switch name {
	case "bwr", "":
		return BlueWhiteRed, true
	case "viridis":
		return Viridis, true
	}
	return nil, false
}

// invalid marks NaN and Inf cells.
var invalid = color.NRGBA{R: 255, G: 0, B: 255, A: 255}

func clamp01(v float64) float64 { return math.Max(0, math.Min(1, v)) }

func toByte(v float64) uint8 { return uint8(math.Round(255 * clamp01(v))) }
