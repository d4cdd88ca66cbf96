package render

import (
	"fmt"
	"io"

	"github.com/guptarohit/asciigraph"

	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

// ChartSink collects the mean magnitude of every snapshot and renders the
// history as a text chart.
type ChartSink struct {
	Height, Width int

	times []float64
	means []float64
}

// NewChartSink returns a chart sink with a 12 x 72 plot area.
func NewChartSink() *ChartSink {
	return &ChartSink{Height: 12, Width: 72}
}

// Observe records s.Mean.
func (c *ChartSink) Observe(s tdgl.Snapshot) error {
	c.times = append(c.times, s.Time)
	c.means = append(c.means, s.Mean)
	return nil
}

// Len returns the number of recorded snapshots.
func (c *ChartSink) Len() int { return len(c.means) }

// Render writes the chart to w. It writes nothing if no snapshot arrived.
func (c *ChartSink) Render(w io.Writer) error {
	if len(c.means) == 0 {
		return nil
	}
	caption := fmt.Sprintf("mean |psi|, t = %.4g .. %.4g", c.times[0], c.times[len(c.times)-1])
	chart := asciigraph.Plot(c.means,
		asciigraph.Height(c.Height),
		asciigraph.Width(c.Width),
		asciigraph.Caption(caption))
	_, err := fmt.Fprintln(w, chart)
	return err
}
