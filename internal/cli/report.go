package cli

import (
	"fmt"
	"io"

	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

// report prints the run summary.
func report(w io.Writer, res tdgl.Result, s *sinks) {
	if res.Cancelled {
		fmt.Fprintf(w, "cancelled after %d steps at t = %.4f\n", res.Steps, res.Time)
	} else {
		fmt.Fprintf(w, "completed %d steps, t = %.4f, %d snapshots\n", res.Steps, res.Time, res.Snapshots)
	}
	if res.FirstNonFinite >= 0 {
		fmt.Fprintf(w, "warning: field became non-finite at step %d\n", res.FirstNonFinite)
	}
	if s.png != nil && s.png.Written() {
		fmt.Fprintf(w, "image saved to %s\n", s.png.Path)
	}
	if s.rec != nil {
		fmt.Fprintf(w, "recorded as run %s\n", s.rec.RunID())
	}
}
