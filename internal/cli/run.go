package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/go-kit/log"
	"github.com/go-kit/log/level"
	"github.com/spf13/cobra"

	"github.com/pmocz/superconductor-spectral/internal/config"
	"github.com/pmocz/superconductor-spectral/internal/logging"
	"github.com/pmocz/superconductor-spectral/internal/noise"
	"github.com/pmocz/superconductor-spectral/internal/render"
	"github.com/pmocz/superconductor-spectral/internal/runlog"
	"github.com/pmocz/superconductor-spectral/internal/tdgl"
	"github.com/pmocz/superconductor-spectral/internal/viewer"
)

// NewRunCommand creates the run command.
func NewRunCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Run a simulation",
		Long: `Run a simulation from small Gaussian noise and save the final
magnitude |psi| as an image.

SIGINT or SIGTERM stop the run after the step in flight; a cancelled run
writes no image.

Example:
  superconductor run
  superconductor run --n 128 --length 64 --t-end 50 --image out.png
  superconductor run --realtime --record runs.db`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			return runSimulation(ctx, rootOpts, cmd)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}

// sinks are the observers attached to one run.
type sinks struct {
	png   *render.PNGSink
	chart *render.ChartSink
	rec   *runlog.Recorder
	store *runlog.Store
}

func (s *sinks) observers() []tdgl.Observer {
	// recorder first: it stores the final snapshot even if the image write fails
	var obs []tdgl.Observer
	if s.rec != nil {
		obs = append(obs, s.rec)
	}
	if s.chart != nil {
		obs = append(obs, s.chart)
	}
	if s.png != nil {
		obs = append(obs, s.png)
	}
	return obs
}

func runSimulation(parent context.Context, opts *RootOptions, cmd *cobra.Command) error {
	cfg, err := loadConfig(opts, cmd)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}
	logger, err := logging.New(cmd.ErrOrStderr(), cfg.Log.Format, cfg.Log.Level)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up logging", err)
	}
	logger = log.With(logger, "component", "cli")

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	tdgl.SetWorkers(cfg.Solver.FFTWorkers)
	p := cfg.Params()

	ropts, err := cfg.RenderOptions()
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to load configuration", err)
	}

	s, err := openSinks(ctx, cfg, ropts, p)
	if err != nil {
		return WrapExitError(ExitCommandError, "failed to set up outputs", err)
	}
	if s.store != nil {
		defer func() {
			if err := s.store.Close(); err != nil {
				level.Error(logger).Log("msg", "error closing run database", "err", err)
			}
		}()
	}

	level.Info(logger).Log("msg", "generating initial noise", "seed", p.Seed, "amplitude", cfg.Init.Amplitude)
	psi0 := noise.Gaussian(p.N, cfg.Init.Amplitude, p.Seed)

	execute := func(ctx context.Context, extra ...tdgl.Observer) (tdgl.Result, error) {
		d, err := tdgl.NewDriver(p, psi0,
			tdgl.WithLogger(logger),
			tdgl.WithObserver(s.observers()...),
			tdgl.WithObserver(extra...),
			tdgl.WithHaltOnBlowup(cfg.Solver.HaltOnBlowup),
		)
		if err != nil {
			return tdgl.Result{FirstNonFinite: -1}, err
		}
		return d.Run(ctx)
	}

	var (
		res    tdgl.Result
		runErr error
	)
	if cfg.Output.Realtime {
		vopts := viewer.Options{
			Title:  fmt.Sprintf("Superconductor simulation - %dx%d", p.N, p.N),
			Render: ropts,
			Logger: logger,
		}
		runErr = viewer.Run(ctx, vopts, func(ctx context.Context, obs tdgl.Observer) error {
			var err error
			res, err = execute(ctx, obs)
			return err
		})
	} else {
		res, runErr = execute(ctx)
	}

	if s.rec != nil {
		if err := s.rec.Finish(res, runErr); err != nil {
			level.Error(logger).Log("msg", "failed to record run outcome", "run", s.rec.RunID(), "err", err)
		}
	}
	if runErr != nil {
		return WrapExitError(ExitFailure, "simulation failed", runErr)
	}

	out := cmd.OutOrStdout()
	report(out, res, s)
	if s.chart != nil && s.chart.Len() > 0 {
		if err := s.chart.Render(out); err != nil {
			return WrapExitError(ExitFailure, "failed to render chart", err)
		}
	}
	return nil
}

func openSinks(ctx context.Context, cfg config.Config, ropts render.Options, p tdgl.Params) (*sinks, error) {
	s := &sinks{}
	if cfg.Output.Image != "" {
		if err := render.CheckWritable(cfg.Output.Image); err != nil {
			return nil, err
		}
		s.png = render.NewPNGSink(cfg.Output.Image)
		s.png.Opts = ropts
	}
	if cfg.Output.Chart {
		s.chart = render.NewChartSink()
	}
	if cfg.Output.Record != "" {
		st, err := runlog.Open(cfg.Output.Record)
		if err != nil {
			return nil, err
		}
		rec, err := runlog.NewRecorder(ctx, st, p)
		if err != nil {
			st.Close()
			return nil, err
		}
		s.store, s.rec = st, rec
	}
	return s, nil
}
