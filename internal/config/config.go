// Package config loads the run configuration from defaults, an optional
// config file, SUPERCONDUCTOR_* environment variables and command-line
// flags, in increasing order of precedence.
package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/pmocz/superconductor-spectral/internal/noise"
	"github.com/pmocz/superconductor-spectral/internal/render"
	"github.com/pmocz/superconductor-spectral/internal/tdgl"
)

// EnvPrefix prefixes environment overrides, e.g. SUPERCONDUCTOR_GRID_N.
const EnvPrefix = "SUPERCONDUCTOR"

// Config is the full run configuration.
type Config struct {
	Grid    Grid    `mapstructure:"grid" yaml:"grid"`
	Time    Time    `mapstructure:"time" yaml:"time"`
	Physics Physics `mapstructure:"physics" yaml:"physics"`
	Init    Init    `mapstructure:"init" yaml:"init"`
	Output  Output  `mapstructure:"output" yaml:"output"`
	Solver  Solver  `mapstructure:"solver" yaml:"solver"`
	Log     Log     `mapstructure:"log" yaml:"log"`
}

type Grid struct {
	N      int     `mapstructure:"n" yaml:"n"`
	Length float64 `mapstructure:"length" yaml:"length"`
}

type Time struct {
	Dt     float64 `mapstructure:"dt" yaml:"dt"`
	End    float64 `mapstructure:"end" yaml:"end"`
	Output float64 `mapstructure:"output" yaml:"output"`
}

type Physics struct {
	Alpha float64 `mapstructure:"alpha" yaml:"alpha"`
	Beta  float64 `mapstructure:"beta" yaml:"beta"`
}

type Init struct {
	Seed      int64   `mapstructure:"seed" yaml:"seed"`
	Amplitude float64 `mapstructure:"amplitude" yaml:"amplitude"`
}

// Output selects the sinks attached to a run.
type Output struct {
	Image    string `mapstructure:"image" yaml:"image"` // final PNG, empty disables
	Colormap string `mapstructure:"colormap" yaml:"colormap"`
	Scale    int    `mapstructure:"scale" yaml:"scale"`
	Realtime bool   `mapstructure:"realtime" yaml:"realtime"` // desktop viewer
	Chart    bool   `mapstructure:"chart" yaml:"chart"`       // terminal chart of mean |psi|
	Record   string `mapstructure:"record" yaml:"record"`     // SQLite path, empty disables
}

type Solver struct {
	FFTWorkers   int  `mapstructure:"fft_workers" yaml:"fft_workers"`
	HaltOnBlowup bool `mapstructure:"halt_on_blowup" yaml:"halt_on_blowup"`
}

type Log struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the reference configuration.
func Default() Config {
	p := tdgl.DefaultParams()
	return Config{
		Grid:    Grid{N: p.N, Length: p.L},
		Time:    Time{Dt: p.Dt, End: p.TEnd, Output: p.TOut},
		Physics: Physics{Alpha: p.Alpha, Beta: p.Beta},
		Init:    Init{Seed: p.Seed, Amplitude: noise.DefaultAmplitude},
		Output:  Output{Image: "superconductor.png", Colormap: "bwr", Scale: 1},
		Log:     Log{Level: "info", Format: "logfmt"},
	}
}

// flagKeys maps flag names to configuration keys.
var flagKeys = map[string]string{
	"n":              "grid.n",
	"length":         "grid.length",
	"dt":             "time.dt",
	"t-end":          "time.end",
	"t-out":          "time.output",
	"alpha":          "physics.alpha",
	"beta":           "physics.beta",
	"seed":           "init.seed",
	"amplitude":      "init.amplitude",
	"image":          "output.image",
	"colormap":       "output.colormap",
	"scale":          "output.scale",
	"realtime":       "output.realtime",
	"chart":          "output.chart",
	"record":         "output.record",
	"fft-workers":    "solver.fft_workers",
	"halt-on-blowup": "solver.halt_on_blowup",
	"log-level":      "log.level",
	"log-format":     "log.format",
}

// RegisterFlags adds the simulation flags to fs.
func RegisterFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.Int("n", d.Grid.N, "grid resolution N (cells per axis)")
	fs.Float64("length", d.Grid.Length, "domain length L")
	fs.Float64("dt", d.Time.Dt, "time step")
	fs.Float64("t-end", d.Time.End, "end time")
	fs.Float64("t-out", d.Time.Output, "output cadence")
	fs.Float64("alpha", d.Physics.Alpha, "linear dispersion alpha")
	fs.Float64("beta", d.Physics.Beta, "nonlinear dispersion beta")
	fs.Int64("seed", d.Init.Seed, "initial noise seed")
	fs.Float64("amplitude", d.Init.Amplitude, "initial noise standard deviation")
	fs.String("image", d.Output.Image, "final PNG path (empty disables)")
	fs.String("colormap", d.Output.Colormap, "colormap for images (bwr|viridis)")
	fs.Int("scale", d.Output.Scale, "PNG pixels per grid cell")
	fs.Bool("realtime", d.Output.Realtime, "animate the run in a window")
	fs.Bool("chart", d.Output.Chart, "print a chart of the mean magnitude")
	fs.String("record", d.Output.Record, "SQLite database to record the run in")
	fs.Int("fft-workers", d.Solver.FFTWorkers, "FFT worker pool size (0 keeps the library default)")
	fs.Bool("halt-on-blowup", d.Solver.HaltOnBlowup, "stop when the field becomes non-finite")
}

// RegisterLogFlags adds the logging flags to fs.
func RegisterLogFlags(fs *pflag.FlagSet) {
	d := Default()
	fs.String("log-level", d.Log.Level, "log level (debug|info|warn|error)")
	fs.String("log-format", d.Log.Format, "log format (logfmt|json)")
}

// New returns a viper instance with defaults and environment overrides set.
func New() *viper.Viper {
	v := viper.New()
	d := Default()
	v.SetDefault("grid.n", d.Grid.N)
	v.SetDefault("grid.length", d.Grid.Length)
	v.SetDefault("time.dt", d.Time.Dt)
	v.SetDefault("time.end", d.Time.End)
	v.SetDefault("time.output", d.Time.Output)
	v.SetDefault("physics.alpha", d.Physics.Alpha)
	v.SetDefault("physics.beta", d.Physics.Beta)
	v.SetDefault("init.seed", d.Init.Seed)
	v.SetDefault("init.amplitude", d.Init.Amplitude)
	v.SetDefault("output.image", d.Output.Image)
	v.SetDefault("output.colormap", d.Output.Colormap)
	v.SetDefault("output.scale", d.Output.Scale)
	v.SetDefault("output.realtime", d.Output.Realtime)
	v.SetDefault("output.chart", d.Output.Chart)
	v.SetDefault("output.record", d.Output.Record)
	v.SetDefault("solver.fft_workers", d.Solver.FFTWorkers)
	v.SetDefault("solver.halt_on_blowup", d.Solver.HaltOnBlowup)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// BindFlags binds every known flag present in fs to its key.
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	for name, key := range flagKeys {
		f := fs.Lookup(name)
		if f == nil {
			continue
		}
		if err := v.BindPFlag(key, f); err != nil {
			return fmt.Errorf("bind flag %q: %w", name, err)
		}
	}
	return nil
}

// ReadFile merges the config file at path (yaml, toml or json by
// extension). An empty path is a no-op.
func ReadFile(v *viper.Viper, path string) error {
	if path == "" {
		return nil
	}
	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return fmt.Errorf("failed to read config %s: %w", path, err)
	}
	return nil
}

// Load decodes and validates the configuration held by v.
func Load(v *viper.Viper) (Config, error) {
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return Config{}, fmt.Errorf("failed to decode config: %w", err)
	}
	if err := c.Validate(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Params returns the solver parameters.
func (c Config) Params() tdgl.Params {
	return tdgl.Params{
		N:     c.Grid.N,
		L:     c.Grid.Length,
		Dt:    c.Time.Dt,
		TEnd:  c.Time.End,
		TOut:  c.Time.Output,
		Alpha: c.Physics.Alpha,
		Beta:  c.Physics.Beta,
		Seed:  c.Init.Seed,
	}
}

// RenderOptions returns the image options selected by the output section.
func (c Config) RenderOptions() (render.Options, error) {
	cmap, ok := render.ColormapByName(c.Output.Colormap)
	if !ok {
		return render.Options{}, &tdgl.ConfigError{Field: "colormap", Reason: fmt.Sprintf("unknown colormap %q", c.Output.Colormap)}
	}
	opts := render.DefaultOptions()
	opts.Colormap = cmap
	opts.Scale = c.Output.Scale
	return opts, nil
}

// Validate checks the solver parameters and the output settings.
func (c Config) Validate() error {
	if err := c.Params().Validate(); err != nil {
		return err
	}
	if c.Init.Amplitude < 0 {
		return &tdgl.ConfigError{Field: "amplitude", Reason: fmt.Sprintf("must not be negative, got %g", c.Init.Amplitude)}
	}
	if c.Output.Scale < 1 {
		return &tdgl.ConfigError{Field: "scale", Reason: fmt.Sprintf("must be at least 1, got %d", c.Output.Scale)}
	}
	if _, err := c.RenderOptions(); err != nil {
		return err
	}
	if c.Solver.FFTWorkers < 0 {
		return &tdgl.ConfigError{Field: "fft_workers", Reason: "must not be negative"}
	}
	return nil
}

// Dump writes c as YAML.
func Dump(w io.Writer, c Config) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(4)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
