// Package cli implements the superconductor command tree.
package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pmocz/superconductor-spectral/internal/config"
)

// RootOptions holds global flags for all commands.
type RootOptions struct {
	ConfigFile string
}

// NewRootCommand creates the root command.
func NewRootCommand() *cobra.Command {
	opts := &RootOptions{}

	cmd := &cobra.Command{
		Use:   "superconductor",
		Short: "Time-dependent Ginzburg-Landau superconductor simulation",
		Long: `Simulate the order parameter of a 2D superconductor with the
time-dependent Ginzburg-Landau equation, integrated with a split-step
spectral method on a periodic square domain.`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.PersistentFlags().StringVar(&opts.ConfigFile, "config", "", "config file (yaml, toml or json)")
	config.RegisterLogFlags(cmd.PersistentFlags())

	cmd.AddCommand(NewRunCommand(opts))
	cmd.AddCommand(NewConfigCommand(opts))

	return cmd
}

// loadConfig resolves defaults, the config file, the environment and the
// command's flags.
func loadConfig(opts *RootOptions, cmd *cobra.Command) (config.Config, error) {
	v := config.New()
	if err := config.BindFlags(v, cmd.Flags()); err != nil {
		return config.Config{}, err
	}
	if err := config.ReadFile(v, opts.ConfigFile); err != nil {
		return config.Config{}, err
	}
	return load(v)
}

func load(v *viper.Viper) (config.Config, error) {
	cfg, err := config.Load(v)
	if err != nil {
		return config.Config{}, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
