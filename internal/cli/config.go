package cli

import (
	"github.com/spf13/cobra"

	"github.com/pmocz/superconductor-spectral/internal/config"
)

// NewConfigCommand creates the config command.
func NewConfigCommand(rootOpts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Print the resolved configuration",
		Long: `Print the configuration a run with the same flags, config file and
SUPERCONDUCTOR_* environment would use, as YAML.

Example:
  superconductor config --n 128 > run.yaml
  superconductor run --config run.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(rootOpts, cmd)
			if err != nil {
				return WrapExitError(ExitCommandError, "failed to load configuration", err)
			}
			return config.Dump(cmd.OutOrStdout(), cfg)
		},
	}
	config.RegisterFlags(cmd.Flags())
	return cmd
}
