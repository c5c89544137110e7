package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/cargonode/internal/adapters/flags"
	"go.trai.ch/cargonode/internal/core/domain"
)

// newBuiltinCmd creates the command for one built-in job. Flag parsing is
// left to the forwarder so unknown flags and -h/--help reach the tool.
func (c *CLI) newBuiltinCmd(command domain.Command) *cobra.Command {
	cmd := &cobra.Command{
		Use:                command.String() + " [flags] [--] [tool args...]",
		Short:              command.Summary(),
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			ov, err := flags.Split(args)
			if err != nil {
				return domain.NewFailure(domain.FailureConfiguration, command.String(), err)
			}
			return c.app.Run(cmd.Context(), command.String(), ov)
		},
	}
	if alias := command.Alias(); alias != "" {
		cmd.Aliases = []string{alias}
	}
	cmd.Flags().AddFlagSet(flags.FlagSet())
	return cmd
}

func (c *CLI) newJobCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:                "job NAME [flags] [--] [tool args...]",
		Short:              "Run a job defined in the project configuration",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			name, ov, err := flags.SplitJob(args)
			if err != nil {
				return domain.NewFailure(domain.FailureConfiguration, "", err)
			}
			return c.app.Run(cmd.Context(), name, ov)
		},
	}
	cmd.Flags().AddFlagSet(flags.FlagSet())
	return cmd
}
