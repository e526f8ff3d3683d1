package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newEnvCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "env [workdir]",
		Short: "Print the environment descriptor of the last successful run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options(cmd)
			if len(args) > 0 {
				opts.WorkDir = args[0]
			}

			data, err := c.app.Env(opts)
			if err != nil {
				return err
			}

			_, err = cmd.OutOrStdout().Write(data)
			return err
		},
	}
}
