package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newProvisionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "provision [workdir] [cachedir]",
		Short: "Install both toolchains and write the environment descriptor",
		Long: "Installs the JDK from its binary distribution, builds Python from source, verifies both\n" +
			"and writes <workdir>/env.sh. Both directories are created if absent.",
		Args: cobra.MaximumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options(cmd)
			if len(args) > 0 {
				opts.WorkDir = args[0]
			}
			if len(args) > 1 {
				opts.CacheDir = args[1]
			}

			_, err := c.app.Provision(cmd.Context(), opts)
			return err
		},
	}
}
