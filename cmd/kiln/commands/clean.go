package commands

import (
	"github.com/spf13/cobra"
)

func (c *CLI) newCleanCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "clean [cachedir]",
		Short: "Remove cached source archives",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options(cmd)
			if len(args) > 0 {
				opts.CacheDir = args[0]
			}

			_, err := c.app.Clean(opts)
			return err
		},
	}
}
