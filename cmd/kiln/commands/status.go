package commands

import (
	"github.com/spf13/cobra"
	"go.trai.ch/zerr"
	"gopkg.in/yaml.v3"
)

func (c *CLI) newStatusCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "status [workdir]",
		Short: "Print the manifest of the last run",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := options(cmd)
			if len(args) > 0 {
				opts.WorkDir = args[0]
			}

			manifest, err := c.app.Status(opts)
			if err != nil {
				return err
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err := enc.Encode(manifest); err != nil {
				return zerr.Wrap(err, "failed to render manifest")
			}
			return enc.Close()
		},
	}
}
