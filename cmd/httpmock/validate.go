package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func newValidateCommand(c *cli) *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate fixtures against the fixture schema",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fx, err := c.loadFixture()
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.OutOrStdout(), "%s: ok (%d hosts, %d responses)\n",
				c.fixturePath(), len(fx.Hosts), fx.ResponseCount())
			return err
		},
	}
}
