package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func (c *cli) newSessionsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sessions",
		Short: "Manage login sessions",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "prune",
		Short: "Delete expired sessions",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			app, err := c.openApp()
			if err != nil {
				return err
			}
			defer app.Close()

			n, err := app.Auth.PruneSessions(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Pruned %d expired session(s)\n", n)
			return nil
		},
	})
	return cmd
}
