package cli

import (
	"github.com/spf13/cobra"
)

func (c *Cli) syncCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "sync",
		Short: "Upload pending requests, then refresh every snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c.io.Println("=== Synchronization ===")

			pending, err := c.session.CountPendingRequests(ctx)
			if err != nil {
				return err
			}

			if err := c.session.Synchronize(ctx); err != nil {
				c.hint(err)
				return err
			}

			c.io.Println("✓ Synchronization completed successfully!")
			c.io.Printf("Uploaded requests: %d\n", pending)
			return nil
		},
	}
}
