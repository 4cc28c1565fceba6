package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
)

func (c *Cli) logoutCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "logout",
		Short: "Upload pending requests and end the session",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			c.io.Println("=== Logout ===")

			if err := c.session.End(cmd.Context()); err != nil {
				c.hint(err)
				return fmt.Errorf("logout failed: %w", err)
			}

			c.io.Println("✓ Logout successful!")
			c.io.Println("Local data has been deleted.")
			return nil
		},
	}
}

func (c *Cli) forceQuitCommand() *cobra.Command {
	var (
		exportPath string
		discard    bool
	)

	cmd := &cobra.Command{
		Use:   "force-quit",
		Short: "Delete all local data without uploading",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			msgs, err := c.queue.List(ctx)
			if err != nil {
				return err
			}

			if len(msgs) > 0 {
				switch {
				case exportPath != "":
					data, err := json.MarshalIndent(msgs, "", "  ")
					if err != nil {
						return fmt.Errorf("failed to encode pending requests: %w", err)
					}
					if err := afero.WriteFile(c.fs, exportPath, data, 0o600); err != nil {
						return fmt.Errorf("failed to export pending requests: %w", err)
					}
					c.io.Printf("Exported %d pending request(s) to %s\n", len(msgs), exportPath)
				case !discard:
					return fmt.Errorf("%d pending request(s) would be lost: use --export FILE or --discard", len(msgs))
				}
			}

			if err := c.session.ForceQuit(ctx); err != nil {
				return fmt.Errorf("force quit failed: %w", err)
			}

			c.io.Println("✓ Local data has been deleted.")
			return nil
		},
	}

	cmd.Flags().StringVar(&exportPath, "export", "", "write pending requests to FILE before deleting")
	cmd.Flags().BoolVar(&discard, "discard", false, "delete pending requests without exporting")
	return cmd
}
