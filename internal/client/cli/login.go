package cli

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func passwordFromEnv() bool {
	return os.Getenv(PasswordEnv) != ""
}

func (c *Cli) loginCommand() *cobra.Command {
	var username string

	cmd := &cobra.Command{
		Use:   "login",
		Short: "Log in and start a session (downloads all data)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c.io.Println("=== Login ===")

			if username == "" {
				var err error
				if username, err = c.io.ReadInput("Username: "); err != nil {
					return fmt.Errorf("failed to read username: %w", err)
				}
			}

			password, err := c.getPassword("Password: ")
			if err != nil {
				return err
			}

			sess, err := c.auth.Login(ctx, username, password)
			if err != nil {
				c.hint(err)
				return err
			}
			c.io.Printf("✓ Logged in as %s\n", sess.UserName)

			c.io.Println("Downloading permissions, inventory, master data and operation...")
			if err := c.session.Start(ctx); err != nil {
				c.io.Println("Initial download failed. Run 'wastetrack start' to retry.")
				c.hint(err)
				return err
			}

			c.io.Println("✓ Session started")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	return cmd
}

func (c *Cli) startCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "start",
		Short: "Start a session for the logged in user (downloads all data)",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := c.session.Start(cmd.Context()); err != nil {
				c.hint(err)
				return err
			}
			c.io.Println("✓ Session started")
			return nil
		},
	}
}
