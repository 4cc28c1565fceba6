package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

func (c *Cli) registerCommand() *cobra.Command {
	var username, email string

	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a new user on the server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			c.io.Println("=== Registration ===")

			if username == "" {
				var err error
				if username, err = c.io.ReadInput("Username: "); err != nil {
					return fmt.Errorf("failed to read username: %w", err)
				}
			}

			password, err := c.getPassword("Password (min 8 chars): ")
			if err != nil {
				return err
			}
			// Подтверждение нужно только при интерактивном вводе
			if c.flags.password == "" && c.flags.passwordFile == "" && !passwordFromEnv() {
				confirm, err := c.io.ReadPassword("Confirm password: ")
				if err != nil {
					return fmt.Errorf("failed to read confirmation: %w", err)
				}
				if confirm != password {
					return errors.New("passwords do not match")
				}
			}

			resp, err := c.auth.Register(ctx, username, email, password)
			if err != nil {
				return err
			}

			c.io.Println("✓ Registration successful!")
			c.io.Printf("User ID:  %s\n", resp.UserID)
			c.io.Printf("Username: %s\n", username)
			c.io.Println("Run 'wastetrack login' to start a session.")
			return nil
		},
	}

	cmd.Flags().StringVarP(&username, "username", "u", "", "username")
	cmd.Flags().StringVar(&email, "email", "", "email (optional)")
	return cmd
}
