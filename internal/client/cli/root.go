package cli

import (
	"github.com/spf13/cobra"
)

// Command builds the root cobra command with every subcommand attached
func (c *Cli) Command(version string) *cobra.Command {
	root := &cobra.Command{
		Use:           "wastetrack",
		Short:         "Offline-first client for waste collection runs",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.setup(cmd.Context(), cmd.Flags().Changed)
		},
	}

	pf := root.PersistentFlags()
	pf.StringVar(&c.flags.configPath, "config", "", "path to TOML config file")
	pf.StringVar(&c.flags.serverURL, "server", "", "server URL (overrides config)")
	pf.StringVar(&c.flags.dbPath, "db", "", "path to local database (overrides config)")
	pf.StringVar(&c.flags.logLevel, "log-level", "", "log level: debug, info, warn, error")
	pf.BoolVar(&c.flags.offline, "offline", false, "treat the server as unreachable")
	pf.StringVar(&c.flags.password, "password", "", "password (not recommended, use env or file)")
	pf.StringVar(&c.flags.passwordFile, "password-file", "", "path to file containing the password")

	root.AddCommand(
		c.registerCommand(),
		c.loginCommand(),
		c.startCommand(),
		c.syncCommand(),
		c.statusCommand(),
		c.pendingCommand(),
		c.logoutCommand(),
		c.forceQuitCommand(),
		c.operationCommand(),
		c.processCommand(),
		c.transactionCommand(),
		c.taskCommand(),
	)

	return root
}
