package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/iudanet/wastetrack/internal/config"
	"github.com/iudanet/wastetrack/internal/server"
	"github.com/iudanet/wastetrack/internal/server/storage/sqlite"
)

var (
	// Version information set via ldflags during build
	Version   = "dev"
	BuildDate = "unknown"
	GitCommit = "unknown"
)

type flags struct {
	configPath string
	address    string
	dbPath     string
	logLevel   string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := command().ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func command() *cobra.Command {
	var f flags

	cmd := &cobra.Command{
		Use:           "wastetrack-server",
		Short:         "Reference backend for the wastetrack offline client",
		Version:       fmt.Sprintf("%s (built %s, commit %s)", Version, BuildDate, GitCommit),
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, f)
			if err != nil {
				return err
			}
			return run(cmd.Context(), cfg)
		},
	}

	cmd.Flags().StringVarP(&f.configPath, "config", "c", "", "path to TOML config file")
	cmd.Flags().StringVar(&f.address, "address", "", "listen address (overrides config)")
	cmd.Flags().StringVar(&f.dbPath, "db", "", "path to SQLite database (overrides config)")
	cmd.Flags().StringVar(&f.logLevel, "log-level", "", "debug, info, warn or error (overrides config)")

	return cmd
}

// loadConfig применяет приоритет: флаги > env > файл > значения по умолчанию
func loadConfig(cmd *cobra.Command, f flags) (*config.Server, error) {
	cfg, err := config.LoadServer(afero.NewOsFs(), f.configPath)
	if err != nil {
		return nil, err
	}
	if cmd.Flags().Changed("address") {
		cfg.Address = f.address
	}
	if cmd.Flags().Changed("db") {
		cfg.DBPath = f.dbPath
	}
	if cmd.Flags().Changed("log-level") {
		cfg.LogLevel = f.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func run(ctx context.Context, cfg *config.Server) error {
	level, err := config.ParseLevel(cfg.LogLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)

	store, err := sqlite.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open storage: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close storage", slog.Any("error", err))
		}
	}()

	srv := server.New(*cfg, store, logger, Version)
	defer srv.Close()

	return srv.Run(ctx)
}
