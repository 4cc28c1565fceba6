// Package cli реализует команды терминального клиента.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/spf13/afero"

	"github.com/iudanet/wastetrack/internal/client/api"
	"github.com/iudanet/wastetrack/internal/client/auth"
	"github.com/iudanet/wastetrack/internal/client/connectivity"
	"github.com/iudanet/wastetrack/internal/client/iocli"
	"github.com/iudanet/wastetrack/internal/client/operation"
	"github.com/iudanet/wastetrack/internal/client/queue"
	"github.com/iudanet/wastetrack/internal/client/session"
	"github.com/iudanet/wastetrack/internal/client/storage/boltdb"
	"github.com/iudanet/wastetrack/internal/client/sync"
	"github.com/iudanet/wastetrack/internal/config"
)

// globalFlags are the persistent flags shared by every command.
type globalFlags struct {
	configPath   string
	serverURL    string
	dbPath       string
	logLevel     string
	password     string
	passwordFile string
	offline      bool
}

// Cli связывает команды с сервисами клиента.
// Сервисы создаются в setup после разбора флагов.
type Cli struct {
	io     iocli.IO
	fs     afero.Fs
	logOut io.Writer
	flags  globalFlags

	cfg       *config.Client
	logger    *slog.Logger
	store     *boltdb.Storage
	apiClient *api.Client
	queue     *queue.Queue
	engine    *sync.Service
	session   *session.Manager
	auth      *auth.Service
	ops       *operation.Service
}

// New creates the CLI. Logs go to stderr.
func New(term iocli.IO, fs afero.Fs) *Cli {
	return &Cli{
		io:     term,
		fs:     fs,
		logOut: os.Stderr,
	}
}

// setup загружает конфиг, открывает локальное хранилище и собирает сервисы
func (c *Cli) setup(ctx context.Context, changed func(name string) bool) error {
	cfg, err := config.LoadClient(c.fs, c.flags.configPath)
	if err != nil {
		return err
	}
	if changed("server") {
		cfg.ServerURL = c.flags.serverURL
	}
	if changed("db") {
		cfg.DBPath = c.flags.dbPath
	}
	if changed("log-level") {
		cfg.LogLevel = c.flags.logLevel
	}
	if err := cfg.Validate(); err != nil {
		return err
	}
	c.cfg = cfg

	level, _ := config.ParseLevel(cfg.LogLevel)
	c.logger = slog.New(slog.NewTextHandler(c.logOut, &slog.HandlerOptions{Level: level}))

	store, err := boltdb.New(ctx, cfg.DBPath)
	if err != nil {
		return fmt.Errorf("failed to open local database: %w", err)
	}
	c.store = store

	c.apiClient = api.NewClient(cfg.ServerURL)

	var probe connectivity.Probe = connectivity.NewHTTPProbe(c.apiClient, cfg.ProbeTimeout.Duration, c.logger)
	if c.flags.offline {
		probe = connectivity.Static(false)
	}

	c.auth = auth.NewService(c.apiClient, store, c.logger)
	c.queue = queue.New(store, c.logger)
	c.engine = sync.NewService(c.apiClient, store, c.queue, cfg.CallTimeout.Duration, c.logger).
		WithRefresher(c.auth)
	c.session = session.NewManager(c.engine, c.queue, probe, store, c.apiClient, c.logger)
	c.ops = operation.NewService(c.queue, c.engine, c.logger)

	if err := c.session.Restore(ctx); err != nil {
		return fmt.Errorf("failed to restore session: %w", err)
	}
	return nil
}

// Close закрывает локальное хранилище
func (c *Cli) Close() error {
	if c.store == nil {
		return nil
	}
	return c.store.Close()
}

// hint печатает подсказку для известных ошибок
func (c *Cli) hint(err error) {
	switch {
	case errors.Is(err, session.ErrNotLoggedIn), errors.Is(err, auth.ErrNotLoggedIn), errors.Is(err, sync.ErrNotLoggedIn):
		c.io.Println("Run 'wastetrack login' first.")
	case errors.Is(err, auth.ErrAlreadyLoggedIn):
		c.io.Println("Already logged in. Run 'wastetrack start' or 'wastetrack logout'.")
	case errors.Is(err, session.ErrPendingRequests):
		c.io.Println("Upload pending requests with 'wastetrack sync' before starting a new session.")
	case errors.Is(err, session.ErrOffline):
		c.io.Println("Server unreachable. Local changes stay queued until the next 'wastetrack sync'.")
	case errors.Is(err, session.ErrUploadFailed):
		c.io.Println("Some requests could not be uploaded; nothing was downloaded or deleted.")
		c.io.Println("Retry later, or use 'wastetrack force-quit --export FILE' to leave the session.")
	case errors.Is(err, operation.ErrForbidden):
		c.io.Println("Your account is not allowed to do this. Run 'wastetrack sync' to refresh permissions.")
	}
}

// push пытается сразу выгрузить изменение; неудача не ошибка команды
func (c *Cli) push(ctx context.Context) {
	if !c.session.IsOnline(ctx) {
		c.printQueued(ctx, "Offline: change queued")
		return
	}

	if err := <-c.engine.UploadAsync(ctx); err != nil {
		c.printQueued(ctx, "Upload failed: change queued")
		return
	}
	c.io.Println("✓ Uploaded to server")
}

func (c *Cli) printQueued(ctx context.Context, msg string) {
	n, err := c.session.CountPendingRequests(ctx)
	if err != nil {
		c.io.Println(msg)
		return
	}
	c.io.Printf("%s (%d pending)\n", msg, n)
}
