// Package server собирает HTTP API эталонного бэкенда.
package server

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/iudanet/wastetrack/internal/config"
	"github.com/iudanet/wastetrack/internal/server/handlers"
	"github.com/iudanet/wastetrack/internal/server/middleware"
	"github.com/iudanet/wastetrack/internal/server/storage/sqlite"
)

// tokenCleanupInterval период удаления истекших refresh tokens
const tokenCleanupInterval = time.Hour

// healthPath не логируется: клиенты опрашивают его перед каждой синхронизацией
const healthPath = "/api/v1/health"

// Server владеет HTTP сервером и фоновыми задачами бэкенда
type Server struct {
	cfg     config.Server
	logger  *slog.Logger
	store   *sqlite.Storage
	limiter *middleware.RateLimiter
	version string
}

// New creates a server on top of an opened storage
func New(cfg config.Server, store *sqlite.Storage, logger *slog.Logger, version string) *Server {
	return &Server{
		cfg:     cfg,
		logger:  logger,
		store:   store,
		limiter: middleware.NewRateLimiter(cfg.RateLimit, cfg.RateBurst, 10*time.Minute, logger),
		version: version,
	}
}

// Close stops background workers started by New
func (s *Server) Close() {
	s.limiter.Stop()
}

// Handler builds the routed and wrapped http.Handler
func (s *Server) Handler() http.Handler {
	jwtConfig := handlers.JWTConfig{
		Secret:          []byte(s.cfg.JWTSecret),
		AccessTokenTTL:  s.cfg.AccessTokenTTL.Duration,
		RefreshTokenTTL: s.cfg.RefreshTokenTTL.Duration,
	}

	authHandler := handlers.NewAuthHandler(s.logger, s.store, s.store, jwtConfig)
	healthHandler := handlers.NewHealthHandler(s.logger, s.store, s.version)
	syncHandler := handlers.NewSyncHandler(s.logger, s.store, s.store, s.store)
	requireAuth := middleware.AuthMiddleware(s.logger, jwtConfig)

	mux := http.NewServeMux()
	mux.HandleFunc("GET "+healthPath, healthHandler.Health)
	mux.HandleFunc("POST /api/v1/auth/register", authHandler.Register)
	mux.HandleFunc("POST /api/v1/auth/login", authHandler.Login)
	mux.HandleFunc("POST /api/v1/auth/refresh", authHandler.Refresh)
	mux.HandleFunc("POST /api/v1/auth/logout", authHandler.Logout)

	mux.Handle("GET /api/v1/permissions", requireAuth(http.HandlerFunc(syncHandler.GetPermissions)))
	mux.Handle("GET /api/v1/inventory", requireAuth(http.HandlerFunc(syncHandler.GetInventory)))
	mux.Handle("GET /api/v1/masterdata", requireAuth(http.HandlerFunc(syncHandler.GetMasterData)))
	mux.Handle("GET /api/v1/operation", requireAuth(http.HandlerFunc(syncHandler.GetOperation)))
	mux.Handle("POST /api/v1/messages", requireAuth(http.HandlerFunc(syncHandler.PostMessage)))

	// порядок: recovery снаружи, чтобы перехватить панику в любом слое
	var handler http.Handler = mux
	handler = middleware.RateLimitMiddleware(s.limiter)(handler)
	handler = middleware.LoggingWithSkip(s.logger, []string{healthPath})(handler)
	handler = middleware.RecoveryMiddleware(s.logger)(handler)
	return handler
}

// Run serves on cfg.Address until ctx is cancelled, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	ln, err := net.Listen("tcp", s.cfg.Address)
	if err != nil {
		return fmt.Errorf("listen %s: %w", s.cfg.Address, err)
	}
	return s.Serve(ctx, ln)
}

// Serve serves on ln until ctx is cancelled
func (s *Server) Serve(ctx context.Context, ln net.Listener) error {
	defer s.limiter.Stop()

	srv := &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return context.WithoutCancel(ctx) },
	}

	go s.cleanupTokens(ctx)

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("server started", slog.String("address", ln.Addr().String()), slog.String("version", s.version))
		errCh <- srv.Serve(ln)
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return fmt.Errorf("serve: %w", err)
	case <-ctx.Done():
	}

	s.logger.Info("shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), s.cfg.ShutdownTimeout.Duration)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("shutdown: %w", err)
	}
	return nil
}

// cleanupTokens периодически удаляет истекшие refresh tokens
func (s *Server) cleanupTokens(ctx context.Context) {
	ticker := time.NewTicker(tokenCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			n, err := s.store.DeleteExpiredTokens(ctx, now)
			if err != nil {
				s.logger.WarnContext(ctx, "failed to delete expired tokens", slog.Any("error", err))
				continue
			}
			if n > 0 {
				s.logger.InfoContext(ctx, "expired tokens deleted", slog.Int("count", n))
			}
		}
	}
}
