// Package connectivity reports whether the backend is reachable right now.
package connectivity

import (
	"context"
	"log/slog"
	"time"
)

//go:generate moq -out probe_mock.go . Probe

// Status is the result of a single connectivity check.
type Status struct {
	Connected bool `json:"connected"`
}

// Probe reports the current connectivity status. Implementations must not
// cache: every call performs a fresh check.
type Probe interface {
	Status(ctx context.Context) Status
}

// HealthChecker is the remote call used to detect reachability.
type HealthChecker interface {
	Health(ctx context.Context) error
}

// HTTPProbe считает сервер доступным, если health check прошел за timeout
type HTTPProbe struct {
	checker HealthChecker
	logger  *slog.Logger
	timeout time.Duration
}

// NewHTTPProbe creates a probe on top of the API client health endpoint
func NewHTTPProbe(checker HealthChecker, timeout time.Duration, logger *slog.Logger) *HTTPProbe {
	return &HTTPProbe{
		checker: checker,
		timeout: timeout,
		logger:  logger,
	}
}

// Status выполняет health check; любая ошибка означает offline
func (p *HTTPProbe) Status(ctx context.Context) Status {
	if p.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, p.timeout)
		defer cancel()
	}

	if err := p.checker.Health(ctx); err != nil {
		p.logger.Debug("Server unreachable", "error", err)
		return Status{Connected: false}
	}
	return Status{Connected: true}
}

// Static is a probe with a fixed answer, used for offline mode.
type Static bool

// Status returns the fixed answer.
func (s Static) Status(context.Context) Status {
	return Status{Connected: bool(s)}
}
