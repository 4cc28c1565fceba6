// Package session drives the lifecycle of a working session on the device:
// start (initial download), synchronize, end and force quit.
package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/iudanet/wastetrack/internal/client/connectivity"
	"github.com/iudanet/wastetrack/internal/client/storage"
	"github.com/iudanet/wastetrack/internal/models"
)

//go:generate moq -out engine_mock.go . Engine
//go:generate moq -out queue_mock.go . PendingQueue
//go:generate moq -out notifier_mock.go . LogoutNotifier

// Engine is the synchronization engine used by the manager.
type Engine interface {
	DownloadPermissions(ctx context.Context) error
	DownloadInventory(ctx context.Context) error
	DownloadMasterData(ctx context.Context) error
	DownloadOperation(ctx context.Context) error
	UploadData(ctx context.Context) error
	Load(ctx context.Context) error
	Reset()
}

// PendingQueue is the part of the pending-operations queue the manager needs.
type PendingQueue interface {
	Count(ctx context.Context) (int, error)
	Reset(ctx context.Context) error
}

// LogoutNotifier tells the server that the session is over.
type LogoutNotifier interface {
	Logout(ctx context.Context, accessToken string) error
}

var (
	// ErrNotLoggedIn is returned by Start when there is no stored session
	ErrNotLoggedIn = errors.New("not logged in")
	// ErrPendingRequests is returned by Start while unsent messages remain
	ErrPendingRequests = errors.New("pending requests must be uploaded first")
	// ErrOffline is returned by Synchronize when the server is unreachable
	ErrOffline = errors.New("server unreachable")
	// ErrUploadFailed means the pending queue could not be drained
	ErrUploadFailed = errors.New("upload failed")
	// ErrDownloadFailed means one of the snapshot downloads failed
	ErrDownloadFailed = errors.New("download failed")
)

// State is the lifecycle state of the session.
type State int

const (
	StateNoSession State = iota
	StateActive
	StateOffline
	StateClosing
)

func (s State) String() string {
	switch s {
	case StateNoSession:
		return "no_session"
	case StateActive:
		return "active"
	case StateOffline:
		return "offline"
	case StateClosing:
		return "closing"
	default:
		return fmt.Sprintf("state(%d)", int(s))
	}
}

type download struct {
	fn   func(ctx context.Context) error
	name string
}

// Manager is the Session Lifecycle Manager.
// Start, Synchronize, End and ForceQuit never run concurrently; a duplicate
// call of an operation already in flight shares its result.
type Manager struct {
	engine   Engine
	queue    PendingQueue
	probe    connectivity.Probe
	store    storage.Store
	notifier LogoutNotifier
	logger   *slog.Logger
	now      func() time.Time

	group singleflight.Group
	// opMu serializes lifecycle operations
	opMu sync.Mutex

	stateMu sync.RWMutex
	state   State
	online  bool
}

// NewManager creates a session manager. notifier may be nil.
func NewManager(
	engine Engine,
	queue PendingQueue,
	probe connectivity.Probe,
	store storage.Store,
	notifier LogoutNotifier,
	logger *slog.Logger,
) *Manager {
	return &Manager{
		engine:   engine,
		queue:    queue,
		probe:    probe,
		store:    store,
		notifier: notifier,
		logger:   logger,
		now:      time.Now,
		state:    StateNoSession,
		online:   true,
	}
}

// State returns the current lifecycle state. An active session whose last
// connectivity check failed is reported as Offline.
func (m *Manager) State() State {
	m.stateMu.RLock()
	defer m.stateMu.RUnlock()

	if m.state == StateActive && !m.online {
		return StateOffline
	}
	return m.state
}

func (m *Manager) setState(s State) {
	m.stateMu.Lock()
	m.state = s
	m.stateMu.Unlock()
}

func (m *Manager) setOnline(online bool) {
	m.stateMu.Lock()
	m.online = online
	m.stateMu.Unlock()
}

// IsOnline performs a fresh connectivity check
func (m *Manager) IsOnline(ctx context.Context) bool {
	online := m.probe.Status(ctx).Connected
	m.setOnline(online)
	return online
}

// IsLoggedIn reports whether a session with an access token is stored
func (m *Manager) IsLoggedIn(ctx context.Context) (bool, error) {
	session, err := m.session(ctx)
	if err != nil {
		return false, err
	}
	return session.LoggedIn(), nil
}

// session возвращает nil, если сессия не сохранена
func (m *Manager) session(ctx context.Context) (*models.Session, error) {
	var session models.Session
	if err := m.store.Get(ctx, storage.KeySession, &session); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read session: %w", err)
	}
	return &session, nil
}

// Restore rehydrates the state after a process restart: a stored session
// with a downloaded operation snapshot means the session is still active.
func (m *Manager) Restore(ctx context.Context) error {
	m.opMu.Lock()
	defer m.opMu.Unlock()

	loggedIn, err := m.IsLoggedIn(ctx)
	if err != nil {
		return err
	}

	var op models.Operation
	err = m.store.Get(ctx, storage.KeyOperation, &op)
	switch {
	case err == nil:
	case errors.Is(err, storage.ErrNotFound):
		loggedIn = false
	default:
		return fmt.Errorf("failed to read operation: %w", err)
	}

	if !loggedIn {
		m.setState(StateNoSession)
		return nil
	}

	if err := m.engine.Load(ctx); err != nil {
		return fmt.Errorf("failed to load snapshots: %w", err)
	}
	m.setState(StateActive)
	m.logger.Debug("Session restored")
	return nil
}

// run выполняет операцию жизненного цикла: дубликаты объединяются, разные операции идут по очереди
func (m *Manager) run(name string, fn func() error) error {
	_, err, shared := m.group.Do(name, func() (any, error) {
		m.opMu.Lock()
		defer m.opMu.Unlock()
		return nil, fn()
	})
	if shared {
		m.logger.Debug("Joined operation already in progress", "operation", name)
	}
	return err
}

func (m *Manager) downloads() []download {
	return []download{
		{name: "permissions", fn: m.engine.DownloadPermissions},
		{name: "inventory", fn: m.engine.DownloadInventory},
		{name: "master_data", fn: m.engine.DownloadMasterData},
		{name: "operation", fn: m.engine.DownloadOperation},
	}
}

func (m *Manager) downloadAll(ctx context.Context) error {
	for _, d := range m.downloads() {
		if err := d.fn(ctx); err != nil {
			m.logger.Error("Download failed", "group", d.name, "error", err)
			return fmt.Errorf("%w: %s: %w", ErrDownloadFailed, d.name, err)
		}
	}
	return nil
}

// Start begins a working session: requires a stored login and an empty
// queue, downloads every snapshot group and resets the queue.
func (m *Manager) Start(ctx context.Context) error {
	return m.run("start", func() error {
		session, err := m.session(ctx)
		if err != nil {
			return err
		}
		if !session.LoggedIn() {
			m.logger.Warn("Start refused: not logged in")
			return ErrNotLoggedIn
		}

		count, err := m.queue.Count(ctx)
		if err != nil {
			return fmt.Errorf("failed to count pending requests: %w", err)
		}
		if count > 0 {
			m.logger.Warn("Start refused: pending requests", "count", count)
			return fmt.Errorf("%w: %d", ErrPendingRequests, count)
		}

		if err := m.downloadAll(ctx); err != nil {
			return err
		}

		if err := m.queue.Reset(ctx); err != nil {
			m.logger.Error("Failed to reset queue", "error", err)
			return fmt.Errorf("failed to reset queue: %w", err)
		}

		startedAt := m.now().UTC()
		session.StartDate = &startedAt
		if err := m.store.Set(ctx, storage.KeySession, session); err != nil {
			return fmt.Errorf("failed to save session: %w", err)
		}

		m.setOnline(true)
		m.setState(StateActive)
		m.logger.Info("Session started", "user", session.UserName)
		return nil
	})
}

// Synchronize uploads pending messages and then refreshes every snapshot.
// Nothing is downloaded unless the upload drained the queue.
func (m *Manager) Synchronize(ctx context.Context) error {
	return m.run("synchronize", func() error {
		if !m.IsOnline(ctx) {
			m.logger.Warn("Synchronize skipped: offline")
			return ErrOffline
		}

		if err := m.engine.UploadData(ctx); err != nil {
			m.logger.Error("Synchronize upload failed", "error", err)
			return fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}

		if err := m.downloadAll(ctx); err != nil {
			return err
		}

		meta := models.SyncMeta{LastSync: m.now().UTC()}
		if err := m.store.Set(ctx, storage.KeySyncMeta, meta); err != nil {
			m.logger.Error("Failed to record sync time", "error", err)
			return fmt.Errorf("failed to record sync time: %w", err)
		}

		m.logger.Info("Synchronization completed")
		return nil
	})
}

// End uploads pending messages and, only if that succeeded, clears every
// local slot. A failed upload leaves the store untouched.
func (m *Manager) End(ctx context.Context) error {
	return m.run("end", func() error {
		prev := m.State()
		if prev == StateOffline {
			prev = StateActive
		}
		m.setState(StateClosing)

		if err := m.engine.UploadData(ctx); err != nil {
			m.setState(prev)
			m.logger.Error("End refused: upload failed", "error", err)
			return fmt.Errorf("%w: %w", ErrUploadFailed, err)
		}

		m.notifyLogout(ctx)

		if err := m.store.Clear(ctx); err != nil {
			m.setState(prev)
			m.logger.Error("Failed to clear local store", "error", err)
			return fmt.Errorf("failed to clear local store: %w", err)
		}

		m.engine.Reset()
		m.setState(StateNoSession)
		m.logger.Info("Session ended")
		return nil
	})
}

// notifyLogout сообщает серверу о выходе; ошибки только логируются
func (m *Manager) notifyLogout(ctx context.Context) {
	if m.notifier == nil {
		return
	}

	session, err := m.session(ctx)
	if err != nil || !session.LoggedIn() {
		return
	}

	if err := m.notifier.Logout(ctx, session.AccessToken); err != nil {
		m.logger.Warn("Server logout failed", "error", err)
	}
}

// ForceQuit clears every local slot regardless of pending messages.
func (m *Manager) ForceQuit(ctx context.Context) error {
	return m.run("force_quit", func() error {
		if err := m.store.Clear(ctx); err != nil {
			m.logger.Error("Force quit failed", "error", err)
			return fmt.Errorf("failed to clear local store: %w", err)
		}

		m.engine.Reset()
		m.setState(StateNoSession)
		m.logger.Warn("Session force quit")
		return nil
	})
}

// HasPendingRequests reports whether the queue holds unsent messages
func (m *Manager) HasPendingRequests(ctx context.Context) (bool, error) {
	count, err := m.CountPendingRequests(ctx)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}

// CountPendingRequests returns the number of unsent messages
func (m *Manager) CountPendingRequests(ctx context.Context) (int, error) {
	count, err := m.queue.Count(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to count pending requests: %w", err)
	}
	return count, nil
}

// LastSync returns the time of the last successful synchronization.
// The zero time means the session was never synchronized.
func (m *Manager) LastSync(ctx context.Context) (time.Time, error) {
	var meta models.SyncMeta
	if err := m.store.Get(ctx, storage.KeySyncMeta, &meta); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return time.Time{}, nil
		}
		return time.Time{}, fmt.Errorf("failed to read sync meta: %w", err)
	}
	return meta.LastSync, nil
}
