package sync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/iudanet/wastetrack/internal/client/queue"
	"github.com/iudanet/wastetrack/internal/client/storage"
	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/pkg/api"
)

//go:generate moq -out api_mock.go . APIClient
//go:generate moq -out refresher_mock.go . TokenRefresher

// APIClient is the remote side of synchronization.
type APIClient interface {
	GetPermissions(ctx context.Context, accessToken string) (*models.Permissions, error)
	GetInventory(ctx context.Context, accessToken string) (*models.Inventory, error)
	GetMasterData(ctx context.Context, accessToken string) (*models.MasterData, error)
	GetOperation(ctx context.Context, accessToken string) (*models.Operation, error)
	SendMessage(ctx context.Context, accessToken string, msg *models.PendingMessage) (*api.MessageResponse, error)
}

// TokenRefresher renews the tokens of the stored session.
type TokenRefresher interface {
	RefreshToken(ctx context.Context) error
}

// ErrNotLoggedIn is returned when no session with an access token is stored
var ErrNotLoggedIn = errors.New("not logged in")

// DefaultCallTimeout bounds every remote call made by the engine
const DefaultCallTimeout = 20 * time.Second

// Service is the synchronization engine.
// Downloads replace a snapshot slot wholesale; uploads drain the pending
// queue and never touch snapshots.
type Service struct {
	apiClient   APIClient
	refresher   TokenRefresher
	store       storage.Store
	queue       *queue.Queue
	logger      *slog.Logger
	now         func() time.Time
	callTimeout time.Duration

	// refreshMu не дает двум вызовам обновить один и тот же токен
	refreshMu sync.Mutex

	// mu guards the snapshot caches and serializes writes of snapshot slots
	mu          sync.RWMutex
	permissions *models.Permissions
	inventory   *models.Inventory
	masterData  *models.MasterData
	operation   *models.Operation
}

// NewService creates a new sync service
func NewService(apiClient APIClient, store storage.Store, q *queue.Queue, callTimeout time.Duration, logger *slog.Logger) *Service {
	if callTimeout <= 0 {
		callTimeout = DefaultCallTimeout
	}
	return &Service{
		apiClient:   apiClient,
		store:       store,
		queue:       q,
		logger:      logger,
		now:         time.Now,
		callTimeout: callTimeout,
	}
}

// WithRefresher lets the engine renew an access token rejected by the server.
// Without a refresher a 401 is returned to the caller as is.
func (s *Service) WithRefresher(r TokenRefresher) *Service {
	s.refresher = r
	return s
}

// accessToken читает токен из сохраненной сессии перед каждым вызовом
func (s *Service) accessToken(ctx context.Context) (string, error) {
	var session models.Session
	if err := s.store.Get(ctx, storage.KeySession, &session); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return "", ErrNotLoggedIn
		}
		return "", fmt.Errorf("failed to read session: %w", err)
	}
	if !session.LoggedIn() {
		return "", ErrNotLoggedIn
	}
	return session.AccessToken, nil
}

// authorized вызывает call с токеном из сессии под таймаутом.
// Если сервер отклонил токен, сессия обновляется и вызов повторяется один раз.
func (s *Service) authorized(ctx context.Context, call func(ctx context.Context, token string) error) error {
	token, err := s.accessToken(ctx)
	if err != nil {
		return err
	}

	err = s.timed(ctx, token, call)
	if s.refresher == nil || !errors.Is(err, api.ErrUnauthorized) {
		return err
	}

	if rerr := s.refresh(ctx, token); rerr != nil {
		return errors.Join(err, rerr)
	}
	if token, err = s.accessToken(ctx); err != nil {
		return err
	}
	return s.timed(ctx, token, call)
}

func (s *Service) timed(ctx context.Context, token string, call func(ctx context.Context, token string) error) error {
	callCtx, cancel := context.WithTimeout(ctx, s.callTimeout)
	defer cancel()
	return call(callCtx, token)
}

// refresh обновляет сессию, если отклоненный токен все еще сохранен
func (s *Service) refresh(ctx context.Context, rejected string) error {
	s.refreshMu.Lock()
	defer s.refreshMu.Unlock()

	current, err := s.accessToken(ctx)
	if err != nil {
		return err
	}
	if current != rejected {
		return nil
	}

	s.logger.Info("Access token rejected, refreshing session")
	if err := s.refresher.RefreshToken(ctx); err != nil {
		s.logger.Error("Session refresh failed", "error", err)
		return fmt.Errorf("refresh session: %w", err)
	}
	return nil
}

// fetch выполняет один удаленный вызов загрузки снапшота
func fetch[T any](ctx context.Context, s *Service, group string, call func(context.Context, string) (*T, error)) (*T, error) {
	var snap *T
	err := s.authorized(ctx, func(ctx context.Context, token string) error {
		var err error
		snap, err = call(ctx, token)
		return err
	})
	if err != nil {
		if !errors.Is(err, ErrNotLoggedIn) {
			s.logger.Error("Download failed", "group", group, "error", err)
		}
		return nil, fmt.Errorf("download %s: %w", group, err)
	}
	if snap == nil {
		return nil, fmt.Errorf("download %s: empty response", group)
	}
	return snap, nil
}

// persist перезаписывает слот целиком и только после этого обновляет кэш
func (s *Service) persist(ctx context.Context, group string, key storage.Key, snap any, assign func()) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.store.Set(ctx, key, snap); err != nil {
		s.logger.Error("Failed to store snapshot", "group", group, "key", key, "error", err)
		return fmt.Errorf("store %s: %w", group, err)
	}
	assign()

	s.logger.Info("Snapshot replaced", "group", group)
	return nil
}

// DownloadPermissions pulls the permissions snapshot and overwrites its slot
func (s *Service) DownloadPermissions(ctx context.Context) error {
	snap, err := fetch(ctx, s, "permissions", s.apiClient.GetPermissions)
	if err != nil {
		return err
	}
	snap.DownloadedAt = s.now().UTC()
	return s.persist(ctx, "permissions", storage.KeyPermissions, snap, func() { s.permissions = snap })
}

// DownloadInventory pulls the inventory snapshot and overwrites its slot
func (s *Service) DownloadInventory(ctx context.Context) error {
	snap, err := fetch(ctx, s, "inventory", s.apiClient.GetInventory)
	if err != nil {
		return err
	}
	snap.DownloadedAt = s.now().UTC()
	return s.persist(ctx, "inventory", storage.KeyInventory, snap, func() { s.inventory = snap })
}

// DownloadMasterData pulls reference data and overwrites its slot
func (s *Service) DownloadMasterData(ctx context.Context) error {
	snap, err := fetch(ctx, s, "master_data", s.apiClient.GetMasterData)
	if err != nil {
		return err
	}
	snap.DownloadedAt = s.now().UTC()
	return s.persist(ctx, "master_data", storage.KeyMasterData, snap, func() { s.masterData = snap })
}

// DownloadOperation pulls the operational snapshot and overwrites its slot.
// Local entities with a CRUD marker are replaced as well: callers upload first.
func (s *Service) DownloadOperation(ctx context.Context) error {
	snap, err := fetch(ctx, s, "operation", s.apiClient.GetOperation)
	if err != nil {
		return err
	}
	snap.DownloadedAt = s.now().UTC()
	return s.persist(ctx, "operation", storage.KeyOperation, snap, func() { s.operation = snap })
}

// UploadData drains the pending queue to the server.
// It returns nil only when the queue was drained completely.
func (s *Service) UploadData(ctx context.Context) error {
	// Токен читается только при отправке: пустая очередь выгружается и без сессии
	sent, err := s.queue.Drain(ctx, func(ctx context.Context, msg *models.PendingMessage) error {
		return s.authorized(ctx, func(ctx context.Context, token string) error {
			resp, err := s.apiClient.SendMessage(ctx, token, msg)
			if err != nil {
				return err
			}
			if resp != nil && resp.Duplicate {
				s.logger.Debug("Message already applied by server", "message_id", msg.ID)
			}
			return nil
		})
	})
	if err != nil {
		s.logger.Error("Upload failed", "sent", sent, "error", err)
		return fmt.Errorf("upload: %w", err)
	}

	s.logger.Info("Upload completed", "sent", sent)
	return nil
}

// UploadTransactions is UploadData under the name used by transaction screens
func (s *Service) UploadTransactions(ctx context.Context) error {
	return s.UploadData(ctx)
}

// UploadAsync runs UploadData in the background. The result is logged and
// delivered on the returned channel; callers may ignore it.
func (s *Service) UploadAsync(ctx context.Context) <-chan error {
	done := make(chan error, 1)
	go func() {
		err := s.UploadData(ctx)
		if err != nil {
			s.logger.Warn("Background upload did not complete", "error", err)
		}
		done <- err
		close(done)
	}()
	return done
}

// Load rehydrates the snapshot caches from the local store
func (s *Service) Load(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var (
		permissions models.Permissions
		inventory   models.Inventory
		masterData  models.MasterData
		operation   models.Operation
	)

	slots := []struct {
		dst    any
		assign func()
		key    storage.Key
	}{
		{key: storage.KeyPermissions, dst: &permissions, assign: func() { s.permissions = &permissions }},
		{key: storage.KeyInventory, dst: &inventory, assign: func() { s.inventory = &inventory }},
		{key: storage.KeyMasterData, dst: &masterData, assign: func() { s.masterData = &masterData }},
		{key: storage.KeyOperation, dst: &operation, assign: func() { s.operation = &operation }},
	}

	for _, slot := range slots {
		err := s.store.Get(ctx, slot.key, slot.dst)
		if errors.Is(err, storage.ErrNotFound) {
			continue
		}
		if err != nil {
			return fmt.Errorf("load %s: %w", slot.key, err)
		}
		slot.assign()
	}

	return nil
}

// Reset drops the in-memory caches (after the store was cleared)
func (s *Service) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.permissions = nil
	s.inventory = nil
	s.masterData = nil
	s.operation = nil
}

// Permissions returns the cached permissions snapshot.
// The returned value must be treated as read-only.
func (s *Service) Permissions() (*models.Permissions, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.permissions, s.permissions != nil
}

// Inventory returns the cached inventory snapshot (read-only)
func (s *Service) Inventory() (*models.Inventory, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inventory, s.inventory != nil
}

// MasterData returns the cached master data snapshot (read-only)
func (s *Service) MasterData() (*models.MasterData, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.masterData, s.masterData != nil
}

// Operation returns the cached operation snapshot (read-only)
func (s *Service) Operation() (*models.Operation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.operation, s.operation != nil
}

// UpdateOperation applies a local edit to a copy of the operation snapshot and
// persists it. The cache is swapped only after the store write succeeded.
func (s *Service) UpdateOperation(ctx context.Context, fn func(op *models.Operation) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	next := &models.Operation{}
	if s.operation != nil {
		next.DownloadedAt = s.operation.DownloadedAt
		next.Processes = slices.Clone(s.operation.Processes)
		next.Subprocesses = slices.Clone(s.operation.Subprocesses)
		next.Tasks = slices.Clone(s.operation.Tasks)
	}

	if err := fn(next); err != nil {
		return err
	}

	if err := s.store.Set(ctx, storage.KeyOperation, next); err != nil {
		return fmt.Errorf("store operation: %w", err)
	}
	s.operation = next
	return nil
}
