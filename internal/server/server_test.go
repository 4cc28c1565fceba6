package server_test

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wastetrack/internal/client/api"
	"github.com/iudanet/wastetrack/internal/client/auth"
	"github.com/iudanet/wastetrack/internal/client/connectivity"
	"github.com/iudanet/wastetrack/internal/client/operation"
	"github.com/iudanet/wastetrack/internal/client/queue"
	"github.com/iudanet/wastetrack/internal/client/session"
	"github.com/iudanet/wastetrack/internal/client/storage"
	"github.com/iudanet/wastetrack/internal/client/storage/memory"
	clientsync "github.com/iudanet/wastetrack/internal/client/sync"
	"github.com/iudanet/wastetrack/internal/config"
	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/internal/server"
	serverstorage "github.com/iudanet/wastetrack/internal/server/storage"
	"github.com/iudanet/wastetrack/internal/server/storage/sqlite"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func testConfig() config.Server {
	cfg := config.DefaultServer()
	cfg.JWTSecret = "0123456789abcdef0123456789abcdef"
	cfg.ShutdownTimeout = config.Duration{Duration: 2 * time.Second}
	return cfg
}

type backend struct {
	store *sqlite.Storage
	url   string
}

func startBackend(t *testing.T) *backend {
	t.Helper()
	return startBackendWithConfig(t, testConfig())
}

func startBackendWithConfig(t *testing.T, cfg config.Server) *backend {
	t.Helper()

	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)

	srv := server.New(cfg, store, testLogger(), "test")
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(func() {
		ts.Close()
		srv.Close()
		_ = store.Close()
	})

	return &backend{store: store, url: ts.URL}
}

// device собирает клиентский стек так же, как это делает CLI
type device struct {
	api     *api.Client
	store   storage.Store
	queue   *queue.Queue
	engine  *clientsync.Service
	session *session.Manager
	auth    *auth.Service
	ops     *operation.Service
}

func newDevice(url string) *device {
	logger := testLogger()
	apiClient := api.NewClient(url)
	store := memory.New()
	q := queue.New(store, logger)
	authSvc := auth.NewService(apiClient, store, logger)
	engine := clientsync.NewService(apiClient, store, q, 5*time.Second, logger).WithRefresher(authSvc)
	probe := connectivity.NewHTTPProbe(apiClient, time.Second, logger)

	return &device{
		api:     apiClient,
		store:   store,
		queue:   q,
		engine:  engine,
		session: session.NewManager(engine, q, probe, store, apiClient, logger),
		auth:    authSvc,
		ops:     operation.NewService(q, engine, logger),
	}
}

func TestEndToEnd_OfflineEditsReachServer(t *testing.T) {
	ctx := context.Background()
	be := startBackend(t)
	dev := newDevice(be.url)

	_, err := dev.auth.Register(ctx, "driver_01", "driver@example.com", "password123")
	require.NoError(t, err)
	sess, err := dev.auth.Login(ctx, "driver_01", "password123")
	require.NoError(t, err)

	require.NoError(t, dev.session.Start(ctx))
	assert.Equal(t, session.StateActive, dev.session.State())

	md, ok := dev.engine.MasterData()
	require.True(t, ok)
	assert.True(t, md.HasMaterial("mat-paper"))

	process, err := dev.ops.CreateProcess(ctx, operation.NewProcess{Title: "Route 9", VehicleID: "veh-truck-1"})
	require.NoError(t, err)
	sub, err := dev.ops.CreateSubprocess(ctx, operation.NewSubprocess{ProcessID: process.ID, PointID: "pt-depot", Kind: "pickup"})
	require.NoError(t, err)
	task, err := dev.ops.AddTask(ctx, operation.NewTask{SubprocessID: sub.ID, MaterialID: "mat-paper", Quantity: 12})
	require.NoError(t, err)
	_, err = dev.ops.UpdateTaskQuantity(ctx, task.ID, 15)
	require.NoError(t, err)

	pending, err := dev.session.CountPendingRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 4, pending)

	require.NoError(t, dev.session.Synchronize(ctx))

	pending, err = dev.session.CountPendingRequests(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	// снапшот скачан заново: серверная версия без CRUD маркеров
	op, ok := dev.engine.Operation()
	require.True(t, ok)
	require.Len(t, op.Tasks, 1)
	assert.Equal(t, task.ID, op.Tasks[0].ID)
	assert.InDelta(t, 15, op.Tasks[0].Quantity, 0.0001)
	assert.Equal(t, "kg", op.Tasks[0].Unit)
	assert.Equal(t, models.CRUDNone, op.Tasks[0].CRUD)
	assert.Zero(t, op.PendingCount())

	lastSync, err := dev.session.LastSync(ctx)
	require.NoError(t, err)
	assert.False(t, lastSync.IsZero())

	require.NoError(t, dev.session.End(ctx))
	assert.Equal(t, session.StateNoSession, dev.session.State())

	loggedIn, err := dev.session.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)

	// выход отзывает refresh tokens на сервере
	_, err = be.store.GetRefreshToken(ctx, sess.RefreshToken)
	assert.ErrorIs(t, err, serverstorage.ErrTokenNotFound)
}

func TestEndToEnd_ExpiredAccessTokenIsRefreshed(t *testing.T) {
	ctx := context.Background()
	cfg := testConfig()
	cfg.AccessTokenTTL = config.Duration{Duration: 2 * time.Second}
	be := startBackendWithConfig(t, cfg)
	dev := newDevice(be.url)

	_, err := dev.auth.Register(ctx, "driver_04", "", "password123")
	require.NoError(t, err)
	first, err := dev.auth.Login(ctx, "driver_04", "password123")
	require.NoError(t, err)
	require.NoError(t, dev.session.Start(ctx))

	process, err := dev.ops.CreateProcess(ctx, operation.NewProcess{Title: "Night run"})
	require.NoError(t, err)

	// работа офлайн дольше срока жизни access token
	time.Sleep(3100 * time.Millisecond)

	require.NoError(t, dev.session.Synchronize(ctx))

	pending, err := dev.session.CountPendingRequests(ctx)
	require.NoError(t, err)
	assert.Zero(t, pending)

	refreshed, err := dev.auth.Session(ctx)
	require.NoError(t, err)
	assert.NotEqual(t, first.AccessToken, refreshed.AccessToken)
	assert.NotEqual(t, first.RefreshToken, refreshed.RefreshToken)

	op, ok := dev.engine.Operation()
	require.True(t, ok)
	require.Len(t, op.Processes, 1)
	assert.Equal(t, process.ID, op.Processes[0].ID)

	require.NoError(t, dev.session.End(ctx))
	_, err = be.store.GetRefreshToken(ctx, refreshed.RefreshToken)
	assert.ErrorIs(t, err, serverstorage.ErrTokenNotFound)
}

func TestEndToEnd_RejectedMessageStaysQueued(t *testing.T) {
	ctx := context.Background()
	be := startBackend(t)
	dev := newDevice(be.url)

	_, err := dev.auth.Register(ctx, "driver_02", "", "password123")
	require.NoError(t, err)
	_, err = dev.auth.Login(ctx, "driver_02", "password123")
	require.NoError(t, err)
	require.NoError(t, dev.session.Start(ctx))

	// обновление задачи, которой сервер не знает
	msg, err := models.NewPendingMessage(models.EntityTask, models.CRUDUpdate, time.Now().UTC(),
		models.Task{ID: "ghost", StatusID: models.StatusPending, Quantity: 1})
	require.NoError(t, err)
	require.NoError(t, dev.queue.Append(ctx, msg))

	err = dev.session.Synchronize(ctx)
	require.ErrorIs(t, err, session.ErrUploadFailed)
	assert.Contains(t, err.Error(), "422")

	pending, err := dev.session.CountPendingRequests(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, pending)

	// неудачная выгрузка не дает закрыть сессию
	require.ErrorIs(t, dev.session.End(ctx), session.ErrUploadFailed)
	loggedIn, err := dev.session.IsLoggedIn(ctx)
	require.NoError(t, err)
	assert.True(t, loggedIn)
}

func TestEndToEnd_DuplicateDelivery(t *testing.T) {
	ctx := context.Background()
	be := startBackend(t)
	dev := newDevice(be.url)

	_, err := dev.auth.Register(ctx, "driver_03", "", "password123")
	require.NoError(t, err)
	sess, err := dev.auth.Login(ctx, "driver_03", "password123")
	require.NoError(t, err)

	msg, err := models.NewPendingMessage(models.EntityProcess, models.CRUDCreate, time.Now().UTC(),
		models.Process{ID: "proc-1", Title: "Run"})
	require.NoError(t, err)
	msg.ID = "msg-1"

	resp, err := dev.api.SendMessage(ctx, sess.AccessToken, msg)
	require.NoError(t, err)
	assert.False(t, resp.Duplicate)

	resp, err = dev.api.SendMessage(ctx, sess.AccessToken, msg)
	require.NoError(t, err)
	assert.True(t, resp.Duplicate)
}

func TestServer_ProtectedRoutesRequireToken(t *testing.T) {
	be := startBackend(t)

	for _, path := range []string{"/api/v1/permissions", "/api/v1/inventory", "/api/v1/masterdata", "/api/v1/operation"} {
		t.Run(path, func(t *testing.T) {
			resp, err := http.Get(be.url + path)
			require.NoError(t, err)
			defer func() { _ = resp.Body.Close() }()

			assert.Equal(t, http.StatusUnauthorized, resp.StatusCode)
		})
	}

	resp, err := http.Get(be.url + "/api/v1/health")
	require.NoError(t, err)
	defer func() { _ = resp.Body.Close() }()
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var health map[string]string
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "test", health["version"])
}

func TestServer_ServeStopsOnCancel(t *testing.T) {
	store, err := sqlite.New(context.Background(), ":memory:")
	require.NoError(t, err)
	defer func() { _ = store.Close() }()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := server.New(testConfig(), store, testLogger(), "test")

	done := make(chan error, 1)
	go func() { done <- srv.Serve(ctx, ln) }()

	require.Eventually(t, func() bool {
		return api.NewClient("http://"+ln.Addr().String()).Health(context.Background()) == nil
	}, 2*time.Second, 20*time.Millisecond)

	cancel()

	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(3 * time.Second):
		t.Fatal("server did not stop")
	}
}
