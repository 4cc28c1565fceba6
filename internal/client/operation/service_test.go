package operation

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wastetrack/internal/client/queue"
	"github.com/iudanet/wastetrack/internal/client/storage"
	"github.com/iudanet/wastetrack/internal/client/storage/memory"
	"github.com/iudanet/wastetrack/internal/client/sync"
	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/internal/validation"
)

type fixture struct {
	store *memory.Store
	queue *queue.Queue
	sync  *sync.Service
	svc   *Service
}

func newFixture(t *testing.T, grants ...string) *fixture {
	t.Helper()
	ctx := context.Background()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := memory.New()
	require.NoError(t, store.Set(ctx, storage.KeyPermissions, models.Permissions{Grants: grants}))
	require.NoError(t, store.Set(ctx, storage.KeyMasterData, models.MasterData{
		Materials: []models.CatalogItem{{ID: "mat-paper", Name: "Paper", Unit: "kg"}},
		Points:    []models.CatalogItem{{ID: "pt-1", Name: "Depot"}},
	}))
	require.NoError(t, store.Set(ctx, storage.KeyOperation, models.Operation{
		Processes:    []models.Process{{ID: "proc-1", Title: "Route 7", StatusID: models.StatusPending}},
		Subprocesses: []models.Subprocess{{ID: "sub-1", ProcessID: "proc-1", PointID: "pt-1", StatusID: models.StatusPending}},
		Tasks: []models.Task{{
			ID: "task-1", SubprocessID: "sub-1", MaterialID: "mat-paper", Unit: "kg",
			StatusID: models.StatusPending, Quantity: 10,
		}},
	}))

	q := queue.New(store, logger)
	engine := sync.NewService(&sync.APIClientMock{}, store, q, time.Second, logger)
	require.NoError(t, engine.Load(ctx))

	svc := NewService(q, engine, logger)
	svc.now = func() time.Time { return time.Date(2026, 6, 1, 9, 30, 0, 0, time.UTC) }

	return &fixture{store: store, queue: q, sync: engine, svc: svc}
}

func (f *fixture) pending(t *testing.T) []models.PendingMessage {
	t.Helper()
	msgs, err := f.queue.List(context.Background())
	require.NoError(t, err)
	return msgs
}

func (f *fixture) storedOperation(t *testing.T) models.Operation {
	t.Helper()
	var op models.Operation
	require.NoError(t, f.store.Get(context.Background(), storage.KeyOperation, &op))
	return op
}

func TestCreateProcess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermProcessCreate)

	p, err := f.svc.CreateProcess(ctx, NewProcess{Title: "Route 9", VehicleID: "veh-1"})
	require.NoError(t, err)
	assert.NotEmpty(t, p.ID)
	assert.Equal(t, models.CRUDCreate, p.CRUD)
	assert.Equal(t, models.StatusPending, p.StatusID)
	require.NotNil(t, p.CRUDDate)

	msgs := f.pending(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.EntityProcess, msgs[0].Entity)
	assert.Equal(t, models.CRUDCreate, msgs[0].CRUD)
	assert.Equal(t, *p.CRUDDate, msgs[0].CRUDDate)

	var payload models.Process
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	assert.Equal(t, p.ID, payload.ID)
	assert.Equal(t, "Route 9", payload.Title)

	op := f.storedOperation(t)
	assert.GreaterOrEqual(t, op.FindProcess(p.ID), 0)
	assert.Equal(t, 1, op.PendingCount())

	_, err = f.svc.CreateProcess(ctx, NewProcess{})
	assert.Error(t, err)
}

func TestCreateProcess_Forbidden(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.CreateProcess(context.Background(), NewProcess{Title: "Route 9"})
	assert.ErrorIs(t, err, ErrForbidden)
	assert.Empty(t, f.pending(t))
}

func TestCreateSubprocess(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermSubprocessCreate)

	sp, err := f.svc.CreateSubprocess(ctx, NewSubprocess{ProcessID: "proc-1", PointID: "pt-1", Kind: "pickup"})
	require.NoError(t, err)
	assert.Equal(t, "proc-1", sp.ProcessID)

	_, err = f.svc.CreateSubprocess(ctx, NewSubprocess{ProcessID: "missing", PointID: "pt-1"})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.CreateSubprocess(ctx, NewSubprocess{ProcessID: "proc-1", PointID: "pt-404"})
	assert.ErrorIs(t, err, ErrUnknownReference)

	assert.Len(t, f.pending(t), 1)
}

func TestSetSubprocessStatus(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermSubprocessApprove)

	sp, err := f.svc.SetSubprocessStatus(ctx, "sub-1", models.StatusApproved)
	require.NoError(t, err)
	assert.Equal(t, models.StatusApproved, sp.StatusID)
	assert.Equal(t, models.CRUDUpdate, sp.CRUD)

	msgs := f.pending(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.EntitySubprocess, msgs[0].Entity)
	assert.Equal(t, models.CRUDUpdate, msgs[0].CRUD)

	_, err = f.svc.SetSubprocessStatus(ctx, "sub-1", models.StatusRejected)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.SetSubprocessStatus(ctx, "sub-1", models.StatusPending)
	assert.ErrorIs(t, err, ErrInvalidStatus)

	_, err = f.svc.SetSubprocessStatus(ctx, "nope", models.StatusApproved)
	assert.ErrorIs(t, err, ErrNotFound)

	assert.Len(t, f.pending(t), 1)
}

func TestAddTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermTaskWrite)

	task, err := f.svc.AddTask(ctx, NewTask{SubprocessID: "sub-1", MaterialID: "mat-paper", Quantity: 2.5})
	require.NoError(t, err)
	assert.Equal(t, "kg", task.Unit)
	assert.InDelta(t, 2.5, task.Quantity, 1e-9)

	_, err = f.svc.AddTask(ctx, NewTask{SubprocessID: "sub-1", MaterialID: "mat-glass", Quantity: 1})
	assert.ErrorIs(t, err, ErrUnknownReference)

	_, err = f.svc.AddTask(ctx, NewTask{SubprocessID: "sub-x", MaterialID: "mat-paper", Quantity: 1})
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = f.svc.AddTask(ctx, NewTask{SubprocessID: "sub-1", MaterialID: "mat-paper", Quantity: -1})
	assert.ErrorIs(t, err, validation.ErrInvalidQuantity)

	op, ok := f.sync.Operation()
	require.True(t, ok)
	assert.Len(t, op.Tasks, 2)
	assert.Len(t, f.pending(t), 1)
}

func TestUpdateTaskQuantity(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermTaskWrite)

	task, err := f.svc.UpdateTaskQuantity(ctx, "task-1", 12)
	require.NoError(t, err)
	assert.InDelta(t, 12.0, task.Quantity, 1e-9)
	assert.Equal(t, models.CRUDUpdate, task.CRUD)

	op := f.storedOperation(t)
	assert.InDelta(t, 12.0, op.Tasks[op.FindTask("task-1")].Quantity, 1e-9)

	_, err = f.svc.UpdateTaskQuantity(ctx, "task-404", 1)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUpdateTaskQuantity_KeepsCreateMarker(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermTaskWrite)

	task, err := f.svc.AddTask(ctx, NewTask{SubprocessID: "sub-1", MaterialID: "mat-paper", Quantity: 1})
	require.NoError(t, err)

	updated, err := f.svc.UpdateTaskQuantity(ctx, task.ID, 3)
	require.NoError(t, err)
	assert.Equal(t, models.CRUDCreate, updated.CRUD)

	msgs := f.pending(t)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.CRUDCreate, msgs[0].CRUD)
	assert.Equal(t, models.CRUDUpdate, msgs[1].CRUD)
}

func TestDeleteTask(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermTaskWrite)

	require.NoError(t, f.svc.DeleteTask(ctx, "task-1"))

	op := f.storedOperation(t)
	assert.Equal(t, -1, op.FindTask("task-1"))

	msgs := f.pending(t)
	require.Len(t, msgs, 1)
	assert.Equal(t, models.CRUDDelete, msgs[0].CRUD)

	assert.ErrorIs(t, f.svc.DeleteTask(ctx, "task-1"), ErrNotFound)
}

func TestEdit_AppendFailureAbortsEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermTaskWrite)

	errFull := errors.New("disk full")
	failing := &failingOutbox{err: errFull}
	svc := NewService(failing, f.sync, slog.New(slog.NewTextHandler(io.Discard, nil)))

	_, err := svc.UpdateTaskQuantity(ctx, "task-1", 99)
	assert.ErrorIs(t, err, errFull)

	op := f.storedOperation(t)
	assert.InDelta(t, 10.0, op.Tasks[op.FindTask("task-1")].Quantity, 1e-9)

	cached, _ := f.sync.Operation()
	assert.InDelta(t, 10.0, cached.Tasks[cached.FindTask("task-1")].Quantity, 1e-9)
}

type failingOutbox struct {
	err error
}

func (o *failingOutbox) Append(context.Context, *models.PendingMessage) error {
	return o.err
}

// opWriteFailingStore отказывает только в записи операционного снапшота
type opWriteFailingStore struct {
	storage.Store
	err error
}

func (s *opWriteFailingStore) Set(ctx context.Context, key storage.Key, value any) error {
	if key == storage.KeyOperation {
		return s.err
	}
	return s.Store.Set(ctx, key, value)
}

func TestEdit_SnapshotWriteFailureKeepsQueuedEdit(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermProcessCreate)
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	store := &opWriteFailingStore{Store: f.store, err: errors.New("disk full")}
	q := queue.New(store, logger)
	engine := sync.NewService(&sync.APIClientMock{}, store, q, time.Second, logger)
	require.NoError(t, engine.Load(ctx))
	svc := NewService(q, engine, logger)

	p, err := svc.CreateProcess(ctx, NewProcess{Title: "Route 9"})
	require.NoError(t, err)
	require.NotNil(t, p)

	msgs, err := q.List(ctx)
	require.NoError(t, err)
	require.Len(t, msgs, 1)

	var payload models.Process
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &payload))
	assert.Equal(t, p.ID, payload.ID)

	// снапшот прежний, правка ждет выгрузки в очереди
	op := f.storedOperation(t)
	assert.Equal(t, -1, op.FindProcess(p.ID))
}

func TestTaskEdits_RequirePendingTransaction(t *testing.T) {
	ctx := context.Background()
	f := newFixture(t, models.PermTaskWrite, models.PermSubprocessApprove)

	_, err := f.svc.SetSubprocessStatus(ctx, "sub-1", models.StatusApproved)
	require.NoError(t, err)

	_, err = f.svc.UpdateTaskQuantity(ctx, "task-1", 20)
	assert.ErrorIs(t, err, ErrInvalidStatus)
	assert.ErrorIs(t, f.svc.DeleteTask(ctx, "task-1"), ErrInvalidStatus)

	// в очереди только смена статуса
	assert.Len(t, f.pending(t), 1)

	op := f.storedOperation(t)
	i := op.FindTask("task-1")
	require.GreaterOrEqual(t, i, 0)
	assert.InDelta(t, 10.0, op.Tasks[i].Quantity, 1e-9)
}
