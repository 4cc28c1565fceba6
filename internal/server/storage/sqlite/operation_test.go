package sqlite

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/internal/server/storage"
)

var allGrants = append([]string{models.PermSubprocessApprove}, models.DefaultGrants...)

func message(t *testing.T, kind models.EntityKind, op models.CRUDOp, entity any) *models.PendingMessage {
	t.Helper()
	msg, err := models.NewPendingMessage(kind, op, time.Now().UTC(), entity)
	require.NoError(t, err)
	msg.ID = uuid.New().String()
	return msg
}

func apply(t *testing.T, s *Storage, userID string, msg *models.PendingMessage) {
	t.Helper()
	duplicate, err := s.ApplyMessage(context.Background(), userID, msg)
	require.NoError(t, err)
	require.False(t, duplicate)
}

func TestApplyMessage_FullLifecycle(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, allGrants...)

	process := models.Process{ID: "proc-1", Title: "Route 9", VehicleID: "veh-truck-1", StatusID: models.StatusPending}
	sub := models.Subprocess{ID: "sub-1", ProcessID: "proc-1", PointID: "pt-depot", Kind: "pickup", StatusID: models.StatusPending}
	task := models.Task{ID: "task-1", SubprocessID: "sub-1", MaterialID: "mat-paper", Unit: "kg", Quantity: 12.5, StatusID: models.StatusPending}

	apply(t, s, userID, message(t, models.EntityProcess, models.CRUDCreate, process))
	apply(t, s, userID, message(t, models.EntitySubprocess, models.CRUDCreate, sub))
	apply(t, s, userID, message(t, models.EntityTask, models.CRUDCreate, task))

	task.Quantity = 20
	apply(t, s, userID, message(t, models.EntityTask, models.CRUDUpdate, task))
	sub.StatusID = models.StatusApproved
	apply(t, s, userID, message(t, models.EntitySubprocess, models.CRUDUpdate, sub))

	op, err := s.GetOperation(ctx, userID)
	require.NoError(t, err)
	require.Len(t, op.Processes, 1)
	require.Len(t, op.Subprocesses, 1)
	require.Len(t, op.Tasks, 1)
	assert.Equal(t, "Route 9", op.Processes[0].Title)
	assert.False(t, op.Processes[0].StartedAt.IsZero())
	assert.Equal(t, models.StatusApproved, op.Subprocesses[0].StatusID)
	assert.InDelta(t, 20, op.Tasks[0].Quantity, 0.0001)
	assert.Equal(t, models.CRUDNone, op.Tasks[0].CRUD)

	apply(t, s, userID, message(t, models.EntityTask, models.CRUDDelete, task))
	op, err = s.GetOperation(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, op.Tasks)

	// удаление рейса каскадом удаляет транзакции
	apply(t, s, userID, message(t, models.EntityProcess, models.CRUDDelete, process))
	op, err = s.GetOperation(ctx, userID)
	require.NoError(t, err)
	assert.Empty(t, op.Processes)
	assert.Empty(t, op.Subprocesses)
}

func TestApplyMessage_DuplicateIsNotReapplied(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, allGrants...)
	msg := message(t, models.EntityProcess, models.CRUDCreate, models.Process{ID: "proc-1", Title: "Run"})

	duplicate, err := s.ApplyMessage(ctx, userID, msg)
	require.NoError(t, err)
	assert.False(t, duplicate)

	duplicate, err = s.ApplyMessage(ctx, userID, msg)
	require.NoError(t, err)
	assert.True(t, duplicate)

	op, err := s.GetOperation(ctx, userID)
	require.NoError(t, err)
	assert.Len(t, op.Processes, 1)
}

func TestApplyMessage_Rejections(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s, allGrants...)
	otherID := createTestUser(t, ctx, s, allGrants...)
	limitedID := createTestUser(t, ctx, s, models.PermOperationRead)

	apply(t, s, userID, message(t, models.EntityProcess, models.CRUDCreate, models.Process{ID: "proc-1", Title: "Run"}))

	tests := []struct {
		wantErr error
		msg     *models.PendingMessage
		name    string
		userID  string
	}{
		{
			name:    "update before create",
			userID:  userID,
			msg:     message(t, models.EntityTask, models.CRUDUpdate, models.Task{ID: "task-x", StatusID: models.StatusPending}),
			wantErr: storage.ErrInvalidReference,
		},
		{
			name:    "subprocess of unknown process",
			userID:  userID,
			msg:     message(t, models.EntitySubprocess, models.CRUDCreate, models.Subprocess{ID: "sub-x", ProcessID: "nope", PointID: "pt-depot"}),
			wantErr: storage.ErrInvalidReference,
		},
		{
			name:    "subprocess at unknown point",
			userID:  userID,
			msg:     message(t, models.EntitySubprocess, models.CRUDCreate, models.Subprocess{ID: "sub-x", ProcessID: "proc-1", PointID: "pt-moon"}),
			wantErr: storage.ErrInvalidReference,
		},
		{
			name:    "process of another user",
			userID:  otherID,
			msg:     message(t, models.EntitySubprocess, models.CRUDCreate, models.Subprocess{ID: "sub-y", ProcessID: "proc-1", PointID: "pt-depot"}),
			wantErr: storage.ErrInvalidReference,
		},
		{
			name:    "duplicate entity id",
			userID:  userID,
			msg:     message(t, models.EntityProcess, models.CRUDCreate, models.Process{ID: "proc-1", Title: "Again"}),
			wantErr: storage.ErrEntityExists,
		},
		{
			name:    "missing grant",
			userID:  limitedID,
			msg:     message(t, models.EntityProcess, models.CRUDCreate, models.Process{ID: "proc-2", Title: "Run"}),
			wantErr: storage.ErrForbidden,
		},
		{
			name:    "unknown entity",
			userID:  userID,
			msg:     &models.PendingMessage{ID: "m-1", Entity: "truck", CRUD: models.CRUDCreate, Payload: json.RawMessage(`{}`)},
			wantErr: storage.ErrInvalidMessage,
		},
		{
			name:    "broken payload",
			userID:  userID,
			msg:     &models.PendingMessage{ID: "m-2", Entity: models.EntityProcess, CRUD: models.CRUDCreate, Payload: json.RawMessage(`"x"`)},
			wantErr: storage.ErrInvalidMessage,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			duplicate, err := s.ApplyMessage(ctx, tt.userID, tt.msg)
			require.ErrorIs(t, err, tt.wantErr)
			assert.False(t, duplicate)

			// отклоненное сообщение не попадает в журнал и может быть повторено
			var n int
			require.NoError(t, s.DB().QueryRowContext(ctx,
				`SELECT COUNT(*) FROM messages WHERE id = ?`, tt.msg.ID).Scan(&n))
			assert.Zero(t, n)
		})
	}

	op, err := s.GetOperation(ctx, userID)
	require.NoError(t, err)
	require.Len(t, op.Processes, 1)
	assert.Equal(t, "Run", op.Processes[0].Title)
}

func TestGetOperation_Empty(t *testing.T) {
	ctx := context.Background()
	s, cleanup := setupTestStorage(t)
	defer cleanup()

	userID := createTestUser(t, ctx, s)
	op, err := s.GetOperation(ctx, userID)
	require.NoError(t, err)
	assert.NotNil(t, op.Processes)
	assert.NotNil(t, op.Subprocesses)
	assert.NotNil(t, op.Tasks)
}
