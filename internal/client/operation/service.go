// Package operation applies local edits to processes, transactions and
// tasks. Every edit is queued as a pending message before it touches the
// local operation snapshot.
package operation

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/internal/validation"
)

// Outbox accepts pending messages for upload.
type Outbox interface {
	Append(ctx context.Context, msg *models.PendingMessage) error
}

// Snapshots gives access to downloaded snapshots.
type Snapshots interface {
	Permissions() (*models.Permissions, bool)
	MasterData() (*models.MasterData, bool)
	UpdateOperation(ctx context.Context, fn func(op *models.Operation) error) error
}

var (
	// ErrNotFound возвращается для неизвестного id сущности
	ErrNotFound = errors.New("entity not found")
	// ErrForbidden возвращается, если у пользователя нет нужного права
	ErrForbidden = errors.New("operation not permitted")
	// ErrInvalidStatus возвращается при недопустимой смене статуса
	ErrInvalidStatus = errors.New("invalid status transition")
	// ErrUnknownReference возвращается для ссылки на отсутствующий справочник
	ErrUnknownReference = errors.New("unknown reference")
)

// NewProcess describes a collection run to create.
type NewProcess struct {
	Title     string
	VehicleID string
}

// NewSubprocess describes a transaction to open inside a process.
type NewSubprocess struct {
	ProcessID string
	PointID   string
	Kind      string
	Notes     string
}

// NewTask describes a material line to add to a transaction.
type NewTask struct {
	SubprocessID string
	MaterialID   string
	PackageID    string
	Unit         string
	Quantity     float64
}

// Service edits the local operation snapshot.
type Service struct {
	outbox    Outbox
	snapshots Snapshots
	logger    *slog.Logger
	now       func() time.Time
}

// NewService creates an operation service
func NewService(outbox Outbox, snapshots Snapshots, logger *slog.Logger) *Service {
	return &Service{
		outbox:    outbox,
		snapshots: snapshots,
		logger:    logger,
		now:       time.Now,
	}
}

func (s *Service) require(code string) error {
	perms, _ := s.snapshots.Permissions()
	if !perms.Allows(code) {
		return fmt.Errorf("%w: %s", ErrForbidden, code)
	}
	return nil
}

// enqueue ставит сообщение в очередь; ошибка отменяет всю правку
func (s *Service) enqueue(ctx context.Context, kind models.EntityKind, op models.CRUDOp, at time.Time, entity any) error {
	msg, err := models.NewPendingMessage(kind, op, at, entity)
	if err != nil {
		return fmt.Errorf("failed to encode %s: %w", kind, err)
	}
	if err := s.outbox.Append(ctx, msg); err != nil {
		s.logger.Error("Failed to queue message", "entity", kind, "crud", op, "error", err)
		return fmt.Errorf("failed to queue %s %s: %w", op, kind, err)
	}
	return nil
}

// update применяет правку к снапшоту. Постановка в очередь последний шаг fn:
// сообщение в очереди и есть зафиксированная правка, даже если снапшот
// записать не удалось.
func (s *Service) update(ctx context.Context, fn func(op *models.Operation) error) error {
	var queued bool
	err := s.snapshots.UpdateOperation(ctx, func(op *models.Operation) error {
		if err := fn(op); err != nil {
			return err
		}
		queued = true
		return nil
	})
	if err != nil && queued {
		s.logger.Warn("Edit queued but local snapshot not saved", "error", err)
		return nil
	}
	return err
}

// pendingParent проверяет, что транзакция задачи еще не закрыта
func pendingParent(op *models.Operation, task models.Task) error {
	i := op.FindSubprocess(task.SubprocessID)
	if i >= 0 && op.Subprocesses[i].StatusID != models.StatusPending {
		return fmt.Errorf("%w: subprocess %s is %s", ErrInvalidStatus, task.SubprocessID, op.Subprocesses[i].StatusID)
	}
	return nil
}

// markUpdated не затирает create: сервер еще не видел сущность
func markUpdated(current models.CRUDOp) models.CRUDOp {
	if current == models.CRUDCreate {
		return models.CRUDCreate
	}
	return models.CRUDUpdate
}

// CreateProcess opens a new collection run
func (s *Service) CreateProcess(ctx context.Context, in NewProcess) (*models.Process, error) {
	if err := s.require(models.PermProcessCreate); err != nil {
		return nil, err
	}
	if in.Title == "" {
		return nil, errors.New("process title is required")
	}

	var created models.Process
	err := s.update(ctx, func(op *models.Operation) error {
		at := s.now().UTC()
		created = models.Process{
			StartedAt: at,
			CRUDDate:  &at,
			ID:        uuid.New().String(),
			Title:     in.Title,
			VehicleID: in.VehicleID,
			StatusID:  models.StatusPending,
			CRUD:      models.CRUDCreate,
		}
		if err := s.enqueue(ctx, models.EntityProcess, models.CRUDCreate, at, created); err != nil {
			return err
		}
		op.Processes = append(op.Processes, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Process created", "process_id", created.ID)
	return &created, nil
}

// CreateSubprocess opens a transaction (pickup, transfer) inside a process
func (s *Service) CreateSubprocess(ctx context.Context, in NewSubprocess) (*models.Subprocess, error) {
	if err := s.require(models.PermSubprocessCreate); err != nil {
		return nil, err
	}
	if md, ok := s.snapshots.MasterData(); ok && !md.HasPoint(in.PointID) {
		return nil, fmt.Errorf("%w: point %s", ErrUnknownReference, in.PointID)
	}

	var created models.Subprocess
	err := s.update(ctx, func(op *models.Operation) error {
		if op.FindProcess(in.ProcessID) < 0 {
			return fmt.Errorf("%w: process %s", ErrNotFound, in.ProcessID)
		}

		at := s.now().UTC()
		created = models.Subprocess{
			CRUDDate:  &at,
			ID:        uuid.New().String(),
			ProcessID: in.ProcessID,
			PointID:   in.PointID,
			Kind:      in.Kind,
			Notes:     in.Notes,
			StatusID:  models.StatusPending,
			CRUD:      models.CRUDCreate,
		}
		if err := s.enqueue(ctx, models.EntitySubprocess, models.CRUDCreate, at, created); err != nil {
			return err
		}
		op.Subprocesses = append(op.Subprocesses, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction created", "subprocess_id", created.ID, "process_id", created.ProcessID)
	return &created, nil
}

// SetSubprocessStatus approves or rejects a pending transaction
func (s *Service) SetSubprocessStatus(ctx context.Context, id string, status models.StatusID) (*models.Subprocess, error) {
	if err := s.require(models.PermSubprocessApprove); err != nil {
		return nil, err
	}
	if status != models.StatusApproved && status != models.StatusRejected {
		return nil, fmt.Errorf("%w: to %q", ErrInvalidStatus, status)
	}

	var updated models.Subprocess
	err := s.update(ctx, func(op *models.Operation) error {
		i := op.FindSubprocess(id)
		if i < 0 {
			return fmt.Errorf("%w: subprocess %s", ErrNotFound, id)
		}
		if op.Subprocesses[i].StatusID != models.StatusPending {
			return fmt.Errorf("%w: %s -> %s", ErrInvalidStatus, op.Subprocesses[i].StatusID, status)
		}

		at := s.now().UTC()
		updated = op.Subprocesses[i]
		updated.StatusID = status
		updated.CRUD = markUpdated(updated.CRUD)
		updated.CRUDDate = &at

		if err := s.enqueue(ctx, models.EntitySubprocess, models.CRUDUpdate, at, updated); err != nil {
			return err
		}
		op.Subprocesses[i] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Transaction status changed", "subprocess_id", id, "status", status)
	return &updated, nil
}

// AddTask adds a material line to a pending transaction
func (s *Service) AddTask(ctx context.Context, in NewTask) (*models.Task, error) {
	if err := s.require(models.PermTaskWrite); err != nil {
		return nil, err
	}
	if err := validation.ValidateQuantity(in.Quantity); err != nil {
		return nil, err
	}

	unit := in.Unit
	if md, ok := s.snapshots.MasterData(); ok {
		i := slices.IndexFunc(md.Materials, func(c models.CatalogItem) bool { return c.ID == in.MaterialID })
		if i < 0 {
			return nil, fmt.Errorf("%w: material %s", ErrUnknownReference, in.MaterialID)
		}
		if unit == "" {
			unit = md.Materials[i].Unit
		}
	}

	var created models.Task
	err := s.update(ctx, func(op *models.Operation) error {
		i := op.FindSubprocess(in.SubprocessID)
		if i < 0 {
			return fmt.Errorf("%w: subprocess %s", ErrNotFound, in.SubprocessID)
		}
		if op.Subprocesses[i].StatusID != models.StatusPending {
			return fmt.Errorf("%w: subprocess %s is %s", ErrInvalidStatus, in.SubprocessID, op.Subprocesses[i].StatusID)
		}

		at := s.now().UTC()
		created = models.Task{
			CRUDDate:     &at,
			ID:           uuid.New().String(),
			SubprocessID: in.SubprocessID,
			MaterialID:   in.MaterialID,
			PackageID:    in.PackageID,
			Unit:         unit,
			StatusID:     models.StatusPending,
			CRUD:         models.CRUDCreate,
			Quantity:     in.Quantity,
		}
		if err := s.enqueue(ctx, models.EntityTask, models.CRUDCreate, at, created); err != nil {
			return err
		}
		op.Tasks = append(op.Tasks, created)
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("Task added", "task_id", created.ID, "subprocess_id", created.SubprocessID)
	return &created, nil
}

// UpdateTaskQuantity changes the quantity of a material line
func (s *Service) UpdateTaskQuantity(ctx context.Context, id string, quantity float64) (*models.Task, error) {
	if err := s.require(models.PermTaskWrite); err != nil {
		return nil, err
	}
	if err := validation.ValidateQuantity(quantity); err != nil {
		return nil, err
	}

	var updated models.Task
	err := s.update(ctx, func(op *models.Operation) error {
		i := op.FindTask(id)
		if i < 0 {
			return fmt.Errorf("%w: task %s", ErrNotFound, id)
		}

		if err := pendingParent(op, op.Tasks[i]); err != nil {
			return err
		}

		at := s.now().UTC()
		updated = op.Tasks[i]
		updated.Quantity = quantity
		updated.CRUD = markUpdated(updated.CRUD)
		updated.CRUDDate = &at

		if err := s.enqueue(ctx, models.EntityTask, models.CRUDUpdate, at, updated); err != nil {
			return err
		}
		op.Tasks[i] = updated
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}

// DeleteTask removes a material line
func (s *Service) DeleteTask(ctx context.Context, id string) error {
	if err := s.require(models.PermTaskWrite); err != nil {
		return err
	}

	err := s.update(ctx, func(op *models.Operation) error {
		i := op.FindTask(id)
		if i < 0 {
			return fmt.Errorf("%w: task %s", ErrNotFound, id)
		}

		if err := pendingParent(op, op.Tasks[i]); err != nil {
			return err
		}

		at := s.now().UTC()
		deleted := op.Tasks[i]
		deleted.CRUD = models.CRUDDelete
		deleted.CRUDDate = &at

		if err := s.enqueue(ctx, models.EntityTask, models.CRUDDelete, at, deleted); err != nil {
			return err
		}
		op.Tasks = slices.Delete(op.Tasks, i, i+1)
		return nil
	})
	if err != nil {
		return err
	}

	s.logger.Info("Task deleted", "task_id", id)
	return nil
}
