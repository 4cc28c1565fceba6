package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/iudanet/wastetrack/internal/models"
	"github.com/iudanet/wastetrack/internal/server/storage"
)

// GetOperation returns processes, subprocesses and tasks owned by the user
func (s *Storage) GetOperation(ctx context.Context, userID string) (*models.Operation, error) {
	op := &models.Operation{
		Processes:    []models.Process{},
		Subprocesses: []models.Subprocess{},
		Tasks:        []models.Task{},
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, title, vehicle_id, status_id, started_at
		FROM processes
		WHERE user_id = ?
		ORDER BY started_at, id`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query processes: %w", err)
	}
	err = scanRows(rows, func(rows *sql.Rows) error {
		var p models.Process
		if err := rows.Scan(&p.ID, &p.Title, &p.VehicleID, &p.StatusID, &p.StartedAt); err != nil {
			return err
		}
		op.Processes = append(op.Processes, p)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read processes: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT s.id, s.process_id, s.point_id, s.kind, s.notes, s.status_id
		FROM subprocesses s
		JOIN processes p ON p.id = s.process_id
		WHERE p.user_id = ?
		ORDER BY s.rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query subprocesses: %w", err)
	}
	err = scanRows(rows, func(rows *sql.Rows) error {
		var sp models.Subprocess
		if err := rows.Scan(&sp.ID, &sp.ProcessID, &sp.PointID, &sp.Kind, &sp.Notes, &sp.StatusID); err != nil {
			return err
		}
		op.Subprocesses = append(op.Subprocesses, sp)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read subprocesses: %w", err)
	}

	rows, err = s.db.QueryContext(ctx, `
		SELECT t.id, t.subprocess_id, t.material_id, t.package_id, t.unit, t.quantity, t.status_id
		FROM tasks t
		JOIN subprocesses s ON s.id = t.subprocess_id
		JOIN processes p ON p.id = s.process_id
		WHERE p.user_id = ?
		ORDER BY t.rowid`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query tasks: %w", err)
	}
	err = scanRows(rows, func(rows *sql.Rows) error {
		var t models.Task
		if err := rows.Scan(&t.ID, &t.SubprocessID, &t.MaterialID, &t.PackageID, &t.Unit, &t.Quantity, &t.StatusID); err != nil {
			return err
		}
		op.Tasks = append(op.Tasks, t)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("failed to read tasks: %w", err)
	}

	return op, nil
}

// scanRows итерирует rows и всегда закрывает их
func scanRows(rows *sql.Rows, scan func(rows *sql.Rows) error) error {
	defer func() {
		_ = rows.Close()
	}()
	for rows.Next() {
		if err := scan(rows); err != nil {
			return err
		}
	}
	return rows.Err()
}

// ApplyMessage applies one client mutation in a single transaction
func (s *Storage) ApplyMessage(ctx context.Context, userID string, msg *models.PendingMessage) (bool, error) {
	if msg.ID == "" || !msg.Entity.Valid() || !msg.CRUD.Valid() || len(msg.Payload) == 0 {
		return false, fmt.Errorf("%w: id=%q entity=%q crud=%q", storage.ErrInvalidMessage, msg.ID, msg.Entity, msg.CRUD)
	}

	duplicate := false
	err := s.withTx(ctx, func(tx *sql.Tx) error {
		// запись в журнал первой: повтор того же id ничего не применяет
		result, err := tx.ExecContext(ctx, `
			INSERT OR IGNORE INTO messages (id, user_id, entity, crud, crud_date, received_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			msg.ID, userID, msg.Entity, msg.CRUD, msg.CRUDDate.UTC(), time.Now().UTC())
		if err != nil {
			return fmt.Errorf("failed to record message: %w", err)
		}
		n, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if n == 0 {
			duplicate = true
			return nil
		}

		if err := requireGrant(ctx, tx, userID, grantFor(msg.Entity, msg.CRUD)); err != nil {
			return err
		}

		switch msg.Entity {
		case models.EntityProcess:
			return applyProcess(ctx, tx, userID, msg)
		case models.EntitySubprocess:
			return applySubprocess(ctx, tx, userID, msg)
		default:
			return applyTask(ctx, tx, userID, msg)
		}
	})
	if err != nil {
		return false, err
	}

	return duplicate, nil
}

// grantFor returns the permission code a mutation requires
func grantFor(entity models.EntityKind, op models.CRUDOp) string {
	switch entity {
	case models.EntityProcess:
		return models.PermProcessCreate
	case models.EntitySubprocess:
		if op == models.CRUDUpdate {
			return models.PermSubprocessApprove
		}
		return models.PermSubprocessCreate
	default:
		return models.PermTaskWrite
	}
}

func requireGrant(ctx context.Context, tx *sql.Tx, userID, code string) error {
	var one int
	err := tx.QueryRowContext(ctx,
		`SELECT 1 FROM user_grants WHERE user_id = ? AND code = ?`, userID, code).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("%w: %s", storage.ErrForbidden, code)
	}
	if err != nil {
		return fmt.Errorf("failed to check grant: %w", err)
	}
	return nil
}

// exists reports whether query returns at least one row
func exists(ctx context.Context, tx *sql.Tx, query string, args ...any) (bool, error) {
	var one int
	err := tx.QueryRowContext(ctx, query, args...).Scan(&one)
	if errors.Is(err, sql.ErrNoRows) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

func decodePayload(msg *models.PendingMessage, dst any) error {
	if err := json.Unmarshal(msg.Payload, dst); err != nil {
		return fmt.Errorf("%w: payload of %s: %w", storage.ErrInvalidMessage, msg.ID, err)
	}
	return nil
}

// checkAffected maps zero affected rows to ErrInvalidReference
func checkAffected(result sql.Result, entity models.EntityKind, id string) error {
	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s %s", storage.ErrInvalidReference, entity, id)
	}
	return nil
}

// insertErr maps a unique violation on create to ErrEntityExists
func insertErr(err error, entity models.EntityKind, id string) error {
	if isUniqueViolation(err) {
		return fmt.Errorf("%w: %s %s", storage.ErrEntityExists, entity, id)
	}
	return fmt.Errorf("failed to insert %s: %w", entity, err)
}

func statusOrPending(status models.StatusID) models.StatusID {
	if status.Valid() {
		return status
	}
	return models.StatusPending
}

func applyProcess(ctx context.Context, tx *sql.Tx, userID string, msg *models.PendingMessage) error {
	var p models.Process
	if err := decodePayload(msg, &p); err != nil {
		return err
	}
	if p.ID == "" {
		return fmt.Errorf("%w: process without id", storage.ErrInvalidMessage)
	}

	switch msg.CRUD {
	case models.CRUDCreate:
		startedAt := p.StartedAt
		if startedAt.IsZero() {
			startedAt = msg.CRUDDate
		}
		_, err := tx.ExecContext(ctx, `
			INSERT INTO processes (id, user_id, title, vehicle_id, status_id, started_at)
			VALUES (?, ?, ?, ?, ?, ?)`,
			p.ID, userID, p.Title, p.VehicleID, statusOrPending(p.StatusID), startedAt.UTC())
		if err != nil {
			return insertErr(err, msg.Entity, p.ID)
		}
		return nil

	case models.CRUDUpdate:
		if !p.StatusID.Valid() {
			return fmt.Errorf("%w: status %q", storage.ErrInvalidMessage, p.StatusID)
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE processes SET title = ?, vehicle_id = ?, status_id = ?
			WHERE id = ? AND user_id = ?`,
			p.Title, p.VehicleID, p.StatusID, p.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to update process: %w", err)
		}
		return checkAffected(result, msg.Entity, p.ID)

	default:
		// удаление отсутствующей сущности не ошибка
		if _, err := tx.ExecContext(ctx,
			`DELETE FROM processes WHERE id = ? AND user_id = ?`, p.ID, userID); err != nil {
			return fmt.Errorf("failed to delete process: %w", err)
		}
		return nil
	}
}

const ownedProcesses = `SELECT id FROM processes WHERE user_id = ?`

const ownedSubprocesses = `
	SELECT s.id FROM subprocesses s
	JOIN processes p ON p.id = s.process_id
	WHERE p.user_id = ?`

func applySubprocess(ctx context.Context, tx *sql.Tx, userID string, msg *models.PendingMessage) error {
	var sp models.Subprocess
	if err := decodePayload(msg, &sp); err != nil {
		return err
	}
	if sp.ID == "" {
		return fmt.Errorf("%w: subprocess without id", storage.ErrInvalidMessage)
	}

	switch msg.CRUD {
	case models.CRUDCreate:
		ok, err := exists(ctx, tx, `SELECT 1 FROM processes WHERE id = ? AND user_id = ?`, sp.ProcessID, userID)
		if err != nil {
			return fmt.Errorf("failed to check process: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: process %s", storage.ErrInvalidReference, sp.ProcessID)
		}
		ok, err = exists(ctx, tx, `SELECT 1 FROM catalog_items WHERE kind = ? AND id = ?`, models.CatalogPoints, sp.PointID)
		if err != nil {
			return fmt.Errorf("failed to check point: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: point %s", storage.ErrInvalidReference, sp.PointID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO subprocesses (id, process_id, point_id, kind, notes, status_id)
			VALUES (?, ?, ?, ?, ?, ?)`,
			sp.ID, sp.ProcessID, sp.PointID, sp.Kind, sp.Notes, statusOrPending(sp.StatusID))
		if err != nil {
			return insertErr(err, msg.Entity, sp.ID)
		}
		return nil

	case models.CRUDUpdate:
		if !sp.StatusID.Valid() {
			return fmt.Errorf("%w: status %q", storage.ErrInvalidMessage, sp.StatusID)
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE subprocesses SET kind = ?, notes = ?, status_id = ?
			WHERE id = ? AND process_id IN (`+ownedProcesses+`)`,
			sp.Kind, sp.Notes, sp.StatusID, sp.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to update subprocess: %w", err)
		}
		return checkAffected(result, msg.Entity, sp.ID)

	default:
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM subprocesses
			WHERE id = ? AND process_id IN (`+ownedProcesses+`)`,
			sp.ID, userID); err != nil {
			return fmt.Errorf("failed to delete subprocess: %w", err)
		}
		return nil
	}
}

func applyTask(ctx context.Context, tx *sql.Tx, userID string, msg *models.PendingMessage) error {
	var t models.Task
	if err := decodePayload(msg, &t); err != nil {
		return err
	}
	if t.ID == "" {
		return fmt.Errorf("%w: task without id", storage.ErrInvalidMessage)
	}

	switch msg.CRUD {
	case models.CRUDCreate:
		ok, err := exists(ctx, tx, `SELECT 1 FROM (`+ownedSubprocesses+`) WHERE id = ?`, userID, t.SubprocessID)
		if err != nil {
			return fmt.Errorf("failed to check subprocess: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: subprocess %s", storage.ErrInvalidReference, t.SubprocessID)
		}
		ok, err = exists(ctx, tx, `SELECT 1 FROM catalog_items WHERE kind = ? AND id = ?`, models.CatalogMaterials, t.MaterialID)
		if err != nil {
			return fmt.Errorf("failed to check material: %w", err)
		}
		if !ok {
			return fmt.Errorf("%w: material %s", storage.ErrInvalidReference, t.MaterialID)
		}

		_, err = tx.ExecContext(ctx, `
			INSERT INTO tasks (id, subprocess_id, material_id, package_id, unit, quantity, status_id)
			VALUES (?, ?, ?, ?, ?, ?, ?)`,
			t.ID, t.SubprocessID, t.MaterialID, t.PackageID, t.Unit, t.Quantity, statusOrPending(t.StatusID))
		if err != nil {
			return insertErr(err, msg.Entity, t.ID)
		}
		return nil

	case models.CRUDUpdate:
		if !t.StatusID.Valid() {
			return fmt.Errorf("%w: status %q", storage.ErrInvalidMessage, t.StatusID)
		}
		result, err := tx.ExecContext(ctx, `
			UPDATE tasks SET package_id = ?, unit = ?, quantity = ?, status_id = ?
			WHERE id = ? AND subprocess_id IN (`+ownedSubprocesses+`)`,
			t.PackageID, t.Unit, t.Quantity, t.StatusID, t.ID, userID)
		if err != nil {
			return fmt.Errorf("failed to update task: %w", err)
		}
		return checkAffected(result, msg.Entity, t.ID)

	default:
		if _, err := tx.ExecContext(ctx, `
			DELETE FROM tasks
			WHERE id = ? AND subprocess_id IN (`+ownedSubprocesses+`)`,
			t.ID, userID); err != nil {
			return fmt.Errorf("failed to delete task: %w", err)
		}
		return nil
	}
}
