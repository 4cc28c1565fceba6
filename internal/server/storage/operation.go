package storage

import (
	"context"

	"github.com/iudanet/wastetrack/internal/models"
)

// OperationStorage keeps operational entities and the log of applied messages
type OperationStorage interface {
	// GetOperation returns processes, subprocesses and tasks owned by the user
	GetOperation(ctx context.Context, userID string) (*models.Operation, error)

	// ApplyMessage applies one client mutation in a single transaction.
	// A message id that was already applied is reported as duplicate and
	// nothing changes. Returns ErrInvalidMessage, ErrInvalidReference,
	// ErrEntityExists or ErrForbidden when the mutation is rejected.
	ApplyMessage(ctx context.Context, userID string, msg *models.PendingMessage) (duplicate bool, err error)
}
