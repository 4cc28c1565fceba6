package storage

import (
	"context"

	"github.com/iudanet/wastetrack/internal/models"
)

// CatalogStorage provides the read-only snapshots served to clients
type CatalogStorage interface {
	// GetGrants returns permission codes of the user, empty slice if none
	GetGrants(ctx context.Context, userID string) ([]string, error)

	// GetMasterData returns every catalog grouped by kind
	GetMasterData(ctx context.Context) (*models.MasterData, error)

	// GetInventory returns stock per point and material
	GetInventory(ctx context.Context) (*models.Inventory, error)
}
