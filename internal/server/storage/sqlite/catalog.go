package sqlite

import (
	"context"
	"fmt"

	"github.com/iudanet/wastetrack/internal/models"
)

// GetGrants returns permission codes of the user
func (s *Storage) GetGrants(ctx context.Context, userID string) ([]string, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT code FROM user_grants WHERE user_id = ? ORDER BY code`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query grants: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	grants := []string{}
	for rows.Next() {
		var code string
		if err := rows.Scan(&code); err != nil {
			return nil, fmt.Errorf("failed to scan grant: %w", err)
		}
		grants = append(grants, code)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return grants, nil
}

// GetMasterData returns every catalog grouped by kind
func (s *Storage) GetMasterData(ctx context.Context) (*models.MasterData, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT kind, id, name, unit FROM catalog_items ORDER BY kind, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query catalog: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	md := &models.MasterData{}
	for rows.Next() {
		var (
			kind string
			item models.CatalogItem
		)
		if err := rows.Scan(&kind, &item.ID, &item.Name, &item.Unit); err != nil {
			return nil, fmt.Errorf("failed to scan catalog item: %w", err)
		}
		// неизвестные виды справочников клиенту не нужны
		md.Add(kind, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return md, nil
}

// GetInventory returns stock per point and material
func (s *Storage) GetInventory(ctx context.Context) (*models.Inventory, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT point_id, material_id, unit, quantity FROM inventory ORDER BY point_id, material_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query inventory: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	inv := &models.Inventory{Items: []models.InventoryItem{}}
	for rows.Next() {
		var item models.InventoryItem
		if err := rows.Scan(&item.PointID, &item.MaterialID, &item.Unit, &item.Quantity); err != nil {
			return nil, fmt.Errorf("failed to scan inventory item: %w", err)
		}
		inv.Items = append(inv.Items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}

	return inv, nil
}
