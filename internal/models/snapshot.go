package models

import (
	"slices"
	"time"
)

// Permission codes granted to field users.
const (
	PermOperationRead     = "operation.read"
	PermProcessCreate     = "process.create"
	PermSubprocessCreate  = "subprocess.create"
	PermSubprocessApprove = "subprocess.approve"
	PermTaskWrite         = "task.write"
)

// DefaultGrants are assigned to a freshly registered user.
var DefaultGrants = []string{
	PermOperationRead,
	PermProcessCreate,
	PermSubprocessCreate,
	PermTaskWrite,
}

// Permissions is the capability snapshot of the current user.
type Permissions struct {
	DownloadedAt time.Time `json:"downloaded_at"`
	Account      Account   `json:"account"`
	Grants       []string  `json:"grants"`
}

// Allows reports whether code is granted.
func (p *Permissions) Allows(code string) bool {
	if p == nil {
		return false
	}
	return slices.Contains(p.Grants, code)
}

// InventoryItem is the stock of one material at one point.
type InventoryItem struct {
	PointID    string  `json:"point_id"`
	MaterialID string  `json:"material_id"`
	Unit       string  `json:"unit"`
	Quantity   float64 `json:"quantity"`
}

// Inventory is the stock snapshot.
type Inventory struct {
	DownloadedAt time.Time       `json:"downloaded_at"`
	Items        []InventoryItem `json:"items"`
}

// CatalogItem is one reference record of master data.
type CatalogItem struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit,omitempty"`
}

// Catalog kinds stored in master data.
const (
	CatalogMaterials  = "materials"
	CatalogPoints     = "points"
	CatalogPackages   = "packages"
	CatalogServices   = "services"
	CatalogSupplies   = "supplies"
	CatalogVehicles   = "vehicles"
	CatalogTreatments = "treatments"
)

// MasterData holds reference data referenced by operation entities.
type MasterData struct {
	DownloadedAt time.Time     `json:"downloaded_at"`
	Materials    []CatalogItem `json:"materials"`
	Points       []CatalogItem `json:"points"`
	Packages     []CatalogItem `json:"packages"`
	Services     []CatalogItem `json:"services"`
	Supplies     []CatalogItem `json:"supplies"`
	Vehicles     []CatalogItem `json:"vehicles"`
	Treatments   []CatalogItem `json:"treatments"`
}

// Add appends item to the list named by kind. Unknown kinds are ignored
// and reported as false.
func (m *MasterData) Add(kind string, item CatalogItem) bool {
	switch kind {
	case CatalogMaterials:
		m.Materials = append(m.Materials, item)
	case CatalogPoints:
		m.Points = append(m.Points, item)
	case CatalogPackages:
		m.Packages = append(m.Packages, item)
	case CatalogServices:
		m.Services = append(m.Services, item)
	case CatalogSupplies:
		m.Supplies = append(m.Supplies, item)
	case CatalogVehicles:
		m.Vehicles = append(m.Vehicles, item)
	case CatalogTreatments:
		m.Treatments = append(m.Treatments, item)
	default:
		return false
	}
	return true
}

// HasMaterial reports whether a material with id exists.
func (m *MasterData) HasMaterial(id string) bool {
	return slices.ContainsFunc(m.Materials, func(c CatalogItem) bool { return c.ID == id })
}

// HasPoint reports whether a point with id exists.
func (m *MasterData) HasPoint(id string) bool {
	return slices.ContainsFunc(m.Points, func(c CatalogItem) bool { return c.ID == id })
}
