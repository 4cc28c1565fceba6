package models

import "time"

// StatusID describes the lifecycle state of an operational entity.
type StatusID string

const (
	StatusPending  StatusID = "pending"
	StatusApproved StatusID = "approved"
	StatusRejected StatusID = "rejected"
)

// Valid reports whether s is a known status.
func (s StatusID) Valid() bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// CRUDOp marks an entity that was changed locally and must be pushed upstream.
type CRUDOp string

const (
	CRUDNone   CRUDOp = ""
	CRUDCreate CRUDOp = "create"
	CRUDUpdate CRUDOp = "update"
	CRUDDelete CRUDOp = "delete"
)

// Valid reports whether op is one of create, update or delete.
func (op CRUDOp) Valid() bool {
	switch op {
	case CRUDCreate, CRUDUpdate, CRUDDelete:
		return true
	}
	return false
}

// EntityKind names the entity a pending message mutates.
type EntityKind string

const (
	EntityProcess    EntityKind = "process"
	EntitySubprocess EntityKind = "subprocess"
	EntityTask       EntityKind = "task"
)

// Valid reports whether k is a known entity kind.
func (k EntityKind) Valid() bool {
	switch k {
	case EntityProcess, EntitySubprocess, EntityTask:
		return true
	}
	return false
}

// Process представляет рейс сбора (верхний уровень работы).
type Process struct {
	StartedAt time.Time  `json:"started_at"`
	CRUDDate  *time.Time `json:"crud_date,omitempty"`
	ID        string     `json:"id"`
	Title     string     `json:"title"`
	VehicleID string     `json:"vehicle_id,omitempty"`
	StatusID  StatusID   `json:"status_id"`
	CRUD      CRUDOp     `json:"crud,omitempty"`
}

// Subprocess представляет транзакцию внутри рейса: прием, передачу и т.п.
type Subprocess struct {
	CRUDDate  *time.Time `json:"crud_date,omitempty"`
	ID        string     `json:"id"`
	ProcessID string     `json:"process_id"`
	PointID   string     `json:"point_id"`
	Kind      string     `json:"kind"`
	Notes     string     `json:"notes,omitempty"`
	StatusID  StatusID   `json:"status_id"`
	CRUD      CRUDOp     `json:"crud,omitempty"`
}

// Task представляет строку движения материала внутри транзакции.
type Task struct {
	CRUDDate     *time.Time `json:"crud_date,omitempty"`
	ID           string     `json:"id"`
	SubprocessID string     `json:"subprocess_id"`
	MaterialID   string     `json:"material_id"`
	PackageID    string     `json:"package_id,omitempty"`
	Unit         string     `json:"unit"`
	StatusID     StatusID   `json:"status_id"`
	CRUD         CRUDOp     `json:"crud,omitempty"`
	Quantity     float64    `json:"quantity"`
}

// Operation is the operational snapshot of the current user.
type Operation struct {
	DownloadedAt time.Time    `json:"downloaded_at"`
	Processes    []Process    `json:"processes"`
	Subprocesses []Subprocess `json:"subprocesses"`
	Tasks        []Task       `json:"tasks"`
}

// FindProcess returns the index of the process with id or -1.
func (o *Operation) FindProcess(id string) int {
	for i := range o.Processes {
		if o.Processes[i].ID == id {
			return i
		}
	}
	return -1
}

// FindSubprocess returns the index of the subprocess with id or -1.
func (o *Operation) FindSubprocess(id string) int {
	for i := range o.Subprocesses {
		if o.Subprocesses[i].ID == id {
			return i
		}
	}
	return -1
}

// FindTask returns the index of the task with id or -1.
func (o *Operation) FindTask(id string) int {
	for i := range o.Tasks {
		if o.Tasks[i].ID == id {
			return i
		}
	}
	return -1
}

// PendingCount returns the number of entities carrying a CRUD marker.
func (o *Operation) PendingCount() int {
	n := 0
	for _, p := range o.Processes {
		if p.CRUD != CRUDNone {
			n++
		}
	}
	for _, s := range o.Subprocesses {
		if s.CRUD != CRUDNone {
			n++
		}
	}
	for _, t := range o.Tasks {
		if t.CRUD != CRUDNone {
			n++
		}
	}
	return n
}
