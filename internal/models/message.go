package models

import (
	"encoding/json"
	"time"
)

// PendingMessage представляет исходящую мутацию, ожидающую подтверждения сервером.
// Payload содержит JSON сущности (Process, Subprocess или Task) на момент изменения.
type PendingMessage struct {
	CRUDDate time.Time       `json:"crud_date"`
	ID       string          `json:"id"`
	Entity   EntityKind      `json:"entity"`
	CRUD     CRUDOp          `json:"crud"`
	Payload  json.RawMessage `json:"payload"`
}

// NewPendingMessage marshals entity into a message payload.
func NewPendingMessage(kind EntityKind, op CRUDOp, at time.Time, entity any) (*PendingMessage, error) {
	payload, err := json.Marshal(entity)
	if err != nil {
		return nil, err
	}
	return &PendingMessage{
		Entity:   kind,
		CRUD:     op,
		CRUDDate: at,
		Payload:  payload,
	}, nil
}
