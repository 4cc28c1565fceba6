package storage

import "context"

//go:generate moq -out store_mock.go . Store

// Key names a slot of the local key-value store.
type Key string

// Slots used by the client.
const (
	KeySession     Key = "session"
	KeyAccount     Key = "account"
	KeyMessages    Key = "messages"
	KeyPermissions Key = "permissions"
	KeyInventory   Key = "inventory"
	KeyMasterData  Key = "master_data"
	KeyOperation   Key = "operation"
	KeySyncMeta    Key = "sync_meta"
)

// Store defines the local persistence boundary of the client.
// Values must be JSON-serializable. Every other component keeps only
// transient in-memory copies rehydrated from it.
type Store interface {
	// Get decodes the value stored under key into dst
	// Returns ErrNotFound if the slot is empty
	Get(ctx context.Context, key Key, dst any) error

	// Set replaces the value stored under key
	Set(ctx context.Context, key Key, value any) error

	// Remove deletes the slot; removing a missing slot is not an error
	Remove(ctx context.Context, key Key) error

	// Clear removes every slot (full logout)
	Clear(ctx context.Context) error
}
