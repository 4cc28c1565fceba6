package boltdb

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.etcd.io/bbolt"

	"github.com/iudanet/wastetrack/internal/client/storage"
	"github.com/iudanet/wastetrack/internal/models"
)

// createTestStorage создает временное BoltDB хранилище
func createTestStorage(t *testing.T) *Storage {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "testdb.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	require.NotNil(t, store)
	t.Cleanup(func() {
		require.NoError(t, store.Close())
	})

	return store
}

func TestNew_Success(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)
	defer func() {
		require.NoError(t, store.Close())
	}()

	// Проверяем что файл БД действительно создан
	info, err := os.Stat(dbPath)
	require.NoError(t, err)
	assert.False(t, info.IsDir())

	err = store.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket(bucketSlots) == nil {
			return os.ErrNotExist
		}
		return nil
	})
	require.NoError(t, err)
}

func TestNew_InvalidPath(t *testing.T) {
	// Путь с нулевым символом недопустим
	store, err := New(context.Background(), string([]byte{0}))
	assert.Error(t, err)
	assert.Nil(t, store)
}

func TestClose(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "testdb.db")

	store, err := New(context.Background(), dbPath)
	require.NoError(t, err)

	assert.NoError(t, store.Close())
	assert.Nil(t, store.db)

	// Второй вызов Close ничего не делает
	assert.NoError(t, store.Close())

	// Закрытое хранилище возвращает ErrStorageClosed
	var s models.Session
	assert.ErrorIs(t, store.Get(context.Background(), storage.KeySession, &s), storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Set(context.Background(), storage.KeySession, s), storage.ErrStorageClosed)
	assert.ErrorIs(t, store.Clear(context.Background()), storage.ErrStorageClosed)
}

func TestSession_RoundTrip(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	start := time.Date(2026, 5, 4, 8, 30, 0, 0, time.UTC)
	end := start.Add(time.Hour)
	email := "driver@example.com"
	session := models.Session{
		AccessToken:  "access",
		RefreshToken: "refresh",
		UserName:     "driver_01",
		Email:        &email,
		StartDate:    &start,
		EndDate:      &end,
	}

	require.NoError(t, store.Set(ctx, storage.KeySession, session))

	var got models.Session
	require.NoError(t, store.Get(ctx, storage.KeySession, &got))
	assert.Equal(t, session, got)
}

func TestGet_NotFound(t *testing.T) {
	store := createTestStorage(t)

	var got models.Operation
	err := store.Get(context.Background(), storage.KeyOperation, &got)
	assert.ErrorIs(t, err, storage.ErrNotFound)
}

func TestSet_Overwrites(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	first := models.Inventory{Items: []models.InventoryItem{{PointID: "p1", MaterialID: "m1", Quantity: 1}}}
	second := models.Inventory{Items: []models.InventoryItem{{PointID: "p2", MaterialID: "m2", Quantity: 2}}}

	require.NoError(t, store.Set(ctx, storage.KeyInventory, first))
	require.NoError(t, store.Set(ctx, storage.KeyInventory, second))

	var got models.Inventory
	require.NoError(t, store.Get(ctx, storage.KeyInventory, &got))
	assert.Equal(t, second, got)
}

func TestSet_UnmarshalableValue(t *testing.T) {
	store := createTestStorage(t)

	err := store.Set(context.Background(), storage.KeyAccount, make(chan int))
	assert.Error(t, err)
}

func TestRemove(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.Set(ctx, storage.KeyAccount, models.Account{UserName: "driver"}))
	require.NoError(t, store.Remove(ctx, storage.KeyAccount))

	var got models.Account
	assert.ErrorIs(t, store.Get(ctx, storage.KeyAccount, &got), storage.ErrNotFound)

	// Удаление отсутствующего слота не ошибка
	assert.NoError(t, store.Remove(ctx, storage.KeyAccount))
}

func TestClear(t *testing.T) {
	ctx := context.Background()
	store := createTestStorage(t)

	require.NoError(t, store.Set(ctx, storage.KeySession, models.Session{AccessToken: "a"}))
	require.NoError(t, store.Set(ctx, storage.KeyMessages, []models.PendingMessage{{ID: "m1"}}))

	require.NoError(t, store.Clear(ctx))

	var session models.Session
	assert.ErrorIs(t, store.Get(ctx, storage.KeySession, &session), storage.ErrNotFound)
	var msgs []models.PendingMessage
	assert.ErrorIs(t, store.Get(ctx, storage.KeyMessages, &msgs), storage.ErrNotFound)

	// После очистки хранилище продолжает работать
	require.NoError(t, store.Set(ctx, storage.KeySession, models.Session{AccessToken: "b"}))
	require.NoError(t, store.Get(ctx, storage.KeySession, &session))
	assert.Equal(t, "b", session.AccessToken)
}
