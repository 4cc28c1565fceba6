package boltdb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"go.etcd.io/bbolt"
	berrors "go.etcd.io/bbolt/errors"

	"github.com/iudanet/wastetrack/internal/client/storage"
)

var errBucketNotFound = errors.New("slots bucket not found")

// Get decodes the value stored under key into dst
func (s *Storage) Get(ctx context.Context, key storage.Key, dst any) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSlots)
		if bucket == nil {
			return errBucketNotFound
		}

		data := bucket.Get([]byte(key))
		if data == nil {
			return storage.ErrNotFound
		}

		// Десериализуем прямо внутри транзакции: data валиден только до ее конца
		if err := json.Unmarshal(data, dst); err != nil {
			return fmt.Errorf("failed to unmarshal slot %q: %w", key, err)
		}

		return nil
	})
}

// Set replaces the value stored under key
func (s *Storage) Set(ctx context.Context, key storage.Key, value any) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	// Сериализуем значение в JSON
	data, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("failed to marshal slot %q: %w", key, err)
	}

	err = s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSlots)
		if bucket == nil {
			return errBucketNotFound
		}

		if err := bucket.Put([]byte(key), data); err != nil {
			return fmt.Errorf("failed to save slot %q: %w", key, err)
		}

		return nil
	})
	if err != nil {
		return fmt.Errorf("transaction failed: %w", err)
	}

	return nil
}

// Remove deletes the slot stored under key
func (s *Storage) Remove(ctx context.Context, key storage.Key) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket(bucketSlots)
		if bucket == nil {
			return errBucketNotFound
		}
		return bucket.Delete([]byte(key))
	})
}

// Clear removes every slot in a single transaction
func (s *Storage) Clear(ctx context.Context) error {
	if s.db == nil {
		return storage.ErrStorageClosed
	}

	return s.db.Update(func(tx *bbolt.Tx) error {
		if err := tx.DeleteBucket(bucketSlots); err != nil && !errors.Is(err, berrors.ErrBucketNotFound) {
			return fmt.Errorf("failed to drop slots bucket: %w", err)
		}
		if _, err := tx.CreateBucket(bucketSlots); err != nil {
			return fmt.Errorf("failed to recreate slots bucket: %w", err)
		}
		return nil
	})
}
