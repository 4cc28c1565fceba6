// Package queue implements the durable outbox of local mutations that have
// not yet been confirmed by the server.
package queue

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iudanet/wastetrack/internal/client/storage"
	"github.com/iudanet/wastetrack/internal/models"
)

var (
	// ErrDrainIncomplete is returned when a drain stopped before the queue was empty
	ErrDrainIncomplete = errors.New("queue drain incomplete")

	// ErrQueueNotEmpty is returned by Reset while unsent messages remain
	ErrQueueNotEmpty = errors.New("queue has pending messages")
)

// Sender pushes a single message to the server.
type Sender func(ctx context.Context, msg *models.PendingMessage) error

// Queue is the Pending-Operations Queue stored in the messages slot.
// The slot is the single source of truth for the pending count.
type Queue struct {
	store  storage.Store
	logger *slog.Logger
	now    func() time.Time

	// mu guards read-modify-write of the messages slot
	mu sync.Mutex
	// drainMu allows one drain at a time
	drainMu sync.Mutex
}

// New creates a queue on top of the local store
func New(store storage.Store, logger *slog.Logger) *Queue {
	return &Queue{
		store:  store,
		logger: logger,
		now:    time.Now,
	}
}

// load читает содержимое слота; отсутствующий слот означает пустую очередь
func (q *Queue) load(ctx context.Context) ([]models.PendingMessage, error) {
	var msgs []models.PendingMessage
	if err := q.store.Get(ctx, storage.KeyMessages, &msgs); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to load pending messages: %w", err)
	}
	return msgs, nil
}

func (q *Queue) save(ctx context.Context, msgs []models.PendingMessage) error {
	if msgs == nil {
		msgs = []models.PendingMessage{}
	}
	if err := q.store.Set(ctx, storage.KeyMessages, msgs); err != nil {
		return fmt.Errorf("failed to save pending messages: %w", err)
	}
	return nil
}

// Count returns the number of queued messages without side effects
func (q *Queue) Count(ctx context.Context) (int, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	msgs, err := q.load(ctx)
	if err != nil {
		return 0, err
	}
	return len(msgs), nil
}

// List returns a copy of the queued messages in FIFO order
func (q *Queue) List(ctx context.Context) ([]models.PendingMessage, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	return q.load(ctx)
}

// Append adds msg at the tail of the queue.
// Missing ID and CRUDDate are filled in. A store failure means the mutation
// was not recorded and is returned to the caller.
func (q *Queue) Append(ctx context.Context, msg *models.PendingMessage) error {
	if msg == nil {
		return fmt.Errorf("message is nil")
	}
	if !msg.Entity.Valid() {
		return fmt.Errorf("invalid entity kind %q", msg.Entity)
	}
	if !msg.CRUD.Valid() {
		return fmt.Errorf("invalid crud marker %q", msg.CRUD)
	}
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.CRUDDate.IsZero() {
		msg.CRUDDate = q.now().UTC()
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	msgs, err := q.load(ctx)
	if err != nil {
		return fmt.Errorf("append %s: %w", msg.ID, err)
	}
	msgs = append(msgs, *msg)

	if err := q.save(ctx, msgs); err != nil {
		q.logger.Error("Failed to append pending message",
			"message_id", msg.ID,
			"entity", msg.Entity,
			"crud", msg.CRUD,
			"error", err)
		return fmt.Errorf("append %s: %w", msg.ID, err)
	}

	q.logger.Debug("Pending message appended", "message_id", msg.ID, "pending", len(msgs))
	return nil
}

// Drain sends queued messages in insertion order.
// Each confirmed head message is removed and persisted before the next send.
// At the first failure draining stops, the failed message and everything after
// it stay queued and ErrDrainIncomplete is returned.
// Messages appended while a drain is running are kept and sent by this drain.
func (q *Queue) Drain(ctx context.Context, send Sender) (int, error) {
	q.drainMu.Lock()
	defer q.drainMu.Unlock()

	sent := 0
	for {
		// Берем голову очереди под локом, отправляем без лока,
		// чтобы Append не блокировался сетевым вызовом
		q.mu.Lock()
		msgs, err := q.load(ctx)
		q.mu.Unlock()
		if err != nil {
			return sent, fmt.Errorf("%w: %w", ErrDrainIncomplete, err)
		}
		if len(msgs) == 0 {
			return sent, nil
		}

		head := msgs[0]
		if err := send(ctx, &head); err != nil {
			q.logger.Warn("Failed to send pending message",
				"message_id", head.ID,
				"entity", head.Entity,
				"crud", head.CRUD,
				"sent", sent,
				"remaining", len(msgs),
				"error", err)
			return sent, fmt.Errorf("%w: message %s: %w", ErrDrainIncomplete, head.ID, err)
		}

		if err := q.removeHead(ctx, head.ID); err != nil {
			return sent, fmt.Errorf("%w: %w", ErrDrainIncomplete, err)
		}
		sent++
	}
}

// removeHead удаляет подтвержденное сообщение, перечитывая слот,
// чтобы не потерять сообщения, добавленные во время отправки
func (q *Queue) removeHead(ctx context.Context, id string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	msgs, err := q.load(ctx)
	if err != nil {
		return err
	}
	if len(msgs) == 0 || msgs[0].ID != id {
		return fmt.Errorf("queue head changed while sending %s", id)
	}
	return q.save(ctx, msgs[1:])
}

// Reset initializes the queue slot to empty.
// It refuses while messages remain so unsent mutations are never discarded.
func (q *Queue) Reset(ctx context.Context) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	msgs, err := q.load(ctx)
	if err != nil {
		return err
	}
	if len(msgs) > 0 {
		return fmt.Errorf("%w: %d", ErrQueueNotEmpty, len(msgs))
	}
	return q.save(ctx, nil)
}
