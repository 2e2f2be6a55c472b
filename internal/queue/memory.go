package queue

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"bankmail/internal/domain"
)

// MemoryQueue is an in-memory Queue, safe for concurrent use. It backs tests
// and credential-less local runs; data is lost on restart.
type MemoryQueue struct {
	mu      sync.RWMutex
	entries map[string][]domain.QueueEntry // userID -> staged entries
}

// NewMemory creates an empty in-memory queue.
func NewMemory() *MemoryQueue {
	return &MemoryQueue{
		entries: make(map[string][]domain.QueueEntry),
	}
}

// Push implements Queue.
func (q *MemoryQueue) Push(ctx context.Context, userID string, tx domain.ParsedTransaction) (string, error) {
	entry := domain.QueueEntry{
		ID:                uuid.NewString(),
		ParsedTransaction: tx,
		EnqueuedAt:        time.Now().UTC(),
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	q.entries[userID] = append(q.entries[userID], entry)

	return entry.ID, nil
}

// List implements Queue.
func (q *MemoryQueue) List(ctx context.Context, userID string) ([]domain.QueueEntry, error) {
	q.mu.RLock()
	defer q.mu.RUnlock()

	// Copy so callers cannot mutate the staged entries.
	entries := make([]domain.QueueEntry, len(q.entries[userID]))
	copy(entries, q.entries[userID])
	return entries, nil
}

// Remove implements Queue.
func (q *MemoryQueue) Remove(ctx context.Context, userID, entryID string) error {
	q.mu.Lock()
	defer q.mu.Unlock()

	staged := q.entries[userID]
	for i, entry := range staged {
		if entry.ID == entryID {
			q.entries[userID] = append(staged[:i], staged[i+1:]...)
			return nil
		}
	}
	return nil
}

var _ Queue = (*MemoryQueue)(nil)
