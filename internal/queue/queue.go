// Package queue stages parsed transactions per user until the downstream
// ledger sync drains them.
package queue

import (
	"context"

	"bankmail/internal/domain"
)

// Queue is the durable, per-user, append-only staging area between the
// crawler and the downstream consumer.
//
// The queue is additive-only from the crawler's side: Push never merges with
// or overwrites an existing entry, so concurrent crawls for the same user
// cannot lose updates; at worst they each append their own findings.
// Duplicate detection is the downstream consumer's concern.
type Queue interface {
	// Push appends a new entry and returns its id. It succeeds or fails
	// atomically; no partial writes.
	Push(ctx context.Context, userID string, tx domain.ParsedTransaction) (string, error)

	// List returns all currently staged entries for the user. Order is
	// implementation-defined.
	List(ctx context.Context, userID string) ([]domain.QueueEntry, error)

	// Remove deletes one entry. Removing an id that is not present is not an
	// error, because the downstream consumer may retry.
	Remove(ctx context.Context, userID, entryID string) error
}
