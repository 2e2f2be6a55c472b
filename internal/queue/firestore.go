package queue

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"

	"bankmail/internal/domain"
)

// Firestore collection layout: users/{uid}/queue/{entryId}.
const (
	usersCollection = "users"
	queueCollection = "queue"
)

// FirestoreQueue persists queue entries in a per-user Firestore
// subcollection. Entries are schemaless documents; the store enforces no
// uniqueness, which is what keeps Push a blind append.
type FirestoreQueue struct {
	client *firestore.Client
}

// NewFirestore creates a queue on an existing Firestore client. The caller
// owns the client's lifecycle.
func NewFirestore(client *firestore.Client) *FirestoreQueue {
	return &FirestoreQueue{client: client}
}

func (q *FirestoreQueue) entries(userID string) *firestore.CollectionRef {
	return q.client.Collection(usersCollection).Doc(userID).Collection(queueCollection)
}

// Push implements Queue.
func (q *FirestoreQueue) Push(ctx context.Context, userID string, tx domain.ParsedTransaction) (string, error) {
	entry := domain.QueueEntry{
		ParsedTransaction: tx,
		EnqueuedAt:        time.Now().UTC(),
	}

	ref, _, err := q.entries(userID).Add(ctx, entry)
	if err != nil {
		return "", fmt.Errorf("push queue entry for user %s: %w", userID, err)
	}
	return ref.ID, nil
}

// List implements Queue.
func (q *FirestoreQueue) List(ctx context.Context, userID string) ([]domain.QueueEntry, error) {
	iter := q.entries(userID).Documents(ctx)
	defer iter.Stop()

	var entries []domain.QueueEntry
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("list queue for user %s: %w", userID, err)
		}

		var entry domain.QueueEntry
		if err := doc.DataTo(&entry); err != nil {
			return nil, fmt.Errorf("decode queue entry %s: %w", doc.Ref.ID, err)
		}
		entry.ID = doc.Ref.ID
		entries = append(entries, entry)
	}
	return entries, nil
}

// Remove implements Queue. Firestore deletes are idempotent: deleting a
// missing document succeeds, which is exactly the contract.
func (q *FirestoreQueue) Remove(ctx context.Context, userID, entryID string) error {
	if _, err := q.entries(userID).Doc(entryID).Delete(ctx); err != nil {
		return fmt.Errorf("remove queue entry %s for user %s: %w", entryID, userID, err)
	}
	return nil
}

var _ Queue = (*FirestoreQueue)(nil)
