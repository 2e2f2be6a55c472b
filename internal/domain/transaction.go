package domain

import (
	"time"
)

// Direction classifies the money flow of a transaction.
type Direction string

const (
	DirectionIncome  Direction = "INCOME"
	DirectionExpense Direction = "EXPENSE"
)

// SyncStatus tracks whether a queued transaction has been applied to the
// ledger of record. The pipeline only ever assigns StatusPendingSync; later
// states are owned by the downstream consumer that drains the queue.
type SyncStatus string

const (
	StatusPendingSync SyncStatus = "PENDING_SYNC"
)

// RawMessage is the decoded, provider-native view of one email. It lives only
// for the duration of a crawl and is never persisted.
type RawMessage struct {
	ID         string // opaque provider message id, unique per mailbox
	Subject    string
	Sender     string
	BodyText   string
	ReceivedAt time.Time // provider-assigned arrival time
}

// ParsedTransaction is one financial transaction extracted from a bank
// notification email. Every optional field has an explicit default so
// consumers can rely on shape.
//
// Amount == 0 means extraction failed, not a zero-value transaction.
type ParsedTransaction struct {
	Date              time.Time  `firestore:"date" json:"date"`
	Amount            int64      `firestore:"amount" json:"amount"`
	Direction         Direction  `firestore:"type" json:"type"`
	Category          string     `firestore:"category" json:"category"`
	Description       string     `firestore:"description" json:"description"`
	SourceInstitution string     `firestore:"source" json:"source"`
	SyncStatus        SyncStatus `firestore:"status" json:"status"`

	// ProviderMessageID back-references the originating email. Carried for
	// idempotence and debugging by the downstream consumer; this subsystem
	// does not dedupe on it.
	ProviderMessageID string `firestore:"gmailId" json:"gmailId"`

	// RawExcerpt holds the first 500 runes of the email body so a human
	// reviewing the queue can sanity-check a low-confidence extraction.
	RawExcerpt string `firestore:"rawContent,omitempty" json:"rawContent,omitempty"`
}

// QueueEntry is a ParsedTransaction staged in a user's ingestion queue.
type QueueEntry struct {
	ID string `firestore:"-" json:"id"`

	ParsedTransaction

	EnqueuedAt time.Time `firestore:"queuedAt" json:"queuedAt"`
}
