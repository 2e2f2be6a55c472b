// Package ingest drives one end-to-end ingestion cycle: credential check,
// crawl, then one queue push per parsed transaction.
package ingest

import (
	"context"
	"errors"

	"github.com/rs/zerolog"

	"bankmail/internal/crawler"
	"bankmail/internal/domain"
	"bankmail/internal/queue"
)

// ErrMissingCredential is returned before any crawl is attempted when the
// access token is absent. An expired or otherwise invalid token surfaces as a
// crawl failure instead, with the provider's message intact.
var ErrMissingCredential = errors.New("missing access token")

// Crawler is the slice of the mail crawler the orchestrator drives.
type Crawler interface {
	Crawl(ctx context.Context, maxResults int64) ([]domain.ParsedTransaction, error)
}

// Report summarises one ingestion cycle for the caller. Found == 0 with a nil
// error means no candidate emails matched, which is informational, not a failure.
type Report struct {
	// Found is the number of transactions the crawl produced.
	Found int `json:"found"`
	// Queued is how many of them were staged successfully.
	Queued int `json:"queued"`
	// Failed counts push failures; their messages are in Errors.
	Failed int      `json:"failed"`
	Errors []string `json:"errors,omitempty"`
}

// Orchestrator sequences crawling and queue writes. It performs no batching
// and no retries of its own; retry policy lives in the HTTP transport under
// the crawler.
type Orchestrator struct {
	queue      queue.Queue
	log        zerolog.Logger
	newCrawler func(ctx context.Context, accessToken string) (Crawler, error)
}

// New creates an orchestrator that crawls Gmail and stages results in q.
func New(q queue.Queue, log zerolog.Logger) *Orchestrator {
	return &Orchestrator{
		queue: q,
		log:   log,
		newCrawler: func(ctx context.Context, accessToken string) (Crawler, error) {
			return crawler.NewGmail(ctx, accessToken, log)
		},
	}
}

// NewWithCrawler creates an orchestrator with a caller-supplied crawler
// constructor, used by tests and alternative mail providers.
func NewWithCrawler(q queue.Queue, log zerolog.Logger, newCrawler func(ctx context.Context, accessToken string) (Crawler, error)) *Orchestrator {
	return &Orchestrator{queue: q, log: log, newCrawler: newCrawler}
}

// Sync runs one ingestion cycle for the given user. A crawl failure aborts
// the cycle with an error; push failures do not. Each remaining transaction
// is still attempted and the failures are reported per item, because nothing
// the parser accepted may be dropped silently.
func (o *Orchestrator) Sync(ctx context.Context, accessToken, userID string, maxResults int64) (*Report, error) {
	if accessToken == "" {
		return nil, ErrMissingCredential
	}
	if userID == "" {
		return nil, errors.New("user id is required")
	}

	c, err := o.newCrawler(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	transactions, err := c.Crawl(ctx, maxResults)
	if err != nil {
		return nil, err
	}

	report := &Report{Found: len(transactions)}
	for _, tx := range transactions {
		entryID, err := o.queue.Push(ctx, userID, tx)
		if err != nil {
			report.Failed++
			report.Errors = append(report.Errors, err.Error())
			o.log.Error().
				Err(err).
				Str("user_id", userID).
				Str("message_id", tx.ProviderMessageID).
				Msg("Failed to stage transaction")
			continue
		}

		report.Queued++
		o.log.Info().
			Str("user_id", userID).
			Str("entry_id", entryID).
			Str("message_id", tx.ProviderMessageID).
			Int64("amount", tx.Amount).
			Str("direction", string(tx.Direction)).
			Msg("Transaction staged")
	}

	if report.Found == 0 {
		o.log.Info().Str("user_id", userID).Msg("No bank emails found")
	}

	return report, nil
}
