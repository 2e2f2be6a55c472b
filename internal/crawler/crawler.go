// Package crawler turns a user's Gmail inbox into parsed transaction records.
// One crawl issues a provider-side search restricted to recent bank
// notification vocabulary, fetches each candidate message, decodes it and
// delegates classification to the parser.
package crawler

import (
	"context"
	"fmt"

	"github.com/rs/zerolog"

	"bankmail/internal/domain"
	"bankmail/internal/parser"
)

// searchQuery double-filters at the provider before the parser's own gates:
// a fixed recency window plus transaction-related keyword OR-clauses. This
// trades recall for request volume.
const searchQuery = `newer_than:2d ("biên lai" OR "biến động" OR "giao dịch" OR "thanh toán")`

// DefaultMaxResults caps the number of candidate messages per crawl.
const DefaultMaxResults = 20

// MailAPI is the slice of the mail provider the crawler needs. The production
// implementation wraps the Gmail API; tests substitute a fake.
type MailAPI interface {
	// ListMessageIDs runs a mailbox search and returns matching message ids,
	// in provider order. Bodies are not included.
	ListMessageIDs(ctx context.Context, query string, maxResults int64) ([]string, error)

	// GetMessage fetches one full message by id.
	GetMessage(ctx context.Context, id string) (domain.RawMessage, error)
}

// Crawler fetches and parses recent bank emails. It holds no per-crawl state;
// the access credential is bound into the MailAPI at construction.
type Crawler struct {
	api MailAPI
	log zerolog.Logger
}

// New creates a crawler on top of the given provider client.
func New(api MailAPI, log zerolog.Logger) *Crawler {
	return &Crawler{api: api, log: log}
}

// NewGmail creates a crawler backed by the Gmail API, authenticated with the
// given OAuth bearer token. The token must carry read-only mailbox scope.
func NewGmail(ctx context.Context, accessToken string, log zerolog.Logger) (*Crawler, error) {
	api, err := newGmailAPI(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	return New(api, log), nil
}

// Crawl runs one search-fetch-parse cycle and returns the transactions found,
// in provider order. An empty mailbox match yields an empty slice, not an
// error.
//
// The crawl is atomic with respect to failure: if the search or any single
// message fetch fails, the whole crawl aborts and no partial list is
// returned. A caller handed a partial list could mistakenly believe the
// mailbox was fully synced.
func (c *Crawler) Crawl(ctx context.Context, maxResults int64) ([]domain.ParsedTransaction, error) {
	if maxResults <= 0 {
		maxResults = DefaultMaxResults
	}

	ids, err := c.api.ListMessageIDs(ctx, searchQuery, maxResults)
	if err != nil {
		return nil, fmt.Errorf("search mailbox: %w", err)
	}

	c.log.Debug().Int("candidates", len(ids)).Msg("Mailbox search finished")

	transactions := make([]domain.ParsedTransaction, 0, len(ids))
	for _, id := range ids {
		msg, err := c.api.GetMessage(ctx, id)
		if err != nil {
			return nil, fmt.Errorf("fetch message %s: %w", id, err)
		}

		tx := parser.Parse(msg)
		if tx == nil {
			continue
		}
		transactions = append(transactions, *tx)
	}

	c.log.Info().
		Int("candidates", len(ids)).
		Int("transactions", len(transactions)).
		Msg("Crawl finished")

	return transactions, nil
}
