// Package parser decides whether a single bank notification email represents
// a financial transaction and, if so, extracts a structured record from its
// free text. It is a pure function over its inputs: no I/O, no shared state.
//
// Classification runs as a cascade of independent stages: inclusion filter,
// exclusion filter, institution detection, amount extraction, direction
// classification. Exclusion dominates inclusion: the pipeline tolerates
// missed emails but must never construct financial state from a security
// alert or a promotion.
package parser

import (
	"strconv"
	"strings"

	"bankmail/internal/domain"
)

// Parse classifies one email and extracts a transaction record from it.
// It returns nil when the email is not a financial transaction.
//
// Malformed input never causes an error: any field that cannot be extracted
// takes its documented default, because a partially-filled record is still
// actionable by a human reviewing the queue. An Amount of 0 signals a failed
// extraction, never a real zero-value transaction.
func Parse(msg domain.RawMessage) *domain.ParsedTransaction {
	content := strings.ToLower(msg.Sender + "\n" + msg.Subject + "\n" + msg.BodyText)

	if !containsAny(content, financialKeywords) {
		return nil
	}
	if containsAny(content, exclusionMarkers) {
		return nil
	}

	return &domain.ParsedTransaction{
		Date:              msg.ReceivedAt,
		Amount:            extractAmount(msg.BodyText),
		Direction:         classifyDirection(content),
		Category:          DefaultCategory,
		Description:       msg.Subject,
		SourceInstitution: detectInstitution(content),
		SyncStatus:        domain.StatusPendingSync,
		ProviderMessageID: msg.ID,
		RawExcerpt:        excerpt(msg.BodyText, rawExcerptLimit),
	}
}

// detectInstitution scans for known bank tokens in priority order.
func detectInstitution(content string) string {
	for _, inst := range institutions {
		if strings.Contains(content, inst.token) {
			return inst.name
		}
	}
	return DefaultInstitution
}

// extractAmount finds the first currency-tagged number in the body and
// returns its value with thousands separators stripped. Returns 0 when no
// pattern matches or the digits do not parse.
func extractAmount(body string) int64 {
	for _, pattern := range amountPatterns {
		m := pattern.FindStringSubmatch(body)
		if m == nil {
			continue
		}
		digits := strings.NewReplacer(",", "", ".", "").Replace(m[1])
		amount, err := strconv.ParseInt(digits, 10, 64)
		if err != nil {
			continue
		}
		return amount
	}
	return 0
}

// classifyDirection labels the flow as INCOME only when income vocabulary is
// present and expense vocabulary is not. Ambiguous content (both or neither)
// ties to EXPENSE; callers should treat ambiguous records with care since the
// tie-break can mis-sign a transaction.
func classifyDirection(content string) domain.Direction {
	hasIncome := containsAny(content, incomeTerms) || incomeSign.MatchString(content)
	hasExpense := containsAny(content, expenseTerms) || expenseSign.MatchString(content)

	if hasIncome && !hasExpense {
		return domain.DirectionIncome
	}
	return domain.DirectionExpense
}

func containsAny(content string, terms []string) bool {
	for _, term := range terms {
		if strings.Contains(content, term) {
			return true
		}
	}
	return false
}

// excerpt truncates s to at most n runes.
func excerpt(s string, n int) string {
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return string(runes[:n])
}
