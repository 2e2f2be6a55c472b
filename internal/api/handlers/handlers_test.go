package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"

	"bankmail/internal/api/middleware"
	"bankmail/internal/domain"
	"bankmail/internal/ingest"
	"bankmail/internal/queue"
)

type stubSyncer struct {
	gotToken  string
	gotUserID string
	report    *ingest.Report
	err       error
}

func (s *stubSyncer) Sync(ctx context.Context, accessToken, userID string, maxResults int64) (*ingest.Report, error) {
	s.gotToken = accessToken
	s.gotUserID = userID
	if s.err != nil {
		return nil, s.err
	}
	return s.report, nil
}

// do routes a request through the Auth middleware into the handler, the same
// way the server wires it.
func do(h http.HandlerFunc, method, path string, body io.Reader, authed bool) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, body)
	if authed {
		req.Header.Set("Authorization", "Bearer tok-123")
		req.Header.Set("X-User-ID", "user-a")
	}
	rec := httptest.NewRecorder()
	middleware.Auth(h).ServeHTTP(rec, req)
	return rec
}

func TestSyncHandler_ReportsQueuedTransactions(t *testing.T) {
	syncer := &stubSyncer{report: &ingest.Report{Found: 2, Queued: 2}}
	h := NewSyncHandler(syncer, 20, zerolog.Nop())

	rec := do(h.Sync, http.MethodPost, "/api/sync", nil, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200; body: %s", rec.Code, rec.Body)
	}
	if syncer.gotToken != "tok-123" || syncer.gotUserID != "user-a" {
		t.Errorf("syncer saw token=%q user=%q, want request identity", syncer.gotToken, syncer.gotUserID)
	}

	var resp struct {
		Report  ingest.Report `json:"report"`
		Message string        `json:"message"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Report.Queued != 2 {
		t.Errorf("report.queued = %d, want 2", resp.Report.Queued)
	}
	if resp.Message != "" {
		t.Errorf("message = %q, want empty for a non-empty crawl", resp.Message)
	}
}

func TestSyncHandler_EmptyCrawlIsNotAnError(t *testing.T) {
	syncer := &stubSyncer{report: &ingest.Report{}}
	h := NewSyncHandler(syncer, 20, zerolog.Nop())

	rec := do(h.Sync, http.MethodPost, "/api/sync", nil, true)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200", rec.Code)
	}

	var resp map[string]interface{}
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["message"] != "no new bank emails found" {
		t.Errorf("message = %v, want informational no-results message", resp["message"])
	}
}

func TestSyncHandler_SurfacesCrawlFailureVerbatim(t *testing.T) {
	syncer := &stubSyncer{err: errors.New("fetch message m3: backend unavailable")}
	h := NewSyncHandler(syncer, 20, zerolog.Nop())

	rec := do(h.Sync, http.MethodPost, "/api/sync", nil, true)

	if rec.Code != http.StatusBadGateway {
		t.Fatalf("status = %d, want 502", rec.Code)
	}

	var resp map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["error"] != "fetch message m3: backend unavailable" {
		t.Errorf("error = %q, want the underlying message verbatim", resp["error"])
	}
}

func TestAuth_RejectsMissingCredentials(t *testing.T) {
	syncer := &stubSyncer{report: &ingest.Report{}}
	h := NewSyncHandler(syncer, 20, zerolog.Nop())

	rec := do(h.Sync, http.MethodPost, "/api/sync", nil, false)

	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", rec.Code)
	}
	if syncer.gotToken != "" {
		t.Error("handler ran despite missing credentials")
	}
}

func TestQueueHandler_ListAndRemove(t *testing.T) {
	ctx := context.Background()
	q := queue.NewMemory()
	entryID, err := q.Push(ctx, "user-a", domain.ParsedTransaction{
		Amount:            120000,
		Direction:         domain.DirectionExpense,
		SyncStatus:        domain.StatusPendingSync,
		ProviderMessageID: "m1",
	})
	if err != nil {
		t.Fatalf("Push() error = %v", err)
	}

	h := NewQueueHandler(q, zerolog.Nop())

	rec := do(h.List, http.MethodGet, "/api/queue", nil, true)
	if rec.Code != http.StatusOK {
		t.Fatalf("List status = %d, want 200", rec.Code)
	}
	var listResp struct {
		Entries []domain.QueueEntry `json:"entries"`
		Count   int                 `json:"count"`
	}
	if err := json.Unmarshal(rec.Body.Bytes(), &listResp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if listResp.Count != 1 || listResp.Entries[0].ID != entryID {
		t.Errorf("list = %+v, want the pushed entry", listResp)
	}

	remove := func(w http.ResponseWriter, r *http.Request) {
		h.Remove(w, r, entryID)
	}
	rec = do(remove, http.MethodDelete, "/api/queue/"+entryID, nil, true)
	if rec.Code != http.StatusNoContent {
		t.Fatalf("Remove status = %d, want 204", rec.Code)
	}

	entries, err := q.List(ctx, "user-a")
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(entries) != 0 {
		t.Errorf("queue holds %d entries after removal, want 0", len(entries))
	}
}

func TestProfileHandler_UnconfiguredStore(t *testing.T) {
	h := NewProfileHandler(nil, zerolog.Nop())

	rec := do(h.Get, http.MethodGet, "/api/profile", nil, true)
	if rec.Code != http.StatusServiceUnavailable {
		t.Errorf("status = %d, want 503", rec.Code)
	}
}
