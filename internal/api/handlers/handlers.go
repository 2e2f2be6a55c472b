// Package handlers exposes the ingestion pipeline over HTTP.
package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"bankmail/internal/api/middleware"
	"bankmail/internal/domain"
	"bankmail/internal/ingest"
	"bankmail/internal/queue"
)

// Syncer runs one ingestion cycle; implemented by ingest.Orchestrator.
type Syncer interface {
	Sync(ctx context.Context, accessToken, userID string, maxResults int64) (*ingest.Report, error)
}

// ProfileStore is the slice of the profile store the API needs.
type ProfileStore interface {
	Save(ctx context.Context, p domain.UserProfile) error
	Get(ctx context.Context, uid string) (domain.UserProfile, error)
}

// SyncHandler triggers ingestion cycles.
type SyncHandler struct {
	syncer     Syncer
	maxResults int64
	log        zerolog.Logger
}

// NewSyncHandler creates a new sync handler.
func NewSyncHandler(syncer Syncer, maxResults int64, log zerolog.Logger) *SyncHandler {
	return &SyncHandler{syncer: syncer, maxResults: maxResults, log: log}
}

// Sync handles POST /api/sync. The crawl credential comes from the request's
// bearer token; the queue identity from X-User-ID.
func (h *SyncHandler) Sync(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	token := middleware.AccessToken(ctx)
	userID := middleware.UserID(ctx)

	report, err := h.syncer.Sync(ctx, token, userID, h.maxResults)
	if err != nil {
		if errors.Is(err, ingest.ErrMissingCredential) {
			middleware.WriteError(w, http.StatusUnauthorized, err.Error())
			return
		}
		h.log.Error().Err(err).Str("user_id", userID).Msg("Sync failed")
		// The underlying message is surfaced verbatim to aid diagnosis.
		middleware.WriteError(w, http.StatusBadGateway, err.Error())
		return
	}

	resp := map[string]interface{}{"report": report}
	if report.Found == 0 {
		resp["message"] = "no new bank emails found"
	}
	middleware.WriteJSON(w, http.StatusOK, resp)
}

// QueueHandler exposes the staged-transaction queue.
type QueueHandler struct {
	queue queue.Queue
	log   zerolog.Logger
}

// NewQueueHandler creates a new queue handler.
func NewQueueHandler(q queue.Queue, log zerolog.Logger) *QueueHandler {
	return &QueueHandler{queue: q, log: log}
}

// List handles GET /api/queue
func (h *QueueHandler) List(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	entries, err := h.queue.List(ctx, userID)
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to list queue")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to list queue")
		return
	}
	if entries == nil {
		entries = []domain.QueueEntry{}
	}

	middleware.WriteJSON(w, http.StatusOK, map[string]interface{}{
		"entries": entries,
		"count":   len(entries),
	})
}

// Remove handles DELETE /api/queue/:entryId
func (h *QueueHandler) Remove(w http.ResponseWriter, r *http.Request, entryID string) {
	ctx := r.Context()
	userID := middleware.UserID(ctx)

	if err := h.queue.Remove(ctx, userID, entryID); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Str("entry_id", entryID).Msg("Failed to remove queue entry")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to remove queue entry")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

// ProfileHandler reads and writes user profiles.
type ProfileHandler struct {
	store ProfileStore
	log   zerolog.Logger
}

// NewProfileHandler creates a new profile handler. store may be nil when no
// document store is configured; profile endpoints then answer 503.
func NewProfileHandler(store ProfileStore, log zerolog.Logger) *ProfileHandler {
	return &ProfileHandler{store: store, log: log}
}

// Get handles GET /api/profile
func (h *ProfileHandler) Get(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Profile store is not configured")
		return
	}

	ctx := r.Context()
	userID := middleware.UserID(ctx)

	p, err := h.store.Get(ctx, userID)
	if errors.Is(err, domain.ErrProfileNotFound) {
		middleware.WriteError(w, http.StatusNotFound, "Profile not found")
		return
	}
	if err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to read profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to read profile")
		return
	}

	middleware.WriteJSON(w, http.StatusOK, p)
}

// Save handles PUT /api/profile
func (h *ProfileHandler) Save(w http.ResponseWriter, r *http.Request) {
	if h.store == nil {
		middleware.WriteError(w, http.StatusServiceUnavailable, "Profile store is not configured")
		return
	}

	ctx := r.Context()
	userID := middleware.UserID(ctx)

	var p domain.UserProfile
	if err := json.NewDecoder(r.Body).Decode(&p); err != nil {
		middleware.WriteError(w, http.StatusBadRequest, "Invalid request body")
		return
	}
	// Identity comes from the authenticated request, never the payload.
	p.UID = userID

	if err := h.store.Save(ctx, p); err != nil {
		h.log.Error().Err(err).Str("user_id", userID).Msg("Failed to save profile")
		middleware.WriteError(w, http.StatusInternalServerError, "Failed to save profile")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
