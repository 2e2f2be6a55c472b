// Package profile stores per-user account documents next to the ingestion
// queue in Firestore.
package profile

import (
	"context"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"bankmail/internal/domain"
)

const usersCollection = "users"

// DefaultTier is assigned to profiles saved without an explicit tier.
const DefaultTier = "free"

// Store reads and writes user profiles in Firestore.
type Store struct {
	client *firestore.Client
}

// NewStore creates a profile store on an existing Firestore client.
func NewStore(client *firestore.Client) *Store {
	return &Store{client: client}
}

// Save creates or updates a profile. The write is a merge so fields managed
// elsewhere on the user document (the queue lives in a subcollection, other
// flags may live on the doc itself) survive a profile refresh. LastLogin is
// stamped on every save.
func (s *Store) Save(ctx context.Context, p domain.UserProfile) error {
	if p.UID == "" {
		return fmt.Errorf("save profile: uid is required")
	}
	if p.Tier == "" {
		p.Tier = DefaultTier
	}

	data := map[string]interface{}{
		"uid":       p.UID,
		"email":     p.Email,
		"name":      p.Name,
		"picture":   p.Picture,
		"tier":      p.Tier,
		"lastLogin": time.Now().UTC(),
	}

	if _, err := s.client.Collection(usersCollection).Doc(p.UID).Set(ctx, data, firestore.MergeAll); err != nil {
		return fmt.Errorf("save profile %s: %w", p.UID, err)
	}
	return nil
}

// Get returns the profile for a user id, or domain.ErrProfileNotFound.
func (s *Store) Get(ctx context.Context, uid string) (domain.UserProfile, error) {
	doc, err := s.client.Collection(usersCollection).Doc(uid).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return domain.UserProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("get profile %s: %w", uid, err)
	}

	var p domain.UserProfile
	if err := doc.DataTo(&p); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode profile %s: %w", uid, err)
	}
	return p, nil
}

// GetByEmail finds a profile by email address, for callers that only hold the
// session email. Returns domain.ErrProfileNotFound when no profile matches.
func (s *Store) GetByEmail(ctx context.Context, email string) (domain.UserProfile, error) {
	iter := s.client.Collection(usersCollection).
		Where("email", "==", email).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return domain.UserProfile{}, domain.ErrProfileNotFound
	}
	if err != nil {
		return domain.UserProfile{}, fmt.Errorf("find profile by email: %w", err)
	}

	var p domain.UserProfile
	if err := doc.DataTo(&p); err != nil {
		return domain.UserProfile{}, fmt.Errorf("decode profile %s: %w", doc.Ref.ID, err)
	}
	return p, nil
}
