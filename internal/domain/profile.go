package domain

import (
	"errors"
	"time"
)

// ErrProfileNotFound is returned when no profile document exists for a user.
var ErrProfileNotFound = errors.New("user profile not found")

// UserProfile is the per-user document stored alongside the ingestion queue.
type UserProfile struct {
	UID       string    `firestore:"uid" json:"uid"`
	Email     string    `firestore:"email" json:"email"`
	Name      string    `firestore:"name" json:"name"`
	Picture   string    `firestore:"picture" json:"picture"`
	Tier      string    `firestore:"tier" json:"tier"`
	LastLogin time.Time `firestore:"lastLogin" json:"lastLogin"`
}
