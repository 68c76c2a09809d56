// Package session keeps the identity snapshot of logged in members
package session

import (
	"context"
	"errors"
	"time"
)

// ErrIdentityNotFound is returned when no snapshot is stored for a member
var ErrIdentityNotFound = errors.New("identity not found")

// Identity is what authorization checks read about the current member
type Identity struct {
	MemberID    string    `json:"memberId"`
	ID          int64     `json:"id"`
	Name        string    `json:"name"`
	Role        string    `json:"role"`
	ImageURL    string    `json:"imageUrl"`
	RefreshedAt time.Time `json:"refreshedAt"`
}

// IdentityStore saves and loads identities by login id
type IdentityStore interface {
	Save(ctx context.Context, identity Identity) error
	Get(ctx context.Context, memberID string) (*Identity, error)
	Delete(ctx context.Context, memberID string) error
}
