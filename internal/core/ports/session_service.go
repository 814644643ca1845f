package ports

import (
	"context"

	"github.com/eetrade/marketplace/internal/core/domain"
)

// SessionService manages the single authenticated session slot.
type SessionService interface {
	// Issue mints a fresh session for user. Refused with
	// domain.ErrAccountBlocked when the user is blocked.
	Issue(ctx context.Context, user *domain.User) (*domain.Session, error)

	// Current resolves the active session against the given user collection.
	// An expired slot is purged and reported as domain.ErrSessionExpired; a
	// dangling userId or empty slot is domain.ErrNotAuthenticated. Callers
	// treat both as logged-out.
	Current(ctx context.Context, snap *domain.Snapshot) (*domain.User, error)

	// Active returns the stored session when it is still valid, else nil.
	Active(ctx context.Context) (*domain.Session, error)

	// Invalidate clears the slot unconditionally (idempotent).
	Invalidate(ctx context.Context) error
}
