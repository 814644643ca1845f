package ports

import (
	"context"

	"github.com/eetrade/marketplace/internal/core/domain"
)

// DomainStore persists the users/auctions/bids collections as one serialized
// unit. The store enforces no cross-collection referential integrity; callers
// maintain it (e.g. the bid cascade on auction deletion).
type DomainStore interface {
	// Load returns the persisted domain. A missing blob yields an empty domain
	// with a freshly seeded admin user, persisted immediately. Corrupt data is
	// a fatal domain.ErrCorruptState; there is no partial fallback.
	Load(ctx context.Context) (*domain.Snapshot, error)

	// Save writes the snapshot atomically, guarded by the snapshot's version.
	Save(ctx context.Context, snap *domain.Snapshot) error

	// Update runs a read-modify-write of the snapshot, retrying once when a
	// concurrent writer invalidated the version.
	Update(ctx context.Context, mutate func(*domain.Snapshot) error) error
}

// SessionStore persists the single session slot of this runtime context.
// Load returns (nil, nil) when no session is stored.
type SessionStore interface {
	Load(ctx context.Context) (*domain.Session, error)
	Save(ctx context.Context, s *domain.Session) error
	Clear(ctx context.Context) error
}

// FlowStateStore persists the ephemeral CSRF state and PKCE verifier of one
// login attempt. Load returns (nil, nil) when no flow is in flight.
type FlowStateStore interface {
	Load(ctx context.Context) (*domain.FlowState, error)
	Save(ctx context.Context, fs *domain.FlowState) error
	Clear(ctx context.Context) error
}
