package service

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"time"

	"github.com/rs/zerolog"

	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
)

// SessionService manages the single authenticated session slot of a runtime
// context. Sessions are opaque: the token carries no claims and is never
// parsed, only compared against the stored slot.
type SessionService struct {
	sessions ports.SessionStore
	ttl      time.Duration
	log      zerolog.Logger
	now      func() time.Time
}

func NewSessionService(sessions ports.SessionStore, ttl time.Duration, log zerolog.Logger) *SessionService {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionService{sessions: sessions, ttl: ttl, log: log, now: time.Now}
}

func (s *SessionService) Issue(ctx context.Context, user *domain.User) (*domain.Session, error) {
	if user.IsBlocked {
		return nil, domain.ErrAccountBlocked
	}

	sess := &domain.Session{
		UserID:    user.ID,
		Token:     newSessionToken(),
		ExpiresAt: s.now().Add(s.ttl),
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, err
	}

	s.log.Info().Str("user_id", user.ID).Time("expires_at", sess.ExpiresAt).Msg("session issued")
	return sess, nil
}

func (s *SessionService) Current(ctx context.Context, snap *domain.Snapshot) (*domain.User, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil {
		return nil, domain.ErrNotAuthenticated
	}

	if !sess.ValidAt(s.now()) {
		// Expiry is detected lazily on access; the stale slot is purged and
		// the caller treats the context as logged-out.
		if err := s.sessions.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, domain.ErrSessionExpired
	}

	user := snap.UserByID(sess.UserID)
	if user == nil {
		// Dangling session: the referenced user no longer resolves.
		if err := s.sessions.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, domain.ErrNotAuthenticated
	}

	if user.IsBlocked {
		if err := s.sessions.Clear(ctx); err != nil {
			return nil, err
		}
		return nil, domain.ErrAccountBlocked
	}

	return user, nil
}

func (s *SessionService) Active(ctx context.Context) (*domain.Session, error) {
	sess, err := s.sessions.Load(ctx)
	if err != nil {
		return nil, err
	}
	if sess == nil || !sess.ValidAt(s.now()) {
		return nil, nil
	}
	return sess, nil
}

func (s *SessionService) Invalidate(ctx context.Context) error {
	return s.sessions.Clear(ctx)
}

// newSessionToken returns a high-entropy opaque identifier.
func newSessionToken() string {
	b := make([]byte, 32)
	if _, err := rand.Read(b); err != nil {
		panic("session: crypto/rand unavailable: " + err.Error())
	}
	return base64.RawURLEncoding.EncodeToString(b)
}
