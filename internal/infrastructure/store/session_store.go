package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
)

// SessionStore persists the single session slot. The slot is replaced
// wholesale on every write, never patched.
type SessionStore struct {
	kv  ports.KeyValue
	log zerolog.Logger
}

func NewSessionStore(kv ports.KeyValue, log zerolog.Logger) *SessionStore {
	return &SessionStore{kv: kv, log: log}
}

func (s *SessionStore) Load(ctx context.Context) (*domain.Session, error) {
	raw, _, err := s.kv.Get(ctx, sessionKey)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var sess domain.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		// A session is replaceable state: drop the unreadable slot and treat
		// the context as logged-out rather than bricking the runtime.
		s.log.Warn().Err(err).Msg("dropping unreadable session slot")
		return nil, s.kv.Delete(ctx, sessionKey)
	}
	return &sess, nil
}

func (s *SessionStore) Save(ctx context.Context, sess *domain.Session) error {
	raw, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	return s.kv.Put(ctx, sessionKey, raw, 0)
}

func (s *SessionStore) Clear(ctx context.Context) error {
	return s.kv.Delete(ctx, sessionKey)
}
