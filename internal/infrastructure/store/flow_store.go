package store

import (
	"context"
	"errors"

	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
)

// FlowStateStore holds the CSRF state and PKCE verifier of the login attempt
// in flight, under two dedicated short-lived keys.
type FlowStateStore struct {
	kv ports.KeyValue
}

func NewFlowStateStore(kv ports.KeyValue) *FlowStateStore {
	return &FlowStateStore{kv: kv}
}

func (s *FlowStateStore) Load(ctx context.Context) (*domain.FlowState, error) {
	state, _, err := s.kv.Get(ctx, oauthStateKey)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	fs := &domain.FlowState{CSRFState: string(state)}

	verifier, _, err := s.kv.Get(ctx, pkceVerifierKey)
	switch {
	case errors.Is(err, domain.ErrKeyNotFound):
		// PKCE disabled for this attempt
	case err != nil:
		return nil, err
	default:
		fs.PKCEVerifier = string(verifier)
	}
	return fs, nil
}

func (s *FlowStateStore) Save(ctx context.Context, fs *domain.FlowState) error {
	if err := s.kv.Put(ctx, oauthStateKey, []byte(fs.CSRFState), flowTTL); err != nil {
		return err
	}
	if fs.PKCEVerifier == "" {
		return nil
	}
	return s.kv.Put(ctx, pkceVerifierKey, []byte(fs.PKCEVerifier), flowTTL)
}

// Clear removes both keys; clearing an already-empty flow is a no-op.
func (s *FlowStateStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, oauthStateKey); err != nil {
		return err
	}
	return s.kv.Delete(ctx, pkceVerifierKey)
}
