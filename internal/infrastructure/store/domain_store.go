package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/eetrade/marketplace/internal/api/metrics"
	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
)

// DomainStore reads and writes the users/auctions/bids collections as one
// versioned JSON blob. Independent runtime contexts sharing the backend are
// coordinated through the blob's compare-and-swap version.
type DomainStore struct {
	kv  ports.KeyValue
	log zerolog.Logger
}

func NewDomainStore(kv ports.KeyValue, log zerolog.Logger) *DomainStore {
	return &DomainStore{kv: kv, log: log}
}

func (s *DomainStore) Load(ctx context.Context) (*domain.Snapshot, error) {
	raw, version, err := s.kv.Get(ctx, domainKey)
	if errors.Is(err, domain.ErrKeyNotFound) {
		return s.seed(ctx)
	}
	if err != nil {
		return nil, err
	}

	var snap domain.Snapshot
	if err := json.Unmarshal(raw, &snap); err != nil {
		// Corrupt persisted data is fatal; a partial domain must never be
		// silently returned.
		return nil, fmt.Errorf("%w: %v", domain.ErrCorruptState, err)
	}
	snap.Version = version
	return &snap, nil
}

func (s *DomainStore) Save(ctx context.Context, snap *domain.Snapshot) error {
	raw, err := json.Marshal(snap)
	if err != nil {
		return fmt.Errorf("encode domain: %w", err)
	}
	if err := s.kv.CompareAndSet(ctx, domainKey, raw, snap.Version); err != nil {
		return err
	}
	snap.Version++
	return nil
}

func (s *DomainStore) Update(ctx context.Context, mutate func(*domain.Snapshot) error) error {
	for attempt := 0; ; attempt++ {
		snap, err := s.Load(ctx)
		if err != nil {
			return err
		}
		if err := mutate(snap); err != nil {
			return err
		}
		err = s.Save(ctx, snap)
		if err == nil {
			return nil
		}
		if !errors.Is(err, domain.ErrStoreConflict) {
			return err
		}
		metrics.StoreConflictsTotal.Inc()
		if attempt >= 1 {
			return err
		}
		s.log.Warn().Msg("concurrent domain write, retrying once")
	}
}

// seed writes the initial domain containing only the admin user. Losing the
// create race to another context is fine: the winner's seed is equivalent.
func (s *DomainStore) seed(ctx context.Context) (*domain.Snapshot, error) {
	snap := domain.SeedSnapshot()
	raw, err := json.Marshal(snap)
	if err != nil {
		return nil, fmt.Errorf("encode seed domain: %w", err)
	}

	err = s.kv.CompareAndSet(ctx, domainKey, raw, 0)
	switch {
	case err == nil:
		s.log.Info().Msg("seeded fresh domain with admin user")
		snap.Version = 1
		return snap, nil
	case errors.Is(err, domain.ErrStoreConflict):
		return s.Load(ctx)
	default:
		return nil, err
	}
}
