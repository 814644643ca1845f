package service

import (
	"context"
	"encoding/json"
	"sync"

	"github.com/eetrade/marketplace/internal/core/domain"
	"github.com/eetrade/marketplace/internal/core/ports"
)

// memDomainStore keeps the snapshot in memory, deep-copied through JSON so
// tests observe the same isolation as the real blob store.
type memDomainStore struct {
	mu   sync.Mutex
	snap *domain.Snapshot
}

func newMemDomainStore() *memDomainStore {
	return &memDomainStore{snap: domain.SeedSnapshot()}
}

func cloneSnapshot(snap *domain.Snapshot) *domain.Snapshot {
	raw, err := json.Marshal(snap)
	if err != nil {
		panic(err)
	}
	var out domain.Snapshot
	if err := json.Unmarshal(raw, &out); err != nil {
		panic(err)
	}
	out.Version = snap.Version
	return &out
}

func (m *memDomainStore) Load(context.Context) (*domain.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return cloneSnapshot(m.snap), nil
}

func (m *memDomainStore) Save(_ context.Context, snap *domain.Snapshot) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.snap = cloneSnapshot(snap)
	return nil
}

func (m *memDomainStore) Update(ctx context.Context, mutate func(*domain.Snapshot) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	snap := cloneSnapshot(m.snap)
	if err := mutate(snap); err != nil {
		return err
	}
	m.snap = snap
	return nil
}

type memSessionStore struct {
	sess *domain.Session
}

func (m *memSessionStore) Load(context.Context) (*domain.Session, error) {
	if m.sess == nil {
		return nil, nil
	}
	clone := *m.sess
	return &clone, nil
}

func (m *memSessionStore) Save(_ context.Context, s *domain.Session) error {
	clone := *s
	m.sess = &clone
	return nil
}

func (m *memSessionStore) Clear(context.Context) error {
	m.sess = nil
	return nil
}

type memFlowStore struct {
	flow *domain.FlowState
}

func (m *memFlowStore) Load(context.Context) (*domain.FlowState, error) {
	if m.flow == nil {
		return nil, nil
	}
	clone := *m.flow
	return &clone, nil
}

func (m *memFlowStore) Save(_ context.Context, fs *domain.FlowState) error {
	clone := *fs
	m.flow = &clone
	return nil
}

func (m *memFlowStore) Clear(context.Context) error {
	m.flow = nil
	return nil
}

// stubExchanger records whether the relay was reached.
type stubExchanger struct {
	called bool
	input  ports.ExchangeInput
	name   string
	err    error
}

func (s *stubExchanger) Exchange(_ context.Context, input ports.ExchangeInput) (string, error) {
	s.called = true
	s.input = input
	if s.err != nil {
		return "", s.err
	}
	return s.name, nil
}
