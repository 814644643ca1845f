package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/eetrade/marketplace/internal/core/domain"
)

type memEntry struct {
	value   []byte
	version int64
}

// memKV is an in-memory ports.KeyValue with the same version contract as the
// redis and mongo adapters. failNextCAS forces one conflict to exercise the
// retry path.
type memKV struct {
	entries     map[string]memEntry
	failNextCAS bool
}

func newMemKV() *memKV {
	return &memKV{entries: map[string]memEntry{}}
}

func (m *memKV) Get(_ context.Context, key string) ([]byte, int64, error) {
	e, ok := m.entries[key]
	if !ok {
		return nil, 0, domain.ErrKeyNotFound
	}
	return append([]byte(nil), e.value...), e.version, nil
}

func (m *memKV) Put(_ context.Context, key string, value []byte, _ time.Duration) error {
	m.entries[key] = memEntry{value: append([]byte(nil), value...), version: 1}
	return nil
}

func (m *memKV) CompareAndSet(_ context.Context, key string, value []byte, version int64) error {
	if m.failNextCAS {
		m.failNextCAS = false
		return domain.ErrStoreConflict
	}
	e, ok := m.entries[key]
	if version == 0 {
		if ok {
			return domain.ErrStoreConflict
		}
		m.entries[key] = memEntry{value: append([]byte(nil), value...), version: 1}
		return nil
	}
	if !ok || e.version != version {
		return domain.ErrStoreConflict
	}
	m.entries[key] = memEntry{value: append([]byte(nil), value...), version: version + 1}
	return nil
}

func (m *memKV) Delete(_ context.Context, key string) error {
	delete(m.entries, key)
	return nil
}

func (m *memKV) Ping(context.Context) error { return nil }

func TestDomainStore_SeedsOnFirstLoad(t *testing.T) {
	kv := newMemKV()
	s := NewDomainStore(kv, zerolog.Nop())

	snap, err := s.Load(context.Background())
	require.NoError(t, err)

	require.Len(t, snap.Users, 1)
	assert.Equal(t, domain.AdminUserID, snap.Users[0].ID)
	assert.True(t, snap.Users[0].IsAdmin)
	assert.Equal(t, int64(1), snap.Version)

	_, ok := kv.entries[domainKey]
	assert.True(t, ok, "seed must be persisted, not just returned")

	// A second load reads the persisted blob instead of reseeding.
	again, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Equal(t, snap.Version, again.Version)
}

func TestDomainStore_CorruptBlobIsFatal(t *testing.T) {
	kv := newMemKV()
	kv.entries[domainKey] = memEntry{value: []byte("{not json"), version: 3}
	s := NewDomainStore(kv, zerolog.Nop())

	_, err := s.Load(context.Background())
	require.ErrorIs(t, err, domain.ErrCorruptState)
}

func TestDomainStore_SaveBumpsVersion(t *testing.T) {
	kv := newMemKV()
	s := NewDomainStore(kv, zerolog.Nop())
	ctx := context.Background()

	snap, err := s.Load(ctx)
	require.NoError(t, err)

	snap.Users = append(snap.Users, domain.User{ID: "u-1", Username: "alice"})
	require.NoError(t, s.Save(ctx, snap))
	assert.Equal(t, int64(2), snap.Version)

	// Saving through a stale version is refused.
	stale := domain.SeedSnapshot()
	stale.Version = 1
	require.ErrorIs(t, s.Save(ctx, stale), domain.ErrStoreConflict)
}

func TestDomainStore_UpdateRetriesOnceOnConflict(t *testing.T) {
	kv := newMemKV()
	s := NewDomainStore(kv, zerolog.Nop())
	ctx := context.Background()

	_, err := s.Load(ctx)
	require.NoError(t, err)

	kv.failNextCAS = true
	calls := 0
	err = s.Update(ctx, func(snap *domain.Snapshot) error {
		calls++
		snap.Users = append(snap.Users, domain.User{ID: "u-1", Username: "alice"})
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, 2, calls, "mutation re-runs against a fresh snapshot")

	snap, err := s.Load(ctx)
	require.NoError(t, err)
	require.Len(t, snap.Users, 2)
	assert.Equal(t, "alice", snap.Users[1].Username, "mutation applied exactly once")
}

func TestDomainStore_UpdatePropagatesMutationError(t *testing.T) {
	kv := newMemKV()
	s := NewDomainStore(kv, zerolog.Nop())

	err := s.Update(context.Background(), func(*domain.Snapshot) error {
		return domain.ErrForbidden
	})
	require.ErrorIs(t, err, domain.ErrForbidden)
}

func TestSessionStore_RoundTripAndClear(t *testing.T) {
	kv := newMemKV()
	s := NewSessionStore(kv, zerolog.Nop())
	ctx := context.Background()

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded, "empty slot reads as logged-out, not as an error")

	sess := &domain.Session{UserID: "u-1", Token: "tok", ExpiresAt: time.Now().Add(time.Hour).UTC()}
	require.NoError(t, s.Save(ctx, sess))

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, sess.Token, loaded.Token)

	require.NoError(t, s.Clear(ctx))
	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)
}

func TestSessionStore_UnreadableSlotIsDropped(t *testing.T) {
	kv := newMemKV()
	kv.entries[sessionKey] = memEntry{value: []byte("garbage"), version: 1}
	s := NewSessionStore(kv, zerolog.Nop())

	loaded, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Nil(t, loaded)

	_, ok := kv.entries[sessionKey]
	assert.False(t, ok, "the unreadable slot must be deleted")
}

func TestFlowStateStore_RoundTrip(t *testing.T) {
	kv := newMemKV()
	s := NewFlowStateStore(kv)
	ctx := context.Background()

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, s.Save(ctx, &domain.FlowState{CSRFState: "s1", PKCEVerifier: "v1"}))

	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Equal(t, "s1", loaded.CSRFState)
	assert.Equal(t, "v1", loaded.PKCEVerifier)

	require.NoError(t, s.Clear(ctx))
	loaded, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Nil(t, loaded)

	require.NoError(t, s.Clear(ctx), "clearing an empty flow is a no-op")
}

func TestFlowStateStore_WithoutVerifier(t *testing.T) {
	kv := newMemKV()
	s := NewFlowStateStore(kv)
	ctx := context.Background()

	require.NoError(t, s.Save(ctx, &domain.FlowState{CSRFState: "s1"}))

	_, ok := kv.entries[pkceVerifierKey]
	assert.False(t, ok, "no verifier key is written when PKCE is off")

	loaded, err := s.Load(ctx)
	require.NoError(t, err)
	require.NotNil(t, loaded)
	assert.Empty(t, loaded.PKCEVerifier)
}
