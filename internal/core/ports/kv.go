package ports

import (
	"context"
	"time"
)

// KeyValue is the durable key-value substrate every persisted collection sits
// on. Implementations return domain.ErrKeyNotFound for absent keys and
// domain.ErrStoreConflict for a failed compare-and-set.
type KeyValue interface {
	// Get returns the stored value and its current version token.
	Get(ctx context.Context, key string) (value []byte, version int64, err error)

	// Put writes unconditionally. A ttl of zero means no expiry.
	Put(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// CompareAndSet writes only when the stored version still equals version.
	// version 0 requires the key to not exist yet.
	CompareAndSet(ctx context.Context, key string, value []byte, version int64) error

	// Delete removes the key. Deleting an absent key is not an error.
	Delete(ctx context.Context, key string) error

	// Ping verifies backend connectivity (readiness probe).
	Ping(ctx context.Context) error
}
