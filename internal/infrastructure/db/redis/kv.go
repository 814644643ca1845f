package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/eetrade/marketplace/internal/core/domain"
)

// envelope wraps a stored value with its optimistic-concurrency version.
type envelope struct {
	Version int64  `json:"version"`
	Data    []byte `json:"data"`
}

// KV implements ports.KeyValue on Redis. Compare-and-set uses WATCH so that a
// concurrent writer between read and write aborts the transaction.
type KV struct {
	client *redis.Client
}

// NewKV wraps the given Redis client.
func NewKV(client *redis.Client) *KV {
	return &KV{client: client}
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, int64, error) {
	raw, err := k.client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, 0, domain.ErrKeyNotFound
		}
		return nil, 0, fmt.Errorf("redis get %s: %w", key, err)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return nil, 0, fmt.Errorf("redis get %s: %w: %v", key, domain.ErrCorruptState, err)
	}
	return env.Data, env.Version, nil
}

// Put writes unconditionally and resets the version to 1. Keys written with
// Put must not be mixed with CompareAndSet.
func (k *KV) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	raw, err := json.Marshal(envelope{Version: 1, Data: value})
	if err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	if err := k.client.Set(ctx, key, raw, ttl).Err(); err != nil {
		return fmt.Errorf("redis put %s: %w", key, err)
	}
	return nil
}

func (k *KV) CompareAndSet(ctx context.Context, key string, value []byte, version int64) error {
	err := k.client.Watch(ctx, func(tx *redis.Tx) error {
		current := int64(0)
		raw, err := tx.Get(ctx, key).Bytes()
		switch {
		case errors.Is(err, redis.Nil):
			// key absent, current stays 0
		case err != nil:
			return fmt.Errorf("redis cas read %s: %w", key, err)
		default:
			var env envelope
			if err := json.Unmarshal(raw, &env); err != nil {
				return fmt.Errorf("redis cas read %s: %w: %v", key, domain.ErrCorruptState, err)
			}
			current = env.Version
		}

		if current != version {
			return domain.ErrStoreConflict
		}

		next, err := json.Marshal(envelope{Version: version + 1, Data: value})
		if err != nil {
			return fmt.Errorf("redis cas %s: %w", key, err)
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key, next, 0)
			return nil
		})
		return err
	}, key)

	if errors.Is(err, redis.TxFailedErr) {
		return domain.ErrStoreConflict
	}
	return err
}

func (k *KV) Delete(ctx context.Context, key string) error {
	if err := k.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis delete %s: %w", key, err)
	}
	return nil
}

func (k *KV) Ping(ctx context.Context) error {
	return k.client.Ping(ctx).Err()
}
