package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/eetrade/marketplace/internal/core/domain"
)

const kvCollection = "kv"

// KV implements ports.KeyValue on MongoDB: one document per key, with the
// version filter on ReplaceOne providing compare-and-set semantics.
type KV struct {
	coll *mongo.Collection
}

// NewKV wraps the given database.
func NewKV(db *mongo.Database) *KV {
	return &KV{coll: db.Collection(kvCollection)}
}

type kvDoc struct {
	Key       string     `bson:"_id"`
	Version   int64      `bson:"version"`
	Data      []byte     `bson:"data"`
	ExpiresAt *time.Time `bson:"expires_at,omitempty"`
}

func (k *KV) Get(ctx context.Context, key string) ([]byte, int64, error) {
	var doc kvDoc
	if err := k.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, 0, domain.ErrKeyNotFound
		}
		return nil, 0, fmt.Errorf("mongo get %s: %w", key, err)
	}

	// Expiry is enforced lazily: an expired document reads as absent.
	if doc.ExpiresAt != nil && time.Now().After(*doc.ExpiresAt) {
		_, _ = k.coll.DeleteOne(ctx, bson.M{"_id": key})
		return nil, 0, domain.ErrKeyNotFound
	}

	return doc.Data, doc.Version, nil
}

func (k *KV) Put(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	doc := kvDoc{Key: key, Version: 1, Data: value}
	if ttl > 0 {
		expires := time.Now().Add(ttl)
		doc.ExpiresAt = &expires
	}

	_, err := k.coll.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("mongo put %s: %w", key, err)
	}
	return nil
}

func (k *KV) CompareAndSet(ctx context.Context, key string, value []byte, version int64) error {
	doc := kvDoc{Key: key, Version: version + 1, Data: value}

	if version == 0 {
		if _, err := k.coll.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return domain.ErrStoreConflict
			}
			return fmt.Errorf("mongo cas insert %s: %w", key, err)
		}
		return nil
	}

	res, err := k.coll.ReplaceOne(ctx, bson.M{"_id": key, "version": version}, doc)
	if err != nil {
		return fmt.Errorf("mongo cas %s: %w", key, err)
	}
	if res.MatchedCount == 0 {
		return domain.ErrStoreConflict
	}
	return nil
}

func (k *KV) Delete(ctx context.Context, key string) error {
	if _, err := k.coll.DeleteOne(ctx, bson.M{"_id": key}); err != nil {
		return fmt.Errorf("mongo delete %s: %w", key, err)
	}
	return nil
}

func (k *KV) Ping(ctx context.Context) error {
	return k.coll.Database().RunCommand(ctx, bson.D{{Key: "ping", Value: 1}}).Err()
}
