package mongo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"notedash/internal/kv"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"
)

// KVCollection holds one document per stored key
const KVCollection = "kv"

// kvDoc is one stored value. Value keeps the raw JSON text so the backend
// stays opaque to what the record store writes.
type kvDoc struct {
	Key       string    `bson:"_id"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updated_at"`
}

// KVRepo implements kv.Backend on a MongoDB collection
type KVRepo struct {
	collection *mongo.Collection
	now        func() time.Time
}

var _ kv.Backend = (*KVRepo)(nil)

func repoCtx(parent context.Context) (context.Context, context.CancelFunc) {
	return WithRepoTimeout(parent, OpTimeout)
}

// NewKVRepo creates a key-value repository on db
func NewKVRepo(db *mongo.Database) *KVRepo {
	return &KVRepo{
		collection: db.Collection(KVCollection),
		now:        time.Now,
	}
}

// Read returns the value stored under key; ok is false when there is none
func (r *KVRepo) Read(ctx context.Context, key string) ([]byte, bool, error) {
	if key == "" {
		return nil, false, kv.ErrInvalidKey
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	var doc kvDoc
	err := r.collection.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("find %q: %w", key, err)
	}
	return []byte(doc.Value), true, nil
}

// Write replaces the value under key in a single upsert
func (r *KVRepo) Write(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return kv.ErrInvalidKey
	}

	ctx, cancel := repoCtx(ctx)
	defer cancel()

	doc := newKVDoc(key, value, r.now())
	_, err := r.collection.ReplaceOne(ctx, bson.M{"_id": key}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("replace %q: %w", key, err)
	}
	return nil
}

func newKVDoc(key string, value []byte, now time.Time) kvDoc {
	return kvDoc{Key: key, Value: string(value), UpdatedAt: now.UTC()}
}
