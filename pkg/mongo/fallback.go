package mongo

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/v2/bson"
	"go.mongodb.org/mongo-driver/v2/mongo"
	"go.mongodb.org/mongo-driver/v2/mongo/options"

	"github.com/jonborges/menu4you/pkg/fallback"
)

// CollectionLocalMirrors holds one document per mirror key:
// {_id: <key>, records: [...], updated_at: <time>}.
const CollectionLocalMirrors = "local_mirrors"

// FallbackStore keeps local-fallback mirrors in a MongoDB collection.
type FallbackStore struct {
	collection *mongo.Collection
}

var _ fallback.Store = (*FallbackStore)(nil)

func NewFallbackStore(db *mongo.Database) *FallbackStore {
	return &FallbackStore{collection: db.Collection(CollectionLocalMirrors)}
}

func (s *FallbackStore) Load(ctx context.Context, key string) ([]byte, error) {
	raw, err := s.collection.FindOne(ctx, bson.D{{Key: "_id", Value: key}}).Raw()
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load mirror %s: %w", key, err)
	}

	records, err := raw.LookupErr("records")
	if err != nil {
		return nil, nil
	}
	return recordsToJSON(records)
}

func (s *FallbackStore) Save(ctx context.Context, key string, data []byte) error {
	records, err := recordsFromJSON(data)
	if err != nil {
		return fmt.Errorf("failed to convert mirror %s: %w", key, err)
	}

	doc := bson.D{
		{Key: "_id", Value: key},
		{Key: "records", Value: records},
		{Key: "updated_at", Value: time.Now().UTC()},
	}
	_, err = s.collection.ReplaceOne(ctx, bson.D{{Key: "_id", Value: key}}, doc, options.Replace().SetUpsert(true))
	if err != nil {
		return fmt.Errorf("failed to save mirror %s: %w", key, err)
	}
	return nil
}

func (s *FallbackStore) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	filter := bson.D{{Key: "_id", Value: bson.D{{Key: "$in", Value: keys}}}}
	if _, err := s.collection.DeleteMany(ctx, filter); err != nil {
		return fmt.Errorf("failed to delete mirrors: %w", err)
	}
	return nil
}

// recordsToJSON renders a BSON array as plain JSON. Relaxed extended JSON
// writes int64 and strings natively, which is all mirrors contain.
func recordsToJSON(v bson.RawValue) ([]byte, error) {
	wrapped, err := bson.MarshalExtJSON(bson.D{{Key: "r", Value: v}}, false, false)
	if err != nil {
		return nil, fmt.Errorf("failed to render mirror records: %w", err)
	}
	var out struct {
		R json.RawMessage `json:"r"`
	}
	if err := json.Unmarshal(wrapped, &out); err != nil {
		return nil, err
	}
	return out.R, nil
}

// recordsFromJSON decodes a JSON array keeping integral numbers as int64,
// so ids survive the trip through BSON unchanged.
func recordsFromJSON(data []byte) ([]any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()

	var records []any
	if err := dec.Decode(&records); err != nil {
		return nil, err
	}
	for i := range records {
		records[i] = normalizeNumbers(records[i])
	}
	return records, nil
}

func normalizeNumbers(v any) any {
	switch t := v.(type) {
	case json.Number:
		if n, err := t.Int64(); err == nil {
			return n
		}
		f, _ := t.Float64()
		return f
	case map[string]any:
		for k, inner := range t {
			t[k] = normalizeNumbers(inner)
		}
		return t
	case []any:
		for i, inner := range t {
			t[i] = normalizeNumbers(inner)
		}
		return t
	default:
		return v
	}
}
