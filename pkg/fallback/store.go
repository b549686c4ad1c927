// Package fallback keeps local mirrors of server records so that a subset of
// operations (register and login) keeps working while the backend is
// unreachable.
package fallback

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"github.com/jonborges/menu4you/pkg/storage"
)

// Store persists one JSON array per key.
type Store interface {
	// Load returns nil, nil for an absent key.
	Load(ctx context.Context, key string) ([]byte, error)
	Save(ctx context.Context, key string, data []byte) error
	Delete(ctx context.Context, keys ...string) error
}

// Record is anything with a numeric id.
type Record interface {
	RecordID() int64
}

type kvStore struct {
	kv storage.KV
}

// NewKVStore keeps mirrors in durable client storage.
func NewKVStore(kv storage.KV) Store {
	return &kvStore{kv: kv}
}

func (s *kvStore) Load(ctx context.Context, key string) ([]byte, error) {
	value, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return []byte(value), nil
}

func (s *kvStore) Save(ctx context.Context, key string, data []byte) error {
	return s.kv.Set(ctx, key, string(data))
}

func (s *kvStore) Delete(ctx context.Context, keys ...string) error {
	return s.kv.Delete(ctx, keys...)
}

// ReadLocal returns the records under key. An absent or unparsable entry
// reads as an empty sequence.
func ReadLocal[T any](ctx context.Context, s Store, key string) ([]T, error) {
	data, err := s.Load(ctx, key)
	if err != nil {
		return nil, fmt.Errorf("failed to read local %s: %w", key, err)
	}
	if len(data) == 0 {
		return []T{}, nil
	}

	var records []T
	if err := json.Unmarshal(data, &records); err != nil {
		log.Printf("Warning: discarding malformed local %s: %v", key, err)
		return []T{}, nil
	}
	if records == nil {
		records = []T{}
	}
	return records, nil
}

func WriteLocal[T any](ctx context.Context, s Store, key string, records []T) error {
	if records == nil {
		records = []T{}
	}
	data, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("failed to marshal local %s: %w", key, err)
	}
	if err := s.Save(ctx, key, data); err != nil {
		return fmt.Errorf("failed to write local %s: %w", key, err)
	}
	return nil
}

// NextID is one greater than the largest id in records, or 1 when empty.
func NextID[T Record](records []T) int64 {
	var max int64
	for _, r := range records {
		if id := r.RecordID(); id > max {
			max = id
		}
	}
	return max + 1
}

// PurgeStaleMirrors drops the restaurant and item mirrors. They are never
// read back, and keeping them across restarts only shows stale data.
func PurgeStaleMirrors(ctx context.Context, s Store) error {
	if err := s.Delete(ctx, storage.KeyLocalRestaurants, storage.KeyLocalItems); err != nil {
		return fmt.Errorf("failed to purge local mirrors: %w", err)
	}
	return nil
}
