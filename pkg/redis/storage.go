package redis

import (
	"context"
	"errors"
	"fmt"

	redisclient "github.com/redis/go-redis/v9"

	"github.com/jonborges/menu4you/pkg/storage"
)

// Storage is a storage.KV over redis. Keys are stored as
// "<namespace>:<key>" so several devices can share one server.
type Storage struct {
	client    *redisclient.Client
	namespace string
}

var _ storage.KV = (*Storage)(nil)

func NewStorage(client *redisclient.Client, namespace string) *Storage {
	return &Storage{client: client, namespace: namespace}
}

func (s *Storage) key(k string) string {
	if s.namespace == "" {
		return k
	}
	return fmt.Sprintf("%s:%s", s.namespace, k)
}

func (s *Storage) Get(ctx context.Context, key string) (string, error) {
	value, err := s.client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redisclient.Nil) {
		return "", storage.ErrNotFound
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s from Redis: %w", key, err)
	}
	return value, nil
}

func (s *Storage) Set(ctx context.Context, key, value string) error {
	if err := s.client.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write %s to Redis: %w", key, err)
	}
	return nil
}

// Delete removes all keys in one transaction; absent keys are ignored.
func (s *Storage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	pipe := s.client.TxPipeline()
	for _, k := range keys {
		pipe.Del(ctx, s.key(k))
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete %d keys from Redis: %w", len(keys), err)
	}
	return nil
}

// SetMany writes all pairs in one transaction so a reader never sees a
// partially written group (e.g. a token without its user id).
func (s *Storage) SetMany(ctx context.Context, pairs map[string]string) error {
	pipe := s.client.TxPipeline()
	for k, v := range pairs {
		pipe.Set(ctx, s.key(k), v, 0)
	}
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to write %d keys to Redis: %w", len(pairs), err)
	}
	return nil
}
