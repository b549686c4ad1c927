package cart

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strconv"

	"github.com/jonborges/menu4you/pkg/storage"
)

// TableBinding ties the browsing session to a physical table.
type TableBinding struct {
	TableNumber  int    `json:"tableNumber"`
	RestaurantID *int64 `json:"restaurantId,omitempty"`
}

type TableStore interface {
	// Load returns nil when no binding is stored.
	Load(ctx context.Context) (*TableBinding, error)
	Save(ctx context.Context, b TableBinding) error
	Clear(ctx context.Context) error
}

type KVTableStore struct {
	kv storage.KV
}

var _ TableStore = (*KVTableStore)(nil)

func NewTableStore(kv storage.KV) *KVTableStore {
	return &KVTableStore{kv: kv}
}

func (s *KVTableStore) Load(ctx context.Context) (*TableBinding, error) {
	raw, err := s.kv.Get(ctx, storage.KeyTableNumber)
	if errors.Is(err, storage.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load table binding: %w", err)
	}

	table, err := strconv.Atoi(raw)
	if err != nil || table < 1 {
		log.Printf("Warning: ignoring stored table number %q", raw)
		return nil, nil
	}
	binding := &TableBinding{TableNumber: table}

	raw, err = s.kv.Get(ctx, storage.KeyRestaurantID)
	switch {
	case errors.Is(err, storage.ErrNotFound):
	case err != nil:
		return nil, fmt.Errorf("failed to load table restaurant: %w", err)
	default:
		if id, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
			binding.RestaurantID = &id
		}
	}
	return binding, nil
}

func (s *KVTableStore) Save(ctx context.Context, b TableBinding) error {
	pairs := map[string]string{storage.KeyTableNumber: strconv.Itoa(b.TableNumber)}
	if b.RestaurantID != nil {
		pairs[storage.KeyRestaurantID] = strconv.FormatInt(*b.RestaurantID, 10)
	}
	if err := storage.SetAll(ctx, s.kv, pairs); err != nil {
		return fmt.Errorf("failed to save table binding: %w", err)
	}
	return nil
}

func (s *KVTableStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, storage.KeyTableNumber, storage.KeyRestaurantID); err != nil {
		return fmt.Errorf("failed to clear table binding: %w", err)
	}
	return nil
}
