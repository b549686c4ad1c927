// Package storage defines durable client-side storage: the key/value space
// that survives a process restart (session, table binding, guest name and
// local-fallback mirrors).
package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("storage: key not found")

type KV interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, keys ...string) error
}

// Well-known keys.
const (
	KeyToken        = "token"
	KeyUserID       = "userId"
	KeyUsername     = "username"
	KeyEmail        = "email"
	KeyLegacyUserID = "menuq_user_id"

	KeyTableNumber  = "current_table_number"
	KeyRestaurantID = "current_restaurant_id"
	KeyGuestName    = "guest_info"

	KeyLocalUsers       = "local_users"
	KeyLocalRestaurants = "local_restaurants"
	KeyLocalItems       = "local_items"
	KeyLocalEmployees   = "local_employees"
)

// BatchSetter is implemented by stores that can write several keys
// atomically.
type BatchSetter interface {
	SetMany(ctx context.Context, pairs map[string]string) error
}

// SetAll writes pairs atomically when kv supports it and one by one
// otherwise.
func SetAll(ctx context.Context, kv KV, pairs map[string]string) error {
	if b, ok := kv.(BatchSetter); ok {
		return b.SetMany(ctx, pairs)
	}
	for k, v := range pairs {
		if err := kv.Set(ctx, k, v); err != nil {
			return err
		}
	}
	return nil
}
