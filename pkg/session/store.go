package session

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/jonborges/menu4you/pkg/storage"
)

// Store persists the session across restarts.
type Store interface {
	Load(ctx context.Context) (Session, error)
	Save(ctx context.Context, s Session) error
	Clear(ctx context.Context) error
}

type KVStore struct {
	kv storage.KV
}

var _ Store = (*KVStore)(nil)

func NewStore(kv storage.KV) *KVStore {
	return &KVStore{kv: kv}
}

var sessionKeys = []string{
	storage.KeyToken,
	storage.KeyUserID,
	storage.KeyUsername,
	storage.KeyEmail,
	storage.KeyLegacyUserID,
}

func (s *KVStore) Load(ctx context.Context) (Session, error) {
	var out Session
	var err error

	if out.Token, err = s.get(ctx, storage.KeyToken); err != nil {
		return Session{}, err
	}
	if out.Username, err = s.get(ctx, storage.KeyUsername); err != nil {
		return Session{}, err
	}
	if out.Email, err = s.get(ctx, storage.KeyEmail); err != nil {
		return Session{}, err
	}

	raw, err := s.get(ctx, storage.KeyUserID)
	if err != nil {
		return Session{}, err
	}
	if raw == "" {
		// Sessions written by older builds only have the legacy key.
		if raw, err = s.get(ctx, storage.KeyLegacyUserID); err != nil {
			return Session{}, err
		}
	}
	if id, perr := strconv.ParseInt(raw, 10, 64); perr == nil {
		out.UserID = &id
	}
	return out, nil
}

func (s *KVStore) get(ctx context.Context, key string) (string, error) {
	v, err := s.kv.Get(ctx, key)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load session %s: %w", key, err)
	}
	return v, nil
}

func (s *KVStore) Save(ctx context.Context, sess Session) error {
	userID := ""
	if sess.UserID != nil {
		userID = strconv.FormatInt(*sess.UserID, 10)
	}
	err := storage.SetAll(ctx, s.kv, map[string]string{
		storage.KeyToken:        sess.Token,
		storage.KeyUserID:       userID,
		storage.KeyUsername:     sess.Username,
		storage.KeyEmail:        sess.Email,
		storage.KeyLegacyUserID: userID,
	})
	if err != nil {
		return fmt.Errorf("failed to save session: %w", err)
	}
	return nil
}

func (s *KVStore) Clear(ctx context.Context) error {
	if err := s.kv.Delete(ctx, sessionKeys...); err != nil {
		return fmt.Errorf("failed to clear session: %w", err)
	}
	return nil
}

// GuestStore keeps the self-reported display name of an unauthenticated
// customer.
type GuestStore struct {
	kv storage.KV
}

func NewGuestStore(kv storage.KV) *GuestStore {
	return &GuestStore{kv: kv}
}

// Load returns "" when no guest name is stored.
func (g *GuestStore) Load(ctx context.Context) (string, error) {
	v, err := g.kv.Get(ctx, storage.KeyGuestName)
	if errors.Is(err, storage.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to load guest name: %w", err)
	}
	return v, nil
}

// Save stores the trimmed name; a blank name clears it.
func (g *GuestStore) Save(ctx context.Context, name string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return g.kv.Delete(ctx, storage.KeyGuestName)
	}
	if err := g.kv.Set(ctx, storage.KeyGuestName, name); err != nil {
		return fmt.Errorf("failed to save guest name: %w", err)
	}
	return nil
}
