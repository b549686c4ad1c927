// Package session holds the signed-in identity and keeps it in durable
// storage so that a restart preserves it.
package session

import (
	"context"
	"log"
	"strings"
	"sync"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/jonborges/menu4you/pkg/events"
)

type Session struct {
	Token    string `json:"-"`
	UserID   *int64 `json:"userId"`
	Username string `json:"username,omitempty"`
	Email    string `json:"email,omitempty"`
}

func (s Session) IsLoggedIn() bool {
	return s.Token != ""
}

type Manager struct {
	mu      sync.RWMutex
	store   Store
	bus     *events.Bus
	current Session
	now     func() time.Time
}

func NewManager(store Store, bus *events.Bus) *Manager {
	return &Manager{store: store, bus: bus, now: time.Now}
}

// Restore loads the persisted session. An expired JWT is dropped along with
// its stored keys; opaque tokens are kept as they are.
func (m *Manager) Restore(ctx context.Context) error {
	sess, err := m.store.Load(ctx)
	if err != nil {
		return err
	}
	if sess.Token == "" {
		sess = Session{}
	} else if tokenExpired(sess.Token, m.now()) {
		log.Printf("Stored session for %q has expired, clearing it", sess.Username)
		if err := m.store.Clear(ctx); err != nil {
			return err
		}
		sess = Session{}
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return nil
}

// Login persists the identity first and only then swaps the in-memory
// session, so a storage failure leaves both untouched.
func (m *Manager) Login(ctx context.Context, token string, userID int64, username, email string) error {
	sess := Session{Token: token, UserID: &userID, Username: username, Email: email}
	if err := m.store.Save(ctx, sess); err != nil {
		return err
	}

	m.mu.Lock()
	m.current = sess
	m.mu.Unlock()
	return nil
}

// Logout clears memory and storage and publishes events.Logout. The
// in-memory identity is dropped even if storage fails; the storage error is
// returned.
func (m *Manager) Logout(ctx context.Context) error {
	err := m.store.Clear(ctx)

	m.mu.Lock()
	m.current = Session{}
	m.mu.Unlock()

	m.bus.Emit(events.Logout)
	return err
}

func (m *Manager) Current() Session {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *Manager) IsLoggedIn() bool {
	return m.Current().IsLoggedIn()
}

// Token implements api.TokenSource.
func (m *Manager) Token() string {
	return m.Current().Token
}

func tokenExpired(token string, now time.Time) bool {
	if strings.Count(token, ".") != 2 {
		return false
	}
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return false
	}
	return claims.ExpiresAt != nil && claims.ExpiresAt.Time.Before(now)
}
