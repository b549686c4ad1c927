package fallback

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"github.com/jonborges/menu4you/pkg/models"
	"github.com/jonborges/menu4you/pkg/storage"
)

var (
	ErrDuplicateUser      = errors.New("username or email already registered")
	ErrInvalidCredentials = errors.New("invalid username or password")
)

// LocalTokenPrefix marks session tokens minted without a backend.
const LocalTokenPrefix = "local-token-"

// Users is the degraded-mode account store.
type Users struct {
	store Store
	cost  int
	mu    sync.Mutex
}

func NewUsers(store Store) *Users {
	return &Users{store: store, cost: bcrypt.DefaultCost}
}

func (u *Users) Register(ctx context.Context, username, email, password string) (*models.AuthResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	users, err := ReadLocal[models.LocalUser](ctx, u.store, storage.KeyLocalUsers)
	if err != nil {
		return nil, err
	}
	for _, existing := range users {
		if existing.Username == username || strings.EqualFold(existing.Email, email) {
			return nil, ErrDuplicateUser
		}
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), u.cost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.LocalUser{
		ID:           NextID(users),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
	}
	users = append(users, user)
	if err := WriteLocal(ctx, u.store, storage.KeyLocalUsers, users); err != nil {
		return nil, err
	}

	log.Printf("Registered local user %d (%s)", user.ID, user.Username)
	return authFor(user), nil
}

// Login matches identifier against username or email.
func (u *Users) Login(ctx context.Context, identifier, password string) (*models.AuthResponse, error) {
	u.mu.Lock()
	defer u.mu.Unlock()

	users, err := ReadLocal[models.LocalUser](ctx, u.store, storage.KeyLocalUsers)
	if err != nil {
		return nil, err
	}
	for _, user := range users {
		if user.Username != identifier && !strings.EqualFold(user.Email, identifier) {
			continue
		}
		if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) == nil {
			return authFor(user), nil
		}
	}
	return nil, ErrInvalidCredentials
}

func authFor(user models.LocalUser) *models.AuthResponse {
	return &models.AuthResponse{
		Token:    fmt.Sprintf("%s%d", LocalTokenPrefix, user.ID),
		UserID:   user.ID,
		Username: user.Username,
		Email:    user.Email,
	}
}

// IsLocalToken reports whether token was minted by Users.
func IsLocalToken(token string) bool {
	return strings.HasPrefix(token, LocalTokenPrefix)
}
