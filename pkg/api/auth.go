package api

import (
	"context"
	"errors"
	"log"
	"net/http"

	"github.com/jonborges/menu4you/pkg/fallback"
	"github.com/jonborges/menu4you/pkg/models"
)

// Register creates an account on the backend. When the backend cannot be
// reached the account is created in the local-fallback store instead.
func (c *Client) Register(ctx context.Context, req models.RegisterRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.FetchJSON(ctx, http.MethodPost, "/api/auth/register", req, &out)
	if err == nil {
		return &out, nil
	}
	if c.users == nil || !IsNetworkError(err) {
		return nil, err
	}

	log.Printf("Remote register unavailable, using local accounts: %v", err)
	local, ferr := c.users.Register(ctx, req.Username, req.Email, req.Password)
	if ferr != nil {
		return nil, localAuthError(ferr)
	}
	return local, nil
}

// Login authenticates against the backend, or the local-fallback store when
// the backend cannot be reached. Username may be an email address.
func (c *Client) Login(ctx context.Context, req models.LoginRequest) (*models.AuthResponse, error) {
	var out models.AuthResponse
	err := c.FetchJSON(ctx, http.MethodPost, "/api/auth/login", req, &out)
	if err == nil {
		return &out, nil
	}
	if c.users == nil || !IsNetworkError(err) {
		return nil, err
	}

	log.Printf("Remote login unavailable, using local accounts: %v", err)
	local, ferr := c.users.Login(ctx, req.Username, req.Password)
	if ferr != nil {
		return nil, localAuthError(ferr)
	}
	return local, nil
}

func localAuthError(err error) error {
	switch {
	case errors.Is(err, fallback.ErrDuplicateUser):
		return &DomainError{Code: CodeDuplicateUser, Message: err.Error(), Cause: err}
	case errors.Is(err, fallback.ErrInvalidCredentials):
		return &DomainError{Code: CodeInvalidCredentials, Message: err.Error(), Cause: err}
	default:
		return err
	}
}
