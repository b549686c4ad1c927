package models

import "fmt"

// AuthResponse is returned by register and login, remote or local.
type AuthResponse struct {
	Token    string `json:"token"`
	UserID   int64  `json:"userId"`
	Username string `json:"username"`
	Email    string `json:"email"`
}

func (a *AuthResponse) Validate() error {
	if a.Token == "" {
		return fmt.Errorf("auth response has no token")
	}
	if a.UserID <= 0 {
		return fmt.Errorf("auth response has invalid user id %d", a.UserID)
	}
	return nil
}

type RegisterRequest struct {
	Username string `json:"username" binding:"required,min=3,max=50"`
	Email    string `json:"email" binding:"required,email"`
	Password string `json:"password" binding:"required,min=6,max=128"`
}

// LoginRequest.Username may also hold an email address.
type LoginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// LocalUser is a user record of the local-fallback mirror.
type LocalUser struct {
	ID           int64  `json:"id"`
	Username     string `json:"username"`
	Email        string `json:"email"`
	PasswordHash string `json:"passwordHash"`
}

func (u LocalUser) RecordID() int64 { return u.ID }
