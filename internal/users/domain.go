package users

import (
	"errors"
	"time"
)

var (
	// ErrInvalidCredentials indicates login failure.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrUsernameTaken indicates the username already exists.
	ErrUsernameTaken = errors.New("username already taken")
	// ErrNotFound indicates the requested user does not exist.
	ErrNotFound = errors.New("user not found")
)

// User is a cashier or manager account. Sales reference the username.
type User struct {
	ID           int64     `json:"id"`
	Username     string    `json:"username"`
	FullName     string    `json:"full_name"`
	Role         string    `json:"role"`
	PasswordHash string    `json:"-"`
	IsActive     bool      `json:"is_active"`
	CreatedAt    time.Time `json:"created_at"`
}
