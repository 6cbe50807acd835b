package auth

import (
	"context"
	"time"
)

// User represents an authenticated dashboard account.
type User struct {
	ID           int64
	Username     string
	PasswordHash string
	Nickname     string
	CreatedAt    time.Time
}

// Repository defines persistence operations for the auth module.
type Repository interface {
	FindByUsername(ctx context.Context, username string) (*User, error)
	CreateUser(ctx context.Context, user User) (*User, error)
}
