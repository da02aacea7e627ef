package user

import (
	"context"
	"errors"
	"time"
)

var (
	ErrUserNotFound = errors.New("user not exist")
	ErrEmailTaken   = errors.New("email already registered")
)

type User struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Name         string    `json:"name"`
	PasswordHash string    `json:"passwordHash,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Public strips the credential before the user leaves the server.
func (u User) Public() User {
	u.PasswordHash = ""
	return u
}

type Repository interface {
	FindByEmail(ctx context.Context, email string) (*User, error)
	Create(ctx context.Context, u *User) error
	// Save writes u whether or not the email is already registered.
	Save(ctx context.Context, u *User) error
}
