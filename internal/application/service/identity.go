package service

import (
	"context"
	"errors"
	"time"

	"github.com/khoahotran/cvnova/internal/domain/user"
)

var ErrInvalidCredentials = errors.New("email or password is incorrect")

type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

type Session struct {
	AccessToken string    `json:"accessToken"`
	TokenType   string    `json:"tokenType"`
	ExpiresAt   time.Time `json:"expiresAt"`
	User        user.User `json:"user"`
}

// IdentityProvider issues and verifies bearer tokens. ValidateToken is the only call
// made on every authenticated request.
type IdentityProvider interface {
	SignUp(ctx context.Context, in SignUpInput) (*user.User, error)
	SignIn(ctx context.Context, email, password string) (*Session, error)
	ValidateToken(ctx context.Context, token string) (*user.User, error)
	AuthorizeURL(provider, redirectTo string) (string, error)
}
