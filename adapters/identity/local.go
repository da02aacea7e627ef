package identity

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/auth"
	"github.com/khoahotran/cvnova/pkg/logger"
)

var ErrOAuthUnsupported = errors.New("oauth sign-in is only available with the supabase identity provider")

// LocalProvider keeps users in the document store and signs its own HS256 tokens.
type LocalProvider struct {
	users  user.Repository
	jwtSvc *auth.JWTService
	logger logger.Logger
}

func NewLocalProvider(users user.Repository, jwtSvc *auth.JWTService, log logger.Logger) *LocalProvider {
	return &LocalProvider{users: users, jwtSvc: jwtSvc, logger: log}
}

func (p *LocalProvider) SignUp(ctx context.Context, in service.SignUpInput) (*user.User, error) {
	hash, err := auth.HashPassword(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	u := &user.User{
		ID:           uuid.NewString(),
		Email:        strings.ToLower(strings.TrimSpace(in.Email)),
		Name:         in.Name,
		PasswordHash: hash,
		CreatedAt:    time.Now().UTC(),
	}
	if err := p.users.Create(ctx, u); err != nil {
		return nil, err
	}

	p.logger.Info("User created", zap.String("user_id", u.ID))
	return u, nil
}

func (p *LocalProvider) SignIn(ctx context.Context, email, password string) (*service.Session, error) {
	u, err := p.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return nil, service.ErrInvalidCredentials
		}
		return nil, err
	}
	if !auth.CheckPasswordHash(password, u.PasswordHash) {
		return nil, service.ErrInvalidCredentials
	}

	token, expiresAt, err := p.jwtSvc.GenerateToken(u.ID, u.Email, u.Name)
	if err != nil {
		p.logger.Error("Failed to generate token", err, zap.String("user_id", u.ID))
		return nil, err
	}
	return &service.Session{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresAt:   expiresAt,
		User:        u.Public(),
	}, nil
}

func (p *LocalProvider) ValidateToken(_ context.Context, token string) (*user.User, error) {
	claims, err := p.jwtSvc.ValidateToken(token)
	if err != nil {
		return nil, err
	}
	return &user.User{ID: claims.UserID, Email: claims.Email, Name: claims.Name}, nil
}

func (p *LocalProvider) AuthorizeURL(string, string) (string, error) {
	return "", ErrOAuthUnsupported
}
