package auth

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type SignInUseCase struct {
	identity service.IdentityProvider
	logger   logger.Logger
}

func NewSignInUseCase(identity service.IdentityProvider, log logger.Logger) *SignInUseCase {
	return &SignInUseCase{identity: identity, logger: log}
}

type SignInInput struct {
	Email    string
	Password string
}

type SignInOutput struct {
	Session *service.Session
}

func (uc *SignInUseCase) Execute(ctx context.Context, input SignInInput) (*SignInOutput, error) {
	ctx, span := tracer.Start(ctx, "SignIn")
	defer span.End()

	email := strings.TrimSpace(input.Email)
	if email == "" || input.Password == "" {
		return nil, apperror.NewInvalidInput("email and password are required", nil)
	}

	sess, err := uc.identity.SignIn(ctx, email, input.Password)
	if err != nil {
		span.RecordError(err)
		var appErr *apperror.AppError
		switch {
		case errors.Is(err, service.ErrInvalidCredentials):
			return nil, apperror.NewUnauthorized("email or password is incorrect", err)
		case errors.As(err, &appErr):
			return nil, err
		}
		uc.logger.Error("Sign in failed", err, zap.String("email", email))
		return nil, apperror.NewInternal("failed to sign in", err)
	}

	sess.User = sess.User.Public()
	span.SetAttributes(attribute.String("user_id", sess.User.ID))
	return &SignInOutput{Session: sess}, nil
}
