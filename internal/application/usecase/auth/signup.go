package auth

import (
	"context"
	"errors"
	"strings"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/user"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

var tracer = otel.Tracer("auth_usecase")

const minPasswordLength = 6

type SignUpUseCase struct {
	identity service.IdentityProvider
	logger   logger.Logger
}

func NewSignUpUseCase(identity service.IdentityProvider, log logger.Logger) *SignUpUseCase {
	return &SignUpUseCase{identity: identity, logger: log}
}

type SignUpInput struct {
	Email    string
	Password string
	Name     string
}

type SignUpOutput struct {
	User user.User
}

func (uc *SignUpUseCase) Execute(ctx context.Context, input SignUpInput) (*SignUpOutput, error) {
	ctx, span := tracer.Start(ctx, "SignUp")
	defer span.End()

	input.Email = strings.TrimSpace(input.Email)
	input.Name = strings.TrimSpace(input.Name)
	if input.Email == "" || input.Password == "" {
		return nil, apperror.NewInvalidInput("email and password are required", nil)
	}
	if len(input.Password) < minPasswordLength {
		return nil, apperror.NewInvalidInput("password must be at least 6 characters", nil)
	}

	u, err := uc.identity.SignUp(ctx, service.SignUpInput(input))
	if err != nil {
		span.RecordError(err)
		return nil, uc.translate(err)
	}

	span.SetAttributes(attribute.String("user_id", u.ID))
	return &SignUpOutput{User: u.Public()}, nil
}

func (uc *SignUpUseCase) translate(err error) error {
	var appErr *apperror.AppError
	switch {
	case errors.As(err, &appErr):
		return err
	case errors.Is(err, user.ErrEmailTaken):
		return apperror.NewInvalidInput("A user with this email address has already been registered", err)
	default:
		uc.logger.Error("Signup failed", err)
		return apperror.NewInternal("internal server error during signup", err)
	}
}
