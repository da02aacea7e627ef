package auth

import (
	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/pkg/apperror"
)

// OAuthURLUseCase resolves where a browser should go to start a provider login.
type OAuthURLUseCase struct {
	identity service.IdentityProvider
}

func NewOAuthURLUseCase(identity service.IdentityProvider) *OAuthURLUseCase {
	return &OAuthURLUseCase{identity: identity}
}

func (uc *OAuthURLUseCase) Execute(provider, redirectTo string) (string, error) {
	if provider == "" {
		return "", apperror.NewInvalidInput("provider is required", nil)
	}
	url, err := uc.identity.AuthorizeURL(provider, redirectTo)
	if err != nil {
		return "", apperror.NewInvalidInput(err.Error(), err)
	}
	return url, nil
}
