package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/khoahotran/cvnova/internal/application/usecase/auth"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type AuthHandler struct {
	signUpUseCase   *auth.SignUpUseCase
	signInUseCase   *auth.SignInUseCase
	oauthURLUseCase *auth.OAuthURLUseCase
	logger          logger.Logger
}

func NewAuthHandler(signUpUC *auth.SignUpUseCase, signInUC *auth.SignInUseCase, oauthUC *auth.OAuthURLUseCase, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		signUpUseCase:   signUpUC,
		signInUseCase:   signInUC,
		oauthURLUseCase: oauthUC,
		logger:          log,
	}
}

func (h *AuthHandler) SignUp(c *gin.Context) {
	var req SignUpRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	out, err := h.signUpUseCase.Execute(c.Request.Context(), auth.SignUpInput{
		Email:    req.Email,
		Password: req.Password,
		Name:     req.Name,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"message": "User created successfully",
		"user":    ToUserDTO(out.User),
	})
}

func (h *AuthHandler) SignIn(c *gin.Context) {
	var req SignInRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.Error(apperror.NewInvalidInput(err.Error(), err))
		return
	}

	out, err := h.signInUseCase.Execute(c.Request.Context(), auth.SignInInput{
		Email:    req.Email,
		Password: req.Password,
	})
	if err != nil {
		c.Error(err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"session": ToSessionDTO(out.Session)})
}

func (h *AuthHandler) Session(c *gin.Context) {
	u, ok := GetUserFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": ToUserDTO(*u)})
}

func (h *AuthHandler) OAuth(c *gin.Context) {
	url, err := h.oauthURLUseCase.Execute(c.Param("provider"), c.Query("redirect_to"))
	if err != nil {
		c.Error(err)
		return
	}
	c.Redirect(http.StatusFound, url)
}
