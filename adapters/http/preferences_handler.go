package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	prefsUC "github.com/khoahotran/cvnova/internal/application/usecase/preferences"
	"github.com/khoahotran/cvnova/internal/domain/preferences"
	"github.com/khoahotran/cvnova/pkg/apperror"
)

type PreferencesHandler struct {
	useCase *prefsUC.PreferencesUseCase
}

func NewPreferencesHandler(uc *prefsUC.PreferencesUseCase) *PreferencesHandler {
	return &PreferencesHandler{useCase: uc}
}

func (h *PreferencesHandler) Get(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}

	prefs, err := h.useCase.Get(c.Request.Context(), userID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"preferences": prefs})
}

func (h *PreferencesHandler) Update(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}

	var prefs preferences.Preferences
	if err := c.ShouldBindJSON(&prefs); err != nil {
		c.Error(apperror.NewInvalidInput("preferences must be a JSON object", err))
		return
	}

	saved, err := h.useCase.Set(c.Request.Context(), userID, prefs)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "Preferences updated successfully", "preferences": saved})
}
