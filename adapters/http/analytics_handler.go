package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	analyticsUC "github.com/khoahotran/cvnova/internal/application/usecase/analytics"
	"github.com/khoahotran/cvnova/pkg/apperror"
)

type AnalyticsHandler struct {
	useCase *analyticsUC.GetAnalyticsUseCase
}

func NewAnalyticsHandler(uc *analyticsUC.GetAnalyticsUseCase) *AnalyticsHandler {
	return &AnalyticsHandler{useCase: uc}
}

func (h *AnalyticsHandler) Get(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}

	out, err := h.useCase.Execute(c.Request.Context(), analyticsUC.GetAnalyticsInput{OwnerID: userID, CVID: c.Param("cvId")})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, AnalyticsDTO{
		Views:      out.Views,
		Downloads:  out.Downloads,
		LastViewed: out.LastViewed,
		CreatedAt:  out.CreatedAt,
		UpdatedAt:  out.UpdatedAt,
	})
}
