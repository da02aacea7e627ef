package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	shareUC "github.com/khoahotran/cvnova/internal/application/usecase/share"
)

type SharedHandler struct {
	getUseCase *shareUC.GetSharedCVUseCase
}

func NewSharedHandler(getUC *shareUC.GetSharedCVUseCase) *SharedHandler {
	return &SharedHandler{getUseCase: getUC}
}

func (h *SharedHandler) Get(c *gin.Context) {
	out, err := h.getUseCase.Execute(c.Request.Context(), shareUC.GetSharedCVInput{ShareID: c.Param("shareId")})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cv": ToSharedCVDTO(out.CV, out.Views)})
}
