package http

import (
	"net/http"

	"github.com/gin-gonic/gin"

	cvUC "github.com/khoahotran/cvnova/internal/application/usecase/cv"
	shareUC "github.com/khoahotran/cvnova/internal/application/usecase/share"
	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type CVHandler struct {
	listUseCase   *cvUC.ListCVsUseCase
	createUseCase *cvUC.CreateCVUseCase
	updateUseCase *cvUC.UpdateCVUseCase
	deleteUseCase *cvUC.DeleteCVUseCase
	shareUseCase  *shareUC.ShareCVUseCase
	logger        logger.Logger
}

func NewCVHandler(
	listUC *cvUC.ListCVsUseCase,
	createUC *cvUC.CreateCVUseCase,
	updateUC *cvUC.UpdateCVUseCase,
	deleteUC *cvUC.DeleteCVUseCase,
	shareCVUC *shareUC.ShareCVUseCase,
	log logger.Logger,
) *CVHandler {
	return &CVHandler{
		listUseCase:   listUC,
		createUseCase: createUC,
		updateUseCase: updateUC,
		deleteUseCase: deleteUC,
		shareUseCase:  shareCVUC,
		logger:        log,
	}
}

func (h *CVHandler) List(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}

	out, err := h.listUseCase.Execute(c.Request.Context(), cvUC.ListCVsInput{OwnerID: userID})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"cvs": out.CVs})
}

func (h *CVHandler) Create(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}

	patch, err := readPatch(c)
	if err != nil {
		c.Error(err)
		return
	}

	out, err := h.createUseCase.Execute(c.Request.Context(), cvUC.CreateCVInput{OwnerID: userID, Payload: patch})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "CV created successfully", "cv": out.CV})
}

func (h *CVHandler) Update(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}

	patch, err := readPatch(c)
	if err != nil {
		c.Error(err)
		return
	}

	out, err := h.updateUseCase.Execute(c.Request.Context(), cvUC.UpdateCVInput{
		OwnerID: userID,
		CVID:    c.Param("id"),
		Payload: patch,
	})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "CV updated successfully", "cv": out.CV})
}

func (h *CVHandler) Delete(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}

	if err := h.deleteUseCase.Execute(c.Request.Context(), cvUC.DeleteCVInput{OwnerID: userID, CVID: c.Param("id")}); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "CV deleted successfully"})
}

func (h *CVHandler) Share(c *gin.Context) {
	userID, ok := GetUserIDFromGinContext(c)
	if !ok {
		c.Error(apperror.NewUnauthorized("no user in request context", nil))
		return
	}

	out, err := h.shareUseCase.Execute(c.Request.Context(), shareUC.ShareCVInput{OwnerID: userID, CVID: c.Param("id")})
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{
		"message":  "CV shared successfully",
		"shareUrl": out.ShareURL,
		"shareId":  out.ShareID,
	})
}

func readPatch(c *gin.Context) (cv.Patch, error) {
	body, err := c.GetRawData()
	if err != nil {
		return nil, apperror.NewInvalidInput("cannot read request body", err)
	}
	patch, err := cv.ParsePatch(body)
	if err != nil {
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	return patch, nil
}
