package cv

import (
	"context"

	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type DeleteCVUseCase struct {
	cvRepo cv.Repository
	logger logger.Logger
}

func NewDeleteCVUseCase(repo cv.Repository, log logger.Logger) *DeleteCVUseCase {
	return &DeleteCVUseCase{cvRepo: repo, logger: log}
}

type DeleteCVInput struct {
	OwnerID string
	CVID    string
}

// Execute deletes unconditionally. Share records pointing at the document are left
// in place; they stop resolving once the document is gone.
func (uc *DeleteCVUseCase) Execute(ctx context.Context, input DeleteCVInput) error {
	ctx, span := tracer.Start(ctx, "DeleteCV")
	defer span.End()
	span.SetAttributes(attribute.String("cv_id", input.CVID))

	if err := uc.cvRepo.Delete(ctx, input.OwnerID, input.CVID); err != nil {
		span.RecordError(err)
		return apperror.NewInternal("failed to delete CV", err)
	}
	return nil
}
