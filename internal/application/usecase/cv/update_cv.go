package cv

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type UpdateCVUseCase struct {
	cvRepo       cv.Repository
	allowUnknown bool
	logger       logger.Logger
}

func NewUpdateCVUseCase(repo cv.Repository, allowUnknownFields bool, log logger.Logger) *UpdateCVUseCase {
	return &UpdateCVUseCase{cvRepo: repo, allowUnknown: allowUnknownFields, logger: log}
}

type UpdateCVInput struct {
	OwnerID string
	CVID    string
	Payload cv.Patch
}

type UpdateCVOutput struct {
	CV *cv.Document
}

func (uc *UpdateCVUseCase) Execute(ctx context.Context, input UpdateCVInput) (*UpdateCVOutput, error) {
	ctx, span := tracer.Start(ctx, "UpdateCV")
	defer span.End()
	span.SetAttributes(attribute.String("cv_id", input.CVID))

	existing, err := uc.cvRepo.FindByID(ctx, input.OwnerID, input.CVID)
	if err != nil {
		span.RecordError(err)
		return nil, notFoundOr(err, input.CVID)
	}

	patch, err := prepare(input.Payload, uc.allowUnknown)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	updated, err := cv.Merge(*existing, patch)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	if err := updated.Normalize(); err != nil {
		span.RecordError(err)
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}
	// a blank or null status keeps the stored one
	if updated.Status == "" {
		updated.Status = existing.Status
		if updated.Status == "" {
			updated.Status = cv.StatusDraft
		}
	}

	// updatedAt never moves backwards, even if the clock does.
	now := nowFunc()
	if now.Before(existing.UpdatedAt) {
		now = existing.UpdatedAt
	}
	updated.UpdatedAt = now

	if err := uc.cvRepo.Save(ctx, &updated); err != nil {
		uc.logger.Error("Failed to save CV", err, zap.String("cv_id", input.CVID))
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to update CV", err)
	}

	return &UpdateCVOutput{CV: &updated}, nil
}
