package cv

import (
	"context"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type CreateCVUseCase struct {
	cvRepo       cv.Repository
	allowUnknown bool
	logger       logger.Logger
}

func NewCreateCVUseCase(repo cv.Repository, allowUnknownFields bool, log logger.Logger) *CreateCVUseCase {
	return &CreateCVUseCase{cvRepo: repo, allowUnknown: allowUnknownFields, logger: log}
}

type CreateCVInput struct {
	OwnerID string
	Payload cv.Patch
}

type CreateCVOutput struct {
	CV *cv.Document
}

func (uc *CreateCVUseCase) Execute(ctx context.Context, input CreateCVInput) (*CreateCVOutput, error) {
	ctx, span := tracer.Start(ctx, "CreateCV")
	defer span.End()

	patch, err := prepare(input.Payload, uc.allowUnknown)
	if err != nil {
		span.RecordError(err)
		return nil, err
	}

	doc, err := cv.Merge(cv.Document{}, patch)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	now := nowFunc()
	doc.ID = uuid.NewString()
	doc.UserID = input.OwnerID
	doc.CreatedAt = now
	doc.UpdatedAt = now
	if doc.Status == "" {
		doc.Status = cv.StatusDraft
	}
	if err := doc.Normalize(); err != nil {
		span.RecordError(err)
		return nil, apperror.NewInvalidInput(err.Error(), err)
	}

	if err := uc.cvRepo.Save(ctx, &doc); err != nil {
		uc.logger.Error("Failed to save new CV", err, zap.String("user_id", input.OwnerID))
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to create CV", err)
	}

	span.SetAttributes(attribute.String("cv_id", doc.ID))
	return &CreateCVOutput{CV: &doc}, nil
}
