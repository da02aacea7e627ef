package cv

import (
	"context"
	"sort"

	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type ListCVsUseCase struct {
	cvRepo cv.Repository
	logger logger.Logger
}

func NewListCVsUseCase(repo cv.Repository, log logger.Logger) *ListCVsUseCase {
	return &ListCVsUseCase{cvRepo: repo, logger: log}
}

type ListCVsInput struct {
	OwnerID string
}

type ListCVsOutput struct {
	CVs []*cv.Document
}

func (uc *ListCVsUseCase) Execute(ctx context.Context, input ListCVsInput) (*ListCVsOutput, error) {
	ctx, span := tracer.Start(ctx, "ListCVs")
	defer span.End()
	span.SetAttributes(attribute.String("user_id", input.OwnerID))

	docs, err := uc.cvRepo.ListByOwner(ctx, input.OwnerID)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to fetch CVs", err)
	}

	sort.SliceStable(docs, func(i, j int) bool {
		if docs[i].UpdatedAt.Equal(docs[j].UpdatedAt) {
			return docs[i].ID < docs[j].ID
		}
		return docs[i].UpdatedAt.After(docs[j].UpdatedAt)
	})

	span.SetAttributes(attribute.Int("cv_count", len(docs)))
	return &ListCVsOutput{CVs: docs}, nil
}
