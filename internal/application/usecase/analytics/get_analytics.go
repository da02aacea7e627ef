package analytics

import (
	"context"
	"errors"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"github.com/khoahotran/cvnova/internal/domain/analytics"
	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

var tracer = otel.Tracer("analytics_usecase")

type GetAnalyticsUseCase struct {
	cvRepo   cv.Repository
	counters analytics.Counters
	logger   logger.Logger
}

func NewGetAnalyticsUseCase(cvRepo cv.Repository, counters analytics.Counters, log logger.Logger) *GetAnalyticsUseCase {
	return &GetAnalyticsUseCase{cvRepo: cvRepo, counters: counters, logger: log}
}

type GetAnalyticsInput struct {
	OwnerID string
	CVID    string
}

type GetAnalyticsOutput struct {
	Views      int64
	Downloads  int64
	LastViewed *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

func (uc *GetAnalyticsUseCase) Execute(ctx context.Context, input GetAnalyticsInput) (*GetAnalyticsOutput, error) {
	ctx, span := tracer.Start(ctx, "GetAnalytics")
	defer span.End()
	span.SetAttributes(attribute.String("cv_id", input.CVID))

	doc, err := uc.cvRepo.FindByID(ctx, input.OwnerID, input.CVID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, cv.ErrCVNotFound) {
			return nil, apperror.NewNotFound("CV", input.CVID)
		}
		return nil, apperror.NewInternal("failed to fetch analytics", err)
	}

	out := &GetAnalyticsOutput{CreatedAt: doc.CreatedAt, UpdatedAt: doc.UpdatedAt}

	// Retained share ids only exist under the keep policy.
	for _, shareID := range doc.AllShareIDs() {
		n, err := uc.counters.Views(ctx, shareID)
		if err != nil {
			span.RecordError(err)
			return nil, apperror.NewInternal("failed to fetch analytics", err)
		}
		out.Views += n
	}

	if out.Downloads, err = uc.counters.Downloads(ctx, doc.ID); err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to fetch analytics", err)
	}
	if out.LastViewed, err = uc.counters.LastViewed(ctx, doc.ID); err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to fetch analytics", err)
	}
	return out, nil
}
