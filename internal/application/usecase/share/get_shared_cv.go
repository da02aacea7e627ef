package share

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/application/service"
	"github.com/khoahotran/cvnova/internal/domain/analytics"
	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/internal/domain/share"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

type GetSharedCVUseCase struct {
	cvRepo    cv.Repository
	shareRepo share.Repository
	counters  analytics.Counters
	publisher service.ViewEventPublisher
	logger    logger.Logger
}

func NewGetSharedCVUseCase(
	cvRepo cv.Repository,
	shareRepo share.Repository,
	counters analytics.Counters,
	publisher service.ViewEventPublisher,
	log logger.Logger,
) *GetSharedCVUseCase {
	return &GetSharedCVUseCase{
		cvRepo:    cvRepo,
		shareRepo: shareRepo,
		counters:  counters,
		publisher: publisher,
		logger:    log,
	}
}

type GetSharedCVInput struct {
	ShareID string
}

type GetSharedCVOutput struct {
	CV    *cv.Document
	Views int64
}

func (uc *GetSharedCVUseCase) Execute(ctx context.Context, input GetSharedCVInput) (*GetSharedCVOutput, error) {
	ctx, span := tracer.Start(ctx, "GetSharedCV")
	defer span.End()
	span.SetAttributes(attribute.String("share_id", input.ShareID))

	rec, err := uc.shareRepo.FindByID(ctx, input.ShareID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, share.ErrShareNotFound) {
			return nil, apperror.NewNotFound("Shared CV", input.ShareID)
		}
		return nil, apperror.NewInternal("failed to fetch shared CV", err)
	}

	doc, err := uc.cvRepo.FindByID(ctx, rec.UserID, rec.CVID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, cv.ErrCVNotFound) {
			return nil, apperror.NewNotFound("Shared CV", input.ShareID)
		}
		return nil, apperror.NewInternal("failed to fetch shared CV", err)
	}
	if !doc.IsPublic || !doc.ReferencesShare(input.ShareID) {
		return nil, apperror.NewNotFound("Shared CV", input.ShareID)
	}

	views, err := uc.counters.IncrementViews(ctx, input.ShareID)
	if err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to count view", err)
	}

	evt := analytics.ViewEvent{
		ShareID:  input.ShareID,
		CVID:     doc.ID,
		UserID:   doc.UserID,
		Views:    views,
		ViewedAt: nowFunc(),
	}
	go func() {
		if err := uc.publisher.PublishView(context.Background(), evt); err != nil {
			uc.logger.Warn("Failed to publish view event", zap.String("share_id", evt.ShareID), zap.Error(err))
		}
	}()

	span.SetAttributes(attribute.Int64("views", views))
	return &GetSharedCVOutput{CV: doc, Views: views}, nil
}
