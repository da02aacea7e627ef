package analytics

import (
	"context"
	"fmt"

	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/domain/analytics"
	"github.com/khoahotran/cvnova/pkg/logger"
)

// RecordViewUseCase consumes view events and keeps cv_last_viewed current.
type RecordViewUseCase struct {
	counters analytics.Counters
	logger   logger.Logger
}

func NewRecordViewUseCase(counters analytics.Counters, log logger.Logger) *RecordViewUseCase {
	return &RecordViewUseCase{counters: counters, logger: log}
}

func (uc *RecordViewUseCase) Execute(ctx context.Context, evt analytics.ViewEvent) error {
	ctx, span := tracer.Start(ctx, "RecordView")
	defer span.End()
	span.SetAttributes(attribute.String("cv_id", evt.CVID), attribute.String("share_id", evt.ShareID))

	if evt.CVID == "" {
		return fmt.Errorf("view event for share %q has no cv id", evt.ShareID)
	}

	// Events can arrive out of order from the broker.
	current, err := uc.counters.LastViewed(ctx, evt.CVID)
	if err != nil {
		span.RecordError(err)
		return fmt.Errorf("read last viewed: %w", err)
	}
	if current != nil && !evt.ViewedAt.After(*current) {
		return nil
	}

	if err := uc.counters.SetLastViewed(ctx, evt.CVID, evt.ViewedAt); err != nil {
		span.RecordError(err)
		return fmt.Errorf("write last viewed: %w", err)
	}
	uc.logger.Debug("Recorded view", zap.String("cv_id", evt.CVID), zap.Int64("views", evt.Views))
	return nil
}
