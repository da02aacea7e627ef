package share

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/config"
	"github.com/khoahotran/cvnova/internal/domain/analytics"
	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/internal/domain/share"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

var tracer = otel.Tracer("share_usecase")

var nowFunc = func() time.Time { return time.Now().UTC() }

type ShareCVUseCase struct {
	cvRepo        cv.Repository
	shareRepo     share.Repository
	counters      analytics.Counters
	publicBaseURL string
	policy        string
	logger        logger.Logger
}

func NewShareCVUseCase(
	cvRepo cv.Repository,
	shareRepo share.Repository,
	counters analytics.Counters,
	publicBaseURL, resharePolicy string,
	log logger.Logger,
) *ShareCVUseCase {
	if resharePolicy == "" {
		resharePolicy = config.ResharePolicyInvalidate
	}
	return &ShareCVUseCase{
		cvRepo:        cvRepo,
		shareRepo:     shareRepo,
		counters:      counters,
		publicBaseURL: publicBaseURL,
		policy:        resharePolicy,
		logger:        log,
	}
}

type ShareCVInput struct {
	OwnerID string
	CVID    string
}

type ShareCVOutput struct {
	ShareID  string
	ShareURL string
}

func (uc *ShareCVUseCase) Execute(ctx context.Context, input ShareCVInput) (*ShareCVOutput, error) {
	ctx, span := tracer.Start(ctx, "ShareCV")
	defer span.End()
	span.SetAttributes(attribute.String("cv_id", input.CVID), attribute.String("reshare_policy", uc.policy))

	doc, err := uc.cvRepo.FindByID(ctx, input.OwnerID, input.CVID)
	if err != nil {
		span.RecordError(err)
		if errors.Is(err, cv.ErrCVNotFound) {
			return nil, apperror.NewNotFound("CV", input.CVID)
		}
		return nil, apperror.NewInternal("failed to load CV", err)
	}

	now := nowFunc()
	shareID := uuid.NewString()
	previous := doc.ShareID

	// The record goes first so a saved document never points at a missing share.
	rec := &share.Record{CVID: doc.ID, UserID: doc.UserID, SharedAt: now}
	if err := uc.shareRepo.Save(ctx, shareID, rec); err != nil {
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to share CV", err)
	}

	if previous != "" && uc.policy == config.ResharePolicyKeep {
		doc.PreviousShareIDs = append(doc.PreviousShareIDs, previous)
	}
	doc.ShareID = shareID
	doc.SharedAt = &now
	doc.IsPublic = true

	if err := uc.cvRepo.Save(ctx, doc); err != nil {
		span.RecordError(err)
		if delErr := uc.shareRepo.Delete(ctx, shareID); delErr != nil {
			uc.logger.Warn("Failed to roll back share record", zap.String("share_id", shareID), zap.Error(delErr))
		}
		return nil, apperror.NewInternal("failed to share CV", err)
	}

	if previous != "" && uc.policy == config.ResharePolicyInvalidate {
		uc.invalidate(ctx, previous)
	}

	span.SetAttributes(attribute.String("share_id", shareID))
	return &ShareCVOutput{
		ShareID:  shareID,
		ShareURL: uc.publicBaseURL + "/shared/" + shareID,
	}, nil
}

// invalidate removes the old link. The document no longer references it, so a
// leftover record already resolves to 404.
func (uc *ShareCVUseCase) invalidate(ctx context.Context, shareID string) {
	if err := uc.shareRepo.Delete(ctx, shareID); err != nil {
		uc.logger.Warn("Failed to delete previous share record", zap.String("share_id", shareID), zap.Error(err))
	}
	if err := uc.counters.DeleteViews(ctx, shareID); err != nil {
		uc.logger.Warn("Failed to delete previous view counter", zap.String("share_id", shareID), zap.Error(err))
	}
}
