package preferences

import (
	"context"
	"errors"

	"go.opentelemetry.io/otel"
	"go.uber.org/zap"

	"github.com/khoahotran/cvnova/internal/domain/preferences"
	"github.com/khoahotran/cvnova/pkg/apperror"
	"github.com/khoahotran/cvnova/pkg/logger"
)

var tracer = otel.Tracer("preferences_usecase")

type PreferencesUseCase struct {
	repo   preferences.Repository
	logger logger.Logger
}

func NewPreferencesUseCase(repo preferences.Repository, log logger.Logger) *PreferencesUseCase {
	return &PreferencesUseCase{repo: repo, logger: log}
}

// Get returns the stored preferences, or the defaults when none were saved.
func (uc *PreferencesUseCase) Get(ctx context.Context, userID string) (preferences.Preferences, error) {
	ctx, span := tracer.Start(ctx, "GetPreferences")
	defer span.End()

	prefs, err := uc.repo.Get(ctx, userID)
	if err != nil {
		if errors.Is(err, preferences.ErrPreferencesNotFound) {
			return preferences.Default(), nil
		}
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to fetch preferences", err)
	}
	return prefs, nil
}

// Set replaces the whole preferences object.
func (uc *PreferencesUseCase) Set(ctx context.Context, userID string, prefs preferences.Preferences) (preferences.Preferences, error) {
	ctx, span := tracer.Start(ctx, "SetPreferences")
	defer span.End()

	if prefs == nil {
		return nil, apperror.NewInvalidInput("preferences must be a JSON object", nil)
	}
	if err := uc.repo.Save(ctx, userID, prefs); err != nil {
		uc.logger.Error("Failed to save preferences", err, zap.String("user_id", userID))
		span.RecordError(err)
		return nil, apperror.NewInternal("failed to update preferences", err)
	}
	return prefs, nil
}
