package cv

import (
	"errors"
	"strings"
	"time"

	"go.opentelemetry.io/otel"

	"github.com/khoahotran/cvnova/internal/domain/cv"
	"github.com/khoahotran/cvnova/pkg/apperror"
)

var tracer = otel.Tracer("cv_usecase")

var nowFunc = func() time.Time { return time.Now().UTC() }

func notFoundOr(err error, id string) error {
	if errors.Is(err, cv.ErrCVNotFound) {
		return apperror.NewNotFound("CV", id)
	}
	return apperror.NewInternal("failed to load CV", err)
}

// prepare strips server-owned fields and enforces the unknown-field policy.
func prepare(payload cv.Patch, allowUnknown bool) (cv.Patch, error) {
	patch := payload.WithoutServerFields()
	if !allowUnknown {
		if unknown := patch.UnknownFields(); len(unknown) > 0 {
			return nil, apperror.NewInvalidInput("unknown fields: "+strings.Join(unknown, ", "), nil)
		}
	}
	return patch, nil
}
