package service

import (
	"context"

	"github.com/khoahotran/cvnova/internal/domain/analytics"
)

type ViewEventPublisher interface {
	PublishView(ctx context.Context, evt analytics.ViewEvent) error
}
