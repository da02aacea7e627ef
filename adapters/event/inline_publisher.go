package event

import (
	"context"

	"github.com/khoahotran/cvnova/internal/domain/analytics"
)

// ViewRecorder is satisfied by the record-view use case.
type ViewRecorder interface {
	Execute(ctx context.Context, evt analytics.ViewEvent) error
}

// InlinePublisher hands view events straight to the recorder when no broker is configured.
type InlinePublisher struct {
	recorder ViewRecorder
}

func NewInlinePublisher(recorder ViewRecorder) *InlinePublisher {
	return &InlinePublisher{recorder: recorder}
}

func (p *InlinePublisher) PublishView(ctx context.Context, evt analytics.ViewEvent) error {
	return p.recorder.Execute(ctx, evt)
}
