package analytics

import (
	"context"
	"time"
)

// ViewEvent is emitted each time a shared document is served.
type ViewEvent struct {
	ShareID  string    `json:"shareId"`
	CVID     string    `json:"cvId"`
	UserID   string    `json:"userId"`
	Views    int64     `json:"views"`
	ViewedAt time.Time `json:"viewedAt"`
}

// Counters groups the per-share and per-document counters kept next to the documents.
type Counters interface {
	IncrementViews(ctx context.Context, shareID string) (int64, error)
	Views(ctx context.Context, shareID string) (int64, error)
	DeleteViews(ctx context.Context, shareID string) error
	Downloads(ctx context.Context, cvID string) (int64, error)
	SetLastViewed(ctx context.Context, cvID string, at time.Time) error
	LastViewed(ctx context.Context, cvID string) (*time.Time, error)
}
