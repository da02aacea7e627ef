package share

import (
	"context"
	"errors"
	"time"
)

var ErrShareNotFound = errors.New("share not found")

// Record is the public index entry that maps a share id back to its document.
type Record struct {
	CVID     string    `json:"cvId"`
	UserID   string    `json:"userId"`
	SharedAt time.Time `json:"sharedAt"`
}

type Repository interface {
	Save(ctx context.Context, shareID string, rec *Record) error
	FindByID(ctx context.Context, shareID string) (*Record, error)
	Delete(ctx context.Context, shareID string) error
}
