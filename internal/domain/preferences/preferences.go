package preferences

import (
	"context"
	"errors"
)

var ErrPreferencesNotFound = errors.New("preferences not found")

// Preferences is a free-form settings object. Writes replace it entirely.
type Preferences map[string]any

func Default() Preferences {
	return Preferences{
		"theme":           "light",
		"defaultTemplate": "modern",
		"language":        "fr",
	}
}

type Repository interface {
	Get(ctx context.Context, userID string) (Preferences, error)
	Save(ctx context.Context, userID string, prefs Preferences) error
}
