// Package store persists reconstructed survey photos.
//
// Photos are keyed by their custom_id (the photo file name). Saving a photo
// whose key already exists replaces the stored record, so re-importing an
// export is idempotent.
package store

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/JonMunkholm/signsurvey/internal/config"
	"github.com/JonMunkholm/signsurvey/internal/survey"
)

var (
	// ErrMissingKey is returned when a photo has no custom_id to store it under.
	ErrMissingKey = errors.New("photo has no custom_id")

	// ErrNotFound is returned by GetPhoto for an unknown key.
	ErrNotFound = errors.New("photo not found")
)

// Persister accepts one reconstructed photo at a time. Implementations must
// be safe for concurrent use with distinct keys.
type Persister interface {
	SavePhoto(ctx context.Context, photo survey.Photo) error
}

// Store is a Persister that can also read photos back.
type Store interface {
	Persister
	GetPhoto(ctx context.Context, customID string) (survey.Photo, error)
	Ping(ctx context.Context) error
	Close()
}

// Open returns the store selected by cfg.Store.Driver.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch strings.ToLower(cfg.Store.Driver) {
	case config.DriverMemory:
		return NewMemory(), nil
	case config.DriverPostgres:
		return NewPostgres(ctx, cfg.Database)
	default:
		return nil, fmt.Errorf("unknown store driver %q", cfg.Store.Driver)
	}
}

func keyOf(photo survey.Photo) (string, error) {
	key := strings.TrimSpace(photo.CustomID)
	if key == "" {
		return "", ErrMissingKey
	}
	return key, nil
}
