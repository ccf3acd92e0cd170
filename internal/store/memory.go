package store

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/JonMunkholm/signsurvey/internal/survey"
)

// Memory is an in-process Store for development and tests.
type Memory struct {
	mu     sync.RWMutex
	photos map[string][]byte
}

// NewMemory returns an empty Memory store.
func NewMemory() *Memory {
	return &Memory{photos: make(map[string][]byte)}
}

// SavePhoto stores a copy of photo under its custom_id.
func (m *Memory) SavePhoto(ctx context.Context, photo survey.Photo) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	key, err := keyOf(photo)
	if err != nil {
		return err
	}

	// Stored encoded so callers cannot mutate the record through shared slices.
	data, err := json.Marshal(photo)
	if err != nil {
		return fmt.Errorf("encode photo %s: %w", key, err)
	}

	m.mu.Lock()
	m.photos[key] = data
	m.mu.Unlock()
	return nil
}

// GetPhoto returns the photo stored under customID.
func (m *Memory) GetPhoto(ctx context.Context, customID string) (survey.Photo, error) {
	m.mu.RLock()
	data, ok := m.photos[customID]
	m.mu.RUnlock()
	if !ok {
		return survey.Photo{}, fmt.Errorf("%w: %s", ErrNotFound, customID)
	}

	var photo survey.Photo
	if err := json.Unmarshal(data, &photo); err != nil {
		return survey.Photo{}, fmt.Errorf("decode photo %s: %w", customID, err)
	}
	return photo, nil
}

// Len returns the number of stored photos.
func (m *Memory) Len() int {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return len(m.photos)
}

func (m *Memory) Ping(ctx context.Context) error { return ctx.Err() }

func (m *Memory) Close() {}
