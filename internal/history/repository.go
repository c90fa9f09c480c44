// Package history keeps the per-session chat transcript.
package history

import (
	"context"
	"sync"

	"edumate/internal/models"
)

// Repository stores ordered transcripts keyed by session id.
type Repository interface {
	Get(ctx context.Context, sessionID string) ([]models.Message, error)
	Append(ctx context.Context, sessionID string, msgs ...models.Message) error
	Clear(ctx context.Context, sessionID string) error
	Len(ctx context.Context, sessionID string) (int, error)
}

// MemoryRepository keeps transcripts in process memory.
type MemoryRepository struct {
	mu       sync.RWMutex
	sessions map[string][]models.Message
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{sessions: make(map[string][]models.Message)}
}

func (r *MemoryRepository) Get(_ context.Context, sessionID string) ([]models.Message, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	msgs := r.sessions[sessionID]
	out := make([]models.Message, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (r *MemoryRepository) Append(_ context.Context, sessionID string, msgs ...models.Message) error {
	if len(msgs) == 0 {
		return nil
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.sessions[sessionID] = append(r.sessions[sessionID], msgs...)
	return nil
}

func (r *MemoryRepository) Clear(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, sessionID)
	return nil
}

func (r *MemoryRepository) Len(_ context.Context, sessionID string) (int, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions[sessionID]), nil
}
