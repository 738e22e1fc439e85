package repository

import (
	"context"
	"sync"
	"time"

	"bookingrisk/internal/models"
)

// MemoryFormStateRepository is the in-process store used when Redis is not
// configured or unreachable. Entries expire after ttl; ttl <= 0 keeps them
// for the life of the process.
type MemoryFormStateRepository struct {
	states sync.Map

	mu         sync.Mutex
	rateLimits map[string]*rateLimitEntry

	ttl time.Duration
	now func() time.Time
}

type stateEntry struct {
	state     models.FormState
	expiresAt time.Time
}

type rateLimitEntry struct {
	count     int
	expiresAt time.Time
}

func NewMemoryFormStateRepository(ttl time.Duration) *MemoryFormStateRepository {
	return &MemoryFormStateRepository{
		rateLimits: make(map[string]*rateLimitEntry),
		ttl:        ttl,
		now:        time.Now,
	}
}

func (r *MemoryFormStateRepository) GetState(_ context.Context, sessionID string) (*models.FormState, error) {
	val, ok := r.states.Load(sessionID)
	if !ok {
		return nil, nil
	}
	entry := val.(stateEntry)
	if !entry.expiresAt.IsZero() && r.now().After(entry.expiresAt) {
		r.states.CompareAndDelete(sessionID, val)
		return nil, nil
	}
	state := entry.state
	return &state, nil
}

func (r *MemoryFormStateRepository) SetState(_ context.Context, state *models.FormState) error {
	entry := stateEntry{state: *state}
	if r.ttl > 0 {
		entry.expiresAt = r.now().Add(r.ttl)
	}
	r.states.Store(state.SessionID, entry)
	return nil
}

func (r *MemoryFormStateRepository) ClearState(_ context.Context, sessionID string) error {
	r.states.Delete(sessionID)
	return nil
}

func (r *MemoryFormStateRepository) CheckRateLimit(_ context.Context, key string, limit int, window time.Duration) (bool, error) {
	now := r.now()

	r.mu.Lock()
	defer r.mu.Unlock()

	entry, ok := r.rateLimits[key]
	if !ok || now.After(entry.expiresAt) {
		entry = &rateLimitEntry{expiresAt: now.Add(window)}
		r.rateLimits[key] = entry
	}
	entry.count++

	return entry.count <= limit, nil
}
