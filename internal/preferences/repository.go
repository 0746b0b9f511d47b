package preferences

import (
	"context"
	"errors"
	"sync"
)

// ErrNotFound is returned when a session has no stored preferences.
var ErrNotFound = errors.New("preferences not found")

// Repository persists preferences per session.
type Repository interface {
	// Get returns the stored preferences or ErrNotFound.
	Get(ctx context.Context, sessionID string) (*Preferences, error)

	// Save creates or replaces the preferences of p.SessionID.
	Save(ctx context.Context, p *Preferences) error

	// Delete removes a session's preferences. Unknown sessions are not an error.
	Delete(ctx context.Context, sessionID string) error
}

// InMemoryRepository keeps preferences in a map. Used when no database is
// configured and in tests.
type InMemoryRepository struct {
	mu    sync.RWMutex
	prefs map[string]*Preferences
}

// NewInMemoryRepository creates an empty in-memory repository.
func NewInMemoryRepository() *InMemoryRepository {
	return &InMemoryRepository{prefs: make(map[string]*Preferences)}
}

// Get returns a copy of the stored preferences.
func (r *InMemoryRepository) Get(_ context.Context, sessionID string) (*Preferences, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	p, ok := r.prefs[sessionID]
	if !ok {
		return nil, ErrNotFound
	}
	return p.Clone(), nil
}

// Save stores a copy of p.
func (r *InMemoryRepository) Save(_ context.Context, p *Preferences) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.prefs[p.SessionID] = p.Clone()
	return nil
}

// Delete removes the session's preferences.
func (r *InMemoryRepository) Delete(_ context.Context, sessionID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.prefs, sessionID)
	return nil
}
