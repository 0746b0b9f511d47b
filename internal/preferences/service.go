package preferences

import (
	"context"
	"errors"
	"time"

	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/geocode"
)

// Service loads, mutates and saves preferences.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService creates a preferences service.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Load returns a session's preferences, or the defaults when none are
// stored yet.
func (s *Service) Load(ctx context.Context, sessionID string) (*Preferences, error) {
	p, err := s.repo.Get(ctx, sessionID)
	if errors.Is(err, ErrNotFound) {
		return Default(sessionID), nil
	}
	return p, err
}

// Update loads the session's preferences, applies fn and saves the result.
// Nothing is saved if fn fails.
func (s *Service) Update(ctx context.Context, sessionID string, fn func(*Preferences) error) (*Preferences, error) {
	p, err := s.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	if err := fn(p); err != nil {
		return nil, err
	}
	p.UpdatedAt = s.now().UTC()
	if err := s.repo.Save(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

// ToggleUnits flips the session's units.
func (s *Service) ToggleUnits(ctx context.Context, sessionID string) (*Preferences, error) {
	return s.Update(ctx, sessionID, func(p *Preferences) error {
		p.ToggleUnits()
		return nil
	})
}

// SelectCity selects city, or resets to the default location when nil.
func (s *Service) SelectCity(ctx context.Context, sessionID string, city *geocode.City) (*Preferences, error) {
	return s.Update(ctx, sessionID, func(p *Preferences) error {
		return p.SelectCity(city)
	})
}

// Replace overwrites units and history. A nil history keeps the current one.
func (s *Service) Replace(ctx context.Context, sessionID string, units dashboard.Units, history []geocode.City) (*Preferences, error) {
	return s.Update(ctx, sessionID, func(p *Preferences) error {
		p.Units = units
		if history != nil {
			p.SetHistory(history)
		}
		return nil
	})
}

// Reset deletes stored preferences.
func (s *Service) Reset(ctx context.Context, sessionID string) error {
	return s.repo.Delete(ctx, sessionID)
}
