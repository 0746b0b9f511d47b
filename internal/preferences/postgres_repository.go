package preferences

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/geocode"
)

// Schema creates the preferences table.
const Schema = `
CREATE TABLE IF NOT EXISTS dashboard_preferences (
	session_id        TEXT PRIMARY KEY,
	units             TEXT NOT NULL DEFAULT 'metric',
	latitude          DOUBLE PRECISION NOT NULL,
	longitude         DOUBLE PRECISION NOT NULL,
	locations_history JSONB NOT NULL DEFAULT '[]'::jsonb,
	selected_city     JSONB,
	updated_at        TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// PostgresRepository is a PostgreSQL implementation of Repository.
type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository creates a repository on pool.
func NewPostgresRepository(pool *pgxpool.Pool) *PostgresRepository {
	return &PostgresRepository{pool: pool}
}

// EnsureSchema creates the table if it does not exist.
func (r *PostgresRepository) EnsureSchema(ctx context.Context) error {
	if _, err := r.pool.Exec(ctx, Schema); err != nil {
		return fmt.Errorf("creating dashboard_preferences: %w", err)
	}
	return nil
}

// Get retrieves a session's preferences.
func (r *PostgresRepository) Get(ctx context.Context, sessionID string) (*Preferences, error) {
	query := `
		SELECT units, latitude, longitude, locations_history, selected_city, updated_at
		FROM dashboard_preferences
		WHERE session_id = $1
	`

	var (
		p        = &Preferences{SessionID: sessionID}
		units    string
		history  []byte
		selected []byte
	)

	err := r.pool.QueryRow(ctx, query, sessionID).Scan(
		&units,
		&p.Location[0],
		&p.Location[1],
		&history,
		&selected,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	p.Units = dashboard.Units(units)

	if err := json.Unmarshal(history, &p.LocationsHistory); err != nil {
		return nil, fmt.Errorf("decoding locations_history: %w", err)
	}
	if len(selected) > 0 {
		var city geocode.City
		if err := json.Unmarshal(selected, &city); err != nil {
			return nil, fmt.Errorf("decoding selected_city: %w", err)
		}
		p.SelectedCity = &city
	}

	return p, nil
}

// Save upserts a session's preferences.
func (r *PostgresRepository) Save(ctx context.Context, p *Preferences) error {
	query := `
		INSERT INTO dashboard_preferences (
			session_id, units, latitude, longitude, locations_history, selected_city, updated_at
		) VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (session_id) DO UPDATE SET
			units = EXCLUDED.units,
			latitude = EXCLUDED.latitude,
			longitude = EXCLUDED.longitude,
			locations_history = EXCLUDED.locations_history,
			selected_city = EXCLUDED.selected_city,
			updated_at = EXCLUDED.updated_at
	`

	history := p.LocationsHistory
	if history == nil {
		history = []geocode.City{}
	}
	historyJSON, err := json.Marshal(history)
	if err != nil {
		return fmt.Errorf("encoding locations_history: %w", err)
	}

	var selectedJSON []byte
	if p.SelectedCity != nil {
		selectedJSON, err = json.Marshal(p.SelectedCity)
		if err != nil {
			return fmt.Errorf("encoding selected_city: %w", err)
		}
	}

	_, err = r.pool.Exec(ctx, query,
		p.SessionID,
		string(p.Units),
		p.Location.Lat(),
		p.Location.Lon(),
		historyJSON,
		selectedJSON,
		p.UpdatedAt,
	)
	return err
}

// Delete removes a session's preferences.
func (r *PostgresRepository) Delete(ctx context.Context, sessionID string) error {
	_, err := r.pool.Exec(ctx, `DELETE FROM dashboard_preferences WHERE session_id = $1`, sessionID)
	return err
}
