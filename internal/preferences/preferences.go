// Package preferences stores a dashboard session's units, location and
// city history.
package preferences

import (
	"strings"
	"time"

	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/geocode"
	"github.com/skydial/skydial/internal/weather"
)

// MaxHistory caps the number of remembered cities.
const MaxHistory = 100

// DefaultLocation is New York City.
var DefaultLocation = weather.Location{40.71427, -74.00597}

// Preferences is the persisted state of one dashboard session.
type Preferences struct {
	SessionID        string           `json:"-"`
	Units            dashboard.Units  `json:"units"`
	Location         weather.Location `json:"location"`
	LocationsHistory []geocode.City   `json:"locationsHistory"`
	SelectedCity     *geocode.City    `json:"selectedCity"`
	UpdatedAt        time.Time        `json:"updatedAt"`
}

// Default returns the preferences of a new session.
func Default(sessionID string) *Preferences {
	return &Preferences{
		SessionID:        sessionID,
		Units:            dashboard.Metric,
		Location:         DefaultLocation,
		LocationsHistory: []geocode.City{geocode.DefaultCity},
	}
}

// ToggleUnits switches between metric and imperial.
func (p *Preferences) ToggleUnits() {
	p.Units = p.Units.Toggle()
}

// SelectCity makes city current and moves it to the front of the history.
// A nil city clears the selection and returns to DefaultLocation.
func (p *Preferences) SelectCity(city *geocode.City) error {
	if city == nil {
		p.SelectedCity = nil
		p.Location = DefaultLocation
		return nil
	}

	lat, lon, err := city.Coordinates()
	if err != nil {
		return err
	}

	selected := *city
	p.SelectedCity = &selected
	p.Location = weather.Location{lat, lon}

	history := make([]geocode.City, 0, len(p.LocationsHistory)+1)
	history = append(history, selected)
	for _, c := range p.LocationsHistory {
		if sameCity(c, selected) {
			continue
		}
		history = append(history, c)
	}
	p.SetHistory(history)
	return nil
}

// SetHistory replaces the history, keeping the first MaxHistory entries.
func (p *Preferences) SetHistory(history []geocode.City) {
	if len(history) > MaxHistory {
		history = history[:MaxHistory]
	}
	p.LocationsHistory = append([]geocode.City(nil), history...)
}

// FilterHistory returns remembered cities whose toponym or country name
// contains query, ignoring case. An empty query returns the whole history.
func (p *Preferences) FilterHistory(query string) []geocode.City {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return append([]geocode.City(nil), p.LocationsHistory...)
	}

	var out []geocode.City
	for _, c := range p.LocationsHistory {
		if strings.Contains(strings.ToLower(c.ToponymName), q) ||
			strings.Contains(strings.ToLower(c.CountryName), q) {
			out = append(out, c)
		}
	}
	return out
}

// Clone returns a deep copy.
func (p *Preferences) Clone() *Preferences {
	if p == nil {
		return nil
	}
	c := *p
	c.LocationsHistory = append([]geocode.City(nil), p.LocationsHistory...)
	if p.SelectedCity != nil {
		city := *p.SelectedCity
		c.SelectedCity = &city
	}
	return &c
}

func sameCity(a, b geocode.City) bool {
	return a.ToponymName == b.ToponymName && a.CountryName == b.CountryName
}
