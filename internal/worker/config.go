// Package worker provides background jobs for SkyDial: it keeps forecasts
// warm for a set of locations and publishes their sun state.
package worker

import (
	"time"
)

// Location is a named point to refresh. Name doubles as the MQTT topic
// segment after slugging.
type Location struct {
	Name string
	Lat  float64
	Lon  float64
}

// RefreshConfig holds configuration for the refresh job.
type RefreshConfig struct {
	// Locations to refresh. If empty, uses DefaultLocations.
	Locations []Location

	// Concurrency is the number of concurrent refresh operations.
	// Default: 3
	Concurrency int

	// Timeout bounds each location's fetch and publish.
	// Default: 30 seconds
	Timeout time.Duration

	// WarmOnly skips sun state publishing and only fetches forecasts.
	WarmOnly bool
}

// DefaultRefreshConfig returns the default refresh configuration.
func DefaultRefreshConfig() RefreshConfig {
	return RefreshConfig{
		Locations:   DefaultLocations(),
		Concurrency: 3,
		Timeout:     30 * time.Second,
	}
}

// DefaultLocations is the dashboard's default city followed by a spread of
// offsets, including a half-hour zone and both hemispheres.
func DefaultLocations() []Location {
	return []Location{
		{Name: "New York", Lat: 40.71427, Lon: -74.00597},
		{Name: "London", Lat: 51.50853, Lon: -0.12574},
		{Name: "Paris", Lat: 48.85341, Lon: 2.3488},
		{Name: "Tokyo", Lat: 35.6895, Lon: 139.69171},
		{Name: "Sydney", Lat: -33.86785, Lon: 151.20732},
		{Name: "Mumbai", Lat: 19.07283, Lon: 72.88261},
		{Name: "Sao Paulo", Lat: -23.5475, Lon: -46.63611},
		{Name: "Cape Town", Lat: -33.92584, Lon: 18.42322},
		{Name: "Reykjavik", Lat: 64.13548, Lon: -21.89541},
	}
}

func (c RefreshConfig) withDefaults() RefreshConfig {
	def := DefaultRefreshConfig()
	if len(c.Locations) == 0 {
		c.Locations = def.Locations
	}
	if c.Concurrency <= 0 {
		c.Concurrency = def.Concurrency
	}
	if c.Timeout <= 0 {
		c.Timeout = def.Timeout
	}
	return c
}
