package models

import (
	"github.com/skydial/skydial/internal/geocode"
)

// WeatherRequest is the body of POST /v1/weather.
type WeatherRequest struct {
	// Location is [lat, lon]. A nil pointer means the field was absent.
	Location *[2]float64 `json:"location"`

	// Units selects metric or imperial view values. Empty means metric.
	Units string `json:"units,omitempty"`

	// IncludeForecast adds the raw provider forecast to the response.
	IncludeForecast bool `json:"includeForecast,omitempty"`
}

// StreamMessage is pushed on the sun stream websocket.
type StreamMessage struct {
	Type  string `json:"type"`
	Sun   any    `json:"sun,omitempty"`
	Error string `json:"error,omitempty"`
}

// Stream message types.
const (
	StreamTypeSun   = "sun"
	StreamTypeError = "error"
)

// StreamLocation is sent by the client to move the stream to a new point.
type StreamLocation struct {
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// PreferencesUpdate is the body of PUT /v1/me/preferences. Absent fields
// keep their current value.
type PreferencesUpdate struct {
	Units            *string        `json:"units"`
	LocationsHistory []geocode.City `json:"locationsHistory"`
}

// SelectCityRequest is the body of POST /v1/me/preferences/city. A null
// city resets to the default location.
type SelectCityRequest struct {
	City *geocode.City `json:"city"`
}
