// Package models provides request and response models for the SkyDial API.
package models

import (
	"math"
	"strconv"
	"time"
)

// Point represents a geographic coordinate.
type Point struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`
}

// Validate returns one FieldError per out of range component. prefix is
// prepended to field names, e.g. "location.".
func (p Point) Validate(prefix string) []FieldError {
	var errs []FieldError
	if math.IsNaN(p.Lat) || p.Lat < -90 || p.Lat > 90 {
		errs = append(errs, FieldError{Field: prefix + "lat", Message: "must be between -90 and 90", Code: "OUT_OF_RANGE"})
	}
	if math.IsNaN(p.Lon) || p.Lon < -180 || p.Lon > 180 {
		errs = append(errs, FieldError{Field: prefix + "lon", Message: "must be between -180 and 180", Code: "OUT_OF_RANGE"})
	}
	return errs
}

// ParsePoint reads lat and lon query values. missing lists absent keys;
// errs holds unparsable or out of range values.
func ParsePoint(lat, lon string) (p Point, missing []string, errs []FieldError) {
	if lat == "" {
		missing = append(missing, "lat")
	}
	if lon == "" {
		missing = append(missing, "lon")
	}
	if len(missing) > 0 {
		return Point{}, missing, nil
	}

	var err error
	if p.Lat, err = strconv.ParseFloat(lat, 64); err != nil {
		errs = append(errs, FieldError{Field: "lat", Message: "must be a number", Code: "INVALID"})
	}
	if p.Lon, err = strconv.ParseFloat(lon, 64); err != nil {
		errs = append(errs, FieldError{Field: "lon", Message: "must be a number", Code: "INVALID"})
	}
	if len(errs) > 0 {
		return Point{}, nil, errs
	}
	return p, nil, p.Validate("")
}

// HealthStatus represents the health status of a service.
type HealthStatus string

const (
	HealthStatusOK       HealthStatus = "OK"
	HealthStatusDegraded HealthStatus = "DEGRADED"
	HealthStatusFail     HealthStatus = "FAIL"
)

// Timestamp is a time.Time that marshals as RFC3339.
type Timestamp time.Time

// MarshalJSON implements json.Marshaler for Timestamp.
func (t Timestamp) MarshalJSON() ([]byte, error) {
	return []byte(`"` + time.Time(t).Format(time.RFC3339) + `"`), nil
}

// UnmarshalJSON implements json.Unmarshaler for Timestamp.
func (t *Timestamp) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		return nil
	}
	s, err := strconv.Unquote(string(data))
	if err != nil {
		return err
	}
	parsed, err := time.Parse(time.RFC3339, s)
	if err != nil {
		return err
	}
	*t = Timestamp(parsed)
	return nil
}

// Time returns the underlying time.Time.
func (t Timestamp) Time() time.Time {
	return time.Time(t)
}
