// Package geocode searches cities by name prefix for the dashboard's city
// picker.
package geocode

import (
	"errors"
	"fmt"
	"strconv"
)

// Geocode errors.
var (
	ErrEmptyQuery          = errors.New("name prefix is required")
	ErrNotConfigured       = errors.New("Username is not defined") //nolint:stylecheck,revive // surfaced verbatim to clients
	ErrProviderUnavailable = errors.New("city search provider unavailable")
	ErrInvalidCity         = errors.New("city has invalid coordinates")
)

// ProviderError is an error status reported inside a GeoNames response body.
type ProviderError struct {
	StatusCode int    `json:"-"`
	Value      int    `json:"value"`
	Message    string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("geonames error %d: %s", e.Value, e.Message)
}

// AdminCodes holds ISO subdivision codes for a city.
type AdminCodes struct {
	ISO3166_2 string `json:"ISO3166_2,omitempty"` //nolint:revive // GeoNames field name
}

// City is a GeoNames populated place. Coordinates are decimal strings as
// GeoNames returns them.
type City struct {
	GeonameID   int         `json:"geonameId"`
	Name        string      `json:"name"`
	ToponymName string      `json:"toponymName,omitempty"`
	CountryID   string      `json:"countryId,omitempty"`
	CountryCode string      `json:"countryCode"`
	CountryName string      `json:"countryName"`
	AdminCode1  string      `json:"adminCode1,omitempty"`
	AdminName1  string      `json:"adminName1,omitempty"`
	AdminCodes1 *AdminCodes `json:"adminCodes1,omitempty"`
	Lat         string      `json:"lat"`
	Lng         string      `json:"lng"`
	Population  int         `json:"population,omitempty"`
	FCL         string      `json:"fcl,omitempty"`
	FCLName     string      `json:"fclName,omitempty"`
	FCode       string      `json:"fcode,omitempty"`
	FCodeName   string      `json:"fcodeName,omitempty"`
}

// Coordinates parses the city's latitude and longitude.
func (c City) Coordinates() (lat, lon float64, err error) {
	lat, err = strconv.ParseFloat(c.Lat, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: lat %q", ErrInvalidCity, c.Lat)
	}
	lon, err = strconv.ParseFloat(c.Lng, 64)
	if err != nil {
		return 0, 0, fmt.Errorf("%w: lng %q", ErrInvalidCity, c.Lng)
	}
	return lat, lon, nil
}

// DisplayName renders "Name, Country".
func (c City) DisplayName() string {
	if c.CountryName == "" {
		return c.Name
	}
	return c.Name + ", " + c.CountryName
}

// DefaultCity is New York City, the dashboard's initial location.
var DefaultCity = City{
	GeonameID:   5128581,
	Name:        "New York",
	ToponymName: "New York City",
	CountryID:   "6252001",
	CountryCode: "US",
	CountryName: "United States",
	AdminCode1:  "NY",
	AdminName1:  "New York",
	AdminCodes1: &AdminCodes{ISO3166_2: "NY"},
	Lat:         "40.71427",
	Lng:         "-74.00597",
	Population:  8804190,
	FCL:         "P",
	FCLName:     "city, village,...",
	FCode:       "PPL",
	FCodeName:   "populated place",
}

// Population filters accepted by GeoNames' "cities" parameter.
const (
	Cities500   = "cities500"
	Cities1000  = "cities1000"
	Cities5000  = "cities5000"
	Cities15000 = "cities15000"
)

// SearchOptions are the parameters of a prefix search.
type SearchOptions struct {
	NameStartsWith string
	Cities         string
	MaxRows        int
}

// SearchResult is a page of matching cities.
type SearchResult struct {
	TotalResultsCount int    `json:"totalResultsCount"`
	Cities            []City `json:"geonames"`
}
