package weather

import (
	"errors"
	"fmt"
	"time"
)

// Weather errors.
var (
	ErrProviderUnavailable = errors.New("weather provider unavailable")
	ErrNoDataForLocation   = errors.New("no weather data for location")
	ErrInvalidCoordinates  = errors.New("invalid coordinates")
	ErrNotConfigured       = errors.New("API key is not configured")
)

// ProviderError is a hard error reported by the forecast provider.
type ProviderError struct {
	// StatusCode is the HTTP status of the provider response.
	StatusCode int `json:"-"`

	// Code is the provider's numeric error code, e.g. 429001.
	Code int `json:"code"`

	// Type is the provider's error category, e.g. "Too Many Calls".
	Type string `json:"type"`

	// Message is the human-readable description.
	Message string `json:"message"`
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("provider error %d (%s): %s", e.Code, e.Type, e.Message)
}

// Location is a [lat, lon] pair as exchanged with the dashboard.
type Location [2]float64

// Lat returns the latitude.
func (l Location) Lat() float64 { return l[0] }

// Lon returns the longitude.
func (l Location) Lon() float64 { return l[1] }

// Timeline is one timestep series of the forecast.
type Timeline[V any] struct {
	Timestep  string        `json:"timestep"`
	StartTime string        `json:"startTime"`
	EndTime   string        `json:"endTime"`
	Intervals []Interval[V] `json:"intervals"`
}

// Interval is a single step of a timeline. StartTime keeps the location's
// offset suffix, which the day/night logic relies on.
type Interval[V any] struct {
	StartTime string `json:"startTime"`
	Values    V      `json:"values"`
}

// DailyValues is one day of forecast. Temperatures are Celsius, speeds m/s
// and pressure hPa.
type DailyValues struct {
	TemperatureMin              float64 `json:"temperatureMin"`
	TemperatureMax              float64 `json:"temperatureMax"`
	TemperatureAvg              float64 `json:"temperatureAvg"`
	TemperatureApparentMin      float64 `json:"temperatureApparentMin"`
	TemperatureApparentMax      float64 `json:"temperatureApparentMax"`
	TemperatureApparentAvg      float64 `json:"temperatureApparentAvg"`
	HumidityAvg                 float64 `json:"humidityAvg"`
	PressureSurfaceLevelAvg     float64 `json:"pressureSurfaceLevelAvg"`
	WindSpeedAvg                float64 `json:"windSpeedAvg"`
	WindDirectionAvg            float64 `json:"windDirectionAvg"`
	WindGustMax                 float64 `json:"windGustMax"`
	PrecipitationProbabilityMax float64 `json:"precipitationProbabilityMax"`
	UVIndexMax                  float64 `json:"uvIndexMax"`
	WeatherCodeMax              int     `json:"weatherCodeMax"`
	WeatherCodeDay              int     `json:"weatherCodeDay"`
	WeatherCodeNight            int     `json:"weatherCodeNight"`
	WeatherCodeFullDay          int     `json:"weatherCodeFullDay"`
	SunriseTime                 string  `json:"sunriseTime"`
	SunsetTime                  string  `json:"sunsetTime"`
	MoonriseTime                *string `json:"moonriseTime"`
	MoonsetTime                 *string `json:"moonsetTime"`
}

// HourlyValues is one hour of forecast.
type HourlyValues struct {
	Temperature              float64  `json:"temperature"`
	TemperatureApparent      float64  `json:"temperatureApparent"`
	Humidity                 float64  `json:"humidity"`
	DewPoint                 float64  `json:"dewPoint"`
	PressureSurfaceLevel     float64  `json:"pressureSurfaceLevel"`
	WindSpeed                float64  `json:"windSpeed"`
	WindDirection            *float64 `json:"windDirection"`
	WindGust                 float64  `json:"windGust"`
	PrecipitationProbability float64  `json:"precipitationProbability"`
	RainIntensity            float64  `json:"rainIntensity"`
	SnowIntensity            float64  `json:"snowIntensity"`
	CloudCover               float64  `json:"cloudCover"`
	UVIndex                  float64  `json:"uvIndex"`
	Visibility               float64  `json:"visibility"`
	WeatherCode              int      `json:"weatherCode"`
}

// Warning is a soft provider warning attached to a successful response.
type Warning struct {
	Code    int    `json:"code"`
	Type    string `json:"type"`
	Message string `json:"message"`
}

// Forecast is the daily and hourly outlook for a location.
type Forecast struct {
	Lat float64 `json:"lat"`
	Lon float64 `json:"lon"`

	Daily  Timeline[DailyValues]  `json:"daily"`
	Hourly Timeline[HourlyValues] `json:"hourly"`

	// TimezoneOffset is the location's UTC offset in minutes, taken from the
	// daily timeline's start time. Zero means unknown.
	TimezoneOffset int `json:"timezoneOffset"`

	Warnings  []Warning `json:"warnings,omitempty"`
	FetchedAt time.Time `json:"fetchedAt"`
}

// Today returns the first daily interval.
func (f *Forecast) Today() (DailyValues, bool) {
	if f == nil || len(f.Daily.Intervals) == 0 {
		return DailyValues{}, false
	}
	return f.Daily.Intervals[0].Values, true
}

// CurrentHour returns the first hourly interval.
func (f *Forecast) CurrentHour() (Interval[HourlyValues], bool) {
	if f == nil || len(f.Hourly.Intervals) == 0 {
		return Interval[HourlyValues]{}, false
	}
	return f.Hourly.Intervals[0], true
}
