package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/api/models"
	"github.com/skydial/skydial/internal/api/response"
	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/geocode"
	"github.com/skydial/skydial/internal/provider/resilience"
	"github.com/skydial/skydial/internal/weather"
)

// ForecastService returns forecasts for a point.
type ForecastService interface {
	GetForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error)
}

// CitySearcher finds cities by name prefix.
type CitySearcher interface {
	Search(ctx context.Context, opts geocode.SearchOptions) (*geocode.SearchResult, error)
}

// WeatherHandler serves the forecast and city search proxies.
type WeatherHandler struct {
	forecasts ForecastService
	cities    CitySearcher
	builder   *dashboard.Builder
	logger    zerolog.Logger
}

// NewWeatherHandler creates a WeatherHandler.
func NewWeatherHandler(forecasts ForecastService, cities CitySearcher, builder *dashboard.Builder, logger zerolog.Logger) *WeatherHandler {
	return &WeatherHandler{
		forecasts: forecasts,
		cities:    cities,
		builder:   builder,
		logger:    logger,
	}
}

// GetWeather handles POST /v1/weather with {"location":[lat,lon]}.
func (h *WeatherHandler) GetWeather(w http.ResponseWriter, r *http.Request) {
	var req models.WeatherRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if req.Location == nil {
		response.MissingFields(w, r, "location")
		return
	}

	point := models.Point{Lat: req.Location[0], Lon: req.Location[1]}
	if errs := point.Validate("location."); len(errs) > 0 {
		response.BadRequest(w, r, "location is out of range", errs)
		return
	}

	units, err := dashboard.ParseUnits(req.Units)
	if err != nil {
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "units", Message: "must be metric or imperial", Code: "INVALID"},
		})
		return
	}

	forecast, err := h.forecasts.GetForecast(r.Context(), point.Lat, point.Lon)
	if err != nil {
		writeForecastError(w, r, h.logger, err)
		return
	}

	bundle, err := h.builder.Build(forecast, units, req.IncludeForecast)
	if err != nil {
		h.logger.Error().Err(err).Msg("building dashboard")
		response.Upstream(w, r, 0, 0, "Incomplete forecast", "the forecast provider returned an incomplete forecast")
		return
	}

	response.JSON(w, r, http.StatusOK, bundle)
}

// SearchCities handles GET /v1/weather-city?name_startsWith=&cities=.
func (h *WeatherHandler) SearchCities(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts := geocode.SearchOptions{
		NameStartsWith: q.Get("name_startsWith"),
		Cities:         q.Get("cities"),
	}
	if v := q.Get("maxRows"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 || n > 1000 {
			response.BadRequest(w, r, "maxRows must be between 1 and 1000", []models.FieldError{
				{Field: "maxRows", Message: "must be between 1 and 1000", Code: "OUT_OF_RANGE"},
			})
			return
		}
		opts.MaxRows = n
	}

	result, err := h.cities.Search(r.Context(), opts)
	if err != nil {
		var providerErr *geocode.ProviderError
		switch {
		case errors.Is(err, geocode.ErrEmptyQuery):
			response.MissingFields(w, r, "name_startsWith")
		case errors.Is(err, geocode.ErrNotConfigured):
			response.NotConfigured(w, r, err.Error())
		case errors.As(err, &providerErr):
			response.Upstream(w, r, providerErr.StatusCode, providerErr.Value, "City search error", providerErr.Message)
		case errors.Is(err, resilience.ErrCircuitOpen):
			response.ServiceUnavailable(w, r, "city search is temporarily unavailable")
		default:
			h.logger.Error().Err(err).Msg("city search failed")
			response.Upstream(w, r, 0, 0, "", "city search provider unavailable")
		}
		return
	}

	response.JSON(w, r, http.StatusOK, result)
}

// writeForecastError maps forecast service errors to problems.
func writeForecastError(w http.ResponseWriter, r *http.Request, logger zerolog.Logger, err error) {
	var providerErr *weather.ProviderError
	switch {
	case errors.Is(err, weather.ErrInvalidCoordinates):
		response.BadRequest(w, r, err.Error(), nil)
	case errors.Is(err, weather.ErrNotConfigured):
		response.NotConfigured(w, r, err.Error())
	case errors.As(err, &providerErr):
		response.Upstream(w, r, providerErr.StatusCode, providerErr.Code, providerErr.Type, providerErr.Message)
	case errors.Is(err, weather.ErrNoDataForLocation):
		response.NotFound(w, r, err.Error())
	case errors.Is(err, resilience.ErrCircuitOpen):
		response.ServiceUnavailable(w, r, "weather provider is temporarily unavailable")
	default:
		logger.Error().Err(err).Msg("forecast request failed")
		response.Upstream(w, r, 0, 0, "", "weather provider unavailable")
	}
}
