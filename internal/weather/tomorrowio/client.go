package tomorrowio

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"

	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/provider/resilience"
	"github.com/skydial/skydial/internal/sun"
	"github.com/skydial/skydial/internal/weather"
)

const (
	// ProviderName identifies this weather provider.
	ProviderName = "tomorrowio"

	// DefaultBaseURL is the Tomorrow.io v4 API base URL.
	DefaultBaseURL = "https://api.tomorrow.io/v4"
)

// Fields requested from the timelines endpoint. Each name matches a JSON
// field of weather.DailyValues or weather.HourlyValues; the API returns only
// those valid for the timestep.
var Fields = []string{
	"temperature",
	"temperatureApparent",
	"temperatureMin",
	"temperatureMax",
	"temperatureAvg",
	"temperatureApparentMin",
	"temperatureApparentMax",
	"temperatureApparentAvg",
	"humidity",
	"humidityAvg",
	"dewPoint",
	"pressureSurfaceLevel",
	"pressureSurfaceLevelAvg",
	"windSpeed",
	"windSpeedAvg",
	"windDirection",
	"windDirectionAvg",
	"windGust",
	"windGustMax",
	"precipitationProbability",
	"precipitationProbabilityMax",
	"rainIntensity",
	"snowIntensity",
	"cloudCover",
	"uvIndex",
	"uvIndexMax",
	"visibility",
	"weatherCode",
	"weatherCodeMax",
	"weatherCodeDay",
	"weatherCodeNight",
	"weatherCodeFullDay",
	"sunriseTime",
	"sunsetTime",
	"moonriseTime",
	"moonsetTime",
}

// ClientConfig holds configuration for the Tomorrow.io client.
type ClientConfig struct {
	// APIKey is the Tomorrow.io API key. An empty key makes every call fail
	// with weather.ErrNotConfigured.
	APIKey string

	// BaseURL overrides DefaultBaseURL.
	BaseURL string

	// HTTPClient is the resilient client to use. If nil, one is created
	// with resilience defaults.
	HTTPClient *resilience.Client

	Logger zerolog.Logger
}

// Client fetches daily and hourly timelines from Tomorrow.io.
type Client struct {
	apiKey     string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
	now        func() time.Time
}

// NewClient creates a new Tomorrow.io client.
func NewClient(cfg ClientConfig) *Client {
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}

	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = resilience.NewClient(resilience.DefaultClientConfig(ProviderName))
	}

	return &Client{
		apiKey:     cfg.APIKey,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger.With().Str("provider", ProviderName).Logger(),
		now:        time.Now,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

type timelinesRequest struct {
	Location  weather.Location `json:"location"`
	Units     string           `json:"units"`
	Fields    []string         `json:"fields"`
	Timesteps []string         `json:"timesteps"`
	StartTime string           `json:"startTime"`
	EndTime   string           `json:"endTime"`
	Timezone  string           `json:"timezone"`
}

type timelinesResponse struct {
	Data struct {
		Timelines []json.RawMessage `json:"timelines"`
	} `json:"data"`
	Warnings []weather.Warning `json:"warnings"`
}

// GetForecast fetches five days of daily and hourly forecast for a location.
func (c *Client) GetForecast(ctx context.Context, lat, lon float64) (*weather.Forecast, error) {
	if c.apiKey == "" {
		return nil, weather.ErrNotConfigured
	}

	body, err := json.Marshal(timelinesRequest{
		Location:  weather.Location{lat, lon},
		Units:     "metric",
		Fields:    Fields,
		Timesteps: []string{"1d", "1h"},
		StartTime: "now",
		EndTime:   "nowPlus5d",
		Timezone:  "auto",
	})
	if err != nil {
		return nil, fmt.Errorf("encoding request: %w", err)
	}

	endpoint := c.baseURL + "/timelines?" + url.Values{"apikey": {c.apiKey}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, decodeError(resp)
	}

	var tr timelinesResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	return c.toForecast(lat, lon, &tr)
}

// toForecast splits the response into the daily timeline (first) and the
// hourly timeline (second).
func (c *Client) toForecast(lat, lon float64, tr *timelinesResponse) (*weather.Forecast, error) {
	forecast := &weather.Forecast{
		Lat:       lat,
		Lon:       lon,
		Warnings:  tr.Warnings,
		FetchedAt: c.now(),
	}

	if len(tr.Data.Timelines) > 0 {
		if err := json.Unmarshal(tr.Data.Timelines[0], &forecast.Daily); err != nil {
			return nil, fmt.Errorf("decoding daily timeline: %w", err)
		}
	}
	if len(tr.Data.Timelines) > 1 {
		if err := json.Unmarshal(tr.Data.Timelines[1], &forecast.Hourly); err != nil {
			return nil, fmt.Errorf("decoding hourly timeline: %w", err)
		}
	}

	offset, err := sun.ExtractTimezoneOffset(forecast.Daily.StartTime)
	if err != nil {
		c.logger.Warn().
			Err(err).
			Str("start_time", forecast.Daily.StartTime).
			Msg("could not derive timezone offset")
		offset = 0
	}
	forecast.TimezoneOffset = offset

	for _, w := range tr.Warnings {
		c.logger.Debug().Int("code", w.Code).Str("type", w.Type).Msg(w.Message)
	}

	return forecast, nil
}

// decodeError turns a non-200 response into a *weather.ProviderError. Bodies
// that are not the provider's error shape keep the HTTP status as the code.
func decodeError(resp *http.Response) error {
	raw, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	pe := &weather.ProviderError{StatusCode: resp.StatusCode}
	if err := json.Unmarshal(raw, pe); err != nil || pe.Message == "" {
		pe.Code = resp.StatusCode
		pe.Type = "API Error"
		pe.Message = fmt.Sprintf("unexpected status code: %d", resp.StatusCode)
	}
	return pe
}
