package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydial/skydial/internal/api"
	"github.com/skydial/skydial/internal/api/models"
	"github.com/skydial/skydial/internal/geocode"
	"github.com/skydial/skydial/internal/preferences"
	"github.com/skydial/skydial/internal/session"
	"github.com/skydial/skydial/internal/sun"
	"github.com/skydial/skydial/internal/weather"
)

// 14:00 in New York on June 3, between sunrise 05:25 and sunset 20:23.
var afternoon = time.Date(2024, 6, 3, 18, 0, 0, 0, time.UTC)

type fakeForecasts struct {
	err   error
	calls []weather.Location
}

func (f *fakeForecasts) GetForecast(_ context.Context, lat, lon float64) (*weather.Forecast, error) {
	f.calls = append(f.calls, weather.Location{lat, lon})
	if f.err != nil {
		return nil, f.err
	}
	return newYorkForecast(lat, lon), nil
}

type fakeCities struct {
	err error
}

func (f *fakeCities) Search(_ context.Context, opts geocode.SearchOptions) (*geocode.SearchResult, error) {
	if f.err != nil {
		return nil, f.err
	}
	if opts.NameStartsWith == "" {
		return nil, geocode.ErrEmptyQuery
	}
	return &geocode.SearchResult{TotalResultsCount: 1, Cities: []geocode.City{geocode.DefaultCity}}, nil
}

func newYorkForecast(lat, lon float64) *weather.Forecast {
	f := &weather.Forecast{
		Lat:            lat,
		Lon:            lon,
		TimezoneOffset: -240,
		Daily: weather.Timeline[weather.DailyValues]{
			Timestep:  "1d",
			StartTime: "2024-06-03T06:00:00-04:00",
		},
		Hourly: weather.Timeline[weather.HourlyValues]{Timestep: "1h"},
	}
	for d := 0; d < 5; d++ {
		day := 3 + d
		f.Daily.Intervals = append(f.Daily.Intervals, weather.Interval[weather.DailyValues]{
			StartTime: fmt.Sprintf("2024-06-%02dT06:00:00-04:00", day),
			Values: weather.DailyValues{
				TemperatureMax: 27,
				TemperatureMin: 18,
				WeatherCodeDay: 11000,
				SunriseTime:    fmt.Sprintf("2024-06-%02dT05:25:00-04:00", day),
				SunsetTime:     fmt.Sprintf("2024-06-%02dT20:23:00-04:00", day),
			},
		})
	}
	ny := time.FixedZone("", -4*3600)
	for h := 0; h < 25; h++ {
		f.Hourly.Intervals = append(f.Hourly.Intervals, weather.Interval[weather.HourlyValues]{
			StartTime: afternoon.Add(time.Duration(h) * time.Hour).In(ny).Format(time.RFC3339),
			Values: weather.HourlyValues{
				Temperature:          24,
				Humidity:             55,
				WindSpeed:            4,
				PressureSurfaceLevel: 1015,
				WeatherCode:          1000,
			},
		})
	}
	return f
}

type testEnv struct {
	router    http.Handler
	forecasts *fakeForecasts
	cities    *fakeCities
	sessions  *session.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	sessions, err := session.NewService(session.Config{SigningKey: "test-secret-key-for-testing-only"})
	require.NoError(t, err)

	env := &testEnv{
		forecasts: &fakeForecasts{},
		cities:    &fakeCities{},
		sessions:  sessions,
	}
	env.router = api.NewRouter(api.RouterConfig{
		Version:        "test",
		BuildTime:      "2024-01-01T00:00:00Z",
		Logger:         zerolog.New(io.Discard),
		Forecasts:      env.forecasts,
		Cities:         env.cities,
		Sessions:       sessions,
		Preferences:    preferences.NewService(preferences.NewInMemoryRepository()),
		Clock:          sun.FixedClock(afternoon),
		StreamInterval: time.Hour,
	})
	return env
}

func (e *testEnv) do(t *testing.T, method, target string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader io.Reader = http.NoBody
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(data)
	}

	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &v), w.Body.String())
	return v
}

func TestRouter_HealthCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/ops/health", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "application/json", w.Header().Get("Content-Type"))
	assert.NotEmpty(t, w.Header().Get("X-Request-Id"))

	health := decode[models.Health](t, w)
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "test", health.Version)
}

func TestRouter_ReadinessCheck(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/ops/ready", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	health := decode[models.Health](t, w)
	assert.Equal(t, models.HealthStatusOK, health.Status)
	assert.Equal(t, "in-memory", health.Details["database"])
}

func TestRouter_SystemStatus(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/ops/status", nil, "")

	assert.Equal(t, http.StatusOK, w.Code)
	status := decode[models.SystemStatus](t, w)
	assert.Equal(t, models.HealthStatusOK, status.Status)
	require.Len(t, status.Subsystems, 1)
	assert.Equal(t, "database", status.Subsystems[0].Name)
	assert.Empty(t, status.Providers)
}

func TestRouter_SecurityHeaders(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/ops/health", nil, "")

	assert.Equal(t, "nosniff", w.Header().Get("X-Content-Type-Options"))
	assert.Equal(t, "DENY", w.Header().Get("X-Frame-Options"))
	assert.NotEmpty(t, w.Header().Get("Strict-Transport-Security"))
}

func TestRouter_Weather(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/weather", map[string]any{"location": []float64{40.71, -74.01}}, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	body := decode[map[string]any](t, w)
	assert.Contains(t, body, "current")
	assert.Contains(t, body, "hourly")
	assert.Contains(t, body, "daily")
	assert.NotContains(t, body, "forecast")

	dial, ok := body["sun"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, dial["valid"])
	assert.Equal(t, false, dial["isNight"])

	require.Len(t, env.forecasts.calls, 1)
	assert.Equal(t, weather.Location{40.71, -74.01}, env.forecasts.calls[0])
}

func TestRouter_Weather_IncludeForecast(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/weather", map[string]any{
		"location":        []float64{40.71, -74.01},
		"includeForecast": true,
	}, "")

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, decode[map[string]any](t, w), "forecast")
}

func TestRouter_Weather_MissingLocation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/weather", map[string]any{}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))

	problem := decode[models.Problem](t, w)
	assert.Equal(t, models.CodeMissingFields, problem.Code)
	assert.Equal(t, "Missing required fields: location", problem.Message)
	assert.Empty(t, env.forecasts.calls)
}

func TestRouter_Weather_OutOfRange(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodPost, "/v1/weather", map[string]any{"location": []float64{91, 0}}, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	problem := decode[models.Problem](t, w)
	require.NotEmpty(t, problem.Errors)
	assert.Equal(t, "location.lat", problem.Errors[0].Field)
}

func TestRouter_Weather_UnsupportedMediaType(t *testing.T) {
	env := newTestEnv(t)

	req := httptest.NewRequest(http.MethodPost, "/v1/weather", strings.NewReader("location=1,2"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	w := httptest.NewRecorder()
	env.router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, w.Code)
}

func TestRouter_Weather_ProviderErrors(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   int
	}{
		{
			name:       "not configured",
			err:        weather.ErrNotConfigured,
			wantStatus: http.StatusInternalServerError,
			wantCode:   models.CodeNotConfigured,
		},
		{
			name:       "rate limited upstream",
			err:        &weather.ProviderError{StatusCode: 429, Code: 429001, Type: "Too Many Calls", Message: "slow down"},
			wantStatus: http.StatusTooManyRequests,
			wantCode:   429001,
		},
		{
			name:       "upstream failure",
			err:        &weather.ProviderError{StatusCode: 500, Code: 500000, Type: "Internal", Message: "boom"},
			wantStatus: http.StatusBadGateway,
			wantCode:   500000,
		},
		{
			name:       "no data",
			err:        weather.ErrNoDataForLocation,
			wantStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t)
			env.forecasts.err = tt.err

			w := env.do(t, http.MethodPost, "/v1/weather", map[string]any{"location": []float64{1, 2}}, "")

			assert.Equal(t, tt.wantStatus, w.Code)
			if tt.wantCode != 0 {
				assert.Equal(t, tt.wantCode, decode[models.Problem](t, w).Code)
			}
		})
	}
}

func TestRouter_WeatherCity(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/weather-city?name_startsWith=New&cities=cities15000", nil, "")

	require.Equal(t, http.StatusOK, w.Code)
	result := decode[geocode.SearchResult](t, w)
	require.Len(t, result.Cities, 1)
	assert.Equal(t, "New York", result.Cities[0].Name)
}

func TestRouter_WeatherCity_Errors(t *testing.T) {
	t.Run("missing prefix", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodGet, "/v1/weather-city", nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Missing required fields: name_startsWith", decode[models.Problem](t, w).Message)
	})

	t.Run("not configured", func(t *testing.T) {
		env := newTestEnv(t)
		env.cities.err = geocode.ErrNotConfigured

		w := env.do(t, http.MethodGet, "/v1/weather-city?name_startsWith=Par", nil, "")

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		problem := decode[models.Problem](t, w)
		assert.Equal(t, models.CodeNotConfigured, problem.Code)
		assert.Equal(t, "Username is not defined", problem.Message)
	})

	t.Run("bad maxRows", func(t *testing.T) {
		env := newTestEnv(t)

		w := env.do(t, http.MethodGet, "/v1/weather-city?name_startsWith=Par&maxRows=0", nil, "")

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestRouter_Sun(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/sun?lat=40.71&lon=-74.01", nil, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dial := decode[map[string]any](t, w)
	assert.Equal(t, true, dial["valid"])
	assert.Equal(t, false, dial["isNight"])
	assert.Equal(t, false, dial["darkMode"])
	assert.Equal(t, "05:25 20:23", dial["timesLabel"])
}

func TestRouter_Sun_MissingCoordinates(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/sun?lat=40.71", nil, "")

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: lon", decode[models.Problem](t, w).Message)
	assert.Empty(t, env.forecasts.calls)
}

func TestRouter_SunCompute(t *testing.T) {
	env := newTestEnv(t)

	q := url.Values{}
	q.Set("sunrise", "2024-06-03T05:25:00-04:00")
	q.Set("sunset", "2024-06-03T20:23:00-04:00")
	q.Set("now", "2024-06-04T02:00:00Z") // 22:00 local

	w := env.do(t, http.MethodGet, "/v1/sun/compute?"+q.Encode(), nil, "")

	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	dial := decode[map[string]any](t, w)
	assert.Equal(t, true, dial["valid"])
	assert.Equal(t, true, dial["isNight"])
	assert.Equal(t, true, dial["darkMode"])
	assert.Empty(t, env.forecasts.calls)
}

func TestRouter_SunCompute_Validation(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/sun/compute?sunset=2024-06-03T20:23:00Z", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "Missing required fields: sunrise", decode[models.Problem](t, w).Message)

	q := url.Values{}
	q.Set("sunrise", "2024-06-03T05:25:00Z")
	q.Set("sunset", "2024-06-03T20:23:00Z")
	q.Set("offset", "abc")
	w = env.do(t, http.MethodGet, "/v1/sun/compute?"+q.Encode(), nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_SunStream(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/sun/stream?lat=40.71&lon=-74.01"
	conn, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))

	var first map[string]any
	require.NoError(t, conn.ReadJSON(&first))
	assert.Equal(t, "sun", first["type"])
	sunView, ok := first["sun"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, sunView["valid"])

	require.NoError(t, conn.WriteJSON(map[string]float64{"lat": 48.85, "lon": 2.35}))
	var second map[string]any
	require.NoError(t, conn.ReadJSON(&second))
	assert.Equal(t, "sun", second["type"])

	require.NoError(t, conn.WriteMessage(websocket.TextMessage, []byte("not json")))
	var third map[string]any
	require.NoError(t, conn.ReadJSON(&third))
	assert.Equal(t, "error", third["type"])
}

func TestRouter_SunStream_RejectsBadQueryBeforeUpgrade(t *testing.T) {
	env := newTestEnv(t)
	srv := httptest.NewServer(env.router)
	t.Cleanup(srv.Close)

	wsURL := "ws" + strings.TrimPrefix(srv.URL, "http") + "/v1/sun/stream?lat=100&lon=0"
	_, resp, err := websocket.DefaultDialer.Dial(wsURL, nil)
	require.Error(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
}

func newSession(t *testing.T, env *testEnv) session.Token {
	t.Helper()
	w := env.do(t, http.MethodPost, "/v1/sessions", nil, "")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	tok := decode[session.Token](t, w)
	require.NotEmpty(t, tok.Token)
	return tok
}

func TestRouter_Sessions(t *testing.T) {
	env := newTestEnv(t)

	tok := newSession(t, env)
	assert.True(t, strings.HasPrefix(tok.SessionID, session.IDPrefix))

	// A valid bearer keeps the session id.
	w := env.do(t, http.MethodPost, "/v1/sessions", nil, tok.Token)
	require.Equal(t, http.StatusCreated, w.Code)
	assert.Equal(t, tok.SessionID, decode[session.Token](t, w).SessionID)

	// A garbage bearer starts over.
	w = env.do(t, http.MethodPost, "/v1/sessions", nil, "garbage")
	require.Equal(t, http.StatusCreated, w.Code)
	assert.NotEqual(t, tok.SessionID, decode[session.Token](t, w).SessionID)
}

func TestRouter_Preferences_RequireSession(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/me/preferences", nil, "")

	assert.Equal(t, http.StatusUnauthorized, w.Code)
	assert.Contains(t, w.Header().Get("WWW-Authenticate"), "Bearer")
}

func TestRouter_Preferences_Lifecycle(t *testing.T) {
	env := newTestEnv(t)
	tok := newSession(t, env).Token

	w := env.do(t, http.MethodGet, "/v1/me/preferences", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	prefs := decode[preferences.Preferences](t, w)
	assert.Equal(t, "metric", string(prefs.Units))
	assert.Equal(t, preferences.DefaultLocation, prefs.Location)
	require.Len(t, prefs.LocationsHistory, 1)

	w = env.do(t, http.MethodPost, "/v1/me/preferences/units:toggle", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "imperial", string(decode[preferences.Preferences](t, w).Units))

	paris := geocode.City{GeonameID: 2988507, Name: "Paris", ToponymName: "Paris", CountryName: "France", Lat: "48.85341", Lng: "2.3488"}
	w = env.do(t, http.MethodPost, "/v1/me/preferences/city", map[string]any{"city": paris}, tok)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	prefs = decode[preferences.Preferences](t, w)
	assert.Equal(t, "imperial", string(prefs.Units))
	require.NotNil(t, prefs.SelectedCity)
	assert.Equal(t, "Paris", prefs.SelectedCity.Name)
	assert.InDelta(t, 48.85341, prefs.Location[0], 1e-9)
	require.Len(t, prefs.LocationsHistory, 2)
	assert.Equal(t, "Paris", prefs.LocationsHistory[0].Name)

	w = env.do(t, http.MethodGet, "/v1/me/preferences/history?q=fra", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	history := decode[struct {
		Cities []geocode.City `json:"cities"`
	}](t, w)
	require.Len(t, history.Cities, 1)
	assert.Equal(t, "Paris", history.Cities[0].Name)

	units := "metric"
	w = env.do(t, http.MethodPut, "/v1/me/preferences", map[string]any{"units": units}, tok)
	require.Equal(t, http.StatusOK, w.Code)
	prefs = decode[preferences.Preferences](t, w)
	assert.Equal(t, "metric", string(prefs.Units))
	assert.Len(t, prefs.LocationsHistory, 2)

	w = env.do(t, http.MethodDelete, "/v1/me/preferences", nil, tok)
	require.Equal(t, http.StatusNoContent, w.Code)

	w = env.do(t, http.MethodGet, "/v1/me/preferences", nil, tok)
	require.Equal(t, http.StatusOK, w.Code)
	prefs = decode[preferences.Preferences](t, w)
	assert.Nil(t, prefs.SelectedCity)
	assert.Len(t, prefs.LocationsHistory, 1)
}

func TestRouter_Preferences_InvalidInput(t *testing.T) {
	env := newTestEnv(t)
	tok := newSession(t, env).Token

	w := env.do(t, http.MethodPut, "/v1/me/preferences", map[string]any{"units": "kelvin"}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	bad := geocode.City{Name: "Nowhere", Lat: "north", Lng: "0"}
	w = env.do(t, http.MethodPost, "/v1/me/preferences/city", map[string]any{"city": bad}, tok)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_NotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.do(t, http.MethodGet, "/v1/nope", nil, "")

	assert.Equal(t, http.StatusNotFound, w.Code)
}
