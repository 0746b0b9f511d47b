package geonames_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydial/skydial/internal/geocode"
	"github.com/skydial/skydial/internal/geocode/geonames"
)

const searchFixture = `{
  "totalResultsCount": 2,
  "geonames": [
    {
      "adminCode1": "ENG", "lng": "-0.12574", "geonameId": 2643743, "toponymName": "London",
      "countryId": "2635167", "fcl": "P", "population": 8961989, "countryCode": "GB",
      "name": "London", "fclName": "city, village,...", "adminCodes1": {"ISO3166_2": "ENG"},
      "countryName": "United Kingdom", "fcodeName": "capital of a political entity",
      "adminName1": "England", "lat": "51.50853", "fcode": "PPLC"
    },
    {
      "lng": "-81.23304", "geonameId": 6058560, "name": "London", "countryCode": "CA",
      "countryName": "Canada", "adminName1": "Ontario", "lat": "42.98339"
    }
  ]
}`

func TestClient_SearchCities(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/searchJSON", r.URL.Path)
		q := r.URL.Query()
		assert.Equal(t, "Lond", q.Get("name_startsWith"))
		assert.Equal(t, "cities15000", q.Get("cities"))
		assert.Equal(t, "5", q.Get("maxRows"))
		assert.Equal(t, "demo", q.Get("username"))
		_, _ = w.Write([]byte(searchFixture))
	}))
	defer server.Close()

	client := geonames.NewClient(geonames.ClientConfig{
		Username: "demo",
		BaseURL:  server.URL,
		Logger:   zerolog.Nop(),
	})

	result, err := client.SearchCities(context.Background(), geocode.SearchOptions{
		NameStartsWith: "Lond",
		Cities:         geocode.Cities15000,
		MaxRows:        5,
	})
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalResultsCount)
	require.Len(t, result.Cities, 2)

	london := result.Cities[0]
	assert.Equal(t, 2643743, london.GeonameID)
	assert.Equal(t, "London, United Kingdom", london.DisplayName())
	require.NotNil(t, london.AdminCodes1)
	assert.Equal(t, "ENG", london.AdminCodes1.ISO3166_2)

	lat, lon, err := london.Coordinates()
	require.NoError(t, err)
	assert.InDelta(t, 51.50853, lat, 1e-9)
	assert.InDelta(t, -0.12574, lon, 1e-9)
}

func TestClient_SearchCities_NotConfigured(t *testing.T) {
	client := geonames.NewClient(geonames.ClientConfig{Logger: zerolog.Nop()})

	_, err := client.SearchCities(context.Background(), geocode.SearchOptions{NameStartsWith: "Par"})
	require.ErrorIs(t, err, geocode.ErrNotConfigured)
	assert.Equal(t, "Username is not defined", err.Error())
}

func TestClient_SearchCities_StatusError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"status":{"message":"user account not enabled to use the free webservice.","value":10}}`))
	}))
	defer server.Close()

	client := geonames.NewClient(geonames.ClientConfig{
		Username: "demo",
		BaseURL:  server.URL,
		Logger:   zerolog.Nop(),
	})

	_, err := client.SearchCities(context.Background(), geocode.SearchOptions{NameStartsWith: "Par"})

	var pe *geocode.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 10, pe.Value)
	assert.Equal(t, http.StatusOK, pe.StatusCode)
	assert.Contains(t, pe.Error(), "not enabled")
}

func TestClient_SearchCities_NoResults(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"totalResultsCount":0,"geonames":[]}`))
	}))
	defer server.Close()

	client := geonames.NewClient(geonames.ClientConfig{
		Username: "demo",
		BaseURL:  server.URL,
		Logger:   zerolog.Nop(),
	})

	result, err := client.SearchCities(context.Background(), geocode.SearchOptions{NameStartsWith: "Zzz"})
	require.NoError(t, err)
	assert.Empty(t, result.Cities)
	assert.NotNil(t, result.Cities)
}
