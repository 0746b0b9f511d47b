// Package geonames implements geocode.Provider on the GeoNames search API.
package geonames

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"

	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/geocode"
	"github.com/skydial/skydial/internal/provider/resilience"
)

const (
	// ProviderName identifies this geocoding provider.
	ProviderName = "geonames"

	// DefaultBaseURL is the GeoNames web service host.
	DefaultBaseURL = "http://api.geonames.org"
)

// ClientConfig holds configuration for the GeoNames client.
type ClientConfig struct {
	// Username is the GeoNames account name. Empty means unconfigured.
	Username string

	BaseURL    string
	HTTPClient *resilience.Client
	Logger     zerolog.Logger
}

// Client queries GeoNames searchJSON.
type Client struct {
	username   string
	baseURL    string
	httpClient *resilience.Client
	logger     zerolog.Logger
}

// NewClient creates a GeoNames client.
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
		username:   cfg.Username,
		baseURL:    baseURL,
		httpClient: httpClient,
		logger:     cfg.Logger,
	}
}

// Name returns the provider name.
func (c *Client) Name() string {
	return ProviderName
}

// searchResponse carries either results or a GeoNames status error; GeoNames
// reports most errors with HTTP 200.
type searchResponse struct {
	geocode.SearchResult
	Status *geocode.ProviderError `json:"status,omitempty"`
}

// SearchCities runs a name-prefix search.
func (c *Client) SearchCities(ctx context.Context, opts geocode.SearchOptions) (*geocode.SearchResult, error) {
	if c.username == "" {
		return nil, geocode.ErrNotConfigured
	}

	params := url.Values{}
	params.Set("name_startsWith", opts.NameStartsWith)
	if opts.Cities != "" {
		params.Set("cities", opts.Cities)
	}
	if opts.MaxRows > 0 {
		params.Set("maxRows", strconv.Itoa(opts.MaxRows))
	}
	params.Set("username", c.username)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/searchJSON?"+params.Encode(), http.NoBody)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request: %w", err)
	}
	defer resp.Body.Close()

	var sr searchResponse
	if err := json.NewDecoder(resp.Body).Decode(&sr); err != nil {
		if resp.StatusCode != http.StatusOK {
			return nil, &geocode.ProviderError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
		}
		return nil, fmt.Errorf("decoding response: %w", err)
	}

	if sr.Status != nil {
		sr.Status.StatusCode = resp.StatusCode
		return nil, sr.Status
	}
	if resp.StatusCode != http.StatusOK {
		return nil, &geocode.ProviderError{StatusCode: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}
	}

	c.logger.Debug().
		Str("prefix", opts.NameStartsWith).
		Int("results", len(sr.Cities)).
		Msg("city search completed")

	if sr.Cities == nil {
		sr.Cities = []geocode.City{}
	}
	return &sr.SearchResult, nil
}
