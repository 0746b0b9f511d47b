package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/skydial/skydial/internal/api/middleware"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func hit(handler http.Handler, remoteAddr, sessionID string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/v1/weather-city", http.NoBody)
	req.RemoteAddr = remoteAddr
	if sessionID != "" {
		req = req.WithContext(middleware.WithSessionID(req.Context(), sessionID))
	}
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	return rec
}

func TestRateLimitByIP_BlocksOverLimit(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.RateLimitConfig{
		RequestLimit: 3,
		WindowLength: time.Minute,
	})(okHandler())

	for i := range 3 {
		assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.1:1234", "").Code, "request %d", i+1)
	}

	rec := hit(handler, "10.0.0.1:1234", "")
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "60", rec.Header().Get("Retry-After"))
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Body.String(), "too-many-requests")
	assert.Contains(t, rec.Body.String(), "/v1/weather-city")

	assert.Equal(t, http.StatusOK, hit(handler, "10.0.0.2:1234", "").Code)
}

func TestRateLimitByIP_RetryAfterFollowsWindow(t *testing.T) {
	handler := middleware.RateLimitByIP(middleware.RateLimitConfig{
		RequestLimit: 1,
		WindowLength: 10 * time.Second,
	})(okHandler())

	hit(handler, "10.1.0.1:1", "")
	rec := hit(handler, "10.1.0.1:1", "")

	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
	assert.Equal(t, "10", rec.Header().Get("Retry-After"))
}

func TestRateLimitBySession_KeysOnSession(t *testing.T) {
	handler := middleware.RateLimitBySession(middleware.RateLimitConfig{
		RequestLimit: 2,
		WindowLength: time.Minute,
	})(okHandler())

	// Same session from two addresses shares one bucket.
	assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.1:1", "ses_a").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.2:1", "ses_a").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "172.16.0.3:1", "ses_a").Code)

	assert.Equal(t, http.StatusOK, hit(handler, "172.16.0.1:1", "ses_b").Code)
}

func TestRateLimitBySession_FallsBackToIP(t *testing.T) {
	handler := middleware.RateLimitBySession(middleware.RateLimitConfig{
		RequestLimit: 1,
		WindowLength: time.Minute,
	})(okHandler())

	assert.Equal(t, http.StatusOK, hit(handler, "192.168.9.1:1", "").Code)
	assert.Equal(t, http.StatusTooManyRequests, hit(handler, "192.168.9.1:1", "").Code)
	assert.Equal(t, http.StatusOK, hit(handler, "192.168.9.2:1", "").Code)
}

func TestDefaultRateLimitConfigs(t *testing.T) {
	assert.Equal(t, 10, middleware.SessionRateLimit.RequestLimit)
	assert.Equal(t, 30, middleware.ProxyRateLimit.RequestLimit)
	assert.Equal(t, 100, middleware.StandardRateLimit.RequestLimit)
	assert.Equal(t, time.Minute, middleware.StandardRateLimit.WindowLength)
}
