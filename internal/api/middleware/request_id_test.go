package middleware_test

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/skydial/skydial/internal/api/middleware"
)

func serveRequestID(t *testing.T, header string) (ctxID, respID string) {
	t.Helper()
	handler := middleware.RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctxID = middleware.GetRequestID(r.Context())
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodGet, "/v1/sun", http.NoBody)
	if header != "" {
		req.Header.Set("X-Request-Id", header)
	}
	w := httptest.NewRecorder()
	handler.ServeHTTP(w, req)

	return ctxID, w.Header().Get("X-Request-Id")
}

func TestRequestID_GeneratesNewID(t *testing.T) {
	ctxID, respID := serveRequestID(t, "")

	assert.True(t, strings.HasPrefix(ctxID, "req_"))
	assert.Len(t, ctxID, 26)
	assert.Equal(t, ctxID, respID)
}

func TestRequestID_PreservesExistingID(t *testing.T) {
	ctxID, respID := serveRequestID(t, "edge-7f3a")

	assert.Equal(t, "edge-7f3a", ctxID)
	assert.Equal(t, "edge-7f3a", respID)
}

func TestRequestID_ReplacesOversizedID(t *testing.T) {
	ctxID, _ := serveRequestID(t, strings.Repeat("x", 65))

	assert.True(t, strings.HasPrefix(ctxID, "req_"))
}

func TestGetRequestID_EmptyWithoutMiddleware(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", http.NoBody)
	assert.Empty(t, middleware.GetRequestID(req.Context()))
}

func TestNewRequestID_Unique(t *testing.T) {
	seen := make(map[string]bool)
	for range 100 {
		id := middleware.NewRequestID()
		assert.False(t, seen[id], "duplicate request ID generated: %s", id)
		seen[id] = true
	}
}
