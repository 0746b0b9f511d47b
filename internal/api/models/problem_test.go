package models_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/skydial/skydial/internal/api/models"
)

func TestProblem_Builders(t *testing.T) {
	p := models.NewProblem(
		models.ProblemTypeValidation,
		"Validation error",
		http.StatusBadRequest,
		"req_test123",
	).
		WithDetail("lat must be between -90 and 90").
		WithInstance("/v1/sun").
		WithCode(models.CodeInvalidValue).
		WithErrors([]models.FieldError{{Field: "lat", Message: "out of range", Code: "OUT_OF_RANGE"}})

	assert.Equal(t, "lat must be between -90 and 90", p.Detail)
	assert.Equal(t, p.Detail, p.Message)
	assert.Equal(t, "/v1/sun", p.Instance)
	assert.Equal(t, models.CodeInvalidValue, p.Code)
	require.Len(t, p.Errors, 1)
	assert.Equal(t, "lat", p.Errors[0].Field)
}

func TestProblem_Write(t *testing.T) {
	p := models.NewMissingFields("req_test123", "location")
	p.Instance = "/v1/weather"

	w := httptest.NewRecorder()
	p.Write(w)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "application/problem+json", w.Header().Get("Content-Type"))
	assert.Equal(t, "req_test123", w.Header().Get("X-Request-Id"))

	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))

	assert.Equal(t, models.ProblemTypeValidation, body["type"])
	assert.Equal(t, "Missing required fields: location", body["message"])
	assert.Equal(t, "Missing required fields: location", body["detail"])
	assert.InDelta(t, models.CodeMissingFields, body["code"], 0)
	assert.Equal(t, "/v1/weather", body["instance"])
	assert.Equal(t, "req_test123", body["traceId"])
}

func TestProblem_Write_NoTraceID(t *testing.T) {
	w := httptest.NewRecorder()
	models.NewInternalError("", "boom").Write(w)

	assert.Empty(t, w.Header().Get("X-Request-Id"))
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

func TestNewMissingFields_Multiple(t *testing.T) {
	p := models.NewMissingFields("req_1", "sunrise", "sunset")

	assert.Equal(t, "Missing required fields: sunrise, sunset", p.Detail)
	require.Len(t, p.Errors, 2)
	assert.Equal(t, "REQUIRED", p.Errors[1].Code)
}

func TestNewNotConfigured(t *testing.T) {
	p := models.NewNotConfigured("req_1", "Username is not defined")

	assert.Equal(t, http.StatusInternalServerError, p.Status)
	assert.Equal(t, models.CodeNotConfigured, p.Code)
	assert.Equal(t, "Username is not defined", p.Message)
}

func TestNewUpstreamError(t *testing.T) {
	tests := []struct {
		name           string
		upstreamStatus int
		wantStatus     int
	}{
		{"quota keeps 429", http.StatusTooManyRequests, http.StatusTooManyRequests},
		{"auth keeps 401", http.StatusUnauthorized, http.StatusUnauthorized},
		{"server error becomes 502", http.StatusInternalServerError, http.StatusBadGateway},
		{"unknown becomes 502", 0, http.StatusBadGateway},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := models.NewUpstreamError("req_1", tt.upstreamStatus, 429001, "Too Many Calls", "slow down")
			assert.Equal(t, tt.wantStatus, p.Status)
			assert.Equal(t, 429001, p.Code)
			assert.Equal(t, "Too Many Calls", p.Title)
			assert.Equal(t, models.ProblemTypeUpstream, p.Type)
		})
	}

	assert.Equal(t, "Upstream error", models.NewUpstreamError("", 502, 0, "", "x").Title)
}

func TestStandardProblems(t *testing.T) {
	tests := []struct {
		problem *models.Problem
		typ     string
		status  int
	}{
		{models.NewBadRequest("r", "d", nil), models.ProblemTypeValidation, http.StatusBadRequest},
		{models.NewUnauthorized("r", "d"), models.ProblemTypeUnauthorized, http.StatusUnauthorized},
		{models.NewNotFound("r", "d"), models.ProblemTypeNotFound, http.StatusNotFound},
		{models.NewTooManyRequests("r", "d"), models.ProblemTypeTooManyRequests, http.StatusTooManyRequests},
		{models.NewInternalError("r", "d"), models.ProblemTypeInternal, http.StatusInternalServerError},
		{models.NewServiceUnavailable("r", "d"), models.ProblemTypeUnavailable, http.StatusServiceUnavailable},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.typ, tt.problem.Type)
		assert.Equal(t, tt.status, tt.problem.Status)
		assert.Equal(t, "d", tt.problem.Detail)
		assert.Equal(t, "r", tt.problem.TraceID)
	}
}
