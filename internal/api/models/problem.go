package models

import (
	"encoding/json"
	"net/http"
)

// Problem represents an RFC7807 error response.
// This is used for all API error responses with Content-Type: application/problem+json.
type Problem struct {
	// Type is a URI reference that identifies the problem type.
	Type string `json:"type"`

	// Title is a short, human-readable summary of the problem type.
	Title string `json:"title"`

	// Status is the HTTP status code for this occurrence of the problem.
	Status int `json:"status"`

	// Detail is a human-readable explanation specific to this occurrence.
	Detail string `json:"detail,omitempty"`

	// Instance is a URI reference that identifies the specific occurrence.
	Instance string `json:"instance,omitempty"`

	// TraceID is the request trace identifier for debugging.
	TraceID string `json:"traceId"`

	// Code is a six digit application code, e.g. 400001, or the forecast
	// provider's own code when the problem originates upstream.
	Code int `json:"code,omitempty"`

	// Message repeats Detail under the key dashboard clients read.
	Message string `json:"message,omitempty"`

	// Errors contains structured field validation errors.
	Errors []FieldError `json:"errors,omitempty"`
}

// FieldError represents a validation error on a specific field.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

// ProblemType constants for standard error types.
const (
	ProblemTypeValidation      = "https://api.skydial.dev/problems/validation-error"
	ProblemTypeUnauthorized    = "https://api.skydial.dev/problems/unauthorized"
	ProblemTypeNotFound        = "https://api.skydial.dev/problems/not-found"
	ProblemTypeTooManyRequests = "https://api.skydial.dev/problems/too-many-requests"
	ProblemTypeInternal        = "https://api.skydial.dev/problems/internal-error"
	ProblemTypeNotConfigured   = "https://api.skydial.dev/problems/not-configured"
	ProblemTypeUpstream        = "https://api.skydial.dev/problems/upstream-error"
	ProblemTypeUnavailable     = "https://api.skydial.dev/problems/service-unavailable"
)

// Application codes.
const (
	CodeMissingFields = 400001
	CodeInvalidValue  = 400002
	CodeNotConfigured = 500001
)

// NewProblem creates a new Problem with the given parameters.
func NewProblem(problemType, title string, status int, traceID string) *Problem {
	return &Problem{
		Type:    problemType,
		Title:   title,
		Status:  status,
		TraceID: traceID,
	}
}

// WithDetail sets Detail and Message.
func (p *Problem) WithDetail(detail string) *Problem {
	p.Detail = detail
	p.Message = detail
	return p
}

// WithInstance adds the request instance URI to the Problem.
func (p *Problem) WithInstance(instance string) *Problem {
	p.Instance = instance
	return p
}

// WithCode sets the application code.
func (p *Problem) WithCode(code int) *Problem {
	p.Code = code
	return p
}

// WithErrors adds field errors to the Problem.
func (p *Problem) WithErrors(errors []FieldError) *Problem {
	p.Errors = errors
	return p
}

// Write writes the Problem as JSON to the ResponseWriter.
func (p *Problem) Write(w http.ResponseWriter) {
	w.Header().Set("Content-Type", "application/problem+json")
	if p.TraceID != "" {
		w.Header().Set("X-Request-Id", p.TraceID)
	}
	w.WriteHeader(p.Status)
	_ = json.NewEncoder(w).Encode(p)
}

// NewBadRequest creates a 400 Bad Request problem.
func NewBadRequest(traceID, detail string, errors []FieldError) *Problem {
	p := NewProblem(ProblemTypeValidation, "Validation error", http.StatusBadRequest, traceID)
	p.WithDetail(detail)
	p.Errors = errors
	return p
}

// NewMissingFields creates the 400 problem for absent required fields.
func NewMissingFields(traceID string, fields ...string) *Problem {
	errs := make([]FieldError, 0, len(fields))
	for _, f := range fields {
		errs = append(errs, FieldError{Field: f, Message: "required", Code: "REQUIRED"})
	}
	detail := "Missing required fields: "
	for i, f := range fields {
		if i > 0 {
			detail += ", "
		}
		detail += f
	}
	return NewBadRequest(traceID, detail, errs).WithCode(CodeMissingFields)
}

// NewUnauthorized creates a 401 Unauthorized problem.
func NewUnauthorized(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnauthorized, "Unauthorized", http.StatusUnauthorized, traceID).WithDetail(detail)
}

// NewNotFound creates a 404 Not Found problem.
func NewNotFound(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotFound, "Not found", http.StatusNotFound, traceID).WithDetail(detail)
}

// NewTooManyRequests creates a 429 Too Many Requests problem.
func NewTooManyRequests(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeTooManyRequests, "Too many requests", http.StatusTooManyRequests, traceID).WithDetail(detail)
}

// NewInternalError creates a 500 Internal Server Error problem.
func NewInternalError(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeInternal, "Internal server error", http.StatusInternalServerError, traceID).WithDetail(detail)
}

// NewNotConfigured creates the 500 problem returned when an upstream
// credential is missing from the server configuration.
func NewNotConfigured(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeNotConfigured, "Provider not configured", http.StatusInternalServerError, traceID).
		WithDetail(detail).
		WithCode(CodeNotConfigured)
}

// NewUpstreamError creates a problem for an error reported by a provider.
// Status is the provider's HTTP status when it is a client error (so quota
// and auth failures keep their meaning) and 502 otherwise.
func NewUpstreamError(traceID string, upstreamStatus, code int, title, detail string) *Problem {
	status := http.StatusBadGateway
	if upstreamStatus >= 400 && upstreamStatus < 500 {
		status = upstreamStatus
	}
	if title == "" {
		title = "Upstream error"
	}
	return NewProblem(ProblemTypeUpstream, title, status, traceID).WithDetail(detail).WithCode(code)
}

// NewServiceUnavailable creates a 503 Service Unavailable problem.
func NewServiceUnavailable(traceID, detail string) *Problem {
	return NewProblem(ProblemTypeUnavailable, "Service unavailable", http.StatusServiceUnavailable, traceID).WithDetail(detail)
}
