package handler

import (
	"context"
	"errors"
	"net/http"

	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/api/models"
	"github.com/skydial/skydial/internal/api/response"
	"github.com/skydial/skydial/internal/dashboard"
	"github.com/skydial/skydial/internal/geocode"
	"github.com/skydial/skydial/internal/preferences"
)

// PreferencesService manages per-session dashboard preferences.
type PreferencesService interface {
	Load(ctx context.Context, sessionID string) (*preferences.Preferences, error)
	ToggleUnits(ctx context.Context, sessionID string) (*preferences.Preferences, error)
	SelectCity(ctx context.Context, sessionID string, city *geocode.City) (*preferences.Preferences, error)
	Replace(ctx context.Context, sessionID string, units dashboard.Units, history []geocode.City) (*preferences.Preferences, error)
	Reset(ctx context.Context, sessionID string) error
}

// PreferencesHandler serves /v1/me/preferences. Every route requires a
// session.
type PreferencesHandler struct {
	prefs  PreferencesService
	logger zerolog.Logger
}

// NewPreferencesHandler creates a PreferencesHandler.
func NewPreferencesHandler(prefs PreferencesService, logger zerolog.Logger) *PreferencesHandler {
	return &PreferencesHandler{prefs: prefs, logger: logger}
}

// Get handles GET /v1/me/preferences.
func (h *PreferencesHandler) Get(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	p, err := h.prefs.Load(r.Context(), sessionID)
	h.respond(w, r, p, err)
}

// Update handles PUT /v1/me/preferences. Absent fields keep their value.
func (h *PreferencesHandler) Update(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.PreferencesUpdate
	if !decodeJSON(w, r, &req) {
		return
	}

	var units dashboard.Units
	if req.Units != nil {
		u, err := dashboard.ParseUnits(*req.Units)
		if err != nil {
			response.BadRequest(w, r, err.Error(), []models.FieldError{
				{Field: "units", Message: "must be metric or imperial", Code: "INVALID"},
			})
			return
		}
		units = u
	} else {
		current, err := h.prefs.Load(r.Context(), sessionID)
		if err != nil {
			h.respond(w, r, nil, err)
			return
		}
		units = current.Units
	}

	p, err := h.prefs.Replace(r.Context(), sessionID, units, req.LocationsHistory)
	h.respond(w, r, p, err)
}

// ToggleUnits handles POST /v1/me/preferences/units:toggle.
func (h *PreferencesHandler) ToggleUnits(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	p, err := h.prefs.ToggleUnits(r.Context(), sessionID)
	h.respond(w, r, p, err)
}

// SelectCity handles POST /v1/me/preferences/city. {"city":null} returns
// to the default location.
func (h *PreferencesHandler) SelectCity(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	var req models.SelectCityRequest
	if !decodeJSON(w, r, &req) {
		return
	}

	p, err := h.prefs.SelectCity(r.Context(), sessionID, req.City)
	if errors.Is(err, geocode.ErrInvalidCity) {
		response.BadRequest(w, r, err.Error(), []models.FieldError{
			{Field: "city", Message: "lat and lng must be decimal coordinates", Code: "INVALID"},
		})
		return
	}
	h.respond(w, r, p, err)
}

// History handles GET /v1/me/preferences/history?q=.
func (h *PreferencesHandler) History(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	p, err := h.prefs.Load(r.Context(), sessionID)
	if err != nil {
		h.respond(w, r, nil, err)
		return
	}

	cities := p.FilterHistory(r.URL.Query().Get("q"))
	if cities == nil {
		cities = []geocode.City{}
	}
	response.JSON(w, r, http.StatusOK, map[string]any{"cities": cities})
}

// Reset handles DELETE /v1/me/preferences.
func (h *PreferencesHandler) Reset(w http.ResponseWriter, r *http.Request) {
	sessionID, ok := h.session(w, r)
	if !ok {
		return
	}

	if err := h.prefs.Reset(r.Context(), sessionID); err != nil {
		h.respond(w, r, nil, err)
		return
	}
	response.NoContent(w, r)
}

func (h *PreferencesHandler) session(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := GetSessionID(r.Context())
	if id == "" {
		response.Unauthorized(w, r, "a session is required")
		return "", false
	}
	return id, true
}

func (h *PreferencesHandler) respond(w http.ResponseWriter, r *http.Request, p *preferences.Preferences, err error) {
	if err != nil {
		h.logger.Error().Err(err).Msg("preferences request failed")
		response.InternalError(w, r, "could not access preferences")
		return
	}
	response.JSON(w, r, http.StatusOK, p)
}
