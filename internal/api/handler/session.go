package handler

import (
	"net/http"
	"strings"

	"github.com/rs/zerolog"

	"github.com/skydial/skydial/internal/api/response"
	"github.com/skydial/skydial/internal/session"
)

// SessionIssuer issues and validates session tokens.
type SessionIssuer interface {
	Issue() (*session.Token, error)
	IssueFor(sessionID string) (*session.Token, error)
	Validate(token string) (string, error)
}

// SessionHandler hands out anonymous dashboard sessions.
type SessionHandler struct {
	sessions SessionIssuer
	logger   zerolog.Logger
}

// NewSessionHandler creates a SessionHandler.
func NewSessionHandler(sessions SessionIssuer, logger zerolog.Logger) *SessionHandler {
	return &SessionHandler{sessions: sessions, logger: logger}
}

// Create handles POST /v1/sessions. A request that still carries a valid
// bearer token gets a fresh token for the same session, so preferences
// survive; anything else starts a new session.
func (h *SessionHandler) Create(w http.ResponseWriter, r *http.Request) {
	var (
		tok *session.Token
		err error
	)

	if id := h.currentSession(r); id != "" {
		tok, err = h.sessions.IssueFor(id)
	} else {
		tok, err = h.sessions.Issue()
	}
	if err != nil {
		h.logger.Error().Err(err).Msg("issuing session")
		response.InternalError(w, r, "could not issue session")
		return
	}

	response.Created(w, r, "/v1/me/preferences", tok)
}

func (h *SessionHandler) currentSession(r *http.Request) string {
	auth := r.Header.Get("Authorization")
	token, ok := strings.CutPrefix(auth, "Bearer ")
	if !ok || token == "" {
		return ""
	}
	id, err := h.sessions.Validate(token)
	if err != nil {
		return ""
	}
	return id
}
