package handler

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"

	"github.com/skydial/skydial/internal/api/middleware"
	"github.com/skydial/skydial/internal/api/response"
)

// maxBodyBytes bounds JSON request bodies.
const maxBodyBytes = 64 << 10

// GetSessionID retrieves the session id placed by middleware.Session.
func GetSessionID(ctx context.Context) string {
	return middleware.GetSessionID(ctx)
}

// decodeJSON reads a bounded JSON body into v. It writes the 400 itself and
// reports false when the body is unusable. An empty body decodes to v's
// zero value.
func decodeJSON(w http.ResponseWriter, r *http.Request, v any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(v); err != nil && !errors.Is(err, io.EOF) {
		response.BadRequest(w, r, "invalid JSON body", nil)
		return false
	}
	return true
}
