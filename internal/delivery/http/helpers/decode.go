package helpers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
)

// MaxBodyBytes caps the size of JSON request bodies.
const MaxBodyBytes = 1 << 20

// DecodeJSON decodes the request body into dest. Unknown fields are ignored so that
// server-owned fields sent by clients (id, createdBy, attendees) have no effect.
// On failure it writes a 400 JSON error and returns false; callers should return immediately.
func DecodeJSON(w http.ResponseWriter, r *http.Request, dest any) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, MaxBodyBytes))
	if err := dec.Decode(dest); err != nil {
		if errors.Is(err, io.EOF) {
			// Empty body: leave dest zero-valued and let validation report what is missing.
			return true
		}
		WriteJSON(w, http.StatusBadRequest, ErrorResponse{Message: "invalid request body", Error: err.Error()})
		return false
	}
	return true
}
