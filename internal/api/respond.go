package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/nhle/taskflow/internal/auth"
	"github.com/nhle/taskflow/internal/policy"
	"github.com/nhle/taskflow/internal/store"
)

// writeJSON serializes payload with the given status code.
func writeJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

// writeMessage writes a {"message": ...} body with the given status code.
func writeMessage(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, MessageResponse{Message: message})
}

// writeError maps err onto the response taxonomy: 401 for bad
// credentials, 403 for insufficient permission, 404 for missing
// entities, 400 for bad input, 500 otherwise.
func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	switch {
	case errors.Is(err, auth.ErrInvalidToken):
		writeMessage(w, http.StatusUnauthorized, "invalid or missing token")
	case errors.Is(err, policy.ErrNotAuthorized):
		writeMessage(w, http.StatusForbidden, "not authorized")
	case errors.Is(err, policy.ErrNotFound), errors.Is(err, store.ErrNotFound):
		writeMessage(w, http.StatusNotFound, "not found")
	case errors.Is(err, policy.ErrValidation):
		writeMessage(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, store.ErrDuplicate):
		writeMessage(w, http.StatusBadRequest, "user with this email or username already exists")
	default:
		s.logf("%s %s: %v", r.Method, r.URL.Path, err)
		writeMessage(w, http.StatusInternalServerError, "server error")
	}
}

// decodeJSON reads the request body into dst.
func decodeJSON(r *http.Request, dst interface{}) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: decoding request body: %v", policy.ErrValidation, err)
	}
	return nil
}
