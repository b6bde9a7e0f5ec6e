package policy

import "errors"

// Errors returned by the policy layer. All are terminal for the request;
// the API layer maps them onto status codes.
var (
	// ErrNotAuthorized means the requester's identity is valid but the
	// rule for this mutation does not permit them to perform it.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrNotFound means the referenced task or notification does not
	// exist. It is deliberately distinct from ErrNotAuthorized.
	ErrNotFound = errors.New("not found")

	// ErrValidation means the input was malformed: missing required
	// fields or a value outside the allowed enums.
	ErrValidation = errors.New("invalid input")
)
