package utils

import "errors"

// Failure classes shared by the middleware chain and the handlers.
var (
	ErrUnauthorized  = errors.New("not authorized")
	ErrInvalidToken  = errors.New("invalid token")
	ErrNotFound      = errors.New("not found")
	ErrInvalidAction = errors.New("invalid action")
	ErrConflict      = errors.New("conflict")
)

// StatusCode maps a failure class to its HTTP status.
func StatusCode(err error) int {
	switch {
	case errors.Is(err, ErrUnauthorized), errors.Is(err, ErrInvalidToken):
		return 401
	case errors.Is(err, ErrNotFound):
		return 404
	case errors.Is(err, ErrInvalidAction):
		return 400
	case errors.Is(err, ErrConflict):
		return 409
	default:
		return 500
	}
}
