package linklet_errors

import "errors"

// Common errors
var (
	ErrNotFound         = errors.New("not found")
	ErrInvalidInput     = errors.New("invalid input")
	ErrInvalidOperation = errors.New("invalid operation")
	ErrUnauthorized     = errors.New("unauthorized")
	ErrForbidden        = errors.New("forbidden")
	ErrConflict         = errors.New("conflict")
	ErrAlreadyExists    = errors.New("already exists")

	// Friend-graph specific
	ErrAlreadyFriends   = errors.New("already friends")
	ErrDuplicateRequest = errors.New("friend request already pending")
	ErrNotFriends       = errors.New("not friends")
)

// HTTPStatus maps a service error to an HTTP status code.
func HTTPStatus(err error) int {
	switch {
	case errors.Is(err, ErrInvalidInput), errors.Is(err, ErrInvalidOperation):
		return 400
	case errors.Is(err, ErrUnauthorized):
		return 401
	case errors.Is(err, ErrForbidden):
		return 403
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotFriends):
		return 404
	case errors.Is(err, ErrAlreadyExists),
		errors.Is(err, ErrConflict),
		errors.Is(err, ErrAlreadyFriends),
		errors.Is(err, ErrDuplicateRequest):
		return 409
	default:
		return 500
	}
}

// Code returns the machine-readable error code used in API responses.
func Code(err error) string {
	switch {
	case errors.Is(err, ErrInvalidInput):
		return "INVALID_REQUEST"
	case errors.Is(err, ErrInvalidOperation):
		return "INVALID_OPERATION"
	case errors.Is(err, ErrUnauthorized):
		return "UNAUTHORIZED"
	case errors.Is(err, ErrForbidden):
		return "FORBIDDEN"
	case errors.Is(err, ErrNotFound), errors.Is(err, ErrNotFriends):
		return "NOT_FOUND"
	case errors.Is(err, ErrAlreadyFriends):
		return "ALREADY_FRIENDS"
	case errors.Is(err, ErrDuplicateRequest):
		return "DUPLICATE_REQUEST"
	case errors.Is(err, ErrAlreadyExists), errors.Is(err, ErrConflict):
		return "ALREADY_EXISTS"
	default:
		return "INTERNAL_ERROR"
	}
}
