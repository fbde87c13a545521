package models

import "errors"

// Error taxonomy shared across handlers and services. Handlers map these to
// HTTP status codes; everything else wraps them with context.
var (
	// ErrUnauthenticated means no identity accompanied the request.
	ErrUnauthenticated = errors.New("not authenticated")

	// ErrUnauthorized means the identity does not own the resource. The
	// actual owner is never disclosed.
	ErrUnauthorized = errors.New("not authorized")

	// ErrNotFound means the resource id does not resolve.
	ErrNotFound = errors.New("not found")
)
