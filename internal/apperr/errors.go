// Package apperr defines sentinel errors shared across service layers.
package apperr

import "errors"

var (
	// ErrNotFound indicates the requested record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrMissingInput indicates a required request field was absent or empty.
	ErrMissingInput = errors.New("missing input")

	// ErrUnavailable indicates a capability is disabled, e.g. cloud features
	// without a configured credential.
	ErrUnavailable = errors.New("unavailable")
)
