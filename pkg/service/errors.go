package service

import (
	"errors"
	"fmt"
)

// Sentinel errors returned by the registry and redirect resolver. Callers
// classify outcomes with errors.Is and map them to transport status codes.
var (
	// ErrInvalidURL means the target URL is not a syntactically valid
	// absolute http(s) URL.
	ErrInvalidURL = errors.New("invalid url")

	// ErrInvalidCodeFormat means a requested custom code does not match the
	// accepted pattern after normalization.
	ErrInvalidCodeFormat = errors.New("invalid code format")

	// ErrInvalidCode means an inbound code fails the minimal shape check and
	// was rejected before any store access.
	ErrInvalidCode = errors.New("invalid code")

	// ErrCodeTaken means a record with the requested custom code already
	// exists.
	ErrCodeTaken = errors.New("code already taken")

	// ErrExhaustedAttempts means every generated candidate code collided
	// with an existing record.
	ErrExhaustedAttempts = errors.New("exhausted code generation attempts")

	// ErrNotFound means no record exists for the given code.
	ErrNotFound = errors.New("link not found")

	// ErrStoreUnavailable wraps store-level failures, including timeouts.
	// Mutations are single-statement atomic, so nothing is half-applied.
	ErrStoreUnavailable = errors.New("store unavailable")
)

func storeErr(err error) error {
	return fmt.Errorf("%w: %v", ErrStoreUnavailable, err)
}
