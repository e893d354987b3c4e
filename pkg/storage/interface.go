package storage

import (
	"context"
	"errors"
)

// ErrCodeExists is returned by InsertIfAbsent when a record with the same
// code already exists. A unique-constraint conflict is an expected outcome,
// not a failure of the store.
var ErrCodeExists = errors.New("code already exists")

// LinkStore is the contract the registry and redirect resolver rely on.
// All uniqueness and lost-update guarantees live behind this boundary so
// that multiple stateless process instances can share one store safely.
type LinkStore interface {
	// InsertIfAbsent persists the link unless its code is taken, in which
	// case it returns ErrCodeExists. On success the store fills in CreatedAt.
	InsertIfAbsent(ctx context.Context, link *Link) error

	// FindByCode returns (nil, nil) when no record exists.
	FindByCode(ctx context.Context, code string) (*Link, error)

	// IncrementClick atomically bumps the click counter and the last-clicked
	// timestamp of the record in a single store operation, returning the
	// target URL. It returns ("", nil) when no record exists.
	IncrementClick(ctx context.Context, code string) (string, error)

	// DeleteByCode reports whether a record was actually removed.
	DeleteByCode(ctx context.Context, code string) (bool, error)

	// ListAll returns every record, newest first.
	ListAll(ctx context.Context) ([]*Link, error)

	// Ping verifies the store is reachable.
	Ping(ctx context.Context) error
}
