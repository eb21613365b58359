package store

import "errors"

var (
	// ErrNotStorable is returned by New when the initial value is not a
	// plain object or array.
	ErrNotStorable = errors.New("vstore: value is not storable")

	// ErrPathTypeMismatch is returned when a setter path walks through a
	// value that is not a container, or uses a segment the container
	// cannot interpret.
	ErrPathTypeMismatch = errors.New("vstore: path type mismatch")

	// ErrMutationNotAllowed is returned in strict mode when code writes or
	// deletes through a View instead of using the setter.
	ErrMutationNotAllowed = errors.New("vstore: direct mutation of a store view is not allowed")
)
