package store

import "errors"

var (
	// ErrNotFound is returned when an entity does not exist at the
	// requested (model, id) or point-lookup address.
	ErrNotFound = errors.New("strata: entity not found")

	// ErrValidation is returned when a write omits a required addressing
	// field. Wrapped errors name the missing field.
	ErrValidation = errors.New("strata: invalid entity")
)
