package persistence

import "errors"

var (
	// ErrNotFound is returned when the requested record does not exist.
	ErrNotFound = errors.New("persistence: not found")
	// ErrDuplicate is returned when an insert collides with an existing record.
	ErrDuplicate = errors.New("persistence: duplicate record")
	// ErrConflict is returned when a compare-and-set update loses to a
	// concurrent writer, e.g. completing an already completed meeting.
	ErrConflict = errors.New("persistence: conflicting update")
	// ErrConstraintViolation is returned when a record violates a schema check.
	ErrConstraintViolation = errors.New("persistence: constraint violation")
	// ErrForeignKeyViolation is returned when a referenced record is missing.
	ErrForeignKeyViolation = errors.New("persistence: foreign key violation")
)
