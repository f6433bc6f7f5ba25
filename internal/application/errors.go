package application

import "errors"

var (
	// ErrNotFound is returned when the requested resource does not exist.
	ErrNotFound = errors.New("application: not found")
	// ErrAlreadyExists is returned when a create collides with an existing resource.
	ErrAlreadyExists = errors.New("application: already exists")
	// ErrAlreadyCompleted is returned when a meeting or task is completed twice.
	ErrAlreadyCompleted = errors.New("application: already completed")
	// ErrRuleInUse is returned when a recurrence rule with materialized meetings
	// is modified or deleted in a way the service forbids.
	ErrRuleInUse = errors.New("application: recurrence rule in use")
	// ErrNoUpcomingMeeting is returned when no future occurrence can be resolved.
	ErrNoUpcomingMeeting = errors.New("application: no upcoming meeting")
)

// ValidationError captures field level validation issues that callers can surface to users.
type ValidationError struct {
	FieldErrors map[string]string
}

// Error implements the error interface.
func (v *ValidationError) Error() string {
	if v == nil {
		return ""
	}
	return "validation failed"
}

// HasErrors reports whether any field level issues were recorded.
func (v *ValidationError) HasErrors() bool {
	return v != nil && len(v.FieldErrors) > 0
}

// add records a field level validation error.
func (v *ValidationError) add(field, message string) {
	if v.FieldErrors == nil {
		v.FieldErrors = make(map[string]string)
	}
	v.FieldErrors[field] = message
}

// merge copies entries from another validation error into the receiver.
func (v *ValidationError) merge(other *ValidationError) {
	if other == nil || len(other.FieldErrors) == 0 {
		return
	}
	for field, msg := range other.FieldErrors {
		v.add(field, msg)
	}
}
