package registry

import (
	"errors"
	"fmt"
)

// NotFoundError indicates the requested collection has no registry entry.
type NotFoundError struct {
	Collection string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("collection %q is not registered", e.Collection)
}

// ConfigurationConflictError indicates a user override references a field or
// collection that does not exist. Carries a nearest-name suggestion when one
// is close enough to be useful.
type ConfigurationConflictError struct {
	Collection string
	Field      string
	Reason     string
	Suggestion string
}

func (e *ConfigurationConflictError) Error() string {
	msg := fmt.Sprintf("configuration conflict in collection %q: %s", e.Collection, e.Reason)
	if e.Suggestion != "" {
		msg += fmt.Sprintf(" (did you mean %q?)", e.Suggestion)
	}
	return msg
}

// IsNotFound returns true if err is a registry NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflict returns true if err is a ConfigurationConflictError.
func IsConflict(err error) bool {
	var target *ConfigurationConflictError
	return errors.As(err, &target)
}
