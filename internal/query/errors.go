package query

import (
	"errors"
	"fmt"

	"github.com/dbsmedya/mongolens/internal/schema"
	"github.com/dbsmedya/mongolens/internal/store"
)

// InvalidFieldError indicates a filter, sort, or search referenced a field
// that is unknown or not allowed for that purpose. Always a client-input
// error, never silently dropped.
type InvalidFieldError struct {
	Collection string
	Field      string
	Reason     string
}

func (e *InvalidFieldError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("invalid query against %q: %s", e.Collection, e.Reason)
	}
	return fmt.Sprintf("invalid field %q in query against %q: %s", e.Field, e.Collection, e.Reason)
}

// TypeMismatchError indicates an operator or operand is incompatible with
// the field's inferred type.
type TypeMismatchError struct {
	Collection string
	Field      string
	FieldType  schema.FieldType
	Op         store.Op
	Value      interface{}
	Reason     string
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("operator %s on field %q (%s) of %q: %s",
		e.Op, e.Field, e.FieldType, e.Collection, e.Reason)
}

// IsInvalidField returns true if err is an InvalidFieldError.
func IsInvalidField(err error) bool {
	var target *InvalidFieldError
	return errors.As(err, &target)
}

// IsTypeMismatch returns true if err is a TypeMismatchError.
func IsTypeMismatch(err error) bool {
	var target *TypeMismatchError
	return errors.As(err, &target)
}
