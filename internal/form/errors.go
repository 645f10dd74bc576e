package form

import (
	"fmt"
	"strings"
)

// UnknownFieldError is returned when a name is not part of the schema.
type UnknownFieldError struct {
	Name string
}

func (e *UnknownFieldError) Error() string {
	return fmt.Sprintf("unknown field %q", e.Name)
}

// ReadOnlyFieldError is returned when a computed field is written directly.
type ReadOnlyFieldError struct {
	Name string
}

func (e *ReadOnlyFieldError) Error() string {
	return fmt.Sprintf("field %q is computed and cannot be set", e.Name)
}

// ValidationFailure carries the reason a submission was rejected.
type ValidationFailure struct {
	Field  string
	Reason string
}

func (e *ValidationFailure) Error() string {
	return "validation failed: " + e.Reason
}

// SchemaError lists every integrity problem found while building a schema.
type SchemaError struct {
	Problems []string
}

func (e *SchemaError) Error() string {
	return "invalid form schema: " + strings.Join(e.Problems, "; ")
}
