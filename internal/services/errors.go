// internal/services/errors.go
package services

import (
	"fmt"
	"strings"
)

// FieldViolation is one failed constraint on one input field.
type FieldViolation struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidationError carries every violated constraint, not just the first, so
// the client can render all field messages in one round trip.
type ValidationError struct {
	Violations []FieldViolation `json:"violations"`
}

func (e *ValidationError) Error() string {
	parts := make([]string, 0, len(e.Violations))
	for _, v := range e.Violations {
		parts = append(parts, v.Field+": "+v.Message)
	}
	return "validation failed: " + strings.Join(parts, "; ")
}

func (e *ValidationError) Add(field, message string) {
	e.Violations = append(e.Violations, FieldViolation{Field: field, Message: message})
}

func (e *ValidationError) HasViolations() bool {
	return len(e.Violations) > 0
}

// NotFoundError means the referenced id does not exist (or belongs to another
// household, which callers must not be able to distinguish).
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// InvalidStateError rejects an operation the record's current state does not
// allow (opening an already-opened product, checking a purchased item again).
type InvalidStateError struct {
	Reason string
}

func (e *InvalidStateError) Error() string {
	return e.Reason
}
